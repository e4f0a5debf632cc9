package chat

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	chatService "github.com/solacechat/backend/internal/service/chat"
	"github.com/solacechat/backend/pkg/utils"
)

// Handler exposes the conversation endpoint.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

// handleChat accepts one user message and returns the assistant reply with
// the session id to carry forward. Malformed input is rejected before any
// state is touched.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "No data provided")
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	log.Printf("[chat] message received (session=%s, %d bytes)", payload.SessionID, len(message))

	reply, sessionID := h.chatSvc.HandleMessage(r.Context(), message, payload.SessionID)

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"response":   reply,
		"session_id": sessionID,
		"status":     "success",
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	utils.RespondJSON(w, status, map[string]string{
		"error":  message,
		"status": "error",
	})
}
