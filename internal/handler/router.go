package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/solacechat/backend/internal/handler/chat"
	middlewarePkg "github.com/solacechat/backend/internal/middleware"
	chatService "github.com/solacechat/backend/internal/service/chat"
	"github.com/solacechat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(chatSvc)
	chatHandler.RegisterRoutes(r)

	r.Get("/health", handleHealth)
	r.Get("/", handleHome)

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "Solace Chat API",
		"ai":      "Ark",
	})
}

func handleHome(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Solace conversational memory API",
		"endpoints": map[string]string{
			"chat":   "/chat (POST)",
			"health": "/health (GET)",
		},
	})
}
