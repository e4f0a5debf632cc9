package memory

import "time"

// UserProfile carries everything we persist about a single user across
// conversations. The JSON layout is the on-disk format and must round-trip
// exactly, so field tags are part of the storage contract.
type UserProfile struct {
	UserID           string            `json:"user_id"`
	Name             string            `json:"name"`
	Age              *int              `json:"age,omitempty"`
	Concerns         []string          `json:"concerns"`
	Preferences      map[string]string `json:"preferences"`
	EmergencyContact string            `json:"emergency_contact,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	LastActive       time.Time         `json:"last_active"`
}

// NewUserProfile initialises a profile for a first-time user.
func NewUserProfile(userID, name string) *UserProfile {
	now := time.Now().UTC()
	return &UserProfile{
		UserID:      userID,
		Name:        name,
		Concerns:    []string{},
		Preferences: map[string]string{},
		CreatedAt:   now,
		LastActive:  now,
	}
}

// AddConcern records a concern unless an identical one is already present.
func (p *UserProfile) AddConcern(concern string) {
	for _, existing := range p.Concerns {
		if existing == concern {
			return
		}
	}
	p.Concerns = append(p.Concerns, concern)
}
