package dto

import (
	"time"

	"github.com/spec-kit/sales-crm/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserSummary is the public view of a directory entry.
type UserSummary struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Role      domain.Role `json:"role"`
	ReportsTo string      `json:"reports_to,omitempty"`
	Region    string      `json:"region,omitempty"`
	Active    bool        `json:"active"`
}

// NewUserSummary hides credentials from a user.
func NewUserSummary(u domain.User) UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		ReportsTo: u.ReportsTo,
		Region:    u.Region,
		Active:    u.Active,
	}
}

// UserSummaries maps a slice of users.
func UserSummaries(users []domain.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserSummary(u))
	}
	return out
}

// MeResponse describes the caller and the identity being viewed.
type MeResponse struct {
	User        UserSummary         `json:"user"`
	Actor       UserSummary         `json:"actor"`
	Preferences PreferencesResponse `json:"preferences"`
}

// PreferencesResponse is the stored preference view.
type PreferencesResponse struct {
	Language     domain.Language `json:"language"`
	LanguageName string          `json:"language_name"`
	ActingAs     string          `json:"acting_as"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}

// NewPreferencesResponse maps domain preferences.
func NewPreferencesResponse(p domain.Preferences) PreferencesResponse {
	resp := PreferencesResponse{Language: p.Language, LanguageName: p.Language.DisplayName(), ActingAs: p.ActingAs}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// UpdatePreferencesRequest payload for PUT /me/preferences. Omitted fields are unchanged.
type UpdatePreferencesRequest struct {
	Language *string `json:"language"`
	ActingAs *string `json:"acting_as"`
}
