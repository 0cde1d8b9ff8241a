package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-crm/internal/api/dto"
	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/service"
)

// AuthHandler exposes login and caller identity endpoints.
type AuthHandler struct {
	auth  *service.AuthService
	prefs *service.PreferenceService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, prefs *service.PreferenceService) *AuthHandler {
	return &AuthHandler{auth: authService, prefs: prefs}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(err)
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserSummary(res.User),
			"auth": dto.AuthResponse{Token: res.AccessToken, ExpiresAt: res.Token.ExpiresAt},
		},
	})
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MeResponse{
		User:        dto.NewUserSummary(p.User),
		Actor:       dto.NewUserSummary(p.Actor),
		Preferences: dto.NewPreferencesResponse(p.Preferences),
	}})
}

// GetPreferences handles GET /me/preferences.
func (h *AuthHandler) GetPreferences(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	prefs, err := h.prefs.Get(c.UserContext(), p.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPreferencesResponse(*prefs)})
}

// UpdatePreferences handles PUT /me/preferences.
func (h *AuthHandler) UpdatePreferences(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(err)
	}

	update := service.PreferenceUpdate{ActingAs: req.ActingAs}
	if req.Language != nil {
		lang := domain.Language(*req.Language)
		update.Language = &lang
	}

	prefs, err := h.prefs.Update(c.UserContext(), p.User.ID, update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPreferencesResponse(*prefs)})
}
