package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-crm/internal/domain"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Actor is the identity whose
// records are shown: the user itself, or the subordinate selected via view-as.
type Principal struct {
	User        domain.User
	Actor       domain.User
	Preferences domain.Preferences
}

// Impersonating reports whether the caller is viewing as someone else.
func (p *Principal) Impersonating() bool {
	return p.Actor.ID != p.User.ID
}

// UserLookup resolves directory entries by ID.
type UserLookup interface {
	User(id string) (domain.User, bool)
}

// PreferenceLoader returns a user's effective preferences.
type PreferenceLoader interface {
	Get(ctx context.Context, userID string) (*domain.Preferences, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  UserLookup
	prefs  PreferenceLoader
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users UserLookup, prefs PreferenceLoader) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, prefs: prefs}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, ok := m.users.User(claims.SubjectID)
	if !ok || !user.Active {
		return apperrors.NewUnauthorized("user not found")
	}

	prefs, err := m.prefs.Get(c.UserContext(), user.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	principal := &Principal{User: user, Actor: user, Preferences: *prefs}
	if prefs.ActingAs != "" && prefs.ActingAs != user.ID {
		if actor, found := m.users.User(prefs.ActingAs); found {
			principal.Actor = actor
		}
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// WithPrincipal stores a principal on the request, for handlers mounted without the middleware.
func WithPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}
