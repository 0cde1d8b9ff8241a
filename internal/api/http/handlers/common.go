package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-crm/internal/auth"
	"github.com/spec-kit/sales-crm/internal/domain"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return p, nil
}

// requestLanguage picks an explicit language when given, else the caller's preference.
func requestLanguage(p *auth.Principal, explicit string) (domain.Language, error) {
	if explicit == "" {
		return p.Preferences.Language, nil
	}
	lang := domain.Language(explicit)
	if !lang.Supported() {
		return "", apperrors.NewValidationError("unsupported language", map[string]any{"language": explicit})
	}
	return lang, nil
}

func invalidPayload(err error) error {
	return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
}
