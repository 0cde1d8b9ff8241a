package service

import (
	"context"
	"strings"

	"github.com/spec-kit/sales-crm/internal/auth"
	"github.com/spec-kit/sales-crm/internal/config"
	"github.com/spec-kit/sales-crm/internal/domain"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User        domain.User
	AccessToken string
	Token       domain.Token
}

// AuthService coordinates login against the user directory.
type AuthService struct {
	directory *DirectoryService
	tokenMgr  *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, directory *DirectoryService) *AuthService {
	return &AuthService{
		directory: directory,
		tokenMgr:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
}

// Login authenticates a user by email and password. Unknown emails and bad
// passwords produce the same error.
func (s *AuthService) Login(_ context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	user, ok := s.directory.FindByEmail(email)
	if !ok || user.PasswordHash == "" {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.Active {
		return nil, apperrors.NewForbidden("account inactive")
	}

	meta, signed, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{User: user, AccessToken: signed, Token: meta}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
