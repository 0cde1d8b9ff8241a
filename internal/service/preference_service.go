package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/repository"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

// PreferenceUpdate carries a partial change; nil fields are left untouched.
type PreferenceUpdate struct {
	Language *domain.Language
	ActingAs *string
}

// PreferenceService manages language and view-as settings.
type PreferenceService struct {
	repo            repository.PreferenceRepository
	directory       *DirectoryService
	defaultLanguage domain.Language
	now             func() time.Time
}

// NewPreferenceService builds the service.
func NewPreferenceService(repo repository.PreferenceRepository, directory *DirectoryService, defaultLanguage string) *PreferenceService {
	lang := domain.Language(defaultLanguage)
	if !lang.Supported() {
		lang = domain.LanguageEnglish
	}
	return &PreferenceService{repo: repo, directory: directory, defaultLanguage: lang, now: time.Now}
}

// Get returns the stored preferences for userID, or defaults when none exist.
// A stored view-as target that is no longer visible falls back to the user.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	prefs, err := s.repo.Get(ctx, userID)
	if errors.Is(err, repository.ErrPreferencesNotFound) {
		return &domain.Preferences{UserID: userID, Language: s.defaultLanguage, ActingAs: userID}, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if !prefs.Language.Supported() {
		prefs.Language = s.defaultLanguage
	}
	if prefs.ActingAs == "" {
		prefs.ActingAs = userID
	} else if prefs.ActingAs != userID {
		ok, err := s.directory.CanView(userID, prefs.ActingAs)
		if err != nil || !ok {
			prefs.ActingAs = userID
		}
	}
	return prefs, nil
}

// Update applies a partial change. The view-as target must be inside the
// caller's visibility set; an empty target resets to the caller.
func (s *PreferenceService) Update(ctx context.Context, userID string, update PreferenceUpdate) (*domain.Preferences, error) {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Language != nil {
		if !update.Language.Supported() {
			return nil, apperrors.NewValidationError("unsupported language", map[string]any{"language": *update.Language})
		}
		prefs.Language = *update.Language
	}

	if update.ActingAs != nil {
		target := *update.ActingAs
		if target == "" {
			target = userID
		}
		if target != userID {
			ok, err := s.directory.CanView(userID, target)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, apperrors.NewForbidden("cannot view as a user outside your team")
			}
		}
		prefs.ActingAs = target
	}

	prefs.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, prefs); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return prefs, nil
}

// EffectiveActor returns the user whose records userID is currently viewing.
func (s *PreferenceService) EffectiveActor(ctx context.Context, userID string) (domain.User, error) {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	actor, ok := s.directory.User(prefs.ActingAs)
	if !ok {
		return domain.User{}, apperrors.NewNotFound("user", map[string]any{"user_id": prefs.ActingAs})
	}
	return actor, nil
}
