package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/repository"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

func strPtr(s string) *string { return &s }

func TestPreferenceDefaults(t *testing.T) {
	h := newHarness(t)
	svc := NewPreferenceService(repository.NewMemoryPreferenceRepository(), h.directory, "hi")

	prefs, err := svc.Get(context.Background(), "asm")
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageHindi, prefs.Language)
	assert.Equal(t, "asm", prefs.ActingAs)
}

func TestPreferenceViewAs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := NewPreferenceService(repository.NewMemoryPreferenceRepository(), h.directory, "en")

	prefs, err := svc.Update(ctx, "asm", PreferenceUpdate{ActingAs: strPtr("rep-1")})
	require.NoError(t, err)
	assert.Equal(t, "rep-1", prefs.ActingAs)
	assert.False(t, prefs.UpdatedAt.IsZero())

	actor, err := svc.EffectiveActor(ctx, "asm")
	require.NoError(t, err)
	assert.Equal(t, "rep-1", actor.ID)

	_, err = svc.Update(ctx, "asm", PreferenceUpdate{ActingAs: strPtr("rep-2")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.Update(ctx, "rep-1", PreferenceUpdate{ActingAs: strPtr("asm")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "subordinates cannot view as their manager")

	prefs, err = svc.Update(ctx, "asm", PreferenceUpdate{ActingAs: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "asm", prefs.ActingAs)
}

func TestPreferenceLanguage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := NewPreferenceService(repository.NewMemoryPreferenceRepository(), h.directory, "en")

	hi := domain.LanguageHindi
	prefs, err := svc.Update(ctx, "rep-1", PreferenceUpdate{Language: &hi})
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageHindi, prefs.Language)
	assert.Equal(t, "rep-1", prefs.ActingAs)

	fr := domain.Language("fr")
	_, err = svc.Update(ctx, "rep-1", PreferenceUpdate{Language: &fr})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestPreferenceStaleViewAsFallsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	repo := repository.NewMemoryPreferenceRepository()
	require.NoError(t, repo.Save(ctx, &domain.Preferences{UserID: "rep-1", Language: domain.LanguageEnglish, ActingAs: "admin"}))

	svc := NewPreferenceService(repo, h.directory, "en")
	prefs, err := svc.Get(ctx, "rep-1")
	require.NoError(t, err)
	assert.Equal(t, "rep-1", prefs.ActingAs)
}
