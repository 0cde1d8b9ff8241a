package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/flows"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

func TestListsAreScopedToVisibility(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	spokes, err := h.crm.ListSpokes(ctx, "asm")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s-1", "s-2", "s-bad"}, ids(spokes, func(s domain.Spoke) string { return s.ID }))

	spokes, err = h.crm.ListSpokes(ctx, "rep-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s-1", "s-bad"}, ids(spokes, func(s domain.Spoke) string { return s.ID }))

	anchors, err := h.crm.ListAnchors(ctx, "admin")
	require.NoError(t, err)
	assert.Len(t, anchors, 2)

	anchors, err = h.crm.ListAnchors(ctx, "rep-1")
	require.NoError(t, err)
	assert.Empty(t, anchors)

	tasks, err := h.crm.ListTasks(ctx, "asm")
	require.NoError(t, err)
	assert.Equal(t, []string{"t-3", "t-1"}, ids(tasks, func(t domain.Task) string { return t.ID }))

	acts, err := h.crm.ListActivities(ctx, "rep-2", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"x-2"}, ids(acts, func(a domain.Activity) string { return a.ID }))

	_, err = h.crm.ListAnchors(ctx, "stranger")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestGetOutsideVisibilityIsForbidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.crm.GetSpoke(ctx, "asm", "s-3")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = h.crm.GetAnchor(ctx, "rep-1", "a-1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = h.crm.GetSpoke(ctx, "admin", "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	spoke, err := h.crm.GetSpoke(ctx, "admin", "s-3")
	require.NoError(t, err)
	assert.Equal(t, "rep-2", spoke.AssignedTo)
}

func TestCompleteTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	task, err := h.crm.CompleteTask(ctx, "asm", "t-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, task.Status)

	_, err = h.crm.CompleteTask(ctx, "asm", "t-1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = h.crm.CompleteTask(ctx, "asm", "t-2")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestLogActivityResolvesAddress(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	lat, lng := 18.5204, 73.8567

	act, err := h.crm.LogActivity(ctx, "rep-1", ActivityInput{
		EntityType: domain.EntitySpoke,
		EntityID:   "s-1",
		Type:       domain.ActivityVisit,
		Summary:    "  Site visit  ",
		Latitude:   &lat,
		Longitude:  &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, "FC Road, Pune, Maharashtra 411004", act.Address)
	assert.Equal(t, "Site visit", act.Summary)
	assert.Equal(t, 1, h.provider.calls(flows.ReverseGeocode))

	acts, err := h.crm.ListActivities(ctx, "rep-1", 10)
	require.NoError(t, err)
	assert.Equal(t, act.ID, acts[0].ID)
}

func TestLogActivityDegradesWhenGeocodeFails(t *testing.T) {
	h := newHarness(t)
	h.provider.errs[flows.ReverseGeocode] = errors.New("network down")
	lat, lng := 18.5, 73.8

	act, err := h.crm.LogActivity(context.Background(), "rep-1", ActivityInput{
		EntityType: domain.EntitySpoke,
		EntityID:   "s-1",
		Type:       domain.ActivityVisit,
		Summary:    "visit",
		Latitude:   &lat,
		Longitude:  &lng,
	})
	require.NoError(t, err)
	assert.Empty(t, act.Address)
	assert.NotNil(t, act.Latitude)
}

func TestLogActivityValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	lat := 10.0

	cases := map[string]ActivityInput{
		"bad type":       {EntityType: domain.EntitySpoke, EntityID: "s-1", Type: "DANCE", Summary: "x"},
		"ai insight":     {EntityType: domain.EntitySpoke, EntityID: "s-1", Type: domain.ActivityAIInsight, Summary: "x"},
		"empty summary":  {EntityType: domain.EntitySpoke, EntityID: "s-1", Type: domain.ActivityCall, Summary: " "},
		"half coords":    {EntityType: domain.EntitySpoke, EntityID: "s-1", Type: domain.ActivityCall, Summary: "x", Latitude: &lat},
		"unknown entity": {EntityType: "DEAL", EntityID: "s-1", Type: domain.ActivityCall, Summary: "x"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.crm.LogActivity(ctx, "rep-1", in)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed), err)
		})
	}

	_, err := h.crm.LogActivity(ctx, "rep-1", ActivityInput{EntityType: domain.EntityAnchor, EntityID: "a-2", Type: domain.ActivityCall, Summary: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Zero(t, h.provider.calls(flows.ReverseGeocode))
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	h.crm.now = func() time.Time { return time.Date(2024, 4, 3, 12, 0, 0, 0, time.UTC) }

	d, err := h.crm.Dashboard(context.Background(), "asm")
	require.NoError(t, err)
	assert.Equal(t, 3, d.VisibleUsers)
	assert.Equal(t, 1, d.Anchors)
	assert.Equal(t, 3, d.Spokes)
	assert.Equal(t, 1, d.OpenTasks)
	assert.Equal(t, 1, d.OverdueTasks)
	assert.Equal(t, 2, d.Pipeline[domain.SpokeStageLead])
	assert.Equal(t, 1, d.Pipeline[domain.SpokeStageQualified])
	assert.Equal(t, 0, d.Pipeline[domain.SpokeStageActive])
	assert.Equal(t, 1, d.ActivitiesThisWeek)
	assert.Nil(t, d.AverageSpokeScore)
}

func TestDashboardCountsEveryRecentActivity(t *testing.T) {
	h := newHarness(t)
	now := time.Date(2024, 4, 3, 12, 0, 0, 0, time.UTC)
	h.crm.now = func() time.Time { return now }

	for i := 0; i < 1200; i++ {
		require.NoError(t, h.repo.CreateActivity(context.Background(), &domain.Activity{
			ID:         fmt.Sprintf("bulk-%d", i),
			UserID:     "rep-1",
			EntityType: domain.EntitySpoke,
			EntityID:   "s-1",
			Type:       domain.ActivityCall,
			Summary:    "follow-up call",
			CreatedAt:  now.Add(-time.Duration(i) * time.Minute),
		}))
	}

	d, err := h.crm.Dashboard(context.Background(), "asm")
	require.NoError(t, err)
	assert.Equal(t, 1201, d.ActivitiesThisWeek)
}
