package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sales-crm/internal/domain"
)

func testSeed() *Seed {
	base := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	return &Seed{
		Anchors: []domain.Anchor{
			{ID: "a1", OwnerID: "u1", CreatedAt: base},
			{ID: "a2", OwnerID: "u2", CreatedAt: base.Add(time.Hour)},
			{ID: "a3", OwnerID: "u3", CreatedAt: base.Add(2 * time.Hour)},
		},
		Spokes: []domain.Spoke{
			{ID: "s1", AssignedTo: "u1"},
			{ID: "s2", AssignedTo: "u3"},
		},
		Tasks: []domain.Task{
			{ID: "t1", AssignedTo: "u2", DueDate: base.Add(48 * time.Hour), Status: domain.TaskStatusOpen},
			{ID: "t2", AssignedTo: "u1", DueDate: base.Add(24 * time.Hour), Status: domain.TaskStatusOpen},
		},
		Activities: []domain.Activity{
			{ID: "x1", UserID: "u1", CreatedAt: base},
			{ID: "x2", UserID: "u1", CreatedAt: base.Add(time.Hour)},
			{ID: "x3", UserID: "u3", CreatedAt: base.Add(2 * time.Hour)},
		},
	}
}

func TestMemoryCRMRepositoryScoping(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCRMRepository(testSeed())

	anchors, err := repo.ListAnchors(ctx, []string{"u1", "u2"})
	require.NoError(t, err)
	require.Len(t, anchors, 2)
	assert.Equal(t, "a2", anchors[0].ID, "newest first")

	spokes, err := repo.ListSpokes(ctx, []string{"u3"})
	require.NoError(t, err)
	require.Len(t, spokes, 1)
	assert.Equal(t, "s2", spokes[0].ID)

	tasks, err := repo.ListTasks(ctx, []string{"u1", "u2"})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t2", tasks[0].ID, "earliest due first")

	acts, err := repo.ListActivities(ctx, []string{"u1"}, 1)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "x2", acts[0].ID)

	none, err := repo.ListAnchors(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryCRMRepositoryLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCRMRepository(testSeed())

	a, err := repo.GetAnchor(ctx, "a3")
	require.NoError(t, err)
	assert.Equal(t, "u3", a.OwnerID)

	_, err = repo.GetAnchor(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = repo.GetSpoke(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = repo.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryCRMRepositoryWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCRMRepository(testSeed())

	require.NoError(t, repo.UpdateSpokeScore(ctx, "s1", 77, "High"))
	s, err := repo.GetSpoke(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, s.Score)
	assert.Equal(t, 77.0, *s.Score)
	assert.Equal(t, "High", s.Priority)
	assert.ErrorIs(t, repo.UpdateSpokeScore(ctx, "nope", 1, "Low"), pgx.ErrNoRows)

	require.NoError(t, repo.UpdateTaskStatus(ctx, "t1", domain.TaskStatusDone))
	task, err := repo.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, task.Status)

	act := &domain.Activity{ID: "x9", UserID: "u2", Type: domain.ActivityNote, Summary: "note"}
	require.NoError(t, repo.CreateActivity(ctx, act))
	assert.False(t, act.CreatedAt.IsZero())

	acts, err := repo.ListActivities(ctx, []string{"u2"}, 10)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "x9", acts[0].ID)
}

func TestMemoryCRMRepositoryCountActivitiesSince(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCRMRepository(testSeed())
	base := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	n, err := repo.CountActivitiesSince(ctx, []string{"u1", "u3"}, base)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountActivitiesSince(ctx, []string{"u1"}, base.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountActivitiesSince(ctx, []string{"nobody"}, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryCRMRepositoryEmptyListsAreNotNil(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCRMRepository(&Seed{})

	anchors, err := repo.ListAnchors(ctx, []string{"u1"})
	require.NoError(t, err)
	assert.NotNil(t, anchors)
	assert.Empty(t, anchors)

	acts, err := repo.ListActivities(ctx, []string{"u1"}, 10)
	require.NoError(t, err)
	assert.NotNil(t, acts)
}

func TestMemoryCRMRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCRMRepository(testSeed())

	a, err := repo.GetAnchor(ctx, "a1")
	require.NoError(t, err)
	a.OwnerID = "someone-else"

	again, err := repo.GetAnchor(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "u1", again.OwnerID)
}

func TestMemoryPreferenceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPreferenceRepository()

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrPreferencesNotFound)

	require.NoError(t, repo.Save(ctx, &domain.Preferences{UserID: "u1", Language: domain.LanguageHindi, ActingAs: "u2"}))
	p, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageHindi, p.Language)
	assert.Equal(t, "u2", p.ActingAs)
}

func TestSeedUserRepositoryCopies(t *testing.T) {
	seed := &Seed{Users: []domain.User{{ID: "u1", Role: domain.RoleSales}}}
	repo := NewSeedUserRepository(seed)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	users[0].ID = "mutated"

	again, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", again[0].ID)
}
