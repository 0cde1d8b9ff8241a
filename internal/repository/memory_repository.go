package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/visibility"
)

type memoryCRMRepository struct {
	mu         sync.RWMutex
	anchors    []domain.Anchor
	spokes     []domain.Spoke
	tasks      []domain.Task
	activities []domain.Activity
	now        func() time.Time
}

// NewMemoryCRMRepository serves CRM records from mock data held in memory.
// Missing records are reported with pgx.ErrNoRows to match the Postgres store.
func NewMemoryCRMRepository(seed *Seed) CRMRepository {
	r := &memoryCRMRepository{now: time.Now}
	if seed != nil {
		r.anchors = append(r.anchors, seed.Anchors...)
		r.spokes = append(r.spokes, seed.Spokes...)
		r.tasks = append(r.tasks, seed.Tasks...)
		r.activities = append(r.activities, seed.Activities...)
	}
	return r
}

func (r *memoryCRMRepository) ListAnchors(_ context.Context, ownerIDs []string) ([]domain.Anchor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := visibility.Filter(r.anchors, visibility.NewSet(ownerIDs...), func(a domain.Anchor) string { return a.OwnerID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryCRMRepository) GetAnchor(_ context.Context, id string) (*domain.Anchor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.anchors {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryCRMRepository) ListSpokes(_ context.Context, ownerIDs []string) ([]domain.Spoke, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := visibility.Filter(r.spokes, visibility.NewSet(ownerIDs...), func(s domain.Spoke) string { return s.AssignedTo })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryCRMRepository) GetSpoke(_ context.Context, id string) (*domain.Spoke, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.spokes {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryCRMRepository) UpdateSpokeScore(_ context.Context, id string, score float64, priority string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.spokes {
		if r.spokes[i].ID == id {
			r.spokes[i].Score = &score
			r.spokes[i].Priority = priority
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memoryCRMRepository) ListTasks(_ context.Context, ownerIDs []string) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := visibility.Filter(r.tasks, visibility.NewSet(ownerIDs...), func(t domain.Task) string { return t.AssignedTo })
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memoryCRMRepository) GetTask(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryCRMRepository) UpdateTaskStatus(_ context.Context, id string, status domain.TaskStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks[i].Status = status
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memoryCRMRepository) ListActivities(_ context.Context, ownerIDs []string, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := visibility.Filter(r.activities, visibility.NewSet(ownerIDs...), func(a domain.Activity) string { return a.UserID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryCRMRepository) CountActivitiesSince(_ context.Context, ownerIDs []string, since time.Time) (int, error) {
	owners := visibility.NewSet(ownerIDs...)
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.activities {
		if owners.Contains(a.UserID) && a.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (r *memoryCRMRepository) CreateActivity(_ context.Context, activity *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = r.now()
	}
	r.activities = append(r.activities, *activity)
	return nil
}
