package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/sales-crm/internal/domain"
)

// ErrPreferencesNotFound is returned when a user has no stored preferences.
var ErrPreferencesNotFound = errors.New("preferences not found")

// PreferenceRepository persists per-user session preferences.
type PreferenceRepository interface {
	Get(ctx context.Context, userID string) (*domain.Preferences, error)
	Save(ctx context.Context, prefs *domain.Preferences) error
}

const preferenceKeyPrefix = "crm:prefs:"

type storedPreferences struct {
	Language  string    `json:"language"`
	ActingAs  string    `json:"acting_as"`
	UpdatedAt time.Time `json:"updated_at"`
}

type redisPreferenceRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPreferenceRepository stores preferences as JSON values with an optional TTL.
func NewRedisPreferenceRepository(client *redis.Client, ttl time.Duration) PreferenceRepository {
	return &redisPreferenceRepository{client: client, ttl: ttl}
}

func (r *redisPreferenceRepository) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	raw, err := r.client.Get(ctx, preferenceKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, err
	}
	var stored storedPreferences
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &domain.Preferences{
		UserID:    userID,
		Language:  domain.Language(stored.Language),
		ActingAs:  stored.ActingAs,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

func (r *redisPreferenceRepository) Save(ctx context.Context, prefs *domain.Preferences) error {
	raw, err := json.Marshal(storedPreferences{
		Language:  string(prefs.Language),
		ActingAs:  prefs.ActingAs,
		UpdatedAt: prefs.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, preferenceKeyPrefix+prefs.UserID, raw, r.ttl).Err()
}

type memoryPreferenceRepository struct {
	mu    sync.RWMutex
	prefs map[string]domain.Preferences
}

// NewMemoryPreferenceRepository keeps preferences for the life of the process.
func NewMemoryPreferenceRepository() PreferenceRepository {
	return &memoryPreferenceRepository{prefs: make(map[string]domain.Preferences)}
}

func (r *memoryPreferenceRepository) Get(_ context.Context, userID string) (*domain.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prefs[userID]
	if !ok {
		return nil, ErrPreferencesNotFound
	}
	return &p, nil
}

func (r *memoryPreferenceRepository) Save(_ context.Context, prefs *domain.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[prefs.UserID] = *prefs
	return nil
}
