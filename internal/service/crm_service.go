package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/events"
	"github.com/spec-kit/sales-crm/internal/repository"
	"github.com/spec-kit/sales-crm/internal/visibility"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

const defaultActivityLimit = 50

// AddressResolver turns visit coordinates into a postal address.
type AddressResolver interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}

// CRMService serves anchors, spokes, tasks and activities scoped to the
// visibility set of the acting user.
type CRMService struct {
	repo       repository.CRMRepository
	directory  *DirectoryService
	geocoder   AddressResolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// CRMDependencies groups collaborators for CRMService.
type CRMDependencies struct {
	Repo       repository.CRMRepository
	Directory  *DirectoryService
	Geocoder   AddressResolver
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewCRMService builds the service.
func NewCRMService(deps CRMDependencies) *CRMService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CRMService{
		repo:       deps.Repo,
		directory:  deps.Directory,
		geocoder:   deps.Geocoder,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// ListAnchors returns anchors owned by anyone in actorID's visibility set.
func (s *CRMService) ListAnchors(ctx context.Context, actorID string) ([]domain.Anchor, error) {
	visible, err := s.directory.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}
	anchors, err := s.repo.ListAnchors(ctx, visible.Slice())
	return anchors, apperrors.MapError(err)
}

// GetAnchor returns one anchor, or FORBIDDEN when its owner is not visible.
func (s *CRMService) GetAnchor(ctx context.Context, actorID, anchorID string) (*domain.Anchor, error) {
	visible, err := s.directory.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}
	anchor, err := s.repo.GetAnchor(ctx, anchorID)
	if err != nil {
		return nil, notFoundOr(err, "anchor", anchorID)
	}
	if !visible.Contains(anchor.OwnerID) {
		return nil, apperrors.NewForbidden("anchor is outside your visibility")
	}
	return anchor, nil
}

// ListSpokes returns spokes assigned to anyone in actorID's visibility set.
func (s *CRMService) ListSpokes(ctx context.Context, actorID string) ([]domain.Spoke, error) {
	visible, err := s.directory.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}
	spokes, err := s.repo.ListSpokes(ctx, visible.Slice())
	return spokes, apperrors.MapError(err)
}

// GetSpoke returns one spoke, or FORBIDDEN when its assignee is not visible.
func (s *CRMService) GetSpoke(ctx context.Context, actorID, spokeID string) (*domain.Spoke, error) {
	visible, err := s.directory.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}
	return s.visibleSpoke(ctx, visible, spokeID)
}

func (s *CRMService) visibleSpoke(ctx context.Context, visible visibility.Set, spokeID string) (*domain.Spoke, error) {
	spoke, err := s.repo.GetSpoke(ctx, spokeID)
	if err != nil {
		return nil, notFoundOr(err, "spoke", spokeID)
	}
	if !visible.Contains(spoke.AssignedTo) {
		return nil, apperrors.NewForbidden("spoke is outside your visibility")
	}
	return spoke, nil
}

// ListTasks returns tasks assigned within actorID's visibility set, earliest due first.
func (s *CRMService) ListTasks(ctx context.Context, actorID string) ([]domain.Task, error) {
	visible, err := s.directory.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, visible.Slice())
	return tasks, apperrors.MapError(err)
}

// CompleteTask marks a visible open task as done.
func (s *CRMService) CompleteTask(ctx context.Context, actorID, taskID string) (*domain.Task, error) {
	visible, err := s.directory.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "task", taskID)
	}
	if !visible.Contains(task.AssignedTo) {
		return nil, apperrors.NewForbidden("task is outside your visibility")
	}
	if task.Status == domain.TaskStatusDone {
		return nil, apperrors.NewConflict("task already completed", map[string]any{"task_id": taskID})
	}
	if err := s.repo.UpdateTaskStatus(ctx, taskID, domain.TaskStatusDone); err != nil {
		return nil, apperrors.MapError(err)
	}
	task.Status = domain.TaskStatusDone
	return task, nil
}

// ListActivities returns the newest activities logged by anyone in actorID's visibility set.
func (s *CRMService) ListActivities(ctx context.Context, actorID string, limit int) ([]domain.Activity, error) {
	visible, err := s.directory.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = defaultActivityLimit
	}
	acts, err := s.repo.ListActivities(ctx, visible.Slice(), limit)
	return acts, apperrors.MapError(err)
}

// ActivityInput is a field activity reported by a user.
type ActivityInput struct {
	EntityType domain.EntityType
	EntityID   string
	Type       domain.ActivityType
	Summary    string
	Latitude   *float64
	Longitude  *float64
}

// LogActivity records an activity against a visible anchor or spoke. When
// coordinates are supplied the address is resolved; a failed lookup is logged
// and the activity is stored without an address.
func (s *CRMService) LogActivity(ctx context.Context, actorID string, in ActivityInput) (*domain.Activity, error) {
	details := map[string]any{}
	if !in.Type.Valid() || in.Type == domain.ActivityAIInsight {
		details["type"] = in.Type
	}
	if strings.TrimSpace(in.Summary) == "" {
		details["summary"] = "required"
	}
	if strings.TrimSpace(in.EntityID) == "" {
		details["entity_id"] = "required"
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		details["coordinates"] = "latitude and longitude must be given together"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid activity", details)
	}

	visible, err := s.directory.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}
	switch in.EntityType {
	case domain.EntityAnchor:
		anchor, err := s.repo.GetAnchor(ctx, in.EntityID)
		if err != nil {
			return nil, notFoundOr(err, "anchor", in.EntityID)
		}
		if !visible.Contains(anchor.OwnerID) {
			return nil, apperrors.NewForbidden("anchor is outside your visibility")
		}
	case domain.EntitySpoke:
		if _, err := s.visibleSpoke(ctx, visible, in.EntityID); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewValidationError("invalid activity", map[string]any{"entity_type": in.EntityType})
	}

	activity := &domain.Activity{
		ID:         uuid.NewString(),
		UserID:     actorID,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		Type:       in.Type,
		Summary:    strings.TrimSpace(in.Summary),
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		CreatedAt:  s.now().UTC(),
	}
	if in.Latitude != nil && s.geocoder != nil {
		address, err := s.geocoder.ReverseGeocode(ctx, *in.Latitude, *in.Longitude)
		if err != nil {
			s.logger.Warn("reverse geocode failed; storing activity without address",
				zap.String("activity_id", activity.ID), zap.Error(err))
		} else {
			activity.Address = address
		}
	}

	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventActivityLogged,
		ActorID:    actorID,
		EntityType: activity.EntityType,
		EntityID:   activity.EntityID,
		Timestamp:  activity.CreatedAt,
		Payload: events.ActivityLoggedPayload{
			ActivityID: activity.ID,
			Type:       activity.Type,
			HasAddress: activity.Address != "",
		},
	})
	return activity, nil
}

// Dashboard summarizes the records visible to one actor.
type Dashboard struct {
	VisibleUsers       int                       `json:"visible_users"`
	Anchors            int                       `json:"anchors"`
	Spokes             int                       `json:"spokes"`
	OpenTasks          int                       `json:"open_tasks"`
	OverdueTasks       int                       `json:"overdue_tasks"`
	Pipeline           map[domain.SpokeStage]int `json:"pipeline"`
	ActivitiesThisWeek int                       `json:"activities_this_week"`
	AverageSpokeScore  *float64                  `json:"average_spoke_score,omitempty"`
}

// Dashboard computes headline counts for actorID's visibility set.
func (s *CRMService) Dashboard(ctx context.Context, actorID string) (*Dashboard, error) {
	visible, err := s.directory.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}
	ids := visible.Slice()

	anchors, err := s.repo.ListAnchors(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	spokes, err := s.repo.ListSpokes(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tasks, err := s.repo.ListTasks(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	now := s.now()
	recent, err := s.repo.CountActivitiesSince(ctx, ids, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	out := &Dashboard{
		VisibleUsers:       visible.Len(),
		Anchors:            len(anchors),
		Spokes:             len(spokes),
		Pipeline:           make(map[domain.SpokeStage]int, len(domain.SpokeStages())),
		ActivitiesThisWeek: recent,
	}
	for _, stage := range domain.SpokeStages() {
		out.Pipeline[stage] = 0
	}

	var scoreSum float64
	var scored int
	for _, sp := range spokes {
		out.Pipeline[sp.Stage]++
		if sp.Score != nil {
			scoreSum += *sp.Score
			scored++
		}
	}
	if scored > 0 {
		avg := scoreSum / float64(scored)
		out.AverageSpokeScore = &avg
	}

	for _, t := range tasks {
		if t.Status == domain.TaskStatusOpen {
			out.OpenTasks++
		}
		if t.Overdue(now) {
			out.OverdueTasks++
		}
	}
	return out, nil
}

func (s *CRMService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func notFoundOr(err error, resource, id string) error {
	if apperrors.HasCode(apperrors.MapError(err), apperrors.CodeNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}
