package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/events"
	"github.com/spec-kit/sales-crm/internal/repository"
)

// ActivityRecorder appends AI insight entries to the activity feed when flows
// complete against CRM records.
type ActivityRecorder struct {
	dispatcher events.Dispatcher
	repo       repository.CRMRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewActivityRecorder creates the recorder.
func NewActivityRecorder(dispatcher events.Dispatcher, repo repository.CRMRepository, logger *zap.Logger) *ActivityRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRecorder{dispatcher: dispatcher, repo: repo, logger: logger, now: time.Now}
}

// RegisterHandlers subscribes to events.
func (r *ActivityRecorder) RegisterHandlers() {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Subscribe(events.EventFlowCompleted, r.handleFlowCompleted)
	r.dispatcher.Subscribe(events.EventActivityLogged, r.handleActivityLogged)
}

func (r *ActivityRecorder) handleFlowCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.FlowCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}

	owner := payload.OwnerID
	if owner == "" {
		owner = event.ActorID
	}
	activity := &domain.Activity{
		ID:         uuid.NewString(),
		UserID:     owner,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Type:       domain.ActivityAIInsight,
		Summary:    insightSummary(payload),
		CreatedAt:  r.now().UTC(),
	}
	if err := r.repo.CreateActivity(ctx, activity); err != nil {
		r.logger.Error("record AI insight", zap.String("entity_id", event.EntityID), zap.Error(err))
		return err
	}
	r.logger.Info("FlowCompleted",
		zap.String("flow", payload.Flow),
		zap.String("entity_id", event.EntityID),
		zap.String("requested_by", event.ActorID))
	return nil
}

func (r *ActivityRecorder) handleActivityLogged(_ context.Context, event events.Event) error {
	r.logger.Info("ActivityLogged",
		zap.String("actor_id", event.ActorID),
		zap.String("entity_id", event.EntityID),
		zap.Any("payload", event.Payload))
	return nil
}

func insightSummary(p events.FlowCompletedPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %.0f/100", p.Flow, p.Score)
	if p.Priority != "" {
		fmt.Fprintf(&b, " (%s priority)", p.Priority)
	}
	if p.Summary != "" {
		b.WriteString(". ")
		b.WriteString(p.Summary)
	}
	return b.String()
}
