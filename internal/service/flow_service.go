package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/events"
	"github.com/spec-kit/sales-crm/internal/flows"
	"github.com/spec-kit/sales-crm/internal/observability"
	"github.com/spec-kit/sales-crm/internal/repository"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

const maxBatchSpokes = 100

// FlowService runs AI flows, either ad hoc or against CRM records.
type FlowService struct {
	provider   flows.Provider
	repo       repository.CRMRepository
	directory  *DirectoryService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	batchLimit int
	now        func() time.Time
}

// FlowDependencies groups collaborators for FlowService.
type FlowDependencies struct {
	Provider   flows.Provider
	Repo       repository.CRMRepository
	Directory  *DirectoryService
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// BatchLimit caps concurrent provider calls in ScoreSpokes.
	BatchLimit int
}

// NewFlowService builds the service.
func NewFlowService(deps FlowDependencies) *FlowService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := deps.BatchLimit
	if limit <= 0 {
		limit = 1
	}
	return &FlowService{
		provider:   deps.Provider,
		repo:       deps.Repo,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		batchLimit: limit,
		now:        time.Now,
	}
}

// FlowDescriptor documents one available flow.
type FlowDescriptor struct {
	Name         flows.Name         `json:"name"`
	Description  string             `json:"description"`
	InputSchema  *jsonschema.Schema `json:"input_schema"`
	OutputSchema *jsonschema.Schema `json:"output_schema"`
}

// Catalog lists every flow with its schemas.
func (s *FlowService) Catalog() []FlowDescriptor {
	names := flows.Names()
	out := make([]FlowDescriptor, 0, len(names))
	for _, name := range names {
		r, _ := flows.Lookup(name)
		out = append(out, FlowDescriptor{
			Name:         r.Name(),
			Description:  r.Description(),
			InputSchema:  r.InputSchema(),
			OutputSchema: r.OutputSchema(),
		})
	}
	return out
}

// Invoke runs the named flow on a raw JSON payload.
func (s *FlowService) Invoke(ctx context.Context, name string, raw []byte) (any, error) {
	runner, ok := flows.Lookup(flows.Name(name))
	if !ok {
		return nil, apperrors.NewNotFound("flow", map[string]any{"flow": name})
	}
	var out any
	err := s.observe(runner.Name(), func() error {
		var err error
		out, err = runner.InvokeJSON(ctx, s.provider, raw)
		return err
	})
	return out, err
}

// ScoreAnchorLead scores a visible anchor account as a lead.
func (s *FlowService) ScoreAnchorLead(ctx context.Context, actorID, anchorID string, lang domain.Language) (*flows.LeadScoreOutput, error) {
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

	in := flows.LeadScoreInput{
		CompanyName: anchor.Name,
		Industry:    anchor.Industry,
		Location:    anchor.Location(),
		LeadSource:  anchor.LeadSource,
		Language:    string(lang),
	}
	if anchor.AnnualTurnover > 0 {
		in.AnnualTurnover = &anchor.AnnualTurnover
	}
	if anchor.EmployeeCount > 0 {
		in.EmployeeCount = &anchor.EmployeeCount
	}

	var out *flows.LeadScoreOutput
	err = s.observe(flows.LeadScoring, func() error {
		var err error
		out, err = flows.Invoke(ctx, s.provider, flows.LeadScoringFlow, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, actorID, domain.EntityAnchor, anchor.ID, events.FlowCompletedPayload{
		Flow:    string(flows.LeadScoring),
		OwnerID: anchor.OwnerID,
		Score:   out.Score,
		Summary: out.Rationale,
	})
	return out, nil
}

// ScoreSpoke scores a visible spoke and stores the score and priority on it.
func (s *FlowService) ScoreSpoke(ctx context.Context, actorID, spokeID string, lang domain.Language) (*flows.SpokeScoreOutput, error) {
	visible, err := s.directory.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}
	spoke, err := s.repo.GetSpoke(ctx, spokeID)
	if err != nil {
		return nil, notFoundOr(err, "spoke", spokeID)
	}
	if !visible.Contains(spoke.AssignedTo) {
		return nil, apperrors.NewForbidden("spoke is outside your visibility")
	}
	return s.scoreSpoke(ctx, actorID, spoke, lang)
}

func (s *FlowService) scoreSpoke(ctx context.Context, actorID string, spoke *domain.Spoke, lang domain.Language) (*flows.SpokeScoreOutput, error) {
	anchor, err := s.repo.GetAnchor(ctx, spoke.AnchorID)
	if err != nil {
		return nil, notFoundOr(err, "anchor", spoke.AnchorID)
	}

	in := flows.SpokeScoreInput{
		SpokeName:     spoke.Name,
		ContactNumber: spoke.ContactNumber,
		AnchorName:    anchor.Name,
		City:          spoke.City,
		BusinessType:  spoke.BusinessType,
		Language:      string(lang),
	}
	if spoke.MonthlyVolume > 0 {
		volume := spoke.MonthlyVolume
		in.MonthlyVolume = &volume
	}
	if spoke.YearsInBusiness > 0 {
		years := spoke.YearsInBusiness
		in.YearsInBusiness = &years
	}

	var out *flows.SpokeScoreOutput
	err = s.observe(flows.SpokeScoring, func() error {
		var err error
		out, err = flows.Invoke(ctx, s.provider, flows.SpokeScoringFlow, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSpokeScore(ctx, spoke.ID, out.Score, out.Priority); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishCompleted(ctx, actorID, domain.EntitySpoke, spoke.ID, events.FlowCompletedPayload{
		Flow:     string(flows.SpokeScoring),
		OwnerID:  spoke.AssignedTo,
		Score:    out.Score,
		Priority: out.Priority,
		Summary:  out.Rationale,
	})
	return out, nil
}

// SpokeScoreResult is one entry of a batch scoring run. Exactly one of Result and Error is set.
type SpokeScoreResult struct {
	SpokeID string                  `json:"spoke_id"`
	Result  *flows.SpokeScoreOutput `json:"result,omitempty"`
	Error   *apperrors.DomainError  `json:"-"`
}

// ScoreSpokes scores several spokes concurrently, bounded by the batch limit.
// Per-spoke failures are reported in the results; the batch only fails as a
// whole on bad input or an unknown actor.
func (s *FlowService) ScoreSpokes(ctx context.Context, actorID string, spokeIDs []string, lang domain.Language) ([]SpokeScoreResult, error) {
	if len(spokeIDs) == 0 {
		return nil, apperrors.NewValidationError("spoke_ids must not be empty", nil)
	}
	if len(spokeIDs) > maxBatchSpokes {
		return nil, apperrors.NewValidationError(fmt.Sprintf("at most %d spokes per batch", maxBatchSpokes), map[string]any{"count": len(spokeIDs)})
	}
	visible, err := s.directory.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(spokeIDs))
	results := make([]SpokeScoreResult, 0, len(spokeIDs))
	for _, id := range spokeIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		results = append(results, SpokeScoreResult{SpokeID: id})
	}

	var g errgroup.Group
	g.SetLimit(s.batchLimit)
	for i := range results {
		res := &results[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				res.Error = apperrors.ToDomainError(apperrors.MapError(err))
				return nil
			}
			spoke, err := s.repo.GetSpoke(ctx, res.SpokeID)
			if err != nil {
				res.Error = apperrors.ToDomainError(notFoundOr(err, "spoke", res.SpokeID))
				return nil
			}
			if !visible.Contains(spoke.AssignedTo) {
				res.Error = apperrors.ToDomainError(apperrors.NewForbidden("spoke is outside your visibility"))
				return nil
			}
			out, err := s.scoreSpoke(ctx, actorID, spoke, lang)
			if err != nil {
				res.Error = apperrors.ToDomainError(err)
				return nil
			}
			res.Result = out
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	s.logger.Info("batch spoke scoring finished",
		zap.String("actor_id", actorID),
		zap.Int("requested", len(results)),
		zap.Int("failed", failed))
	return results, nil
}

// Transcribe converts a voice note data URI into text.
func (s *FlowService) Transcribe(ctx context.Context, audioDataURI string) (string, error) {
	var out *flows.TranscriptionOutput
	err := s.observe(flows.Transcription, func() error {
		var err error
		out, err = flows.Invoke(ctx, s.provider, flows.TranscriptionFlow, flows.TranscriptionInput{AudioDataURI: audioDataURI})
		return err
	})
	if err != nil {
		return "", err
	}
	return out.Transcript, nil
}

// ReverseGeocode resolves coordinates to a formatted address.
func (s *FlowService) ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error) {
	var out *flows.GeocodeOutput
	err := s.observe(flows.ReverseGeocode, func() error {
		var err error
		out, err = flows.Invoke(ctx, s.provider, flows.ReverseGeocodeFlow, flows.GeocodeInput{Latitude: latitude, Longitude: longitude})
		return err
	})
	if err != nil {
		return "", err
	}
	return out.Address, nil
}

func (s *FlowService) observe(name flows.Name, fn func() error) error {
	start := s.now()
	err := fn()
	elapsed := s.now().Sub(start)

	outcome := "ok"
	if err != nil {
		outcome = apperrors.ToDomainError(err).Code
		s.logger.Warn("flow failed",
			zap.String("flow", string(name)),
			zap.String("code", outcome),
			zap.Duration("latency", elapsed),
			zap.Error(err))
	} else {
		s.logger.Debug("flow completed", zap.String("flow", string(name)), zap.Duration("latency", elapsed))
	}
	s.metrics.RecordFlow(string(name), outcome, elapsed)
	return err
}

func (s *FlowService) publishCompleted(ctx context.Context, actorID string, entityType domain.EntityType, entityID string, payload events.FlowCompletedPayload) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventFlowCompleted,
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Timestamp:  s.now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(events.EventFlowCompleted)), zap.Error(err))
	}
}
