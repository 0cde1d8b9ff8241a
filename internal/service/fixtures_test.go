package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/events"
	"github.com/spec-kit/sales-crm/internal/flows"
	"github.com/spec-kit/sales-crm/internal/observability"
	"github.com/spec-kit/sales-crm/internal/repository"
	"github.com/spec-kit/sales-crm/internal/visibility"
)

// scriptedProvider answers by flow name and records every request.
type scriptedProvider struct {
	mu       sync.Mutex
	replies  map[flows.Name]string
	errs     map[flows.Name]error
	requests []flows.Request
	delay    time.Duration
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(ctx context.Context, req flows.Request) (string, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if err := p.errs[req.Flow]; err != nil {
		return "", err
	}
	return p.replies[req.Flow], nil
}

func (p *scriptedProvider) calls(flow flows.Name) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, r := range p.requests {
		if r.Flow == flow {
			n++
		}
	}
	return n
}

func (p *scriptedProvider) lastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return ""
	}
	return p.requests[len(p.requests)-1].Prompt
}

func testUsers() []domain.User {
	return []domain.User{
		{ID: "admin", Email: "admin@crm.local", Role: domain.RoleAdmin, Active: true},
		{ID: "asm", Email: "asm@crm.local", Role: domain.RoleAreaSalesManager, ReportsTo: "admin", Active: true},
		{ID: "rep-1", Email: "rep1@crm.local", Role: domain.RoleSales, ReportsTo: "asm", Active: true},
		{ID: "rep-2", Email: "rep2@crm.local", Role: domain.RoleSales, ReportsTo: "admin", Active: true},
		{ID: "gone", Email: "gone@crm.local", Role: domain.RoleSales, ReportsTo: "admin", Active: false},
	}
}

func testCRMSeed() *repository.Seed {
	base := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	return &repository.Seed{
		Anchors: []domain.Anchor{
			{ID: "a-1", Name: "Tata Steel", Industry: "Steel", City: "Pune", State: "Maharashtra", OwnerID: "asm", AnnualTurnover: 900, EmployeeCount: 1200, CreatedAt: base},
			{ID: "a-2", Name: "Hero Cycles", Industry: "Automotive", City: "Ludhiana", OwnerID: "rep-2", CreatedAt: base},
		},
		Spokes: []domain.Spoke{
			{ID: "s-1", AnchorID: "a-1", Name: "Ganesh Traders", ContactNumber: "9876543210", City: "Pune", Stage: domain.SpokeStageLead, AssignedTo: "rep-1", MonthlyVolume: 12, YearsInBusiness: 5, CreatedAt: base},
			{ID: "s-2", AnchorID: "a-1", Name: "Laxmi Fabricators", ContactNumber: "9765432109", City: "Hosur", Stage: domain.SpokeStageQualified, AssignedTo: "asm", CreatedAt: base},
			{ID: "s-3", AnchorID: "a-2", Name: "Punjab Parts", ContactNumber: "9654321098", City: "Ludhiana", Stage: domain.SpokeStageLead, AssignedTo: "rep-2", CreatedAt: base},
			{ID: "s-bad", AnchorID: "a-1", Name: "No Phone", ContactNumber: "12", City: "Pune", Stage: domain.SpokeStageLead, AssignedTo: "rep-1", CreatedAt: base},
		},
		Tasks: []domain.Task{
			{ID: "t-1", AssignedTo: "rep-1", Status: domain.TaskStatusOpen, DueDate: base.Add(24 * time.Hour)},
			{ID: "t-2", AssignedTo: "rep-2", Status: domain.TaskStatusOpen, DueDate: base.Add(48 * time.Hour)},
			{ID: "t-3", AssignedTo: "asm", Status: domain.TaskStatusDone, DueDate: base},
		},
		Activities: []domain.Activity{
			{ID: "x-1", UserID: "rep-1", EntityType: domain.EntitySpoke, EntityID: "s-1", Type: domain.ActivityCall, Summary: "call", CreatedAt: base},
			{ID: "x-2", UserID: "rep-2", EntityType: domain.EntityAnchor, EntityID: "a-2", Type: domain.ActivityVisit, Summary: "visit", CreatedAt: base},
		},
	}
}

type harness struct {
	directory  *DirectoryService
	repo       repository.CRMRepository
	dispatcher events.Dispatcher
	provider   *scriptedProvider
	metrics    *observability.Metrics
	flows      *FlowService
	crm        *CRMService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir, err := visibility.NewDirectory(testUsers())
	require.NoError(t, err)

	h := &harness{
		directory:  NewDirectoryService(dir),
		repo:       repository.NewMemoryCRMRepository(testCRMSeed()),
		dispatcher: events.NewInMemoryDispatcher(),
		metrics:    observability.NewMetrics(),
		provider: &scriptedProvider{
			replies: map[flows.Name]string{
				flows.LeadScoring:    `{"score":81,"rationale":"Large steel distributor with strong dealer network."}`,
				flows.SpokeScoring:   `{"score":64,"priority":"Medium","rationale":"Steady volumes."}`,
				flows.Transcription:  `{"transcript":"Met the owner, follow up next week."}`,
				flows.ReverseGeocode: `{"address":"FC Road, Pune, Maharashtra 411004"}`,
			},
			errs: map[flows.Name]error{},
		},
	}
	h.flows = NewFlowService(FlowDependencies{
		Provider:   h.provider,
		Repo:       h.repo,
		Directory:  h.directory,
		Dispatcher: h.dispatcher,
		Metrics:    h.metrics,
		Logger:     zap.NewNop(),
		BatchLimit: 2,
	})
	h.crm = NewCRMService(CRMDependencies{
		Repo:       h.repo,
		Directory:  h.directory,
		Geocoder:   h.flows,
		Dispatcher: h.dispatcher,
		Logger:     zap.NewNop(),
	})
	NewActivityRecorder(h.dispatcher, h.repo, zap.NewNop()).RegisterHandlers()
	return h
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
