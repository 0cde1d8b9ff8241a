package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-crm/internal/api/http/handlers"
	"github.com/spec-kit/sales-crm/internal/auth"
	"github.com/spec-kit/sales-crm/internal/config"
	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/events"
	"github.com/spec-kit/sales-crm/internal/flows"
	"github.com/spec-kit/sales-crm/internal/observability"
	"github.com/spec-kit/sales-crm/internal/repository"
	"github.com/spec-kit/sales-crm/internal/service"
	"github.com/spec-kit/sales-crm/internal/visibility"
)

type cannedProvider struct {
	replies map[flows.Name]string
}

func (p cannedProvider) Name() string { return "canned" }

func (p cannedProvider) Generate(_ context.Context, req flows.Request) (string, error) {
	return p.replies[req.Flow], nil
}

const seedYAML = `
users:
  - {id: admin, name: Admin, email: admin@crm.local, role: ADMIN, password: pw}
  - {id: asm, name: Area, email: asm@crm.local, role: AREA_SALES_MANAGER, reports_to: admin, password: pw}
  - {id: rep, name: Rep, email: rep@crm.local, role: SALES, reports_to: asm, password: pw}
  - {id: other, name: Other, email: other@crm.local, role: SALES, reports_to: admin, password: pw}
anchors:
  - {id: a-1, name: Tata Steel, industry: Steel, city: Pune, owner: asm, created_at: 2024-01-01T00:00:00Z}
spokes:
  - {id: s-1, anchor: a-1, name: Ganesh Traders, contact_number: "9876543210", city: Pune, stage: LEAD, assigned_to: rep, created_at: 2024-01-02T00:00:00Z}
  - {id: s-2, anchor: a-1, name: Other Traders, contact_number: "9876500000", city: Pune, stage: LEAD, assigned_to: other, created_at: 2024-01-03T00:00:00Z}
tasks:
  - {id: t-1, title: Call, related_type: SPOKE, related_id: s-1, assigned_to: rep, due: 2024-01-05T00:00:00Z, status: OPEN, priority: HIGH}
`

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	seed, err := repository.ParseSeed([]byte(seedYAML), 4)
	require.NoError(t, err)
	dir, err := visibility.NewDirectory(seed.Users)
	require.NoError(t, err)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	directory := service.NewDirectoryService(dir)
	crmRepo := repository.NewMemoryCRMRepository(seed)
	dispatcher := events.NewInMemoryDispatcher()
	prefs := service.NewPreferenceService(repository.NewMemoryPreferenceRepository(), directory, "en")
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5}}
	authService := service.NewAuthService(cfg, directory)

	provider := cannedProvider{replies: map[flows.Name]string{
		flows.SpokeScoring:   `{"score":70,"priority":"High","rationale":"Good fit."}`,
		flows.ReverseGeocode: `{"address":"Pune 411001"}`,
	}}
	flowService := service.NewFlowService(service.FlowDependencies{
		Provider: provider, Repo: crmRepo, Directory: directory, Dispatcher: dispatcher,
		Metrics: metrics, Logger: logger, BatchLimit: 2,
	})
	crmService := service.NewCRMService(service.CRMDependencies{
		Repo: crmRepo, Directory: directory, Geocoder: flowService, Dispatcher: dispatcher, Logger: logger,
	})

	app := NewApp("test", logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "v0", map[string]handlers.Pinger{}, metrics),
		Auth:           handlers.NewAuthHandler(authService, prefs),
		Directory:      handlers.NewDirectoryHandler(directory),
		CRM:            handlers.NewCRMHandler(crmService),
		Flows:          handlers.NewFlowsHandler(flowService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), directory, prefs),
	})
	return &testServer{t: t, app: app}
}

type testServer struct {
	t   *testing.T
	app interface {
		Test(req *stdhttp.Request, msTimeout ...int) (*stdhttp.Response, error)
	}
}

func (s *testServer) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	if len(raw) > 0 {
		require.NoError(s.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(email string) string {
	s.t.Helper()
	status, body := s.do(stdhttp.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "pw"})
	require.Equal(s.t, stdhttp.StatusOK, status, body)
	return body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
}

func dataList(t *testing.T, body map[string]any) []any {
	t.Helper()
	list, ok := body["data"].([]any)
	require.True(t, ok, body)
	return list
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(stdhttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, stdhttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, _ = s.do(stdhttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, stdhttp.StatusOK, status)

	status, body = s.do(stdhttp.MethodGet, "/metrics", "", nil)
	assert.Equal(t, stdhttp.StatusOK, status)
	assert.Contains(t, body, "data")
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(stdhttp.MethodPost, "/auth/login", "", map[string]string{"email": "rep@crm.local", "password": "nope"})
	assert.Equal(t, stdhttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _ = s.do(stdhttp.MethodGet, "/spokes", "", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, status)
}

func TestScopedListing(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(stdhttp.MethodGet, "/spokes", s.login("asm@crm.local"), nil)
	require.Equal(t, stdhttp.StatusOK, status)
	assert.Len(t, dataList(t, body), 1)

	status, body = s.do(stdhttp.MethodGet, "/spokes", s.login("admin@crm.local"), nil)
	require.Equal(t, stdhttp.StatusOK, status)
	assert.Len(t, dataList(t, body), 2)

	rep := s.login("rep@crm.local")
	status, body = s.do(stdhttp.MethodGet, "/spokes/s-2", rep, nil)
	assert.Equal(t, stdhttp.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = s.do(stdhttp.MethodGet, "/directory/visible", rep, nil)
	require.Equal(t, stdhttp.StatusOK, status)
	assert.Len(t, dataList(t, body), 1)
}

func TestViewAs(t *testing.T) {
	s := newTestServer(t)
	asm := s.login("asm@crm.local")

	status, body := s.do(stdhttp.MethodPut, "/me/preferences", asm, map[string]string{"acting_as": "rep", "language": "hi"})
	require.Equal(t, stdhttp.StatusOK, status, body)

	status, body = s.do(stdhttp.MethodGet, "/me", asm, nil)
	require.Equal(t, stdhttp.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "rep", data["actor"].(map[string]any)["id"])
	assert.Equal(t, "hi", data["preferences"].(map[string]any)["language"])

	status, body = s.do(stdhttp.MethodGet, "/anchors", asm, nil)
	require.Equal(t, stdhttp.StatusOK, status)
	assert.Empty(t, dataList(t, body), "viewing as rep hides the manager's own anchors")

	status, _ = s.do(stdhttp.MethodPut, "/me/preferences", asm, map[string]string{"acting_as": "other"})
	assert.Equal(t, stdhttp.StatusForbidden, status)
}

func TestFlowRoutes(t *testing.T) {
	s := newTestServer(t)
	asm := s.login("asm@crm.local")
	rep := s.login("rep@crm.local")

	status, body := s.do(stdhttp.MethodGet, "/flows", rep, nil)
	require.Equal(t, stdhttp.StatusOK, status)
	assert.Len(t, dataList(t, body), 4)

	status, body = s.do(stdhttp.MethodPost, "/spokes/s-1/score", rep, nil)
	require.Equal(t, stdhttp.StatusOK, status, body)
	assert.Equal(t, "High", body["data"].(map[string]any)["priority"])

	status, body = s.do(stdhttp.MethodPost, "/flows/reverse-geocode", rep, map[string]any{"latitude": 123.0, "longitude": 0})
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_INPUT", errorCode(body))

	status, _ = s.do(stdhttp.MethodPost, "/spokes/score", rep, map[string]any{"spoke_ids": []string{"s-1"}})
	assert.Equal(t, stdhttp.StatusForbidden, status)

	status, body = s.do(stdhttp.MethodPost, "/spokes/score", asm, map[string]any{"spoke_ids": []string{"s-1", "s-2"}})
	require.Equal(t, stdhttp.StatusOK, status, body)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 1, data["succeeded"])
	assert.EqualValues(t, 1, data["failed"])
}

func TestActivityAndTaskRoutes(t *testing.T) {
	s := newTestServer(t)
	rep := s.login("rep@crm.local")

	status, body := s.do(stdhttp.MethodPost, "/activities", rep, map[string]any{
		"entity_type": string(domain.EntitySpoke),
		"entity_id":   "s-1",
		"type":        string(domain.ActivityVisit),
		"summary":     "Visited shop",
		"latitude":    18.52,
		"longitude":   73.85,
	})
	require.Equal(t, stdhttp.StatusCreated, status, body)
	assert.Equal(t, "Pune 411001", body["data"].(map[string]any)["address"])

	status, body = s.do(stdhttp.MethodPost, "/tasks/t-1/complete", rep, nil)
	require.Equal(t, stdhttp.StatusOK, status, body)
	assert.Equal(t, "DONE", body["data"].(map[string]any)["status"])

	status, body = s.do(stdhttp.MethodGet, "/dashboard", rep, nil)
	require.Equal(t, stdhttp.StatusOK, status)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["spokes"])
}

func TestEmptyListRendersArray(t *testing.T) {
	s := newTestServer(t)
	token := s.login("other@crm.local")

	status, body := s.do(stdhttp.MethodGet, "/anchors", token, nil)
	require.Equal(t, stdhttp.StatusOK, status)
	assert.Empty(t, dataList(t, body))

	status, body = s.do(stdhttp.MethodGet, "/activities", token, nil)
	require.Equal(t, stdhttp.StatusOK, status)
	assert.Empty(t, dataList(t, body))
}
