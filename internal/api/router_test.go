package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmagp80/Clyra-sub003/internal/ai"
	"github.com/juanmagp80/Clyra-sub003/internal/api/middleware"
	"github.com/juanmagp80/Clyra-sub003/internal/collector"
	"github.com/juanmagp80/Clyra-sub003/internal/config"
	"github.com/juanmagp80/Clyra-sub003/internal/insights"
	"github.com/juanmagp80/Clyra-sub003/internal/notify"
	"github.com/juanmagp80/Clyra-sub003/internal/storage"
	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

func testRouter(t *testing.T, store *storage.MockStore, resolver middleware.SessionResolver) http.Handler {
	return testRouterWithReporter(t, store, resolver, nil)
}

func testRouterWithReporter(t *testing.T, store *storage.MockStore, resolver middleware.SessionResolver, reporter *notify.Reporter) http.Handler {
	t.Helper()

	gen, err := ai.NewGenerator(nil, nil)
	require.NoError(t, err)

	service := insights.NewService(collector.New(store, nil), gen, store, nil, nil)
	cfg := config.DefaultConfig()
	cfg.Env = "development"

	return NewRouter(RouterOptions{
		Service:  service,
		Store:    store,
		Resolver: resolver,
		Reporter: reporter,
		Config:   cfg,
	})
}

// recordingSender captures outbound email for assertions
type recordingSender struct {
	sent []notify.EmailMessage
}

func (s *recordingSender) Send(_ context.Context, msg notify.EmailMessage) error {
	s.sent = append(s.sent, msg)
	return nil
}

func seedStore() *storage.MockStore {
	now := time.Now().UTC()
	return &storage.MockStore{
		Sessions: []types.WorkSession{
			{
				ID:                "sess-1",
				UserID:            "user-1",
				StartTime:         now.Add(-3 * time.Hour),
				EndTime:           now.Add(-1 * time.Hour),
				DurationMinutes:   120,
				BillableMinutes:   90,
				ProductivityScore: 8,
			},
		},
	}
}

func TestAnalyzePerformanceWithBodyUserID(t *testing.T) {
	store := seedStore()
	router := testRouter(t, store, nil)

	body := bytes.NewBufferString(`{"user_id":"user-1","period":"7_days"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ai/analyze-performance", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "7_days", resp["period"])
	assert.Contains(t, resp, "analysis")
	assert.Contains(t, resp, "metrics")
	assert.Contains(t, resp, "summary")
	assert.Equal(t, true, resp["persisted"])

	// The run must leave a record behind
	assert.Equal(t, 1, store.InsertedCount())
}

func TestAnalyzePerformanceRequiresIdentity(t *testing.T) {
	router := testRouter(t, seedStore(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ai/analyze-performance",
		bytes.NewBufferString(`{"period":"30_days"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnalyzePerformanceSessionOverridesBody(t *testing.T) {
	store := seedStore()
	resolver := middleware.SessionResolverFunc(func(_ context.Context, token string) (*types.Identity, error) {
		if token == "valid-token" {
			return &types.Identity{ID: "user-1", Email: "ana@example.com"}, nil
		}
		return nil, nil
	})
	router := testRouter(t, store, resolver)

	// Body names someone else; the session identity must win.
	body := bytes.NewBufferString(`{"user_id":"user-2","period":"7_days"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ai/analyze-performance", body)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, store.InsertedCount())
	assert.Equal(t, "user-1", store.Inserted[0].UserID)
}

func TestAnalyzePerformanceRejectsInvalidToken(t *testing.T) {
	resolver := middleware.SessionResolverFunc(func(context.Context, string) (*types.Identity, error) {
		return nil, nil
	})
	router := testRouter(t, seedStore(), resolver)

	req := httptest.NewRequest(http.MethodPost, "/api/ai/analyze-performance",
		bytes.NewBufferString(`{"user_id":"user-1"}`))
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnalyzePerformanceDefaultsPeriod(t *testing.T) {
	store := seedStore()
	router := testRouter(t, store, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ai/analyze-performance",
		bytes.NewBufferString(`{"user_id":"user-1","period":"nonsense"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "30_days", resp["period"])
}

func TestAnalyzePerformanceTwoRunsTwoRecords(t *testing.T) {
	store := seedStore()
	router := testRouter(t, store, nil)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/ai/analyze-performance",
			bytes.NewBufferString(`{"user_id":"user-1","period":"7_days"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Equal(t, 2, store.InsertedCount())
	assert.NotEqual(t, store.Inserted[0].ID, store.Inserted[1].ID)
}

func TestAnalyzePerformanceEmailsReportToSession(t *testing.T) {
	store := seedStore()
	resolver := middleware.SessionResolverFunc(func(_ context.Context, token string) (*types.Identity, error) {
		return &types.Identity{ID: "user-1", Email: "ana@example.com"}, nil
	})
	sender := &recordingSender{}
	router := testRouterWithReporter(t, store, resolver, notify.NewReporter(sender))

	req := httptest.NewRequest(http.MethodPost, "/api/ai/analyze-performance",
		bytes.NewBufferString(`{"period":"7_days"}`))
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ana@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "informe de rendimiento")
	assert.Contains(t, sender.sent[0].HTML, "Métricas clave")
}

func TestAnalyzePerformanceNoEmailWithoutSession(t *testing.T) {
	store := seedStore()
	sender := &recordingSender{}
	router := testRouterWithReporter(t, store, nil, notify.NewReporter(sender))

	// Trusted-caller request: no session, so no address to send to.
	req := httptest.NewRequest(http.MethodPost, "/api/ai/analyze-performance",
		bytes.NewBufferString(`{"user_id":"user-1","period":"7_days"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sender.sent)
}

func TestListInsights(t *testing.T) {
	store := seedStore()
	store.Insights = []types.InsightRecord{
		{ID: "ins-1", UserID: "user-1", Title: "Análisis de rendimiento", CreatedAt: time.Now()},
		{ID: "ins-2", UserID: "user-1", Title: "Análisis de rendimiento", CreatedAt: time.Now().Add(-time.Hour)},
	}
	router := testRouter(t, store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/insights?user_id=user-1&limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success  bool                  `json:"success"`
		Insights []types.InsightRecord `json:"insights"`
		Count    int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Insights, 2)
	assert.Equal(t, "ins-1", resp.Insights[0].ID)
}

func TestListInsightsValidatesLimit(t *testing.T) {
	router := testRouter(t, seedStore(), nil)

	for _, limit := range []string{"0", "101", "abc"} {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/insights?user_id=user-1&limit=%s", limit), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t, seedStore(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "ok", resp["database"])
}

func TestHeartbeat(t *testing.T) {
	router := testRouter(t, seedStore(), nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
