package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/creatorlens/creatorlens/internal/db"
)

type fakeStatsProvider struct {
	stats []db.QueryLatencyStat
}

func (f *fakeStatsProvider) QueryLatencyStats() []db.QueryLatencyStat {
	return f.stats
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	e := echo.New()
	NewOpsRoutes(nil).RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	e := echo.New()
	NewOpsRoutes(nil).RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestQueryLatencyDebugEndpoint(t *testing.T) {
	t.Parallel()
	e := echo.New()
	NewOpsRoutes(&fakeStatsProvider{stats: []db.QueryLatencyStat{
		{Name: "UpsertInteraction", Count: 12, P50: 2 * time.Millisecond, P95: 9 * time.Millisecond, Max: 15 * time.Millisecond},
	}}).RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/debug/query-latency", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body []queryLatencyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if len(body) != 1 || body[0].Name != "UpsertInteraction" || body[0].P95Ms != 9 {
		t.Fatalf("body = %+v", body)
	}
}

func TestQueryLatencyEndpointDisabledWithoutProvider(t *testing.T) {
	t.Parallel()
	e := echo.New()
	NewOpsRoutes(nil).RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/debug/query-latency", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
