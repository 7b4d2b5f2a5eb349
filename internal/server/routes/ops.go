package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/creatorlens/creatorlens/internal/db"
)

type queryStatsProvider interface {
	QueryLatencyStats() []db.QueryLatencyStat
}

// OpsRoutes exposes health, metrics, and debug endpoints. Health and metrics
// bypass bearer auth; the debug endpoint sits under the authenticated API.
type OpsRoutes struct {
	stats queryStatsProvider
}

// NewOpsRoutes constructs the operational route group. A nil stats provider
// disables the query-latency debug endpoint.
func NewOpsRoutes(stats queryStatsProvider) *OpsRoutes {
	return &OpsRoutes{stats: stats}
}

// RegisterRoutes registers operational endpoints.
func (r *OpsRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/healthz", handleHealthz)
	s.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if r.stats != nil {
		s.GET("/api/v1/debug/query-latency", r.handleQueryLatency)
	}
}

func handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type queryLatencyResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	P50Ms int64  `json:"p50Ms"`
	P95Ms int64  `json:"p95Ms"`
	MaxMs int64  `json:"maxMs"`
}

func (r *OpsRoutes) handleQueryLatency(c echo.Context) error {
	stats := r.stats.QueryLatencyStats()
	out := make([]queryLatencyResponse, 0, len(stats))
	for _, stat := range stats {
		out = append(out, queryLatencyResponse{
			Name:  stat.Name,
			Count: stat.Count,
			P50Ms: stat.P50.Milliseconds(),
			P95Ms: stat.P95.Milliseconds(),
			MaxMs: stat.Max.Milliseconds(),
		})
	}
	return c.JSON(http.StatusOK, out)
}
