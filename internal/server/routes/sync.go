package routes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/creatorlens/creatorlens/internal/app/domain"
	"github.com/creatorlens/creatorlens/internal/app/ports"
	"github.com/creatorlens/creatorlens/internal/app/services"
	"github.com/creatorlens/creatorlens/internal/observability"
)

var syncRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "creatorlens_sync_requests_total",
	Help: "Sync trigger requests by outcome.",
}, []string{"outcome"})

type syncService interface {
	StartSync(ctx context.Context, accountKey, credential string) error
	Progress(accountKey string) (domain.SyncProgress, bool)
	IsRunning(accountKey string) bool
}

type resetStore interface {
	GetAccountByExternalID(ctx context.Context, externalAccountID string) (ports.AccountRecord, error)
	ResetAccount(ctx context.Context, accountID int64) error
}

// SyncRoutes exposes sync triggering, progress polling, and content reset.
type SyncRoutes struct {
	svc   syncService
	store resetStore
	log   *slog.Logger
}

// NewSyncRoutes constructs the sync route group.
func NewSyncRoutes(svc syncService, store resetStore, log *slog.Logger) *SyncRoutes {
	if log == nil {
		log = slog.Default()
	}
	return &SyncRoutes{svc: svc, store: store, log: log}
}

// RegisterRoutes registers sync endpoints.
func (r *SyncRoutes) RegisterRoutes(s *echo.Echo) {
	api := s.Group("/api/v1")

	api.POST("/accounts/:account_id/sync", r.handleStartSync)
	api.GET("/accounts/:account_id/sync", r.handleGetProgress)
	api.DELETE("/accounts/:account_id/content", r.handleResetContent)
}

type startSyncRequest struct {
	AccessToken string `json:"accessToken"`
}

func (r *SyncRoutes) handleStartSync(c echo.Context) error {
	accountID := strings.TrimSpace(c.Param("account_id"))
	if accountID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account id is required")
	}

	var req startSyncRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "accessToken is required")
	}

	ctx := observability.WithAccount(c.Request().Context(), accountID)
	if err := r.svc.StartSync(ctx, accountID, req.AccessToken); err != nil {
		if errors.Is(err, services.ErrAlreadySyncing) {
			syncRequests.WithLabelValues("rejected").Inc()
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "ALREADY_SYNCING",
			})
		}
		syncRequests.WithLabelValues("error").Inc()
		r.log.ErrorContext(ctx, "failed to admit sync run", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to start sync")
	}

	syncRequests.WithLabelValues("started").Inc()
	r.log.InfoContext(ctx, "sync run admitted")
	return c.JSON(http.StatusAccepted, map[string]string{
		"status": "started",
	})
}

func (r *SyncRoutes) handleGetProgress(c echo.Context) error {
	accountID := strings.TrimSpace(c.Param("account_id"))
	progress, ok := r.svc.Progress(accountID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no sync run recorded for account")
	}
	return c.JSON(http.StatusOK, progress)
}

func (r *SyncRoutes) handleResetContent(c echo.Context) error {
	externalAccountID := strings.TrimSpace(c.Param("account_id"))
	if externalAccountID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account id is required")
	}
	if r.svc.IsRunning(externalAccountID) {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "ALREADY_SYNCING",
		})
	}

	ctx := observability.WithAccount(c.Request().Context(), externalAccountID)
	account, err := r.store.GetAccountByExternalID(ctx, externalAccountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "account not found")
	}
	if err := r.store.ResetAccount(ctx, account.ID); err != nil {
		r.log.ErrorContext(ctx, "failed to reset account content", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reset account content")
	}
	r.log.InfoContext(ctx, "account content reset")
	return c.NoContent(http.StatusNoContent)
}
