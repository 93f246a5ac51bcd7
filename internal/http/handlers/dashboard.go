package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jatolabs/projecthub/internal/cache"
	"github.com/jatolabs/projecthub/internal/config"
	"github.com/jatolabs/projecthub/internal/domain/project"
)

const (
	metricsCacheKey = "dashboard:metrics:v1"
	alertsCacheKey  = "dashboard:alerts:v1"
)

type ProjectsLister interface {
	ListAll(ctx context.Context) ([]project.Project, error)
}

type DashboardHandler struct {
	repo  ProjectsLister
	store cache.Store

	// now is swappable in tests
	now func() time.Time
}

func NewDashboardHandler(repo ProjectsLister, store cache.Store) *DashboardHandler {
	return &DashboardHandler{
		repo:  repo,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Invalidate drops cached dashboard payloads. Wired to every project write.
func (h *DashboardHandler) Invalidate(ctx context.Context) {
	if h.store == nil {
		return
	}

	h.store.Delete(ctx, metricsCacheKey)
	h.store.Delete(ctx, alertsCacheKey)
}

func (h *DashboardHandler) Metrics(ctx *gin.Context) {
	payload, ok := h.cached(ctx, metricsCacheKey)

	if !ok {
		projects, err := h.fetchAll()

		if err != nil {
			RespondInternal(ctx, "Could not compute dashboard metrics")
			return
		}

		metrics := project.ComputeMetrics(projects, h.now())

		payload, err = json.Marshal(metrics)

		if err != nil {
			RespondInternal(ctx, "Could not compute dashboard metrics")
			return
		}

		h.put(ctx, metricsCacheKey, payload)
	}

	RespondDataWithETag(ctx, http.StatusOK, payload)
}

func (h *DashboardHandler) Alerts(ctx *gin.Context) {
	payload, ok := h.cached(ctx, alertsCacheKey)

	if !ok {
		projects, err := h.fetchAll()

		if err != nil {
			RespondInternal(ctx, "Could not compute deadline alerts")
			return
		}

		alerts := project.ComputeAlerts(projects, h.now())

		payload, err = json.Marshal(alerts)

		if err != nil {
			RespondInternal(ctx, "Could not compute deadline alerts")
			return
		}

		h.put(ctx, alertsCacheKey, payload)
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *DashboardHandler) fetchAll() ([]project.Project, error) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	return h.repo.ListAll(cctx)
}

func (h *DashboardHandler) cached(ctx *gin.Context, key string) ([]byte, bool) {
	if h.store == nil {
		return nil, false
	}

	return h.store.Get(ctx.Request.Context(), key)
}

func (h *DashboardHandler) put(ctx *gin.Context, key string, payload []byte) {
	if h.store == nil {
		return
	}

	h.store.Set(ctx.Request.Context(), key, payload)
}
