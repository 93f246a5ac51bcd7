package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jatolabs/projecthub/internal/config"
	"github.com/jatolabs/projecthub/internal/domain/project"
)

// DefaultListLimit caps unpaginated list reads.
const DefaultListLimit = 100

type ProjectsStore interface {
	Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error)
	List(ctx context.Context, filter project.ListFilter) ([]project.Project, error)
	GetByID(ctx context.Context, id int64) (project.Project, error)
	Update(ctx context.Context, id int64, req project.UpdateProjectRequest) (project.Project, error)
	Delete(ctx context.Context, id int64) (project.Project, error)
}

type ProjectsHandler struct {
	repo ProjectsStore

	// onWrite fires after every successful create/update/delete; the router
	// hooks dashboard cache invalidation here.
	onWrite func(ctx context.Context)
}

func NewProjectsHandler(repo ProjectsStore, onWrite func(ctx context.Context)) *ProjectsHandler {
	return &ProjectsHandler{repo: repo, onWrite: onWrite}
}

func (h *ProjectsHandler) notifyWrite(ctx context.Context) {
	if h.onWrite != nil {
		h.onWrite(ctx)
	}
}

func parseProjectID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "invalid_id", "Project id must be a positive integer", nil)
		return 0, false
	}

	return id, true
}

func parseListFilter(ctx *gin.Context) (project.ListFilter, bool) {
	filter := project.ListFilter{Skip: 0, Limit: DefaultListLimit}

	if raw := ctx.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)

		if err != nil || skip < 0 {
			RespondBadRequest(ctx, "invalid_query", "skip must be a non-negative integer", nil)
			return filter, false
		}
		filter.Skip = skip
	}

	if raw := ctx.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)

		if err != nil {
			RespondBadRequest(ctx, "invalid_query", "limit must be an integer", nil)
			return filter, false
		}

		// non-positive limits fall back to the default rather than erroring
		if limit > 0 {
			filter.Limit = limit
		}
	}

	if raw := ctx.Query("stage"); raw != "" {
		stage := project.Stage(raw)

		if !stage.Valid() {
			RespondBadRequest(ctx, "invalid_query", "stage is not a known stage", nil)
			return filter, false
		}
		filter.Stage = &stage
	}

	if raw := ctx.Query("priority"); raw != "" {
		priority := project.Priority(raw)

		if !priority.Valid() {
			RespondBadRequest(ctx, "invalid_query", "priority is not a known priority", nil)
			return filter, false
		}
		filter.Priority = &priority
	}

	if raw := ctx.Query("client"); raw != "" {
		filter.Client = &raw
	}

	if raw := ctx.Query("name"); raw != "" {
		filter.Name = &raw
	}

	if raw := ctx.Query("technology"); raw != "" {
		filter.Technology = &raw
	}

	return filter, true
}

func (h *ProjectsHandler) List(ctx *gin.Context) {
	filter, ok := parseListFilter(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	projects, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list projects")
		return
	}

	ctx.JSON(http.StatusOK, projects)
}

func (h *ProjectsHandler) Get(ctx *gin.Context) {
	id, ok := parseProjectID(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		RespondInternal(ctx, "Could not fetch project")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProjectsHandler) Create(ctx *gin.Context) {
	var req project.CreateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.Create(cctx, req)

	if err != nil {
		if errors.Is(err, project.ErrBadTag) {
			RespondBadRequest(ctx, "invalid_technologies", err.Error(), nil)
			return
		}

		RespondInternal(ctx, "Could not create project")
		return
	}

	h.notifyWrite(ctx.Request.Context())

	ctx.JSON(http.StatusCreated, p)
}

func (h *ProjectsHandler) Update(ctx *gin.Context) {
	id, ok := parseProjectID(ctx)

	if !ok {
		return
	}

	var req project.UpdateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		if errors.Is(err, project.ErrBadTag) {
			RespondBadRequest(ctx, "invalid_technologies", err.Error(), nil)
			return
		}

		RespondInternal(ctx, "Could not update project")
		return
	}

	h.notifyWrite(ctx.Request.Context())

	ctx.JSON(http.StatusOK, p)
}

func (h *ProjectsHandler) Delete(ctx *gin.Context) {
	id, ok := parseProjectID(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// deletion returns the removed record so callers can confirm what went away
	p, err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		RespondInternal(ctx, "Could not delete project")
		return
	}

	h.notifyWrite(ctx.Request.Context())

	ctx.JSON(http.StatusOK, p)
}
