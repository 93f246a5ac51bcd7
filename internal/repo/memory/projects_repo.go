package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jatolabs/projecthub/internal/domain/project"
)

// ProjectsRepo is the in-memory counterpart of the postgres repository. It
// implements the same filter, defaulting and partial-update semantics, which
// makes it both a usable dev backend and the fixture for handler tests.
type ProjectsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]project.Project
}

func NewProjectsRepo() *ProjectsRepo {
	return &ProjectsRepo{
		nextID: 1,
		items:  make(map[int64]project.Project),
	}
}

func (r *ProjectsRepo) Create(_ context.Context, req project.CreateProjectRequest) (project.Project, error) {
	p, err := project.FromCreateRequest(req)

	if err != nil {
		return project.Project{}, err
	}

	r.mu.Lock()
	p.ID = r.nextID
	r.nextID++
	r.items[p.ID] = p
	r.mu.Unlock()

	return p, nil
}

func (r *ProjectsRepo) List(_ context.Context, filter project.ListFilter) ([]project.Project, error) {
	all := r.snapshot()

	filtered := make([]project.Project, 0, len(all))

	for _, p := range all {
		if filter.Matches(p) {
			filtered = append(filtered, p)
		}
	}

	// offset pagination after filtering
	if filter.Skip >= len(filtered) {
		return []project.Project{}, nil
	}

	filtered = filtered[filter.Skip:]

	if filter.Limit > 0 && filter.Limit < len(filtered) {
		filtered = filtered[:filter.Limit]
	}

	return filtered, nil
}

func (r *ProjectsRepo) ListAll(_ context.Context) ([]project.Project, error) {
	return r.snapshot(), nil
}

func (r *ProjectsRepo) GetByID(_ context.Context, id int64) (project.Project, error) {
	r.mu.RLock()
	p, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	return p, nil
}

func (r *ProjectsRepo) Update(_ context.Context, id int64, req project.UpdateProjectRequest) (project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]

	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Client != nil {
		p.Client = *req.Client
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Stage != nil {
		p.Stage = *req.Stage
	}
	if req.Priority != nil {
		p.Priority = *req.Priority
	}
	if req.Progress != nil {
		p.Progress = *req.Progress
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate
	}
	if req.Deadline != nil {
		p.Deadline = req.Deadline
	}
	if req.Technologies != nil {
		if _, err := project.JoinTechnologies(req.Technologies); err != nil {
			return project.Project{}, err
		}

		p.Technologies = req.Technologies
	}

	r.items[id] = p

	return p, nil
}

func (r *ProjectsRepo) Delete(_ context.Context, id int64) (project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]

	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	delete(r.items, id)

	return p, nil
}

// snapshot returns all records ordered by id ascending (insertion order).
func (r *ProjectsRepo) snapshot() []project.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]project.Project, 0, len(r.items))

	for _, p := range r.items {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
