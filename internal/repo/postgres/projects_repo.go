package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jatolabs/projecthub/internal/domain/project"
	"github.com/jatolabs/projecthub/internal/observability"
)

const projectColumns = `id, name, client, description, stage, priority, progress, start_date, deadline, technologies`

type ProjectsRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

// NewProjectsRepo wires the repo to the pool; metrics may be nil (tests).
func NewProjectsRepo(pool *pgxpool.Pool, metrics *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{
		pool:    pool,
		metrics: metrics,
	}
}

func (r *ProjectsRepo) observe(op string, fn func() error) error {
	if r.metrics == nil {
		return fn()
	}

	return r.metrics.ObserveDB(op, fn)
}

func (r *ProjectsRepo) Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error) {
	p, err := project.FromCreateRequest(req)

	if err != nil {
		return project.Project{}, err
	}

	blob, err := project.JoinTechnologies(p.Technologies)

	if err != nil {
		return project.Project{}, err
	}

	err = r.observe("projects.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO projects(name, client, description, stage, priority, progress, start_date, deadline, technologies)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
			 RETURNING id`,
			p.Name, p.Client, p.Description, p.Stage, p.Priority, p.Progress, p.StartDate, p.Deadline, blob,
		).Scan(&p.ID)
	})

	if err != nil {
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) List(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
	baseQuery := `SELECT ` + projectColumns + ` FROM projects`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Stage != nil {
		conds = append(conds, fmt.Sprintf("stage = $%d", argsPosition))
		args = append(args, *filter.Stage)
		argsPosition++
	}

	if filter.Priority != nil {
		conds = append(conds, fmt.Sprintf("priority = $%d", argsPosition))
		args = append(args, *filter.Priority)
		argsPosition++
	}

	if filter.Client != nil {
		conds = append(conds, fmt.Sprintf("client ILIKE '%%' || $%d || '%%'", argsPosition))
		args = append(args, *filter.Client)
		argsPosition++
	}

	if filter.Name != nil {
		conds = append(conds, fmt.Sprintf("name ILIKE '%%' || $%d || '%%'", argsPosition))
		args = append(args, *filter.Name)
		argsPosition++
	}

	if filter.Technology != nil {
		conds = append(conds, fmt.Sprintf("technologies ILIKE '%%' || $%d || '%%'", argsPosition))
		args = append(args, *filter.Technology)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// insertion order; offset pagination applies after filtering
	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Skip)

	var output []project.Project

	err := r.observe("projects.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		output, err = scanProjects(rows)

		return err
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

// ListAll fetches the entire project set in insertion order; the dashboard
// aggregation and the digest worker run over this snapshot.
func (r *ProjectsRepo) ListAll(ctx context.Context) ([]project.Project, error) {
	var output []project.Project

	err := r.observe("projects.list_all", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		output, err = scanProjects(rows)

		return err
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *ProjectsRepo) GetByID(ctx context.Context, id int64) (project.Project, error) {
	var p project.Project

	err := r.observe("projects.get", func() error {
		var err error
		p, err = scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))

		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}

		return project.Project{}, err
	}

	return p, nil
}

// Update overwrites only the fields present in req, in a single
// UPDATE ... RETURNING round trip. An empty patch degenerates to a read.
func (r *ProjectsRepo) Update(ctx context.Context, id int64, req project.UpdateProjectRequest) (project.Project, error) {
	var sets []string
	var args []interface{}

	argsPosition := 1

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, value)
		argsPosition++
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Client != nil {
		set("client", *req.Client)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Stage != nil {
		set("stage", *req.Stage)
	}
	if req.Priority != nil {
		set("priority", *req.Priority)
	}
	if req.Progress != nil {
		set("progress", *req.Progress)
	}
	if req.StartDate != nil {
		set("start_date", *req.StartDate)
	}
	if req.Deadline != nil {
		set("deadline", *req.Deadline)
	}
	if req.Technologies != nil {
		blob, err := project.JoinTechnologies(req.Technologies)

		if err != nil {
			return project.Project{}, err
		}

		set("technologies", blob)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(
		`UPDATE projects SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argsPosition, projectColumns,
	)

	args = append(args, id)

	var p project.Project

	err := r.observe("projects.update", func() error {
		var err error
		p, err = scanProject(r.pool.QueryRow(ctx, query, args...))

		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}

		return project.Project{}, err
	}

	return p, nil
}

// Delete removes the record and returns what was stored before removal.
func (r *ProjectsRepo) Delete(ctx context.Context, id int64) (project.Project, error) {
	var p project.Project

	err := r.observe("projects.delete", func() error {
		var err error
		p, err = scanProject(r.pool.QueryRow(ctx, `DELETE FROM projects WHERE id = $1 RETURNING `+projectColumns, id))

		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}

		return project.Project{}, err
	}

	return p, nil
}

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project
	var blob string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Client,
		&p.Description,
		&p.Stage,
		&p.Priority,
		&p.Progress,
		&p.StartDate,
		&p.Deadline,
		&blob,
	)

	if err != nil {
		return project.Project{}, err
	}

	p.Technologies = project.SplitTechnologies(blob)

	return p, nil
}

func scanProjects(rows pgx.Rows) ([]project.Project, error) {
	output := make([]project.Project, 0)

	for rows.Next() {
		p, err := scanProject(rows)

		if err != nil {
			return nil, err
		}

		output = append(output, p)
	}

	err := rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}
