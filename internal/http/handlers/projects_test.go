package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jatolabs/projecthub/internal/domain/project"
	"github.com/jatolabs/projecthub/internal/http/handlers"
	"github.com/jatolabs/projecthub/internal/repo/memory"
)

func projectsRouter(repo *memory.ProjectsRepo, onWrite func(ctx context.Context)) *gin.Engine {
	h := handlers.NewProjectsHandler(repo, onWrite)

	r := gin.New()
	r.GET("/projects", h.List)
	r.GET("/projects/:id", h.Get)
	r.POST("/projects", h.Create)
	r.PUT("/projects/:id", h.Update)
	r.DELETE("/projects/:id", h.Delete)

	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request

	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func seedProjects(t *testing.T, repo *memory.ProjectsRepo, reqs ...project.CreateProjectRequest) {
	t.Helper()

	for _, req := range reqs {
		if _, err := repo.Create(context.Background(), req); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func decodeProjects(t *testing.T, w *httptest.ResponseRecorder) []project.Project {
	t.Helper()

	var got []project.Project

	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("list body is not a project array: %v, body=%s", err, w.Body.String())
	}

	return got
}

func TestCreateProjectAppliesDefaults(t *testing.T) {
	repo := memory.NewProjectsRepo()

	w := do(projectsRouter(repo, nil), http.MethodPost, "/projects",
		`{"name":"CRM Revamp","client":"Acme"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got %d, want 201, body=%s", w.Code, w.Body.String())
	}

	var p project.Project

	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if p.ID == 0 || p.Stage != project.StagePlanning || p.Priority != project.PriorityMedium || p.Progress != 0 {
		t.Errorf("defaults not applied: %+v", p)
	}

	if p.Technologies == nil {
		t.Errorf("technologies should serialize as [], not null")
	}
}

func TestCreateProjectRejectsUnknownStage(t *testing.T) {
	w := do(projectsRouter(memory.NewProjectsRepo(), nil), http.MethodPost, "/projects",
		`{"name":"X","client":"Y","stage":"shipped"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", w.Code)
	}
}

func TestCommaInTechnologyTagIs400(t *testing.T) {
	repo := memory.NewProjectsRepo()
	r := projectsRouter(repo, nil)

	// the stored tag blob is comma-joined, so an embedded comma is invalid
	// input and must never surface as a server error
	w := do(r, http.MethodPost, "/projects",
		`{"name":"Billing","client":"Acme","technologies":["go,postgres"]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("create got %d, want 400, body=%s", w.Code, w.Body.String())
	}

	seedProjects(t, repo, project.CreateProjectRequest{Name: "Billing", Client: "Acme"})

	w = do(r, http.MethodPut, "/projects/1", `{"technologies":["go,postgres"]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("update got %d, want 400, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if resp.Error.Code != "invalid_technologies" {
		t.Errorf("code = %q, want invalid_technologies", resp.Error.Code)
	}
}

func TestListProjectsFiltersAndPaginates(t *testing.T) {
	repo := memory.NewProjectsRepo()

	seedProjects(t, repo,
		project.CreateProjectRequest{Name: "Billing", Client: "ACME Corp", Stage: project.StageDevelopment, Technologies: []string{"Go", "Postgres"}},
		project.CreateProjectRequest{Name: "Portal", Client: "Initech", Stage: project.StageDevelopment},
		project.CreateProjectRequest{Name: "Migration", Client: "acme industries", Stage: project.StageProduction},
	)

	r := projectsRouter(repo, nil)

	cases := []struct {
		name      string
		query     string
		wantNames []string
	}{
		{"no filter", "", []string{"Billing", "Portal", "Migration"}},
		{"stage", "?stage=development", []string{"Billing", "Portal"}},
		{"client substring is case-insensitive", "?client=acme", []string{"Billing", "Migration"}},
		{"technology matches the joined blob", "?technology=postgres", []string{"Billing"}},
		{"stage and client are ANDed", "?stage=development&client=acme", []string{"Billing"}},
		{"skip and limit", "?skip=1&limit=1", []string{"Portal"}},
		{"skip beyond the end", "?skip=10", []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/projects"+tc.query, "")

			if w.Code != http.StatusOK {
				t.Fatalf("got %d, want 200, body=%s", w.Code, w.Body.String())
			}

			got := decodeProjects(t, w)

			if len(got) != len(tc.wantNames) {
				t.Fatalf("got %d projects, want %d: %+v", len(got), len(tc.wantNames), got)
			}

			for i, name := range tc.wantNames {
				if got[i].Name != name {
					t.Errorf("projects[%d].Name = %q, want %q", i, got[i].Name, name)
				}
			}
		})
	}
}

func TestListProjectsRejectsBadQuery(t *testing.T) {
	r := projectsRouter(memory.NewProjectsRepo(), nil)

	for _, query := range []string{"?stage=shipped", "?priority=urgent", "?skip=-1", "?limit=abc"} {
		if w := do(r, http.MethodGet, "/projects"+query, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", query, w.Code)
		}
	}
}

func TestGetProjectNotFound(t *testing.T) {
	w := do(projectsRouter(memory.NewProjectsRepo(), nil), http.MethodGet, "/projects/42", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", w.Code)
	}
}

func TestUpdateProjectPartial(t *testing.T) {
	repo := memory.NewProjectsRepo()

	seedProjects(t, repo, project.CreateProjectRequest{
		Name: "Billing", Client: "Acme", Description: "v1 rollout", Progress: 40,
	})

	w := do(projectsRouter(repo, nil), http.MethodPut, "/projects/1",
		`{"progress":55,"description":null}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var p project.Project

	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if p.Progress != 55 {
		t.Errorf("progress = %v, want 55", p.Progress)
	}

	// null is a no-op, never a clear
	if p.Description != "v1 rollout" {
		t.Errorf("description = %q, want unchanged", p.Description)
	}
}

func TestUpdateProjectNotFound(t *testing.T) {
	w := do(projectsRouter(memory.NewProjectsRepo(), nil), http.MethodPut, "/projects/9", `{"progress":10}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", w.Code)
	}
}

func TestDeleteProjectReturnsPriorRecord(t *testing.T) {
	repo := memory.NewProjectsRepo()

	seedProjects(t, repo, project.CreateProjectRequest{Name: "Billing", Client: "Acme"})

	r := projectsRouter(repo, nil)

	w := do(r, http.MethodDelete, "/projects/1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var p project.Project

	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if p.Name != "Billing" {
		t.Errorf("deleted record name = %q", p.Name)
	}

	if w := do(r, http.MethodDelete, "/projects/1", ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete got %d, want 404", w.Code)
	}
}

func TestWriteHookFiresOnMutations(t *testing.T) {
	repo := memory.NewProjectsRepo()

	var fired int

	r := projectsRouter(repo, func(context.Context) { fired++ })

	do(r, http.MethodPost, "/projects", `{"name":"Billing","client":"Acme"}`)
	do(r, http.MethodPut, "/projects/1", `{"progress":10}`)
	do(r, http.MethodDelete, "/projects/1", "")

	if fired != 3 {
		t.Errorf("write hook fired %d times, want 3", fired)
	}

	// reads must not fire it
	do(r, http.MethodGet, "/projects", "")

	if fired != 3 {
		t.Errorf("write hook fired on a read")
	}
}
