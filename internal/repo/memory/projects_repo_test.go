package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jatolabs/projecthub/internal/domain/project"
	"github.com/jatolabs/projecthub/internal/repo/memory"
)

func seedRepo(t *testing.T) *memory.ProjectsRepo {
	t.Helper()

	repo := memory.NewProjectsRepo()
	ctx := context.Background()

	seeds := []project.CreateProjectRequest{
		{Name: "Customer Portal", Client: "ACME Corp", Stage: project.StageDevelopment, Priority: project.PriorityHigh, Technologies: []string{"go", "postgres"}},
		{Name: "Mobile App", Client: "Globex", Stage: project.StageTesting, Priority: project.PriorityMedium, Technologies: []string{"kotlin"}},
		{Name: "Data Pipeline", Client: "acme labs", Stage: project.StageDevelopment, Priority: project.PriorityLow, Technologies: []string{"python", "postgres"}},
	}

	for _, s := range seeds {
		if _, err := repo.Create(ctx, s); err != nil {
			t.Fatalf("seed create failed: %v", err)
		}
	}

	return repo
}

func TestListNoFiltersReturnsAllInInsertionOrder(t *testing.T) {
	repo := seedRepo(t)

	got, err := repo.List(context.Background(), project.ListFilter{Limit: 100})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("got %d projects, want 3", len(got))
	}

	for i, p := range got {
		if p.ID != int64(i+1) {
			t.Fatalf("projects out of insertion order: %+v", got)
		}
	}
}

func TestListFiltersAreANDed(t *testing.T) {
	repo := seedRepo(t)

	stage := project.StageDevelopment
	client := "Acme"

	got, err := repo.List(context.Background(), project.ListFilter{Stage: &stage, Client: &client, Limit: 100})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	// "Acme" matches both "ACME Corp" and "acme labs" case-insensitively;
	// stage=development keeps both as well, so the intersection is both acme rows
	if len(got) != 2 {
		t.Fatalf("got %d projects, want 2: %+v", len(got), got)
	}

	priority := project.PriorityHigh

	got, err = repo.List(context.Background(), project.ListFilter{Stage: &stage, Priority: &priority, Limit: 100})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(got) != 1 || got[0].Name != "Customer Portal" {
		t.Fatalf("intersection wrong: %+v", got)
	}
}

func TestListClientSubstringCaseInsensitive(t *testing.T) {
	repo := seedRepo(t)

	client := "Acme"

	got, err := repo.List(context.Background(), project.ListFilter{Client: &client, Limit: 100})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("client=Acme should match ACME Corp and acme labs, got %+v", got)
	}
}

func TestListTechnologyFilter(t *testing.T) {
	repo := seedRepo(t)

	tech := "POSTGRES"

	got, err := repo.List(context.Background(), project.ListFilter{Technology: &tech, Limit: 100})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("technology filter should match 2 projects, got %+v", got)
	}
}

func TestListSkipAndLimit(t *testing.T) {
	repo := seedRepo(t)
	ctx := context.Background()

	got, err := repo.List(ctx, project.ListFilter{Skip: 1, Limit: 1})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("skip/limit wrong: %+v", got)
	}

	// skip past the end
	got, err = repo.List(ctx, project.ListFilter{Skip: 10, Limit: 5})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(got) != 0 {
		t.Fatalf("skip past end should return empty, got %+v", got)
	}
}

func TestUpdatePartial(t *testing.T) {
	repo := seedRepo(t)
	ctx := context.Background()

	before, err := repo.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}

	progress := 50.0

	after, err := repo.Update(ctx, 1, project.UpdateProjectRequest{Progress: &progress})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if after.Progress != 50 {
		t.Errorf("progress not updated: %v", after.Progress)
	}

	if after.Name != before.Name || after.Client != before.Client || after.Stage != before.Stage || after.Priority != before.Priority {
		t.Errorf("update touched fields that were not in the patch: before=%+v after=%+v", before, after)
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo := seedRepo(t)

	progress := 10.0

	_, err := repo.Update(context.Background(), 999, project.UpdateProjectRequest{Progress: &progress})
	if !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteReturnsPriorRecord(t *testing.T) {
	repo := seedRepo(t)
	ctx := context.Background()

	deleted, err := repo.Delete(ctx, 2)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if deleted.Name != "Mobile App" {
		t.Fatalf("deleted record wrong: %+v", deleted)
	}

	if _, err := repo.GetByID(ctx, 2); !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("record still present after delete")
	}

	if _, err := repo.Delete(ctx, 2); !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	repo := memory.NewProjectsRepo()

	p, err := repo.Create(context.Background(), project.CreateProjectRequest{Name: "X", Client: "Y"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if p.Stage != project.StagePlanning || p.Priority != project.PriorityMedium || p.Progress != 0 {
		t.Fatalf("defaults not applied: %+v", p)
	}
}

func TestUpdateDatesAndTechnologies(t *testing.T) {
	repo := seedRepo(t)
	ctx := context.Background()

	deadline := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	p, err := repo.Update(ctx, 3, project.UpdateProjectRequest{
		Deadline:     &deadline,
		Technologies: []string{"python", "airflow"},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if p.Deadline == nil || !p.Deadline.Equal(deadline) {
		t.Errorf("deadline not updated: %+v", p.Deadline)
	}

	if len(p.Technologies) != 2 || p.Technologies[1] != "airflow" {
		t.Errorf("technologies not updated: %+v", p.Technologies)
	}

	if _, err := repo.Update(ctx, 3, project.UpdateProjectRequest{Technologies: []string{"a,b"}}); err == nil {
		t.Fatalf("tag containing the delimiter must be rejected")
	}
}
