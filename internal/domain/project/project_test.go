package project_test

import (
	"testing"
	"time"

	"github.com/jatolabs/projecthub/internal/domain/project"
)

func TestJoinTechnologies(t *testing.T) {
	blob, err := project.JoinTechnologies([]string{"go", "postgres", "redis"})
	if err != nil {
		t.Fatalf("JoinTechnologies returned error: %v", err)
	}

	if blob != "go,postgres,redis" {
		t.Fatalf("got blob %q", blob)
	}

	if _, err := project.JoinTechnologies([]string{"go", "c,c++"}); err == nil {
		t.Fatalf("a tag containing the delimiter must be rejected")
	}
}

func TestSplitTechnologies(t *testing.T) {
	got := project.SplitTechnologies("go,postgres")

	if len(got) != 2 || got[0] != "go" || got[1] != "postgres" {
		t.Fatalf("got %v", got)
	}

	if got := project.SplitTechnologies(""); len(got) != 0 {
		t.Fatalf("empty blob should split to an empty list, got %v", got)
	}
}

func TestFromCreateRequestDefaults(t *testing.T) {
	p, err := project.FromCreateRequest(project.CreateProjectRequest{
		Name:   "Billing revamp",
		Client: "Acme",
	})
	if err != nil {
		t.Fatalf("FromCreateRequest returned error: %v", err)
	}

	if p.Stage != project.StagePlanning {
		t.Errorf("default stage = %q, want planning", p.Stage)
	}
	if p.Priority != project.PriorityMedium {
		t.Errorf("default priority = %q, want medium", p.Priority)
	}
	if p.Progress != 0 {
		t.Errorf("default progress = %v, want 0", p.Progress)
	}
	if p.Technologies == nil {
		t.Errorf("technologies should default to an empty list, not nil")
	}
}

func TestFromCreateRequestRejectsBadTag(t *testing.T) {
	_, err := project.FromCreateRequest(project.CreateProjectRequest{
		Name:         "X",
		Client:       "Y",
		Technologies: []string{"go,rust"},
	})

	if err == nil {
		t.Fatalf("expected tag delimiter error")
	}
}

func TestListFilterMatches(t *testing.T) {
	stage := project.StageDevelopment
	priority := project.PriorityHigh
	client := "Acme"
	name := "portal"
	tech := "POSTGRES"

	p := project.Project{
		Name:         "Customer Portal",
		Client:       "ACME Corp",
		Stage:        project.StageDevelopment,
		Priority:     project.PriorityHigh,
		Technologies: []string{"go", "postgres"},
	}

	tests := []struct {
		name   string
		filter project.ListFilter
		want   bool
	}{
		{"no filters", project.ListFilter{}, true},
		{"stage exact", project.ListFilter{Stage: &stage}, true},
		{"client substring case-insensitive", project.ListFilter{Client: &client}, true},
		{"name substring case-insensitive", project.ListFilter{Name: &name}, true},
		{"technology in blob", project.ListFilter{Technology: &tech}, true},
		{"all combined", project.ListFilter{Stage: &stage, Priority: &priority, Client: &client}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(p); got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}

	other := project.StageTesting
	if (project.ListFilter{Stage: &other}).Matches(p) {
		t.Fatalf("stage mismatch should not match")
	}

	missing := "kubernetes"
	if (project.ListFilter{Technology: &missing}).Matches(p) {
		t.Fatalf("absent technology should not match")
	}
}

func TestListFilterIgnoresDates(t *testing.T) {
	// filters never constrain on dates; sanity check that a dated project
	// still matches the empty filter
	d := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	p := project.Project{Name: "X", Client: "Y", Deadline: &d}

	if !(project.ListFilter{}).Matches(p) {
		t.Fatalf("empty filter must match everything")
	}
}
