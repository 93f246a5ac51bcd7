package project

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("project not found")

// Stage is the closed lifecycle enumeration. Unknown values are rejected at
// the boundary instead of being persisted as free text.
type Stage string

const (
	StagePlanning    Stage = "planning"
	StageDevelopment Stage = "development"
	StageTesting     Stage = "testing"
	StageStaging     Stage = "staging"
	StageProduction  Stage = "production"
	StageMaintenance Stage = "maintenance"
)

func (s Stage) Valid() bool {
	switch s {
	case StagePlanning, StageDevelopment, StageTesting, StageStaging, StageProduction, StageMaintenance:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Project struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Client       string     `json:"client"`
	Description  string     `json:"description,omitempty"`
	Stage        Stage      `json:"stage"`
	Priority     Priority   `json:"priority"`
	Progress     float64    `json:"progress"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Technologies []string   `json:"technologies"`
}

// ListFilter carries the optional list predicates; nil means "no constraint".
// All supplied predicates are ANDed together.
type ListFilter struct {
	Stage      *Stage
	Priority   *Priority
	Client     *string
	Name       *string
	Technology *string
	Skip       int
	Limit      int
}

type CreateProjectRequest struct {
	Name         string     `json:"name" binding:"required,min=1,max=200"`
	Client       string     `json:"client" binding:"required,min=1,max=200"`
	Description  string     `json:"description" binding:"omitempty,max=2000"`
	Stage        Stage      `json:"stage" binding:"omitempty,oneof=planning development testing staging production maintenance"`
	Priority     Priority   `json:"priority" binding:"omitempty,oneof=low medium high"`
	Progress     float64    `json:"progress" binding:"omitempty,min=0,max=100"`
	StartDate    *time.Time `json:"startDate"`
	Deadline     *time.Time `json:"deadline"`
	Technologies []string   `json:"technologies" binding:"omitempty,dive,min=1,max=80"`
}

// UpdateProjectRequest is a partial update: only non-nil fields touch the
// stored record. A JSON null and an omitted key are indistinguishable after
// decoding, so neither clears a field. Long-standing quirk, kept on purpose.
type UpdateProjectRequest struct {
	Name         *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Client       *string    `json:"client" binding:"omitempty,min=1,max=200"`
	Description  *string    `json:"description" binding:"omitempty,max=2000"`
	Stage        *Stage     `json:"stage" binding:"omitempty,oneof=planning development testing staging production maintenance"`
	Priority     *Priority  `json:"priority" binding:"omitempty,oneof=low medium high"`
	Progress     *float64   `json:"progress" binding:"omitempty,min=0,max=100"`
	StartDate    *time.Time `json:"startDate"`
	Deadline     *time.Time `json:"deadline"`
	Technologies []string   `json:"technologies" binding:"omitempty,dive,min=1,max=80"`
}

const tagDelimiter = ","

// ErrBadTag marks a technology tag that cannot survive the comma-joined
// storage encoding. Callers treat it as invalid input, not a server fault.
var ErrBadTag = errors.New("technology tag must not contain a comma")

// JoinTechnologies flattens the tag list into the stored comma-joined blob.
// Tags containing the delimiter would corrupt the blob, so they are rejected.
func JoinTechnologies(tags []string) (string, error) {
	for _, tag := range tags {
		if strings.Contains(tag, tagDelimiter) {
			return "", fmt.Errorf("technology tag %q: %w", tag, ErrBadTag)
		}
	}

	return strings.Join(tags, tagDelimiter), nil
}

// SplitTechnologies is the inverse of JoinTechnologies. An empty blob yields
// an empty list, not [""].
func SplitTechnologies(blob string) []string {
	if blob == "" {
		return []string{}
	}

	return strings.Split(blob, tagDelimiter)
}

// FromCreateRequest builds an unsaved Project, applying the create defaults:
// stage planning, priority medium, progress 0 (the zero value). The id is
// assigned by the repository.
func FromCreateRequest(req CreateProjectRequest) (Project, error) {
	if _, err := JoinTechnologies(req.Technologies); err != nil {
		return Project{}, err
	}

	p := Project{
		Name:         req.Name,
		Client:       req.Client,
		Description:  req.Description,
		Stage:        req.Stage,
		Priority:     req.Priority,
		Progress:     req.Progress,
		StartDate:    req.StartDate,
		Deadline:     req.Deadline,
		Technologies: req.Technologies,
	}

	if p.Stage == "" {
		p.Stage = StagePlanning
	}

	if p.Priority == "" {
		p.Priority = PriorityMedium
	}

	if p.Technologies == nil {
		p.Technologies = []string{}
	}

	return p, nil
}

// Matches reports whether p satisfies every supplied predicate in f.
// Substring matches are case-insensitive; the technology predicate matches
// inside the flattened tag blob, mirroring the persisted representation.
func (f ListFilter) Matches(p Project) bool {
	if f.Stage != nil && p.Stage != *f.Stage {
		return false
	}

	if f.Priority != nil && p.Priority != *f.Priority {
		return false
	}

	if f.Client != nil && !containsFold(p.Client, *f.Client) {
		return false
	}

	if f.Name != nil && !containsFold(p.Name, *f.Name) {
		return false
	}

	if f.Technology != nil {
		blob := strings.Join(p.Technologies, tagDelimiter)

		if !containsFold(blob, *f.Technology) {
			return false
		}
	}

	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
