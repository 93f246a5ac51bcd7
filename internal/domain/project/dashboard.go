package project

import (
	"fmt"
	"math"
	"time"
)

// deadlineFormat matches the dd/mm/yyyy rendering the dashboard has always
// used in alert messages.
const deadlineFormat = "02/01/2006"

type Metrics struct {
	Total              int     `json:"total"`
	InDevelopment      int     `json:"inDevelopment"`
	InProduction       int     `json:"inProduction"`
	AverageProgress    float64 `json:"averageProgress"`
	Overdue            int     `json:"overdue"`
	CompletedThisMonth int     `json:"completedThisMonth"`
}

type Alert struct {
	Severity string `json:"severity"` // "warning" | "error"
	Message  string `json:"message"`
}

// ComputeMetrics summarizes an already-fetched project set. Pure function:
// no persistence access, today is passed in so callers control the clock.
func ComputeMetrics(projects []Project, today time.Time) Metrics {
	m := Metrics{Total: len(projects)}

	progressSum := 0.0

	for _, p := range projects {
		progressSum += p.Progress

		switch p.Stage {
		case StageDevelopment:
			m.InDevelopment++
		case StageProduction:
			m.InProduction++
		}

		// a project with no deadline is never overdue
		if p.Stage != StageProduction && p.Deadline != nil && daysBetween(today, *p.Deadline) < 0 {
			m.Overdue++
		}

		// a production project's deadline doubles as its completion date
		if p.Stage == StageProduction && p.Deadline != nil &&
			p.Deadline.Month() == today.Month() && p.Deadline.Year() == today.Year() {
			m.CompletedThisMonth++
		}
	}

	if m.Total > 0 {
		m.AverageProgress = round2(progressSum / float64(m.Total))
	}

	return m
}

// ComputeAlerts emits a warning for every non-production project due within
// the next 7 days and an error for every one already past its deadline.
// A project due exactly today emits nothing: the day difference is zero,
// which neither branch covers. Alerts come out in input order, uncapped.
func ComputeAlerts(projects []Project, today time.Time) []Alert {
	alerts := []Alert{}

	for _, p := range projects {
		if p.Deadline == nil || p.Stage == StageProduction {
			continue
		}

		diff := daysBetween(today, *p.Deadline)

		switch {
		case diff > 0 && diff <= 7:
			alerts = append(alerts, Alert{
				Severity: "warning",
				Message: fmt.Sprintf("Project %q for client %q is due soon (%s)",
					p.Name, p.Client, p.Deadline.Format(deadlineFormat)),
			})
		case diff < 0:
			alerts = append(alerts, Alert{
				Severity: "error",
				Message: fmt.Sprintf("Project %q for client %q is overdue (deadline: %s)",
					p.Name, p.Client, p.Deadline.Format(deadlineFormat)),
			})
		}
	}

	return alerts
}

// daysBetween returns the whole-day difference to - from, comparing calendar
// dates in UTC so the time-of-day component never shifts the result.
func daysBetween(from, to time.Time) int {
	fromDay := truncateToDay(from)
	toDay := truncateToDay(to)

	return int(toDay.Sub(fromDay).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
