package digest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jatolabs/projecthub/internal/domain/project"
	"github.com/jatolabs/projecthub/internal/notifications"
	"github.com/jatolabs/projecthub/internal/observability"
)

type ProjectsSource interface {
	ListAll(ctx context.Context) ([]project.Project, error)
}

type Config struct {
	Interval      time.Duration
	FetchAttempts int
}

// Runner periodically recomputes deadline alerts over the full project set
// and pushes them through the notifier. It is read-only with respect to the
// store: the API remains the only writer.
type Runner struct {
	cfg      Config
	source   ProjectsSource
	notifier notifications.Notifier
	log      *slog.Logger
	metrics  *observability.Prom

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, source ProjectsSource, notifier notifications.Notifier, log *slog.Logger, metrics *observability.Prom) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.FetchAttempts <= 0 {
		cfg.FetchAttempts = 3
	}

	return &Runner{
		cfg:      cfg,
		source:   source,
		notifier: notifier,
		log:      log,
		metrics:  metrics,
	}
}

// Run executes one digest immediately, then once per interval until the
// context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.setReady(true)
	defer r.setReady(false)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	start := time.Now()

	projects, err := r.fetchWithRetry(ctx)

	if err != nil {
		r.log.Error("digest fetch failed", "err", err)
		r.observeRun("error", start)
		return
	}

	alerts := project.ComputeAlerts(projects, time.Now().UTC())

	sent := 0

	for _, a := range alerts {
		err := r.notifier.SendDeadlineAlert(ctx, notifications.DeadlineAlertInput{
			Severity: a.Severity,
			Message:  a.Message,
		})

		if err != nil {
			r.log.Error("digest notify failed", "severity", a.Severity, "err", err)
			continue
		}

		sent++

		if r.metrics != nil {
			r.metrics.DigestAlerts.Inc()
		}
	}

	r.log.Info("digest run complete", "projects", len(projects), "alerts", len(alerts), "sent", sent)
	r.observeRun("ok", start)
}

func (r *Runner) fetchWithRetry(ctx context.Context) ([]project.Project, error) {
	var lastErr error

	for attempt := 0; attempt < r.cfg.FetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(ExponentialBackoff(attempt - 1)):
			}
		}

		projects, err := r.source.ListAll(ctx)

		if err == nil {
			return projects, nil
		}

		lastErr = err
	}

	return nil, lastErr
}

func (r *Runner) observeRun(result string, start time.Time) {
	if r.metrics == nil {
		return
	}

	r.metrics.DigestRuns.WithLabelValues(result).Inc()
	r.metrics.DigestDuration.Observe(time.Since(start).Seconds())
}

func (r *Runner) setReady(v bool) {
	r.readyMu.Lock()
	r.ready = v
	r.readyMu.Unlock()
}
