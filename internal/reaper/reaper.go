// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package reaper runs the retention sweep: soft-deleted rows whose
// deletion timestamp has aged past the configured per-kind window are
// physically removed, in batches, on a fixed interval.
package reaper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/observability"
	"github.com/taskhive/taskhive/internal/workspace"
	"github.com/taskhive/taskhive/pkg/errutil"
)

// Store is the physical-deletion surface the reaper sweeps through.
type Store interface {
	PurgeExpired(ctx context.Context, kind workspace.Kind, cutoff time.Time, batch int) (int64, error)
	PurgeExpiredNotifications(ctx context.Context, now time.Time, batch int) (int64, error)
}

// DeletedCounter reports the current soft-deleted row count per kind,
// feeding the deleted-records gauge.
type DeletedCounter interface {
	CountDeleted(ctx context.Context, kind workspace.Kind) (int64, error)
}

// Reaper periodically purges expired soft-deleted rows.
type Reaper struct {
	store   Store
	counter DeletedCounter
	cfg     config.Config
	metrics *observability.Metrics
	logger  *slog.Logger

	timeNow func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Reaper. counter and metrics may be nil; the sweep then
// skips gauge updates.
func New(store Store, counter DeletedCounter, cfg config.Config, metrics *observability.Metrics, logger *slog.Logger) *Reaper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reaper{
		store:   store,
		counter: counter,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		timeNow: func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the sweep loop. It returns immediately; the loop runs
// until Stop is called or ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	done := make(chan struct{})
	r.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.cfg.Reaper.Interval)
		defer ticker.Stop()

		// First sweep runs immediately rather than one interval in.
		r.Sweep(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep(ctx)
			}
		}
	}()
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (r *Reaper) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Sweep runs one full pass over every kind with a configured retention
// window, then purges TTL-expired notifications. Each kind is drained in
// batches; a failing kind is logged and skipped so the others still run.
func (r *Reaper) Sweep(ctx context.Context) {
	now := r.timeNow()
	failed := false

	r.refreshGauges(ctx)

	for _, kind := range workspace.Kinds() {
		window, ok := r.cfg.RetentionWindow(kind)
		if !ok {
			continue
		}
		purged, err := r.drain(ctx, kind, now.Add(-window))
		if err != nil {
			errutil.LogError(r.logger.With("kind", string(kind)), "reap sweep failed", err)
			failed = true
			continue
		}
		if purged > 0 {
			r.logger.InfoContext(ctx, "reaped expired records",
				slog.String("kind", string(kind)),
				slog.Int64("purged", purged))
		}
	}

	if purged, err := r.drainNotificationTTL(ctx, now); err != nil {
		errutil.LogError(r.logger, "notification TTL sweep failed", err)
		failed = true
	} else if purged > 0 {
		r.logger.InfoContext(ctx, "reaped expired notifications", slog.Int64("purged", purged))
	}

	if r.metrics != nil {
		status := "ok"
		if failed {
			status = "error"
		}
		r.metrics.ReaperRunsTotal.WithLabelValues(status).Inc()
	}
}

func (r *Reaper) drain(ctx context.Context, kind workspace.Kind, cutoff time.Time) (int64, error) {
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := r.store.PurgeExpired(ctx, kind, cutoff, r.cfg.Reaper.BatchSize)
		if err != nil {
			return total, err
		}
		total += n
		if r.metrics != nil && n > 0 {
			r.metrics.ReaperPurgedTotal.WithLabelValues(string(kind)).Add(float64(n))
		}
		if n < int64(r.cfg.Reaper.BatchSize) {
			return total, nil
		}
	}
}

func (r *Reaper) drainNotificationTTL(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := r.store.PurgeExpiredNotifications(ctx, now, r.cfg.Reaper.BatchSize)
		if err != nil {
			return total, err
		}
		total += n
		if r.metrics != nil && n > 0 {
			r.metrics.ReaperPurgedTotal.WithLabelValues(string(workspace.KindNotification)).Add(float64(n))
		}
		if n < int64(r.cfg.Reaper.BatchSize) {
			return total, nil
		}
	}
}

func (r *Reaper) refreshGauges(ctx context.Context) {
	if r.counter == nil || r.metrics == nil {
		return
	}
	for _, kind := range workspace.Kinds() {
		count, err := r.counter.CountDeleted(ctx, kind)
		if err != nil {
			errutil.LogError(r.logger.With("kind", string(kind)), "deleted-records count failed", err)
			continue
		}
		r.metrics.DeletedRecords.WithLabelValues(string(kind)).Set(float64(count))
	}
}
