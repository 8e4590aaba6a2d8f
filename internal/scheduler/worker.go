package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultWorkerInterval = time.Hour

// WorkerConfig controls the in-process sweep ticker used by self-hosted
// deployments that have no external cron.
type WorkerConfig struct {
	Enabled  bool
	Interval time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.Interval <= 0 {
		c.Interval = defaultWorkerInterval
	}
	return c
}

// Worker drives the sweeps on a ticker tied to the fx lifecycle.
type Worker struct {
	scheduler *Scheduler
	log       *zap.Logger
	cfg       WorkerConfig
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewWorker(s *Scheduler, log *zap.Logger) *Worker {
	cfg := WorkerConfig{
		Enabled:  s.cfg.Enabled,
		Interval: time.Duration(s.cfg.IntervalMinutes) * time.Minute,
	}
	return &Worker{
		scheduler: s,
		log:       log.Named("scheduler.worker"),
		cfg:       cfg.withDefaults(),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	if !w.cfg.Enabled {
		w.log.Info("sweep worker disabled")
		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(runCtx)
	w.log.Info("sweep worker started", zap.Duration("interval", w.cfg.Interval))
	return nil
}

func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	asOf := w.scheduler.clock.Now()
	if _, err := w.scheduler.RunExpirationSweep(ctx, asOf); err != nil {
		w.log.Error("expiration sweep failed", zap.Error(err))
	}
	if _, err := w.scheduler.RunExpiryNotificationSweep(ctx, asOf, 0); err != nil {
		w.log.Error("expiry notification sweep failed", zap.Error(err))
	}
}

// RegisterLifecycle hooks the worker into application start and stop.
func RegisterLifecycle(lc fx.Lifecycle, w *Worker) {
	lc.Append(fx.Hook{
		OnStart: w.Start,
		OnStop:  w.Stop,
	})
}
