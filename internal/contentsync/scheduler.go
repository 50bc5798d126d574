package contentsync

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
)

// Scheduler runs a Syncer periodically and calls OnChange after every sync
// that moved the checkout.
type Scheduler struct {
	scheduler gocron.Scheduler
	syncer    *Syncer
	onChange  func(context.Context, Result)
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler schedules syncer every interval. Runs never overlap; a run
// that is still busy when the next is due pushes that one back.
func NewScheduler(syncer *Syncer, interval time.Duration, onChange func(context.Context, Result)) (*Scheduler, error) {
	if interval <= 0 {
		return nil, derrors.ConfigError("sync interval must be positive").WithContext("interval", interval.String()).Build()
	}
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryRuntime, "create scheduler").Build()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{scheduler: gs, syncer: syncer, onChange: onChange, logger: syncer.Logger, ctx: ctx, cancel: cancel}

	_, err = gs.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.run),
		gocron.WithName("content-sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = gs.Shutdown()
		return nil, derrors.WrapError(err, derrors.CategoryRuntime, "schedule content sync").Build()
	}
	return s, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Starting content sync scheduler")
	s.scheduler.Start()
}

// Stop cancels a running sync and shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping content sync scheduler")
	s.cancel()
	return s.scheduler.Shutdown()
}

// RunNow performs one sync outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) (Result, error) {
	res, err := s.syncer.Sync(ctx)
	if err == nil && res.Changed && s.onChange != nil {
		s.onChange(ctx, res)
	}
	return res, err
}

func (s *Scheduler) run() {
	start := time.Now()
	res, err := s.RunNow(s.ctx)
	if err != nil {
		s.logger.Error("Content sync failed", logfields.Error(err), logfields.Duration(time.Since(start)))
		return
	}
	s.logger.Debug("Content sync finished",
		slog.Bool("changed", res.Changed),
		logfields.Duration(time.Since(start)))
}
