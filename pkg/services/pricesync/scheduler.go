package pricesync

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Runner is the part of Syncer the scheduler drives.
type Runner interface {
	Sync(ctx context.Context, opts SyncOptions) (map[string]*float64, error)
}

type ScheduleConfig struct {
	Hour      int
	Minute    int
	WriteBack bool
	Location  string
}

// Scheduler runs a daily sync at a fixed UTC time. A run that is still going
// when the next one is due makes the next one skip.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	opts   SyncOptions
	logger zerolog.Logger
	entry  cron.EntryID
}

func NewScheduler(runner Runner, cfg ScheduleConfig, logger zerolog.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("sync runner is nil")
	}
	if cfg.Hour < 0 || cfg.Hour > 23 {
		return nil, fmt.Errorf("schedule hour must be within 0-23, got %d", cfg.Hour)
	}
	if cfg.Minute < 0 || cfg.Minute > 59 {
		return nil, fmt.Errorf("schedule minute must be within 0-59, got %d", cfg.Minute)
	}

	logger = logger.With().Str("component", "price_scheduler").Logger()
	cronLog := cronLogger{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		runner: runner,
		opts:   SyncOptions{WriteBack: cfg.WriteBack, Location: cfg.Location},
		logger: logger,
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("%d %d * * *", cfg.Minute, cfg.Hour), s.run)
	if err != nil {
		return nil, fmt.Errorf("schedule price sync: %w", err)
	}
	s.entry = id

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Time("next_run", s.Next()).Msg("price sync scheduled")
}

// Stop prevents new runs and waits for an in-flight one, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info().Msg("price scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running price sync: %w", ctx.Err())
	}
}

// Next returns the next scheduled run, zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// RunNow runs a sync immediately with the scheduled options.
func (s *Scheduler) RunNow(ctx context.Context) (map[string]*float64, error) {
	return s.runner.Sync(ctx, s.opts)
}

// run is the cron job. Failures are logged by the syncer and never escape.
func (s *Scheduler) run() {
	ctx := s.logger.WithContext(context.Background())
	if _, err := s.runner.Sync(ctx, s.opts); err != nil {
		s.logger.Warn().Err(err).Msg("scheduled price sync did not complete")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
