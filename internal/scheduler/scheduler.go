// Package scheduler drives periodic bar collection with cron.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"cupscan/internal/collector"
	"cupscan/internal/logging"
	"cupscan/pkg/utils"
)

// Scheduler manages the recurring collection task.
type Scheduler struct {
	Cron *cron.Cron

	collector       *collector.Collector
	logger          zerolog.Logger
	marketHoursOnly bool
}

// NewScheduler creates a scheduler around the given collector.
func NewScheduler(c *collector.Collector, logger zerolog.Logger, marketHoursOnly bool) *Scheduler {
	return &Scheduler{
		Cron:            cron.New(cron.WithSeconds()),
		collector:       c,
		logger:          logging.WithComponent(logger, "scheduler"),
		marketHoursOnly: marketHoursOnly,
	}
}

// Register adds the collection task under the given cron schedule.
func (s *Scheduler) Register(schedule string) error {
	if _, err := s.Cron.AddFunc(schedule, s.collectionTask); err != nil {
		return fmt.Errorf("register collection task: %w", err)
	}

	s.logger.Info().
		Str("schedule", schedule).
		Bool("market_hours_only", s.marketHoursOnly).
		Msg("Collection task registered")

	return nil
}

// Start begins executing registered tasks.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop halts the scheduler and waits for running tasks to finish.
func (s *Scheduler) Stop() {
	ctx := s.Cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// RunNow triggers a collection pass immediately, outside the schedule.
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("Manually triggering collection")
	s.collectionTask()
}

func (s *Scheduler) collectionTask() {
	if s.marketHoursOnly && !utils.IsMarketOpen() {
		s.logger.Debug().
			Time("next_open", utils.NextMarketOpen()).
			Msg("Market closed, skipping collection")
		return
	}

	if err := s.collector.Collect(context.Background()); err != nil {
		s.logger.Error().Err(err).Msg("Collection pass failed")
	}
}
