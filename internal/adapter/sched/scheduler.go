package sched

import (
	"context"
	"fmt"
	"time"

	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/port"

	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/zap"
)

// QuartzScheduler delivers the periodic control ticks and the daily tariff
// boundary triggers through a quartz standard scheduler.
type QuartzScheduler struct {
	scheduler quartz.Scheduler
	location  *time.Location
	logger    *zap.Logger
}

func NewQuartzScheduler(location *time.Location, logger *zap.Logger) *QuartzScheduler {
	return &QuartzScheduler{
		scheduler: quartz.NewStdScheduler(),
		location:  location,
		logger:    logger,
	}
}

func (s *QuartzScheduler) Every(name string, every time.Duration, fn func()) error {
	detail := quartz.NewJobDetail(functionJob(fn), quartz.NewJobKey(name))
	return s.scheduler.ScheduleJob(detail, quartz.NewSimpleTrigger(every))
}

func (s *QuartzScheduler) Daily(name string, at domain.TimeOfDay, fn func()) error {
	trigger, err := quartz.NewCronTriggerWithLoc(
		fmt.Sprintf("0 %d %d * * *", at.Minute, at.Hour), s.location)
	if err != nil {
		return fmt.Errorf("daily trigger %s at %s: %w", name, at, err)
	}
	detail := quartz.NewJobDetail(functionJob(fn), quartz.NewJobKey(name))
	return s.scheduler.ScheduleJob(detail, trigger)
}

func (s *QuartzScheduler) Start(ctx context.Context) {
	s.scheduler.Start(ctx)
	s.logger.Debug("scheduler started")
}

func (s *QuartzScheduler) Stop() {
	s.scheduler.Stop()
}

func functionJob(fn func()) quartz.Job {
	return job.NewFunctionJob(func(_ context.Context) (bool, error) {
		fn()
		return true, nil
	})
}

// ensure interface compliance
var _ port.Scheduler = (*QuartzScheduler)(nil)
