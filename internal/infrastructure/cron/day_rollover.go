package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mealplan-service/pkg/logger"

	"github.com/robfig/cron/v3"
)

const rolloverTimeout = 5 * time.Minute

// RolloverRunner runs one guarded day-rollover pass
type RolloverRunner interface {
	RunDayRollover(ctx context.Context) (bool, error)
}

// DayRolloverJob periodically re-resolves current plans once the calendar day changes
type DayRolloverJob struct {
	runner   RolloverRunner
	cron     *cron.Cron
	job      cron.Job
	interval time.Duration
	log      *logger.Logger

	// catchUp tracks the first pass, which runs outside the scheduler
	catchUp sync.WaitGroup
}

// NewDayRolloverJob creates a new day rollover job
func NewDayRolloverJob(runner RolloverRunner, checkInterval time.Duration, log *logger.Logger) *DayRolloverJob {
	j := &DayRolloverJob{
		runner:   runner,
		cron:     cron.New(),
		interval: checkInterval,
		log:      log.With("component", "day_rollover"),
	}
	// One chain for scheduled and catch-up passes so they never overlap.
	j.job = cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(j.check))
	return j
}

// Start schedules the job and runs a first pass right away to catch up after downtime
func (j *DayRolloverJob) Start() error {
	cronExpr := fmt.Sprintf("@every %s", j.interval.String())

	if _, err := j.cron.AddJob(cronExpr, j.job); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	j.cron.Start()

	j.catchUp.Add(1)
	go func() {
		defer j.catchUp.Done()
		j.job.Run()
	}()

	j.log.Info("day rollover job started", "interval", j.interval.String())
	return nil
}

// Stop stops scheduling and waits for running passes, the catch-up pass included
func (j *DayRolloverJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.catchUp.Wait()
	j.log.Info("day rollover job stopped")
}

func (j *DayRolloverJob) check() {
	ctx, cancel := context.WithTimeout(context.Background(), rolloverTimeout)
	defer cancel()

	ran, err := j.runner.RunDayRollover(ctx)
	if err != nil {
		j.log.Error("day rollover failed", "error", err)
		return
	}

	if ran {
		j.log.Debug("day rollover pass finished")
	}
}
