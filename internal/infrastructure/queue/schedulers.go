package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"gigmarket-backend/internal/config"
	"gigmarket-backend/internal/shared"
	"gigmarket-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	sweepCfg  config.SweepConfig
}

func NewScheduler(redisAddress string, sweepCfg config.SweepConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		sweepCfg:  sweepCfg,
	}
}

func (s *Scheduler) RegisterLifecycleJobs() error {
	return s.registerExpireSweepJob()
}

// ================================================
// JOB: Expire Sweep
// ================================================
// The sweep is cheap (single conditional UPDATE), so it runs often.
// Reads already hide overdue gigs; this keeps the stored rows honest.
func (s *Scheduler) registerExpireSweepJob() error {
	payload, err := json.Marshal(shared.ExpireSweepPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeGigExpireSweep, payload)

	_, err = s.scheduler.Register(
		s.sweepCfg.CronSpec,
		task,
		asynq.Queue(shared.QueueGig),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ExpireSweep job", err)
		return err
	}

	logger.Info("✓ Registered ExpireSweep", map[string]interface{}{
		"cron": s.sweepCfg.CronSpec,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
