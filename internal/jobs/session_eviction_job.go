package jobs

import (
	"context"
	"log/slog"

	"expedition/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultEvictionSchedule runs the session eviction every minute.
const DefaultEvictionSchedule = "0 * * * * *"

// SessionEvictionJob releases wizard sessions that stayed idle past their TTL.
type SessionEvictionJob struct {
	handler  commands.EvictIdleSessionsCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSessionEvictionJob creates the job. An empty schedule means DefaultEvictionSchedule;
// schedules have a leading seconds field.
func NewSessionEvictionJob(
	handler commands.EvictIdleSessionsCommandHandler,
	schedule string,
	logger *slog.Logger,
) *SessionEvictionJob {
	if schedule == "" {
		schedule = DefaultEvictionSchedule
	}
	return &SessionEvictionJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "session_eviction_job"),
	}
}

func (j *SessionEvictionJob) Name() string {
	return "session eviction job"
}

// Start schedules Run.
func (j *SessionEvictionJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Session eviction job started", "schedule", j.schedule)
	return nil
}

// Run evicts the idle sessions once.
func (j *SessionEvictionJob) Run(ctx context.Context) {
	evicted, err := j.handler.Handle(ctx, commands.NewEvictIdleSessionsCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Session eviction job failed", "error", err)
		return
	}
	if evicted > 0 {
		j.logger.InfoContext(ctx, "Idle sessions evicted", "count", evicted)
	}
}

func (j *SessionEvictionJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Session eviction job stopped")
}
