package jobs

import (
	"context"
	"log/slog"
	"time"

	"expedition/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultPurgeSchedule runs the purge every night at 03:00.
	DefaultPurgeSchedule = "0 0 3 * * *"

	// DefaultRetention keeps untouched drafts for a week, like the redis TTL.
	DefaultRetention = 7 * 24 * time.Hour
)

// DraftPurgeJob deletes stored drafts nobody touched within the retention window.
type DraftPurgeJob struct {
	handler   commands.PurgeStaleDraftsCommandHandler
	schedule  string
	retention time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewDraftPurgeJob creates the job. Empty or zero arguments take the defaults.
func NewDraftPurgeJob(
	handler commands.PurgeStaleDraftsCommandHandler,
	schedule string,
	retention time.Duration,
	logger *slog.Logger,
) *DraftPurgeJob {
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &DraftPurgeJob{
		handler:   handler,
		schedule:  schedule,
		retention: retention,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "draft_purge_job"),
	}
}

func (j *DraftPurgeJob) Name() string {
	return "draft purge job"
}

// Start schedules Run.
func (j *DraftPurgeJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Draft purge job started",
		"schedule", j.schedule, "retention", j.retention.String())
	return nil
}

// Run purges the stale drafts once.
func (j *DraftPurgeJob) Run(ctx context.Context) {
	cmd, err := commands.NewPurgeStaleDraftsCommand(j.retention)
	if err != nil {
		j.logger.ErrorContext(ctx, "Draft purge job misconfigured", "error", err)
		return
	}

	purged, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Draft purge job failed", "error", err)
		return
	}
	j.logger.InfoContext(ctx, "Stale drafts purged", "count", purged)
}

func (j *DraftPurgeJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Draft purge job stopped")
}
