// Package jobs provides scheduled background tasks for the expedition service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// Schedules carry a leading seconds field.
//
// # Available Jobs
//
// 1. SessionEvictionJob - Releases wizard sessions idle past their TTL (every minute by default)
// 2. DraftPurgeJob - Deletes SQL-stored drafts older than the retention window (nightly by default)
//
// Redis-stored drafts expire by TTL, so DraftPurgeJob is only wired with the postgres backend.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(evictionJob, purgeJob)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Failed runs are logged and retried on the next tick. A job that fails to start
// stops the jobs started before it.
package jobs
