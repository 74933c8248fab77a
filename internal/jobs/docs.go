// Package jobs provides scheduled background tasks for the dispatch system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for order dispatch.
//
// # Available Jobs
//
// 1. DispatchJob - Runs every five seconds to retry courier assignment for
// orders that are confirmed (or mid-preparation after a rejection) but have
// no courier bound.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(uowFactory, assignCourierHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// The dispatch job treats "no courier available" as an expected outcome and
// ends the cycle early; concurrent-modification conflicts are skipped since
// they mean another actor already handled the order. Everything else is
// logged.
package jobs
