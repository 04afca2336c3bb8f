package main

import (
	"github.com/ArowuTest/forum-lottery-backend/internal/jobs"
	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"
)

// startScheduler starts the cron trigger for job. A nil job leaves draws to the HTTP endpoint.
func startScheduler(spec string, job *jobs.DrawJob) (*cron.Cron, error) {
	if job == nil {
		slog.Info("Draw scheduler disabled")
		return nil, nil
	}
	c, err := jobs.NewScheduler(spec, job)
	if err != nil {
		return nil, err
	}
	c.Start()
	slog.Info("Draw scheduler started", "schedule", spec)
	return c, nil
}
