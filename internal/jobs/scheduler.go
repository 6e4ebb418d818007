// Package jobs runs the background maintenance schedule: the daily streak
// refresh and completion-history pruning.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/questdo/questdo/internal/app/streak"
	"github.com/questdo/questdo/internal/domain"
)

// Scheduler owns the cron loop for recurring maintenance.
type Scheduler struct {
	cron    *cron.Cron
	users   domain.UserStore
	streaks *streak.Service
	log     *logrus.Entry

	refreshSpec   string
	retentionDays int
}

// NewScheduler creates a scheduler. refreshSpec is a standard cron expression
// for the daily streak refresh; retentionDays bounds how far back completion
// history is kept (0 disables pruning).
func NewScheduler(users domain.UserStore, streaks *streak.Service, refreshSpec string, retentionDays int, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		users:         users,
		streaks:       streaks,
		refreshSpec:   refreshSpec,
		retentionDays: retentionDays,
		log:           log.WithField("component", "jobs"),
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.refreshSpec, func() { s.RunDailyMaintenance(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	s.log.WithField("spec", s.refreshSpec).Info("scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunDailyMaintenance refreshes every user's streak stats so a lapsed streak
// reads 0 without waiting for the next check-in, then prunes completion rows
// older than the retention window. Also invoked directly by tests and the
// CLI; the cron loop is just its timer.
func (s *Scheduler) RunDailyMaintenance(ctx context.Context) {
	now := time.Now()

	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		s.log.WithError(err).Error("list users for streak refresh")
		return
	}

	var failed int
	for _, id := range ids {
		if err := s.streaks.RefreshStats(ctx, id, now); err != nil {
			failed++
			s.log.WithError(err).WithField("user", id).Warn("streak refresh failed")
		}
	}
	s.log.WithFields(logrus.Fields{"users": len(ids), "failed": failed}).Info("streak refresh complete")

	if s.retentionDays > 0 {
		cutoff := streak.Day(now.AddDate(0, 0, -s.retentionDays))
		pruned, err := s.streaks.PruneBefore(ctx, cutoff)
		if err != nil {
			s.log.WithError(err).Error("prune completions")
			return
		}
		if pruned > 0 {
			s.log.WithFields(logrus.Fields{"cutoff": cutoff, "rows": pruned}).Info("completions pruned")
		}
	}
}
