package streak

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/questdo/questdo/internal/domain"
	"github.com/questdo/questdo/internal/infra/metrics"
)

// Awarder hands XP grants to the gamification orchestrator.
type Awarder interface {
	AwardXP(ctx context.Context, userID string, amount int64, source domain.XPSource, stats domain.UserStats) (domain.Event, error)
}

// Service processes habit check-ins and task completions. It owns the
// completion-date sets, keeps UserStats current, and routes the earned XP
// through the orchestrator.
type Service struct {
	users       domain.UserStore
	completions domain.CompletionStore
	awarder     Awarder
	log         *logrus.Entry

	checkInXP int64
	taskXP    int64

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-user completion serialization
}

// NewService creates a check-in service.
func NewService(users domain.UserStore, completions domain.CompletionStore, awarder Awarder, checkInXP, taskXP int64, log *logrus.Logger) *Service {
	return &Service{
		users:       users,
		completions: completions,
		awarder:     awarder,
		checkInXP:   checkInXP,
		taskXP:      taskXP,
		log:         log.WithField("component", "streak"),
		locks:       make(map[string]*sync.Mutex),
	}
}

// userLock returns the completion mutex for a user, creating it on first use.
// recomputeStats is read-modify-write over the stats row, so everything that
// mutates completions or counters for a user runs under this lock.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// CheckIn records a habit completion for now's calendar day and awards
// check-in XP. Checking the same day twice is a no-op.
func (s *Service) CheckIn(ctx context.Context, userID, habitID string) (domain.Event, error) {
	return s.CheckInAt(ctx, userID, habitID, time.Now())
}

// CheckInAt records a habit completion for the given day.
// Accepts a time parameter for testability.
func (s *Service) CheckInAt(ctx context.Context, userID, habitID string, now time.Time) (domain.Event, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	day := Day(now)

	added, err := s.completions.AddCompletion(ctx, userID, habitID, day)
	if err != nil {
		return domain.Event{}, fmt.Errorf("add completion: %w", err)
	}
	if !added {
		return domain.Event{}, nil // Already checked today — idempotent
	}

	stats, err := s.recomputeStats(ctx, userID, now, +1, 0)
	if err != nil {
		return domain.Event{}, err
	}

	event, err := s.awarder.AwardXP(ctx, userID, s.checkInXP, domain.XPHabitChecked, stats)
	if err != nil {
		return domain.Event{}, fmt.Errorf("award check-in xp: %w", err)
	}

	metrics.HabitChecks.Inc()
	s.log.WithFields(logrus.Fields{
		"user":   userID,
		"habit":  habitID,
		"day":    day,
		"streak": stats.CurrentStreak,
	}).Info("habit checked")
	return event, nil
}

// Undo removes now's check-in for a habit and re-derives the streak stats.
// The longest streak is a high-water mark and is never lowered. Earned XP is
// not clawed back.
func (s *Service) Undo(ctx context.Context, userID, habitID string) error {
	return s.UndoAt(ctx, userID, habitID, time.Now())
}

// UndoAt removes the check-in for the given day.
func (s *Service) UndoAt(ctx context.Context, userID, habitID string, now time.Time) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	day := Day(now)

	removed, err := s.completions.RemoveCompletion(ctx, userID, habitID, day)
	if err != nil {
		return fmt.Errorf("remove completion: %w", err)
	}
	if !removed {
		return domain.ErrNothingToUndo
	}

	if _, err := s.recomputeStats(ctx, userID, now, -1, 0); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user": userID, "habit": habitID, "day": day}).Info("check-in undone")
	return nil
}

// CompleteTask records a finished to-do item and awards task XP.
func (s *Service) CompleteTask(ctx context.Context, userID string) (domain.Event, error) {
	return s.CompleteTaskAt(ctx, userID, time.Now())
}

// CompleteTaskAt records a finished to-do item as of the given time.
func (s *Service) CompleteTaskAt(ctx context.Context, userID string, now time.Time) (domain.Event, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	stats, err := s.recomputeStats(ctx, userID, now, 0, +1)
	if err != nil {
		return domain.Event{}, err
	}

	event, err := s.awarder.AwardXP(ctx, userID, s.taskXP, domain.XPTaskCompleted, stats)
	if err != nil {
		return domain.Event{}, fmt.Errorf("award task xp: %w", err)
	}

	metrics.TasksCompleted.Inc()
	s.log.WithFields(logrus.Fields{"user": userID, "total": stats.TotalCompleted}).Info("task completed")
	return event, nil
}

// Summary reports a user's streak state and the last n days as a heatmap.
func (s *Service) Summary(ctx context.Context, userID string, heatmapDays int) (domain.UserStats, []string, map[string]bool, error) {
	return s.SummaryAt(ctx, userID, heatmapDays, time.Now())
}

// SummaryAt reports the streak state as of the given time.
func (s *Service) SummaryAt(ctx context.Context, userID string, heatmapDays int, now time.Time) (domain.UserStats, []string, map[string]bool, error) {
	stats, err := s.users.GetStats(ctx, userID)
	if err != nil {
		return domain.UserStats{}, nil, nil, fmt.Errorf("get stats: %w", err)
	}

	all, err := s.completions.ListAllCompletions(ctx, userID)
	if err != nil {
		return domain.UserStats{}, nil, nil, fmt.Errorf("list completions: %w", err)
	}

	// The current streak is evaluated fresh — a stored value can be stale
	// the morning after a missed day.
	stats.CurrentStreak = CurrentAt(all, now)

	days := RecentDaysAt(heatmapDays, now)
	completed := make(map[string]bool, len(all))
	for _, d := range all {
		completed[d] = true
	}
	marked := make(map[string]bool, len(days))
	for _, d := range days {
		marked[d] = completed[d]
	}
	return stats, days, marked, nil
}

// RefreshStats re-derives a user's streak fields from completion history and
// persists them. Run by the daily maintenance job so a lapsed streak reads 0
// without waiting for the next check-in.
func (s *Service) RefreshStats(ctx context.Context, userID string, now time.Time) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.recomputeStats(ctx, userID, now, 0, 0)
	return err
}

// PruneBefore deletes completion rows for days older than cutoff
// ("2006-01-02"). Streak runs ending before the cutoff are already folded
// into the longest-streak high-water mark, so pruning never loses progress.
func (s *Service) PruneBefore(ctx context.Context, cutoff string) (int64, error) {
	n, err := s.completions.PruneCompletionsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune completions: %w", err)
	}
	return n, nil
}

// recomputeStats re-derives streak figures from the full completion history
// and applies the given deltas to the lifetime counters.
func (s *Service) recomputeStats(ctx context.Context, userID string, now time.Time, habitDelta, taskDelta int) (domain.UserStats, error) {
	stats, err := s.users.GetStats(ctx, userID)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("get stats: %w", err)
	}

	all, err := s.completions.ListAllCompletions(ctx, userID)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("list completions: %w", err)
	}

	stats.CurrentStreak = CurrentAt(all, now)
	if longest := Longest(all); longest > stats.LongestStreak {
		stats.LongestStreak = longest // High-water mark only rises
	}
	stats.TotalHabitChecks += habitDelta
	if stats.TotalHabitChecks < 0 {
		stats.TotalHabitChecks = 0
	}
	stats.TotalCompleted += taskDelta

	if err := s.users.UpdateStats(ctx, userID, stats); err != nil {
		return domain.UserStats{}, fmt.Errorf("update stats: %w", err)
	}
	return stats, nil
}
