package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/questdo/questdo/internal/domain"
)

// ─── User Progression ───────────────────────────────────────────────────────

// CreateUser inserts a new user with its empty stats row.
func (d *DB) CreateUser(ctx context.Context, user domain.UserProgression) error {
	now := time.Now().Unix()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO users (id, level, total_xp, current_xp, title, locale, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		user.UserID, user.Level, user.TotalXP, user.CurrentXP, user.Title, user.Locale, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_stats (user_id) VALUES (?)`, user.UserID,
	)
	if err != nil {
		return fmt.Errorf("insert stats: %w", err)
	}
	return nil
}

// GetUser retrieves a user's progression. Returns (nil, nil) when absent.
func (d *DB) GetUser(ctx context.Context, userID string) (*domain.UserProgression, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, level, total_xp, current_xp, title, locale, version, updated_at
		 FROM users WHERE id = ?`, userID,
	)
	return scanUser(row)
}

// ListUserIDs returns every user id, oldest first.
func (d *DB) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateProgression writes the record only if the stored version still
// matches user.Version, bumping it by one. A concurrent writer makes the
// match fail and the caller gets ErrVersionConflict to retry against a
// fresh read.
func (d *DB) UpdateProgression(ctx context.Context, user domain.UserProgression) error {
	result, err := d.db.ExecContext(ctx,
		`UPDATE users
		 SET level = ?, total_xp = ?, current_xp = ?, title = ?, locale = ?,
		     version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		user.Level, user.TotalXP, user.CurrentXP, user.Title, user.Locale,
		user.UpdatedAt.Unix(), user.UserID, user.Version,
	)
	if err != nil {
		return fmt.Errorf("update progression: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		// Distinguish a missing user from a stale version.
		existing, err := d.GetUser(ctx, user.UserID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrUserNotFound
		}
		return domain.ErrVersionConflict
	}
	return nil
}

// GetStats retrieves a user's statistics snapshot. Missing rows read as
// zeroes.
func (d *DB) GetStats(ctx context.Context, userID string) (domain.UserStats, error) {
	var s domain.UserStats
	err := d.db.QueryRowContext(ctx,
		`SELECT total_completed, current_streak, longest_streak, total_habit_checks
		 FROM user_stats WHERE user_id = ?`, userID,
	).Scan(&s.TotalCompleted, &s.CurrentStreak, &s.LongestStreak, &s.TotalHabitChecks)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserStats{}, nil
	}
	return s, err
}

// UpdateStats upserts a user's statistics snapshot.
func (d *DB) UpdateStats(ctx context.Context, userID string, stats domain.UserStats) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO user_stats (user_id, total_completed, current_streak, longest_streak, total_habit_checks)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			total_completed=excluded.total_completed,
			current_streak=excluded.current_streak,
			longest_streak=excluded.longest_streak,
			total_habit_checks=excluded.total_habit_checks`,
		userID, stats.TotalCompleted, stats.CurrentStreak, stats.LongestStreak, stats.TotalHabitChecks,
	)
	return err
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func scanUser(s scanner) (*domain.UserProgression, error) {
	var u domain.UserProgression
	var updatedAt int64

	err := s.Scan(&u.UserID, &u.Level, &u.TotalXP, &u.CurrentXP, &u.Title, &u.Locale, &u.Version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}

	u.UpdatedAt = time.Unix(updatedAt, 0)
	return &u, nil
}

// isUniqueViolation reports whether err is a primary-key/unique violation.
// modernc.org/sqlite surfaces these as plain errors, so we match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
