package sqlite

import (
	"context"
	"time"

	"github.com/questdo/questdo/internal/domain"
)

// ─── Earned Badges ──────────────────────────────────────────────────────────

// GrantBadge records a badge as earned. Returns false if already granted
// (idempotent — badges are never granted twice and never revoked).
func (d *DB) GrantBadge(ctx context.Context, userID, badgeID string, at time.Time) (bool, error) {
	result, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO earned_badges (user_id, badge_id, earned_at) VALUES (?, ?, ?)`,
		userID, badgeID, at.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly granted
}

// ListEarnedBadges returns a user's badges, most recent first.
func (d *DB) ListEarnedBadges(ctx context.Context, userID string) ([]domain.EarnedBadge, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT badge_id, earned_at FROM earned_badges WHERE user_id = ? ORDER BY earned_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.EarnedBadge
	for rows.Next() {
		var b domain.EarnedBadge
		var earnedAt int64
		if err := rows.Scan(&b.BadgeID, &earnedAt); err != nil {
			return nil, err
		}
		b.EarnedAt = time.Unix(earnedAt, 0)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// EarnedBadgeIDs returns the set of badge ids a user has earned.
func (d *DB) EarnedBadgeIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT badge_id FROM earned_badges WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
