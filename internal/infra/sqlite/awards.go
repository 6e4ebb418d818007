package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/questdo/questdo/internal/domain"
)

// ─── Atomic Award Writes ────────────────────────────────────────────────────

// ApplyAward commits one award as a single transaction: the version-checked
// progression update, the badge grants, and the ledger rows. A failure in
// any step rolls back all of them, so a user can never hold badge-reward XP
// without the badge and ledger rows that explain it.
func (d *DB) ApplyAward(ctx context.Context, w domain.AwardWrite) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin award tx: %w", err)
	}
	defer tx.Rollback()

	user := w.User
	result, err := tx.ExecContext(ctx,
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
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, user.UserID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		return domain.ErrVersionConflict
	}

	for _, b := range w.Badges {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO earned_badges (user_id, badge_id, earned_at) VALUES (?, ?, ?)`,
			user.UserID, b.BadgeID, b.EarnedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("grant badge %s: %w", b.BadgeID, err)
		}
	}

	for _, e := range w.Entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO xp_ledger (user_id, timestamp, source, amount, balance, note)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.UserID, e.Timestamp.Unix(), string(e.Source), e.Amount, e.Balance, e.Note,
		)
		if err != nil {
			return fmt.Errorf("append ledger: %w", err)
		}
	}

	return tx.Commit()
}
