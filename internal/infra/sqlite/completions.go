package sqlite

import (
	"context"
	"database/sql"
)

// ─── Completion Day Sets ────────────────────────────────────────────────────

// AddCompletion records a habit completion day. Returns false if the day was
// already present (set semantics).
func (d *DB) AddCompletion(ctx context.Context, userID, habitID, day string) (bool, error) {
	result, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO completions (user_id, habit_id, day) VALUES (?, ?, ?)`,
		userID, habitID, day,
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// RemoveCompletion deletes a completion day (undo). Returns false if no such
// day was recorded.
func (d *DB) RemoveCompletion(ctx context.Context, userID, habitID, day string) (bool, error) {
	result, err := d.db.ExecContext(ctx,
		`DELETE FROM completions WHERE user_id = ? AND habit_id = ? AND day = ?`,
		userID, habitID, day,
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// ListCompletions returns one habit's completion days, ascending.
func (d *DB) ListCompletions(ctx context.Context, userID, habitID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT day FROM completions WHERE user_id = ? AND habit_id = ? ORDER BY day ASC`,
		userID, habitID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDays(rows)
}

// ListAllCompletions returns the union of a user's completion days across
// all habits, deduplicated, ascending. This is the activity stream the
// streak calculator reads.
func (d *DB) ListAllCompletions(ctx context.Context, userID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT DISTINCT day FROM completions WHERE user_id = ? ORDER BY day ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDays(rows)
}

// PruneCompletionsBefore deletes completion rows older than the cutoff day.
// Run by the maintenance job; longest-streak high-water marks are already
// persisted in user_stats so pruned history cannot lower them.
func (d *DB) PruneCompletionsBefore(ctx context.Context, cutoff string) (int64, error) {
	result, err := d.db.ExecContext(ctx,
		`DELETE FROM completions WHERE day < ?`, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanDays(rows *sql.Rows) ([]string, error) {
	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}
