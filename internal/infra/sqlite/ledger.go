package sqlite

import (
	"context"
	"time"

	"github.com/questdo/questdo/internal/domain"
)

// ─── XP Ledger ──────────────────────────────────────────────────────────────

// AppendXPEntry adds an XP grant to the append-only ledger.
func (d *DB) AppendXPEntry(ctx context.Context, entry domain.XPEntry) (int64, error) {
	result, err := d.db.ExecContext(ctx,
		`INSERT INTO xp_ledger (user_id, timestamp, source, amount, balance, note)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.UserID, entry.Timestamp.Unix(), string(entry.Source),
		entry.Amount, entry.Balance, entry.Note,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// XPHistory returns a user's most recent ledger entries, newest first.
func (d *DB) XPHistory(ctx context.Context, userID string, limit int) ([]domain.XPEntry, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, timestamp, source, amount, balance, note
		 FROM xp_ledger WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.XPEntry
	for rows.Next() {
		var e domain.XPEntry
		var ts int64
		var source string
		if err := rows.Scan(&e.ID, &e.UserID, &ts, &source, &e.Amount, &e.Balance, &e.Note); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		e.Source = domain.XPSource(source)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LedgerDrift returns the ids of users whose stored XP total no longer
// equals the sum of their ledger amounts. An empty result means every
// account balances.
func (d *DB) LedgerDrift(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT u.id FROM users u
		 LEFT JOIN (SELECT user_id, SUM(amount) AS total FROM xp_ledger GROUP BY user_id) l
		   ON l.user_id = u.id
		 WHERE u.total_xp != COALESCE(l.total, 0)`)
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
