package domain

import (
	"context"
	"time"
)

// ─── Storage Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// UserStore abstracts persistent user progression storage.
type UserStore interface {
	CreateUser(ctx context.Context, user UserProgression) error
	GetUser(ctx context.Context, userID string) (*UserProgression, error)
	ListUserIDs(ctx context.Context) ([]string, error)

	// UpdateProgression writes the record only if the stored version still
	// matches user.Version, bumping it by one. Returns ErrVersionConflict
	// otherwise.
	UpdateProgression(ctx context.Context, user UserProgression) error

	GetStats(ctx context.Context, userID string) (UserStats, error)
	UpdateStats(ctx context.Context, userID string, stats UserStats) error
}

// CompletionStore abstracts per-habit completion-day storage.
// Days are "2006-01-02" strings with set semantics.
type CompletionStore interface {
	AddCompletion(ctx context.Context, userID, habitID, day string) (added bool, err error)
	RemoveCompletion(ctx context.Context, userID, habitID, day string) (removed bool, err error)
	ListCompletions(ctx context.Context, userID, habitID string) ([]string, error)
	ListAllCompletions(ctx context.Context, userID string) ([]string, error)
	PruneCompletionsBefore(ctx context.Context, cutoff string) (int64, error)
}

// BadgeStore abstracts earned-badge storage. Grants are idempotent.
type BadgeStore interface {
	GrantBadge(ctx context.Context, userID, badgeID string, at time.Time) (isNew bool, err error)
	ListEarnedBadges(ctx context.Context, userID string) ([]EarnedBadge, error)
	EarnedBadgeIDs(ctx context.Context, userID string) (map[string]bool, error)
}

// LedgerStore abstracts the append-only XP ledger.
type LedgerStore interface {
	AppendXPEntry(ctx context.Context, entry XPEntry) (int64, error)
	XPHistory(ctx context.Context, userID string, limit int) ([]XPEntry, error)
}

// AwardWrite is the complete persistent outcome of one XP award: the updated
// progression record, any freshly earned badges, and the ledger rows.
type AwardWrite struct {
	User    UserProgression
	Badges  []EarnedBadge
	Entries []XPEntry
}

// AwardStore commits an award in one transaction — either the progression
// update, badge grants, and ledger rows all land, or none do. The
// progression write carries the same version check as UpdateProgression.
type AwardStore interface {
	ApplyAward(ctx context.Context, w AwardWrite) error
}
