// Package domain holds the QuestDo gamification types shared across layers.
// The progression engine drives retention through XP, levels, titles,
// streaks, and badges. Types here are pure — no infrastructure dependency.
package domain

import "time"

// ─── Progression Types ──────────────────────────────────────────────────────

// UserProgression is the persisted progression state of one user.
// Level is always re-derived from TotalXP on write; a stored level is never
// trusted across an XP change.
type UserProgression struct {
	UserID    string    `json:"user_id"`
	Level     int       `json:"level"`
	TotalXP   int64     `json:"total_xp"`
	CurrentXP int64     `json:"current_xp"` // XP above the current level threshold
	Title     string    `json:"title"`
	Locale    string    `json:"locale"`
	Version   int64     `json:"-"` // Optimistic concurrency stamp
	UpdatedAt time.Time `json:"updated_at"`
}

// UserStats is the statistics snapshot fed to badge conditions.
type UserStats struct {
	TotalCompleted   int `json:"total_completed"`
	CurrentStreak    int `json:"current_streak"`
	LongestStreak    int `json:"longest_streak"`
	TotalHabitChecks int `json:"total_habit_checks"`
}

// XPSource categorizes how XP was earned.
type XPSource string

const (
	XPTaskCompleted XPSource = "TASK_COMPLETED"
	XPHabitChecked  XPSource = "HABIT_CHECKED"
	XPBadgeReward   XPSource = "BADGE_REWARD"
)

// ─── Award Event Types ──────────────────────────────────────────────────────

// LevelUp describes a level crossing within one award.
// NewTitle is empty when the crossed level did not change the title.
type LevelUp struct {
	Level    int    `json:"level"`
	NewTitle string `json:"new_title,omitempty"`
}

// Event is the transient outcome of one award operation. It is consumed by
// the presentation layer and discarded — never persisted. EventID lets
// clients dedupe replayed celebration payloads; it is empty on no-op awards.
type Event struct {
	EventID        string            `json:"event_id,omitempty"`
	XPGained       int64             `json:"xp_gained"`
	LevelUp        *LevelUp          `json:"level_up,omitempty"`
	BadgesUnlocked []BadgeDefinition `json:"badges_unlocked,omitempty"`
	Celebrations   []Celebration     `json:"celebrations,omitempty"`
}

// Empty reports whether the award produced no visible outcome.
func (e Event) Empty() bool {
	return e.XPGained == 0 && e.LevelUp == nil && len(e.BadgesUnlocked) == 0
}

// CelebrationKind orders the UI celebration sequence.
type CelebrationKind string

const (
	CelebrateXPToast CelebrationKind = "xp_toast"
	CelebrateLevelUp CelebrationKind = "level_up"
	CelebrateBadge   CelebrationKind = "badge"
)

// Celebration is one step of the ordered celebration sequence. ShowAfter is
// the delay relative to the award response; the server only guarantees
// ordering and payload, rendering is the client's concern.
type Celebration struct {
	Kind      CelebrationKind  `json:"kind"`
	ShowAfter time.Duration    `json:"show_after_ms"`
	XP        int64            `json:"xp,omitempty"`
	LevelUp   *LevelUp         `json:"level_up,omitempty"`
	Badge     *BadgeDefinition `json:"badge,omitempty"`
}

// ─── Ledger Types ───────────────────────────────────────────────────────────

// XPEntry is one row of a user's XP ledger. The running balance after the
// grant is stored alongside; SUM(amounts) == UserProgression.TotalXP holds.
type XPEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Source    XPSource  `json:"source"`
	Amount    int64     `json:"amount"`
	Balance   int64     `json:"balance"`
	Note      string    `json:"note,omitempty"`
}
