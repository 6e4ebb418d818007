package domain

import "time"

// ─── Badge Types ────────────────────────────────────────────────────────────

// BadgeRarity ranks how hard a badge is to earn.
type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

// ConditionType selects which statistic a badge condition reads.
type ConditionType string

const (
	CondTaskComplete ConditionType = "task_complete"
	CondStreak       ConditionType = "streak"
	CondHabitCheck   ConditionType = "habit_check"
	CondLevel        ConditionType = "level"
	// Social and special badges are granted from other event contexts
	// (post counts, manual grants) — the evaluator never satisfies them.
	CondSocial  ConditionType = "social"
	CondSpecial ConditionType = "special"
)

// BadgeCondition is a single threshold test against a stats snapshot.
type BadgeCondition struct {
	Type   ConditionType `json:"type"`
	Target int           `json:"target"`
}

// BadgeDefinition is one entry of the immutable badge catalog.
type BadgeDefinition struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Icon      string         `json:"icon"`
	Rarity    BadgeRarity    `json:"rarity"`
	Condition BadgeCondition `json:"condition"`
	XPReward  int64          `json:"xp_reward"`
}

// EarnedBadge records when a badge was granted. Badges are append-only —
// never revoked.
type EarnedBadge struct {
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// BadgeProgress pairs a badge with how close the user is to earning it.
type BadgeProgress struct {
	Badge    BadgeDefinition `json:"badge"`
	Progress float64         `json:"progress"` // [0,1]
}
