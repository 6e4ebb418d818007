// Package badge implements the QuestDo achievement system.
// The catalog is static game content; the evaluator is a pure scan of the
// catalog against a stats snapshot. Nothing here persists state.
package badge

import "github.com/questdo/questdo/internal/domain"

// Catalog returns the full badge catalog in declaration order. The order is
// significant: evaluation and "almost there" tie-breaking follow it.
func Catalog() []domain.BadgeDefinition {
	return []domain.BadgeDefinition{
		// ── Tasks ──────────────────────────────────────────────────────
		{
			ID: "first_quest", Name: "First Quest", Icon: "🗡️", Rarity: domain.RarityCommon,
			Condition: domain.BadgeCondition{Type: domain.CondTaskComplete, Target: 1}, XPReward: 25,
		},
		{
			ID: "tasks_10", Name: "Getting Things Done", Icon: "✅", Rarity: domain.RarityCommon,
			Condition: domain.BadgeCondition{Type: domain.CondTaskComplete, Target: 10}, XPReward: 50,
		},
		{
			ID: "tasks_50", Name: "Taskmaster", Icon: "📋", Rarity: domain.RarityRare,
			Condition: domain.BadgeCondition{Type: domain.CondTaskComplete, Target: 50}, XPReward: 150,
		},
		{
			ID: "tasks_100", Name: "Centurion", Icon: "🏛️", Rarity: domain.RarityEpic,
			Condition: domain.BadgeCondition{Type: domain.CondTaskComplete, Target: 100}, XPReward: 300,
		},
		{
			ID: "tasks_500", Name: "Relentless", Icon: "⚔️", Rarity: domain.RarityLegendary,
			Condition: domain.BadgeCondition{Type: domain.CondTaskComplete, Target: 500}, XPReward: 1000,
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_3", Name: "Warming Up", Icon: "🔥", Rarity: domain.RarityCommon,
			Condition: domain.BadgeCondition{Type: domain.CondStreak, Target: 3}, XPReward: 40,
		},
		{
			ID: "streak_7", Name: "Week Warrior", Icon: "🗓️", Rarity: domain.RarityRare,
			Condition: domain.BadgeCondition{Type: domain.CondStreak, Target: 7}, XPReward: 100,
		},
		{
			ID: "streak_30", Name: "Monthly Machine", Icon: "💪", Rarity: domain.RarityEpic,
			Condition: domain.BadgeCondition{Type: domain.CondStreak, Target: 30}, XPReward: 400,
		},
		{
			ID: "streak_100", Name: "Unbreakable", Icon: "💎", Rarity: domain.RarityLegendary,
			Condition: domain.BadgeCondition{Type: domain.CondStreak, Target: 100}, XPReward: 1500,
		},

		// ── Habits ─────────────────────────────────────────────────────
		{
			ID: "habit_first", Name: "New Leaf", Icon: "🌱", Rarity: domain.RarityCommon,
			Condition: domain.BadgeCondition{Type: domain.CondHabitCheck, Target: 1}, XPReward: 25,
		},
		{
			ID: "habit_50", Name: "Creature of Habit", Icon: "🦉", Rarity: domain.RarityRare,
			Condition: domain.BadgeCondition{Type: domain.CondHabitCheck, Target: 50}, XPReward: 150,
		},
		{
			ID: "habit_250", Name: "Routine Royalty", Icon: "👑", Rarity: domain.RarityEpic,
			Condition: domain.BadgeCondition{Type: domain.CondHabitCheck, Target: 250}, XPReward: 500,
		},
		{
			ID: "habit_1000", Name: "Iron Discipline", Icon: "🛡️", Rarity: domain.RarityLegendary,
			Condition: domain.BadgeCondition{Type: domain.CondHabitCheck, Target: 1000}, XPReward: 2000,
		},

		// ── Levels ─────────────────────────────────────────────────────
		{
			ID: "level_5", Name: "Rising Star", Icon: "🌅", Rarity: domain.RarityCommon,
			Condition: domain.BadgeCondition{Type: domain.CondLevel, Target: 5}, XPReward: 75,
		},
		{
			ID: "level_10", Name: "Seasoned", Icon: "🎖️", Rarity: domain.RarityRare,
			Condition: domain.BadgeCondition{Type: domain.CondLevel, Target: 10}, XPReward: 200,
		},
		{
			ID: "level_20", Name: "Veteran", Icon: "🏅", Rarity: domain.RarityEpic,
			Condition: domain.BadgeCondition{Type: domain.CondLevel, Target: 20}, XPReward: 500,
		},
		{
			ID: "level_30", Name: "Grandmaster", Icon: "🏆", Rarity: domain.RarityLegendary,
			Condition: domain.BadgeCondition{Type: domain.CondLevel, Target: 30}, XPReward: 2500,
		},

		// ── Social & Special (granted elsewhere, never auto-satisfied) ─
		{
			ID: "first_share", Name: "Show and Tell", Icon: "📣", Rarity: domain.RarityCommon,
			Condition: domain.BadgeCondition{Type: domain.CondSocial, Target: 1}, XPReward: 50,
		},
		{
			ID: "social_10", Name: "Guild Regular", Icon: "🤝", Rarity: domain.RarityRare,
			Condition: domain.BadgeCondition{Type: domain.CondSocial, Target: 10}, XPReward: 150,
		},
		{
			ID: "founder", Name: "Founder", Icon: "🌟", Rarity: domain.RarityLegendary,
			Condition: domain.BadgeCondition{Type: domain.CondSpecial, Target: 1}, XPReward: 500,
		},
	}
}

// ByID returns the catalog entry for an id, or nil if unknown.
func ByID(id string) *domain.BadgeDefinition {
	for _, def := range Catalog() {
		if def.ID == id {
			return &def
		}
	}
	return nil
}
