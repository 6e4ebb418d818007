package badge

import (
	"sort"

	"github.com/questdo/questdo/internal/domain"
)

// Evaluator scans a badge catalog against user statistics. It is stateless;
// callers pass the already-earned id set and persist any new grants.
type Evaluator struct {
	catalog []domain.BadgeDefinition
}

// NewEvaluator creates an evaluator over the default catalog.
func NewEvaluator() *Evaluator {
	return &Evaluator{catalog: Catalog()}
}

// NewEvaluatorWithCatalog creates an evaluator over a custom catalog.
func NewEvaluatorWithCatalog(catalog []domain.BadgeDefinition) *Evaluator {
	return &Evaluator{catalog: catalog}
}

// Catalog returns the evaluator's catalog in declaration order.
func (e *Evaluator) Catalog() []domain.BadgeDefinition {
	return e.catalog
}

// CheckNew returns the badges newly satisfied by the given stats and level,
// in catalog order, along with the sum of their XP rewards. Already-earned
// ids are skipped, so feeding the result back in makes the call idempotent.
// Pure function: no persistence, same inputs always give same outputs.
func (e *Evaluator) CheckNew(stats domain.UserStats, level int, earned map[string]bool) ([]domain.BadgeDefinition, int64) {
	var newBadges []domain.BadgeDefinition
	var totalReward int64

	for _, def := range e.catalog {
		if earned[def.ID] {
			continue
		}
		if !satisfied(def.Condition, stats, level) {
			continue
		}
		newBadges = append(newBadges, def)
		totalReward += def.XPReward
	}
	return newBadges, totalReward
}

// NextAchievable returns unearned, auto-satisfiable badges with their
// progress toward the target, sorted by progress descending. Special badges
// are excluded — they cannot be approached by grinding stats. Ties keep
// catalog order.
func (e *Evaluator) NextAchievable(stats domain.UserStats, level int, earned map[string]bool) []domain.BadgeProgress {
	var out []domain.BadgeProgress
	for _, def := range e.catalog {
		if earned[def.ID] || def.Condition.Type == domain.CondSpecial {
			continue
		}
		out = append(out, domain.BadgeProgress{
			Badge:    def,
			Progress: progress(def.Condition, stats, level),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Progress > out[j].Progress })
	return out
}

// satisfied evaluates one condition against a stats snapshot. Social and
// special conditions are granted from other event contexts; unknown
// condition types are treated as never satisfied so old binaries tolerate
// newer catalogs.
func satisfied(c domain.BadgeCondition, stats domain.UserStats, level int) bool {
	switch c.Type {
	case domain.CondTaskComplete:
		return stats.TotalCompleted >= c.Target
	case domain.CondStreak:
		return max(stats.CurrentStreak, stats.LongestStreak) >= c.Target
	case domain.CondHabitCheck:
		return stats.TotalHabitChecks >= c.Target
	case domain.CondLevel:
		return level >= c.Target
	default:
		return false
	}
}

// progress mirrors satisfied as a ratio capped at 1.
func progress(c domain.BadgeCondition, stats domain.UserStats, level int) float64 {
	if c.Target <= 0 {
		return 1.0
	}
	var have int
	switch c.Type {
	case domain.CondTaskComplete:
		have = stats.TotalCompleted
	case domain.CondStreak:
		have = max(stats.CurrentStreak, stats.LongestStreak)
	case domain.CondHabitCheck:
		have = stats.TotalHabitChecks
	case domain.CondLevel:
		have = level
	default:
		return 0
	}
	p := float64(have) / float64(c.Target)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
