// Package metrics provides Prometheus metrics for QuestDo — counters and
// histograms for XP awards, level-ups, badge unlocks, and check-ins.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Awards ─────────────────────────────────────────────────────────────────

// XPAwarded tracks total XP granted, by source.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "questdo",
	Name:      "xp_awarded_total",
	Help:      "Total XP granted.",
}, []string{"source"})

// AwardDuration tracks the award pipeline duration in seconds, including the
// persistence write.
var AwardDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "questdo",
	Name:      "award_duration_seconds",
	Help:      "XP award pipeline duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
})

// AwardConflicts tracks optimistic-concurrency retries during awards.
var AwardConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questdo",
	Name:      "award_version_conflicts_total",
	Help:      "Progression writes retried after a version conflict.",
})

// ─── Progression ────────────────────────────────────────────────────────────

// LevelUps tracks level-up events.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questdo",
	Name:      "level_ups_total",
	Help:      "Total level-up events.",
})

// BadgesUnlocked tracks badge unlocks by rarity.
var BadgesUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "questdo",
	Name:      "badges_unlocked_total",
	Help:      "Total badges unlocked.",
}, []string{"rarity"})

// ─── Activity ───────────────────────────────────────────────────────────────

// HabitChecks tracks habit check-ins.
var HabitChecks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questdo",
	Name:      "habit_checks_total",
	Help:      "Total habit check-ins recorded.",
})

// TasksCompleted tracks task completions.
var TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questdo",
	Name:      "tasks_completed_total",
	Help:      "Total task completions recorded.",
})
