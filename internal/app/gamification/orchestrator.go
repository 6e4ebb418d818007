// Package gamification implements the QuestDo award orchestrator: one XP
// grant in, a persisted progression update and an ordered celebration
// sequence out. Awards for the same user are strictly serialized; the write
// happens before any user-facing event is produced.
package gamification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/questdo/questdo/internal/app/badge"
	"github.com/questdo/questdo/internal/app/progression"
	"github.com/questdo/questdo/internal/domain"
	"github.com/questdo/questdo/internal/infra/metrics"
)

// maxConflictRetries bounds re-reads after an optimistic-concurrency miss.
// Per-user locking makes conflicts rare; they only occur when another
// process writes the same row.
const maxConflictRetries = 3

// Options tunes the celebration sequencing.
type Options struct {
	// LevelUpDelay is how long after the XP toast the level-up modal shows.
	LevelUpDelay time.Duration
	// BadgeDelay is the gap before a badge modal, extended by LevelUpDelay
	// when a level-up modal is also showing.
	BadgeDelay time.Duration
}

// DefaultOptions returns the celebration timing used by the web client.
func DefaultOptions() Options {
	return Options{
		LevelUpDelay: 600 * time.Millisecond,
		BadgeDelay:   900 * time.Millisecond,
	}
}

// Orchestrator coordinates XP awards, level-up detection, badge evaluation,
// and persistence.
type Orchestrator struct {
	users  domain.UserStore
	badges domain.BadgeStore
	awards domain.AwardStore
	eval   *badge.Evaluator
	opts   Options
	log    *logrus.Entry

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-user award serialization
}

// New creates an orchestrator over the given stores and the default badge
// catalog.
func New(users domain.UserStore, badges domain.BadgeStore, awards domain.AwardStore, opts Options, log *logrus.Logger) *Orchestrator {
	return NewWithEvaluator(users, badges, awards, badge.NewEvaluator(), opts, log)
}

// NewWithEvaluator creates an orchestrator with a custom badge evaluator.
func NewWithEvaluator(users domain.UserStore, badges domain.BadgeStore, awards domain.AwardStore, eval *badge.Evaluator, opts Options, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		users:  users,
		badges: badges,
		awards: awards,
		eval:   eval,
		opts:   opts,
		log:    log.WithField("component", "gamification"),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Evaluator exposes the badge evaluator for read-only catalog queries.
func (o *Orchestrator) Evaluator() *badge.Evaluator { return o.eval }

// userLock returns the award mutex for a user, creating it on first use.
func (o *Orchestrator) userLock(userID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[userID] = l
	}
	return l
}

// AwardXP grants XP to a user and returns the resulting event.
//
// A non-positive amount is a no-op returning an empty event. Otherwise the
// pipeline is: add the base XP, re-derive the level from the new total,
// evaluate badges against the post-award stats and level, fold badge reward
// XP back in, and repeat level/badge detection until stable — badge rewards
// can themselves cross a level boundary. The final record is persisted with
// an optimistic version check before any celebration event exists, so a
// failed write never shows UI for state that was not saved.
//
// Awards for the same user are serialized; two concurrent calls always both
// land (no lost update).
func (o *Orchestrator) AwardXP(ctx context.Context, userID string, amount int64, source domain.XPSource, stats domain.UserStats) (domain.Event, error) {
	if amount <= 0 {
		return domain.Event{}, nil // Reject without corrupting totals
	}

	lock := o.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() { metrics.AwardDuration.Observe(time.Since(start).Seconds()) }()

	for attempt := 0; ; attempt++ {
		event, err := o.awardOnce(ctx, userID, amount, source, stats)
		if errors.Is(err, domain.ErrVersionConflict) && attempt < maxConflictRetries {
			metrics.AwardConflicts.Inc()
			o.log.WithField("user", userID).Warn("progression version conflict, retrying award")
			continue
		}
		return event, err
	}
}

// awardOnce runs one attempt of the award pipeline against a fresh read.
func (o *Orchestrator) awardOnce(ctx context.Context, userID string, amount int64, source domain.XPSource, stats domain.UserStats) (domain.Event, error) {
	user, err := o.users.GetUser(ctx, userID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return domain.Event{}, domain.ErrUserNotFound
	}

	earned, err := o.badges.EarnedBadgeIDs(ctx, userID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("load earned badges: %w", err)
	}

	oldLevel := user.Level
	total := user.TotalXP + amount

	// Badge evaluation sees the post-award stats and level. Reward XP is
	// folded back into the total and detection loops until no new badge
	// unlocks and the level is stable.
	var unlocked []domain.BadgeDefinition
	var badgeXP int64
	level := progression.LevelForXP(total)
	for {
		newBadges, reward := o.eval.CheckNew(stats, level, earned)
		if len(newBadges) == 0 {
			break
		}
		for _, def := range newBadges {
			earned[def.ID] = true
		}
		unlocked = append(unlocked, newBadges...)
		badgeXP += reward
		total += reward
		level = progression.LevelForXP(total)
	}

	newTitle := progression.TitleForLevel(level, user.Locale)

	updated := *user
	updated.TotalXP = total
	updated.Level = level
	updated.CurrentXP = progression.CurrentXP(level, total)
	updated.Title = newTitle
	updated.UpdatedAt = time.Now()

	// Persist before anything user-facing, and persist everything at once:
	// the progression record, badge grants, and ledger rows commit in one
	// transaction, so a partial failure can never leave reward XP without
	// the badge and ledger rows that explain it. The version check turns a
	// lost update into a retryable conflict instead of silent clobbering.
	now := time.Now()
	write := domain.AwardWrite{
		User:    updated,
		Entries: ledgerEntries(userID, amount, badgeXP, source, user.TotalXP, now),
	}
	for _, def := range unlocked {
		write.Badges = append(write.Badges, domain.EarnedBadge{BadgeID: def.ID, EarnedAt: now})
	}
	if err := o.awards.ApplyAward(ctx, write); err != nil {
		return domain.Event{}, err
	}

	event := o.buildEvent(amount, badgeXP, oldLevel, level, user.Title, newTitle, unlocked)

	metrics.XPAwarded.WithLabelValues(string(source)).Add(float64(amount))
	if badgeXP > 0 {
		metrics.XPAwarded.WithLabelValues(string(domain.XPBadgeReward)).Add(float64(badgeXP))
	}
	if event.LevelUp != nil {
		metrics.LevelUps.Inc()
	}
	for _, def := range unlocked {
		metrics.BadgesUnlocked.WithLabelValues(string(def.Rarity)).Inc()
	}

	o.log.WithFields(logrus.Fields{
		"user":    userID,
		"source":  source,
		"xp":      amount,
		"badges":  len(unlocked),
		"level":   level,
		"totalXP": total,
	}).Info("xp awarded")

	return event, nil
}

// ledgerEntries builds the base grant and any badge reward as ledger rows
// with running balances.
func ledgerEntries(userID string, amount, badgeXP int64, source domain.XPSource, prevTotal int64, now time.Time) []domain.XPEntry {
	balance := prevTotal + amount
	entries := []domain.XPEntry{{
		UserID:    userID,
		Timestamp: now,
		Source:    source,
		Amount:    amount,
		Balance:   balance,
	}}
	if badgeXP > 0 {
		balance += badgeXP
		entries = append(entries, domain.XPEntry{
			UserID:    userID,
			Timestamp: now,
			Source:    domain.XPBadgeReward,
			Amount:    badgeXP,
			Balance:   balance,
			Note:      "badge rewards",
		})
	}
	return entries
}

// buildEvent assembles the event payload and the ordered celebration
// sequence: XP toast first, level-up modal after a fixed delay, badge modals
// after a further delay (pushed back when a level-up modal is also showing).
func (o *Orchestrator) buildEvent(amount, badgeXP int64, oldLevel, newLevel int, oldTitle, newTitle string, unlocked []domain.BadgeDefinition) domain.Event {
	event := domain.Event{
		EventID:  uuid.New().String(),
		XPGained: amount + badgeXP,
	}

	if newLevel > oldLevel {
		lu := &domain.LevelUp{Level: newLevel}
		if newTitle != oldTitle {
			lu.NewTitle = newTitle
		}
		event.LevelUp = lu
	}
	event.BadgesUnlocked = unlocked

	event.Celebrations = append(event.Celebrations, domain.Celebration{
		Kind: domain.CelebrateXPToast,
		XP:   event.XPGained,
	})
	offset := time.Duration(0)
	if event.LevelUp != nil {
		offset += o.opts.LevelUpDelay
		event.Celebrations = append(event.Celebrations, domain.Celebration{
			Kind:      domain.CelebrateLevelUp,
			ShowAfter: offset,
			LevelUp:   event.LevelUp,
		})
	}
	for i := range unlocked {
		offset += o.opts.BadgeDelay
		event.Celebrations = append(event.Celebrations, domain.Celebration{
			Kind:      domain.CelebrateBadge,
			ShowAfter: offset,
			Badge:     &unlocked[i],
		})
	}
	return event
}
