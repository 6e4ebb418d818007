package gamification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/questdo/questdo/internal/app/badge"
	"github.com/questdo/questdo/internal/app/gamification"
	"github.com/questdo/questdo/internal/domain"
	"github.com/questdo/questdo/internal/infra/sqlite"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newUser(t *testing.T, db *sqlite.DB, id string) {
	t.Helper()
	err := db.CreateUser(context.Background(), domain.UserProgression{
		UserID: id, Level: 1, Title: "Novice", Locale: "en",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func TestAwardXP_NonPositiveIsNoOp(t *testing.T) {
	db := testDB(t)
	newUser(t, db, "u1")
	o := gamification.New(db, db, db, gamification.DefaultOptions(), testLogger())

	for _, amount := range []int64{0, -5} {
		event, err := o.AwardXP(context.Background(), "u1", amount, domain.XPTaskCompleted, domain.UserStats{})
		if err != nil {
			t.Fatalf("award %d: %v", amount, err)
		}
		if !event.Empty() {
			t.Errorf("amount %d expected empty event, got %+v", amount, event)
		}
	}

	user, _ := db.GetUser(context.Background(), "u1")
	if user.TotalXP != 0 {
		t.Errorf("totals must be untouched, got %d", user.TotalXP)
	}
}

func TestAwardXP_UnknownUser(t *testing.T) {
	db := testDB(t)
	o := gamification.New(db, db, db, gamification.DefaultOptions(), testLogger())

	_, err := o.AwardXP(context.Background(), "ghost", 10, domain.XPTaskCompleted, domain.UserStats{})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAwardXP_SimpleGrant(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	newUser(t, db, "u1")
	o := gamification.New(db, db, db, gamification.DefaultOptions(), testLogger())

	event, err := o.AwardXP(ctx, "u1", 50, domain.XPHabitChecked, domain.UserStats{})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if event.XPGained != 50 {
		t.Errorf("expected 50 XP gained, got %d", event.XPGained)
	}
	if event.LevelUp != nil {
		t.Error("50 XP must not level up from scratch (L2 needs 100)")
	}

	user, _ := db.GetUser(ctx, "u1")
	if user.TotalXP != 50 || user.Level != 1 || user.CurrentXP != 50 {
		t.Errorf("unexpected user state: %+v", user)
	}
}

func TestAwardXP_LevelDerivedFromTotal(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	newUser(t, db, "u1")
	o := gamification.New(db, db, db, gamification.DefaultOptions(), testLogger())

	event, err := o.AwardXP(ctx, "u1", 300, domain.XPTaskCompleted, domain.UserStats{})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if event.LevelUp == nil {
		t.Fatal("expected level-up event")
	}
	// 300 XP + first_quest is not satisfied (no stats) — L3 needs 250.
	if event.LevelUp.Level != 3 {
		t.Errorf("expected level 3, got %d", event.LevelUp.Level)
	}
	// Title is Novice until level 5 — level-up without a title banner.
	if event.LevelUp.NewTitle != "" {
		t.Errorf("expected no title change, got %q", event.LevelUp.NewTitle)
	}

	user, _ := db.GetUser(ctx, "u1")
	if user.Level != 3 || user.Title != "Novice" {
		t.Errorf("unexpected persisted state: %+v", user)
	}
}

func TestAwardXP_TitleChangeOnThreshold(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	newUser(t, db, "u1")
	o := gamification.New(db, db, db, gamification.DefaultOptions(), testLogger())

	// 700 XP reaches exactly level 5 — the Apprentice threshold.
	event, err := o.AwardXP(ctx, "u1", 700, domain.XPTaskCompleted, domain.UserStats{})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if event.LevelUp == nil || event.LevelUp.Level != 5 {
		t.Fatalf("expected level-up to 5, got %+v", event.LevelUp)
	}
	if event.LevelUp.NewTitle != "Apprentice" {
		t.Errorf("expected Apprentice title, got %q", event.LevelUp.NewTitle)
	}
}

func TestAwardXP_BadgeUnlockAndReward(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	newUser(t, db, "u1")
	o := gamification.New(db, db, db, gamification.DefaultOptions(), testLogger())

	// Post-award stats say one task is done: first_quest (+25) unlocks.
	stats := domain.UserStats{TotalCompleted: 1}
	event, err := o.AwardXP(ctx, "u1", 20, domain.XPTaskCompleted, stats)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if len(event.BadgesUnlocked) != 1 || event.BadgesUnlocked[0].ID != "first_quest" {
		t.Fatalf("expected first_quest unlock, got %+v", event.BadgesUnlocked)
	}
	if event.XPGained != 45 { // 20 base + 25 badge reward
		t.Errorf("expected 45 XP gained, got %d", event.XPGained)
	}

	user, _ := db.GetUser(ctx, "u1")
	if user.TotalXP != 45 {
		t.Errorf("badge reward must land in totals, got %d", user.TotalXP)
	}

	// Second identical award: badge already earned, no re-grant.
	event2, err := o.AwardXP(ctx, "u1", 20, domain.XPTaskCompleted, stats)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if len(event2.BadgesUnlocked) != 0 {
		t.Errorf("badge must not unlock twice, got %+v", event2.BadgesUnlocked)
	}
	if event2.XPGained != 20 {
		t.Errorf("expected plain 20 XP, got %d", event2.XPGained)
	}
}

func TestAwardXP_BadgeRewardTriggersFurtherLevelUp(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	newUser(t, db, "u1")

	// A fat badge reward pushes the user to level 5, which in turn unlocks
	// a level badge — detection must loop until stable.
	catalog := []domain.BadgeDefinition{
		{ID: "big", Rarity: domain.RarityEpic,
			Condition: domain.BadgeCondition{Type: domain.CondTaskComplete, Target: 1}, XPReward: 600},
		{ID: "lvl5", Rarity: domain.RarityRare,
			Condition: domain.BadgeCondition{Type: domain.CondLevel, Target: 5}, XPReward: 50},
	}
	o := gamification.NewWithEvaluator(db, db, db,
		badge.NewEvaluatorWithCatalog(catalog), gamification.DefaultOptions(), testLogger())

	event, err := o.AwardXP(ctx, "u1", 100, domain.XPTaskCompleted, domain.UserStats{TotalCompleted: 1})
	if err != nil {
		t.Fatalf("award: %v", err)
	}

	// 100 base → L2; "big" unlocks → 700 total → L5; "lvl5" unlocks → 750.
	if len(event.BadgesUnlocked) != 2 {
		t.Fatalf("expected 2 badges, got %+v", event.BadgesUnlocked)
	}
	if event.LevelUp == nil || event.LevelUp.Level != 5 {
		t.Fatalf("expected stable level 5, got %+v", event.LevelUp)
	}
	if event.XPGained != 750 {
		t.Errorf("expected 750 XP gained, got %d", event.XPGained)
	}

	user, _ := db.GetUser(ctx, "u1")
	if user.TotalXP != 750 || user.Level != 5 || user.Title != "Apprentice" {
		t.Errorf("unexpected persisted state: %+v", user)
	}
}

func TestAwardXP_CelebrationOrdering(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	newUser(t, db, "u1")
	opts := gamification.Options{LevelUpDelay: 600 * time.Millisecond, BadgeDelay: 900 * time.Millisecond}
	o := gamification.New(db, db, db, opts, testLogger())

	// 700 XP: level-up to 5 plus the level_5 badge — toast, modal, badge.
	event, err := o.AwardXP(ctx, "u1", 700, domain.XPTaskCompleted, domain.UserStats{})
	if err != nil {
		t.Fatalf("award: %v", err)
	}

	if len(event.Celebrations) != 3 {
		t.Fatalf("expected 3 celebrations, got %+v", event.Celebrations)
	}
	c := event.Celebrations
	if c[0].Kind != domain.CelebrateXPToast || c[0].ShowAfter != 0 {
		t.Errorf("first celebration must be the immediate toast: %+v", c[0])
	}
	if c[1].Kind != domain.CelebrateLevelUp || c[1].ShowAfter != 600*time.Millisecond {
		t.Errorf("second must be the delayed level-up modal: %+v", c[1])
	}
	// Badge modal waits for the level-up modal too.
	if c[2].Kind != domain.CelebrateBadge || c[2].ShowAfter != 1500*time.Millisecond {
		t.Errorf("third must be the further-delayed badge modal: %+v", c[2])
	}
}

func TestAwardXP_LedgerInvariant(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	newUser(t, db, "u1")
	o := gamification.New(db, db, db, gamification.DefaultOptions(), testLogger())

	o.AwardXP(ctx, "u1", 30, domain.XPHabitChecked, domain.UserStats{})
	o.AwardXP(ctx, "u1", 70, domain.XPTaskCompleted, domain.UserStats{TotalCompleted: 1})

	user, _ := db.GetUser(ctx, "u1")
	entries, err := db.XPHistory(ctx, "u1", 100)
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	if sum != user.TotalXP {
		t.Errorf("ledger sum %d != total XP %d", sum, user.TotalXP)
	}
	if entries[0].Balance != user.TotalXP {
		t.Errorf("newest balance %d != total XP %d", entries[0].Balance, user.TotalXP)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Failure & Concurrency Tests
// ═══════════════════════════════════════════════════════════════════════════

// failingAwardStore fails every award commit.
type failingAwardStore struct{}

func (failingAwardStore) ApplyAward(ctx context.Context, w domain.AwardWrite) error {
	return errors.New("disk on fire")
}

func TestAwardXP_PersistenceFailureProducesNoEvents(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	newUser(t, db, "u1")

	o := gamification.New(db, db, failingAwardStore{}, gamification.DefaultOptions(), testLogger())

	event, err := o.AwardXP(ctx, "u1", 700, domain.XPTaskCompleted, domain.UserStats{})
	if err == nil {
		t.Fatal("expected persistence error to surface")
	}
	if len(event.Celebrations) != 0 || event.LevelUp != nil || event.XPGained != 0 {
		t.Errorf("no celebration may exist for unsaved state: %+v", event)
	}

	// Nothing durable happened either.
	user, _ := db.GetUser(ctx, "u1")
	if user.TotalXP != 0 {
		t.Errorf("expected untouched totals, got %d", user.TotalXP)
	}
	if entries, _ := db.XPHistory(ctx, "u1", 10); len(entries) != 0 {
		t.Errorf("expected empty ledger, got %d entries", len(entries))
	}
}

// failOnceAwardStore fails the first commit, then delegates to the real one.
type failOnceAwardStore struct {
	domain.AwardStore
	failed bool
}

func (f *failOnceAwardStore) ApplyAward(ctx context.Context, w domain.AwardWrite) error {
	if !f.failed {
		f.failed = true
		return errors.New("transient write failure")
	}
	return f.AwardStore.ApplyAward(ctx, w)
}

func TestAwardXP_FailedCommitLeavesNoPartialState(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	newUser(t, db, "u1")

	o := gamification.New(db, db, &failOnceAwardStore{AwardStore: db}, gamification.DefaultOptions(), testLogger())
	stats := domain.UserStats{TotalCompleted: 1}

	// First award fails mid-commit. The progression total, badge grants,
	// and ledger all roll back together.
	if _, err := o.AwardXP(ctx, "u1", 20, domain.XPTaskCompleted, stats); err == nil {
		t.Fatal("expected commit failure to surface")
	}
	user, _ := db.GetUser(ctx, "u1")
	if user.TotalXP != 0 {
		t.Errorf("failed award must persist nothing, got total %d", user.TotalXP)
	}
	if earned, _ := db.EarnedBadgeIDs(ctx, "u1"); len(earned) != 0 {
		t.Errorf("failed award must not grant badges, got %v", earned)
	}

	// The retried award grants first_quest exactly once.
	event, err := o.AwardXP(ctx, "u1", 20, domain.XPTaskCompleted, stats)
	if err != nil {
		t.Fatalf("retried award: %v", err)
	}
	if event.XPGained != 45 {
		t.Errorf("retried award XPGained = %d, want 45", event.XPGained)
	}

	// A further identical award must not pay the badge reward again.
	if _, err := o.AwardXP(ctx, "u1", 20, domain.XPTaskCompleted, stats); err != nil {
		t.Fatalf("third award: %v", err)
	}
	user, _ = db.GetUser(ctx, "u1")
	if user.TotalXP != 65 {
		t.Errorf("total after retry and repeat = %d, want 65 (badge reward paid once)", user.TotalXP)
	}
	if earned, _ := db.EarnedBadgeIDs(ctx, "u1"); len(earned) != 1 || !earned["first_quest"] {
		t.Errorf("expected exactly first_quest earned, got %v", earned)
	}
}

func TestAwardXP_ConcurrentAwardsNeverLoseAnUpdate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	newUser(t, db, "u1")
	o := gamification.New(db, db, db, gamification.DefaultOptions(), testLogger())

	const workers = 8
	const perWorker = 5

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := o.AwardXP(ctx, "u1", 10, domain.XPHabitChecked, domain.UserStats{}); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent award failed: %v", err)
	}

	user, _ := db.GetUser(ctx, "u1")
	want := int64(workers * perWorker * 10)
	if user.TotalXP != want {
		t.Errorf("lost update: total XP %d, want %d", user.TotalXP, want)
	}
}
