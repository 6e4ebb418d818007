package health

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/questdo/questdo/internal/app/gamification"
	"github.com/questdo/questdo/internal/domain"
	"github.com/questdo/questdo/internal/infra/sqlite"
)

func testDB(t *testing.T) (*sqlite.DB, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, dir
}

func TestChecker_AllHealthy(t *testing.T) {
	db, dir := testDB(t)

	c := NewChecker(db, dir)
	c.runAll(context.Background())

	if !c.IsHealthy() {
		t.Errorf("fresh db must be healthy: %+v", c.Statuses())
	}
	if len(c.Statuses()) != 3 {
		t.Errorf("len(statuses) = %d, want 3", len(c.Statuses()))
	}
}

func TestChecker_NotHealthyBeforeFirstPass(t *testing.T) {
	db, dir := testDB(t)

	c := NewChecker(db, dir)
	if c.IsHealthy() {
		t.Error("checker must not report healthy before any check has run")
	}

	c.runAll(context.Background())
	if !c.IsHealthy() {
		t.Errorf("first pass over a fresh db must be healthy: %+v", c.Statuses())
	}
}

func TestChecker_MissingDataDir(t *testing.T) {
	db, _ := testDB(t)

	c := NewChecker(db, "/nonexistent/questdo-data")
	c.runAll(context.Background())

	if c.IsHealthy() {
		t.Error("missing data dir must be unhealthy")
	}
}

func TestChecker_LedgerConsistency(t *testing.T) {
	db, dir := testDB(t)
	ctx := context.Background()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	orch := gamification.New(db, db, db, gamification.DefaultOptions(), log)

	err := db.CreateUser(ctx, domain.UserProgression{UserID: "u1", Level: 1, Title: "Novice", Locale: "en"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := orch.AwardXP(ctx, "u1", 40, domain.XPTaskCompleted, domain.UserStats{}); err != nil {
		t.Fatalf("award: %v", err)
	}

	c := NewChecker(db, dir)
	c.runAll(ctx)
	if !c.IsHealthy() {
		t.Errorf("balanced ledger must be healthy: %+v", c.Statuses())
	}

	// Tamper with the stored total so it no longer matches the ledger.
	user, _ := db.GetUser(ctx, "u1")
	user.TotalXP += 999
	if err := db.UpdateProgression(ctx, *user); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	c.runAll(ctx)
	if c.IsHealthy() {
		t.Error("drifted ledger must be unhealthy")
	}
}
