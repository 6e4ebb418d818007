package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/questdo/questdo/internal/api"
	"github.com/questdo/questdo/internal/app/gamification"
	"github.com/questdo/questdo/internal/app/streak"
	"github.com/questdo/questdo/internal/health"
	"github.com/questdo/questdo/internal/infra/sqlite"
	"github.com/questdo/questdo/internal/jobs"
)

// Daemon is the core QuestDo runtime. It wires together all services.
type Daemon struct {
	Config    Config
	DB        *sqlite.DB
	Orch      *gamification.Orchestrator
	Streaks   *streak.Service
	Server    *api.Server
	Scheduler *jobs.Scheduler
	Health    *health.Checker
	Log       *logrus.Logger
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New(version string) (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg, version)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config, version string) (*Daemon, error) {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(lvl)
	}

	dataDir := cfg.Storage.Dir
	if dataDir == "" {
		dataDir = questdoHome()
	}
	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	opts := gamification.Options{
		LevelUpDelay: cfg.Gamification.LevelUpDelay(),
		BadgeDelay:   cfg.Gamification.BadgeDelay(),
	}
	orch := gamification.New(db, db, db, opts, log)
	streaks := streak.NewService(db, db, orch, cfg.Gamification.CheckInXP, cfg.Gamification.TaskXP, log)
	sched := jobs.NewScheduler(db, streaks, cfg.Jobs.StreakRefreshSpec, cfg.Jobs.RetentionDays, log)

	checker := health.NewChecker(db, dataDir)

	srv := api.NewServer(db, db, db, orch, streaks, version, log)
	srv.SetHealth(checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:    cfg,
		DB:        db,
		Orch:      orch,
		Streaks:   streaks,
		Server:    srv,
		Scheduler: sched,
		Health:    checker,
		Log:       log,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		d.Scheduler.Stop()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	d.Log.WithField("addr", addr).Info("questdo serving")
	if d.Config.Telemetry.Prometheus {
		d.Log.Infof("metrics: http://%s/metrics", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
