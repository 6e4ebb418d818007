// Package daemon manages the QuestDo daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API          APIConfig          `toml:"api"`
	Storage      StorageConfig      `toml:"storage"`
	Gamification GamificationConfig `toml:"gamification"`
	Jobs         JobsConfig         `toml:"jobs"`
	Logging      LoggingConfig      `toml:"logging"`
	Telemetry    TelemetryConfig    `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig controls the database location.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// GamificationConfig tunes XP amounts and the celebration sequence.
type GamificationConfig struct {
	CheckInXP      int64 `toml:"check_in_xp"`
	TaskXP         int64 `toml:"task_xp"`
	LevelUpDelayMS int   `toml:"level_up_delay_ms"`
	BadgeDelayMS   int   `toml:"badge_delay_ms"`
}

// JobsConfig controls the background maintenance schedule.
type JobsConfig struct {
	StreakRefreshSpec string `toml:"streak_refresh_spec"`
	RetentionDays     int    `toml:"retention_days"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8420,
		},
		Storage: StorageConfig{
			Dir: questdoHome(),
		},
		Gamification: GamificationConfig{
			CheckInXP:      10,
			TaskXP:         20,
			LevelUpDelayMS: 600,
			BadgeDelayMS:   900,
		},
		Jobs: JobsConfig{
			StreakRefreshSpec: "5 0 * * *", // Shortly after midnight
			RetentionDays:     730,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads config from ~/.questdo/config.toml, falling back to
// defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(questdoHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.questdo/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(questdoHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// LevelUpDelay returns the configured level-up celebration delay.
func (c GamificationConfig) LevelUpDelay() time.Duration {
	return time.Duration(c.LevelUpDelayMS) * time.Millisecond
}

// BadgeDelay returns the configured per-badge celebration delay.
func (c GamificationConfig) BadgeDelay() time.Duration {
	return time.Duration(c.BadgeDelayMS) * time.Millisecond
}

// questdoHome returns the QuestDo data directory.
func questdoHome() string {
	if env := os.Getenv("QUESTDO_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".questdo")
}

// QuestdoHome is exported for use by other packages.
func QuestdoHome() string {
	return questdoHome()
}
