// Package cli implements the QuestDo command-line interface using Cobra.
// Each subcommand maps to a progression capability (checkin, complete,
// status, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "questdo",
	Short: "QuestDo — Gamified task and habit tracking",
	Long: `QuestDo turns tasks and habits into quests.
Complete tasks, keep daily streaks, earn XP, level up, and unlock badges.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
