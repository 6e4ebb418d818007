package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/questdo/questdo/internal/daemon"
	"github.com/questdo/questdo/internal/domain"
)

func init() {
	rootCmd.AddCommand(completeCmd)
}

var completeCmd = &cobra.Command{
	Use:   "complete <user>",
	Short: "Record a completed task and collect the XP",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	event, err := d.Streaks.CompleteTask(context.Background(), args[0])
	if err != nil {
		return err
	}
	printEvent(event)
	return nil
}

// printEvent renders an award event for the terminal, in celebration order.
func printEvent(event domain.Event) {
	fmt.Printf("+%d XP\n", event.XPGained)
	if event.LevelUp != nil {
		if event.LevelUp.NewTitle != "" {
			fmt.Printf("LEVEL UP! You reached level %d — %s\n", event.LevelUp.Level, event.LevelUp.NewTitle)
		} else {
			fmt.Printf("LEVEL UP! You reached level %d\n", event.LevelUp.Level)
		}
	}
	for _, b := range event.BadgesUnlocked {
		fmt.Printf("Badge unlocked: %s %s (%s, +%d XP)\n", b.Icon, b.Name, b.Rarity, b.XPReward)
	}
}
