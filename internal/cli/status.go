package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/questdo/questdo/internal/app/progression"
	"github.com/questdo/questdo/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status <user>",
	Short: "Show a user's level, XP, streak, and badges",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := context.Background()
	userID := args[0]

	user, err := d.DB.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %q not found, run 'questdo user create %s' first", userID, userID)
	}

	stats, heatDays, marked, err := d.Streaks.Summary(ctx, userID, 14)
	if err != nil {
		return err
	}

	earned, err := d.DB.ListEarnedBadges(ctx, userID)
	if err != nil {
		return err
	}

	fmt.Printf("%s — Level %d %s\n", user.UserID, user.Level, user.Title)

	span := progression.XPForNextLevel(user.Level)
	if span == 0 {
		fmt.Printf("XP: %d (max level)\n", user.TotalXP)
	} else {
		fmt.Printf("XP: %d (%d/%d to level %d)\n",
			user.TotalXP, progression.CurrentXP(user.Level, user.TotalXP), span, user.Level+1)
	}

	fmt.Printf("Streak: %d day(s), best %d\n", stats.CurrentStreak, stats.LongestStreak)
	fmt.Printf("Last 14 days: %s\n", heatmapLine(heatDays, marked))
	fmt.Printf("Tasks completed: %d, habit check-ins: %d\n", stats.TotalCompleted, stats.TotalHabitChecks)

	catalog := d.Orch.Evaluator().Catalog()
	fmt.Printf("Badges: %d/%d\n", len(earned), len(catalog))
	if len(earned) > 0 {
		byID := make(map[string]string, len(catalog))
		for _, def := range catalog {
			byID[def.ID] = def.Name
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, e := range earned {
			fmt.Fprintf(w, "  %s\t%s\n", byID[e.BadgeID], e.EarnedAt.Format("2006-01-02"))
		}
		w.Flush()
	}
	return nil
}

// heatmapLine renders completion days as a one-line strip, oldest first.
func heatmapLine(days []string, marked map[string]bool) string {
	var b strings.Builder
	for _, d := range days {
		if marked[d] {
			b.WriteString("■")
		} else {
			b.WriteString("·")
		}
	}
	return b.String()
}
