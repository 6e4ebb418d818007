package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/questdo/questdo/internal/daemon"
)

func init() {
	rootCmd.AddCommand(maintainCmd)
}

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run the daily maintenance pass once",
	Long:  `Refresh every user's streak stats and prune old completion history, without waiting for the scheduled run.`,
	RunE:  runMaintain,
}

func runMaintain(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	d.Scheduler.RunDailyMaintenance(context.Background())
	fmt.Println("Maintenance complete.")
	return nil
}
