package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/questdo/questdo/internal/daemon"
	"github.com/questdo/questdo/internal/domain"
)

func init() {
	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(undoCmd)
}

var checkinCmd = &cobra.Command{
	Use:   "checkin <user> <habit>",
	Short: "Record today's check-in for a habit",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheckin,
}

var undoCmd = &cobra.Command{
	Use:   "undo <user> <habit>",
	Short: "Undo today's check-in for a habit",
	Args:  cobra.ExactArgs(2),
	RunE:  runUndo,
}

func runCheckin(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	event, err := d.Streaks.CheckIn(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}
	if event.Empty() {
		fmt.Printf("Already checked in '%s' today.\n", args[1])
		return nil
	}
	printEvent(event)
	return nil
}

func runUndo(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	err = d.Streaks.Undo(context.Background(), args[0], args[1])
	if errors.Is(err, domain.ErrNothingToUndo) {
		return fmt.Errorf("no check-in today for habit %q", args[1])
	}
	if err != nil {
		return err
	}
	fmt.Printf("Check-in for '%s' undone. Earned XP stays.\n", args[1])
	return nil
}
