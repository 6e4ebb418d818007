package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/questdo/questdo/internal/app/progression"
	"github.com/questdo/questdo/internal/daemon"
	"github.com/questdo/questdo/internal/domain"
)

func init() {
	userCreateCmd.Flags().StringVar(&userLocale, "locale", progression.DefaultLocale, "Title locale")
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(userCmd)
}

var userLocale string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <user>",
	Short: "Register a new user at level 1",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserCreate,
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered users",
	RunE:    runUserList,
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	user := domain.UserProgression{
		UserID: args[0],
		Level:  1,
		Title:  progression.TitleForLevel(1, userLocale),
		Locale: userLocale,
	}
	err = d.DB.CreateUser(context.Background(), user)
	if errors.Is(err, domain.ErrUserExists) {
		return fmt.Errorf("user %q already exists", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Printf("Created %s — Level 1 %s\n", user.UserID, user.Title)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := context.Background()
	ids, err := d.DB.ListUserIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No users yet. Run 'questdo user create <name>' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tLEVEL\tTITLE\tTOTAL XP")
	for _, id := range ids {
		user, err := d.DB.GetUser(ctx, id)
		if err != nil || user == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", user.UserID, user.Level, user.Title, user.TotalXP)
	}
	return w.Flush()
}
