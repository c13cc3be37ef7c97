package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/grocer/pkg/aggregate"
	"github.com/entrhq/grocer/pkg/session"
)

func newPantryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pantry",
		Short: "Manage the persisted pantry staples",
		Long: "Staples are ingredients you always keep stocked. They seed every new\n" +
			"session's item list and are auto-confirmed during the pantry check.",
	}
	cmd.AddCommand(newPantryAddCommand(a))
	cmd.AddCommand(newPantryRemoveCommand(a))
	cmd.AddCommand(newPantryListCommand(a))
	cmd.AddCommand(newPantrySyncCommand(a))
	return cmd
}

func newPantryAddCommand(a *app) *cobra.Command {
	var quantity string

	cmd := &cobra.Command{
		Use:   "add <name>...",
		Short: "Add a staple to the pantry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}
			name := strings.Join(args, " ")
			added, err := a.pantry.Add(name, quantity)
			if err != nil {
				return err
			}
			if !added {
				fmt.Printf("%s is already in your pantry.\n", boldStyle.Render(name))
				return nil
			}
			fmt.Printf("%s Added %s to your pantry. Run %s to refresh the current session.\n",
				successMark, boldStyle.Render(name), boldStyle.Render("grocer pantry sync"))
			return nil
		},
	}

	cmd.Flags().StringVar(&quantity, "quantity", "", "Default quantity when seeding sessions, e.g. '1kg'")
	return cmd
}

func newPantryRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>...",
		Short: "Remove a staple from the pantry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}
			name := strings.Join(args, " ")
			removed, err := a.pantry.Remove(name)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Printf("%s is not in your pantry.\n", boldStyle.Render(name))
				return nil
			}
			fmt.Printf("%s Removed %s from your pantry.\n", successMark, boldStyle.Render(name))
			return nil
		},
	}
}

func newPantryListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pantry staples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}
			staples, err := a.pantry.List()
			if err != nil {
				return err
			}
			if len(staples) == 0 {
				fmt.Printf("Your pantry is empty. Run %s to add a staple.\n", boldStyle.Render("grocer pantry add"))
				return nil
			}
			rows := make([][]string, 0, len(staples))
			for _, s := range staples {
				rows = append(rows, []string{s.Name, s.Quantity})
			}
			fmt.Println(renderTable([]string{"Name", "Quantity"}, rows))
			return nil
		},
	}
}

// newPantrySyncCommand re-seeds the current session's staple items from the
// pantry set and re-consolidates, so staple changes made mid-session take
// effect without starting over.
func newPantrySyncCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Re-sync the current session's staples with the pantry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}

			sess, err := a.store.LoadCurrent()
			if err != nil {
				if errors.Is(err, session.ErrNoActiveSession) {
					fmt.Println("No active session; staples will seed the next `grocer new`.")
					return nil
				}
				return err
			}

			staples, err := a.pantry.List()
			if err != nil {
				return err
			}
			// The key is only needed when sources remain after the sync.
			if len(sess.Recipes) > 0 || len(staples) > 0 || len(aggregate.ManualItems(sess)) > 0 {
				if err := a.cfg.RequireAPIKey(); err != nil {
					return err
				}
			}

			fmt.Println(dimStyle.Render("  Consolidating..."))
			if err := a.aggregator().SyncStaples(cmd.Context(), sess, staples); err != nil {
				return err
			}
			fmt.Printf("%s Synced %d staple(s) into session %s.\n",
				successMark, len(staples), boldStyle.Render(sess.ID))
			return nil
		},
	}
}
