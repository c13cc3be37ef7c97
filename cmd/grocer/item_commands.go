package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/grocer/pkg/aggregate"
)

func newItemCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage manually added items in the current session",
	}
	cmd.AddCommand(newItemAddCommand(a))
	cmd.AddCommand(newItemRemoveCommand(a))
	cmd.AddCommand(newItemListCommand(a))
	return cmd
}

func newItemAddCommand(a *app) *cobra.Command {
	var quantity string

	cmd := &cobra.Command{
		Use:   "add <name>...",
		Short: "Add an item by hand, without a recipe",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}
			if err := a.cfg.RequireAPIKey(); err != nil {
				return err
			}

			sess, err := a.store.LoadCurrent()
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			fmt.Println(dimStyle.Render("  Consolidating..."))
			if err := a.aggregator().AddItem(cmd.Context(), sess, name, quantity); err != nil {
				return err
			}
			fmt.Printf("%s Added %s. List now has %d ingredient(s).\n",
				successMark, boldStyle.Render(name), len(sess.ProcessedIngredients))
			return nil
		},
	}

	cmd.Flags().StringVar(&quantity, "quantity", "", "Free-form quantity, e.g. '2 bags'")
	return cmd
}

func newItemRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <index>",
		Short: "Remove a manual item by its position (see: grocer item list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}
			index, err := parseIndexArg(args[0])
			if err != nil {
				return err
			}

			sess, err := a.store.LoadCurrent()
			if err != nil {
				return err
			}
			if !(len(sess.Recipes) == 0 && len(sess.ExtraItems) == 1) {
				if err := a.cfg.RequireAPIKey(); err != nil {
					return err
				}
			}

			if err := a.aggregator().RemoveItem(cmd.Context(), sess, index); err != nil {
				return err
			}
			fmt.Printf("%s Removed item %d. %d manual item(s) remain.\n",
				successMark, index, len(aggregate.ManualItems(sess)))
			return nil
		},
	}
}

func newItemListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List manually added items with their positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}
			sess, err := a.store.LoadCurrent()
			if err != nil {
				return err
			}

			items := aggregate.ManualItems(sess)
			if len(items) == 0 {
				fmt.Printf("No manual items. Run %s to add one.\n", boldStyle.Render("grocer item add"))
				return nil
			}
			rows := make([][]string, 0, len(items))
			for i, item := range items {
				rows = append(rows, []string{strconv.Itoa(i + 1), item.Text})
			}
			fmt.Println(renderTable([]string{"#", "Item"}, rows, 0))
			return nil
		},
	}
}
