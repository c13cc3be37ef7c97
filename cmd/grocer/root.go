package main

import (
	"github.com/spf13/cobra"

	"github.com/entrhq/grocer/pkg/aggregate"
	"github.com/entrhq/grocer/pkg/config"
	"github.com/entrhq/grocer/pkg/logging"
	"github.com/entrhq/grocer/pkg/pantry"
	"github.com/entrhq/grocer/pkg/processor"
	"github.com/entrhq/grocer/pkg/session"
)

// app carries lazily initialized shared state for one command invocation.
// Commands call ensure before touching any of it.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	store  *session.Store
	pantry *pantry.Manager
}

func (a *app) ensure() error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// A failed log file still yields a usable stderr-backed logger.
	logger, _ := logging.New(cfg.DataDir, "grocer")

	store, err := session.NewStore(cfg.DataDir, logger)
	if err != nil {
		return err
	}

	a.cfg = &cfg
	a.logger = logger
	a.store = store
	a.pantry = pantry.NewManager(cfg.DataDir)
	return nil
}

// aggregator wires up the consolidation pipeline. Callers are expected to
// have verified the API key when the invocation can reach the processor.
func (a *app) aggregator() *aggregate.Aggregator {
	proc := processor.NewClient(*a.cfg, a.logger)
	return aggregate.New(a.store, proc, *a.cfg, a.logger)
}

func (a *app) close() {
	if a.logger != nil {
		a.logger.Close()
	}
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "grocer",
		Short: "Turn recipe URLs into one consolidated grocery list",
		Long: "grocer aggregates ingredients from recipe URLs, manual entries, and\n" +
			"pantry staples into a single deduplicated, categorized shopping list,\n" +
			"tracked across resumable sessions.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newNewCommand(a))
	rootCmd.AddCommand(newAddCommand(a))
	rootCmd.AddCommand(newRecipesCommand(a))
	rootCmd.AddCommand(newRemoveRecipeCommand(a))
	rootCmd.AddCommand(newItemCommand(a))
	rootCmd.AddCommand(newDoneCommand(a))
	rootCmd.AddCommand(newSessionsCommand(a))
	rootCmd.AddCommand(newOpenCommand(a))
	rootCmd.AddCommand(newPantryCommand(a))

	return rootCmd
}
