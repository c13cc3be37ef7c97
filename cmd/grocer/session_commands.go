package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/entrhq/grocer/pkg/config"
	"github.com/entrhq/grocer/pkg/format"
	"github.com/entrhq/grocer/pkg/pantry"
)

func newNewCommand(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new grocery list session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}

			staples, err := a.pantry.List()
			if err != nil {
				return err
			}
			sess, err := a.store.Create(name, staples)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s Started session: %s\n", successMark, boldStyle.Render(sess.Label()))
			if len(staples) > 0 {
				fmt.Printf("%s\n", dimStyle.Render(fmt.Sprintf("Seeded %d staple item(s).", len(staples))))
			}
			fmt.Printf("Run %s to add recipes.\n\n", boldStyle.Render("grocer add"))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Optional name for this shopping trip")
	return cmd
}

func newSessionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "Show all grocery list sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}

			sessions, err := a.store.ListAll()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Printf("No sessions found. Run %s to start.\n", boldStyle.Render("grocer new"))
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				status := warnStyle.Render("In progress")
				if s.Finalized {
					status = "Finalized"
				}
				name := s.Name
				if name == "" {
					name = "—"
				}
				rows = append(rows, []string{s.ID, name, strconv.Itoa(len(s.Recipes)), status})
			}
			fmt.Println(renderTable([]string{"ID", "Name", "Recipes", "Status"}, rows, 2))
			return nil
		},
	}
}

func newOpenCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open [session-id]",
		Short: "Re-open a past session to add recipes or edit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}

			var id string
			if len(args) == 1 {
				id = args[0]
			} else {
				sessions, err := a.store.ListAll()
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					fmt.Println("No sessions found.")
					return nil
				}
				fmt.Println("Available sessions:")
				for _, s := range sessions {
					fmt.Printf("  %s\n", s.ID)
				}
				id, err = promptLine(bufio.NewScanner(cmd.InOrStdin()), cmd.OutOrStdout(), "Session ID to open: ", "")
				if err != nil {
					return err
				}
				if id == "" {
					return nil
				}
			}

			sess, err := a.store.OpenAsCurrent(id)
			if err != nil {
				return err
			}
			fmt.Printf("%s Opened session: %s\n", successMark, boldStyle.Render(sess.ID))
			fmt.Printf("Run %s to add more recipes, or %s to finalize.\n",
				boldStyle.Render("grocer add"), boldStyle.Render("grocer done"))
			return nil
		},
	}
}

func newDoneCommand(a *app) *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "done",
		Short: "Run the pantry check and write the final grocery list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}

			sess, err := a.store.LoadCurrent()
			if err != nil {
				return err
			}
			if len(sess.ProcessedIngredients) == 0 {
				fmt.Printf("%s\n", warnStyle.Render("No ingredients found. Run `grocer add` first."))
				return nil
			}

			if formatName == "" {
				formatName = a.cfg.OutputFormat
			}
			formatter, err := format.ForFormat(formatName)
			if err != nil {
				return err
			}

			matcher := pantry.NewMatcher(a.pantry, cmd.InOrStdin(), cmd.OutOrStdout())
			result, err := matcher.Run(sess.ProcessedIngredients)
			if err != nil {
				return err
			}
			// Confirmation state is part of the session; persist it before
			// anything else can fail.
			if err := a.store.Save(sess); err != nil {
				return err
			}
			if result.AutoConfirmed > 0 {
				fmt.Printf("%s\n", dimStyle.Render(fmt.Sprintf("%d ingredient(s) matched your pantry.", result.AutoConfirmed)))
			}
			if len(result.AddedToPantry) > 0 {
				fmt.Printf("%s\n", dimStyle.Render(fmt.Sprintf("Added %d item(s) to your pantry.", len(result.AddedToPantry))))
			}

			toBuy := 0
			for _, ing := range sess.ProcessedIngredients {
				if !ing.Have() {
					toBuy++
				}
			}
			fmt.Printf("\n%s items to buy.\n\n", boldStyle.Render(strconv.Itoa(toBuy)))

			output := formatter.Render(sess.ProcessedIngredients, *a.cfg)
			printList(output, formatName)

			outputPath := filepath.Join(a.store.Dir(), sess.ID+format.Extension(formatName))
			if err := os.WriteFile(outputPath, []byte(output+"\n"), 0644); err != nil {
				return fmt.Errorf("failed to write grocery list to %s: %w", outputPath, err)
			}
			if err := a.store.Finalize(sess, outputPath); err != nil {
				return err
			}

			fmt.Printf("\n%s\n", dimStyle.Render("Saved to "+outputPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "", "Output format: text or markdown (default from config)")
	return cmd
}

// printList shows the rendered list, passing markdown through glamour when
// stdout is a terminal. The artifact file always receives the raw text.
func printList(output, formatName string) {
	if formatName == config.FormatMarkdown && stdoutIsTerminal() {
		if pretty, err := glamour.Render(output, "auto"); err == nil {
			fmt.Print(pretty)
			return
		}
	}
	fmt.Println(output)
}
