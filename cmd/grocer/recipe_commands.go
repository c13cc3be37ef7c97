package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/entrhq/grocer/pkg/aggregate"
	"github.com/entrhq/grocer/pkg/fetch"
	"github.com/entrhq/grocer/pkg/models"
	"github.com/entrhq/grocer/pkg/scrape"
)

func newAddCommand(a *app) *cobra.Command {
	var htmlFile string
	var scale float64

	cmd := &cobra.Command{
		Use:   "add [url]",
		Short: "Add a recipe to the current session",
		Long: "Add a recipe by URL, or with --html from a page saved in your browser\n" +
			"(useful for paywalled sites). With no URL, prompts for URLs in a loop.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}
			if err := a.cfg.RequireAPIKey(); err != nil {
				return err
			}
			if scale <= 0 {
				return fmt.Errorf("scale must be positive, got %v", scale)
			}

			sess, err := a.store.LoadCurrent()
			if err != nil {
				return err
			}
			agg := a.aggregator()
			in := bufio.NewScanner(cmd.InOrStdin())

			if htmlFile != "" {
				data, err := os.ReadFile(htmlFile)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", htmlFile, err)
				}
				url, err := promptLine(in, cmd.OutOrStdout(), "  URL for this page (for reference): ", "https://unknown")
				if err != nil {
					return err
				}
				recipe, err := scrape.Scrape(string(data), url)
				if err != nil {
					return err
				}
				recipe.Scale = scale
				return addRecipe(cmd, agg, sess, recipe)
			}

			fetcher := fetch.NewClient()

			if len(args) == 1 {
				recipe, err := fetchAndScrape(cmd, fetcher, args[0])
				if err != nil {
					return err
				}
				recipe.Scale = scale
				return addRecipe(cmd, agg, sess, recipe)
			}

			// Interactive loop: an empty line finishes. Fetch/scrape
			// failures are reported per URL and do not end the loop.
			fmt.Println("\nAdd recipes (press Enter with no URL to finish)")
			for {
				url, err := promptLine(in, cmd.OutOrStdout(), "  Recipe URL: ", "")
				if err != nil {
					return err
				}
				if url == "" {
					return nil
				}
				recipe, err := fetchAndScrape(cmd, fetcher, url)
				if err != nil {
					fmt.Printf("  %s %v\n", failMark, err)
					continue
				}
				recipe.Scale = scale
				if err := addRecipe(cmd, agg, sess, recipe); err != nil {
					return err
				}
			}
		},
	}

	cmd.Flags().StringVar(&htmlFile, "html", "", "Path to saved HTML file (for paywalled pages)")
	cmd.Flags().Float64Var(&scale, "scale", 1.0, "Scale factor for the recipe's quantities")
	return cmd
}

func fetchAndScrape(cmd *cobra.Command, fetcher *fetch.Client, url string) (models.Recipe, error) {
	fmt.Println(dimStyle.Render("  Fetching..."))
	markup, err := fetcher.Fetch(cmd.Context(), url)
	if err != nil {
		return models.Recipe{}, err
	}
	return scrape.Scrape(markup, url)
}

// addRecipe appends the recipe and re-consolidates. The aggregator saves
// the sources before the consolidation call, so a processor failure here
// loses nothing; the error's guidance says to retry.
func addRecipe(cmd *cobra.Command, agg *aggregate.Aggregator, sess *models.Session, recipe models.Recipe) error {
	fmt.Printf("  %s %s (%d ingredients)\n", successMark, recipe.Title, len(recipe.RawIngredients))
	fmt.Println(dimStyle.Render("  Consolidating..."))

	if err := agg.AddRecipe(cmd.Context(), sess, recipe); err != nil {
		return err
	}
	fmt.Printf("%s Consolidated to %s ingredients. Run %s when you're ready to build your list.\n",
		successMark, boldStyle.Render(strconv.Itoa(len(sess.ProcessedIngredients))), boldStyle.Render("grocer done"))
	return nil
}

func newRecipesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List the current session's recipes with their positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensure(); err != nil {
				return err
			}
			sess, err := a.store.LoadCurrent()
			if err != nil {
				return err
			}
			if len(sess.Recipes) == 0 {
				fmt.Printf("No recipes yet. Run %s to add one.\n", boldStyle.Render("grocer add"))
				return nil
			}

			rows := make([][]string, 0, len(sess.Recipes))
			for i, r := range sess.Recipes {
				scale := ""
				if r.Scale != 1.0 {
					scale = fmt.Sprintf("x%g", r.Scale)
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1), r.Title, scale, strconv.Itoa(len(r.RawIngredients)),
				})
			}
			fmt.Println(renderTable([]string{"#", "Title", "Scale", "Ingredients"}, rows, 0, 3))
			return nil
		},
	}
}

func newRemoveRecipeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-recipe <index>",
		Short: "Remove a recipe by its position (see: grocer recipes)",
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
			// Removing the last source clears the list locally; every
			// other removal re-consolidates and needs the API key.
			if !(len(sess.Recipes) == 1 && len(sess.ExtraItems) == 0) {
				if err := a.cfg.RequireAPIKey(); err != nil {
					return err
				}
			}

			if err := a.aggregator().RemoveRecipe(cmd.Context(), sess, index); err != nil {
				return err
			}
			fmt.Printf("%s Removed recipe %d. %d recipe(s) remain.\n", successMark, index, len(sess.Recipes))
			return nil
		},
	}
}
