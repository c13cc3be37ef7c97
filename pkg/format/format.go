// Package format renders the final purchase list. Variants form a closed
// set selected by configuration; each implements the same Render contract
// and is deterministic: sections appear strictly in configured order, empty
// sections are omitted, and ingredients keep the order the consolidated
// list presented them in.
package format

import (
	"fmt"
	"strings"

	"github.com/entrhq/grocer/pkg/config"
	"github.com/entrhq/grocer/pkg/models"
)

// Formatter renders ingredients into list text.
type Formatter interface {
	Render(ingredients []models.ProcessedIngredient, cfg config.Config) string
}

// ForFormat returns the variant for the given name.
func ForFormat(name string) (Formatter, error) {
	switch name {
	case config.FormatText:
		return TextFormatter{}, nil
	case config.FormatMarkdown:
		return MarkdownFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want %q or %q)",
			name, config.FormatText, config.FormatMarkdown)
	}
}

// Extension returns the artifact file extension for a format name.
func Extension(name string) string {
	if name == config.FormatMarkdown {
		return ".md"
	}
	return ".txt"
}

// sectionGroup is one store section's slice of the list.
type sectionGroup struct {
	name  string
	items []models.ProcessedIngredient
}

// group filters out confirmed-stocked ingredients and buckets the rest by
// store section in configured order. An ingredient whose section is not in
// the enumeration lands in the configured fallback section.
func group(ingredients []models.ProcessedIngredient, cfg config.Config) []sectionGroup {
	buckets := make(map[string][]models.ProcessedIngredient)
	for _, ing := range ingredients {
		if ing.Have() {
			continue
		}
		section := ing.Section
		if !cfg.HasSection(section) {
			section = cfg.FallbackSection
		}
		buckets[section] = append(buckets[section], ing)
	}

	var groups []sectionGroup
	for _, section := range cfg.StoreSections {
		if items := buckets[section]; len(items) > 0 {
			groups = append(groups, sectionGroup{name: section, items: items})
		}
	}
	return groups
}

// TextFormatter renders a plain checkbox list with underlined section
// headers, suitable for printing or a text artifact.
type TextFormatter struct{}

// Render implements Formatter.
func (TextFormatter) Render(ingredients []models.ProcessedIngredient, cfg config.Config) string {
	var b strings.Builder
	for _, g := range group(ingredients, cfg) {
		fmt.Fprintf(&b, "\n%s\n%s\n", g.name, strings.Repeat("-", len(g.name)))
		for _, ing := range g.items {
			fmt.Fprintf(&b, "[ ] %s %s\n", ing.Quantity, ing.Name)
		}
	}
	return strings.TrimSpace(b.String())
}

// MarkdownFormatter renders GitHub-style task lists under section headings.
// The raw markdown is what gets written to the artifact file; terminal
// display may additionally pass it through a markdown renderer.
type MarkdownFormatter struct{}

// Render implements Formatter.
func (MarkdownFormatter) Render(ingredients []models.ProcessedIngredient, cfg config.Config) string {
	var b strings.Builder
	for _, g := range group(ingredients, cfg) {
		fmt.Fprintf(&b, "\n## %s\n\n", g.name)
		for _, ing := range g.items {
			fmt.Fprintf(&b, "- [ ] %s %s\n", ing.Quantity, ing.Name)
		}
	}
	return strings.TrimSpace(b.String())
}
