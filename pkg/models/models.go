// Package models defines the entities persisted and exchanged by grocer:
// raw ingredient lines with provenance, normalized ingredients produced by
// the consolidation service, recipe records, pantry staples, and the
// session envelope that ties one shopping-list effort together.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// SchemaVersion is the current session envelope version. Sessions persisted
// with a different version are rejected on load rather than coerced.
const SchemaVersion = 1

// Source labels for extra items that did not come from a recipe.
const (
	SourceManual = "[manual]"
	SourceStaple = "[staple]"
)

// RawIngredient is a single free-form ingredient line together with where it
// came from. Entries are immutable once created; provenance is never
// discarded, even after consolidation.
type RawIngredient struct {
	// Text is the ingredient line as written, possibly prefixed with a
	// scale marker by the aggregator.
	Text string `json:"text"`

	// SourceLabel is the recipe title, or one of the sentinel labels
	// SourceManual / SourceStaple.
	SourceLabel string `json:"recipe_title"`

	// SourceRef is the recipe URL, or empty for non-recipe entries.
	SourceRef string `json:"recipe_url"`
}

// ProcessedIngredient is one normalized, categorized entry of the
// consolidated list. Instances are produced only by the consolidation
// service; the aggregator never hand-constructs them.
type ProcessedIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Section  string `json:"section"`

	// RawSources holds the original ingredient texts merged into this entry.
	RawSources []string `json:"raw_sources"`

	// ConfirmedHave is tri-state: nil means the pantry check has not
	// resolved this ingredient yet.
	ConfirmedHave *bool `json:"confirmed_have"`
}

// Confirm resolves the pantry state for this ingredient.
func (p *ProcessedIngredient) Confirm(have bool) {
	p.ConfirmedHave = &have
}

// IsConfirmed reports whether the pantry check already resolved this
// ingredient, in this invocation or a prior one.
func (p ProcessedIngredient) IsConfirmed() bool {
	return p.ConfirmedHave != nil
}

// Have reports whether the ingredient was confirmed as stocked.
func (p ProcessedIngredient) Have() bool {
	return p.ConfirmedHave != nil && *p.ConfirmedHave
}

// Recipe is one scraped (or manually supplied) recipe: its title, source
// URL, raw ingredient lines in document order, and the scale factor the
// user requested for it.
type Recipe struct {
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	RawIngredients []string `json:"raw_ingredients"`
	Scale          float64  `json:"scale"`
}

// UnmarshalJSON decodes a recipe, defaulting Scale to 1.0 when the field is
// absent. Records persisted before scaling existed carry no scale key and
// must keep deserializing.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type recipeAlias Recipe
	aux := recipeAlias{Scale: 1.0}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Scale <= 0 {
		aux.Scale = 1.0
	}
	*r = Recipe(aux)
	return nil
}

// Staple is a pantry item the user always keeps stocked. The persisted
// staple set is flat and deduplicated by case-insensitive name.
type Staple struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
}

// EntryText renders the staple as an ingredient line, e.g. "500g rice".
func (s Staple) EntryText() string {
	return strings.TrimSpace(s.Quantity + " " + s.Name)
}

// Session is the unit of persisted state for one shopping-list effort.
type Session struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Recipes and ExtraItems are the ingredient sources. ExtraItems holds
	// manually added entries and staple-seeded entries, provenance-tagged.
	Recipes    []Recipe        `json:"recipes"`
	ExtraItems []RawIngredient `json:"extra_items"`

	// ProcessedIngredients is replaced wholesale on every re-consolidation,
	// never merged in place.
	ProcessedIngredients []ProcessedIngredient `json:"processed_ingredients"`

	// Finalized is true only after a rendered list artifact has been
	// written; reopening a session resets it.
	Finalized  bool   `json:"finalized"`
	OutputPath string `json:"output_path,omitempty"`
}

// Label returns the human-facing identifier for the session: its name when
// one was given, otherwise its id.
func (s *Session) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}
