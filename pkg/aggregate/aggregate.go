// Package aggregate rebuilds a session's consolidated ingredient list
// whenever its sources change. It owns no I/O of its own: persistence goes
// through the injected store and normalization through the injected
// processor, which keeps every orchestration path testable with stubs.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/entrhq/grocer/pkg/config"
	"github.com/entrhq/grocer/pkg/logging"
	"github.com/entrhq/grocer/pkg/models"
)

// ErrIndexOutOfRange is returned by the index-addressed removal operations.
// The session is never mutated when it is returned.
var ErrIndexOutOfRange = errors.New("index out of range")

// Processor is the external normalization/consolidation contract: one call
// with the full raw sequence and the section enumeration, returning the
// entire replacement list.
type Processor interface {
	Consolidate(ctx context.Context, entries []models.RawIngredient, sections []string) ([]models.ProcessedIngredient, error)
}

// Store is the slice of the session store the aggregator needs.
type Store interface {
	Save(sess *models.Session) error
}

// Aggregator coordinates source mutations with re-consolidation.
type Aggregator struct {
	store Store
	proc  Processor
	cfg   config.Config
	log   *logging.Logger
}

// New creates an aggregator. The logger may be nil.
func New(store Store, proc Processor, cfg config.Config, log *logging.Logger) *Aggregator {
	return &Aggregator{store: store, proc: proc, cfg: cfg, log: log}
}

// scaleMarker renders the free-form scale annotation prefixed to a scaled
// recipe's lines, e.g. "[x2.5] ". The multiplier is context for the
// normalizer; grocer never parses quantities itself.
func scaleMarker(scale float64) string {
	return "[x" + strconv.FormatFloat(scale, 'g', -1, 64) + "] "
}

// collectEntries builds the full ordered raw sequence: every recipe line
// (scale-annotated when the recipe's factor is not 1.0), then every extra
// item verbatim in its existing order.
func collectEntries(sess *models.Session) []models.RawIngredient {
	var entries []models.RawIngredient
	for _, recipe := range sess.Recipes {
		marker := ""
		if recipe.Scale != 1.0 {
			marker = scaleMarker(recipe.Scale)
		}
		for _, line := range recipe.RawIngredients {
			entries = append(entries, models.RawIngredient{
				Text:        marker + line,
				SourceLabel: recipe.Title,
				SourceRef:   recipe.URL,
			})
		}
	}
	return append(entries, sess.ExtraItems...)
}

// Rebuild re-derives the session's consolidated list from scratch and
// persists the session. With no sources at all the list is cleared without
// invoking the processor.
//
// The session is saved before the processor call, so a normalization
// failure never loses already-collected sources; in that case the previous
// consolidated list is kept and the error tells the user to retry.
func (a *Aggregator) Rebuild(ctx context.Context, sess *models.Session) error {
	entries := collectEntries(sess)
	if len(entries) == 0 {
		sess.ProcessedIngredients = []models.ProcessedIngredient{}
		return a.store.Save(sess)
	}

	if err := a.store.Save(sess); err != nil {
		return err
	}

	processed, err := a.proc.Consolidate(ctx, entries, a.cfg.StoreSections)
	if err != nil {
		return fmt.Errorf("consolidation failed (your sources are saved, re-run the command to retry): %w", err)
	}

	sess.ProcessedIngredients = processed
	if a.log != nil {
		a.log.Infof("session %s: consolidated %d raw entries into %d ingredients",
			sess.ID, len(entries), len(processed))
	}
	return a.store.Save(sess)
}

// AddRecipe appends a recipe and re-consolidates.
func (a *Aggregator) AddRecipe(ctx context.Context, sess *models.Session, recipe models.Recipe) error {
	sess.Recipes = append(sess.Recipes, recipe)
	return a.Rebuild(ctx, sess)
}

// AddItem appends a manually entered item and re-consolidates. The quantity
// is free-form and may be empty.
func (a *Aggregator) AddItem(ctx context.Context, sess *models.Session, name, quantity string) error {
	sess.ExtraItems = append(sess.ExtraItems, models.RawIngredient{
		Text:        models.Staple{Name: name, Quantity: quantity}.EntryText(),
		SourceLabel: models.SourceManual,
	})
	return a.Rebuild(ctx, sess)
}

// ManualItems returns the manually-added subset of the session's extra
// items, the filtered view that item listing and removal address by
// position. Positions are computed fresh per invocation and never persisted.
func ManualItems(sess *models.Session) []models.RawIngredient {
	var items []models.RawIngredient
	for _, item := range sess.ExtraItems {
		if item.SourceLabel == models.SourceManual {
			items = append(items, item)
		}
	}
	return items
}

// RemoveRecipe removes the recipe at the 1-based index and re-consolidates,
// or clears the list directly when no sources remain.
func (a *Aggregator) RemoveRecipe(ctx context.Context, sess *models.Session, index int) error {
	if index < 1 || index > len(sess.Recipes) {
		return fmt.Errorf("%w: recipe %d of %d", ErrIndexOutOfRange, index, len(sess.Recipes))
	}
	sess.Recipes = append(sess.Recipes[:index-1], sess.Recipes[index:]...)
	return a.rebuildAfterRemoval(ctx, sess)
}

// RemoveItem removes the manual item at the 1-based index over the filtered
// manual view and re-consolidates, or clears the list directly when no
// sources remain.
func (a *Aggregator) RemoveItem(ctx context.Context, sess *models.Session, index int) error {
	manualSeen := 0
	for pos, item := range sess.ExtraItems {
		if item.SourceLabel != models.SourceManual {
			continue
		}
		manualSeen++
		if manualSeen == index {
			sess.ExtraItems = append(sess.ExtraItems[:pos], sess.ExtraItems[pos+1:]...)
			return a.rebuildAfterRemoval(ctx, sess)
		}
	}
	return fmt.Errorf("%w: item %d of %d", ErrIndexOutOfRange, index, manualSeen)
}

// rebuildAfterRemoval skips the processor when a removal emptied every
// source; Rebuild would too, but the distinction keeps the contract that an
// emptied session never reaches the external service explicit.
func (a *Aggregator) rebuildAfterRemoval(ctx context.Context, sess *models.Session) error {
	if len(sess.Recipes) == 0 && len(sess.ExtraItems) == 0 {
		sess.ProcessedIngredients = []models.ProcessedIngredient{}
		return a.store.Save(sess)
	}
	return a.Rebuild(ctx, sess)
}

// SyncStaples replaces the staple-sourced subset of the session's extra
// items with the current persisted staple set and re-consolidates. Manual
// items keep their relative order; the refreshed staples follow them.
func (a *Aggregator) SyncStaples(ctx context.Context, sess *models.Session, staples []models.Staple) error {
	var kept []models.RawIngredient
	for _, item := range sess.ExtraItems {
		if item.SourceLabel != models.SourceStaple {
			kept = append(kept, item)
		}
	}
	for _, staple := range staples {
		kept = append(kept, models.RawIngredient{
			Text:        staple.EntryText(),
			SourceLabel: models.SourceStaple,
		})
	}
	sess.ExtraItems = kept
	return a.rebuildAfterRemoval(ctx, sess)
}
