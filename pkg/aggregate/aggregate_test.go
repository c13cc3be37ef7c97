package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/grocer/pkg/config"
	"github.com/entrhq/grocer/pkg/models"
)

// stubProcessor records every consolidation call and answers with a
// deterministic mapping of the inputs, so re-runs are comparable.
type stubProcessor struct {
	calls [][]models.RawIngredient
	fail  error
}

func (s *stubProcessor) Consolidate(_ context.Context, entries []models.RawIngredient, _ []string) ([]models.ProcessedIngredient, error) {
	s.calls = append(s.calls, append([]models.RawIngredient(nil), entries...))
	if s.fail != nil {
		return nil, s.fail
	}
	out := make([]models.ProcessedIngredient, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.ProcessedIngredient{
			Name:       e.Text,
			Quantity:   "as needed",
			Section:    "Other",
			RawSources: []string{e.Text},
		})
	}
	return out, nil
}

// memStore snapshots every save so tests can assert what was durable when.
type memStore struct {
	saves    int
	lastSnap models.Session
	fail     error
}

func (m *memStore) Save(sess *models.Session) error {
	if m.fail != nil {
		return m.fail
	}
	m.saves++
	m.lastSnap = *sess
	return nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.DataDir = "unused"
	return cfg
}

func newTestAggregator(proc *stubProcessor, store *memStore) *Aggregator {
	return New(store, proc, testConfig(), nil)
}

func sessionWith(recipes []models.Recipe, extras []models.RawIngredient) *models.Session {
	return &models.Session{
		Version:    models.SchemaVersion,
		ID:         "2026-05-01-test",
		Recipes:    recipes,
		ExtraItems: extras,
	}
}

func TestRebuildScaleMarkers(t *testing.T) {
	proc := &stubProcessor{}
	agg := newTestAggregator(proc, &memStore{})

	sess := sessionWith([]models.Recipe{
		{Title: "R1", URL: "https://r1", RawIngredients: []string{"1 cup flour"}, Scale: 2.0},
		{Title: "R2", URL: "https://r2", RawIngredients: []string{"2 eggs"}, Scale: 1.0},
	}, nil)

	require.NoError(t, agg.Rebuild(context.Background(), sess))
	require.Len(t, proc.calls, 1)

	entries := proc.calls[0]
	require.Len(t, entries, 2)
	assert.Equal(t, "[x2] 1 cup flour", entries[0].Text)
	assert.Equal(t, "R1", entries[0].SourceLabel)
	assert.Equal(t, "https://r1", entries[0].SourceRef)
	assert.Equal(t, "2 eggs", entries[1].Text, "unit scale must not be annotated")
}

func TestRebuildIsIdempotent(t *testing.T) {
	proc := &stubProcessor{}
	agg := newTestAggregator(proc, &memStore{})

	sess := sessionWith(
		[]models.Recipe{{Title: "R", RawIngredients: []string{"1 onion", "2 carrots"}, Scale: 1.0}},
		[]models.RawIngredient{{Text: "coffee", SourceLabel: models.SourceManual}},
	)

	require.NoError(t, agg.Rebuild(context.Background(), sess))
	first := append([]models.ProcessedIngredient(nil), sess.ProcessedIngredients...)

	require.NoError(t, agg.Rebuild(context.Background(), sess))
	assert.Equal(t, first, sess.ProcessedIngredients)
	assert.Equal(t, proc.calls[0], proc.calls[1], "identical inputs must produce identical requests")
}

func TestRebuildEmptySkipsProcessor(t *testing.T) {
	proc := &stubProcessor{}
	store := &memStore{}
	agg := newTestAggregator(proc, store)

	sess := sessionWith(nil, nil)
	sess.ProcessedIngredients = []models.ProcessedIngredient{{Name: "stale"}}

	require.NoError(t, agg.Rebuild(context.Background(), sess))
	assert.Empty(t, sess.ProcessedIngredients)
	assert.Empty(t, proc.calls, "processor must never be invoked with zero inputs")
	assert.Equal(t, 1, store.saves)
}

func TestRebuildProcessorFailure(t *testing.T) {
	procErr := errors.New("model returned garbage")
	proc := &stubProcessor{fail: procErr}
	store := &memStore{}
	agg := newTestAggregator(proc, store)

	sess := sessionWith([]models.Recipe{{Title: "R", RawIngredients: []string{"1 onion"}, Scale: 1.0}}, nil)
	sess.ProcessedIngredients = []models.ProcessedIngredient{{Name: "prior"}}

	err := agg.Rebuild(context.Background(), sess)
	require.Error(t, err)
	assert.ErrorIs(t, err, procErr)

	// The sources were saved before the call, and the prior consolidated
	// list survives the failure.
	assert.Equal(t, 1, store.saves)
	require.Len(t, store.lastSnap.Recipes, 1)
	require.Len(t, sess.ProcessedIngredients, 1)
	assert.Equal(t, "prior", sess.ProcessedIngredients[0].Name)
}

func TestAddItem(t *testing.T) {
	proc := &stubProcessor{}
	agg := newTestAggregator(proc, &memStore{})
	sess := sessionWith(nil, nil)

	require.NoError(t, agg.AddItem(context.Background(), sess, "coffee", "2 bags"))
	require.Len(t, sess.ExtraItems, 1)
	assert.Equal(t, "2 bags coffee", sess.ExtraItems[0].Text)
	assert.Equal(t, models.SourceManual, sess.ExtraItems[0].SourceLabel)
	require.Len(t, proc.calls, 1)
}

func TestManualItems(t *testing.T) {
	sess := sessionWith(nil, []models.RawIngredient{
		{Text: "500g rice", SourceLabel: models.SourceStaple},
		{Text: "coffee", SourceLabel: models.SourceManual},
		{Text: "olive oil", SourceLabel: models.SourceStaple},
		{Text: "batteries", SourceLabel: models.SourceManual},
	})

	items := ManualItems(sess)
	require.Len(t, items, 2)
	assert.Equal(t, "coffee", items[0].Text)
	assert.Equal(t, "batteries", items[1].Text)
}

func TestRemoveRecipe(t *testing.T) {
	t.Run("out of range leaves the session unchanged", func(t *testing.T) {
		proc := &stubProcessor{}
		store := &memStore{}
		agg := newTestAggregator(proc, store)
		sess := sessionWith([]models.Recipe{{Title: "Only", RawIngredients: []string{"x"}, Scale: 1.0}}, nil)

		for _, index := range []int{0, 2, -1} {
			err := agg.RemoveRecipe(context.Background(), sess, index)
			assert.ErrorIs(t, err, ErrIndexOutOfRange)
		}
		assert.Len(t, sess.Recipes, 1)
		assert.Zero(t, store.saves, "a rejected removal must not persist anything")
		assert.Empty(t, proc.calls)
	})

	t.Run("removes by 1-based position and re-consolidates", func(t *testing.T) {
		proc := &stubProcessor{}
		agg := newTestAggregator(proc, &memStore{})
		sess := sessionWith([]models.Recipe{
			{Title: "A", RawIngredients: []string{"a"}, Scale: 1.0},
			{Title: "B", RawIngredients: []string{"b"}, Scale: 1.0},
		}, []models.RawIngredient{{Text: "coffee", SourceLabel: models.SourceManual}})

		require.NoError(t, agg.RemoveRecipe(context.Background(), sess, 1))
		require.Len(t, sess.Recipes, 1)
		assert.Equal(t, "B", sess.Recipes[0].Title)
		require.Len(t, proc.calls, 1)
	})

	t.Run("removing the last source clears without a processor call", func(t *testing.T) {
		proc := &stubProcessor{}
		store := &memStore{}
		agg := newTestAggregator(proc, store)
		sess := sessionWith([]models.Recipe{{Title: "Only", RawIngredients: []string{"x"}, Scale: 1.0}}, nil)
		sess.ProcessedIngredients = []models.ProcessedIngredient{{Name: "x"}}

		require.NoError(t, agg.RemoveRecipe(context.Background(), sess, 1))
		assert.Empty(t, sess.Recipes)
		assert.Empty(t, sess.ProcessedIngredients)
		assert.Empty(t, proc.calls)
		assert.Equal(t, 1, store.saves)
	})
}

func TestRemoveItem(t *testing.T) {
	t.Run("indexes the manual view, not raw positions", func(t *testing.T) {
		proc := &stubProcessor{}
		agg := newTestAggregator(proc, &memStore{})
		sess := sessionWith(nil, []models.RawIngredient{
			{Text: "500g rice", SourceLabel: models.SourceStaple},
			{Text: "coffee", SourceLabel: models.SourceManual},
			{Text: "batteries", SourceLabel: models.SourceManual},
		})

		require.NoError(t, agg.RemoveItem(context.Background(), sess, 1))

		// The staple entry is untouched; "coffee" is gone.
		require.Len(t, sess.ExtraItems, 2)
		assert.Equal(t, "500g rice", sess.ExtraItems[0].Text)
		assert.Equal(t, "batteries", sess.ExtraItems[1].Text)
	})

	t.Run("out of range over the filtered view", func(t *testing.T) {
		proc := &stubProcessor{}
		store := &memStore{}
		agg := newTestAggregator(proc, store)
		sess := sessionWith(nil, []models.RawIngredient{
			{Text: "500g rice", SourceLabel: models.SourceStaple},
			{Text: "coffee", SourceLabel: models.SourceManual},
		})

		err := agg.RemoveItem(context.Background(), sess, 2)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Len(t, sess.ExtraItems, 2)
		assert.Zero(t, store.saves)
	})

	t.Run("removing the only item of an otherwise empty session clears locally", func(t *testing.T) {
		proc := &stubProcessor{}
		agg := newTestAggregator(proc, &memStore{})
		sess := sessionWith(nil, []models.RawIngredient{{Text: "coffee", SourceLabel: models.SourceManual}})
		sess.ProcessedIngredients = []models.ProcessedIngredient{{Name: "coffee"}}

		require.NoError(t, agg.RemoveItem(context.Background(), sess, 1))
		assert.Empty(t, sess.ProcessedIngredients)
		assert.Empty(t, proc.calls)
	})
}

func TestSyncStaples(t *testing.T) {
	proc := &stubProcessor{}
	agg := newTestAggregator(proc, &memStore{})
	sess := sessionWith(nil, []models.RawIngredient{
		{Text: "500g rice", SourceLabel: models.SourceStaple},
		{Text: "coffee", SourceLabel: models.SourceManual},
	})

	staples := []models.Staple{{Name: "olive oil"}, {Name: "salt", Quantity: "1 box"}}
	require.NoError(t, agg.SyncStaples(context.Background(), sess, staples))

	require.Len(t, sess.ExtraItems, 3)
	assert.Equal(t, "coffee", sess.ExtraItems[0].Text, "manual items keep their order")
	assert.Equal(t, "olive oil", sess.ExtraItems[1].Text)
	assert.Equal(t, "1 box salt", sess.ExtraItems[2].Text)
	require.Len(t, proc.calls, 1)
}

func TestScaleMarkerFormat(t *testing.T) {
	assert.Equal(t, "[x2] ", scaleMarker(2.0))
	assert.Equal(t, "[x2.5] ", scaleMarker(2.5))
	assert.Equal(t, "[x0.5] ", scaleMarker(0.5))
}
