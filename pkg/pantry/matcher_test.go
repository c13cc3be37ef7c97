package pantry

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/grocer/pkg/models"
)

func newTestMatcher(t *testing.T, input string, staples ...string) (*Matcher, *Manager, *bytes.Buffer) {
	t.Helper()
	m := NewManager(t.TempDir())
	for _, name := range staples {
		_, err := m.Add(name, "")
		require.NoError(t, err)
	}
	var out bytes.Buffer
	return NewMatcher(m, strings.NewReader(input), &out), m, &out
}

func ingredients(names ...string) []models.ProcessedIngredient {
	out := make([]models.ProcessedIngredient, 0, len(names))
	for _, n := range names {
		out = append(out, models.ProcessedIngredient{Name: n, Quantity: "1"})
	}
	return out
}

func TestMatcherAutoConfirm(t *testing.T) {
	matcher, _, out := newTestMatcher(t, "", "olive oil")
	ings := ingredients("Olive Oil")

	res, err := matcher.Run(ings)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AutoConfirmed)
	assert.Equal(t, 0, res.Prompted)
	assert.True(t, ings[0].Have())
	assert.Empty(t, out.String(), "exact pantry matches must not prompt")
}

func TestMatcherPrompts(t *testing.T) {
	t.Run("records yes and no answers", func(t *testing.T) {
		matcher, _, _ := newTestMatcher(t, "y\nn\n\n")
		ings := ingredients("flour", "eggs")

		res, err := matcher.Run(ings)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Prompted)
		assert.True(t, ings[0].Have())
		assert.True(t, ings[1].IsConfirmed())
		assert.False(t, ings[1].Have())
	})

	t.Run("re-asks on unrecognized input", func(t *testing.T) {
		matcher, _, out := newTestMatcher(t, "maybe\nyes\n\n")
		ings := ingredients("flour")

		res, err := matcher.Run(ings)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Prompted)
		assert.True(t, ings[0].Have())
		assert.Contains(t, out.String(), "Please enter y or n")
	})

	t.Run("skips previously confirmed ingredients", func(t *testing.T) {
		matcher, _, out := newTestMatcher(t, "")
		ings := ingredients("flour")
		ings[0].Confirm(false)

		res, err := matcher.Run(ings)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Prompted)
		assert.Empty(t, out.String())
	})

	t.Run("exhausted input surfaces an error", func(t *testing.T) {
		matcher, _, _ := newTestMatcher(t, "")
		_, err := matcher.Run(ingredients("flour"))
		assert.Error(t, err)
	})
}

func TestMatcherPantryAdd(t *testing.T) {
	t.Run("adds the selected numbers", func(t *testing.T) {
		matcher, mgr, _ := newTestMatcher(t, "y\ny\n1\n")
		ings := ingredients("flour", "eggs")

		res, err := matcher.Run(ings)
		require.NoError(t, err)
		assert.Equal(t, []string{"flour"}, res.AddedToPantry)

		names, err := mgr.Names()
		require.NoError(t, err)
		assert.True(t, names["flour"])
		assert.False(t, names["eggs"])
	})

	t.Run("all selects every candidate", func(t *testing.T) {
		matcher, mgr, _ := newTestMatcher(t, "y\ny\nall\n")
		res, err := matcher.Run(ingredients("flour", "eggs"))
		require.NoError(t, err)
		assert.Equal(t, []string{"flour", "eggs"}, res.AddedToPantry)

		names, err := mgr.Names()
		require.NoError(t, err)
		assert.True(t, names["flour"] && names["eggs"])
	})

	t.Run("empty selection adds nothing", func(t *testing.T) {
		matcher, mgr, _ := newTestMatcher(t, "y\n\n")
		res, err := matcher.Run(ingredients("flour"))
		require.NoError(t, err)
		assert.Empty(t, res.AddedToPantry)

		staples, err := mgr.List()
		require.NoError(t, err)
		assert.Empty(t, staples)
	})

	t.Run("declined ingredients are never offered", func(t *testing.T) {
		matcher, _, out := newTestMatcher(t, "n\n")
		res, err := matcher.Run(ingredients("flour"))
		require.NoError(t, err)
		assert.Empty(t, res.AddedToPantry)
		assert.NotContains(t, out.String(), "add them to your pantry")
	})

	t.Run("bad selection makes no pantry changes", func(t *testing.T) {
		matcher, mgr, out := newTestMatcher(t, "y\n7\n")
		res, err := matcher.Run(ingredients("flour"))
		require.NoError(t, err)
		assert.Empty(t, res.AddedToPantry)
		assert.Contains(t, out.String(), "no pantry changes made")

		staples, err := mgr.List()
		require.NoError(t, err)
		assert.Empty(t, staples)
	})
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		count   int
		want    []int
		wantErr bool
	}{
		{name: "empty", line: "", count: 3, want: nil},
		{name: "whitespace only", line: "   ", count: 3, want: nil},
		{name: "all", line: "all", count: 3, want: []int{1, 2, 3}},
		{name: "all uppercase", line: "ALL", count: 2, want: []int{1, 2}},
		{name: "spaces", line: "1 3", count: 3, want: []int{1, 3}},
		{name: "commas", line: "2,3", count: 3, want: []int{2, 3}},
		{name: "duplicates collapse", line: "1 1 2", count: 3, want: []int{1, 2}},
		{name: "zero is out of range", line: "0", count: 3, wantErr: true},
		{name: "beyond count", line: "4", count: 3, wantErr: true},
		{name: "not a number", line: "one", count: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.line, tt.count)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
