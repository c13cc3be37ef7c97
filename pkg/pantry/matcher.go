package pantry

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/entrhq/grocer/pkg/models"
)

// Matcher resolves the confirmation state of a consolidated ingredient list:
// ingredients whose name exactly matches a pantry staple (case-insensitive)
// are confirmed as stocked without prompting, the rest are asked about one
// by one, and newly confirmed items can be batch-added to the pantry.
//
// Prompts read from an injected reader and write to an injected writer so
// the whole flow is drivable from tests.
type Matcher struct {
	pantry *Manager
	in     *bufio.Scanner
	out    io.Writer
}

// Result summarizes one matcher run.
type Result struct {
	// AutoConfirmed counts ingredients resolved by exact pantry match,
	// with zero prompts issued.
	AutoConfirmed int

	// Prompted counts ingredients resolved interactively.
	Prompted int

	// AddedToPantry holds the names opted into the pantry set afterwards.
	AddedToPantry []string
}

// NewMatcher creates a matcher over the given pantry, reading responses from
// in and writing prompts to out.
func NewMatcher(pantry *Manager, in io.Reader, out io.Writer) *Matcher {
	return &Matcher{
		pantry: pantry,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run resolves every unconfirmed ingredient in place. Ingredients already
// confirmed by a prior invocation are never re-prompted. Transition order:
// pantry auto-match first, then interactive y/n for the remainder, then the
// opt-in batch addition of interactively confirmed items.
func (m *Matcher) Run(ingredients []models.ProcessedIngredient) (Result, error) {
	var res Result

	stocked, err := m.pantry.Names()
	if err != nil {
		return res, err
	}

	var toPrompt []*models.ProcessedIngredient
	for i := range ingredients {
		ing := &ingredients[i]
		if ing.IsConfirmed() {
			continue
		}
		if stocked[strings.ToLower(ing.Name)] {
			ing.Confirm(true)
			res.AutoConfirmed++
			continue
		}
		toPrompt = append(toPrompt, ing)
	}

	if len(toPrompt) == 0 {
		return res, nil
	}

	fmt.Fprintf(m.out, "\nPantry check: %d ingredient(s) to confirm\n\n", len(toPrompt))

	// Interactively confirmed "have" items, candidates for pantry growth.
	var confirmed []*models.ProcessedIngredient
	for _, ing := range toPrompt {
		have, err := m.promptYesNo(fmt.Sprintf("  Do you have %s %s? (y/n) ", ing.Quantity, ing.Name))
		if err != nil {
			return res, err
		}
		ing.Confirm(have)
		res.Prompted++
		if have && !stocked[strings.ToLower(ing.Name)] {
			confirmed = append(confirmed, ing)
		}
	}

	added, err := m.offerPantryAdd(confirmed)
	if err != nil {
		return res, err
	}
	res.AddedToPantry = added
	return res, nil
}

// promptYesNo asks until a recognized affirmative or negative token arrives.
func (m *Matcher) promptYesNo(prompt string) (bool, error) {
	for {
		fmt.Fprint(m.out, prompt)
		line, err := m.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(m.out, "  Please enter y or n")
		}
	}
}

// offerPantryAdd presents the interactively confirmed items as one numbered
// batch for opt-in addition to the pantry set. An empty selection performs
// no mutation.
func (m *Matcher) offerPantryAdd(candidates []*models.ProcessedIngredient) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	fmt.Fprintf(m.out, "\nYou said you have these; add them to your pantry so they are skipped next time?\n")
	for i, ing := range candidates {
		fmt.Fprintf(m.out, "  %d. %s\n", i+1, ing.Name)
	}
	fmt.Fprint(m.out, "Numbers to add (e.g. 1 3), 'all', or Enter for none: ")

	line, err := m.readLine()
	if err != nil {
		return nil, err
	}
	picks, err := parseSelection(line, len(candidates))
	if err != nil {
		fmt.Fprintf(m.out, "  %v; no pantry changes made\n", err)
		return nil, nil
	}

	var added []string
	for _, idx := range picks {
		name := candidates[idx-1].Name
		changed, err := m.pantry.Add(name, "")
		if err != nil {
			return added, err
		}
		if changed {
			added = append(added, name)
		}
	}
	return added, nil
}

func (m *Matcher) readLine() (string, error) {
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", io.ErrUnexpectedEOF
	}
	return m.in.Text(), nil
}

// parseSelection parses a batch selection: empty means none, "all" means
// every candidate, otherwise comma/space-separated 1-based numbers.
func parseSelection(line string, count int) ([]int, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	if strings.EqualFold(line, "all") {
		picks := make([]int, count)
		for i := range picks {
			picks[i] = i + 1
		}
		return picks, nil
	}

	seen := make(map[int]bool)
	var picks []int
	for _, field := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' }) {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("unrecognized selection %q", field)
		}
		if n < 1 || n > count {
			return nil, fmt.Errorf("selection %d out of range", n)
		}
		if !seen[n] {
			seen[n] = true
			picks = append(picks, n)
		}
	}
	return picks, nil
}
