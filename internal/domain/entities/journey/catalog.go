package journey

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Catalog is the immutable static journey. Callers only ever receive copies of
// its steps.
type Catalog struct {
	steps   []Step
	aliases map[int]map[string]string
}

// NewCatalog assigns substep keys, then validates the content: step ids run
// 1..N in order, sibling titles and keys are unique, and every alias points at
// an existing title of its step.
func NewCatalog(steps []Step, aliases map[int]map[string]string) (*Catalog, error) {
	steps = CloneSteps(steps)
	for i := range steps {
		if steps[i].ID != i+1 {
			return nil, fmt.Errorf("step at position %d has id %d, expected %d", i, steps[i].ID, i+1)
		}
		if strings.TrimSpace(steps[i].Title) == "" {
			return nil, fmt.Errorf("step %d has an empty title", steps[i].ID)
		}

		titles := make(map[string]bool, len(steps[i].SubSteps))
		keys := make(map[string]string, len(steps[i].SubSteps))
		for j := range steps[i].SubSteps {
			sub := &steps[i].SubSteps[j]
			if strings.TrimSpace(sub.Title) == "" {
				return nil, fmt.Errorf("step %d substep %d has an empty title", steps[i].ID, j)
			}
			if titles[sub.Title] {
				return nil, fmt.Errorf("step %d has duplicate substep title %q", steps[i].ID, sub.Title)
			}
			titles[sub.Title] = true

			sub.Key = Slug(sub.Title)
			if other, dup := keys[sub.Key]; dup {
				return nil, fmt.Errorf("step %d substeps %q and %q share key %q", steps[i].ID, other, sub.Title, sub.Key)
			}
			keys[sub.Key] = sub.Title
		}
	}

	normalized := make(map[int]map[string]string, len(aliases))
	for stepID, table := range aliases {
		step, ok := FindStep(steps, stepID)
		if !ok {
			return nil, fmt.Errorf("aliases declared for unknown step %d", stepID)
		}
		normalized[stepID] = make(map[string]string, len(table))
		for alias, canonical := range table {
			if _, ok := step.FindSubStep(canonical); !ok {
				return nil, fmt.Errorf("alias %q of step %d targets unknown substep %q", alias, stepID, canonical)
			}
			normalized[stepID][alias] = canonical
		}
	}

	return &Catalog{steps: steps, aliases: normalized}, nil
}

// Steps returns a copy of the static steps with their default completion flags.
func (c *Catalog) Steps() []Step {
	return CloneSteps(c.steps)
}

// Step returns the static step with the given id
func (c *Catalog) Step(id int) (Step, error) {
	step, ok := FindStep(c.steps, id)
	if !ok {
		return Step{}, fmt.Errorf("step %d: %w", id, ErrStepNotFound)
	}
	return CloneSteps([]Step{step})[0], nil
}

// CanonicalTitle maps a legacy or variant substep identifier to its canonical
// title through the alias table. Unknown identifiers are returned unchanged.
func (c *Catalog) CanonicalTitle(stepID int, raw string) string {
	if canonical, ok := c.aliases[stepID][raw]; ok {
		return canonical
	}
	return raw
}

// ResolveSubStep finds a substep of a step from a route segment: alias table
// first, then exact title, then the synthetic key.
func (c *Catalog) ResolveSubStep(stepID int, raw string) (SubStep, error) {
	step, ok := FindStep(c.steps, stepID)
	if !ok {
		return SubStep{}, fmt.Errorf("step %d: %w", stepID, ErrStepNotFound)
	}

	if sub, ok := step.FindSubStep(c.CanonicalTitle(stepID, raw)); ok {
		return sub, nil
	}

	key := Slug(raw)
	for _, sub := range step.SubSteps {
		if sub.Key == key {
			return sub, nil
		}
	}

	return SubStep{}, fmt.Errorf("step %d substep %q: %w", stepID, raw, ErrSubStepNotFound)
}

// Slug turns a title into a lowercase ASCII identifier: accents are stripped and
// every run of other characters collapses to a single dash.
func Slug(title string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, title)
	if err != nil {
		stripped = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
