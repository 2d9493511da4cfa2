// Package financing defines the financing directory shown alongside the journey.
package financing

import (
	"slices"
	"strings"
)

type Entry struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Stages      []string `json:"stages" yaml:"stages"`
	Description string   `json:"description" yaml:"description"`
	Amount      string   `json:"amount,omitempty" yaml:"amount"`
	URL         string   `json:"url" yaml:"url"`
}

// Filter narrows the directory. Empty fields match everything.
type Filter struct {
	Type  string `form:"type"`
	Stage string `form:"stage"`
	Query string `form:"q"`
}

// Apply returns the entries matching every non-empty criterion, in directory
// order. Type and stage compare case-insensitively; Query is a case-insensitive
// substring of the name or description.
func (f Filter) Apply(entries []Entry) []Entry {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if f.Type != "" && !strings.EqualFold(entry.Type, f.Type) {
			continue
		}
		if f.Stage != "" && !slices.ContainsFunc(entry.Stages, func(s string) bool {
			return strings.EqualFold(s, f.Stage)
		}) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(entry.Name), query) &&
			!strings.Contains(strings.ToLower(entry.Description), query) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
