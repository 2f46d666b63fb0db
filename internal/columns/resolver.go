// Package columns picks the name and competency columns of a score table and
// holds the operator's confirmed choice for the rest of the session.
package columns

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/amishk599/execsum/internal/model"
)

// DefaultNameColumn is preferred as the name column when present.
const DefaultNameColumn = "Candidate Name"

// DefaultCompetencies are the competencies the default template is written for.
var DefaultCompetencies = []string{
	"Leads Inspirationally",
	"Manages and Solves Problems",
	"Plans and Thinks Strategically",
	"Manages Change",
}

// Resolver computes default selections and validates confirmed ones.
type Resolver struct {
	nameColumn string
	expected   []string
}

// NewResolver returns a Resolver preferring nameColumn and the expected
// competency labels, in that order. Empty arguments fall back to the defaults.
func NewResolver(nameColumn string, expected []string) *Resolver {
	if nameColumn == "" {
		nameColumn = DefaultNameColumn
	}
	if len(expected) == 0 {
		expected = DefaultCompetencies
	}
	return &Resolver{
		nameColumn: nameColumn,
		expected:   append([]string(nil), expected...),
	}
}

// Defaults returns the suggested selection for the given columns: the
// preferred name column if present, else the first column, and the expected
// competencies that are present, in expected order.
func (r *Resolver) Defaults(columns []string) model.Selection {
	var sel model.Selection
	if len(columns) == 0 {
		return sel
	}

	sel.NameColumn = columns[0]
	if c, ok := lookup(columns, r.nameColumn); ok {
		sel.NameColumn = c
	}
	for _, want := range r.expected {
		if c, ok := lookup(columns, want); ok {
			sel.Competencies = append(sel.Competencies, c)
		}
	}
	return sel
}

// Confirm validates sel against columns and returns the normalised selection.
// An empty competency set is rejected with model.ErrEmptySelection.
// Duplicate competencies are collapsed, keeping the first occurrence.
func (r *Resolver) Confirm(columns []string, sel model.Selection) (model.Selection, error) {
	if len(sel.Competencies) == 0 {
		return model.Selection{}, &model.InputError{Err: model.ErrEmptySelection}
	}

	name, ok := lookup(columns, sel.NameColumn)
	if !ok {
		return model.Selection{}, &model.InputError{Err: fmt.Errorf("name column %q not found", sel.NameColumn)}
	}

	out := model.Selection{NameColumn: name}
	seen := make(map[string]bool, len(sel.Competencies))
	for _, want := range sel.Competencies {
		c, ok := lookup(columns, want)
		if !ok {
			return model.Selection{}, &model.InputError{Err: fmt.Errorf("competency column %q not found", want)}
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out.Competencies = append(out.Competencies, c)
	}
	return out, nil
}

// lookup finds want among columns. Exact matches win; otherwise names are
// compared after Unicode normalisation and trimming.
func lookup(columns []string, want string) (string, bool) {
	for _, c := range columns {
		if c == want {
			return c, true
		}
	}
	key := normalize(want)
	for _, c := range columns {
		if normalize(c) == key {
			return c, true
		}
	}
	return "", false
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
