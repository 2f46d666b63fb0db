// Package prompt renders the instruction template with one candidate's scores.
package prompt

import (
	"fmt"
	"strings"

	"github.com/amishk599/execsum/internal/model"
)

// Composer renders prompts from a validated Template. It holds no state
// besides the template, so equal candidates always compose to equal text.
type Composer struct {
	tmpl *Template
}

// NewComposer returns a Composer for t.
func NewComposer(t *Template) *Composer {
	return &Composer{tmpl: t}
}

// Template returns the template the composer renders.
func (c *Composer) Template() *Template {
	return c.tmpl
}

// Compose returns the full prompt for candidate. Scores are passed through as given.
func (c *Composer) Compose(candidate model.Candidate) (string, error) {
	return c.tmpl.render(candidate)
}

// Block formats the candidate data block:
//
//	Candidate Name: A
//	Competencies:
//	- Leads Inspirationally: 2
func Block(c model.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate Name: %s\nCompetencies:", c.Name)
	for _, s := range c.Scores {
		fmt.Fprintf(&b, "\n- %s: %s", s.Label, s.Value)
	}
	return b.String()
}
