package columns

import (
	"fmt"

	"github.com/amishk599/execsum/internal/model"
	"github.com/amishk599/execsum/internal/table"
)

// State is the session: the loaded table and the confirmed selection.
// Methods return a new State; the receiver is never modified.
type State struct {
	Source    string
	Table     *table.Table
	Selection model.Selection
	Confirmed bool
}

// NewState starts a session for a freshly loaded table. Any previous
// selection is discarded.
func NewState(source string, t *table.Table) State {
	return State{Source: source, Table: t}
}

// Loaded reports whether a table is present.
func (s State) Loaded() bool {
	return s.Table != nil
}

// Defaults returns the resolver's suggestion for the loaded table.
func (s State) Defaults(r *Resolver) model.Selection {
	if !s.Loaded() {
		return model.Selection{}
	}
	return r.Defaults(s.Table.Columns())
}

// Confirm validates sel and returns a State holding it. On error the
// returned State is s unchanged.
func (s State) Confirm(r *Resolver, sel model.Selection) (State, error) {
	if !s.Loaded() {
		return s, &model.InputError{Err: fmt.Errorf("no table loaded")}
	}
	confirmed, err := r.Confirm(s.Table.Columns(), sel)
	if err != nil {
		return s, err
	}
	next := s
	next.Selection = confirmed
	next.Confirmed = true
	return next, nil
}

// Clear drops the table and selection.
func (s State) Clear() State {
	return State{}
}

// Ready returns nil when the session can be handed to the orchestrator.
func (s State) Ready() error {
	if !s.Loaded() {
		return &model.InputError{Err: fmt.Errorf("no table loaded")}
	}
	if !s.Confirmed {
		return &model.InputError{Source: s.Source, Err: fmt.Errorf("column selection not confirmed")}
	}
	if len(s.Selection.Competencies) == 0 {
		return &model.InputError{Source: s.Source, Err: model.ErrEmptySelection}
	}
	return nil
}
