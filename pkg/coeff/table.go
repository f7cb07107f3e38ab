// Package coeff defines the coefficient table: the canonical tidy layout
// every input is normalized into and every transform operates on.
//
// A Table is an ordered sequence of [Row] values. Insertion order is
// display order unless an explicit ordering is applied later, so the
// builders preserve it everywhere: Terms and Models report labels in
// first-occurrence order, and Clone keeps row order byte-for-byte.
//
// Tables are ephemeral values built once per plotting call. They carry no
// shared mutable state, so concurrent use of distinct tables needs no
// locking; a single Table must not be mutated while read.
package coeff

import "slices"

// Table is an ordered collection of coefficient rows.
//
// The zero value is an empty table ready for use. Table is not safe for
// concurrent mutation without external synchronization.
type Table struct {
	rows []Row
	seen map[groupKey]map[string]bool // uniqueness index: (model,submodel) -> term set
}

// NewTable creates a table from the given rows.
// It returns an error if a row has an empty term or duplicates a term
// within one (model, submodel) pair.
func NewTable(rows ...Row) (*Table, error) {
	t := &Table{}
	for _, r := range rows {
		if err := t.Append(r); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustTable is like NewTable but panics on error. Intended for tests and
// package examples where the input is known to be well formed.
func MustTable(rows ...Row) *Table {
	t, err := NewTable(rows...)
	if err != nil {
		panic(err)
	}
	return t
}

// Append adds a row at the end of the table, preserving insertion order.
// Returns ErrEmptyTerm or ErrDuplicateTerm on invalid rows.
func (t *Table) Append(r Row) error {
	if r.Term == "" {
		return ErrEmptyTerm
	}
	if t.seen == nil {
		t.seen = make(map[groupKey]map[string]bool)
	}
	key := groupKey{model: r.Model, submodel: r.Submodel}
	terms := t.seen[key]
	if terms == nil {
		terms = make(map[string]bool)
		t.seen[key] = terms
	}
	if terms[r.Term] {
		return ErrDuplicateTerm
	}
	terms[r.Term] = true
	t.rows = append(t.rows, r)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the row at index i.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Rows returns a copy of the row slice in table order.
func (t *Table) Rows() []Row {
	return slices.Clone(t.rows)
}

// Terms returns the distinct term names in first-occurrence order.
func (t *Table) Terms() []string {
	var out []string
	seen := make(map[string]bool, len(t.rows))
	for _, r := range t.rows {
		if !seen[r.Term] {
			seen[r.Term] = true
			out = append(out, r.Term)
		}
	}
	return out
}

// Models returns the distinct model labels in first-occurrence order.
// An empty label (single implicit model) is included if any row carries it.
func (t *Table) Models() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range t.rows {
		if !seen[r.Model] {
			seen[r.Model] = true
			out = append(out, r.Model)
		}
	}
	return out
}

// Submodels returns the distinct submodel labels in first-occurrence
// order, skipping the empty label.
func (t *Table) Submodels() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range t.rows {
		if r.Submodel == "" || seen[r.Submodel] {
			continue
		}
		seen[r.Submodel] = true
		out = append(out, r.Submodel)
	}
	return out
}

// ModelCount returns the number of distinct model labels.
func (t *Table) ModelCount() int { return len(t.Models()) }

// HasModels reports whether any row carries a non-empty model label.
func (t *Table) HasModels() bool {
	for _, r := range t.rows {
		if r.Model != "" {
			return true
		}
	}
	return false
}

// SubmodelOf returns the submodel label recorded for the first row of the
// given model, or "" if the model has no rows. Grid completion uses this
// to carry facet grouping onto placeholder rows.
func (t *Table) SubmodelOf(model string) string {
	for _, r := range t.rows {
		if r.Model == model {
			return r.Submodel
		}
	}
	return ""
}

// Validate checks interval completeness: every non-placeholder row must
// carry a standard error or explicit bounds. Returns ErrNoInterval on the
// first violation.
func (t *Table) Validate() error {
	for _, r := range t.rows {
		if r.IsPlaceholder() {
			continue
		}
		if !r.HasStdErr() && !r.HasBounds() {
			return ErrNoInterval
		}
	}
	return nil
}

// Clone returns a deep copy of the table. Rows are values, so a slice
// clone plus a rebuilt index is sufficient.
func (t *Table) Clone() *Table {
	out := &Table{rows: slices.Clone(t.rows)}
	out.seen = make(map[groupKey]map[string]bool, len(t.seen))
	for k, terms := range t.seen {
		cp := make(map[string]bool, len(terms))
		for term := range terms {
			cp[term] = true
		}
		out.seen[k] = cp
	}
	return out
}

// reset replaces the table contents with rows, rebuilding the index.
// Callers must guarantee rows are valid (they come from an existing table).
func (t *Table) reset(rows []Row) {
	t.rows = t.rows[:0]
	t.seen = make(map[groupKey]map[string]bool)
	for _, r := range rows {
		// Rows originate from a validated table; Append cannot fail.
		_ = t.Append(r)
	}
}

// Reordered returns a new table containing rows in the given index order.
// The index slice must be a permutation of [0, Len).
func (t *Table) Reordered(perm []int) *Table {
	rows := make([]Row, 0, len(perm))
	for _, i := range perm {
		rows = append(rows, t.rows[i])
	}
	out := &Table{}
	out.reset(rows)
	return out
}
