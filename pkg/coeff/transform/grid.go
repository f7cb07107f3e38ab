package transform

import (
	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/errors"
)

// BuildGrid completes a multi-model table into a full term × model grid.
//
// Every (term, model) pair absent from the input is filled with an
// explicit placeholder row (NA estimate and bounds) so that faceted
// rendering produces identically shaped sub-panels. Placeholders inherit
// the submodel label of their model's existing rows, keeping facet
// grouping intact.
//
// The output iterates terms in the given ordering, and models within each
// term, so the grid is laid out facet by facet. Row count is always
// len(ord.Terms) * len(ord.Models).
//
// The input table must already be ordered by [Order]; BuildGrid does not
// reorder rows, it only interleaves placeholders at the correct grid
// positions.
func BuildGrid(t *coeff.Table, ord Ordering) (*coeff.Table, error) {
	// Two-level index: term → model → row.
	cells := make(map[string]map[string]coeff.Row, len(ord.Terms))
	for _, r := range t.Rows() {
		byModel := cells[r.Term]
		if byModel == nil {
			byModel = make(map[string]coeff.Row, len(ord.Models))
			cells[r.Term] = byModel
		}
		byModel[r.Model] = r
	}

	// Submodel labels travel with the model across the whole grid.
	submodels := make(map[string]string, len(ord.Models))
	for _, m := range ord.Models {
		submodels[m] = t.SubmodelOf(m)
	}

	out := &coeff.Table{}
	for _, term := range ord.Terms {
		for _, model := range ord.Models {
			row, ok := cells[term][model]
			if !ok {
				row = coeff.Placeholder(term, model, submodels[model])
			}
			if err := out.Append(row); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "grid cell (%s, %s)", term, model)
			}
		}
	}
	return out, nil
}
