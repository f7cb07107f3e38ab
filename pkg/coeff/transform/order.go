package transform

import (
	"slices"

	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/errors"
)

// Ordering holds the finalized display order for a table.
//
// Terms are listed in canonical sequence: index 0 is the first-listed
// predictor, which renders at the bottom of the chart (base predictors
// sit near the axis origin). Models are listed in dodge/facet order.
type Ordering struct {
	Terms  []string
	Models []string

	termIndex  map[string]int
	modelIndex map[string]int
}

// TermIndex returns the canonical position of a term, or -1 if absent.
func (o Ordering) TermIndex(term string) int {
	if i, ok := o.termIndex[term]; ok {
		return i
	}
	return -1
}

// ModelIndex returns the canonical position of a model, or -1 if absent.
func (o Ordering) ModelIndex(model string) int {
	if i, ok := o.modelIndex[model]; ok {
		return i
	}
	return -1
}

// Order establishes the display order for terms and models.
//
// With nil term/model arguments, first-occurrence order from the table is
// preserved. Explicit orders reindex the table accordingly; the sort is
// stable, so rows equal under the ordering keys keep their relative input
// positions.
//
// Returns an AMBIGUOUS_ORDER error when an explicit order omits a term or
// model present in the data. Entries in the explicit order that do not
// appear in the data are ignored.
func Order(t *coeff.Table, terms, models []string) (*coeff.Table, Ordering, error) {
	ord := Ordering{}

	var err error
	if ord.Terms, err = resolveOrder(t.Terms(), terms, "term"); err != nil {
		return nil, Ordering{}, err
	}
	if ord.Models, err = resolveOrder(t.Models(), models, "model"); err != nil {
		return nil, Ordering{}, err
	}

	ord.termIndex = indexOf(ord.Terms)
	ord.modelIndex = indexOf(ord.Models)

	// Stable reindex: primary key term position, secondary key model
	// position, ties keep input order.
	perm := make([]int, t.Len())
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		ra, rb := t.Row(a), t.Row(b)
		if d := ord.termIndex[ra.Term] - ord.termIndex[rb.Term]; d != 0 {
			return d
		}
		return ord.modelIndex[ra.Model] - ord.modelIndex[rb.Model]
	})

	return t.Reordered(perm), ord, nil
}

// resolveOrder reconciles the observed label sequence with an explicit
// caller order. A nil explicit order keeps first-occurrence order.
func resolveOrder(observed, explicit []string, kind string) ([]string, error) {
	if explicit == nil {
		return observed, nil
	}

	present := make(map[string]bool, len(observed))
	for _, v := range observed {
		present[v] = true
	}

	out := make([]string, 0, len(observed))
	covered := make(map[string]bool, len(explicit))
	for _, v := range explicit {
		if !present[v] {
			continue // ordering may mention labels absent from this table
		}
		if covered[v] {
			continue
		}
		covered[v] = true
		out = append(out, v)
	}

	for _, v := range observed {
		if !covered[v] {
			return nil, errors.New(errors.ErrCodeAmbiguousOrder,
				"explicit %s order omits %q present in the data", kind, v)
		}
	}
	return out, nil
}

func indexOf(labels []string) map[string]int {
	idx := make(map[string]int, len(labels))
	for i, v := range labels {
		idx[v] = i
	}
	return idx
}
