package layout

import (
	"strings"

	"github.com/plotkit/dotwhisker/pkg/errors"
)

// Group defines a labeled set of terms to be spanned by one bracket.
type Group struct {
	Label   string
	Members []string
}

// ParseGroups normalizes the list-of-lists call convention where the
// first element of each list is the group label and the rest are member
// term names.
func ParseGroups(defs [][]string) ([]Group, error) {
	groups := make([]Group, 0, len(defs))
	for i, def := range defs {
		if len(def) < 2 {
			return nil, errors.New(errors.ErrCodeInvalidParameter,
				"group %d needs a label and at least one member", i+1)
		}
		groups = append(groups, Group{Label: def[0], Members: def[1:]})
	}
	return groups, nil
}

// Bracket is the resolved geometry for one group annotation: a vertical
// span alongside the axis with a perpendicular tick at each end and a
// rotated label centered on the span.
type Bracket struct {
	Label string

	// Y1 and Y2 bound the span in row units, Y1 <= Y2. The span runs
	// from the lowest to the highest member row regardless of member
	// input order; gaps between members are covered visually.
	Y1, Y2 float64

	// TickLen is the length of the perpendicular end ticks in x-axis
	// fraction units, carried from the theme.
	TickLen float64
}

// ResolveBrackets computes bracket geometry for the given groups against
// an already-finalized term order. Brackets are a pure annotation layer:
// they never reorder terms.
//
// Member names are matched after whitespace trimming. Returns an
// UNKNOWN_TERM error when a member is absent from the term sequence.
// Overlapping groups are not rejected; they are a caller presentation
// choice and surface only visually.
func ResolveBrackets(groups []Group, terms []string, tickLen float64) ([]Bracket, error) {
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[strings.TrimSpace(term)] = i
	}

	out := make([]Bracket, 0, len(groups))
	for _, g := range groups {
		if len(g.Members) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "group %q has no members", g.Label)
		}

		lo, hi := len(terms), -1
		for _, member := range g.Members {
			pos, ok := index[strings.TrimSpace(member)]
			if !ok {
				return nil, errors.New(errors.ErrCodeUnknownTerm,
					"group %q references unknown term %q", g.Label, member)
			}
			if pos < lo {
				lo = pos
			}
			if pos > hi {
				hi = pos
			}
		}

		out = append(out, Bracket{
			Label:   g.Label,
			Y1:      float64(lo),
			Y2:      float64(hi),
			TickLen: tickLen,
		})
	}
	return out, nil
}
