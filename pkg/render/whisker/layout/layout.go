// Package layout computes chart geometry for dot-and-whisker plots.
//
// All coordinates are in data units: x is the estimate axis, y counts
// term rows from the bottom of the chart (the first-listed predictor sits
// at y = 0, so reading top-to-bottom gives the reverse of input order).
// Scaling to pixels is the renderer's job.
package layout

import (
	"math"

	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/coeff/transform"
)

// Mark is one dot-and-whisker glyph: a point estimate with its interval.
type Mark struct {
	Term  string
	Model string

	X    float64 // Point estimate
	Low  float64 // Whisker start
	High float64 // Whisker end
	Y    float64 // Vertical position after dodging

	TermRow     int  // Canonical term index (0 = bottom row)
	ModelRank   int  // Model's dodge rank (0-based)
	Facet       int  // Facet index in small-multiple mode, else 0
	Placeholder bool // Empty grid cell; renders as no mark
}

// Layout is the complete geometry handed to a renderer.
type Layout struct {
	Marks    []Mark
	Brackets []Bracket

	Terms  []string // Canonical term order (index 0 renders at the bottom)
	Models []string // Dodge/facet order

	Faceted bool // Small-multiple mode: one panel per term

	// XMin and XMax bound the estimate axis over all whiskers, with the
	// zero reference line always inside the range.
	XMin, XMax float64
}

// Options configures geometry computation.
type Options struct {
	// Dodge is the vertical spacing between models sharing a row, in row
	// units. Zero selects a k-dependent default that keeps whiskers of
	// adjacent models from touching.
	Dodge float64

	// Faceted lays out one panel per term (small-multiple mode) instead
	// of dodging models within shared rows.
	Faceted bool
}

// Build computes mark geometry for an ordered, CI-resolved table.
//
// In the default mode, models sharing a term row are dodged vertically
// around the row center. In faceted mode, each term becomes its own
// panel and models occupy one row each within the panel.
//
// Build is deterministic: identical tables and options produce identical
// geometry across calls.
func Build(t *coeff.Table, ord transform.Ordering, opts Options) Layout {
	k := len(ord.Models)
	offsets := DodgeOffsets(k, opts.Dodge)

	l := Layout{
		Terms:   ord.Terms,
		Models:  ord.Models,
		Faceted: opts.Faceted,
		XMin:    0,
		XMax:    0,
	}

	for _, r := range t.Rows() {
		row := ord.TermIndex(r.Term)
		rank := ord.ModelIndex(r.Model)

		m := Mark{
			Term:        r.Term,
			Model:       r.Model,
			X:           r.Estimate,
			Low:         r.Low,
			High:        r.High,
			TermRow:     row,
			ModelRank:   rank,
			Placeholder: r.IsPlaceholder(),
		}

		if opts.Faceted {
			// One panel per term; models stack bottom-up inside it.
			m.Facet = row
			m.Y = float64(k - 1 - rank)
		} else {
			m.Y = float64(row) + offsets[rank]
		}

		if !m.Placeholder {
			l.XMin = math.Min(l.XMin, m.Low)
			l.XMax = math.Max(l.XMax, m.High)
		}
		l.Marks = append(l.Marks, m)
	}

	return l
}

// RowCount returns the number of term rows (panels in faceted mode).
func (l Layout) RowCount() int { return len(l.Terms) }
