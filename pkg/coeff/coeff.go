package coeff

import (
	"errors"
	"math"
)

var (
	// ErrEmptyTerm is returned by [Table.Append] when a row has an empty
	// term name. Every coefficient must name its predictor.
	ErrEmptyTerm = errors.New("term must not be empty")

	// ErrDuplicateTerm is returned by [Table.Append] when a row duplicates
	// a term within the same (model, submodel) pair. Terms must be unique
	// per model.
	ErrDuplicateTerm = errors.New("duplicate term within model")

	// ErrNoInterval is returned by [Table.Validate] when a non-placeholder
	// row has neither a standard error nor explicit bounds. One of the two
	// must be present for a confidence interval to exist.
	ErrNoInterval = errors.New("row needs std error or explicit bounds")
)

// NA is the sentinel for an absent numeric value. Placeholder rows inserted
// by the alignment grid carry NA estimates and bounds; optional fields on
// regular rows default to NA. Use [IsNA] to test, never ==.
var NA = math.NaN()

// IsNA reports whether v is the absent-value sentinel.
func IsNA(v float64) bool { return math.IsNaN(v) }

// Row is a single coefficient: one predictor's estimate in one model.
//
// Estimate is required for regular rows. Exactly one of StdErr or the
// (Low, High) pair must be present; the other fields stay NA. Model and
// Submodel are optional grouping labels — an empty Model means the table
// describes a single implicit model.
//
// The zero value is not usable; use NewRow or set Term and Estimate
// explicitly with the optional fields initialized via NA.
type Row struct {
	Term     string  // Predictor name, unique within a (model, submodel) pair
	Estimate float64 // Point estimate (NA only on placeholder rows)
	StdErr   float64 // Standard error (NA when bounds are supplied)
	Low      float64 // Lower confidence bound (NA until resolved)
	High     float64 // Upper confidence bound (NA until resolved)
	Model    string  // Optional model label
	Submodel string  // Optional nested grouping label
}

// NewRow creates a row with the given term and estimate and all optional
// fields absent.
func NewRow(term string, estimate float64) Row {
	return Row{
		Term:     term,
		Estimate: estimate,
		StdErr:   NA,
		Low:      NA,
		High:     NA,
	}
}

// WithStdErr returns a copy of the row with the standard error set.
func (r Row) WithStdErr(se float64) Row {
	r.StdErr = se
	return r
}

// WithBounds returns a copy of the row with explicit interval bounds set.
func (r Row) WithBounds(low, high float64) Row {
	r.Low = low
	r.High = high
	return r
}

// WithModel returns a copy of the row assigned to the named model.
func (r Row) WithModel(model string) Row {
	r.Model = model
	return r
}

// HasStdErr reports whether the row carries a standard error.
func (r Row) HasStdErr() bool { return !IsNA(r.StdErr) }

// HasBounds reports whether the row carries explicit interval bounds.
func (r Row) HasBounds() bool { return !IsNA(r.Low) && !IsNA(r.High) }

// IsPlaceholder reports whether the row is an alignment-grid placeholder
// (absent estimate). Placeholders exist only so that every facet receives
// one row per model; they render as empty marks.
func (r Row) IsPlaceholder() bool { return IsNA(r.Estimate) }

// Placeholder creates a grid placeholder row for the given term and model.
// Estimate and bounds are NA; the submodel label is carried through so
// facet grouping survives grid completion.
func Placeholder(term, model, submodel string) Row {
	return Row{
		Term:     term,
		Estimate: NA,
		StdErr:   NA,
		Low:      NA,
		High:     NA,
		Model:    model,
		Submodel: submodel,
	}
}

// groupKey identifies the uniqueness scope for terms.
type groupKey struct {
	model    string
	submodel string
}
