// Package tidy normalizes heterogeneous inputs into one coefficient table.
//
// Callers may hand the pipeline an already-tidy table, a single fitted
// model, or an ordered list of fitted models. The three shapes are
// expressed as a sealed [Input] union so the normalizer can switch on the
// variant instead of duck-typing the payload.
//
// Model objects are opaque to this package. Turning a fitted model into
// per-term rows is the job of the [Tidier] collaborator, typically backed
// by whatever statistics layer produced the model.
package tidy

import (
	"strconv"

	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/errors"
)

// Tidier converts a fitted model object into per-coefficient rows.
//
// Implementations must return at least Term and Estimate per row; StdErr
// or explicit bounds may be absent only if the other is present. The
// returned rows need not set Model — the normalizer assigns positional
// labels when none exist.
type Tidier interface {
	Tidy(model any) ([]coeff.Row, error)
}

// TidierFunc adapts a function to the Tidier interface.
type TidierFunc func(model any) ([]coeff.Row, error)

// Tidy calls f.
func (f TidierFunc) Tidy(model any) ([]coeff.Row, error) { return f(model) }

// Input is the sealed union of accepted input shapes. Construct values
// with FromTable, FromModel, or FromModels.
type Input interface {
	isInput()
}

// TableInput wraps an already-tidy coefficient table.
type TableInput struct{ Table *coeff.Table }

// ModelInput wraps a single fitted model object.
type ModelInput struct{ Model any }

// ModelListInput wraps an ordered collection of fitted model objects.
type ModelListInput struct{ Models []any }

func (TableInput) isInput()     {}
func (ModelInput) isInput()     {}
func (ModelListInput) isInput() {}

// FromTable creates an input from an already-tidy table.
func FromTable(t *coeff.Table) Input { return TableInput{Table: t} }

// FromModel creates an input from a single fitted model.
func FromModel(m any) Input { return ModelInput{Model: m} }

// FromModels creates an input from an ordered list of fitted models.
func FromModels(ms ...any) Input { return ModelListInput{Models: ms} }

// Normalize converts any accepted input into a canonical coefficient
// table. The transform is pure: inputs are never mutated.
//
// For model inputs the Tidier collaborator produces the per-term rows.
// When a list of models yields rows without model labels, models are
// named "Model 1", "Model 2", ... by 1-based position.
//
// Normalize returns an INPUT_FORMAT error when a tidied row lacks an
// estimate or term, or when a model input is given without a Tidier.
func Normalize(in Input, td Tidier) (*coeff.Table, error) {
	switch v := in.(type) {
	case TableInput:
		return normalizeTable(v.Table)
	case ModelInput:
		return normalizeModels([]any{v.Model}, td, false)
	case ModelListInput:
		return normalizeModels(v.Models, td, true)
	case nil:
		return nil, errors.New(errors.ErrCodeInputFormat, "input is nil")
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported input type %T", in)
	}
}

func normalizeTable(t *coeff.Table) (*coeff.Table, error) {
	if t == nil {
		return nil, errors.New(errors.ErrCodeInputFormat, "table is nil")
	}
	for i := 0; i < t.Len(); i++ {
		if err := checkRow(t.Row(i)); err != nil {
			return nil, err
		}
	}
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputFormat, err, "incomplete interval data")
	}
	return t.Clone(), nil
}

func normalizeModels(models []any, td Tidier, list bool) (*coeff.Table, error) {
	if td == nil {
		return nil, errors.New(errors.ErrCodeInputFormat, "model input requires a tidier")
	}
	if len(models) == 0 {
		return nil, errors.New(errors.ErrCodeInputFormat, "model list is empty")
	}

	out := &coeff.Table{}
	for i, m := range models {
		rows, err := td.Tidy(m)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInputFormat, err, "tidy model %d", i+1)
		}
		if len(rows) == 0 {
			return nil, errors.New(errors.ErrCodeInputFormat, "model %d tidied to zero rows", i+1)
		}
		label := positionalLabel(rows, list, i)
		for _, r := range rows {
			if err := checkRow(r); err != nil {
				return nil, err
			}
			if label != "" && r.Model == "" {
				r.Model = label
			}
			if err := out.Append(r); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInputFormat, err, "model %d term %q", i+1, r.Term)
			}
		}
	}

	if err := out.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputFormat, err, "incomplete interval data")
	}
	return out, nil
}

// positionalLabel returns the "Model N" label to assign when a model list
// tidies to rows without model labels. Single-model inputs keep the empty
// implicit model.
func positionalLabel(rows []coeff.Row, list bool, i int) string {
	if !list {
		return ""
	}
	for _, r := range rows {
		if r.Model != "" {
			return "" // tidier supplied its own labels
		}
	}
	return modelLabel(i + 1)
}

func modelLabel(n int) string {
	return "Model " + strconv.Itoa(n)
}

func checkRow(r coeff.Row) error {
	if r.Term == "" {
		return errors.New(errors.ErrCodeInputFormat, "row is missing a term")
	}
	if coeff.IsNA(r.Estimate) {
		return errors.New(errors.ErrCodeInputFormat, "term %q is missing an estimate", r.Term)
	}
	return nil
}
