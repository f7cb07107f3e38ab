package transform

import (
	"strings"

	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/errors"
)

// Relabel renames terms for display using the old → new mapping, keeping
// row order intact. Terms absent from the mapping pass through unchanged.
//
// Returns an UNKNOWN_TERM error when the mapping names a term not present
// in the table, so typos surface instead of silently doing nothing.
func Relabel(t *coeff.Table, labels map[string]string) (*coeff.Table, error) {
	present := make(map[string]bool)
	for _, term := range t.Terms() {
		present[term] = true
	}
	for old := range labels {
		if !present[old] {
			return nil, errors.New(errors.ErrCodeUnknownTerm, "relabel: term %q not in table", old)
		}
	}

	out := &coeff.Table{}
	for _, r := range t.Rows() {
		if repl, ok := labels[r.Term]; ok {
			r.Term = repl
		}
		if err := out.Append(r); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "relabel %q", r.Term)
		}
	}
	return out, nil
}

// DropIntercept removes intercept rows from the table. A term is treated
// as an intercept when its name, lowercased and stripped of surrounding
// parentheses, equals "intercept" — covering "(Intercept)", "Intercept",
// and "intercept" as emitted by common tidiers.
func DropIntercept(t *coeff.Table) *coeff.Table {
	out := &coeff.Table{}
	for _, r := range t.Rows() {
		if IsIntercept(r.Term) {
			continue
		}
		// Rows come from a valid table and dropping cannot introduce
		// duplicates.
		_ = out.Append(r)
	}
	return out
}

// IsIntercept reports whether a term name denotes a regression intercept.
func IsIntercept(term string) bool {
	s := strings.TrimSpace(term)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	return strings.EqualFold(s, "intercept")
}
