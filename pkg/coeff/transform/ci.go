package transform

import (
	"math"

	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/errors"
)

// DefaultAlpha is the default two-sided significance level, giving the
// conventional 95% confidence interval.
const DefaultAlpha = 0.05

// CriticalValue returns the two-sided standard-normal critical value for
// significance level alpha: z such that P(|Z| <= z) = 1 - alpha.
// For alpha = 0.05 this is approximately 1.95996.
//
// The normal critical value is a documented approximation — small-sample
// t intervals are out of scope, matching the convention of coefficient
// plots where tables carry asymptotic standard errors.
func CriticalValue(alpha float64) (float64, error) {
	if !(alpha > 0 && alpha < 1) {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "alpha must be in (0,1), got %v", alpha)
	}
	// z(1 - alpha/2) = sqrt(2) * erfinv(1 - alpha)
	return math.Sqrt2 * math.Erfinv(1-alpha), nil
}

// ResolveCI fills in the Low/High bounds of every row.
//
// Rows carrying explicit bounds pass through unchanged. Rows carrying a
// standard error get normal-approximation bounds:
//
//	low  = estimate - z(1-alpha/2) * stderr
//	high = estimate + z(1-alpha/2) * stderr
//
// Placeholder rows pass through untouched. The input table is not
// modified. Returns an INVALID_PARAMETER error when alpha is outside
// (0, 1).
func ResolveCI(t *coeff.Table, alpha float64) (*coeff.Table, error) {
	z, err := CriticalValue(alpha)
	if err != nil {
		return nil, err
	}

	out := &coeff.Table{}
	for _, r := range t.Rows() {
		switch {
		case r.IsPlaceholder() || r.HasBounds():
			// pass through
		case r.HasStdErr():
			r.Low = r.Estimate - z*r.StdErr
			r.High = r.Estimate + z*r.StdErr
		default:
			return nil, errors.Wrap(errors.ErrCodeInputFormat, coeff.ErrNoInterval, "term %q", r.Term)
		}
		if err := out.Append(r); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "rebuild table")
		}
	}
	return out, nil
}
