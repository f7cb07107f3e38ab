// Package pipeline composes the transformation stages into render-ready
// charts.
//
// This package implements the complete normalize → resolve → order →
// layout pipeline shared by the library API, CLI, and server. By
// centralizing this logic, all entry points behave identically.
//
// # Architecture
//
// The pipeline consists of pure, synchronous stages:
//
//  1. Normalize: convert tables or fitted models into one tidy table
//  2. Resolve: compute confidence bounds from standard errors
//  3. Order: finalize term and model display order
//  4. Layout: compute dot, whisker, bracket, and facet geometry
//
// Failure in any stage aborts the whole call and surfaces the
// originating error; no partial chart is ever returned.
//
// # Usage
//
//	opts := pipeline.Options{Alpha: 0.05}
//	c, err := pipeline.Plot(tidy.FromTable(tbl), opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := sink.RenderSVG(c, theme.Default())
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/plotkit/dotwhisker/pkg/coeff/transform"
	"github.com/plotkit/dotwhisker/pkg/coeff/tidy"
	"github.com/plotkit/dotwhisker/pkg/errors"
	"github.com/plotkit/dotwhisker/pkg/theme"
)

// Options contains all configuration for a pipeline run.
type Options struct {
	// Alpha is the two-sided significance level for intervals derived
	// from standard errors. Zero selects transform.DefaultAlpha.
	Alpha float64

	// TermOrder and ModelOrder override first-occurrence display order.
	// A non-nil order must cover every label present in the data.
	TermOrder  []string
	ModelOrder []string

	// Relabel renames terms for display after ordering.
	Relabel map[string]string

	// HideIntercept drops intercept rows before plotting.
	HideIntercept bool

	// Vertical flips the chart: terms on the x axis, estimates on y.
	Vertical bool

	// Dodge is the vertical spacing between dodged models in row units.
	// Zero falls back to Theme.DodgeIncrement, then to the k-dependent
	// default.
	Dodge float64

	// Theme provides the cosmetic parameters. The zero value selects
	// theme.Default().
	Theme theme.Theme

	// Tidier converts fitted-model inputs into coefficient rows. Only
	// required for model inputs.
	Tidier tidy.Tidier

	// Logger reports stage progress. Nil discards.
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks option values and applies defaults.
// The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Alpha == 0 {
		o.Alpha = transform.DefaultAlpha
	}
	if !(o.Alpha > 0 && o.Alpha < 1) {
		return errors.New(errors.ErrCodeInvalidParameter, "alpha must be in (0,1), got %v", o.Alpha)
	}
	if o.Theme.Width == 0 {
		o.Theme = theme.Default()
	}
	if err := o.Theme.Validate(); err != nil {
		return err
	}
	if o.Dodge == 0 {
		// Theme files may set the spacing; zero in both places keeps
		// the k-dependent layout default.
		o.Dodge = o.Theme.DodgeIncrement
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Stats contains pipeline execution timings.
type Stats struct {
	Rows        int
	Terms       int
	Models      int
	TidyTime    time.Duration
	LayoutTime  time.Duration
	AssembleDur time.Duration
}
