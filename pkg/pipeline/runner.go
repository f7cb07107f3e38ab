package pipeline

import (
	"time"

	"github.com/plotkit/dotwhisker/pkg/chart"
	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/coeff/transform"
	"github.com/plotkit/dotwhisker/pkg/coeff/tidy"
	"github.com/plotkit/dotwhisker/pkg/errors"
	"github.com/plotkit/dotwhisker/pkg/render/whisker/layout"
)

// Runner executes the pipeline stage by stage. Stages themselves are
// pure, but a Runner records stats from its most recent run, so use one
// Runner per goroutine.
type Runner struct {
	opts  Options
	stats Stats
}

// NewRunner creates a runner after validating the options.
func NewRunner(opts Options) (*Runner, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Runner{opts: opts}, nil
}

// Stats returns execution statistics for the most recent run.
func (r *Runner) Stats() Stats { return r.stats }

// Plot assembles a standard dot-and-whisker chart. Multiple models are
// dodged within shared term rows.
func (r *Runner) Plot(in tidy.Input) (*chart.Chart, error) {
	start := time.Now()
	t, ord, err := r.prepare(in)
	if err != nil {
		return nil, err
	}

	layoutStart := time.Now()
	geom := layout.Build(t, ord, layout.Options{Dodge: r.opts.Dodge})
	r.stats.LayoutTime = time.Since(layoutStart)

	c := r.finish(chart.KindPlot, t, geom, start)
	return c, nil
}

// SecretWeapon assembles a chart comparing one predictor across models:
// each model becomes a row, showing how that term's estimate varies.
// Requires at least two distinct models.
func (r *Runner) SecretWeapon(in tidy.Input, term string) (*chart.Chart, error) {
	start := time.Now()
	t, ord, err := r.prepare(in)
	if err != nil {
		return nil, err
	}
	if len(ord.Models) < 2 {
		return nil, errors.New(errors.ErrCodeInsufficientModels,
			"secret weapon needs at least 2 models, got %d", len(ord.Models))
	}
	if ord.TermIndex(term) < 0 {
		return nil, errors.New(errors.ErrCodeUnknownTerm, "term %q not in table", term)
	}

	// Re-key the table: the chosen predictor's per-model estimates
	// become the rows, so models take over the term axis.
	rekeyed := &coeff.Table{}
	for _, row := range t.Rows() {
		if row.Term != term || row.IsPlaceholder() {
			continue
		}
		if row.Model == "" {
			return nil, errors.New(errors.ErrCodeInputFormat,
				"secret weapon needs a model label on every row, term %q has unlabeled rows", term)
		}
		row.Term = row.Model
		row.Model = ""
		if err := rekeyed.Append(row); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "re-key model %q", row.Term)
		}
	}

	rekeyed, rord, err := transform.Order(rekeyed, r.opts.ModelOrder, nil)
	if err != nil {
		return nil, err
	}

	layoutStart := time.Now()
	geom := layout.Build(rekeyed, rord, layout.Options{Dodge: r.opts.Dodge})
	r.stats.LayoutTime = time.Since(layoutStart)

	c := r.finish(chart.KindSecretWeapon, rekeyed, geom, start)
	return c, nil
}

// SmallMultiple assembles a faceted chart: one same-scale panel per
// predictor, each showing that predictor's estimate across all models.
// The grid is completed with explicit placeholders so every panel has
// identical rows. Requires at least two distinct models.
func (r *Runner) SmallMultiple(in tidy.Input) (*chart.Chart, error) {
	start := time.Now()
	t, ord, err := r.prepare(in)
	if err != nil {
		return nil, err
	}
	if len(ord.Models) < 2 {
		return nil, errors.New(errors.ErrCodeInsufficientModels,
			"small multiple needs at least 2 models, got %d", len(ord.Models))
	}

	grid, err := transform.BuildGrid(t, ord)
	if err != nil {
		return nil, err
	}

	layoutStart := time.Now()
	geom := layout.Build(grid, ord, layout.Options{Faceted: true})
	r.stats.LayoutTime = time.Since(layoutStart)

	c := r.finish(chart.KindSmallMultiple, grid, geom, start)
	return c, nil
}

// prepare runs the shared stages: normalize, intercept filtering,
// interval resolution, relabeling, and ordering.
func (r *Runner) prepare(in tidy.Input) (*coeff.Table, transform.Ordering, error) {
	tidyStart := time.Now()
	t, err := tidy.Normalize(in, r.opts.Tidier)
	if err != nil {
		return nil, transform.Ordering{}, err
	}
	r.stats.TidyTime = time.Since(tidyStart)
	r.opts.Logger.Debug("normalized input", "rows", t.Len(), "models", t.ModelCount())

	if r.opts.HideIntercept {
		t = transform.DropIntercept(t)
	}
	if t.Len() == 0 {
		return nil, transform.Ordering{}, errors.New(errors.ErrCodeInputFormat, "no coefficient rows to plot")
	}

	if t, err = transform.ResolveCI(t, r.opts.Alpha); err != nil {
		return nil, transform.Ordering{}, err
	}

	if len(r.opts.Relabel) > 0 {
		relabeledOrder, err := relabelOrder(r.opts.TermOrder, r.opts.Relabel)
		if err != nil {
			return nil, transform.Ordering{}, err
		}
		if t, err = transform.Relabel(t, r.opts.Relabel); err != nil {
			return nil, transform.Ordering{}, err
		}
		return orderStage(t, relabeledOrder, r.opts.ModelOrder)
	}
	return orderStage(t, r.opts.TermOrder, r.opts.ModelOrder)
}

func orderStage(t *coeff.Table, termOrder, modelOrder []string) (*coeff.Table, transform.Ordering, error) {
	return transform.Order(t, termOrder, modelOrder)
}

// relabelOrder rewrites an explicit term order through the relabel map
// so callers can state the order in either the original or the display
// names.
func relabelOrder(order []string, labels map[string]string) ([]string, error) {
	if order == nil {
		return nil, nil
	}
	out := make([]string, len(order))
	for i, term := range order {
		if repl, ok := labels[term]; ok {
			out[i] = repl
		} else {
			out[i] = term
		}
	}
	return out, nil
}

func (r *Runner) finish(kind string, t *coeff.Table, geom layout.Layout, start time.Time) *chart.Chart {
	c := chart.New(kind, t, geom, r.opts.Alpha)
	c.Vertical = r.opts.Vertical

	r.stats.Rows = t.Len()
	r.stats.Terms = len(geom.Terms)
	r.stats.Models = len(geom.Models)
	r.stats.AssembleDur = time.Since(start)
	r.opts.Logger.Debug("assembled chart",
		"kind", kind, "rows", r.stats.Rows, "terms", r.stats.Terms, "models", r.stats.Models,
		"elapsed", r.stats.AssembleDur)
	return c
}

// Plot assembles a dot-and-whisker chart with the given options.
func Plot(in tidy.Input, opts Options) (*chart.Chart, error) {
	r, err := NewRunner(opts)
	if err != nil {
		return nil, err
	}
	return r.Plot(in)
}

// SecretWeapon assembles a one-predictor-across-models chart.
func SecretWeapon(in tidy.Input, term string, opts Options) (*chart.Chart, error) {
	r, err := NewRunner(opts)
	if err != nil {
		return nil, err
	}
	return r.SecretWeapon(in, term)
}

// SmallMultiple assembles a faceted per-predictor chart.
func SmallMultiple(in tidy.Input, opts Options) (*chart.Chart, error) {
	r, err := NewRunner(opts)
	if err != nil {
		return nil, err
	}
	return r.SmallMultiple(in)
}

// AddBrackets annotates an assembled chart with group brackets. Group
// definitions follow the label-first convention: each definition lists
// the group label and then its member terms. Brackets never reorder the
// chart; they are resolved against the finalized term sequence.
func AddBrackets(c *chart.Chart, defs [][]string) (*chart.Chart, error) {
	groups, err := layout.ParseGroups(defs)
	if err != nil {
		return nil, err
	}
	brackets, err := layout.ResolveBrackets(groups, c.Geometry.Terms, 0)
	if err != nil {
		return nil, err
	}

	c.Geometry.Brackets = append(c.Geometry.Brackets, brackets...)
	for _, b := range brackets {
		c.Brackets = append(c.Brackets, chart.Bracket{Label: b.Label, Y1: b.Y1, Y2: b.Y2})
	}
	return c, nil
}
