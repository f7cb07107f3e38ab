package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/plotkit/dotwhisker/pkg/cache"
	"github.com/plotkit/dotwhisker/pkg/chart"
	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/coeff/tidy"
	dwio "github.com/plotkit/dotwhisker/pkg/io"
	"github.com/plotkit/dotwhisker/pkg/observability"
	"github.com/plotkit/dotwhisker/pkg/pipeline"
	"github.com/plotkit/dotwhisker/pkg/render/whisker/sink"
	"github.com/plotkit/dotwhisker/pkg/render/whisker/styles"
	"github.com/plotkit/dotwhisker/pkg/theme"
)

const (
	formatSVG  = "svg"
	formatJSON = "json"

	styleClassic = "classic" // capped whiskers, filled dots
	styleMinimal = "minimal" // plain whiskers, small dots

	cacheTTL = 7 * 24 * time.Hour
)

// plotOpts holds the command-line flags shared by the chart commands.
type plotOpts struct {
	output        string   // output file path
	format        string   // output format: "svg" or "json"
	style         string   // visual style: "classic" or "minimal"
	themePath     string   // TOML theme file
	alpha         float64  // significance level for derived intervals
	termOrder     string   // comma-separated term display order
	modelOrder    string   // comma-separated model display order
	relabels      []string // repeated old=new term renames
	brackets      []string // repeated Label=term1,term2 group brackets
	hideIntercept bool     // drop intercept rows
	vertical      bool     // terms on the x axis
	dodge         float64  // dodge spacing override
	noLegend      bool     // suppress the model legend
	summary       bool     // print a chart summary table
	noCache       bool     // bypass the artifact cache
	cacheDir      string   // artifact cache directory
}

// addPlotFlags registers the shared chart flags on cmd.
func addPlotFlags(cmd *cobra.Command, opts *plotOpts) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "output format: svg (default), json")
	cmd.Flags().StringVar(&opts.style, "style", styleClassic, "visual style: classic (default), minimal")
	cmd.Flags().StringVar(&opts.themePath, "theme", "", "TOML theme file")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", 0, "significance level for intervals derived from standard errors (default 0.05)")
	cmd.Flags().StringVar(&opts.termOrder, "term-order", "", "comma-separated term display order (must cover every term)")
	cmd.Flags().StringVar(&opts.modelOrder, "model-order", "", "comma-separated model display order (must cover every model)")
	cmd.Flags().StringArrayVar(&opts.relabels, "relabel", nil, "rename a term for display, as old=new (repeatable)")
	cmd.Flags().StringArrayVar(&opts.brackets, "bracket", nil, "group bracket, as Label=term1,term2 (repeatable)")
	cmd.Flags().BoolVar(&opts.hideIntercept, "hide-intercept", false, "drop intercept rows")
	cmd.Flags().BoolVar(&opts.vertical, "vertical", false, "put terms on the x axis")
	cmd.Flags().Float64Var(&opts.dodge, "dodge", 0, "dodge spacing between models in row units (default 1/(k+1))")
	cmd.Flags().BoolVar(&opts.noLegend, "no-legend", false, "suppress the model legend")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a chart summary table")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the artifact cache")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "artifact cache directory (default: user cache dir)")
}

func newPlotCmd() *cobra.Command {
	var opts plotOpts
	cmd := &cobra.Command{
		Use:   "plot [file]",
		Short: "Render a dot-and-whisker chart from a tidy coefficient table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd.Context(), chart.KindPlot, args[0], "", &opts)
		},
	}
	addPlotFlags(cmd, &opts)
	return cmd
}

func newSecretWeaponCmd() *cobra.Command {
	var opts plotOpts
	var term string
	cmd := &cobra.Command{
		Use:   "secretweapon [file]",
		Short: "Compare one predictor's estimate across models",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if term == "" {
				return fmt.Errorf("--term is required")
			}
			return runChart(cmd.Context(), chart.KindSecretWeapon, args[0], term, &opts)
		},
	}
	cmd.Flags().StringVar(&term, "term", "", "predictor to compare across models")
	addPlotFlags(cmd, &opts)
	return cmd
}

func newSmallMultipleCmd() *cobra.Command {
	var opts plotOpts
	cmd := &cobra.Command{
		Use:   "smallmultiple [file]",
		Short: "Render one same-scale panel per predictor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd.Context(), chart.KindSmallMultiple, args[0], "", &opts)
		},
	}
	addPlotFlags(cmd, &opts)
	return cmd
}

// runChart is the shared driver: load the table, consult the cache,
// run the pipeline if needed, and write the artifact.
func runChart(ctx context.Context, kind string, input, term string, opts *plotOpts) error {
	logger := loggerFromContext(ctx)

	if err := validateFormat(opts.format); err != nil {
		return err
	}
	style, err := resolveStyle(opts.style)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	th, themeHash, err := loadTheme(opts.themePath)
	if err != nil {
		return err
	}

	popts, err := buildOptions(logger, th, opts)
	if err != nil {
		return err
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}

	artifactCache, key, err := openCache(ctx, kind, term, raw, themeHash, opts)
	if err != nil {
		return err
	}
	defer artifactCache.Close()

	if data, hit, err := artifactCache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		logger.Debugf("Cache hit for %s", key[:24])
		if err := dwio.WriteFile(outputPath, data); err != nil {
			return err
		}
		printFile(outputPath)
		if opts.summary {
			fmt.Println(summaryTable([][2]string{{"kind", kind}, {"artifact", "cached"}}))
		}
		return nil
	}

	observability.Cache().OnCacheMiss(ctx, "artifact")

	tab, err := loadTable(input, raw)
	if err != nil {
		return err
	}
	logger.Infof("Loaded table: %d rows", tab.Len())

	runner, err := pipeline.NewRunner(popts)
	if err != nil {
		return err
	}

	p := newProgress(logger)
	assembleStart := time.Now()
	observability.Chart().OnAssembleStart(ctx, kind, tab.Len())
	var c *chart.Chart
	switch kind {
	case chart.KindPlot:
		c, err = runner.Plot(tidy.FromTable(tab))
	case chart.KindSecretWeapon:
		c, err = runner.SecretWeapon(tidy.FromTable(tab), term)
	case chart.KindSmallMultiple:
		c, err = runner.SmallMultiple(tidy.FromTable(tab))
	default:
		err = fmt.Errorf("unknown chart kind: %s", kind)
	}
	observability.Chart().OnAssembleComplete(ctx, kind, time.Since(assembleStart), err)
	if err != nil {
		return err
	}

	if defs, err := parseBrackets(opts.brackets); err != nil {
		return err
	} else if len(defs) > 0 {
		if c, err = pipeline.AddBrackets(c, defs); err != nil {
			return err
		}
	}

	stats := runner.Stats()
	p.done(fmt.Sprintf("Assembled %d coefficients", stats.Rows))

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.format))
	spinner.Start()

	renderStart := time.Now()
	observability.Chart().OnRenderStart(ctx, opts.format)
	data, err := renderChart(c, th, style, opts)
	observability.Chart().OnRenderComplete(ctx, opts.format, len(data), time.Since(renderStart), err)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	if !opts.noCache {
		if err := artifactCache.Set(ctx, key, data, cacheTTL); err != nil {
			logger.Warnf("Cache write failed: %v", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	if err := dwio.WriteFile(outputPath, data); err != nil {
		return err
	}

	printFile(outputPath)
	printStats(stats, false)
	if opts.summary {
		fmt.Println(summaryTable(summaryRows(c, stats, opts)))
	}
	return nil
}

// renderChart produces the output bytes for the requested format.
func renderChart(c *chart.Chart, th theme.Theme, style styles.Style, opts *plotOpts) ([]byte, error) {
	switch opts.format {
	case formatJSON:
		return sink.RenderJSON(c)
	case formatSVG:
		sinkOpts := []sink.SVGOption{sink.WithStyle(style)}
		if opts.noLegend {
			sinkOpts = append(sinkOpts, sink.WithoutLegend())
		}
		return sink.RenderSVG(c, th, sinkOpts...), nil
	default:
		return nil, fmt.Errorf("invalid format: %s", opts.format)
	}
}

// buildOptions converts flags into pipeline options.
func buildOptions(logger *log.Logger, th theme.Theme, opts *plotOpts) (pipeline.Options, error) {
	relabel, err := parsePairs(opts.relabels)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Alpha:         opts.alpha,
		TermOrder:     parseList(opts.termOrder),
		ModelOrder:    parseList(opts.modelOrder),
		Relabel:       relabel,
		HideIntercept: opts.hideIntercept,
		Vertical:      opts.vertical,
		Dodge:         opts.dodge,
		Theme:         th,
		Logger:        logger,
	}, nil
}

// loadTable decodes the input file as JSON or CSV based on extension.
func loadTable(path string, raw []byte) (*coeff.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return dwio.ReadCSV(bytes.NewReader(raw))
	}
	return dwio.ReadJSON(bytes.NewReader(raw))
}

// loadTheme loads the theme file, or the default theme when path is
// empty. The returned hash distinguishes cache entries per theme.
func loadTheme(path string) (theme.Theme, string, error) {
	if path == "" {
		return theme.Default(), "", nil
	}
	th, err := theme.Load(path)
	if err != nil {
		return theme.Theme{}, "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return theme.Theme{}, "", err
	}
	return th, cache.Hash(raw), nil
}

// openCache builds the artifact cache and the key for this invocation.
// --no-cache selects the null backend, so the lookup always misses.
func openCache(ctx context.Context, kind, term string, raw []byte, themeHash string, opts *plotOpts) (cache.Cache, string, error) {
	keyer := cache.NewDefaultKeyer()
	chartKey := keyer.ChartKey(cache.Hash(raw), cache.ChartKeyOpts{
		Kind:          kind + keySuffix(term),
		Alpha:         opts.alpha,
		TermOrder:     parseList(opts.termOrder),
		ModelOrder:    parseList(opts.modelOrder),
		HideIntercept: opts.hideIntercept,
		Vertical:      opts.vertical,
		Dodge:         opts.dodge,
	})
	key := keyer.ArtifactKey(cache.Hash([]byte(chartKey+strings.Join(opts.relabels, ";")+strings.Join(opts.brackets, ";"))), cache.ArtifactKeyOpts{
		Format:    opts.format,
		Style:     opts.style + legendSuffix(opts.noLegend),
		ThemeHash: themeHash,
	})

	if opts.noCache {
		return cache.NewNullCache(), key, nil
	}
	dir := opts.cacheDir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return cache.NewNullCache(), key, nil
		}
		dir = filepath.Join(base, "dotwhisker")
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, "", err
	}
	return c, key, nil
}

func keySuffix(term string) string {
	if term == "" {
		return ""
	}
	return ":" + term
}

func legendSuffix(noLegend bool) string {
	if noLegend {
		return ":nolegend"
	}
	return ""
}

// summaryRows assembles the --summary table contents.
func summaryRows(c *chart.Chart, stats pipeline.Stats, opts *plotOpts) [][2]string {
	rows := [][2]string{
		{"kind", c.Kind},
		{"rows", fmt.Sprintf("%d", stats.Rows)},
		{"terms", fmt.Sprintf("%d", stats.Terms)},
		{"models", fmt.Sprintf("%d", stats.Models)},
		{"alpha", fmt.Sprintf("%g", c.Alpha)},
		{"format", opts.format},
		{"style", opts.style},
	}
	if len(c.Brackets) > 0 {
		rows = append(rows, [2]string{"brackets", fmt.Sprintf("%d", len(c.Brackets))})
	}
	return rows
}

// resolveStyle maps the --style flag to a renderer style.
func resolveStyle(s string) (styles.Style, error) {
	switch s {
	case styleClassic:
		return styles.Classic{}, nil
	case styleMinimal:
		return styles.Minimal{}, nil
	default:
		return nil, fmt.Errorf("invalid style: %s (must be 'classic' or 'minimal')", s)
	}
}

// validateFormat checks the --format flag.
func validateFormat(f string) error {
	if f != formatSVG && f != formatJSON {
		return fmt.Errorf("invalid format: %s (must be 'svg' or 'json')", f)
	}
	return nil
}

// parseList splits a comma-separated flag into trimmed entries.
// An empty flag yields nil.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parsePairs parses repeated old=new flags into a map.
func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		old, next, ok := strings.Cut(p, "=")
		if !ok || old == "" || next == "" {
			return nil, fmt.Errorf("invalid relabel %q (expected old=new)", p)
		}
		out[strings.TrimSpace(old)] = strings.TrimSpace(next)
	}
	return out, nil
}

// parseBrackets parses repeated Label=term1,term2 flags into
// label-first group definitions.
func parseBrackets(defs []string) ([][]string, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make([][]string, 0, len(defs))
	for _, d := range defs {
		label, terms, ok := strings.Cut(d, "=")
		if !ok || label == "" {
			return nil, fmt.Errorf("invalid bracket %q (expected Label=term1,term2)", d)
		}
		group := append([]string{strings.TrimSpace(label)}, parseList(terms)...)
		if len(group) < 2 {
			return nil, fmt.Errorf("bracket %q names no terms", d)
		}
		out = append(out, group)
	}
	return out, nil
}
