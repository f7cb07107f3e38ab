// Package pkg provides the core libraries for dotwhisker coefficient plotting.
//
// # Overview
//
// dotwhisker turns tidy regression output into dot-and-whisker charts:
// point estimates drawn as dots with confidence-interval whiskers, one
// row per predictor, optionally dodged or faceted across models. The
// pkg directory is organized into five main areas:
//
//  1. [coeff] - The coefficient table and its transforms (normalization,
//     interval resolution, ordering, grid completion)
//  2. [render/whisker] - Layout geometry, visual styles, and output sinks
//  3. [chart] - Serializable chart types (the wire format)
//  4. [pipeline] - Orchestration (tidy → transform → layout → chart)
//  5. [cache], [io], [theme], [errors] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	tidy rows (JSON/CSV or a Tidier)
//	         |
//	    coeff package (table + validation)
//	         |
//	    coeff/transform package (CI resolution, ordering, grid)
//	         |
//	    render/whisker/layout package (rows, dodge offsets, facets)
//	         |
//	    chart + render/whisker/sink packages
//	         |
//	    SVG/JSON output
//
// # Quick Start
//
// Assemble and render a chart:
//
//	c, err := pipeline.Plot(tidy.FromTable(table), pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(c, theme.Default())
package pkg
