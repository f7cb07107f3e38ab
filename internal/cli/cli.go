// Package cli implements the dotwhisker command-line interface.
//
// This package provides commands for assembling dot-and-whisker charts
// from tidy coefficient tables and rendering them as SVG or JSON, plus
// an HTTP server exposing the same pipeline. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - plot: Render a standard dot-and-whisker chart
//   - secretweapon: Compare one predictor across models
//   - smallmultiple: Render one same-scale panel per predictor
//   - serve: Run the rendering HTTP server
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context to allow structured progress
// tracking.
//
// # Example
//
//	import "github.com/plotkit/dotwhisker/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli
