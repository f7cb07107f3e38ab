// Package transform provides the pure table transforms of the plotting
// pipeline: confidence interval resolution, term/model ordering, alignment
// grid completion, and display relabeling.
//
// Every function takes a table and returns a new one; inputs are never
// mutated. Transforms compose in a fixed order driven by the assembler:
//
//	resolve CI → relabel → order → (grid)
//
// All transforms are deterministic: the same input table and options
// produce byte-identical output tables across runs.
package transform
