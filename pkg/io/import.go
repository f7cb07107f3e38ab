package io

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/errors"
)

// jsonRow is the wire form of one coefficient row. Pointer fields
// distinguish absent from zero.
type jsonRow struct {
	Term     string   `json:"term"`
	Estimate *float64 `json:"estimate"`
	StdErr   *float64 `json:"std.error"`
	Low      *float64 `json:"lb"`
	High     *float64 `json:"ub"`
	Model    string   `json:"model"`
	Submodel string   `json:"submodel"`
}

// ReadJSON decodes a JSON array of tidy rows from r into a table.
//
//	[
//	  {"term": "x1", "estimate": 0.5, "std.error": 0.1},
//	  {"term": "x2", "estimate": -0.3, "lb": -0.7, "ub": 0.1, "model": "A"}
//	]
//
// Row order in the document is display order. ReadJSON returns an
// INPUT_FORMAT error when the JSON is malformed, a row lacks a term or
// estimate, a row has neither "std.error" nor both "lb" and "ub", or a
// term repeats within one model.
func ReadJSON(r io.Reader) (*coeff.Table, error) {
	var rows []jsonRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputFormat, err, "decode table")
	}

	t := &coeff.Table{}
	for i, jr := range rows {
		row, err := rowFromWire(jr, i)
		if err != nil {
			return nil, err
		}
		if err := t.Append(row); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInputFormat, err, "row %d (%s)", i+1, jr.Term)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputFormat, err, "incomplete interval data")
	}
	return t, nil
}

// ReadCSV decodes a comma-separated table with a header row from r.
// Recognized columns: term, estimate, std.error, lb, ub, model,
// submodel. Column order is free; unknown columns are ignored; empty
// cells mean absent.
func ReadCSV(r io.Reader) (*coeff.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputFormat, err, "read header")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["term"]; !ok {
		return nil, errors.New(errors.ErrCodeInputFormat, "missing required column %q", "term")
	}
	if _, ok := col["estimate"]; !ok {
		return nil, errors.New(errors.ErrCodeInputFormat, "missing required column %q", "estimate")
	}

	t := &coeff.Table{}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInputFormat, err, "line %d", line)
		}

		row, err := rowFromRecord(record, col, line)
		if err != nil {
			return nil, err
		}
		if err := t.Append(row); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInputFormat, err, "line %d (%s)", line, row.Term)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputFormat, err, "incomplete interval data")
	}
	return t, nil
}

func rowFromWire(jr jsonRow, i int) (coeff.Row, error) {
	if jr.Term == "" {
		return coeff.Row{}, errors.New(errors.ErrCodeInputFormat, "row %d is missing a term", i+1)
	}
	if jr.Estimate == nil {
		return coeff.Row{}, errors.New(errors.ErrCodeInputFormat, "row %d (%s) is missing an estimate", i+1, jr.Term)
	}

	row := coeff.NewRow(jr.Term, *jr.Estimate)
	row.Model = jr.Model
	row.Submodel = jr.Submodel
	if jr.StdErr != nil {
		row.StdErr = *jr.StdErr
	}
	if jr.Low != nil {
		row.Low = *jr.Low
	}
	if jr.High != nil {
		row.High = *jr.High
	}
	return row, nil
}

func rowFromRecord(record []string, col map[string]int, line int) (coeff.Row, error) {
	cell := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	term := cell("term")
	if term == "" {
		return coeff.Row{}, errors.New(errors.ErrCodeInputFormat, "line %d is missing a term", line)
	}

	est, err := parseCell(cell("estimate"), "estimate", line)
	if err != nil {
		return coeff.Row{}, err
	}
	if coeff.IsNA(est) {
		return coeff.Row{}, errors.New(errors.ErrCodeInputFormat, "line %d (%s) is missing an estimate", line, term)
	}

	row := coeff.NewRow(term, est)
	row.Model = cell("model")
	row.Submodel = cell("submodel")
	if row.StdErr, err = parseCell(cell("std.error"), "std.error", line); err != nil {
		return coeff.Row{}, err
	}
	if row.Low, err = parseCell(cell("lb"), "lb", line); err != nil {
		return coeff.Row{}, err
	}
	if row.High, err = parseCell(cell("ub"), "ub", line); err != nil {
		return coeff.Row{}, err
	}
	return row, nil
}

// parseCell parses a numeric cell; empty or "NA" means absent.
func parseCell(s, name string, line int) (float64, error) {
	if s == "" || strings.EqualFold(s, "na") {
		return coeff.NA, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInputFormat, err, "line %d: column %q", line, name)
	}
	return v, nil
}
