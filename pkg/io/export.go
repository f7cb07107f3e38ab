package io

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/errors"
)

// WriteJSON encodes the table to w as a JSON array of tidy rows, the
// same document form ReadJSON accepts. Absent values are omitted.
func WriteJSON(w io.Writer, t *coeff.Table) error {
	rows := make([]jsonRow, 0, t.Len())
	for _, r := range t.Rows() {
		jr := jsonRow{Term: r.Term, Model: r.Model, Submodel: r.Submodel}
		if !coeff.IsNA(r.Estimate) {
			est := r.Estimate
			jr.Estimate = &est
		}
		if r.HasStdErr() {
			se := r.StdErr
			jr.StdErr = &se
		}
		if r.HasBounds() {
			lo, hi := r.Low, r.High
			jr.Low, jr.High = &lo, &hi
		}
		rows = append(rows, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode table")
	}
	return nil
}

// WriteCSV encodes the table to w with the canonical header
// term,estimate,std.error,lb,ub,model,submodel. Absent values are
// written as empty cells.
func WriteCSV(w io.Writer, t *coeff.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"term", "estimate", "std.error", "lb", "ub", "model", "submodel"}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write header")
	}
	for _, r := range t.Rows() {
		record := []string{
			r.Term,
			formatCell(r.Estimate),
			formatCell(r.StdErr),
			formatCell(r.Low),
			formatCell(r.High),
			r.Model,
			r.Submodel,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write row %s", r.Term)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "flush")
	}
	return nil
}

// WriteFile writes data to path, creating parent directories as needed.
// The write goes through a temporary file in the same directory and a
// rename, so readers never observe a partial artifact.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInternal, err, "close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInternal, err, "rename to %s", path)
	}
	return nil
}

func formatCell(v float64) string {
	if coeff.IsNA(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
