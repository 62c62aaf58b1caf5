// Package fold merges visually fragmented raw rows into logical rows. A cell
// that wraps inside its PDF layout box arrives as several stacked raw rows;
// folding joins those fragments back together per column.
package fold

import (
	"fmt"
	"strings"

	"github.com/tabfold/tabfold/model"
)

// ContinuationFunc reports whether the row at index i continues the previous
// logical row. Index 0 is asked like any other row; a predicate normally
// answers false there so the first row opens a fresh accumulation.
type ContinuationFunc func(i int, row model.Row) (bool, error)

// accumulator collects text fragments per output column for the logical row
// currently being assembled.
type accumulator struct {
	cols [][]string
}

func (a *accumulator) empty() bool { return a.cols == nil }

func (a *accumulator) add(row model.Row) {
	for len(a.cols) < len(row) {
		a.cols = append(a.cols, nil)
	}
	if a.cols == nil {
		// A fully empty row still opens an accumulation so that a run of
		// blank continuation rows flushes as one (empty) logical row.
		a.cols = [][]string{}
	}
	for i, cell := range row {
		if cell == "" {
			continue // never erase previously accumulated fragments
		}
		a.cols[i] = append(a.cols[i], cell)
	}
}

func (a *accumulator) flush(joiner string) model.Row {
	out := make(model.Row, len(a.cols))
	for i, frags := range a.cols {
		out[i] = strings.Join(frags, joiner)
	}
	a.cols = nil
	return out
}

// Fold merges each maximal run of continuation rows into one output row. Cells
// of a continuation row are appended to their column's fragment list (empty
// cells are skipped) and each column is joined with joiner on flush. A
// predicate error aborts the fold and is reported with the offending row.
func Fold(rows []model.Row, isContinuation ContinuationFunc, joiner string) ([]model.Row, error) {
	var out []model.Row
	var acc accumulator
	for i, row := range rows {
		cont, err := isContinuation(i, row)
		if err != nil {
			return nil, fmt.Errorf("continuation predicate at row %d %q: %w", i, []string(row), err)
		}
		if !cont && !acc.empty() {
			out = append(out, acc.flush(joiner))
		}
		acc.add(row)
	}
	if !acc.empty() {
		out = append(out, acc.flush(joiner))
	}
	return out, nil
}

// MergeGroup collapses a group of already-separated rows into a single row:
// for each column position, the non-empty cells across the group are joined
// with a single space. The output row is as wide as the widest row in the
// group.
func MergeGroup(group []model.Row) model.Row {
	var acc accumulator
	for _, row := range group {
		acc.add(row)
	}
	if acc.empty() {
		return model.Row{}
	}
	return acc.flush(" ")
}
