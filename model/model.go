// Package model holds the primitive table shapes shared by the extraction
// pipeline: rows of text cells as produced by a raw PDF region reader, before
// and after folding and transformation.
package model

import (
	"regexp"
	"sort"
	"strings"
)

// Row is an ordered sequence of text cells. Rows are variable-length; a row
// shorter than its neighbors is legal and missing trailing cells read as "".
type Row []string

// Table is an ordered sequence of rows.
type Table []Row

// RawTable is the unprocessed output of one PDF region extraction: the page it
// came from plus the located cell grid.
type RawTable struct {
	Page int   `json:"page" yaml:"page"`
	Rows Table `json:"rows" yaml:"rows"`
}

// CellAt returns the cell at column i, or "" when the row is too short.
func (r Row) CellAt(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	return append(Row(nil), r...)
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for i, r := range t {
		out[i] = r.Clone()
	}
	return out
}

// Clone returns a deep copy of the raw table.
func (rt RawTable) Clone() RawTable {
	return RawTable{Page: rt.Page, Rows: rt.Rows.Clone()}
}

// MaxWidth returns the length of the longest row.
func (t Table) MaxWidth() int {
	w := 0
	for _, r := range t {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Concat flattens a list of raw tables into one working table, row-wise in
// input order, and returns the sorted, de-duplicated set of source pages.
func Concat(raws []RawTable) (Table, []int) {
	var rows Table
	seen := map[int]bool{}
	for _, rt := range raws {
		rows = append(rows, rt.Rows...)
		seen[rt.Page] = true
	}
	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return rows, pages
}

// whitespaceRun matches any run of whitespace, including newlines left behind
// by continuation folding.
var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeCell collapses internal whitespace runs to a single space and trims
// both ends.
func NormalizeCell(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Normalize applies NormalizeCell to every cell, in place, and returns t.
func (t Table) Normalize() Table {
	for _, r := range t {
		for i, c := range r {
			r[i] = NormalizeCell(c)
		}
	}
	return t
}
