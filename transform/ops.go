package transform

import (
	"regexp"

	"github.com/tabfold/tabfold/fold"
	"github.com/tabfold/tabfold/model"
)

// PrependRow inserts one literal row at position 0.
type PrependRow struct {
	Row model.Row
}

func (p PrependRow) Apply(t model.Table) (model.Table, error) {
	out := make(model.Table, 0, len(t)+1)
	out = append(out, p.Row.Clone())
	return append(out, t...), nil
}

// Transpose turns rows into columns. Cells missing from short rows read as
// empty strings, so the output is a full rectangle: width = input row count,
// height = longest input row.
type Transpose struct{}

func (Transpose) Apply(t model.Table) (model.Table, error) {
	if len(t) == 0 {
		return t, nil
	}
	width := t.MaxWidth()
	out := make(model.Table, width)
	for j := 0; j < width; j++ {
		row := make(model.Row, len(t))
		for i := range t {
			row[i] = t[i].CellAt(j)
		}
		out[j] = row
	}
	return out, nil
}

// JoinColumns merges the column slice [From,To) of every row into a single
// cell, leaving columns outside the slice untouched. Nil From/To default to
// the start/end of each row. Rows that end before From pass through
// unmodified.
type JoinColumns struct {
	From      *int
	To        *int
	Delimiter string
}

func (j JoinColumns) Apply(t model.Table) (model.Table, error) {
	out := make(model.Table, len(t))
	for i, row := range t {
		out[i] = j.joinRow(row)
	}
	return out, nil
}

func (j JoinColumns) joinRow(row model.Row) model.Row {
	from, to := 0, len(row)
	if j.From != nil {
		from = *j.From
	}
	if j.To != nil && *j.To < to {
		to = *j.To
	}
	if from < 0 || from >= len(row) || to <= from {
		return row
	}
	joined := ""
	for k, cell := range row[from:to] {
		if k > 0 {
			joined += j.Delimiter
		}
		joined += cell
	}
	out := make(model.Row, 0, len(row)-(to-from)+1)
	out = append(out, row[:from]...)
	out = append(out, joined)
	return append(out, row[to:]...)
}

// SplitColumn splits one cell's text on a regexp, replacing the cell with the
// resulting pieces in place. Rows without that column pass through unmodified.
type SplitColumn struct {
	Column  int
	Pattern *regexp.Regexp
}

func (s SplitColumn) Apply(t model.Table) (model.Table, error) {
	if s.Pattern == nil {
		return nil, model.Configf("split_column requires a pattern")
	}
	out := make(model.Table, len(t))
	for i, row := range t {
		if s.Column < 0 || s.Column >= len(row) {
			out[i] = row
			continue
		}
		parts := s.Pattern.Split(row[s.Column], -1)
		split := make(model.Row, 0, len(row)-1+len(parts))
		split = append(split, row[:s.Column]...)
		split = append(split, parts...)
		out[i] = append(split, row[s.Column+1:]...)
	}
	return out, nil
}

// wholeCell always matches an entire string, giving Default templates a $0
// group holding the full cell text.
var wholeCell = regexp.MustCompile(`(?s)\A.*\z`)

// ExpandColumnOnRegex replaces the cell at Column with cells generated from
// expansion templates: when Pattern matches the whole cell, the OnMatch
// templates are expanded against the capture groups ($1, $2, ...); otherwise
// the Default templates are expanded with the full text available as $0.
// Pattern is anchored to the full cell at apply time, so `a|ab` behaves like
// `\A(?:a|ab)\z` rather than stopping at the leftmost alternative.
// Rows without that column pass through unmodified.
type ExpandColumnOnRegex struct {
	Column  int
	Pattern *regexp.Regexp
	OnMatch []string
	Default []string
}

func (e ExpandColumnOnRegex) Apply(t model.Table) (model.Table, error) {
	if e.Pattern == nil {
		return nil, model.Configf("expand_column_on_regex requires a pattern")
	}
	anchored, err := regexp.Compile(`\A(?:` + e.Pattern.String() + `)\z`)
	if err != nil {
		return nil, model.Configf("expand_column_on_regex pattern %q: %v", e.Pattern.String(), err)
	}
	out := make(model.Table, len(t))
	for i, row := range t {
		if e.Column < 0 || e.Column >= len(row) {
			out[i] = row
			continue
		}
		cell := row[e.Column]
		pat, templates := wholeCell, e.Default
		match := wholeCell.FindStringSubmatchIndex(cell)
		if m := anchored.FindStringSubmatchIndex(cell); m != nil {
			pat, templates, match = anchored, e.OnMatch, m
		}
		cells := make(model.Row, 0, len(templates))
		for _, tmpl := range templates {
			cells = append(cells, string(pat.ExpandString(nil, tmpl, cell, match)))
		}
		out[i] = spliceRow(row, e.Column, cells)
	}
	return out, nil
}

func spliceRow(row model.Row, col int, cells model.Row) model.Row {
	out := make(model.Row, 0, len(row)-1+len(cells))
	out = append(out, row[:col]...)
	out = append(out, cells...)
	return append(out, row[col+1:]...)
}

// WrapRowEveryN flattens every cell of the table into one stream and re-chunks
// it into rows of N cells; a remainder shorter than N becomes a final short
// row.
type WrapRowEveryN struct {
	N int
}

func (w WrapRowEveryN) Apply(t model.Table) (model.Table, error) {
	if w.N < 1 {
		return nil, model.Configf("wrap_row_every_n requires n >= 1, got %d", w.N)
	}
	var cells model.Row
	for _, row := range t {
		cells = append(cells, row...)
	}
	var out model.Table
	for len(cells) > 0 {
		n := w.N
		if n > len(cells) {
			n = len(cells)
		}
		out = append(out, cells[:n])
		cells = cells[n:]
	}
	return out, nil
}

// FoldRows partitions the row stream with the configured groupers (rows left
// over after all groupers become singleton groups) and merges each group into
// one row, space-joining the non-empty cells of each column.
type FoldRows struct {
	Groupers []fold.Grouper
}

func (f FoldRows) Apply(t model.Table) (model.Table, error) {
	groups, err := fold.GroupAll(f.Groupers, t)
	if err != nil {
		return nil, err
	}
	out := make(model.Table, 0, len(groups))
	for _, g := range groups {
		out = append(out, fold.MergeGroup(g))
	}
	return out, nil
}
