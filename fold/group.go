package fold

import (
	"github.com/tabfold/tabfold/model"
)

// Grouper partitions a prefix of a row stream into groups destined to be
// merged into single rows. Group consumes as much of rows as its strategy
// covers and hands the rest back for the next grouper.
type Grouper interface {
	Group(rows []model.Row) (groups [][]model.Row, rest []model.Row, err error)
}

// AllRows consumes the entire remaining stream as one group.
type AllRows struct{}

func (AllRows) Group(rows []model.Row) ([][]model.Row, []model.Row, error) {
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return [][]model.Row{rows}, nil, nil
}

// StaticRowCounts slices fixed-size groups off the front of the stream. A
// final slice cut short by stream exhaustion is kept as-is; counts left over
// once the stream runs out are ignored.
type StaticRowCounts struct {
	Counts []int
}

func (g StaticRowCounts) Group(rows []model.Row) ([][]model.Row, []model.Row, error) {
	var groups [][]model.Row
	for _, n := range g.Counts {
		if len(rows) == 0 {
			break
		}
		if n < 1 {
			return nil, nil, model.Configf("static row count must be positive, got %d", n)
		}
		if n > len(rows) {
			n = len(rows)
		}
		groups = append(groups, rows[:n])
		rows = rows[n:]
	}
	return groups, rows, nil
}

// EmptyColumn consumes the entire remaining stream, starting a new group
// whenever the watched column is non-empty. Leading rows whose watched column
// is empty are accumulated into the first group.
type EmptyColumn struct {
	Column int
}

func (g EmptyColumn) Group(rows []model.Row) ([][]model.Row, []model.Row, error) {
	var groups [][]model.Row
	var current []model.Row
	anchored := false
	for _, row := range rows {
		if row.CellAt(g.Column) != "" {
			if anchored {
				groups = append(groups, current)
				current = nil
			}
			anchored = true
		}
		current = append(current, row)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups, nil, nil
}

// GroupAll runs the groupers in order over the stream, then emits every row
// still remaining as its own singleton group so that no input row is dropped.
func GroupAll(groupers []Grouper, rows []model.Row) ([][]model.Row, error) {
	var groups [][]model.Row
	for _, g := range groupers {
		gs, rest, err := g.Group(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, gs...)
		rows = rest
	}
	for _, row := range rows {
		groups = append(groups, []model.Row{row})
	}
	return groups, nil
}
