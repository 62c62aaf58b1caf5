package fold

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tabfold/tabfold/model"
)

func rowsOf(cells ...string) []model.Row {
	out := make([]model.Row, len(cells))
	for i, c := range cells {
		out[i] = model.Row{c}
	}
	return out
}

func TestAllRowsOneGroup(t *testing.T) {
	rows := rowsOf("a", "b", "c")
	groups, rest, err := AllRows{}.Group(rows)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(groups) != 1 || len(groups[0]) != 3 {
		t.Fatalf("groups = %v", groups)
	}
	if len(rest) != 0 {
		t.Fatalf("rest = %v, want empty", rest)
	}
}

func TestAllRowsEmptyStream(t *testing.T) {
	groups, rest, err := AllRows{}.Group(nil)
	if err != nil || groups != nil || rest != nil {
		t.Fatalf("got %v %v %v", groups, rest, err)
	}
}

func TestStaticRowCountsSlices(t *testing.T) {
	rows := rowsOf("a", "b", "c", "d", "e")
	groups, rest, err := StaticRowCounts{Counts: []int{2, 1}}.Group(rows)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(groups) != 2 || len(groups[0]) != 2 || len(groups[1]) != 1 {
		t.Fatalf("groups = %v", groups)
	}
	if len(rest) != 2 {
		t.Fatalf("rest = %v, want 2 rows", rest)
	}
}

func TestStaticRowCountsShortFinalSlice(t *testing.T) {
	rows := rowsOf("a", "b", "c")
	groups, rest, err := StaticRowCounts{Counts: []int{2, 5}}.Group(rows)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(groups) != 2 || len(groups[1]) != 1 {
		t.Fatalf("groups = %v, want short final group", groups)
	}
	if len(rest) != 0 {
		t.Fatalf("rest = %v", rest)
	}
}

func TestStaticRowCountsRejectsNonPositive(t *testing.T) {
	_, _, err := StaticRowCounts{Counts: []int{0}}.Group(rowsOf("a"))
	if !errors.Is(err, model.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestEmptyColumnStartsGroupOnContent(t *testing.T) {
	rows := []model.Row{
		{"first", "x"},
		{"", "y"},
		{"second", "z"},
		{"", "w"},
	}
	groups, rest, err := EmptyColumn{Column: 0}.Group(rows)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(groups) != 2 || len(groups[0]) != 2 || len(groups[1]) != 2 {
		t.Fatalf("groups = %v", groups)
	}
	if len(rest) != 0 {
		t.Fatalf("rest = %v", rest)
	}
}

func TestEmptyColumnLeadingBlankJoinsFirstGroup(t *testing.T) {
	rows := []model.Row{
		{"", "stray"},
		{"first", "x"},
		{"", "y"},
	}
	groups, _, err := EmptyColumn{Column: 0}.Group(rows)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %v, want the stray row folded into the first group", groups)
	}
	want := []model.Row{{"", "stray"}, {"first", "x"}, {"", "y"}}
	if !reflect.DeepEqual(groups[0], want) {
		t.Fatalf("first group = %v, want %v", groups[0], want)
	}
}

func TestGroupAllEmitsLeftoversAsSingletons(t *testing.T) {
	rows := rowsOf("a", "b", "c", "d")
	groups, err := GroupAll([]Grouper{StaticRowCounts{Counts: []int{2}}}, rows)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("groups = %v, want grouped pair plus two singletons", groups)
	}
	if len(groups[1]) != 1 || len(groups[2]) != 1 {
		t.Fatalf("leftovers not singleton: %v", groups)
	}
}
