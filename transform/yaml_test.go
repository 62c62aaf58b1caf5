package transform

import (
	"errors"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/tabfold/tabfold/fold"
	"github.com/tabfold/tabfold/model"
)

func TestSpecUnmarshalYAML(t *testing.T) {
	src := `
- kind: prepend_row
  row: [name, value]
- kind: transpose
- kind: join_columns
  from: 1
  to: 3
  delimiter: " "
- kind: split_column
  column: 0
  pattern: ';'
- kind: expand_column_on_regex
  column: 1
  pattern: 'L: (.+)'
  on_match: ['$1']
  default: ['${0}']
- kind: wrap_row_every_n
  n: 2
- kind: fold_rows
  groupers:
    - kind: static_row_counts
      counts: [2, 3]
    - kind: empty_column
      column: 1
    - kind: all_rows
`
	var spec Spec
	if err := yaml.Unmarshal([]byte(src), &spec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(spec) != 7 {
		t.Fatalf("got %d transforms, want 7", len(spec))
	}

	pr, ok := spec[0].(PrependRow)
	if !ok || !reflect.DeepEqual(pr.Row, model.Row{"name", "value"}) {
		t.Fatalf("spec[0] = %#v", spec[0])
	}
	if _, ok := spec[1].(Transpose); !ok {
		t.Fatalf("spec[1] = %#v", spec[1])
	}
	jc, ok := spec[2].(JoinColumns)
	if !ok || jc.From == nil || *jc.From != 1 || jc.To == nil || *jc.To != 3 || jc.Delimiter != " " {
		t.Fatalf("spec[2] = %#v", spec[2])
	}
	sc, ok := spec[3].(SplitColumn)
	if !ok || sc.Column != 0 || sc.Pattern.String() != ";" {
		t.Fatalf("spec[3] = %#v", spec[3])
	}
	ec, ok := spec[4].(ExpandColumnOnRegex)
	if !ok || ec.Column != 1 || len(ec.OnMatch) != 1 || len(ec.Default) != 1 {
		t.Fatalf("spec[4] = %#v", spec[4])
	}
	wr, ok := spec[5].(WrapRowEveryN)
	if !ok || wr.N != 2 {
		t.Fatalf("spec[5] = %#v", spec[5])
	}
	fr, ok := spec[6].(FoldRows)
	if !ok || len(fr.Groupers) != 3 {
		t.Fatalf("spec[6] = %#v", spec[6])
	}
	if g, ok := fr.Groupers[0].(fold.StaticRowCounts); !ok || !reflect.DeepEqual(g.Counts, []int{2, 3}) {
		t.Fatalf("grouper[0] = %#v", fr.Groupers[0])
	}
	if g, ok := fr.Groupers[1].(fold.EmptyColumn); !ok || g.Column != 1 {
		t.Fatalf("grouper[1] = %#v", fr.Groupers[1])
	}
	if _, ok := fr.Groupers[2].(fold.AllRows); !ok {
		t.Fatalf("grouper[2] = %#v", fr.Groupers[2])
	}
}

func TestSpecExpandPatternMustSpanCell(t *testing.T) {
	src := `
- kind: expand_column_on_regex
  column: 0
  pattern: 'L'
  on_match: ['matched']
  default: ['${0}']
`
	var spec Spec
	if err := yaml.Unmarshal([]byte(src), &spec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// Pattern L appears inside the cell but does not span it; the default
	// templates must win.
	got, err := spec[0].Apply(model.Table{{"XLX"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if want := (model.Table{{"XLX"}}); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSpecUnmarshalErrors(t *testing.T) {
	cases := []struct{ name, src string }{
		{"unknown kind", "- kind: rotate"},
		{"missing kind", "- column: 3"},
		{"not a sequence", "kind: transpose"},
		{"bad n", "- kind: wrap_row_every_n\n  n: 0"},
		{"bad pattern", "- kind: split_column\n  column: 0\n  pattern: '['"},
		{"unknown grouper", "- kind: fold_rows\n  groupers:\n    - kind: sometimes"},
	}
	for _, c := range cases {
		var spec Spec
		err := yaml.Unmarshal([]byte(c.src), &spec)
		if !errors.Is(err, model.ErrConfig) {
			t.Fatalf("%s: err = %v, want ErrConfig", c.name, err)
		}
	}
}
