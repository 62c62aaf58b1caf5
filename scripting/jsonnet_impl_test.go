package scripting

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tabfold/tabfold/model"
)

func TestJsonnetIdentity(t *testing.T) {
	e := NewJsonnetEngine()
	defer e.Close()

	got, err := e.Transform(context.Background(), sampleTables, "tables[0]")
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if !reflect.DeepEqual(got, sampleTables[0]) {
		t.Fatalf("got %v, want %v", got, sampleTables[0])
	}
}

func TestJsonnetReshape(t *testing.T) {
	e := NewJsonnetEngine()
	defer e.Close()

	src := `[[row[1], row[0]] for table in tables for row in table]`
	got, err := e.Transform(context.Background(), sampleTables, src)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	want := model.Table{{"1", "a"}, {"2", "b"}, {"3", "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestJsonnetPreloadedModuleImportable(t *testing.T) {
	e := NewJsonnetEngine()
	defer e.Close()

	if err := e.Preload(context.Background(), "helpers.libsonnet", `{ first(ts): [ts[0][0]] }`); err != nil {
		t.Fatalf("preload: %v", err)
	}
	src := `local h = import "helpers.libsonnet"; h.first(tables)`
	got, err := e.Transform(context.Background(), sampleTables, src)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if want := (model.Table{{"a", "1"}}); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestJsonnetNonTableResultIsConfigError(t *testing.T) {
	e := NewJsonnetEngine()
	defer e.Close()

	for _, src := range []string{`"not an array"`, `[1, 2]`, `[["x", 3]]`, `{rows: []}`} {
		if _, err := e.Transform(context.Background(), sampleTables, src); !errors.Is(err, model.ErrConfig) {
			t.Fatalf("%s: err = %v, want ErrConfig", src, err)
		}
	}
}

func TestJsonnetSyntaxErrorIsConfigError(t *testing.T) {
	e := NewJsonnetEngine()
	defer e.Close()

	if _, err := e.Transform(context.Background(), sampleTables, "[[["); !errors.Is(err, model.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}
