// Package scripting lets a table's reshaping logic be written as a small
// script instead of a declarative transform pipeline. A script is a function
// body invoked as function(tables) -> table, where tables is the list of raw
// table payloads (arrays of arrays of strings) and the returned value must be
// one such table.
//
// Engines are per-extraction-session resources: acquire one, optionally
// preload helper modules, run one or more transforms, then Close it. No engine
// is safe for concurrent use; callers running tables in parallel hold one
// engine per worker.
package scripting

import (
	"context"

	"github.com/tabfold/tabfold/model"
)

// Engine runs table-reshaping scripts for one scripting language.
//
// Every script-level failure (syntax error, runtime error, a result that is
// not a table) surfaces as a model.ErrConfig-category error carrying the
// engine's message; engine-specific error types never escape this interface.
type Engine interface {
	// Name identifies the engine ("ecmascript", "jsonnet", "lua").
	Name() string

	// Preload evaluates a helper module in the engine before any transform
	// runs. The name is used for diagnostics and, where the language supports
	// imports, as the importable module name.
	Preload(ctx context.Context, name, source string) error

	// Transform invokes source as function(tables) and returns the resulting
	// table.
	Transform(ctx context.Context, tables []model.Table, source string) (model.Table, error)

	// Close releases the engine. Safe to call after a failed Transform.
	Close() error
}

// New returns a fresh engine for the named language.
func New(name string) (Engine, error) {
	switch name {
	case "ecmascript", "javascript":
		return NewGojaEngine(), nil
	case "jsonnet":
		return NewJsonnetEngine(), nil
	case "lua":
		return NewLuaEngine(), nil
	}
	return nil, model.Configf("unsupported script engine %q", name)
}

// decodeTable structurally validates a decoded JSON value as a table: an
// array of arrays of strings. Any other shape is rejected with the offending
// type named.
func decodeTable(v interface{}) (model.Table, error) {
	rows, ok := v.([]interface{})
	if !ok {
		return nil, model.Configf("script must return an array of rows, got %s", jsonTypeName(v))
	}
	out := make(model.Table, len(rows))
	for i, rv := range rows {
		cells, ok := rv.([]interface{})
		if !ok {
			return nil, model.Configf("script row %d must be an array of strings, got %s", i, jsonTypeName(rv))
		}
		row := make(model.Row, len(cells))
		for j, cv := range cells {
			s, ok := cv.(string)
			if !ok {
				return nil, model.Configf("script cell [%d][%d] must be a string, got %s", i, j, jsonTypeName(cv))
			}
			row[j] = s
		}
		out[i] = row
	}
	return out, nil
}

func jsonTypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	}
	return "unknown value"
}
