// Package transform implements the declarative table-reshaping pipeline: an
// ordered list of tagged operations applied to a flattened table, finishing
// with a whitespace-normalization pass over every cell.
package transform

import (
	"github.com/tabfold/tabfold/model"
)

// Transform is one reshaping stage. Apply may return the input slice modified
// in place or a freshly built table; callers must not rely on the input
// surviving.
type Transform interface {
	Apply(t model.Table) (model.Table, error)
}

// Spec is a table's configured transform pipeline, applied strictly in order.
type Spec []Transform

// Apply runs every stage of the spec over the table, then normalizes
// whitespace in each cell (internal runs collapse to one space, ends are
// trimmed). The first failing stage aborts the pipeline.
func Apply(spec Spec, t model.Table) (model.Table, error) {
	var err error
	for _, stage := range spec {
		t, err = stage.Apply(t)
		if err != nil {
			return nil, err
		}
	}
	return t.Normalize(), nil
}
