package scripting

import (
	"context"
	"encoding/json"

	jsonnet "github.com/google/go-jsonnet"

	"github.com/tabfold/tabfold/model"
)

// JsonnetEngine evaluates Jsonnet transforms. The script body is the body of
// function(tables); preloaded modules become importable by name.
type JsonnetEngine struct {
	vm       *jsonnet.VM
	importer *jsonnet.MemoryImporter
}

func NewJsonnetEngine() *JsonnetEngine {
	vm := jsonnet.MakeVM()
	importer := &jsonnet.MemoryImporter{Data: map[string]jsonnet.Contents{}}
	vm.Importer(importer)
	return &JsonnetEngine{vm: vm, importer: importer}
}

func (e *JsonnetEngine) Name() string { return "jsonnet" }

func (e *JsonnetEngine) Preload(ctx context.Context, name, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Jsonnet has no statements to evaluate eagerly; the module becomes
	// visible to scripts as import "name".
	e.importer.Data[name] = jsonnet.MakeContents(source)
	return nil
}

func (e *JsonnetEngine) Transform(ctx context.Context, tables []model.Table, source string) (model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(tables)
	if err != nil {
		return nil, model.Configf("jsonnet: encode tables: %v", err)
	}
	e.vm.TLACode("tables", string(payload))
	out, err := e.vm.EvaluateAnonymousSnippet("transform.jsonnet", "function(tables)\n"+source)
	if err != nil {
		return nil, model.Configf("jsonnet: %v", err)
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		return nil, model.Configf("jsonnet result: %v", err)
	}
	return decodeTable(decoded)
}

func (e *JsonnetEngine) Close() error { return nil }
