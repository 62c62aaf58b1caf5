package scripting

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dop251/goja"

	"github.com/tabfold/tabfold/model"
)

// GojaEngine runs ECMAScript transforms on an embedded goja runtime. One
// runtime lives for the engine's lifetime, so preloaded globals stay visible
// to later transforms.
type GojaEngine struct {
	vm *goja.Runtime
}

func NewGojaEngine() *GojaEngine {
	return &GojaEngine{vm: goja.New()}
}

func (e *GojaEngine) Name() string { return "ecmascript" }

func (e *GojaEngine) Preload(ctx context.Context, name, source string) error {
	if _, err := e.run(ctx, source); err != nil {
		if ctxErr(err) {
			return err
		}
		return model.Configf("ecmascript module %q: %v", name, err)
	}
	return nil
}

func (e *GojaEngine) Transform(ctx context.Context, tables []model.Table, source string) (model.Table, error) {
	payload, err := json.Marshal(tables)
	if err != nil {
		return nil, model.Configf("ecmascript: encode tables: %v", err)
	}
	if err := e.vm.Set("__tabfoldInput", string(payload)); err != nil {
		return nil, model.Configf("ecmascript: %v", err)
	}
	// The script body becomes function(tables); the result round-trips
	// through JSON so only plain data can cross the boundary.
	script := "JSON.stringify((function(tables) {\n" + source + "\n})(JSON.parse(__tabfoldInput)))"
	val, err := e.run(ctx, script)
	if err != nil {
		if ctxErr(err) {
			return nil, err
		}
		return nil, model.Configf("ecmascript: %v", err)
	}
	raw, ok := val.Export().(string)
	if !ok {
		return nil, model.Configf("script must return an array of rows, got %s", jsonTypeName(val.Export()))
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, model.Configf("ecmascript result: %v", err)
	}
	return decodeTable(decoded)
}

func (e *GojaEngine) Close() error {
	e.vm.ClearInterrupt()
	return nil
}

// run evaluates a script with the runtime interruptible by ctx.
func (e *GojaEngine) run(ctx context.Context, script string) (goja.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val, nil
}

// ctxErr reports whether err is a cancellation, which propagates as-is rather
// than being folded into the configuration category.
func ctxErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
