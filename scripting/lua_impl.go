package scripting

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/tabfold/tabfold/model"
)

// LuaEngine runs Lua transforms on an embedded gopher-lua state. The script
// body becomes the body of function(tables); the returned Lua table is
// converted back into rows of strings.
type LuaEngine struct {
	state *lua.LState
}

func NewLuaEngine() *LuaEngine {
	return &LuaEngine{state: lua.NewState()}
}

func (e *LuaEngine) Name() string { return "lua" }

func (e *LuaEngine) Preload(ctx context.Context, name, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.state.DoString(source); err != nil {
		return model.Configf("lua module %q: %v", name, err)
	}
	return nil
}

func (e *LuaEngine) Transform(ctx context.Context, tables []model.Table, source string) (model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.state.SetContext(ctx)
	defer e.state.RemoveContext()

	if err := e.state.DoString("return function(tables)\n" + source + "\nend"); err != nil {
		return nil, model.Configf("lua: %v", err)
	}
	fn := e.state.Get(-1)
	e.state.Pop(1)

	err := e.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, e.tablesToLua(tables))
	if err != nil {
		if ctxErr(err) {
			return nil, err
		}
		return nil, model.Configf("lua: %v", err)
	}
	ret := e.state.Get(-1)
	e.state.Pop(1)

	decoded, err := luaToGo(ret)
	if err != nil {
		return nil, err
	}
	return decodeTable(decoded)
}

func (e *LuaEngine) Close() error {
	e.state.Close()
	return nil
}

func (e *LuaEngine) tablesToLua(tables []model.Table) *lua.LTable {
	out := e.state.NewTable()
	for _, t := range tables {
		lt := e.state.NewTable()
		for _, row := range t {
			lr := e.state.NewTable()
			for _, cell := range row {
				lr.Append(lua.LString(cell))
			}
			lt.Append(lr)
		}
		out.Append(lt)
	}
	return out
}

// luaToGo maps a Lua value onto the JSON-like shape decodeTable validates.
// Sequence tables become arrays; anything keyed becomes an object so that the
// shape error can name it.
func luaToGo(v lua.LValue) (interface{}, error) {
	switch lv := v.(type) {
	case lua.LString:
		return string(lv), nil
	case lua.LNumber:
		return float64(lv), nil
	case lua.LBool:
		return bool(lv), nil
	case *lua.LNilType:
		return nil, nil
	case *lua.LTable:
		n := lv.Len()
		keyed := false
		lv.ForEach(func(k, _ lua.LValue) {
			if _, ok := k.(lua.LNumber); !ok {
				keyed = true
			}
		})
		if keyed {
			return map[string]interface{}{}, nil
		}
		out := make([]interface{}, 0, n)
		for i := 1; i <= n; i++ {
			elem, err := luaToGo(lv.RawGetInt(i))
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	}
	return nil, model.Configf("script returned unsupported lua value %s", v.Type().String())
}
