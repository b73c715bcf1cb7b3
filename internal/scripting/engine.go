package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// BarAPI is the slice of the server that scripts may drive. Players are
// addressed by name. A bar shown by a script pins the player, keeping the
// rotation away until Release.
type BarAPI interface {
	Show(name, text string, fraction float64) error
	Remove(name string) bool
	Release(name string) bool
	Players() []string
}

// Engine wraps a single gopher-lua VM for server scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	api BarAPI
	log *zap.Logger
}

// NewEngine creates a Lua engine, installs the bossbar module and loads all
// scripts from the given directory.
func NewEngine(scriptsDir string, api BarAPI, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, api: api, log: log.Named("lua")}
	e.installBossbar()

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua in the engine's VM.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// installBossbar registers the global bossbar table:
//
//	bossbar.show(name, text, fraction) -> true | false, err
//	bossbar.remove(name)               -> bool
//	bossbar.release(name)              -> bool
//	bossbar.players()                  -> { name, ... }
func (e *Engine) installBossbar() {
	mod := e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"show":    e.luaShow,
		"remove":  e.luaRemove,
		"release": e.luaRelease,
		"players": e.luaPlayers,
	})
	e.vm.SetGlobal("bossbar", mod)
}

func (e *Engine) luaShow(L *lua.LState) int {
	name := L.CheckString(1)
	text := L.OptString(2, "")
	fraction := float64(L.OptNumber(3, 1))

	if err := e.api.Show(name, text, fraction); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

func (e *Engine) luaRemove(L *lua.LState) int {
	L.Push(lua.LBool(e.api.Remove(L.CheckString(1))))
	return 1
}

func (e *Engine) luaRelease(L *lua.LState) int {
	L.Push(lua.LBool(e.api.Release(L.CheckString(1))))
	return 1
}

func (e *Engine) luaPlayers(L *lua.LState) int {
	t := L.NewTable()
	for _, name := range e.api.Players() {
		t.Append(lua.LString(name))
	}
	L.Push(t)
	return 1
}

// OnJoin calls the optional on_join(name) hook.
func (e *Engine) OnJoin(name string) {
	e.callHook("on_join", lua.LString(name))
}

// OnTick calls the optional on_tick(tick) hook.
func (e *Engine) OnTick(tick int64) {
	e.callHook("on_tick", lua.LNumber(tick))
}

// HasHook reports whether a script defined the named global function.
func (e *Engine) HasHook(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

func (e *Engine) callHook(name string, args ...lua.LValue) {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua hook error", zap.String("hook", name), zap.Error(err))
	}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
