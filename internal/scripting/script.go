package scripting

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ErrNoFunction is returned by Call when the script defines no such global function.
var ErrNoFunction = errors.New("function not defined")

// Script is one loaded Lua chunk. Calls are serialised because an LState is
// single-threaded; each call gets a fresh instruction budget.
type Script struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
	name  string
}

// Setup prepares a fresh sandbox before a chunk runs, typically by
// registering globals.
type Setup func(L *lua.LState)

// LoadFile loads and runs the Lua file at path in a new sandbox.
//
// Precondition: path must name a readable Lua file; setup may be nil.
// Postcondition: Returns a ready Script or an error; the caller must Close it.
func LoadFile(path string, instLimit int, setup Setup) (*Script, error) {
	return load(path, instLimit, setup, func(L *lua.LState) error { return L.DoFile(path) })
}

// LoadString is LoadFile for an in-memory chunk.
func LoadString(name, src string, instLimit int, setup Setup) (*Script, error) {
	return load(name, instLimit, setup, func(L *lua.LState) error { return L.DoString(src) })
}

func load(name string, instLimit int, setup Setup, run func(*lua.LState) error) (*Script, error) {
	L := NewSandboxedState(instLimit)
	if setup != nil {
		setup(L)
	}
	if err := run(L); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading %q: %w", name, err)
	}
	return &Script{L: L, limit: effectiveLimit(instLimit), name: name}, nil
}

// Call invokes the global function fn with args and returns its first result.
//
// Postcondition: Returns ErrNoFunction if fn is undefined, or the Lua runtime
// error, including exhaustion of the instruction budget.
func (s *Script) Call(fn string, args ...lua.LValue) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return lua.LNil, fmt.Errorf("scripting: %s.%s: %w", s.name, fn, ErrNoFunction)
	}

	ctx, cancel := newCountingContext(s.limit)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	if err := s.L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, args...); err != nil {
		return lua.LNil, fmt.Errorf("scripting: %s.%s: %w", s.name, fn, err)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}

// Close releases the VM.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.L.Close()
}
