package scene

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/kins/internal/event"
	"github.com/dshills/kins/internal/event/topic"
)

// handlerGlobals are set for the duration of each Lua handler call and
// restored afterwards so nested publishes do not clobber the caller.
var handlerGlobals = []string{"event", "payload", "label", "stop", "publish"}

// scripts runs the Lua handlers of one scene on a shared interpreter.
type scripts struct {
	L       *lua.LState
	logger  zerolog.Logger
	timeout time.Duration
	depth   int
}

func newScripts(logger zerolog.Logger, timeout time.Duration) (*scripts, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("opening lua %s library: %w", lib.name, err)
		}
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	s := &scripts{L: L, logger: logger, timeout: timeout}
	L.SetGlobal("print", L.NewFunction(s.print))
	return s, nil
}

func (s *scripts) print(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	label := ""
	if v, ok := L.GetGlobal("label").(lua.LString); ok {
		label = string(v)
	}
	s.logger.Info().Str("node", label).Msg(strings.Join(parts, "\t"))
	return 0
}

func (s *scripts) compile(name, code string) (*lua.LFunction, error) {
	fn, err := s.L.LoadString(code)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return fn, nil
}

// handler wraps a compiled chunk as an event handler. Script errors are
// logged and reply nil.
func (s *scripts) handler(name string, fn *lua.LFunction, stop bool) event.Handler {
	return event.HandlerFunc(func(evt *event.Event, payload any) any {
		reply, err := s.call(fn, evt, payload)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("handler", name).
				Str("event", evt.Name.String()).
				Msg("lua handler failed")
			return nil
		}
		if stop {
			evt.Stop()
		}
		return reply
	})
}

func (s *scripts) call(fn *lua.LFunction, evt *event.Event, payload any) (any, error) {
	L := s.L

	saved := make([]lua.LValue, len(handlerGlobals))
	for i, name := range handlerGlobals {
		saved[i] = L.GetGlobal(name)
	}
	defer func() {
		for i, name := range handlerGlobals {
			L.SetGlobal(name, saved[i])
		}
	}()

	target := evt.CurrentTarget()
	L.SetGlobal("event", s.eventTable(evt))
	L.SetGlobal("payload", toLua(L, payload))
	L.SetGlobal("label", lua.LString(target.Label()))
	L.SetGlobal("stop", L.NewFunction(func(*lua.LState) int {
		evt.Stop()
		return 0
	}))
	L.SetGlobal("publish", L.NewFunction(func(L *lua.LState) int {
		dir, err := event.ParseDirection(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		name := topic.Topic(L.CheckString(2))
		if !name.IsValid() {
			L.ArgError(2, "invalid event name")
			return 0
		}
		replies := target.Publish(dir, name, fromLua(L.Get(3)), nil)
		L.Push(toLua(L, replies))
		return 1
	}))

	if s.depth == 0 && s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		L.SetContext(ctx)
		defer func() {
			L.RemoveContext()
			cancel()
		}()
	}
	s.depth++
	defer func() { s.depth-- }()

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return nil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return fromLua(ret), nil
}

func (s *scripts) eventTable(evt *event.Event) *lua.LTable {
	t := s.L.NewTable()
	t.RawSetString("name", lua.LString(evt.Name.String()))
	t.RawSetString("id", lua.LString(evt.ID))
	t.RawSetString("direction", lua.LString(evt.Direction.String()))
	t.RawSetString("source", lua.LString(evt.Source().Label()))
	t.RawSetString("target", lua.LString(evt.CurrentTarget().Label()))
	return t
}

func (s *scripts) close() {
	s.L.Close()
}
