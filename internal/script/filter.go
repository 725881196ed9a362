// Package script runs user Lua predicates over discovered peripherals.
//
// A script defines a global function accept(p) returning true for peripherals to keep.
// p is a table with the fields id, name, rssi and named:
//
//	function accept(p)
//	    print("seen", p.id, p.rssi)
//	    return p.named and p.rssi > -70
//	end
//
// Output of print is captured instead of going to stdout; read it with Output.
package script

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aarzilli/golua/lua"
	"github.com/sirupsen/logrus"
	"github.com/smallnest/ringbuffer"

	"github.com/srg/bledisco/internal/discovery"
)

// DefaultOutputCapacity is the byte capacity of the captured print output.
const DefaultOutputCapacity = 64 * 1024

// acceptFunc is the global a filter script must define.
const acceptFunc = "accept"

// Filter is a compiled Lua predicate. It is safe for concurrent use; calls are serialized
// on the single Lua state.
type Filter struct {
	mu     sync.Mutex
	state  *lua.State
	name   string
	logger *logrus.Logger

	output  *ringbuffer.RingBuffer
	dropped int
}

// NewFilter compiles source and checks that it defines accept.
func NewFilter(source, name string, logger *logrus.Logger) (*Filter, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if strings.TrimSpace(source) == "" {
		return nil, &LuaError{Type: "api", Message: "empty script", Source: name}
	}

	f := &Filter{
		state:  lua.NewState(),
		name:   name,
		logger: logger,
		output: ringbuffer.New(DefaultOutputCapacity),
	}
	f.state.OpenLibs()
	f.registerPrintCapture()

	if status := f.state.LoadString(source); status != 0 {
		err := parseLuaMessage("syntax", name, f.popMessage())
		f.Close()
		return nil, err
	}
	if err := f.state.Call(0, 0); err != nil {
		luaErr := parseLuaMessage("runtime", name, err.Error())
		luaErr.Underlying = err
		f.Close()
		return nil, luaErr
	}

	f.state.GetGlobal(acceptFunc)
	defined := f.state.IsFunction(-1)
	f.state.Pop(1)
	if !defined {
		f.Close()
		return nil, &LuaError{Type: "api", Message: "script must define function accept(p)", Source: name}
	}

	logger.WithField("script", name).Debug("Lua filter loaded")
	return f, nil
}

// LoadFilterFile reads and compiles a filter script from path.
func LoadFilterFile(path string, logger *logrus.Logger) (*Filter, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return NewFilter(string(content), path, logger)
}

// Accept calls accept(p). A script error leaves the peripheral rejected.
func (f *Filter) Accept(p discovery.Peripheral) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == nil {
		return false, &LuaError{Type: "api", Message: "filter is closed", Source: f.name}
	}

	L := f.state
	L.GetGlobal(acceptFunc)
	f.pushPeripheral(p)
	if err := L.Call(1, 1); err != nil {
		luaErr := parseLuaMessage("runtime", f.name, err.Error())
		luaErr.Underlying = err
		f.logger.WithFields(logrus.Fields{
			"script": f.name,
			"id":     p.ID,
			"error":  luaErr,
		}).Warn("Lua filter failed")
		return false, luaErr
	}
	defer L.Pop(1)

	return L.ToBoolean(-1), nil
}

// Output drains the text printed by the script so far.
func (f *Filter) Output() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.output.IsEmpty() {
		return ""
	}
	buf := make([]byte, f.output.Length())
	n, err := f.output.TryRead(buf)
	if err != nil && !errors.Is(err, ringbuffer.ErrIsEmpty) {
		f.logger.WithError(err).Debug("Failed to drain Lua output")
	}
	out := string(buf[:n])
	if f.dropped > 0 {
		out += fmt.Sprintf("[%d bytes of output dropped]\n", f.dropped)
		f.dropped = 0
	}
	return out
}

// Close releases the Lua state.
func (f *Filter) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != nil {
		f.state.Close()
		f.state = nil
	}
}

func (f *Filter) pushPeripheral(p discovery.Peripheral) {
	L := f.state
	_, named := p.Name()

	L.NewTable()
	L.PushString(p.ID)
	L.SetField(-2, "id")
	L.PushString(p.DisplayName())
	L.SetField(-2, "name")
	L.PushInteger(int64(p.RSSI))
	L.SetField(-2, "rssi")
	L.PushBoolean(named)
	L.SetField(-2, "named")
}

// registerPrintCapture replaces print so script output lands in the output buffer.
func (f *Filter) registerPrintCapture() {
	f.state.PushGoFunction(func(L *lua.State) int {
		top := L.GetTop()
		parts := make([]string, 0, top)
		for i := 1; i <= top; i++ {
			switch {
			case L.IsNil(i):
				parts = append(parts, "nil")
			case L.IsBoolean(i):
				parts = append(parts, fmt.Sprintf("%t", L.ToBoolean(i)))
			case L.IsNumber(i):
				parts = append(parts, fmt.Sprintf("%v", L.ToNumber(i)))
			case L.IsString(i):
				parts = append(parts, L.ToString(i))
			default:
				L.GetGlobal("tostring")
				L.PushValue(i)
				L.Call(1, 1)
				parts = append(parts, L.ToString(-1))
				L.Pop(1)
			}
		}

		line := []byte(strings.Join(parts, "\t") + "\n")
		n, err := f.output.Write(line)
		if errors.Is(err, ringbuffer.ErrIsFull) || n < len(line) {
			f.dropped += len(line) - n
		}
		return 0
	})
	f.state.SetGlobal("print")
}

// popMessage pops the error message left on the stack by a failed load.
func (f *Filter) popMessage() string {
	if f.state.GetTop() == 0 {
		return "unknown Lua error"
	}
	msg := "non-string error object"
	if f.state.IsString(-1) {
		msg = f.state.ToString(-1)
	}
	f.state.Pop(1)
	return msg
}
