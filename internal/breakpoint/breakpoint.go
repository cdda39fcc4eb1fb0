// Package breakpoint compiles a JavaScript boolean expression once and
// evaluates it once per CPU step against a snapshot of registers and a
// memory-peek function, for the --break flag on cmd/nesrun and the watch
// pane on cmd/nesdbg.
package breakpoint

import (
	"fmt"

	"github.com/robertkrimen/otto"
)

// Snapshot is the register/cycle state an expression can read by name:
// pc, a, x, y, p, sp, cycles. It also gets a peek(addr) host function
// backed by whatever the caller wires in.
type Snapshot struct {
	PC     uint16
	A      byte
	X      byte
	Y      byte
	P      byte
	SP     byte
	Cycles uint64
	Peek   func(addr uint16) byte
}

// Expression is a compiled breakpoint predicate. Compiling once up front
// and reusing the otto.Script across calls avoids re-parsing the source on
// every single CPU step.
type Expression struct {
	vm     *otto.Otto
	script *otto.Script
	source string
}

// Compile parses source as a JavaScript expression. A syntax error is
// reported immediately rather than on first evaluation.
func Compile(source string) (*Expression, error) {
	vm := otto.New()
	script, err := vm.Compile("breakpoint", source)
	if err != nil {
		return nil, fmt.Errorf("breakpoint: compile %q: %w", source, err)
	}
	return &Expression{vm: vm, script: script, source: source}, nil
}

// Eval runs the compiled expression against snap and reports whether it's
// truthy. Each call rebinds the snapshot bindings, so the same Expression
// can be evaluated every step with fresh register values.
func (e *Expression) Eval(snap Snapshot) (bool, error) {
	if err := e.vm.Set("pc", snap.PC); err != nil {
		return false, err
	}
	if err := e.vm.Set("a", snap.A); err != nil {
		return false, err
	}
	if err := e.vm.Set("x", snap.X); err != nil {
		return false, err
	}
	if err := e.vm.Set("y", snap.Y); err != nil {
		return false, err
	}
	if err := e.vm.Set("p", snap.P); err != nil {
		return false, err
	}
	if err := e.vm.Set("sp", snap.SP); err != nil {
		return false, err
	}
	if err := e.vm.Set("cycles", snap.Cycles); err != nil {
		return false, err
	}
	peek := snap.Peek
	if err := e.vm.Set("peek", func(addr uint16) byte {
		if peek == nil {
			return 0
		}
		return peek(addr)
	}); err != nil {
		return false, err
	}

	val, err := e.vm.Run(e.script)
	if err != nil {
		return false, fmt.Errorf("breakpoint: eval %q: %w", e.source, err)
	}
	return val.ToBoolean()
}

// String returns the original expression source.
func (e *Expression) String() string { return e.source }
