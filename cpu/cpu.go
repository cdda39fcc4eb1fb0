// Package cpu implements the 6502 instruction set: opcode dispatch,
// addressing-mode decoding, flag arithmetic, stack discipline, and
// cycle-accurate timing, driven one instruction at a time by Step.
package cpu

import (
	"io"

	"github.com/n6502/nesvm/internal/nlog"
)

const (
	stackBase = 0x0100
	nmiVector = 0xFFFA
	resetVec  = 0xFFFC
	irqVector = 0xFFFE
)

// status is a bitmask into the P register.
type status byte

const (
	flagCarry status = 1 << iota
	flagZero
	flagInterruptDisable
	flagDecimal // present on the die, never consulted: this target has no BCD mode.
	flagBreak   // only meaningful in the byte pushed by PHP/BRK, never in live P.
	flagUnused  // always reads back as 1.
	flagOverflow
	flagNegative
)

// Bus is the memory interface a CPU steps against. *bus.Bus satisfies it.
type Bus interface {
	ReadByte(addr uint16) (byte, error)
	ReadWord(addr uint16) (uint16, error)
	WriteByte(addr uint16, value byte) error
}

// CPU holds the complete register file and drives execution against a Bus.
// Nothing here is safe for concurrent use — per the single-threaded
// execution model, callers serialize all access themselves.
type CPU struct {
	PC uint16
	SP byte
	A  byte
	X  byte
	Y  byte
	P  byte

	Cycles uint64

	Bus Bus

	// trace, when non-nil, receives one formatted line per Step call,
	// emitted before the instruction executes.
	trace io.Writer
	log   *nlog.Logger

	// curOpcode is the byte Step just fetched, stashed so handlers that
	// fail unconditionally (KIL, the hardware-unstable illegal opcodes) can
	// report which opcode triggered without threading it through every
	// handler signature.
	curOpcode byte
}

// New constructs a CPU wired to bus, with the power-on register state real
// 6502-based consoles reset into: interrupts disabled and the unused status
// bit 5 forced on (P = $24).
func New(bus Bus) *CPU {
	return &CPU{
		SP:  0xFD,
		P:   byte(flagInterruptDisable | flagUnused),
		Bus: bus,
		log: nlog.Default(),
	}
}

// SetTrace directs per-instruction trace lines to w. A nil w (the default)
// disables tracing.
func (c *CPU) SetTrace(w io.Writer) { c.trace = w }

// SetLogger overrides the logger used for diagnostic messages.
func (c *CPU) SetLogger(l *nlog.Logger) {
	if l != nil {
		c.log = l
	}
}

// Step fetches, decodes, traces, and executes exactly one instruction,
// advancing PC and Cycles by the amounts its opcode and operand bytes
// demand. A read/write error anywhere in the fetch-decode-execute sequence
// (an unimplemented bus region, an unknown opcode, a jammed or hardware-
// unstable illegal opcode) aborts the step and is returned verbatim; PC,
// registers, and Cycles are left exactly as they stood at the point of
// failure.
func (c *CPU) Step() error {
	startPC := c.PC

	opByte, err := c.Bus.ReadByte(startPC)
	if err != nil {
		return err
	}

	op := opcodeTable[opByte]
	if op.Handler == nil {
		return ErrUnknownOpcode{Opcode: opByte}
	}
	c.curOpcode = opByte

	if c.trace != nil {
		if err := c.writeTrace(startPC, opByte, op); err != nil {
			return err
		}
	}

	// resolve reads operand bytes relative to PC still pointing at the
	// opcode byte (pc+1, pc+2); only after decoding do we advance PC past
	// the whole instruction. Handlers that redirect control flow (JMP, JSR,
	// branches, RTS, RTI) overwrite PC themselves afterward.
	res, err := c.resolve(op.Mode)
	if err != nil {
		return err
	}
	c.PC = startPC + uint16(op.Bytes)

	extra, err := op.Handler(c, op.Mode, res)
	if err != nil {
		return err
	}

	cycles := op.Cycles
	if op.BonusOnPageCross && res.PageCrossed {
		cycles++
	}
	c.Cycles += uint64(cycles + extra)

	return nil
}

func (c *CPU) setZN(v byte) {
	if v == 0 {
		c.P |= byte(flagZero)
	} else {
		c.P &^= byte(flagZero)
	}
	if v&0x80 != 0 {
		c.P |= byte(flagNegative)
	} else {
		c.P &^= byte(flagNegative)
	}
}

func (c *CPU) setFlag(f status, on bool) {
	if on {
		c.P |= byte(f)
	} else {
		c.P &^= byte(f)
	}
}

func (c *CPU) flagSet(f status) bool { return c.P&byte(f) != 0 }

func (c *CPU) push(v byte) error {
	if err := c.Bus.WriteByte(stackBase+uint16(c.SP), v); err != nil {
		return err
	}
	c.SP--
	return nil
}

func (c *CPU) pop() (byte, error) {
	c.SP++
	return c.Bus.ReadByte(stackBase + uint16(c.SP))
}

func (c *CPU) pushWord(w uint16) error {
	if err := c.push(byte(w >> 8)); err != nil {
		return err
	}
	return c.push(byte(w))
}

func (c *CPU) popWord() (uint16, error) {
	lo, err := c.pop()
	if err != nil {
		return 0, err
	}
	hi, err := c.pop()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// operand reads the byte an instruction operates on: the accumulator for
// Accumulator mode, or the resolved memory address for everything else.
func (c *CPU) operand(mode AddressingMode, res AddressResolution) (byte, error) {
	if mode == Accumulator {
		return c.A, nil
	}
	return c.Bus.ReadByte(res.Address)
}

// storeOperand writes back the result of a read-modify-write instruction to
// wherever operand read it from.
func (c *CPU) storeOperand(mode AddressingMode, res AddressResolution, v byte) error {
	if mode == Accumulator {
		c.A = v
		return nil
	}
	return c.Bus.WriteByte(res.Address, v)
}
