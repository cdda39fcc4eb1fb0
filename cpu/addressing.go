package cpu

// AddressingMode names one of the operand-addressing schemes the 6502
// supports. Each opcode is permanently bound to exactly one.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	IndexedIndirect // (d,X)
	IndirectIndexed // (d),Y
	Indirect
	IndirectJMPBug
	Relative
)

// AddressResolution is what addressing-mode decoding hands back to an
// instruction handler: the effective address (meaningless for Implied and
// Accumulator, where the operand lives in a register) and whether indexing
// crossed a page boundary, which feeds the conditional cycle penalty for
// read-kind instructions.
type AddressResolution struct {
	Address     uint16
	PageCrossed bool
}

func page(addr uint16) uint16 { return addr & 0xFF00 }

// resolve decodes the operand for mode, reading the operand bytes that
// follow the opcode (at PC+1 and PC+2; PC itself is left unchanged, Step
// advances it afterwards) and computing the effective address. It never touches memory beyond what the instruction format
// requires — reads here are spec-transparent, not timing-accurate bus
// clocking, since cycle accounting is done once in Step from the opcode
// table rather than per memory access.
func (c *CPU) resolve(mode AddressingMode) (AddressResolution, error) {
	switch mode {
	case Implied, Accumulator:
		return AddressResolution{}, nil

	case Immediate:
		addr := c.PC + 1
		return AddressResolution{Address: addr}, nil

	case ZeroPage:
		b, err := c.Bus.ReadByte(c.PC + 1)
		if err != nil {
			return AddressResolution{}, err
		}
		return AddressResolution{Address: uint16(b)}, nil

	case ZeroPageX:
		b, err := c.Bus.ReadByte(c.PC + 1)
		if err != nil {
			return AddressResolution{}, err
		}
		return AddressResolution{Address: uint16(b + c.X)}, nil

	case ZeroPageY:
		b, err := c.Bus.ReadByte(c.PC + 1)
		if err != nil {
			return AddressResolution{}, err
		}
		return AddressResolution{Address: uint16(b + c.Y)}, nil

	case Absolute:
		w, err := c.Bus.ReadWord(c.PC + 1)
		if err != nil {
			return AddressResolution{}, err
		}
		return AddressResolution{Address: w}, nil

	case AbsoluteX:
		base, err := c.Bus.ReadWord(c.PC + 1)
		if err != nil {
			return AddressResolution{}, err
		}
		addr := base + uint16(c.X)
		return AddressResolution{Address: addr, PageCrossed: page(base) != page(addr)}, nil

	case AbsoluteY:
		base, err := c.Bus.ReadWord(c.PC + 1)
		if err != nil {
			return AddressResolution{}, err
		}
		addr := base + uint16(c.Y)
		return AddressResolution{Address: addr, PageCrossed: page(base) != page(addr)}, nil

	case IndexedIndirect:
		d, err := c.Bus.ReadByte(c.PC + 1)
		if err != nil {
			return AddressResolution{}, err
		}
		p := d + c.X
		lo, err := c.Bus.ReadByte(uint16(p))
		if err != nil {
			return AddressResolution{}, err
		}
		hi, err := c.Bus.ReadByte(uint16(p + 1))
		if err != nil {
			return AddressResolution{}, err
		}
		return AddressResolution{Address: uint16(hi)<<8 | uint16(lo)}, nil

	case IndirectIndexed:
		d, err := c.Bus.ReadByte(c.PC + 1)
		if err != nil {
			return AddressResolution{}, err
		}
		lo, err := c.Bus.ReadByte(uint16(d))
		if err != nil {
			return AddressResolution{}, err
		}
		hi, err := c.Bus.ReadByte(uint16(d + 1))
		if err != nil {
			return AddressResolution{}, err
		}
		base := uint16(hi)<<8 | uint16(lo)
		addr := base + uint16(c.Y)
		return AddressResolution{Address: addr, PageCrossed: page(base) != page(addr)}, nil

	case Indirect:
		ptr, err := c.Bus.ReadWord(c.PC + 1)
		if err != nil {
			return AddressResolution{}, err
		}
		w, err := c.Bus.ReadWord(ptr)
		if err != nil {
			return AddressResolution{}, err
		}
		return AddressResolution{Address: w}, nil

	case IndirectJMPBug:
		ptr, err := c.Bus.ReadWord(c.PC + 1)
		if err != nil {
			return AddressResolution{}, err
		}
		lo, err := c.Bus.ReadByte(ptr)
		if err != nil {
			return AddressResolution{}, err
		}
		// The real 6502 never carries into the high byte of the pointer: a
		// pointer ending in $FF wraps the high-byte fetch to the start of
		// the same page instead of the next one.
		hiAddr := (ptr & 0xFF00) | uint16(byte(ptr)+1)
		hi, err := c.Bus.ReadByte(hiAddr)
		if err != nil {
			return AddressResolution{}, err
		}
		return AddressResolution{Address: uint16(hi)<<8 | uint16(lo)}, nil

	case Relative:
		offset, err := c.Bus.ReadByte(c.PC + 1)
		if err != nil {
			return AddressResolution{}, err
		}
		next := c.PC + 2
		target := next + uint16(int8(offset))
		return AddressResolution{Address: target, PageCrossed: page(next) != page(target)}, nil

	default:
		return AddressResolution{}, nil
	}
}
