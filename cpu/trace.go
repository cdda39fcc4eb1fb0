package cpu

import (
	"fmt"
	"strings"
)

// writeTrace emits one trace line for the instruction about to execute,
// before any register or memory state changes. The format is fixed-width
// and upper-cased so traces are comparable byte-for-byte across runs:
// four-hex PC, the opcode and operand bytes padded to a six-column field,
// the disassembled mnemonic padded to 31 columns, then the register file
// and a cycle counter folded into a 0-340 PPU-dot-aligned range.
func (c *CPU) writeTrace(pc uint16, opByte byte, op Opcode) error {
	operandBytes := make([]byte, 0, 2)
	for i := 1; i < op.Bytes; i++ {
		b, err := c.Bus.ReadByte(pc + uint16(i))
		if err != nil {
			return err
		}
		operandBytes = append(operandBytes, b)
	}

	var byteField strings.Builder
	for i, b := range operandBytes {
		if i > 0 {
			byteField.WriteByte(' ')
		}
		fmt.Fprintf(&byteField, "%02X", b)
	}
	bytesCol := fmt.Sprintf("%-6s", byteField.String())

	disasm := fmt.Sprintf("%s %s", op.Mnemonic, c.formatOperand(op.Mode, pc, operandBytes))
	disasm = strings.TrimRight(disasm, " ")

	line := fmt.Sprintf("%04X  %02X %s %-31s A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%3d",
		pc, opByte, bytesCol, disasm, c.A, c.X, c.Y, c.P, c.SP, (c.Cycles*3)%341)

	_, err := fmt.Fprintln(c.trace, strings.ToUpper(line))
	return err
}

// formatOperand renders the operand portion of a disassembled instruction
// in traditional 6502 assembler syntax. For Relative mode the already
// target-resolved address is shown, matching how reference traces print
// branch targets rather than raw signed offsets.
func (c *CPU) formatOperand(mode AddressingMode, pc uint16, operand []byte) string {
	word := func() uint16 {
		if len(operand) < 2 {
			return 0
		}
		return uint16(operand[1])<<8 | uint16(operand[0])
	}
	byt := func() byte {
		if len(operand) < 1 {
			return 0
		}
		return operand[0]
	}

	switch mode {
	case Implied:
		return ""
	case Accumulator:
		return "A"
	case Immediate:
		return fmt.Sprintf("#$%02X", byt())
	case ZeroPage:
		return fmt.Sprintf("$%02X", byt())
	case ZeroPageX:
		return fmt.Sprintf("$%02X,X", byt())
	case ZeroPageY:
		return fmt.Sprintf("$%02X,Y", byt())
	case Absolute:
		return fmt.Sprintf("$%04X", word())
	case AbsoluteX:
		return fmt.Sprintf("$%04X,X", word())
	case AbsoluteY:
		return fmt.Sprintf("$%04X,Y", word())
	case IndexedIndirect:
		return fmt.Sprintf("($%02X,X)", byt())
	case IndirectIndexed:
		return fmt.Sprintf("($%02X),Y", byt())
	case Indirect, IndirectJMPBug:
		return fmt.Sprintf("($%04X)", word())
	case Relative:
		next := pc + 2
		return fmt.Sprintf("$%04X", next+uint16(int8(byt())))
	default:
		return ""
	}
}
