package cpu

// Each handler has the signature (c *CPU, mode AddressingMode, res
// AddressResolution) (extra int, err error). extra is almost always 0 — it
// exists for the one case a handler's own cycle cost depends on what it did
// rather than purely on the opcode and addressing mode: conditional branch
// penalties.

func (c *CPU) opLDA(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	c.A = v
	c.setZN(c.A)
	return 0, nil
}

func (c *CPU) opLDX(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	c.X = v
	c.setZN(c.X)
	return 0, nil
}

func (c *CPU) opLDY(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	c.Y = v
	c.setZN(c.Y)
	return 0, nil
}

func (c *CPU) opSTA(mode AddressingMode, res AddressResolution) (int, error) {
	return 0, c.Bus.WriteByte(res.Address, c.A)
}

func (c *CPU) opSTX(mode AddressingMode, res AddressResolution) (int, error) {
	return 0, c.Bus.WriteByte(res.Address, c.X)
}

func (c *CPU) opSTY(mode AddressingMode, res AddressResolution) (int, error) {
	return 0, c.Bus.WriteByte(res.Address, c.Y)
}

func (c *CPU) opTAX(mode AddressingMode, res AddressResolution) (int, error) {
	c.X = c.A
	c.setZN(c.X)
	return 0, nil
}

func (c *CPU) opTAY(mode AddressingMode, res AddressResolution) (int, error) {
	c.Y = c.A
	c.setZN(c.Y)
	return 0, nil
}

func (c *CPU) opTXA(mode AddressingMode, res AddressResolution) (int, error) {
	c.A = c.X
	c.setZN(c.A)
	return 0, nil
}

func (c *CPU) opTYA(mode AddressingMode, res AddressResolution) (int, error) {
	c.A = c.Y
	c.setZN(c.A)
	return 0, nil
}

func (c *CPU) opTSX(mode AddressingMode, res AddressResolution) (int, error) {
	c.X = c.SP
	c.setZN(c.X)
	return 0, nil
}

// opTXS copies X into SP with no flag update — unlike every other transfer,
// since SP isn't a data register the zero/negative flags describe.
func (c *CPU) opTXS(mode AddressingMode, res AddressResolution) (int, error) {
	c.SP = c.X
	return 0, nil
}

func (c *CPU) doADC(v byte) {
	a := uint16(c.A)
	m := uint16(v)
	carry := uint16(0)
	if c.flagSet(flagCarry) {
		carry = 1
	}
	sum := a + m + carry
	result := byte(sum)

	c.setFlag(flagCarry, sum > 0xFF)
	c.setFlag(flagOverflow, (a^m)&0x80 == 0 && (a^sum)&0x80 != 0)
	c.A = result
	c.setZN(c.A)
}

func (c *CPU) opADC(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.operand(mode, res)
	if err != nil {
		return 0, err
	}
	c.doADC(v)
	return 0, nil
}

func (c *CPU) opSBC(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.operand(mode, res)
	if err != nil {
		return 0, err
	}
	// Subtraction on this chip is addition of the bitwise complement; doADC
	// already implements the carry-in/overflow arithmetic SBC needs.
	c.doADC(v ^ 0xFF)
	return 0, nil
}

func (c *CPU) opAND(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.operand(mode, res)
	if err != nil {
		return 0, err
	}
	c.A &= v
	c.setZN(c.A)
	return 0, nil
}

func (c *CPU) opORA(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.operand(mode, res)
	if err != nil {
		return 0, err
	}
	c.A |= v
	c.setZN(c.A)
	return 0, nil
}

func (c *CPU) opEOR(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.operand(mode, res)
	if err != nil {
		return 0, err
	}
	c.A ^= v
	c.setZN(c.A)
	return 0, nil
}

func (c *CPU) opBIT(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	c.setFlag(flagZero, c.A&v == 0)
	c.setFlag(flagOverflow, v&0x40 != 0)
	c.setFlag(flagNegative, v&0x80 != 0)
	return 0, nil
}

func (c *CPU) doASL(v byte) byte {
	c.setFlag(flagCarry, v&0x80 != 0)
	r := v << 1
	c.setZN(r)
	return r
}

func (c *CPU) doLSR(v byte) byte {
	c.setFlag(flagCarry, v&0x01 != 0)
	r := v >> 1
	c.setZN(r)
	return r
}

func (c *CPU) doROL(v byte) byte {
	carryIn := byte(0)
	if c.flagSet(flagCarry) {
		carryIn = 1
	}
	c.setFlag(flagCarry, v&0x80 != 0)
	r := (v << 1) | carryIn
	c.setZN(r)
	return r
}

func (c *CPU) doROR(v byte) byte {
	carryIn := byte(0)
	if c.flagSet(flagCarry) {
		carryIn = 0x80
	}
	c.setFlag(flagCarry, v&0x01 != 0)
	r := (v >> 1) | carryIn
	c.setZN(r)
	return r
}

func (c *CPU) opASL(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.operand(mode, res)
	if err != nil {
		return 0, err
	}
	return 0, c.storeOperand(mode, res, c.doASL(v))
}

func (c *CPU) opLSR(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.operand(mode, res)
	if err != nil {
		return 0, err
	}
	return 0, c.storeOperand(mode, res, c.doLSR(v))
}

func (c *CPU) opROL(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.operand(mode, res)
	if err != nil {
		return 0, err
	}
	return 0, c.storeOperand(mode, res, c.doROL(v))
}

func (c *CPU) opROR(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.operand(mode, res)
	if err != nil {
		return 0, err
	}
	return 0, c.storeOperand(mode, res, c.doROR(v))
}

func (c *CPU) doCompare(reg, v byte) {
	c.setFlag(flagCarry, reg >= v)
	c.setFlag(flagZero, reg == v)
	c.setFlag(flagNegative, (reg-v)&0x80 != 0)
}

func (c *CPU) opCMP(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.operand(mode, res)
	if err != nil {
		return 0, err
	}
	c.doCompare(c.A, v)
	return 0, nil
}

func (c *CPU) opCPX(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	c.doCompare(c.X, v)
	return 0, nil
}

func (c *CPU) opCPY(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	c.doCompare(c.Y, v)
	return 0, nil
}

func (c *CPU) doDec(v byte) byte {
	r := v - 1
	c.setZN(r)
	return r
}

func (c *CPU) doInc(v byte) byte {
	r := v + 1
	c.setZN(r)
	return r
}

func (c *CPU) opDEC(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	return 0, c.Bus.WriteByte(res.Address, c.doDec(v))
}

func (c *CPU) opINC(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	return 0, c.Bus.WriteByte(res.Address, c.doInc(v))
}

func (c *CPU) opDEX(mode AddressingMode, res AddressResolution) (int, error) {
	c.X = c.doDec(c.X)
	return 0, nil
}

func (c *CPU) opDEY(mode AddressingMode, res AddressResolution) (int, error) {
	c.Y = c.doDec(c.Y)
	return 0, nil
}

func (c *CPU) opINX(mode AddressingMode, res AddressResolution) (int, error) {
	c.X = c.doInc(c.X)
	return 0, nil
}

func (c *CPU) opINY(mode AddressingMode, res AddressResolution) (int, error) {
	c.Y = c.doInc(c.Y)
	return 0, nil
}

// branchIf is shared by every conditional branch. Per the canonical timing
// table: 2 cycles base, +1 if the branch is taken, +1 more if taking it
// crosses into a different page than pc+2.
func (c *CPU) branchIf(taken bool, res AddressResolution) (int, error) {
	if !taken {
		return 0, nil
	}
	extra := 1
	if res.PageCrossed {
		extra++
	}
	c.PC = res.Address
	return extra, nil
}

func (c *CPU) opBCC(mode AddressingMode, res AddressResolution) (int, error) {
	return c.branchIf(!c.flagSet(flagCarry), res)
}
func (c *CPU) opBCS(mode AddressingMode, res AddressResolution) (int, error) {
	return c.branchIf(c.flagSet(flagCarry), res)
}
func (c *CPU) opBEQ(mode AddressingMode, res AddressResolution) (int, error) {
	return c.branchIf(c.flagSet(flagZero), res)
}
func (c *CPU) opBNE(mode AddressingMode, res AddressResolution) (int, error) {
	return c.branchIf(!c.flagSet(flagZero), res)
}
func (c *CPU) opBMI(mode AddressingMode, res AddressResolution) (int, error) {
	return c.branchIf(c.flagSet(flagNegative), res)
}
func (c *CPU) opBPL(mode AddressingMode, res AddressResolution) (int, error) {
	return c.branchIf(!c.flagSet(flagNegative), res)
}
func (c *CPU) opBVC(mode AddressingMode, res AddressResolution) (int, error) {
	return c.branchIf(!c.flagSet(flagOverflow), res)
}
func (c *CPU) opBVS(mode AddressingMode, res AddressResolution) (int, error) {
	return c.branchIf(c.flagSet(flagOverflow), res)
}

func (c *CPU) opJMP(mode AddressingMode, res AddressResolution) (int, error) {
	c.PC = res.Address
	return 0, nil
}

// opJSR pushes the address of the last byte of the JSR instruction itself
// (pc+2, not pc+3) high byte first; RTS undoes this with its own +1.
func (c *CPU) opJSR(mode AddressingMode, res AddressResolution) (int, error) {
	returnAddr := c.PC - 1
	if err := c.pushWord(returnAddr); err != nil {
		return 0, err
	}
	c.PC = res.Address
	return 0, nil
}

func (c *CPU) opRTS(mode AddressingMode, res AddressResolution) (int, error) {
	w, err := c.popWord()
	if err != nil {
		return 0, err
	}
	c.PC = w + 1
	return 0, nil
}

// opRTI pulls status with the break bit cleared and the unused bit forced
// on, then pc low-then-high — unlike RTS there is no +1 adjustment, since
// the value pushed for an interrupt is the address to resume at exactly.
func (c *CPU) opRTI(mode AddressingMode, res AddressResolution) (int, error) {
	p, err := c.pop()
	if err != nil {
		return 0, err
	}
	c.P = (p &^ byte(flagBreak)) | byte(flagUnused)
	w, err := c.popWord()
	if err != nil {
		return 0, err
	}
	c.PC = w
	return 0, nil
}

// opBRK is a 2-byte instruction in encoding terms (the byte after the
// opcode is a padding byte real monitors use to tag the break reason) even
// though it carries no operand this core decodes; the return address pushed
// is pc+2, matching JSR's "address of the last instruction byte" rule once
// that padding byte is counted.
func (c *CPU) opBRK(mode AddressingMode, res AddressResolution) (int, error) {
	if err := c.pushWord(c.PC + 1); err != nil {
		return 0, err
	}
	if err := c.push(c.P | byte(flagBreak) | byte(flagUnused)); err != nil {
		return 0, err
	}
	c.setFlag(flagInterruptDisable, true)
	w, err := c.Bus.ReadWord(irqVector)
	if err != nil {
		return 0, err
	}
	c.PC = w
	return 0, nil
}

func (c *CPU) opPHA(mode AddressingMode, res AddressResolution) (int, error) {
	return 0, c.push(c.A)
}

// opPHP pushes status with both the break and unused bits forced to 1.
func (c *CPU) opPHP(mode AddressingMode, res AddressResolution) (int, error) {
	return 0, c.push(c.P | byte(flagBreak) | byte(flagUnused))
}

func (c *CPU) opPLA(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.pop()
	if err != nil {
		return 0, err
	}
	c.A = v
	c.setZN(c.A)
	return 0, nil
}

// opPLP pulls status with the break bit forced to 0 and the unused bit
// forced to 1 — the two stack-only bits never reflect what was pushed.
func (c *CPU) opPLP(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.pop()
	if err != nil {
		return 0, err
	}
	c.P = (v &^ byte(flagBreak)) | byte(flagUnused)
	return 0, nil
}

func (c *CPU) opCLC(mode AddressingMode, res AddressResolution) (int, error) {
	c.setFlag(flagCarry, false)
	return 0, nil
}
func (c *CPU) opSEC(mode AddressingMode, res AddressResolution) (int, error) {
	c.setFlag(flagCarry, true)
	return 0, nil
}
func (c *CPU) opCLI(mode AddressingMode, res AddressResolution) (int, error) {
	c.setFlag(flagInterruptDisable, false)
	return 0, nil
}
func (c *CPU) opSEI(mode AddressingMode, res AddressResolution) (int, error) {
	c.setFlag(flagInterruptDisable, true)
	return 0, nil
}
func (c *CPU) opCLV(mode AddressingMode, res AddressResolution) (int, error) {
	c.setFlag(flagOverflow, false)
	return 0, nil
}
func (c *CPU) opCLD(mode AddressingMode, res AddressResolution) (int, error) {
	c.setFlag(flagDecimal, false)
	return 0, nil
}
func (c *CPU) opSED(mode AddressingMode, res AddressResolution) (int, error) {
	c.setFlag(flagDecimal, true)
	return 0, nil
}

// opNOP covers the documented implied NOP and every illegal NOP variant.
// The illegal forms still perform their addressing mode's memory read (for
// its side effect on cycle timing / page-cross detection) except Immediate
// and Implied, which have nothing to read beyond the operand byte already
// consumed by decoding.
func (c *CPU) opNOP(mode AddressingMode, res AddressResolution) (int, error) {
	switch mode {
	case Implied, Accumulator, Immediate:
		return 0, nil
	default:
		_, err := c.Bus.ReadByte(res.Address)
		return 0, err
	}
}

// The KIL/JAM family halts the real chip; there's nothing more to execute.
func (c *CPU) opKIL(mode AddressingMode, res AddressResolution) (int, error) {
	return 0, ErrCPUJammed{Opcode: c.curOpcode}
}

func (c *CPU) opUnstable(mode AddressingMode, res AddressResolution) (int, error) {
	return 0, ErrUnstableOpcode{Opcode: c.curOpcode, Mnemonic: opcodeTable[c.curOpcode].Mnemonic}
}

// --- Illegal read-modify-write composites ---
//
// Each behaves exactly as the sequential composition of its two named
// documented instructions, but the composite's own row in the opcode table
// supplies the cycle cost (never the sum of the two parts run separately).

// opSLO is ASL then ORA.
func (c *CPU) opSLO(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	v = c.doASL(v)
	if err := c.Bus.WriteByte(res.Address, v); err != nil {
		return 0, err
	}
	c.A |= v
	c.setZN(c.A)
	return 0, nil
}

// opSRE is LSR then EOR.
func (c *CPU) opSRE(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	v = c.doLSR(v)
	if err := c.Bus.WriteByte(res.Address, v); err != nil {
		return 0, err
	}
	c.A ^= v
	c.setZN(c.A)
	return 0, nil
}

// opRLA is ROL then AND.
func (c *CPU) opRLA(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	v = c.doROL(v)
	if err := c.Bus.WriteByte(res.Address, v); err != nil {
		return 0, err
	}
	c.A &= v
	c.setZN(c.A)
	return 0, nil
}

// opRRA is ROR then ADC.
func (c *CPU) opRRA(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	v = c.doROR(v)
	if err := c.Bus.WriteByte(res.Address, v); err != nil {
		return 0, err
	}
	c.doADC(v)
	return 0, nil
}

// opDCP is DEC then CMP.
func (c *CPU) opDCP(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	v = c.doDec(v)
	if err := c.Bus.WriteByte(res.Address, v); err != nil {
		return 0, err
	}
	c.doCompare(c.A, v)
	return 0, nil
}

// opISC is INC then SBC. Also known as ISB.
func (c *CPU) opISC(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	v = c.doInc(v)
	if err := c.Bus.WriteByte(res.Address, v); err != nil {
		return 0, err
	}
	c.doADC(v ^ 0xFF)
	return 0, nil
}

// opLAX loads the same byte into both A and X in one shot.
func (c *CPU) opLAX(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	c.A = v
	c.X = v
	c.setZN(v)
	return 0, nil
}

// opSAX stores A AND X with no flag change.
func (c *CPU) opSAX(mode AddressingMode, res AddressResolution) (int, error) {
	return 0, c.Bus.WriteByte(res.Address, c.A&c.X)
}

// opALR is AND #imm then LSR A.
func (c *CPU) opALR(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	c.A &= v
	c.A = c.doLSR(c.A)
	return 0, nil
}

// opANC is AND #imm, then copies the result's negative bit into carry —
// useful on real hardware for sign-extending a byte into the carry flag.
func (c *CPU) opANC(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	c.A &= v
	c.setZN(c.A)
	c.setFlag(flagCarry, c.A&0x80 != 0)
	return 0, nil
}

// opARR is AND #imm then ROR A, but derives carry and overflow from bits 6
// and 5 of the rotated result rather than from the rotate itself.
func (c *CPU) opARR(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	c.A &= v
	carryIn := byte(0)
	if c.flagSet(flagCarry) {
		carryIn = 0x80
	}
	c.A = (c.A >> 1) | carryIn
	c.setZN(c.A)
	bit6 := (c.A >> 6) & 1
	bit5 := (c.A >> 5) & 1
	c.setFlag(flagCarry, bit6 != 0)
	c.setFlag(flagOverflow, bit6^bit5 != 0)
	return 0, nil
}

// opAXS (also called SBX) sets X to (A AND X) minus the immediate operand,
// computed without borrow-in, and sets carry/zero/negative from that
// subtraction the way CMP would.
func (c *CPU) opAXS(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	base := c.A & c.X
	c.setFlag(flagCarry, base >= v)
	c.X = base - v
	c.setZN(c.X)
	return 0, nil
}

// opLAS ANDs the fetched byte with SP and stores the result in A, X, and SP
// all at once.
func (c *CPU) opLAS(mode AddressingMode, res AddressResolution) (int, error) {
	v, err := c.Bus.ReadByte(res.Address)
	if err != nil {
		return 0, err
	}
	r := v & c.SP
	c.A = r
	c.X = r
	c.SP = r
	c.setZN(r)
	return 0, nil
}
