package mapper

import (
	"fmt"

	"github.com/n6502/nesvm/cartridge"
)

// NROM implements mapper 0: the simplest NES board. There is no bank
// switching — the cartridge's one or two PRG-ROM banks are wired directly
// into $8000-$FFFF, and a one-bank cartridge mirrors its single bank into
// both halves of that window.
//
// NROM additionally backs $6000-$7FFF with a private PRG-RAM scratchpad,
// sized by the cartridge's declared PRG-RAM bank count. Real NROM boards
// (e.g. Family Basic) wire battery-backed work RAM there; the distilled
// 6502 spec is silent on this window, so this is this repository's own
// supplemental addition, not part of the documented contract in cartridge
// section §4.2.
type NROM struct {
	ram []byte
}

// NewNROM constructs an NROM mapper sized for cart's declared PRG-RAM.
func NewNROM(cart *cartridge.Cartridge) *NROM {
	return &NROM{ram: make([]byte, cart.PRGRAMBanks*8192)}
}

// InitialLowerBank is always bank 0 for NROM.
func (m *NROM) InitialLowerBank(cart *cartridge.Cartridge) uint16 {
	return 0
}

// InitialUpperBank is the last PRG-ROM bank: on a one-bank cartridge this
// equals InitialLowerBank, mirroring the single bank into both halves of
// the $8000-$FFFF window; on a two-bank cartridge it's bank 1.
func (m *NROM) InitialUpperBank(cart *cartridge.Cartridge) uint16 {
	return uint16(len(cart.PRGROMBanks) - 1)
}

// ReadByte answers a CPU read in $6000-$FFFF.
func (m *NROM) ReadByte(b Bus, addr uint16) (byte, error) {
	switch {
	case addr >= 0x8000 && addr <= 0xBFFF:
		cart := b.Cartridge()
		bank := cart.PRGROMBanks[b.LowerBank()]
		return bank[addr-0x8000], nil
	case addr >= 0xC000:
		cart := b.Cartridge()
		bank := cart.PRGROMBanks[b.UpperBank()]
		return bank[addr-0xC000], nil
	case addr >= 0x6000 && addr <= 0x7FFF:
		i := int(addr - 0x6000)
		if i >= len(m.ram) {
			return 0, nil
		}
		return m.ram[i], nil
	default:
		return 0, fmt.Errorf("mapper: nrom: address %#04x outside mapper-owned range", addr)
	}
}

// WriteByte answers a CPU write in $6000-$FFFF. NROM has no bank-select
// registers, so writes to $8000-$FFFF are simply dropped; writes to
// $6000-$7FFF land in the PRG-RAM scratchpad.
func (m *NROM) WriteByte(b Bus, addr uint16, value byte) error {
	switch {
	case addr >= 0x8000:
		return nil
	case addr >= 0x6000 && addr <= 0x7FFF:
		i := int(addr - 0x6000)
		if i < len(m.ram) {
			m.ram[i] = value
		}
		return nil
	default:
		return fmt.Errorf("mapper: nrom: address %#04x outside mapper-owned range", addr)
	}
}
