// Package bus wires a cartridge's mapper into the NES's 64KB CPU address
// space: 2KB of internal RAM (mirrored four times), the cartridge's
// mapper-owned window, and fatal sentinel errors everywhere else this core
// doesn't implement.
package bus

import (
	"fmt"

	"github.com/n6502/nesvm/cartridge"
	"github.com/n6502/nesvm/internal/nlog"
	"github.com/n6502/nesvm/mapper"
)

const (
	ramSize = 0x0800
	ramEnd  = 0x1FFF

	ppuStart = 0x2000
	ppuEnd   = 0x3FFF

	apuLowEnd   = 0x4013
	apuStatus   = 0x4015
	apuWriteEnd = 0x4015

	ppuDMA = 0x4014

	controllerLo = 0x4016
	controllerHi = 0x4017

	expansionStart = 0x4018
	expansionEnd   = 0x5FFF

	mapperStart = 0x6000
)

// Region names a span of the address map this core doesn't back with real
// hardware, for use in ErrUnsupportedRead.
type Region string

const (
	RegionPPU        Region = "ppu"
	RegionAPU        Region = "apu"
	RegionPPUDMA     Region = "ppu-dma"
	RegionController Region = "controller"
	RegionExpansion  Region = "expansion"
)

// ErrUnsupportedRead reports a read from a region of the address space this
// core never implements (PPU/APU/controller registers): rendering, audio
// and input are explicitly out of scope here.
type ErrUnsupportedRead struct {
	Region Region
	Addr   uint16
}

func (e ErrUnsupportedRead) Error() string {
	return fmt.Sprintf("bus: unsupported read from %s register at %#04x", e.Region, e.Addr)
}

// ErrUnhandledWrite reports a write this core has no backing store for.
type ErrUnhandledWrite struct {
	Addr  uint16
	Value byte
}

func (e ErrUnhandledWrite) Error() string {
	return fmt.Sprintf("bus: unhandled write of %#02x to %#04x", e.Value, e.Addr)
}

// Bus is the CPU's sole view of memory. It owns internal RAM directly and
// delegates $6000 and above to the cartridge's mapper.
type Bus struct {
	ram   [ramSize]byte
	cart  *cartridge.Cartridge
	mpr   mapper.Mapper
	lower uint16
	upper uint16
	log   *nlog.Logger
}

// New builds a Bus over cart, routed through mpr. mpr.InitialLowerBank and
// mpr.InitialUpperBank are consulted once, at construction, to seed the
// bank indices the mapper will see on every subsequent ReadByte/WriteByte.
func New(cart *cartridge.Cartridge, mpr mapper.Mapper, log *nlog.Logger) *Bus {
	if log == nil {
		log = nlog.Default()
	}
	return &Bus{
		cart:  cart,
		mpr:   mpr,
		lower: mpr.InitialLowerBank(cart),
		upper: mpr.InitialUpperBank(cart),
		log:   log,
	}
}

// Cartridge satisfies mapper.Bus.
func (b *Bus) Cartridge() *cartridge.Cartridge { return b.cart }

// LowerBank satisfies mapper.Bus.
func (b *Bus) LowerBank() uint16 { return b.lower }

// UpperBank satisfies mapper.Bus.
func (b *Bus) UpperBank() uint16 { return b.upper }

// ReadByte reads a single byte from addr.
func (b *Bus) ReadByte(addr uint16) (byte, error) {
	switch {
	case addr <= ramEnd:
		return b.ram[addr%ramSize], nil
	case addr >= ppuStart && addr <= ppuEnd:
		return 0, ErrUnsupportedRead{Region: RegionPPU, Addr: addr}
	case addr == ppuDMA:
		return 0, ErrUnsupportedRead{Region: RegionPPUDMA, Addr: addr}
	case addr == controllerLo || addr == controllerHi:
		return 0, ErrUnsupportedRead{Region: RegionController, Addr: addr}
	case addr <= apuLowEnd || addr == apuStatus:
		return 0, ErrUnsupportedRead{Region: RegionAPU, Addr: addr}
	case addr >= expansionStart && addr <= expansionEnd:
		return 0, ErrUnsupportedRead{Region: RegionExpansion, Addr: addr}
	default: // addr >= mapperStart
		v, err := b.mpr.ReadByte(b, addr)
		if err != nil {
			b.log.Debugf("bus: mapper read error at %#04x: %v", addr, err)
		}
		return v, err
	}
}

// ReadWord reads a little-endian 16-bit word starting at addr.
func (b *Bus) ReadWord(addr uint16) (uint16, error) {
	lo, err := b.ReadByte(addr)
	if err != nil {
		return 0, err
	}
	hi, err := b.ReadByte(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// WriteByte writes value to addr.
func (b *Bus) WriteByte(addr uint16, value byte) error {
	switch {
	case addr <= ramEnd:
		b.ram[addr%ramSize] = value
		return nil
	case addr >= 0x4000 && addr <= apuWriteEnd:
		b.log.Debugf("bus: dropped write of %#02x to stubbed APU/IO register %#04x", value, addr)
		return nil
	case addr >= mapperStart:
		if err := b.mpr.WriteByte(b, addr, value); err != nil {
			b.log.Debugf("bus: mapper write error at %#04x: %v", addr, err)
			return err
		}
		return nil
	default:
		return ErrUnhandledWrite{Addr: addr, Value: value}
	}
}
