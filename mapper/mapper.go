// Package mapper defines the cartridge-side bank-switching contract and
// ships the one mapper this core backs a bus with: NROM (mapper 0).
package mapper

import "github.com/n6502/nesvm/cartridge"

// Bus is the minimal surface a Mapper needs back from the memory bus: the
// cartridge it's routing for, and the bank indices the bus is currently
// honoring for the $8000-$FFFF ROM window. It's satisfied by *bus.Bus
// without mapper importing bus (which imports mapper), breaking the import
// cycle the obvious signature would create.
type Bus interface {
	Cartridge() *cartridge.Cartridge
	LowerBank() uint16
	UpperBank() uint16
}

// Mapper is the cartridge-side capability set: given the cartridge, resolve
// which PRG-ROM banks sit at the lower ($8000-$BFFF) and upper ($C000-$FFFF)
// halves of the CPU's ROM window at power-on, and answer reads/writes to the
// mapper-owned address range ($6000-$FFFF). Implementations are stateless
// with respect to the bus for mapper 0; later mappers (not shipped here)
// would carry their own bank-select state.
type Mapper interface {
	// InitialLowerBank returns the PRG-ROM bank index initially visible at
	// $8000-$BFFF.
	InitialLowerBank(cart *cartridge.Cartridge) uint16

	// InitialUpperBank returns the PRG-ROM bank index initially visible at
	// $C000-$FFFF.
	InitialUpperBank(cart *cartridge.Cartridge) uint16

	// ReadByte answers a CPU read in $6000-$FFFF.
	ReadByte(b Bus, addr uint16) (byte, error)

	// WriteByte answers a CPU write in $6000-$FFFF. Most mappers use writes
	// in $8000-$FFFF to select banks rather than to store data.
	WriteByte(b Bus, addr uint16, value byte) error
}
