package cartridge

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/sha3"
)

// ErrInvalidHeader reports a malformed iNES header: bad magic, or a header
// that fails a static invariant of the format.
type ErrInvalidHeader struct {
	Reason string
}

func (e ErrInvalidHeader) Error() string {
	return fmt.Sprintf("cartridge: invalid header: %s", e.Reason)
}

// ErrInvalidPayload reports a header that parsed fine but whose declared
// bank counts don't match the bytes actually available.
type ErrInvalidPayload struct {
	Reason string
}

func (e ErrInvalidPayload) Error() string {
	return fmt.Sprintf("cartridge: invalid payload: %s", e.Reason)
}

var inesMagic = [4]byte{'N', 'E', 'S', 0x1A}

// flag6 bit layout, per the iNES header.
const (
	flag6Vertical   = 1 << 0
	flag6Battery    = 1 << 1
	flag6Trainer    = 1 << 2
	flag6FourScreen = 1 << 3
)

type header struct {
	Magic      [4]byte
	PRGBanks   byte
	CHRBanks   byte
	Flag6      byte
	Flag7      byte
	PRGRAMSize byte
	_          [7]byte // reserved, ignored
}

// Parse decodes an iNES-format cartridge image from r. The trainer, if
// present, is read into Cartridge.Trainer; PRG-ROM and CHR-ROM are split
// into fixed-size banks in file order. A CHR-ROM count of zero is left as
// zero banks (CHR-RAM cartridges carry no CHR-ROM at all) rather than the
// single-bank substitution some loaders apply, since this core never reads
// CHR data itself.
func Parse(r io.Reader) (*Cartridge, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, ErrInvalidHeader{Reason: fmt.Sprintf("short header: %v", err)}
	}
	if h.Magic != inesMagic {
		return nil, ErrInvalidHeader{Reason: fmt.Sprintf("bad magic %v", h.Magic)}
	}
	if h.PRGBanks == 0 {
		return nil, ErrInvalidHeader{Reason: "zero PRG-ROM banks declared"}
	}

	hasTrainer := h.Flag6&flag6Trainer != 0
	var trainer [TrainerSize]byte
	if hasTrainer {
		if _, err := io.ReadFull(r, trainer[:]); err != nil {
			return nil, ErrInvalidPayload{Reason: fmt.Sprintf("short trainer: %v", err)}
		}
	}

	prg, err := readBanks(r, int(h.PRGBanks), PRGBankSize)
	if err != nil {
		return nil, ErrInvalidPayload{Reason: fmt.Sprintf("PRG-ROM: %v", err)}
	}

	chr, err := readBanks(r, int(h.CHRBanks), CHRBankSize)
	if err != nil {
		return nil, ErrInvalidPayload{Reason: fmt.Sprintf("CHR-ROM: %v", err)}
	}

	mirroring := MirroringHorizontal
	if h.Flag6&flag6Vertical != 0 {
		mirroring = MirroringVertical
	}
	fourScreen := h.Flag6&flag6FourScreen != 0
	if fourScreen {
		mirroring = MirroringFourScreen
	}

	mapperID := (h.Flag6 >> 4) | (h.Flag7 & 0xF0)
	battery := h.Flag6&flag6Battery != 0
	prgRAMBanks := int(h.PRGRAMSize)

	return New(prg, chr, prgRAMBanks, mapperID, mirroring, battery, hasTrainer, trainer)
}

func readBanks(r io.Reader, count, size int) ([][]byte, error) {
	banks := make([][]byte, count)
	for i := range banks {
		bank := make([]byte, size)
		if _, err := io.ReadFull(r, bank); err != nil {
			return nil, err
		}
		banks[i] = bank
	}
	return banks, nil
}

// Serialize writes c back out in iNES format. Parse(Serialize(c)) is the
// identity for every Cartridge Parse can produce: PRGRAMBanks round-trips
// exactly (including the "0 means 1" normalization, since a Cartridge that
// came from Parse already carries the normalized value), and HasTrainer /
// Trainer / MapperID / Mirroring / BatteryBacked all survive unchanged.
func Serialize(c *Cartridge, w io.Writer) error {
	h := header{
		Magic:      inesMagic,
		PRGBanks:   byte(len(c.PRGROMBanks)),
		CHRBanks:   byte(len(c.CHRROMBanks)),
		PRGRAMSize: byte(c.PRGRAMBanks),
	}
	if c.Mirroring == MirroringVertical {
		h.Flag6 |= flag6Vertical
	}
	if c.Mirroring == MirroringFourScreen {
		h.Flag6 |= flag6FourScreen
	}
	if c.BatteryBacked {
		h.Flag6 |= flag6Battery
	}
	if c.HasTrainer {
		h.Flag6 |= flag6Trainer
	}
	h.Flag6 |= (c.MapperID & 0x0F) << 4
	h.Flag7 |= c.MapperID & 0xF0

	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if c.HasTrainer {
		if _, err := w.Write(c.Trainer[:]); err != nil {
			return err
		}
	}
	for _, bank := range c.PRGROMBanks {
		if _, err := w.Write(bank); err != nil {
			return err
		}
	}
	for _, bank := range c.CHRROMBanks {
		if _, err := w.Write(bank); err != nil {
			return err
		}
	}
	return nil
}

// Fingerprint returns a SHA3-256 digest of the cartridge's PRG and CHR
// payload, in bank order. It ignores header flags, so two images differing
// only in, say, declared mirroring still fingerprint identically — this is
// meant to identify the game, not the exact file bytes. cmd/nesrun logs this
// at startup so a user can recognize a well-known test ROM without the
// binary needing to ship (or hard-code a hash of) any copyrighted ROM data.
func (c *Cartridge) Fingerprint() [32]byte {
	var buf bytes.Buffer
	for _, bank := range c.PRGROMBanks {
		buf.Write(bank)
	}
	for _, bank := range c.CHRROMBanks {
		buf.Write(bank)
	}
	return sha3.Sum256(buf.Bytes())
}
