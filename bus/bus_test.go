package bus

import (
	"bytes"
	"testing"

	"github.com/n6502/nesvm/cartridge"
	"github.com/n6502/nesvm/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart(t *testing.T, prgBanks int) *cartridge.Cartridge {
	t.Helper()
	prg := make([][]byte, prgBanks)
	for i := range prg {
		prg[i] = bytes.Repeat([]byte{byte(i + 1)}, cartridge.PRGBankSize)
	}
	c, err := cartridge.New(prg, nil, 1, 0, cartridge.MirroringHorizontal, false, false, [cartridge.TrainerSize]byte{})
	require.NoError(t, err)
	return c
}

func TestBus_RAMMirroring(t *testing.T) {
	cart := newTestCart(t, 1)
	b := New(cart, mapper.NewNROM(cart), nil)

	require.NoError(t, b.WriteByte(0x0000, 0x42))
	for _, mirror := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		v, err := b.ReadByte(mirror)
		require.NoError(t, err)
		assert.Equal(t, byte(0x42), v, "mirror at %#04x", mirror)
	}
}

func TestBus_PPUReadIsUnsupported(t *testing.T) {
	cart := newTestCart(t, 1)
	b := New(cart, mapper.NewNROM(cart), nil)

	_, err := b.ReadByte(0x2000)
	require.Error(t, err)
	assert.IsType(t, ErrUnsupportedRead{}, err)
}

func TestBus_APUWriteIsDroppedSilently(t *testing.T) {
	cart := newTestCart(t, 1)
	b := New(cart, mapper.NewNROM(cart), nil)

	require.NoError(t, b.WriteByte(0x4000, 0x01))
}

func TestBus_ExpansionWriteIsUnhandled(t *testing.T) {
	cart := newTestCart(t, 1)
	b := New(cart, mapper.NewNROM(cart), nil)

	err := b.WriteByte(0x5000, 0x01)
	require.Error(t, err)
	assert.IsType(t, ErrUnhandledWrite{}, err)
}

func TestBus_PRGRAMWindowRoutesToMapper(t *testing.T) {
	cart := newTestCart(t, 1)
	b := New(cart, mapper.NewNROM(cart), nil)

	require.NoError(t, b.WriteByte(0x6000, 0x99))
	v, err := b.ReadByte(0x6000)
	require.NoError(t, err)
	assert.Equal(t, byte(0x99), v)
}

func TestBus_OneBankMirrorsROMWindow(t *testing.T) {
	cart := newTestCart(t, 1)
	b := New(cart, mapper.NewNROM(cart), nil)

	lo, err := b.ReadByte(0x8000)
	require.NoError(t, err)
	hi, err := b.ReadByte(0xC000)
	require.NoError(t, err)
	assert.Equal(t, lo, hi)
}

func TestBus_ReadWordLittleEndian(t *testing.T) {
	cart := newTestCart(t, 1)
	b := New(cart, mapper.NewNROM(cart), nil)

	require.NoError(t, b.WriteByte(0x0010, 0x34))
	require.NoError(t, b.WriteByte(0x0011, 0x12))

	w, err := b.ReadWord(0x0010)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), w)
}
