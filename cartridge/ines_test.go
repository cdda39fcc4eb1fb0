package cartridge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validHeader(prgBanks, chrBanks byte, flag6, flag7, prgRAM byte) []byte {
	h := make([]byte, headerSize)
	copy(h, inesMagic[:])
	h[4] = prgBanks
	h[5] = chrBanks
	h[6] = flag6
	h[7] = flag7
	h[8] = prgRAM
	return h
}

func TestParse_InvalidMagic(t *testing.T) {
	buf := append([]byte{'N', 'O', 'S', 0x1A}, make([]byte, 12)...)
	_, err := Parse(bytes.NewReader(buf))
	require.Error(t, err)
	assert.IsType(t, ErrInvalidHeader{}, err)
}

func TestParse_ShortHeader(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte{'N', 'E', 'S', 0x1A}))
	require.Error(t, err)
	assert.IsType(t, ErrInvalidHeader{}, err)
}

func TestParse_ZeroPRGBanks(t *testing.T) {
	buf := validHeader(0, 0, 0, 0, 0)
	_, err := Parse(bytes.NewReader(buf))
	require.Error(t, err)
}

func TestParse_TruncatedPayload(t *testing.T) {
	buf := validHeader(1, 0, 0, 0, 0)
	buf = append(buf, make([]byte, PRGBankSize-1)...) // one byte short
	_, err := Parse(bytes.NewReader(buf))
	require.Error(t, err)
	assert.IsType(t, ErrInvalidPayload{}, err)
}

func TestParse_OneBankCartridge(t *testing.T) {
	buf := validHeader(1, 1, flag6Vertical, 0, 0)
	prg := bytes.Repeat([]byte{0x42}, PRGBankSize)
	chr := bytes.Repeat([]byte{0x24}, CHRBankSize)
	buf = append(buf, prg...)
	buf = append(buf, chr...)

	c, err := Parse(bytes.NewReader(buf))
	require.NoError(t, err)

	require.Len(t, c.PRGROMBanks, 1)
	require.Len(t, c.CHRROMBanks, 1)
	assert.Equal(t, byte(0x42), c.PRGROMBanks[0][0])
	assert.Equal(t, byte(0x24), c.CHRROMBanks[0][0])
	assert.Equal(t, MirroringVertical, c.Mirroring)
	assert.Equal(t, 1, c.PRGRAMBanks, "a declared count of 0 must normalize to 1")
}

func TestParse_Trainer(t *testing.T) {
	buf := validHeader(1, 0, flag6Trainer, 0, 0)
	trainer := bytes.Repeat([]byte{0x11}, TrainerSize)
	prg := bytes.Repeat([]byte{0x00}, PRGBankSize)
	buf = append(buf, trainer...)
	buf = append(buf, prg...)

	c, err := Parse(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.True(t, c.HasTrainer)
	assert.Equal(t, byte(0x11), c.Trainer[0])
}

func TestParse_MapperID(t *testing.T) {
	// mapper 0x21: low nibble 1 in flag6, high nibble 2 in flag7.
	buf := validHeader(1, 0, 0x10, 0x20, 0)
	buf = append(buf, make([]byte, PRGBankSize)...)

	c, err := Parse(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, byte(0x21), c.MapperID)
}

func TestParseSerializeRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		prgBanks    int
		chrBanks    int
		mirroring   Mirroring
		battery     bool
		trainer     bool
		mapperID    byte
		prgRAMBanks int
	}{
		{"minimal", 1, 0, MirroringHorizontal, false, false, 0, 1},
		{"two banks vertical battery", 2, 1, MirroringVertical, true, false, 1, 2},
		{"four screen with trainer", 1, 2, MirroringFourScreen, false, true, 4, 1},
		{"mapper id spanning both nibbles", 1, 1, MirroringHorizontal, false, false, 0x7B, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prg := make([][]byte, tt.prgBanks)
			for i := range prg {
				prg[i] = bytes.Repeat([]byte{byte(i + 1)}, PRGBankSize)
			}
			chr := make([][]byte, tt.chrBanks)
			for i := range chr {
				chr[i] = bytes.Repeat([]byte{byte(i + 1)}, CHRBankSize)
			}

			var trainerData [TrainerSize]byte
			if tt.trainer {
				trainerData[0] = 0xAB
			}

			c, err := New(prg, chr, tt.prgRAMBanks, tt.mapperID, tt.mirroring, tt.battery, tt.trainer, trainerData)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Serialize(c, &buf))

			got, err := Parse(&buf)
			require.NoError(t, err)

			assert.Equal(t, c, got)
		})
	}
}

func TestFingerprint_Stable(t *testing.T) {
	prg := [][]byte{bytes.Repeat([]byte{0x7}, PRGBankSize)}
	c1, err := New(prg, nil, 1, 0, MirroringHorizontal, false, false, [TrainerSize]byte{})
	require.NoError(t, err)
	c2, err := New(prg, nil, 1, 0, MirroringHorizontal, false, false, [TrainerSize]byte{})
	require.NoError(t, err)

	assert.Equal(t, c1.Fingerprint(), c2.Fingerprint())
}

func TestFingerprint_IgnoresHeaderFlags(t *testing.T) {
	prg := [][]byte{bytes.Repeat([]byte{0x7}, PRGBankSize)}
	c1, err := New(prg, nil, 1, 0, MirroringHorizontal, false, false, [TrainerSize]byte{})
	require.NoError(t, err)
	c2, err := New(prg, nil, 1, 0, MirroringVertical, true, false, [TrainerSize]byte{})
	require.NoError(t, err)

	assert.Equal(t, c1.Fingerprint(), c2.Fingerprint())
}
