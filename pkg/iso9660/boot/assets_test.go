package boot

import (
	"encoding/binary"
	"testing"

	"github.com/bgrewell/isobuild/pkg/iso9660/encoding"
	"github.com/bgrewell/isobuild/pkg/iso9660/extent"
	"github.com/bgrewell/isobuild/pkg/iso9660/isoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func image(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + 3)
	}
	return b
}

func TestNewAssets_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"both info formats", Config{BootImage: image(4096), BootInfoTable: true, Grub2BootInfo: true}, isoerr.ErrConflictingBootInfoFormat},
		{"embedded and grub2 mbr with both info formats", Config{BootImage: image(4096), BootInfoTable: true, Grub2BootInfo: true, EmbeddedBoot: []byte{1}, Grub2MBR: []byte{1}}, isoerr.ErrConflictingBootSector},
		{"empty boot image", Config{BootImage: []byte{}}, isoerr.ErrBootImageTooSmall},
		{"embedded and grub2 mbr", Config{BootImage: image(4096), EmbeddedBoot: []byte{1}, Grub2MBR: []byte{1}}, isoerr.ErrConflictingBootSector},
		{"grub2 mbr and protective label", Config{BootImage: image(4096), Grub2MBR: []byte{1}, ProtectiveMSDOSLabel: true}, isoerr.ErrConflictingBootSector},
		{"embedded too large", Config{BootImage: image(4096), EmbeddedBoot: make([]byte, 32769)}, isoerr.ErrBootSectorTooLarge},
		{"grub2 mbr too large", Config{NoBoot: true, Grub2MBR: make([]byte, 40000)}, isoerr.ErrBootSectorTooLarge},
		{"missing boot image", Config{}, isoerr.ErrMissingBootImage},
		{"info table on tiny image", Config{BootImage: image(32), BootInfoTable: true}, isoerr.ErrBootImageTooSmall},
		{"grub2 info on short image", Config{BootImage: image(2048), Grub2BootInfo: true}, isoerr.ErrBootImageTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAssets(tt.cfg, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewAssets_NoBoot(t *testing.T) {
	a, err := NewAssets(Config{NoBoot: true, BootImage: image(2048)}, nil)
	require.NoError(t, err)
	assert.False(t, a.HasCatalog())
	assert.Equal(t, uint32(0), a.Size())

	out, err := a.Finalize(extent.Extent{}, 16)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestNewAssets_BootSectorKinds(t *testing.T) {
	a, err := NewAssets(Config{NoBoot: true, EmbeddedBoot: []byte{0xEB}, ProtectiveMSDOSLabel: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, SectorEmbedded, a.Sector().Kind)
	assert.True(t, a.ProtectiveMSDOSLabel())

	a, err = NewAssets(Config{NoBoot: true, Grub2MBR: make([]byte, 32768)}, nil)
	require.NoError(t, err)
	assert.Equal(t, SectorGrub2, a.Sector().Kind)

	a, err = NewAssets(Config{NoBoot: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, SectorNone, a.Sector().Kind)
}

func TestAssets_FinalizeBootInfoTable(t *testing.T) {
	src := image(5000)
	orig := append([]byte(nil), src...)
	a, err := NewAssets(Config{BootImage: src, NoEmuBoot: true, BootInfoTable: true}, nil)
	require.NoError(t, err)

	out, err := a.Finalize(extent.Extent{LBA: 30, Length: 5000}, 16)
	require.NoError(t, err)
	assert.Equal(t, orig, src, "source image must not be modified")

	assert.Equal(t, uint32(16), binary.LittleEndian.Uint32(out[8:12]))
	assert.Equal(t, uint32(30), binary.LittleEndian.Uint32(out[12:16]))
	assert.Equal(t, uint32(5000), binary.LittleEndian.Uint32(out[16:20]))
	assert.Equal(t, encoding.WordSum32(orig[64:]), binary.LittleEndian.Uint32(out[20:24]))
	assert.Equal(t, make([]byte, 40), out[24:64])
	assert.Equal(t, orig[:8], out[:8])
	assert.Equal(t, orig[64:], out[64:])

	c := a.Catalog(29)
	assert.Equal(t, uint32(30), c.Initial.LoadRBA)
	assert.Equal(t, NoEmulation, c.Initial.Emulation)
	assert.Equal(t, uint16(10), c.Initial.SectorCount)
}

func TestAssets_FinalizeGrub2BootInfo(t *testing.T) {
	a, err := NewAssets(Config{BootImage: image(4096), NoEmuBoot: true, Grub2BootInfo: true}, nil)
	require.NoError(t, err)

	out, err := a.Finalize(extent.Extent{LBA: 33, Length: 4096}, 16)
	require.NoError(t, err)
	assert.Equal(t, uint64(33*4+5), binary.LittleEndian.Uint64(out[2548:2556]))

	_, err = a.Finalize(extent.Extent{LBA: 33, Length: 10}, 16)
	assert.Error(t, err)
}

func TestAssets_CatalogEmulation(t *testing.T) {
	t.Run("floppy", func(t *testing.T) {
		a, err := NewAssets(Config{BootImage: make([]byte, Floppy144Size)}, nil)
		require.NoError(t, err)
		_, err = a.Finalize(extent.Extent{LBA: 40, Length: Floppy144Size}, 16)
		require.NoError(t, err)
		c := a.Catalog(39)
		assert.Equal(t, Floppy144Emulation, c.Initial.Emulation)
		assert.Equal(t, uint16(1), c.Initial.SectorCount)
	})

	t.Run("hard disk takes system type from partition table", func(t *testing.T) {
		img := make([]byte, 4096)
		img[450] = 0x83
		a, err := NewAssets(Config{BootImage: img, BootLoadSize: 4, LoadSegment: 0x1000}, nil)
		require.NoError(t, err)
		c := a.Catalog(39)
		assert.Equal(t, HardDiskEmulation, c.Initial.Emulation)
		assert.Equal(t, uint8(0x83), c.Initial.SystemType)
		assert.Equal(t, uint16(4), c.Initial.SectorCount)
		assert.Equal(t, uint16(0x1000), c.Initial.EffectiveLoadSegment())
	})
}
