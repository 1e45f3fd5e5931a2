package systemarea

import (
	"encoding/binary"
	"testing"

	"github.com/bgrewell/isobuild/pkg/iso9660/boot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCHSFromLBA(t *testing.T) {
	assert.Equal(t, CHS{0x00, 0x01, 0x00}, CHSFromLBA(0))
	assert.Equal(t, CHS{0x01, 0x01, 0x00}, CHSFromLBA(63))
	// Cylinder 1023 is the last one CHS can address.
	assert.Equal(t, CHS{0xFE, 0xFF, 0xFF}, CHSFromLBA(1023*255*63+254*63+62))
	assert.Equal(t, CHS{0xFE, 0xFF, 0xFF}, CHSFromLBA(1024*255*63))
}

func TestBuild_Empty(t *testing.T) {
	sa, err := Build(boot.BootSector{}, false, 100, nil)
	require.NoError(t, err)
	data, err := sa.Marshal()
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32768), data)
}

func TestBuild_ProtectiveMBR(t *testing.T) {
	sa, err := Build(boot.BootSector{}, true, 100, nil)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x55, 0xAA}, sa.Contents[510:512])
	p := sa.Partition()
	assert.Equal(t, uint8(0x80), p.Status)
	assert.Equal(t, Iso9660, p.Type)
	assert.Equal(t, uint32(0), p.FirstLBA)
	assert.Equal(t, uint32(400), p.Blocks)
	assert.Equal(t, CHSFromLBA(399), p.LastCHS)
	assert.Equal(t, make([]byte, 48), sa.Contents[462:510], "other entries stay empty")
}

func TestBuild_ProtectiveMBRClampsLength(t *testing.T) {
	p := ProtectivePartition(0x7FFFFFFF)
	assert.Equal(t, uint32(0xFFFFFFFF), p.Blocks)
	assert.Equal(t, CHS{0xFE, 0xFF, 0xFF}, p.LastCHS)
}

func TestBuild_EmbeddedWithProtectiveMBR(t *testing.T) {
	code := make([]byte, 1024)
	for i := range code {
		code[i] = 0xCC
	}
	sa, err := Build(boot.BootSector{Kind: boot.SectorEmbedded, Data: code}, true, 64, nil)
	require.NoError(t, err)

	assert.Equal(t, code[:446], sa.Contents[:446])
	assert.Equal(t, uint8(0x80), sa.Contents[446])
	assert.Equal(t, []byte{0x55, 0xAA}, sa.Contents[510:512])
	assert.Equal(t, code[512:], sa.Contents[512:1024], "bytes past the mbr are left alone")
}

func TestBuild_Grub2MBR(t *testing.T) {
	mbr := make([]byte, 512)
	mbr[0] = 0xEB
	lba := uint32(35)

	sa, err := Build(boot.BootSector{Kind: boot.SectorGrub2, Data: mbr}, false, 64, &lba)
	require.NoError(t, err)
	assert.Equal(t, byte(0xEB), sa.Contents[0])
	assert.Equal(t, uint64(35*4+4), binary.LittleEndian.Uint64(sa.Contents[0x1B0:0x1B8]))

	sa, err = Build(boot.BootSector{Kind: boot.SectorGrub2, Data: mbr}, false, 64, nil)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), sa.Contents[0x1B0:0x1B8])

	_, err = Build(boot.BootSector{Kind: boot.SectorGrub2, Data: mbr}, true, 64, &lba)
	assert.Error(t, err)
}

func TestBuild_TooLarge(t *testing.T) {
	_, err := Build(boot.BootSector{Kind: boot.SectorEmbedded, Data: make([]byte, 32769)}, false, 64, nil)
	assert.Error(t, err)
}
