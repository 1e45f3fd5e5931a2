package systemarea

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bgrewell/isobuild/pkg/consts"
)

const (
	activePartition = 0x80

	// Conventional geometry used to fill CHS fields.
	headsPerCylinder = 255
	sectorsPerTrack  = 63
	maxCylinder      = 1023

	// Blocks of 512 bytes per ISO9660 sector.
	blocksPerSector = consts.ISO9660_SECTOR_SIZE / consts.EL_TORITO_VIRTUAL_SECTOR_SIZE

	// GRUB2's boot.img reads the 64-bit address of its core image from here.
	grub2MBRPatchOffset = 0x1B0
	grub2MBRPatchAdjust = 4
)

// CHS is a packed cylinder/head/sector address as stored in a partition entry.
type CHS [3]byte

// CHSFromLBA converts a 512-byte block address into the packed CHS form. Addresses beyond cylinder 1023 saturate to
// FE FF FF.
func CHSFromLBA(lba uint32) CHS {
	c := lba / (headsPerCylinder * sectorsPerTrack)
	if c > maxCylinder {
		return CHS{0xFE, 0xFF, 0xFF}
	}
	h := (lba / sectorsPerTrack) % headsPerCylinder
	s := lba%sectorsPerTrack + 1
	return CHS{byte(h), byte(s) | byte((c>>2)&0xC0), byte(c)}
}

// PartitionEntry is one of the four 16-byte entries of an MBR partition table.
type PartitionEntry struct {
	// [1] Status, 0x80 marks the active partition
	Status uint8 `json:"status"`
	// [2-4] CHS address of the first block
	FirstCHS CHS `json:"first_chs"`
	// [5] Partition type
	Type PartitionType `json:"type"`
	// [6-8] CHS address of the last block
	LastCHS CHS `json:"last_chs"`
	// [9-12] LBA of the first block
	FirstLBA uint32 `json:"first_lba"`
	// [13-16] Number of blocks
	Blocks uint32 `json:"blocks"`
}

func (p *PartitionEntry) Marshal() [consts.MBR_PARTITION_ENTRY_SIZE]byte {
	var data [consts.MBR_PARTITION_ENTRY_SIZE]byte
	data[0] = p.Status
	copy(data[1:4], p.FirstCHS[:])
	data[4] = byte(p.Type)
	copy(data[5:8], p.LastCHS[:])
	binary.LittleEndian.PutUint32(data[8:12], p.FirstLBA)
	binary.LittleEndian.PutUint32(data[12:16], p.Blocks)
	return data
}

func (p *PartitionEntry) Unmarshal(data []byte) error {
	if len(data) < consts.MBR_PARTITION_ENTRY_SIZE {
		return fmt.Errorf("partition entry: data too short")
	}
	p.Status = data[0]
	copy(p.FirstCHS[:], data[1:4])
	p.Type = PartitionType(data[4])
	copy(p.LastCHS[:], data[5:8])
	p.FirstLBA = binary.LittleEndian.Uint32(data[8:12])
	p.Blocks = binary.LittleEndian.Uint32(data[12:16])
	return nil
}

// ProtectivePartition returns the single active entry covering an image of imageSectors 2048-byte sectors. The
// block count is clamped to 32 bits.
func ProtectivePartition(imageSectors uint32) PartitionEntry {
	blocks := uint64(imageSectors) * blocksPerSector
	if blocks > math.MaxUint32 {
		blocks = math.MaxUint32
	}
	last := uint32(0)
	if blocks > 0 {
		last = uint32(blocks - 1)
	}
	return PartitionEntry{
		Status:   activePartition,
		FirstCHS: CHSFromLBA(0),
		Type:     Iso9660,
		LastCHS:  CHSFromLBA(last),
		FirstLBA: 0,
		Blocks:   uint32(blocks),
	}
}

// WritePartitionTable replaces the partition table and signature of the MBR in sector with a table holding only
// entry. Boot code before offset 446 is kept.
func WritePartitionTable(sector []byte, entry PartitionEntry) {
	table := sector[consts.MBR_PARTITION_TABLE_START:consts.MBR_SIZE]
	clear(table)
	e := entry.Marshal()
	copy(table, e[:])
	sector[consts.MBR_SIGNATURE_OFFSET] = 0x55
	sector[consts.MBR_SIGNATURE_OFFSET+1] = 0xAA
}

// PatchGrub2MBR stores the 512-byte block address of the boot image plus 4 in GRUB2's boot.img.
func PatchGrub2MBR(sector []byte, bootLBA uint32) {
	binary.LittleEndian.PutUint64(sector[grub2MBRPatchOffset:], uint64(bootLBA)*blocksPerSector+grub2MBRPatchAdjust)
}
