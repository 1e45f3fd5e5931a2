package descriptor

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/bgrewell/isobuild/pkg/consts"
	"github.com/bgrewell/isobuild/pkg/helpers"
)

const (
	// Boot System Use Size is the size of a sector minus 71 bytes
	BOOT_SYSTEM_USE_SIZE = consts.ISO9660_SECTOR_SIZE - 71
)

// NewBootRecordDescriptor returns an El Torito boot record pointing at the boot catalog.
func NewBootRecordDescriptor(catalogLBA uint32) *BootRecordDescriptor {
	d := &BootRecordDescriptor{
		VolumeDescriptorHeader: newHeader(TYPE_BOOT_RECORD),
		BootRecordBody:         BootRecordBody{BootSystemIdentifier: consts.EL_TORITO_BOOT_SYSTEM_ID},
	}
	d.SetCatalogLocation(catalogLBA)
	return d
}

type BootRecordDescriptor struct {
	VolumeDescriptorHeader
	BootRecordBody
}

type BootRecordBody struct {
	// Boot System Identifier names the system that understands the rest of the record. El Torito uses
	// "EL TORITO SPECIFICATION" padded with zero bytes.
	BootSystemIdentifier string `json:"boot_system_identifier"`
	// Boot Identifier is unused by El Torito and recorded as zero bytes.
	BootIdentifier string `json:"boot_identifier"`
	// Boot System Use. El Torito stores the boot catalog's logical block as a little-endian 32-bit number in the first
	// four bytes, which is byte 71 of the sector.
	BootSystemUse [BOOT_SYSTEM_USE_SIZE]byte `json:"boot_system_use"`
}

// CatalogLocation returns the logical block of the El Torito boot catalog.
func (b *BootRecordBody) CatalogLocation() uint32 {
	return binary.LittleEndian.Uint32(b.BootSystemUse[0:4])
}

// SetCatalogLocation records the logical block of the El Torito boot catalog.
func (b *BootRecordBody) SetCatalogLocation(lba uint32) {
	binary.LittleEndian.PutUint32(b.BootSystemUse[0:4], lba)
}

// Marshal converts the BootRecordDescriptor into its 2048-byte on-disk representation.
func (d *BootRecordDescriptor) Marshal() ([consts.ISO9660_SECTOR_SIZE]byte, error) {
	var buf [consts.ISO9660_SECTOR_SIZE]byte
	headerBytes, err := d.VolumeDescriptorHeader.Marshal()
	if err != nil {
		return buf, fmt.Errorf("failed to marshal VolumeDescriptorHeader: %w", err)
	}
	copy(buf[0:7], headerBytes[:])
	// [8-39] Boot System Identifier
	copy(buf[7:39], helpers.PadZero(d.BootSystemIdentifier, 32))
	// [40-71] Boot Identifier
	copy(buf[39:71], helpers.PadZero(d.BootIdentifier, 32))
	// [72-2048] Boot System Use
	copy(buf[71:], d.BootSystemUse[:])
	return buf, nil
}

// Unmarshal parses a 2048-byte sector into the BootRecordDescriptor.
func (d *BootRecordDescriptor) Unmarshal(data [consts.ISO9660_SECTOR_SIZE]byte) error {
	if err := d.VolumeDescriptorHeader.Unmarshal([7]byte(data[0:7])); err != nil {
		return fmt.Errorf("failed to unmarshal VolumeDescriptorHeader: %w", err)
	}
	if d.VolumeDescriptorType != TYPE_BOOT_RECORD {
		return fmt.Errorf("expected a boot record, got %s", d.VolumeDescriptorType)
	}
	d.BootSystemIdentifier = strings.TrimRight(string(data[7:39]), "\x00 ")
	d.BootIdentifier = strings.TrimRight(string(data[39:71]), "\x00 ")
	copy(d.BootSystemUse[:], data[71:])
	return nil
}
