package descriptor

import (
	"fmt"

	"github.com/bgrewell/isobuild/pkg/consts"
)

func NewVolumeDescriptorSetTerminator() *VolumeDescriptorSetTerminator {
	return &VolumeDescriptorSetTerminator{VolumeDescriptorHeader: newHeader(TYPE_TERMINATOR_DESCRIPTOR)}
}

// VolumeDescriptorSetTerminator ends the volume descriptor set. Everything after the header is reserved and zero.
type VolumeDescriptorSetTerminator struct {
	VolumeDescriptorHeader
}

func (d *VolumeDescriptorSetTerminator) Marshal() ([consts.ISO9660_SECTOR_SIZE]byte, error) {
	var buf [consts.ISO9660_SECTOR_SIZE]byte
	headerBytes, err := d.VolumeDescriptorHeader.Marshal()
	if err != nil {
		return buf, fmt.Errorf("failed to marshal VolumeDescriptorHeader: %w", err)
	}
	copy(buf[:], headerBytes[:])
	return buf, nil
}

func (d *VolumeDescriptorSetTerminator) Unmarshal(data [consts.ISO9660_SECTOR_SIZE]byte) error {
	if err := d.VolumeDescriptorHeader.Unmarshal([7]byte(data[0:7])); err != nil {
		return fmt.Errorf("failed to unmarshal VolumeDescriptorHeader: %w", err)
	}
	if d.VolumeDescriptorType != TYPE_TERMINATOR_DESCRIPTOR {
		return fmt.Errorf("expected a set terminator, got %s", d.VolumeDescriptorType)
	}
	return nil
}
