package descriptor

import (
	"fmt"

	"github.com/bgrewell/isobuild/pkg/consts"
)

// VolumeDescriptorSet is the run of descriptors starting at sector 16: the primary descriptor, an optional El Torito
// boot record and the terminator.
type VolumeDescriptorSet struct {
	Primary    *PrimaryVolumeDescriptor
	Boot       *BootRecordDescriptor
	Terminator *VolumeDescriptorSetTerminator
}

// Descriptors returns the descriptors in the order they are recorded.
func (s *VolumeDescriptorSet) Descriptors() []VolumeDescriptor {
	list := []VolumeDescriptor{s.Primary}
	if s.Boot != nil {
		list = append(list, s.Boot)
	}
	return append(list, s.Terminator)
}

// Sectors returns the number of sectors the set occupies.
func (s *VolumeDescriptorSet) Sectors() uint32 {
	return uint32(len(s.Descriptors()))
}

// Marshal encodes the set into consecutive sectors.
func (s *VolumeDescriptorSet) Marshal() ([]byte, error) {
	if s.Primary == nil || s.Terminator == nil {
		return nil, fmt.Errorf("volume descriptor set needs a primary descriptor and a terminator")
	}
	var out []byte
	for _, d := range s.Descriptors() {
		sector, err := d.Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", d.Type(), err)
		}
		out = append(out, sector[:]...)
	}
	return out, nil
}

// UnmarshalSet walks the descriptors in data, which starts at the first descriptor sector, until the terminator.
// Descriptor types this package does not write are skipped.
func UnmarshalSet(data []byte) (*VolumeDescriptorSet, error) {
	set := &VolumeDescriptorSet{}
	for off := 0; off+consts.ISO9660_SECTOR_SIZE <= len(data); off += consts.ISO9660_SECTOR_SIZE {
		sector := [consts.ISO9660_SECTOR_SIZE]byte(data[off : off+consts.ISO9660_SECTOR_SIZE])
		var header VolumeDescriptorHeader
		if err := header.Unmarshal([7]byte(sector[:7])); err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", off/consts.ISO9660_SECTOR_SIZE, err)
		}
		switch header.VolumeDescriptorType {
		case TYPE_PRIMARY_DESCRIPTOR:
			set.Primary = &PrimaryVolumeDescriptor{}
			if err := set.Primary.Unmarshal(sector); err != nil {
				return nil, err
			}
		case TYPE_BOOT_RECORD:
			set.Boot = &BootRecordDescriptor{}
			if err := set.Boot.Unmarshal(sector); err != nil {
				return nil, err
			}
		case TYPE_TERMINATOR_DESCRIPTOR:
			set.Terminator = &VolumeDescriptorSetTerminator{}
			if err := set.Terminator.Unmarshal(sector); err != nil {
				return nil, err
			}
			if set.Primary == nil {
				return nil, fmt.Errorf("volume descriptor set has no primary descriptor")
			}
			return set, nil
		}
	}
	return nil, fmt.Errorf("volume descriptor set is not terminated")
}
