package descriptor

import (
	"fmt"

	"github.com/bgrewell/isobuild/pkg/consts"
)

type VolumeDescriptorHeader struct {
	// Volume Descriptor Types.
	//  | 0 = Boot Record
	//  | 1 = Primary
	//  | 2 = Supplementary
	//  | 3 = Partition
	//  | 4 - 254 = Reserved
	//  | 255 = Terminator
	VolumeDescriptorType VolumeDescriptorType `json:"volume_descriptor_type"`
	// Standard Identifier should always be 'CD001'.
	StandardIdentifier string `json:"standard_identifier"`
	// Volume Descriptor Version. Always 1 for the descriptors this package writes.
	VolumeDescriptorVersion uint8 `json:"volume_descriptor_version"`
}

func newHeader(t VolumeDescriptorType) VolumeDescriptorHeader {
	return VolumeDescriptorHeader{
		VolumeDescriptorType:    t,
		StandardIdentifier:      consts.ISO9660_STD_IDENTIFIER,
		VolumeDescriptorVersion: consts.ISO9660_VOLUME_DESC_VERSION,
	}
}

func (vdh *VolumeDescriptorHeader) Type() VolumeDescriptorType {
	return vdh.VolumeDescriptorType
}

// Marshal converts the VolumeDescriptorHeader into its 7-byte on-disk representation.
func (vdh *VolumeDescriptorHeader) Marshal() ([consts.ISO9660_VOLUME_DESC_HEADER_SIZE]byte, error) {
	var buf [consts.ISO9660_VOLUME_DESC_HEADER_SIZE]byte
	if vdh.StandardIdentifier != consts.ISO9660_STD_IDENTIFIER {
		return buf, fmt.Errorf("unexpected standard identifier: %q", vdh.StandardIdentifier)
	}
	// [1] Volume Descriptor Type
	buf[0] = byte(vdh.VolumeDescriptorType)
	// [2-6] Standard Identifier
	copy(buf[1:6], vdh.StandardIdentifier)
	// [7] Volume Descriptor Version
	buf[6] = vdh.VolumeDescriptorVersion
	return buf, nil
}

// Unmarshal parses the 7-byte header and checks the standard identifier.
func (vdh *VolumeDescriptorHeader) Unmarshal(data [consts.ISO9660_VOLUME_DESC_HEADER_SIZE]byte) error {
	vdh.VolumeDescriptorType = VolumeDescriptorType(data[0])
	vdh.StandardIdentifier = string(data[1:6])
	vdh.VolumeDescriptorVersion = data[6]
	if vdh.StandardIdentifier != consts.ISO9660_STD_IDENTIFIER {
		return fmt.Errorf("unexpected standard identifier: %q", vdh.StandardIdentifier)
	}
	return nil
}
