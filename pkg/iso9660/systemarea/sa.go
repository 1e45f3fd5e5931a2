package systemarea

import (
	"fmt"

	"github.com/bgrewell/isobuild/pkg/consts"
	"github.com/bgrewell/isobuild/pkg/iso9660/boot"
	"github.com/bgrewell/isobuild/pkg/iso9660/info"
)

type SystemArea struct {
	// System Area's use isn't defined in the ISO 9660 standard. It carries boot code and a partition table for hybrid
	// images and is zero otherwise.
	Contents [consts.ISO9660_SYSTEM_AREA_SIZE]byte
	// Kind records which boot code was written.
	Kind boot.SectorKind
	// Partitioned is set when a protective partition table was written.
	Partitioned bool
}

// Build lays out the system area. The boot sector is copied to offset 0, a GRUB2 MBR is pointed at the boot image
// when there is one and protective writes a single partition spanning imageSectors.
func Build(sector boot.BootSector, protective bool, imageSectors uint32, bootImage *uint32) (*SystemArea, error) {
	if len(sector.Data) > consts.ISO9660_SYSTEM_AREA_SIZE {
		return nil, fmt.Errorf("boot sector is %d bytes, system area holds %d", len(sector.Data), consts.ISO9660_SYSTEM_AREA_SIZE)
	}
	if sector.Kind == boot.SectorGrub2 && protective {
		return nil, fmt.Errorf("grub2 mbr and protective partition table share the same bytes")
	}
	sa := &SystemArea{Kind: sector.Kind, Partitioned: protective}
	copy(sa.Contents[:], sector.Data)

	if sector.Kind == boot.SectorGrub2 && bootImage != nil {
		PatchGrub2MBR(sa.Contents[:], *bootImage)
	}
	if protective {
		WritePartitionTable(sa.Contents[:consts.MBR_SIZE], ProtectivePartition(imageSectors))
	}
	return sa, nil
}

// Partition returns the first partition table entry.
func (s *SystemArea) Partition() PartitionEntry {
	var p PartitionEntry
	_ = p.Unmarshal(s.Contents[consts.MBR_PARTITION_TABLE_START:])
	return p
}

func (s *SystemArea) Type() string {
	return "System Area"
}

func (s *SystemArea) Name() string {
	return "System Area"
}

func (s *SystemArea) Description() string {
	if s.Partitioned {
		return fmt.Sprintf("boot code: %s, protective mbr", s.Kind)
	}
	return fmt.Sprintf("boot code: %s", s.Kind)
}

func (s *SystemArea) Properties() map[string]interface{} {
	props := map[string]interface{}{
		"BootCode":    s.Kind.String(),
		"Partitioned": s.Partitioned,
	}
	if s.Partitioned {
		p := s.Partition()
		props["PartitionType"] = p.Type.String()
		props["PartitionBlocks"] = p.Blocks
	}
	return props
}

func (s *SystemArea) Offset() int64 {
	return 0
}

func (s *SystemArea) Size() int {
	return consts.ISO9660_SYSTEM_AREA_SIZE
}

func (s *SystemArea) GetObjects() []info.ImageObject {
	return []info.ImageObject{s}
}

func (s *SystemArea) Marshal() ([]byte, error) {
	return s.Contents[:], nil
}
