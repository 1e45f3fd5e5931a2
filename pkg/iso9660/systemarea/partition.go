package systemarea

// PartitionType is the type byte of an MBR partition entry.
type PartitionType byte

const (
	Empty       PartitionType = 0x00
	Fat12       PartitionType = 0x01
	Fat16       PartitionType = 0x04
	ExtendedCHS PartitionType = 0x05
	Fat16b      PartitionType = 0x06
	NTFS        PartitionType = 0x07
	Fat32CHS    PartitionType = 0x0b
	Fat32LBA    PartitionType = 0x0c
	Fat16bLBA   PartitionType = 0x0e
	ExtendedLBA PartitionType = 0x0f
	Linux       PartitionType = 0x83
	LinuxLVM    PartitionType = 0x8e
	Iso9660     PartitionType = 0x96
	HFS         PartitionType = 0xaf
	EFISystem   PartitionType = 0xef
)

func (p PartitionType) String() string {
	switch p {
	case Empty:
		return "Empty"
	case Fat12:
		return "FAT12"
	case Fat16:
		return "FAT16"
	case ExtendedCHS:
		return "Extended (CHS)"
	case Fat16b:
		return "FAT16B"
	case NTFS:
		return "NTFS"
	case Fat32CHS:
		return "FAT32 (CHS)"
	case Fat32LBA:
		return "FAT32 (LBA)"
	case Fat16bLBA:
		return "FAT16B (LBA)"
	case ExtendedLBA:
		return "Extended (LBA)"
	case Linux:
		return "Linux"
	case LinuxLVM:
		return "Linux LVM"
	case Iso9660:
		return "ISO9660"
	case HFS:
		return "HFS"
	case EFISystem:
		return "EFI System"
	default:
		return "Unknown"
	}
}
