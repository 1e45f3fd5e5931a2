package boot

// Platform represents the target booting system for an El-Torito bootable ISO.
type Platform uint8

const (
	BIOS Platform = 0x0  // Classic PC-BIOS x86
	PPC  Platform = 0x1  // PowerPC
	Mac  Platform = 0x2  // Macintosh systems
	EFI  Platform = 0xef // Extensible Firmware Interface (EFI)
)

func (p Platform) String() string {
	switch p {
	case BIOS:
		return "BIOS"
	case PPC:
		return "PowerPC"
	case Mac:
		return "Macintosh"
	case EFI:
		return "EFI"
	default:
		return "Unknown"
	}
}

// Emulation is the boot media type of a catalog entry.
type Emulation uint8

const (
	NoEmulation        Emulation = 0x0 // No emulation
	Floppy12Emulation  Emulation = 0x1 // Emulate a 1.2 MB floppy
	Floppy144Emulation Emulation = 0x2 // Emulate a 1.44 MB floppy
	Floppy288Emulation Emulation = 0x3 // Emulate a 2.88 MB floppy
	HardDiskEmulation  Emulation = 0x4 // Emulate a hard disk
)

// Diskette image sizes that select a floppy emulation.
const (
	Floppy12Size  = 1200 * 1024
	Floppy144Size = 1440 * 1024
	Floppy288Size = 2880 * 1024
)

func (e Emulation) String() string {
	switch e {
	case NoEmulation:
		return "NoEmul"
	case Floppy12Emulation:
		return "1.2MFloppy"
	case Floppy144Emulation:
		return "1.44MFloppy"
	case Floppy288Emulation:
		return "2.88MFloppy"
	case HardDiskEmulation:
		return "HardDisk"
	default:
		return "Unknown"
	}
}

// EmulationFor picks the media type for a boot image of size bytes. Without noEmulation a diskette emulation is used
// when the size matches one exactly, and hard disk emulation otherwise.
func EmulationFor(size int, noEmulation bool) Emulation {
	if noEmulation {
		return NoEmulation
	}
	switch size {
	case Floppy12Size:
		return Floppy12Emulation
	case Floppy144Size:
		return Floppy144Emulation
	case Floppy288Size:
		return Floppy288Emulation
	default:
		return HardDiskEmulation
	}
}

// SectorKind says which source, if any, provides the boot code in the system area.
type SectorKind int

const (
	SectorNone SectorKind = iota
	SectorEmbedded
	SectorGrub2
)

func (k SectorKind) String() string {
	switch k {
	case SectorEmbedded:
		return "embedded"
	case SectorGrub2:
		return "grub2-mbr"
	default:
		return "none"
	}
}

// BootSector is the boot code destined for the start of the system area.
type BootSector struct {
	Kind SectorKind
	Data []byte
}
