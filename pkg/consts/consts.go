package consts

const (
	// Number of system area sectors.
	ISO9660_SYSTEM_AREA_SECTORS = 16

	// Size of the system area in bytes.
	ISO9660_SYSTEM_AREA_SIZE = ISO9660_SYSTEM_AREA_SECTORS * ISO9660_SECTOR_SIZE

	// Standard ISO9660 identifier.
	ISO9660_STD_IDENTIFIER = "CD001"

	// ISO9660 volume descriptor version (always 1).
	ISO9660_VOLUME_DESC_VERSION = 1

	// ISO9660 file structure version (always 1 for a Primary Volume Descriptor).
	ISO9660_FILE_STRUCTURE_VERSION = 1

	// ISO9660 default sector size.
	ISO9660_SECTOR_SIZE = 2048

	// ISO9660 volume descriptor header size
	ISO9660_VOLUME_DESC_HEADER_SIZE = 7

	// ISO9660 application use area size
	ISO9660_APPLICATION_USE_SIZE = 512

	// Logical sector of the Primary Volume Descriptor, the first sector after the system area.
	ISO9660_PVD_SECTOR = ISO9660_SYSTEM_AREA_SECTORS

	// Version suffix appended to every file identifier.
	ISO9660_FILE_VERSION = ";1"

	// El Torito bootable cdrom system identifier.
	EL_TORITO_BOOT_SYSTEM_ID = "EL TORITO SPECIFICATION"

	// El Torito requires the Boot Record Volume Descriptor at logical sector 17.
	EL_TORITO_BOOT_RECORD_SECTOR = 0x11

	// El Torito virtual sector size used by the sector count of a boot entry.
	EL_TORITO_VIRTUAL_SECTOR_SIZE = 512

	// Size of a single boot catalog entry.
	EL_TORITO_ENTRY_SIZE = 32

	// Classic MBR layout.
	MBR_SIZE                  = 512
	MBR_PARTITION_TABLE_START = 446
	MBR_PARTITION_ENTRY_SIZE  = 16
	MBR_SIGNATURE_OFFSET      = 510

	// a-characters set which are specified in the International Reference Version at the following positions.
	//   | 2/0 - 2/2
	//   | 2/5 - 2/15
	//   | 3/0 - 3/15
	//   | 4/1 - 4/15
	//   | 5/0 - 5/10
	//   | 5/15
	A_CHARACTERS = " !\"%&'()*+,-./0123456789:;<=>?ABCDEFGHIJKLMNOPQRSTUVWXYZ_"

	// d-characters: 37 characters in the following positions of the International Reference Version
	// | 3/0 - 3/9
	// | 4/1 - 5/10
	// | 5/15
	D_CHARACTERS = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_"

	// Separators allowed by ISO9660 0x2E and 0x3B.
	ISO9660_SEPARATOR_1 = "."
	ISO9660_SEPARATOR_2 = ";"

	// ISO9660 Filler 0x20 (space)
	ISO9660_FILLER = ' '
)
