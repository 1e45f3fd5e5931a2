package boot

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/bgrewell/isobuild/pkg/consts"
	"github.com/bgrewell/isobuild/pkg/helpers"
	"github.com/bgrewell/isobuild/pkg/iso9660/encoding"
	"github.com/bgrewell/isobuild/pkg/iso9660/info"
)

const (
	// Default catalog name used in layout reports.
	EL_TORITO_DEFAULT_CATALOG = "BOOT.CAT"

	validationHeaderID  = 0x01
	bootableIndicator   = 0x88
	validationKey55     = 0x55
	validationKeyAA     = 0xAA
	idStringLength      = 24
	checksumOffset      = 0x1C
	defaultLoadSegment  = 0x07C0
	maxNoEmuSectorCount = 0xFFFF
)

// ValidationEntry is the first 32 bytes of the boot catalog. Its 16-bit little-endian words sum to zero.
type ValidationEntry struct {
	// [1] Header ID, must be 0x01
	HeaderID uint8 `json:"header_id"`
	// [2] Platform ID
	Platform Platform `json:"platform"`
	// [5-28] ID string identifying the manufacturer or developer of the CD-ROM
	IDString string `json:"id_string"`
	// [29-30] Checksum word, computed by Marshal
	Checksum uint16 `json:"checksum"`
}

// Marshal encodes the entry and computes its checksum.
func (v *ValidationEntry) Marshal() ([consts.EL_TORITO_ENTRY_SIZE]byte, error) {
	var data [consts.EL_TORITO_ENTRY_SIZE]byte
	if len(v.IDString) > idStringLength {
		return data, fmt.Errorf("validation entry id string %q exceeds %d bytes", v.IDString, idStringLength)
	}
	data[0] = validationHeaderID
	data[1] = byte(v.Platform)
	copy(data[4:4+idStringLength], v.IDString)
	data[0x1E] = validationKey55
	data[0x1F] = validationKeyAA

	v.HeaderID = validationHeaderID
	v.Checksum = -encoding.WordSum16(data[:])
	binary.LittleEndian.PutUint16(data[checksumOffset:], v.Checksum)
	return data, nil
}

// Unmarshal decodes the entry, validating the header, key bytes and checksum.
func (v *ValidationEntry) Unmarshal(data []byte) error {
	if len(data) < consts.EL_TORITO_ENTRY_SIZE {
		return fmt.Errorf("validation entry: data too short")
	}
	if data[0] != validationHeaderID {
		return fmt.Errorf("validation entry: invalid header ID 0x%02x", data[0])
	}
	if data[0x1E] != validationKey55 || data[0x1F] != validationKeyAA {
		return fmt.Errorf("validation entry: invalid key bytes 0x%02x%02x", data[0x1E], data[0x1F])
	}
	if sum := encoding.WordSum16(data[:consts.EL_TORITO_ENTRY_SIZE]); sum != 0 {
		return fmt.Errorf("validation entry: checksum invalid, words sum to 0x%04x", sum)
	}
	v.HeaderID = data[0]
	v.Platform = Platform(data[1])
	v.IDString = strings.TrimRight(string(data[4:4+idStringLength]), "\x00 ")
	v.Checksum = binary.LittleEndian.Uint16(data[checksumOffset:])
	return nil
}

// InitialEntry is the default boot entry that follows the validation entry.
type InitialEntry struct {
	// [1] Boot Indicator, 0x88 for bootable
	BootIndicator uint8 `json:"boot_indicator"`
	// [2] Boot media type
	Emulation Emulation `json:"emulation"`
	// [3-4] Load Segment, zero means the traditional 0x7C0
	LoadSegment uint16 `json:"load_segment"`
	// [5] System Type, the partition type from the boot image's partition table
	SystemType uint8 `json:"system_type"`
	// [7-8] Sector Count, in 512-byte virtual sectors
	SectorCount uint16 `json:"sector_count"`
	// [9-12] Load RBA, the logical block of the boot image
	LoadRBA uint32 `json:"load_rba"`
}

func (e *InitialEntry) Marshal() [consts.EL_TORITO_ENTRY_SIZE]byte {
	var data [consts.EL_TORITO_ENTRY_SIZE]byte
	data[0] = e.BootIndicator
	data[1] = byte(e.Emulation)
	binary.LittleEndian.PutUint16(data[2:4], e.LoadSegment)
	data[4] = e.SystemType
	binary.LittleEndian.PutUint16(data[6:8], e.SectorCount)
	binary.LittleEndian.PutUint32(data[8:12], e.LoadRBA)
	return data
}

func (e *InitialEntry) Unmarshal(data []byte) error {
	if len(data) < consts.EL_TORITO_ENTRY_SIZE {
		return fmt.Errorf("initial entry: data too short")
	}
	e.BootIndicator = data[0]
	e.Emulation = Emulation(data[1])
	e.LoadSegment = binary.LittleEndian.Uint16(data[2:4])
	e.SystemType = data[4]
	e.SectorCount = binary.LittleEndian.Uint16(data[6:8])
	e.LoadRBA = binary.LittleEndian.Uint32(data[8:12])
	return nil
}

// EffectiveLoadSegment returns the segment the BIOS will load to.
func (e *InitialEntry) EffectiveLoadSegment() uint16 {
	if e.LoadSegment == 0 {
		return defaultLoadSegment
	}
	return e.LoadSegment
}

// Bootable reports whether the entry is marked bootable.
func (e *InitialEntry) Bootable() bool {
	return e.BootIndicator == bootableIndicator
}

// SectorCountFor returns the number of 512-byte virtual sectors the BIOS should load. A non-zero loadSize wins.
// Otherwise a no emulation image is loaded whole, clamped to the 16-bit field, and emulated media load one sector.
func SectorCountFor(size int, emulation Emulation, loadSize uint16) uint16 {
	if loadSize != 0 {
		return loadSize
	}
	if emulation != NoEmulation {
		return 1
	}
	n := helpers.SectorsFor(uint64(size), consts.EL_TORITO_VIRTUAL_SECTOR_SIZE)
	if n > maxNoEmuSectorCount {
		return maxNoEmuSectorCount
	}
	return uint16(n)
}

// Catalog is the El Torito boot catalog: a validation entry and a single default entry in one sector.
type Catalog struct {
	Validation ValidationEntry `json:"validation"`
	Initial    InitialEntry    `json:"initial"`
	// --- Fields that are not part of the ISO9660 object ---
	// Object Location (in sectors)
	ObjectLocation uint32 `json:"object_location"`
}

func (c *Catalog) Type() string {
	return "Boot Catalog"
}

func (c *Catalog) Name() string {
	return EL_TORITO_DEFAULT_CATALOG
}

func (c *Catalog) Description() string {
	return fmt.Sprintf("%s, %s", c.Validation.Platform, c.Initial.Emulation)
}

func (c *Catalog) Properties() map[string]interface{} {
	return map[string]interface{}{
		"Platform":    c.Validation.Platform.String(),
		"Emulation":   c.Initial.Emulation.String(),
		"LoadSegment": c.Initial.EffectiveLoadSegment(),
		"SectorCount": c.Initial.SectorCount,
		"LoadRBA":     c.Initial.LoadRBA,
	}
}

func (c *Catalog) Offset() int64 {
	return int64(c.ObjectLocation) * consts.ISO9660_SECTOR_SIZE
}

func (c *Catalog) Size() int {
	return consts.ISO9660_SECTOR_SIZE
}

func (c *Catalog) GetObjects() []info.ImageObject {
	return []info.ImageObject{c}
}

// Marshal encodes the catalog sector. The remainder after the default entry is zero, which terminates the catalog.
func (c *Catalog) Marshal() ([]byte, error) {
	data := make([]byte, consts.ISO9660_SECTOR_SIZE)
	validation, err := c.Validation.Marshal()
	if err != nil {
		return nil, err
	}
	copy(data, validation[:])
	initial := c.Initial.Marshal()
	copy(data[consts.EL_TORITO_ENTRY_SIZE:], initial[:])
	return data, nil
}

// Unmarshal decodes a catalog sector.
func (c *Catalog) Unmarshal(data []byte) error {
	if len(data) < 2*consts.EL_TORITO_ENTRY_SIZE {
		return fmt.Errorf("boot catalog: data too short")
	}
	if err := c.Validation.Unmarshal(data); err != nil {
		return fmt.Errorf("boot catalog: %w", err)
	}
	if err := c.Initial.Unmarshal(data[consts.EL_TORITO_ENTRY_SIZE:]); err != nil {
		return fmt.Errorf("boot catalog: %w", err)
	}
	return nil
}

// IsElTorito reports whether a boot record's system identifier names El Torito.
func IsElTorito(bootSystemIdentifier string) bool {
	trimmed := strings.TrimRight(bootSystemIdentifier, "\x00")
	return trimmed == consts.EL_TORITO_BOOT_SYSTEM_ID
}
