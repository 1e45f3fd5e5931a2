package boot

import (
	"encoding/binary"
	"fmt"

	"github.com/bgrewell/isobuild/pkg/consts"
	"github.com/bgrewell/isobuild/pkg/iso9660/encoding"
	"github.com/bgrewell/isobuild/pkg/iso9660/extent"
	"github.com/bgrewell/isobuild/pkg/iso9660/info"
	"github.com/bgrewell/isobuild/pkg/iso9660/isoerr"
	"github.com/bgrewell/isobuild/pkg/logging"
)

const (
	// Boot info table (mkisofs -boot-info-table): 56 bytes at offset 8, checksum over everything from offset 64.
	BootInfoTableOffset   = 8
	BootInfoTableLength   = 56
	bootInfoChecksumStart = BootInfoTableOffset + BootInfoTableLength

	// GRUB2 boot info (xorriso grub2-boot-info): 64-bit block address of the image plus 5 at offset 2548.
	Grub2BootInfoOffset = 2548
	grub2BootInfoLength = 8
	grub2BootInfoAdjust = 5
)

// Config carries the boot related inputs of a build. Data has already been read from disk.
type Config struct {
	BootImage     []byte
	BootImageName string
	NoEmuBoot     bool
	NoBoot        bool
	BootInfoTable bool
	Grub2BootInfo bool
	BootLoadSize  uint16
	LoadSegment   uint16
	Platform      Platform

	EmbeddedBoot         []byte
	Grub2MBR             []byte
	ProtectiveMSDOSLabel bool
}

// Assets holds the validated boot inputs for one build. Size is known up front; Finalize produces the patched boot
// image once its extent and the PVD location are fixed.
type Assets struct {
	cfg    Config
	sector BootSector
	image  []byte
	extent extent.Extent
	logger *logging.Logger
}

// NewAssets validates cfg. Checks run in a fixed order so the first conflicting option reported is deterministic.
func NewAssets(cfg Config, logger *logging.Logger) (*Assets, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	a := &Assets{cfg: cfg, logger: logger.WithName("boot")}

	if cfg.EmbeddedBoot != nil && cfg.Grub2MBR != nil {
		return nil, fmt.Errorf("embedded boot sector and grub2 mbr both requested: %w", isoerr.ErrConflictingBootSector)
	}
	if cfg.Grub2MBR != nil && cfg.ProtectiveMSDOSLabel {
		return nil, fmt.Errorf("grub2 mbr and protective msdos label both requested: %w", isoerr.ErrConflictingBootSector)
	}
	if cfg.BootInfoTable && cfg.Grub2BootInfo {
		return nil, fmt.Errorf("boot-info-table and grub2-boot-info both requested: %w", isoerr.ErrConflictingBootInfoFormat)
	}

	switch {
	case cfg.EmbeddedBoot != nil:
		a.sector = BootSector{Kind: SectorEmbedded, Data: cfg.EmbeddedBoot}
	case cfg.Grub2MBR != nil:
		a.sector = BootSector{Kind: SectorGrub2, Data: cfg.Grub2MBR}
	}
	if len(a.sector.Data) > consts.ISO9660_SYSTEM_AREA_SIZE {
		return nil, fmt.Errorf("%s boot sector is %d bytes, system area holds %d: %w",
			a.sector.Kind, len(a.sector.Data), consts.ISO9660_SYSTEM_AREA_SIZE, isoerr.ErrBootSectorTooLarge)
	}

	if cfg.NoBoot {
		if cfg.BootImage != nil {
			a.logger.Debug("no-boot set, boot image will not be written", "image", cfg.BootImageName)
		}
		return a, nil
	}
	if cfg.BootImage == nil {
		return nil, fmt.Errorf("el torito boot requested: %w", isoerr.ErrMissingBootImage)
	}
	if len(cfg.BootImage) == 0 {
		return nil, fmt.Errorf("boot image %s is empty: %w", cfg.BootImageName, isoerr.ErrBootImageTooSmall)
	}
	if cfg.BootInfoTable && len(cfg.BootImage) < bootInfoChecksumStart {
		return nil, fmt.Errorf("boot-info-table needs %d bytes, %s has %d: %w",
			bootInfoChecksumStart, cfg.BootImageName, len(cfg.BootImage), isoerr.ErrBootImageTooSmall)
	}
	if cfg.Grub2BootInfo && len(cfg.BootImage) < Grub2BootInfoOffset+grub2BootInfoLength {
		return nil, fmt.Errorf("grub2-boot-info needs %d bytes, %s has %d: %w",
			Grub2BootInfoOffset+grub2BootInfoLength, cfg.BootImageName, len(cfg.BootImage), isoerr.ErrBootImageTooSmall)
	}
	a.image = cfg.BootImage
	a.logger.Debug("boot image accepted", "image", cfg.BootImageName, "size", len(cfg.BootImage),
		"emulation", a.Emulation().String())
	return a, nil
}

// HasCatalog reports whether the image carries an El Torito boot record, catalog and boot image.
func (a *Assets) HasCatalog() bool {
	return a.image != nil
}

// Sector returns the boot code for the system area.
func (a *Assets) Sector() BootSector {
	return a.sector
}

// ProtectiveMSDOSLabel reports whether a protective partition table is requested.
func (a *Assets) ProtectiveMSDOSLabel() bool {
	return a.cfg.ProtectiveMSDOSLabel
}

// Size returns the length in bytes of the boot image, zero when there is none.
func (a *Assets) Size() uint32 {
	return uint32(len(a.image))
}

// Emulation returns the media type the catalog entry will advertise.
func (a *Assets) Emulation() Emulation {
	return EmulationFor(len(a.image), a.cfg.NoEmuBoot)
}

// Extent returns the extent passed to Finalize.
func (a *Assets) Extent() extent.Extent {
	return a.extent
}

// Finalize returns a copy of the boot image with the requested boot info patched in. The source bytes are not
// modified.
func (a *Assets) Finalize(e extent.Extent, pvdLBA uint32) ([]byte, error) {
	if a.image == nil {
		return nil, nil
	}
	if e.Length != uint32(len(a.image)) {
		return nil, fmt.Errorf("boot image extent holds %d bytes, image is %d", e.Length, len(a.image))
	}
	a.extent = e
	out := make([]byte, len(a.image))
	copy(out, a.image)

	if a.cfg.BootInfoTable {
		PatchBootInfoTable(out, pvdLBA, e.LBA)
		a.logger.Trace("patched boot info table", "pvd", pvdLBA, "lba", e.LBA)
	}
	if a.cfg.Grub2BootInfo {
		PatchGrub2BootInfo(out, e.LBA)
		a.logger.Trace("patched grub2 boot info", "lba", e.LBA)
	}
	return out, nil
}

// Catalog returns the boot catalog for the finalized boot image.
func (a *Assets) Catalog(location uint32) *Catalog {
	emulation := a.Emulation()
	c := &Catalog{
		Validation: ValidationEntry{Platform: a.cfg.Platform},
		Initial: InitialEntry{
			BootIndicator: bootableIndicator,
			Emulation:     emulation,
			LoadSegment:   a.cfg.LoadSegment,
			SectorCount:   SectorCountFor(len(a.image), emulation, a.cfg.BootLoadSize),
			LoadRBA:       a.extent.LBA,
		},
		ObjectLocation: location,
	}
	if emulation == HardDiskEmulation && len(a.image) >= consts.MBR_SIZE {
		c.Initial.SystemType = a.image[consts.MBR_PARTITION_TABLE_START+4]
	}
	return c
}

// Image returns a layout object for the boot image.
func (a *Assets) Image() info.ImageObject {
	return &extent.FileExtent{FileIdentifier: "Boot Image", Source: a.cfg.BootImageName, Extent: a.extent}
}

// PatchBootInfoTable writes the mkisofs boot info table into image: PVD location, boot image location, boot image
// length and the 32-bit checksum of everything from offset 64, followed by 40 reserved zero bytes.
func PatchBootInfoTable(image []byte, pvdLBA, bootLBA uint32) {
	table := image[BootInfoTableOffset:bootInfoChecksumStart]
	clear(table)
	binary.LittleEndian.PutUint32(table[0:4], pvdLBA)
	binary.LittleEndian.PutUint32(table[4:8], bootLBA)
	binary.LittleEndian.PutUint32(table[8:12], uint32(len(image)))
	binary.LittleEndian.PutUint32(table[12:16], encoding.WordSum32(image[bootInfoChecksumStart:]))
}

// PatchGrub2BootInfo writes the boot image's 512-byte block address plus 5, where GRUB2's cdboot.img looks for it.
func PatchGrub2BootInfo(image []byte, bootLBA uint32) {
	binary.LittleEndian.PutUint64(image[Grub2BootInfoOffset:], uint64(bootLBA)*4+grub2BootInfoAdjust)
}
