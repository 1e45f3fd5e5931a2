package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/bgrewell/isobuild/pkg/consts"
	"github.com/bgrewell/isobuild/pkg/iso9660/boot"
	"github.com/bgrewell/isobuild/pkg/iso9660/descriptor"
	"github.com/bgrewell/isobuild/pkg/iso9660/directory"
	"github.com/bgrewell/isobuild/pkg/iso9660/pathtable"
	"github.com/bgrewell/isobuild/pkg/iso9660/systemarea"
	"github.com/bgrewell/isobuild/pkg/logging"
	"github.com/bgrewell/isobuild/pkg/option"
)

// maxDescriptors bounds the walk of the volume descriptor set so a corrupt image without a terminator fails fast.
const maxDescriptors = 64

func NewParser(reader io.ReaderAt, options *option.OpenOptions) *Parser {
	if options == nil {
		options = option.ApplyOpen()
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Parser{
		reader:  reader,
		options: options,
		logger:  logger.WithName("parser"),
	}
}

// Parser decodes the structures of an ISO-9660 image. It is used to verify freshly built images.
type Parser struct {
	reader  io.ReaderAt
	options *option.OpenOptions
	logger  *logging.Logger
}

// readSectors reads count whole sectors starting at lba.
func (p *Parser) readSectors(lba uint32, count uint32) ([]byte, error) {
	buf := make([]byte, int(count)*consts.ISO9660_SECTOR_SIZE)
	return buf, p.readAt(buf, int64(lba)*consts.ISO9660_SECTOR_SIZE)
}

func (p *Parser) readAt(buf []byte, offset int64) error {
	n, err := p.reader.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return fmt.Errorf("short read at offset %d: got %d of %d bytes", offset, n, len(buf))
	}
	return err
}

// GetSystemArea reads the 16 sectors ahead of the volume descriptor set.
func (p *Parser) GetSystemArea() (*systemarea.SystemArea, error) {
	sa := &systemarea.SystemArea{}
	if err := p.readAt(sa.Contents[:], 0); err != nil {
		return nil, fmt.Errorf("failed to read system area: %w", err)
	}
	sa.Partitioned = sa.Contents[consts.MBR_SIGNATURE_OFFSET] == 0x55 &&
		sa.Contents[consts.MBR_SIGNATURE_OFFSET+1] == 0xAA &&
		sa.Partition().Type != systemarea.Empty
	return sa, nil
}

// GetVolumeDescriptorSet reads descriptors from sector 16 until the terminator.
func (p *Parser) GetVolumeDescriptorSet() (*descriptor.VolumeDescriptorSet, error) {
	var data []byte
	for i := uint32(0); i < maxDescriptors; i++ {
		sector, err := p.readSectors(consts.ISO9660_PVD_SECTOR+i, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to read volume descriptor %d: %w", i, err)
		}
		data = append(data, sector...)
		if descriptor.VolumeDescriptorType(sector[0]) == descriptor.TYPE_TERMINATOR_DESCRIPTOR {
			return descriptor.UnmarshalSet(data)
		}
	}
	return nil, fmt.Errorf("no volume descriptor set terminator in the first %d descriptors", maxDescriptors)
}

// GetElTorito reads the boot catalog the boot record points at. It returns nil when the boot record is not an El
// Torito record or El Torito parsing is disabled.
func (p *Parser) GetElTorito(bootRecord *descriptor.BootRecordDescriptor) (*boot.Catalog, error) {
	if bootRecord == nil || !p.options.ElToritoEnabled || !boot.IsElTorito(bootRecord.BootSystemIdentifier) {
		return nil, nil
	}
	location := bootRecord.CatalogLocation()
	data, err := p.readSectors(location, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read boot catalog at %d: %w", location, err)
	}
	catalog := &boot.Catalog{ObjectLocation: location}
	if err = catalog.Unmarshal(data); err != nil {
		return nil, err
	}
	p.logger.Debug("read boot catalog", "lba", location, "emulation", catalog.Initial.Emulation.String(),
		"load_rba", catalog.Initial.LoadRBA)
	return catalog, nil
}

// GetBootImage reads length bytes starting at the load RBA of the catalog's default entry. The catalog itself does
// not record the image length.
func (p *Parser) GetBootImage(catalog *boot.Catalog, length uint32) ([]byte, error) {
	buf := make([]byte, length)
	if err := p.readAt(buf, int64(catalog.Initial.LoadRBA)*consts.ISO9660_SECTOR_SIZE); err != nil {
		return nil, fmt.Errorf("failed to read boot image: %w", err)
	}
	return buf, nil
}

// GetPathTable reads the type L or type M path table recorded in pvd.
func (p *Parser) GetPathTable(pvd *descriptor.PrimaryVolumeDescriptor, littleEndian bool) (*pathtable.PathTable, error) {
	location := pvd.LocationOfTypeMPathTable
	if littleEndian {
		location = pvd.LocationOfTypeLPathTable
	}
	buf := make([]byte, pvd.PathTableSize)
	if err := p.readAt(buf, int64(location)*consts.ISO9660_SECTOR_SIZE); err != nil {
		return nil, fmt.Errorf("failed to read path table at %d: %w", location, err)
	}
	return pathtable.Unmarshal(buf, len(buf), littleEndian)
}

// ReadDirectoryRecords decodes every record in a directory extent. A zero length byte means the rest of the sector
// is padding.
func (p *Parser) ReadDirectoryRecords(lba uint32, dataLength uint32) ([]*directory.DirectoryRecord, error) {
	buf := make([]byte, dataLength)
	if err := p.readAt(buf, int64(lba)*consts.ISO9660_SECTOR_SIZE); err != nil {
		return nil, fmt.Errorf("failed to read directory at %d: %w", lba, err)
	}

	var records []*directory.DirectoryRecord
	for offset := 0; offset < len(buf); {
		if buf[offset] == 0 {
			offset = (offset/consts.ISO9660_SECTOR_SIZE + 1) * consts.ISO9660_SECTOR_SIZE
			continue
		}
		record := &directory.DirectoryRecord{}
		if err := record.Unmarshal(buf[offset:]); err != nil {
			return nil, fmt.Errorf("directory at %d, offset %d: %w", lba, offset, err)
		}
		records = append(records, record)
		offset += int(record.LengthOfDirectoryRecord)
	}
	p.logger.Trace("read directory", "lba", lba, "records", len(records))
	return records, nil
}

// ReadFileData returns the contents of the file a record describes.
func (p *Parser) ReadFileData(record *directory.DirectoryRecord) ([]byte, error) {
	buf := make([]byte, record.DataLength)
	if len(buf) == 0 {
		return buf, nil
	}
	if err := p.readAt(buf, int64(record.LocationOfExtent)*consts.ISO9660_SECTOR_SIZE); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", record.FileIdentifier, err)
	}
	return buf, nil
}
