package iso9660

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bgrewell/isobuild/pkg/iso9660/boot"
	"github.com/bgrewell/isobuild/pkg/iso9660/descriptor"
	"github.com/bgrewell/isobuild/pkg/iso9660/directory"
	"github.com/bgrewell/isobuild/pkg/iso9660/parser"
	"github.com/bgrewell/isobuild/pkg/iso9660/pathtable"
	"github.com/bgrewell/isobuild/pkg/iso9660/systemarea"
	"github.com/bgrewell/isobuild/pkg/option"
)

//10.1 Level 1
// At Level 1 the following restrictions shall apply to a volume identified by a Primary Volume Descriptor:
//  - each file shall consist of only one File Section;
//  - a File Name shall not contain more than eight d-characters;
//  - a File Name Extension shall not contain more than three d-characters;
//  - a Directory Identifier shall not contain more than eight d-characters.
//10.2 Level 2
// At Level 2 the following restriction shall apply:
//  - each file shall consist of only one File Section.
//
// Images are written at level 1 under the strict naming policy and at level 2 under the relaxed one.

// Open decodes the system area, volume descriptors, boot catalog, path tables and root directory of an image.
func Open(isoReader io.ReaderAt, opts ...option.OpenOption) (*ISO9660, error) {
	openOptions := option.ApplyOpen(opts...)
	p := parser.NewParser(isoReader, openOptions)

	sa, err := p.GetSystemArea()
	if err != nil {
		return nil, err
	}

	set, err := p.GetVolumeDescriptorSet()
	if err != nil {
		return nil, err
	}

	catalog, err := p.GetElTorito(set.Boot)
	if err != nil {
		return nil, err
	}

	pathL, err := p.GetPathTable(set.Primary, true)
	if err != nil {
		return nil, fmt.Errorf("type L path table: %w", err)
	}
	pathM, err := p.GetPathTable(set.Primary, false)
	if err != nil {
		return nil, fmt.Errorf("type M path table: %w", err)
	}

	root := set.Primary.RootDirectory()
	records, err := p.ReadDirectoryRecords(root.LocationOfExtent, root.DataLength)
	if err != nil {
		return nil, err
	}

	return &ISO9660{
		isoReader:        isoReader,
		parser:           p,
		openOptions:      openOptions,
		systemArea:       sa,
		set:              set,
		elTorito:         catalog,
		pathTableL:       pathL,
		pathTableM:       pathM,
		directoryRecords: records,
	}, nil
}

// ISO9660 is a decoded view of an image.
type ISO9660 struct {
	isoReader        io.ReaderAt
	parser           *parser.Parser
	openOptions      *option.OpenOptions
	systemArea       *systemarea.SystemArea
	set              *descriptor.VolumeDescriptorSet
	elTorito         *boot.Catalog
	pathTableL       *pathtable.PathTable
	pathTableM       *pathtable.PathTable
	directoryRecords []*directory.DirectoryRecord
}

// GetVolumeID returns the volume identifier of the ISO9660 filesystem.
func (iso *ISO9660) GetVolumeID() string {
	return iso.set.Primary.VolumeIdentifier
}

// GetSystemID returns the system identifier of the ISO9660 filesystem.
func (iso *ISO9660) GetSystemID() string {
	return iso.set.Primary.SystemIdentifier
}

// GetVolumeSize returns the volume space size in sectors.
func (iso *ISO9660) GetVolumeSize() uint32 {
	return iso.set.Primary.VolumeSpaceSize
}

func (iso *ISO9660) GetVolumeSetID() string {
	return iso.set.Primary.VolumeSetIdentifier
}

func (iso *ISO9660) GetPublisherID() string {
	return iso.set.Primary.PublisherIdentifier
}

func (iso *ISO9660) GetDataPreparerID() string {
	return iso.set.Primary.DataPreparerIdentifier
}

func (iso *ISO9660) GetApplicationID() string {
	return iso.set.Primary.ApplicationIdentifier
}

// GetCreationDateTime returns the creation date and time of the ISO9660 filesystem.
func (iso *ISO9660) GetCreationDateTime() time.Time {
	return iso.set.Primary.VolumeCreationDateAndTime
}

// GetModificationDateTime returns the modification date and time of the ISO9660 filesystem.
func (iso *ISO9660) GetModificationDateTime() time.Time {
	return iso.set.Primary.VolumeModificationDateAndTime
}

// PrimaryVolumeDescriptor returns the decoded primary volume descriptor.
func (iso *ISO9660) PrimaryVolumeDescriptor() *descriptor.PrimaryVolumeDescriptor {
	return iso.set.Primary
}

// BootRecord returns the El Torito boot record, or nil when the image has none.
func (iso *ISO9660) BootRecord() *descriptor.BootRecordDescriptor {
	return iso.set.Boot
}

// SystemArea returns the first 16 sectors of the image.
func (iso *ISO9660) SystemArea() *systemarea.SystemArea {
	return iso.systemArea
}

// HasElTorito returns true if the ISO9660 filesystem has El Torito boot extensions.
func (iso *ISO9660) HasElTorito() bool {
	return iso.elTorito != nil
}

// BootCatalog returns the El Torito boot catalog, or nil when the image has none.
func (iso *ISO9660) BootCatalog() *boot.Catalog {
	return iso.elTorito
}

// BootImage reads length bytes of the boot image the catalog's default entry loads.
func (iso *ISO9660) BootImage(length uint32) ([]byte, error) {
	if iso.elTorito == nil {
		return nil, fmt.Errorf("image has no el torito boot catalog")
	}
	return iso.parser.GetBootImage(iso.elTorito, length)
}

// PathTables returns the type L and type M path tables.
func (iso *ISO9660) PathTables() (*pathtable.PathTable, *pathtable.PathTable) {
	return iso.pathTableL, iso.pathTableM
}

// RootDirectoryLocation returns the location of the root directory in the ISO9660 filesystem.
func (iso *ISO9660) RootDirectoryLocation() uint32 {
	return iso.set.Primary.RootDirectory().LocationOfExtent
}

// DirectoryRecords returns every record of the root directory, "." and ".." included, in recorded order.
func (iso *ISO9660) DirectoryRecords() []*directory.DirectoryRecord {
	return iso.directoryRecords
}

// ListFiles returns the file records of the root directory in recorded order.
func (iso *ISO9660) ListFiles() []*directory.DirectoryRecord {
	files := make([]*directory.DirectoryRecord, 0, len(iso.directoryRecords))
	for _, rec := range iso.directoryRecords {
		if !rec.IsSpecial() && !rec.IsDirectory() {
			files = append(files, rec)
		}
	}
	return files
}

// FileNames returns the identifiers of the root directory files. The ";1" version suffix is removed unless
// StripVersionInfo was disabled.
func (iso *ISO9660) FileNames() []string {
	names := make([]string, 0, len(iso.directoryRecords))
	for _, rec := range iso.ListFiles() {
		if iso.openOptions.StripVersionInfo {
			names = append(names, rec.Name())
		} else {
			names = append(names, rec.FileIdentifier)
		}
	}
	return names
}

// ReadFile returns the contents of the root directory file called name. Either "NAME.EXT" or "NAME.EXT;1" matches.
func (iso *ISO9660) ReadFile(name string) ([]byte, error) {
	for _, rec := range iso.ListFiles() {
		if rec.FileIdentifier == name || rec.Name() == directory.StripVersion(name) {
			return iso.parser.ReadFileData(rec)
		}
	}
	return nil, fmt.Errorf("%s: %w", name, os.ErrNotExist)
}

// Close closes the underlying reader when it is a file.
func (iso *ISO9660) Close() error {
	if f, ok := iso.isoReader.(*os.File); ok {
		return f.Close()
	}
	return nil
}
