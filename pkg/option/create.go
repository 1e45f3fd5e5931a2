package option

import (
	"io/fs"
	"os"
	"time"

	"github.com/bgrewell/isobuild/pkg/iso9660/descriptor"
	"github.com/bgrewell/isobuild/pkg/iso9660/directory"
	"github.com/bgrewell/isobuild/pkg/logging"
)

const (
	// DEFAULT_APPLICATION_IDENTIFIER is recorded in the PVD unless overridden.
	DEFAULT_APPLICATION_IDENTIFIER = "ISOBUILD"
)

// FileReader fetches the bytes of input files, boot images and boot sectors.
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// FileReaderFunc adapts a function to FileReader.
type FileReaderFunc func(name string) ([]byte, error)

func (f FileReaderFunc) ReadFile(name string) ([]byte, error) {
	return f(name)
}

// OSFileReader reads from the host filesystem.
var OSFileReader FileReader = FileReaderFunc(os.ReadFile)

// FSFileReader reads from fsys, which makes in-memory builds easy to test with fstest.MapFS.
func FSFileReader(fsys fs.FS) FileReader {
	return FileReaderFunc(func(name string) ([]byte, error) {
		return fs.ReadFile(fsys, name)
	})
}

// Clock supplies the timestamp recorded in the volume descriptor and directory records.
type Clock func() time.Time

// FixedClock returns a Clock that always reports t, for reproducible images.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// CreationProgressCallback is called after each input file has been copied into the image.
// Parameters:
// - currentFilename: The source path of the file just copied.
// - bytesTransferred: The number of bytes copied for the current file.
// - totalBytes: The total number of bytes of the current file.
// - currentFileNumber: The 1-based count of files copied so far.
// - totalFileCount: The total number of files to be copied.
type CreationProgressCallback func(
	currentFilename string,
	bytesTransferred int64,
	totalBytes int64,
	currentFileNumber int,
	totalFileCount int,
)

// ElToritoOptions controls the El Torito boot catalog.
type ElToritoOptions struct {
	// BootImage is the path of the El Torito boot image. Required unless NoBoot is set.
	BootImage string `yaml:"boot_image"`
	// NoEmuBoot selects no emulation instead of diskette or hard disk emulation.
	NoEmuBoot bool `yaml:"no_emu_boot"`
	// NoBoot omits the boot record, the catalog and the boot image.
	NoBoot bool `yaml:"no_boot"`
	// BootInfoTable patches the mkisofs boot info table into the boot image.
	BootInfoTable bool `yaml:"boot_info_table"`
	// Grub2BootInfo patches GRUB2's boot info into the boot image.
	Grub2BootInfo bool `yaml:"grub2_boot_info"`
}

type CreateOptions struct {
	VolumeName           string
	EmbeddedBoot         string
	Grub2MBR             string
	BootLoadSize         uint32
	LoadSegment          uint16
	ProtectiveMSDOSLabel bool
	InputFiles           []string
	ElTorito             ElToritoOptions
	Naming               directory.NamingPolicy
	Identifiers          descriptor.Identifiers
	Clock                Clock
	FileReader           FileReader
	Workers              int
	ProgressCallback     CreationProgressCallback
	Logger               *logging.Logger
}

type CreateOption func(*CreateOptions)

// DefaultCreateOptions returns the options a build starts from before CreateOption values are applied.
func DefaultCreateOptions() *CreateOptions {
	return &CreateOptions{
		Naming:      directory.NamingRelaxed,
		Identifiers: descriptor.Identifiers{Application: DEFAULT_APPLICATION_IDENTIFIER},
		Clock:       time.Now,
		FileReader:  OSFileReader,
		Logger:      logging.DefaultLogger(),
	}
}

// Apply returns the defaults with opts applied in order.
func Apply(opts ...CreateOption) *CreateOptions {
	o := DefaultCreateOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithVolumeName(name string) CreateOption {
	return func(o *CreateOptions) {
		o.VolumeName = name
	}
}

// WithEmbeddedBoot writes the file at path into the system area.
func WithEmbeddedBoot(path string) CreateOption {
	return func(o *CreateOptions) {
		o.EmbeddedBoot = path
	}
}

// WithGrub2MBR writes a GRUB2 boot.img at the start of the system area and points it at the boot image.
func WithGrub2MBR(path string) CreateOption {
	return func(o *CreateOptions) {
		o.Grub2MBR = path
	}
}

// WithBootLoadSize sets how many 512-byte virtual sectors the BIOS loads from the boot image. Zero loads the whole
// image. The catalog field is 16 bits wide, so larger values are clamped.
func WithBootLoadSize(sectors uint32) CreateOption {
	return func(o *CreateOptions) {
		o.BootLoadSize = sectors
	}
}

func WithLoadSegment(segment uint16) CreateOption {
	return func(o *CreateOptions) {
		o.LoadSegment = segment
	}
}

func WithProtectiveMSDOSLabel(enabled bool) CreateOption {
	return func(o *CreateOptions) {
		o.ProtectiveMSDOSLabel = enabled
	}
}

// WithInputFiles appends files to the root directory in the order given.
func WithInputFiles(paths ...string) CreateOption {
	return func(o *CreateOptions) {
		o.InputFiles = append(o.InputFiles, paths...)
	}
}

func WithElTorito(el ElToritoOptions) CreateOption {
	return func(o *CreateOptions) {
		o.ElTorito = el
	}
}

func WithBootImage(path string) CreateOption {
	return func(o *CreateOptions) {
		o.ElTorito.BootImage = path
	}
}

func WithNoEmuBoot(enabled bool) CreateOption {
	return func(o *CreateOptions) {
		o.ElTorito.NoEmuBoot = enabled
	}
}

func WithNoBoot(enabled bool) CreateOption {
	return func(o *CreateOptions) {
		o.ElTorito.NoBoot = enabled
	}
}

func WithBootInfoTable(enabled bool) CreateOption {
	return func(o *CreateOptions) {
		o.ElTorito.BootInfoTable = enabled
	}
}

func WithGrub2BootInfo(enabled bool) CreateOption {
	return func(o *CreateOptions) {
		o.ElTorito.Grub2BootInfo = enabled
	}
}

func WithNaming(policy directory.NamingPolicy) CreateOption {
	return func(o *CreateOptions) {
		o.Naming = policy
	}
}

func WithIdentifiers(ids descriptor.Identifiers) CreateOption {
	return func(o *CreateOptions) {
		o.Identifiers = ids
	}
}

func WithClock(clock Clock) CreateOption {
	return func(o *CreateOptions) {
		o.Clock = clock
	}
}

func WithFileReader(reader FileReader) CreateOption {
	return func(o *CreateOptions) {
		o.FileReader = reader
	}
}

// WithWorkers limits how many files are copied into the image at once. Zero or less means one per CPU.
func WithWorkers(n int) CreateOption {
	return func(o *CreateOptions) {
		o.Workers = n
	}
}

// WithCreationProgress sets a progress callback function that will be called after each file is copied.
func WithCreationProgress(callback CreationProgressCallback) CreateOption {
	return func(o *CreateOptions) {
		o.ProgressCallback = callback
	}
}

func WithCreateLogger(logger *logging.Logger) CreateOption {
	return func(o *CreateOptions) {
		o.Logger = logger
	}
}
