package writer

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/bgrewell/isobuild/pkg/consts"
	"github.com/bgrewell/isobuild/pkg/iso9660/boot"
	"github.com/bgrewell/isobuild/pkg/iso9660/descriptor"
	"github.com/bgrewell/isobuild/pkg/iso9660/directory"
	"github.com/bgrewell/isobuild/pkg/iso9660/extent"
	"github.com/bgrewell/isobuild/pkg/iso9660/info"
	"github.com/bgrewell/isobuild/pkg/iso9660/isoerr"
	"github.com/bgrewell/isobuild/pkg/iso9660/pathtable"
	"github.com/bgrewell/isobuild/pkg/iso9660/systemarea"
	"github.com/bgrewell/isobuild/pkg/logging"
	"github.com/bgrewell/isobuild/pkg/option"
	"golang.org/x/sync/errgroup"
)

// Image is a finished ISO-9660 image together with a report of where everything was placed.
type Image struct {
	Data   []byte
	Layout *info.ISOLayout
}

// Writer assembles an image from CreateOptions. A Writer holds no state between builds.
type Writer struct {
	opts   *option.CreateOptions
	logger *logging.Logger
}

// New returns a Writer for opts. Unset collaborators fall back to the defaults of option.DefaultCreateOptions.
func New(opts *option.CreateOptions) *Writer {
	defaults := option.DefaultCreateOptions()
	if opts == nil {
		opts = defaults
	}
	o := *opts
	if o.Clock == nil {
		o.Clock = defaults.Clock
	}
	if o.FileReader == nil {
		o.FileReader = defaults.FileReader
	}
	if o.Logger == nil {
		o.Logger = defaults.Logger
	}
	return &Writer{opts: &o, logger: o.Logger.WithName("writer")}
}

// build is the state of a single Build call.
type build struct {
	created time.Time
	assets  *boot.Assets
	dirs    *directory.Builder
	pvd     *descriptor.PrimaryVolumeDescriptor
	set     *descriptor.VolumeDescriptorSet

	alloc       *extent.Allocator
	descriptors extent.Extent
	pathL       extent.Extent
	pathM       extent.Extent
	catalog     extent.Extent
	bootImage   extent.Extent
}

// Build reads every input, validates the options, lays the image out and returns it. Nothing is returned on error.
func (w *Writer) Build(ctx context.Context) (*Image, error) {
	b := &build{created: w.opts.Clock()}

	var err error
	if b.assets, err = w.bootAssets(); err != nil {
		return nil, err
	}
	if b.pvd, err = descriptor.NewPrimaryVolumeDescriptor(w.opts.VolumeName, w.opts.Identifiers, b.created, w.opts.Naming); err != nil {
		return nil, err
	}
	if b.dirs, err = w.directories(b.created); err != nil {
		return nil, err
	}
	if err = w.place(b); err != nil {
		return nil, err
	}
	return w.write(ctx, b)
}

// bootAssets reads the boot image and system area code and validates the boot options.
func (w *Writer) bootAssets() (*boot.Assets, error) {
	cfg := boot.Config{
		BootImageName:        w.opts.ElTorito.BootImage,
		NoEmuBoot:            w.opts.ElTorito.NoEmuBoot,
		NoBoot:               w.opts.ElTorito.NoBoot,
		BootInfoTable:        w.opts.ElTorito.BootInfoTable,
		Grub2BootInfo:        w.opts.ElTorito.Grub2BootInfo,
		BootLoadSize:         w.bootLoadSize(),
		LoadSegment:          w.opts.LoadSegment,
		Platform:             boot.BIOS,
		ProtectiveMSDOSLabel: w.opts.ProtectiveMSDOSLabel,
	}

	if w.opts.EmbeddedBoot != "" && w.opts.Grub2MBR != "" {
		return nil, fmt.Errorf("embedded boot sector and grub2 mbr both requested: %w", isoerr.ErrConflictingBootSector)
	}
	if w.opts.Grub2MBR != "" && w.opts.ProtectiveMSDOSLabel {
		return nil, fmt.Errorf("grub2 mbr and protective msdos label both requested: %w", isoerr.ErrConflictingBootSector)
	}

	var err error
	if cfg.BootImageName != "" && !cfg.NoBoot {
		if cfg.BootImage, err = w.readFile("boot image", cfg.BootImageName); err != nil {
			return nil, err
		}
	}
	if w.opts.EmbeddedBoot != "" {
		if cfg.EmbeddedBoot, err = w.readFile("embedded boot sector", w.opts.EmbeddedBoot); err != nil {
			return nil, err
		}
	}
	if w.opts.Grub2MBR != "" {
		if cfg.Grub2MBR, err = w.readFile("grub2 mbr", w.opts.Grub2MBR); err != nil {
			return nil, err
		}
	}
	return boot.NewAssets(cfg, w.opts.Logger)
}

// bootLoadSize clamps the requested load size to the 16-bit sector count of the catalog entry.
func (w *Writer) bootLoadSize() uint16 {
	if w.opts.BootLoadSize > math.MaxUint16 {
		w.logger.Debug("boot load size clamped", "requested", w.opts.BootLoadSize, "recorded", math.MaxUint16)
		return math.MaxUint16
	}
	return uint16(w.opts.BootLoadSize)
}

// directories reads the input files in order and adds them to the root directory.
func (w *Writer) directories(created time.Time) (*directory.Builder, error) {
	dirs := directory.NewBuilder(w.opts.Naming, created, w.opts.Logger)
	for _, path := range w.opts.InputFiles {
		data, err := w.readFile("input file", path)
		if err != nil {
			return nil, err
		}
		if _, err = dirs.AddFile(path, data); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", path, err)
		}
	}
	return dirs, nil
}

func (w *Writer) readFile(kind, path string) ([]byte, error) {
	data, err := w.opts.FileReader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s: %w", kind, path, err)
	}
	// An empty file must still be told apart from an unset one.
	if data == nil {
		data = []byte{}
	}
	w.logger.Trace("read file", "kind", kind, "path", path, "size", len(data))
	return data, nil
}

// place assigns every structure its extent in image order: system area, descriptors, both path tables, directories,
// boot catalog, boot image and finally the input files.
func (w *Writer) place(b *build) error {
	b.alloc = extent.NewAllocator(0)
	if _, err := b.alloc.ReserveSectors(consts.ISO9660_SYSTEM_AREA_SECTORS); err != nil {
		return err
	}

	b.set = &descriptor.VolumeDescriptorSet{
		Primary:    b.pvd,
		Terminator: descriptor.NewVolumeDescriptorSetTerminator(),
	}
	if b.assets.HasCatalog() {
		// The catalog location is filled in once it is known.
		b.set.Boot = descriptor.NewBootRecordDescriptor(0)
	}
	var err error
	if b.descriptors, err = b.alloc.ReserveSectors(b.set.Sectors()); err != nil {
		return fmt.Errorf("failed to place volume descriptors: %w", err)
	}

	// Path table size depends only on directory identifiers, so it is known before anything else is placed.
	sizing, err := pathtable.Build(b.dirs.Nodes())
	if err != nil {
		return err
	}
	size := uint64(sizing.Size())
	if b.pathL, err = b.alloc.Reserve(size); err != nil {
		return fmt.Errorf("failed to place type L path table: %w", err)
	}
	if b.pathM, err = b.alloc.Reserve(size); err != nil {
		return fmt.Errorf("failed to place type M path table: %w", err)
	}

	if err = b.dirs.PlaceDirectories(b.alloc); err != nil {
		return err
	}

	if b.assets.HasCatalog() {
		if b.catalog, err = b.alloc.ReserveSectors(1); err != nil {
			return fmt.Errorf("failed to place boot catalog: %w", err)
		}
		if b.bootImage, err = b.alloc.Reserve(uint64(b.assets.Size())); err != nil {
			return fmt.Errorf("failed to place boot image: %w", err)
		}
		b.set.Boot.SetCatalogLocation(b.catalog.LBA)
	}

	if err = b.dirs.PlaceFiles(b.alloc); err != nil {
		return err
	}
	w.logger.Debug("image laid out", "sectors", b.alloc.CurrentSectorCount(), "files", len(b.dirs.Files()))
	return nil
}

// write encodes every placed structure into a single buffer. File contents are copied concurrently; each copy
// touches only its own extent.
func (w *Writer) write(ctx context.Context, b *build) (*Image, error) {
	sectors := b.alloc.CurrentSectorCount()
	out := make([]byte, uint64(sectors)*consts.ISO9660_SECTOR_SIZE)
	layout := info.NewISOLayout()
	layout.VolumeSpaceSize = sectors

	var bootLBA *uint32
	if b.assets.HasCatalog() {
		lba := b.bootImage.LBA
		bootLBA = &lba
	}
	sa, err := systemarea.Build(b.assets.Sector(), b.assets.ProtectiveMSDOSLabel(), sectors, bootLBA)
	if err != nil {
		return nil, err
	}
	copy(out, sa.Contents[:])
	layout.AddObject(info.CategorySystemArea, sa)

	pt, err := pathtable.Build(b.dirs.Nodes())
	if err != nil {
		return nil, err
	}
	b.pvd.VolumeSpaceSize = sectors
	b.pvd.PathTableSize = uint32(pt.Size())
	b.pvd.LocationOfTypeLPathTable = b.pathL.LBA
	b.pvd.LocationOfTypeMPathTable = b.pathM.LBA
	b.pvd.RootDirectoryRecord = b.dirs.RootRecord()

	descriptors, err := b.set.Marshal()
	if err != nil {
		return nil, err
	}
	copy(out[b.descriptors.Offset():], descriptors)
	for i, d := range b.set.Descriptors() {
		layout.Add(info.CategoryVolumeDescriptor, d.Type().String(), "",
			b.descriptors.Offset()+int64(i*consts.ISO9660_SECTOR_SIZE), consts.ISO9660_SECTOR_SIZE)
	}

	for _, table := range []struct {
		name         string
		extent       extent.Extent
		littleEndian bool
	}{
		{"Type L Path Table", b.pathL, true},
		{"Type M Path Table", b.pathM, false},
	} {
		data, err := pt.Marshal(table.littleEndian)
		if err != nil {
			return nil, err
		}
		copy(out[table.extent.Offset():], data)
		layout.Add(info.CategoryPathTable, table.name, fmt.Sprintf("%d records", len(pt.Records)), table.extent.Offset(), len(data))
	}

	for _, n := range b.dirs.Nodes() {
		data, err := b.dirs.Marshal(n.ID)
		if err != nil {
			return nil, err
		}
		copy(out[n.Extent.Offset():], data)
		name := "Root Directory"
		if n.ID != directory.RootID {
			name = n.Identifier
		}
		layout.Add(info.CategoryDirectoryExtent, name, fmt.Sprintf("%d files", len(n.Files)), n.Extent.Offset(), len(data))
	}

	if b.assets.HasCatalog() {
		image, err := b.assets.Finalize(b.bootImage, b.descriptors.LBA)
		if err != nil {
			return nil, err
		}
		copy(out[b.bootImage.Offset():], image)
		layout.AddObject(info.CategoryBootImage, b.assets.Image())

		catalog := b.assets.Catalog(b.catalog.LBA)
		data, err := catalog.Marshal()
		if err != nil {
			return nil, err
		}
		copy(out[b.catalog.Offset():], data)
		layout.AddObject(info.CategoryBootCatalog, catalog)
	}

	if err = w.copyFiles(ctx, out, b.dirs.Files()); err != nil {
		return nil, err
	}
	for _, f := range b.dirs.Files() {
		layout.AddObject(info.CategoryFileExtent, f)
	}

	w.logger.Info("image built", "volume", b.pvd.VolumeIdentifier, "sectors", sectors, "bytes", len(out),
		"bootable", b.assets.HasCatalog())
	return &Image{Data: out, Layout: layout}, nil
}

// copyFiles writes file contents into their extents. Extents never overlap, so workers share out without locking;
// only the progress callback is serialized.
func (w *Writer) copyFiles(ctx context.Context, out []byte, files []*extent.FileExtent) error {
	workers := w.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu     sync.Mutex
		copied int
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, f := range files {
		f := f // per-iteration copy; go.mod targets go1.21 loop semantics
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			end := f.Extent.Offset() + int64(len(f.Data))
			if end > int64(len(out)) {
				return fmt.Errorf("%s overruns the image: ends at %d of %d", f.FileIdentifier, end, len(out))
			}
			copy(out[f.Extent.Offset():end], f.Data)

			if w.opts.ProgressCallback != nil {
				mu.Lock()
				copied++
				w.opts.ProgressCallback(f.Source, int64(len(f.Data)), int64(len(f.Data)), copied, len(files))
				mu.Unlock()
			}
			return nil
		})
	}
	return g.Wait()
}
