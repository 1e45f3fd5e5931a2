package directory

import (
	"fmt"
	"math"
	"time"

	"github.com/bgrewell/isobuild/pkg/consts"
	"github.com/bgrewell/isobuild/pkg/iso9660/extent"
	"github.com/bgrewell/isobuild/pkg/iso9660/isoerr"
	"github.com/bgrewell/isobuild/pkg/logging"
)

// RootID is the arena index of the root directory.
const RootID = 0

// Node is one directory in the arena. Parent refers to another node by index; the root is its own parent.
type Node struct {
	ID         int
	Parent     int
	Identifier string
	Extent     extent.Extent
	Files      []*extent.FileExtent
	names      map[string]string
}

// Builder collects input files into directories and lays out their records. Directories live in an arena indexed
// by Node.ID so parent links stay plain integers. Only the root is populated today.
type Builder struct {
	nodes    []*Node
	policy   NamingPolicy
	recorded time.Time
	logger   *logging.Logger
}

// NewBuilder returns a builder with an empty root directory. Every record is stamped with recorded.
func NewBuilder(policy NamingPolicy, recorded time.Time, logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	root := &Node{ID: RootID, Parent: RootID, Identifier: currentDirectoryIdentifier, names: map[string]string{}}
	return &Builder{
		nodes:    []*Node{root},
		policy:   policy,
		recorded: recorded,
		logger:   logger.WithName("directory"),
	}
}

// AddFile adds a file to the root directory. The identifier is derived from source and must not collide with one
// already added.
func (b *Builder) AddFile(source string, data []byte) (*extent.FileExtent, error) {
	root := b.nodes[RootID]
	id, err := FileIdentifier(source, b.policy)
	if err != nil {
		return nil, err
	}
	if prev, ok := root.names[id]; ok {
		return nil, fmt.Errorf("%q and %q both map to %s: %w", prev, source, id, isoerr.ErrDuplicateName)
	}
	if RecordLength(id) > consts.ISO9660_SECTOR_SIZE {
		return nil, fmt.Errorf("record for %s does not fit in a sector: %w", id, isoerr.ErrNameInvalid)
	}
	if uint64(len(data)) > math.MaxUint32 {
		return nil, fmt.Errorf("%s is %d bytes: %w", source, len(data), isoerr.ErrCapacity)
	}
	root.names[id] = source
	f := &extent.FileExtent{
		FileIdentifier: id,
		Source:         source,
		Extent:         extent.Extent{Length: uint32(len(data))},
		Data:           data,
	}
	root.Files = append(root.Files, f)
	b.logger.Debug("added file", "source", source, "identifier", id, "size", len(data))
	return f, nil
}

// Root returns the root directory node.
func (b *Builder) Root() *Node {
	return b.nodes[RootID]
}

// Nodes returns every directory in arena order.
func (b *Builder) Nodes() []*Node {
	return b.nodes
}

// Files returns every file in the order it was added.
func (b *Builder) Files() []*extent.FileExtent {
	var files []*extent.FileExtent
	for _, n := range b.nodes {
		files = append(files, n.Files...)
	}
	return files
}

// Size returns the length in bytes of the directory's records once packed into sectors. It is always a whole number
// of sectors and depends only on the identifiers, so it can be computed before anything is placed.
func (b *Builder) Size(id int) uint32 {
	identifiers := []string{currentDirectoryIdentifier, parentDirectoryIdentifier}
	for _, f := range b.nodes[id].Files {
		identifiers = append(identifiers, f.FileIdentifier)
	}
	sectors, used := uint32(1), 0
	for _, ident := range identifiers {
		n := RecordLength(ident)
		if used+n > consts.ISO9660_SECTOR_SIZE {
			sectors++
			used = 0
		}
		used += n
	}
	return sectors * consts.ISO9660_SECTOR_SIZE
}

// PlaceDirectories reserves an extent for every directory, in arena order.
func (b *Builder) PlaceDirectories(a *extent.Allocator) error {
	for _, n := range b.nodes {
		e, err := a.Reserve(uint64(b.Size(n.ID)))
		if err != nil {
			return fmt.Errorf("failed to place directory %d: %w", n.ID, err)
		}
		n.Extent = e
		b.logger.Trace("placed directory", "id", n.ID, "lba", e.LBA, "length", e.Length)
	}
	return nil
}

// PlaceFiles reserves an extent for every file in the order the files were added.
func (b *Builder) PlaceFiles(a *extent.Allocator) error {
	for _, f := range b.Files() {
		e, err := a.Reserve(uint64(len(f.Data)))
		if err != nil {
			return fmt.Errorf("failed to place %s: %w", f.FileIdentifier, err)
		}
		f.Extent = e
		b.logger.Trace("placed file", "identifier", f.FileIdentifier, "lba", e.LBA, "length", e.Length)
	}
	return nil
}

// Records returns the records of a directory: itself, its parent and then its files.
func (b *Builder) Records(id int) []*DirectoryRecord {
	n := b.nodes[id]
	parent := b.nodes[n.Parent]
	records := []*DirectoryRecord{
		NewDirectoryRecord(currentDirectoryIdentifier, n.Extent.LBA, n.Extent.Length, b.recorded),
		NewDirectoryRecord(parentDirectoryIdentifier, parent.Extent.LBA, parent.Extent.Length, b.recorded),
	}
	for _, f := range n.Files {
		records = append(records, NewFileRecord(f.FileIdentifier, f.Extent.LBA, f.Extent.Length, b.recorded))
	}
	return records
}

// RootRecord returns the record embedded in the primary volume descriptor.
func (b *Builder) RootRecord() *DirectoryRecord {
	root := b.nodes[RootID]
	return NewDirectoryRecord(currentDirectoryIdentifier, root.Extent.LBA, root.Extent.Length, b.recorded)
}

// Marshal encodes a directory's records. A record that would cross a sector boundary starts the next sector instead
// and the result is padded to the directory's extent length.
func (b *Builder) Marshal(id int) ([]byte, error) {
	buf := make([]byte, 0, b.Size(id))
	for _, r := range b.Records(id) {
		data, err := r.Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record %q: %w", r.Name(), err)
		}
		used := len(buf) % consts.ISO9660_SECTOR_SIZE
		if used+len(data) > consts.ISO9660_SECTOR_SIZE {
			buf = append(buf, make([]byte, consts.ISO9660_SECTOR_SIZE-used)...)
		}
		buf = append(buf, data...)
	}
	if pad := int(b.Size(id)) - len(buf); pad > 0 {
		buf = append(buf, make([]byte, pad)...)
	}
	return buf, nil
}
