package pathtable

import (
	"fmt"
	"sort"

	"github.com/bgrewell/isobuild/pkg/iso9660/directory"
)

// PathTable is the ordered list of directories in a volume. The same records are written twice, once little-endian
// (type L) and once big-endian (type M).
type PathTable struct {
	Records []*PathTableRecord `json:"records"`
}

// Build orders the directory arena by depth, then parent record number, then identifier, and records each directory's
// extent. Extents must already be placed.
func Build(nodes []*directory.Node) (*PathTable, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("path table needs at least a root directory")
	}

	number := make(map[int]uint16, len(nodes))
	pt := &PathTable{}
	level := []*directory.Node{nodes[directory.RootID]}
	for len(level) > 0 {
		sort.SliceStable(level, func(i, j int) bool {
			if level[i].Parent != level[j].Parent {
				return number[level[i].Parent] < number[level[j].Parent]
			}
			return level[i].Identifier < level[j].Identifier
		})
		for _, n := range level {
			if len(pt.Records) >= 0xFFFF {
				return nil, fmt.Errorf("too many directories for a path table: %d", len(nodes))
			}
			number[n.ID] = uint16(len(pt.Records) + 1)
			pt.Records = append(pt.Records, &PathTableRecord{
				LengthOfDirectoryIdentifier: uint8(len(n.Identifier)),
				LocationOfExtent:            n.Extent.LBA,
				ParentDirectoryNumber:       number[n.Parent],
				DirectoryIdentifier:         n.Identifier,
			})
		}

		var next []*directory.Node
		for _, n := range nodes {
			if n.ID == directory.RootID {
				continue
			}
			if _, placed := number[n.ID]; placed {
				continue
			}
			if _, parentPlaced := number[n.Parent]; parentPlaced {
				next = append(next, n)
			}
		}
		level = next
	}
	if len(pt.Records) != len(nodes) {
		return nil, fmt.Errorf("directory arena has %d unreachable nodes", len(nodes)-len(pt.Records))
	}
	return pt, nil
}

// Size returns the table length in bytes, which is the same for both byte orders.
func (pt *PathTable) Size() int {
	size := 0
	for _, r := range pt.Records {
		size += r.Len()
	}
	return size
}

// Marshal converts a PathTable into a contiguous byte array in the requested byte order.
func (pt *PathTable) Marshal(littleEndian bool) ([]byte, error) {
	buf := make([]byte, 0, pt.Size())
	for i, record := range pt.Records {
		b, err := record.Marshal(littleEndian)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal path table record %d: %w", i+1, err)
		}
		buf = append(buf, b...)
	}
	return buf, nil
}

// Unmarshal decodes size bytes of a path table.
func Unmarshal(data []byte, size int, littleEndian bool) (*PathTable, error) {
	if size > len(data) {
		return nil, fmt.Errorf("path table size %d exceeds %d available bytes", size, len(data))
	}
	pt := &PathTable{}
	for offset := 0; offset < size; {
		record := &PathTableRecord{}
		if err := record.Unmarshal(data[offset:size], littleEndian); err != nil {
			return nil, fmt.Errorf("failed to unmarshal path table record %d: %w", len(pt.Records)+1, err)
		}
		pt.Records = append(pt.Records, record)
		offset += record.Len()
	}
	return pt, nil
}
