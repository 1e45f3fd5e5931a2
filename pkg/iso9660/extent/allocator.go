package extent

import (
	"fmt"
	"math"

	"github.com/bgrewell/isobuild/pkg/consts"
	"github.com/bgrewell/isobuild/pkg/helpers"
	"github.com/bgrewell/isobuild/pkg/iso9660/isoerr"
)

// Extent is a contiguous run of logical sectors starting at LBA and holding Length bytes.
type Extent struct {
	LBA    uint32 `json:"lba"`
	Length uint32 `json:"length"`
}

// Sectors returns the number of sectors the extent occupies.
func (e Extent) Sectors() uint32 {
	return uint32(helpers.SectorsFor(uint64(e.Length), consts.ISO9660_SECTOR_SIZE))
}

// Offset returns the byte offset of the extent within the image.
func (e Extent) Offset() int64 {
	return int64(e.LBA) * consts.ISO9660_SECTOR_SIZE
}

// End returns the first LBA after the extent.
func (e Extent) End() uint32 {
	return e.LBA + e.Sectors()
}

// NewAllocator returns an allocator whose first free sector is start.
func NewAllocator(start uint32) *Allocator {
	return &Allocator{next: uint64(start)}
}

// Allocator hands out sector aligned extents in the order they are requested. It is append-only and owned by a
// single build, so it does no locking.
type Allocator struct {
	next uint64
}

// Reserve returns the next extent large enough to hold byteLength bytes and advances past its last sector. A zero
// length reservation returns an extent at the current position that occupies no sectors.
func (a *Allocator) Reserve(byteLength uint64) (Extent, error) {
	if byteLength > math.MaxUint32 {
		return Extent{}, fmt.Errorf("extent of %d bytes exceeds the 32-bit data length field: %w", byteLength, isoerr.ErrCapacity)
	}
	sectors := helpers.SectorsFor(byteLength, consts.ISO9660_SECTOR_SIZE)
	if a.next+sectors > math.MaxUint32 {
		return Extent{}, fmt.Errorf("reserving %d sectors at %d exceeds the 32-bit sector range: %w", sectors, a.next, isoerr.ErrCapacity)
	}
	e := Extent{LBA: uint32(a.next), Length: uint32(byteLength)}
	a.next += sectors
	return e, nil
}

// ReserveSectors reserves n whole sectors.
func (a *Allocator) ReserveSectors(n uint32) (Extent, error) {
	return a.Reserve(uint64(n) * consts.ISO9660_SECTOR_SIZE)
}

// CurrentSectorCount reports the number of sectors consumed so far, which is also the next free LBA.
func (a *Allocator) CurrentSectorCount() uint32 {
	return uint32(a.next)
}
