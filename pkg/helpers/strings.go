package helpers

import "github.com/bgrewell/isobuild/pkg/consts"

// PadString returns s as a fixed-width field filled with ISO9660_FILLER. Longer input is truncated.
func PadString(s string, length int) []byte {
	b := make([]byte, length)
	n := copy(b, s)
	for i := n; i < length; i++ {
		b[i] = consts.ISO9660_FILLER
	}
	return b
}

// PadZero returns s as a fixed-width field filled with null bytes, as El Torito identifiers are recorded.
func PadZero(s string, length int) []byte {
	b := make([]byte, length)
	copy(b, s)
	return b
}

// SectorsFor returns the number of sectors of the given size required to hold n bytes.
func SectorsFor(n uint64, sectorSize uint64) uint64 {
	return (n + sectorSize - 1) / sectorSize
}
