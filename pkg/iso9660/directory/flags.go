package directory

import "fmt"

const (
	flagHidden         byte = 1 << 0
	flagDirectory      byte = 1 << 1
	flagAssociatedFile byte = 1 << 2
	flagRecordFormat   byte = 1 << 3
	flagProtection     byte = 1 << 4
	flagReserved       byte = 1<<5 | 1<<6
	flagMultiExtent    byte = 1 << 7
)

// FileFlags holds the bits of a Directory Record's File Flags field. Bits 5 and 6 are reserved and always zero.
type FileFlags struct {
	// Bit 0: existence of the file need not be made known to the user.
	Hidden bool `json:"hidden"`
	// Bit 1: the record identifies a directory.
	Directory bool `json:"directory"`
	// Bit 2: the file is an Associated File.
	AssociatedFile bool `json:"associated_file"`
	// Bit 3: the record format is given by an Extended Attribute Record.
	RecordFormat bool `json:"record_format"`
	// Bit 4: owner and group are given by an Extended Attribute Record.
	Protection bool `json:"protection"`
	// Bit 7: this is not the final record for the file.
	MultiExtent bool `json:"multi_extent"`
}

func (ff FileFlags) Marshal() byte {
	var b byte
	set := func(on bool, bit byte) {
		if on {
			b |= bit
		}
	}
	set(ff.Hidden, flagHidden)
	set(ff.Directory, flagDirectory)
	set(ff.AssociatedFile, flagAssociatedFile)
	set(ff.RecordFormat, flagRecordFormat)
	set(ff.Protection, flagProtection)
	set(ff.MultiExtent, flagMultiExtent)
	return b
}

// UnmarshalFileFlags decodes a File Flags byte, rejecting set reserved bits.
func UnmarshalFileFlags(b byte) (FileFlags, error) {
	if b&flagReserved != 0 {
		return FileFlags{}, fmt.Errorf("invalid file flags: reserved bits must be zero, got 0x%02X", b)
	}
	return FileFlags{
		Hidden:         b&flagHidden != 0,
		Directory:      b&flagDirectory != 0,
		AssociatedFile: b&flagAssociatedFile != 0,
		RecordFormat:   b&flagRecordFormat != 0,
		Protection:     b&flagProtection != 0,
		MultiExtent:    b&flagMultiExtent != 0,
	}, nil
}
