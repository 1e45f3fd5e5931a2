package pathtable

import (
	"encoding/binary"
	"fmt"
)

// recordFixedLength is the size of a path table record without its identifier or padding.
const recordFixedLength = 8

type PathTableRecord struct {
	// Length of Directory Identifier specifies the length in bytes of the Directory Identifier field of the Path Table
	// Record.
	LengthOfDirectoryIdentifier uint8 `json:"length_of_directory_identifier"`
	// Extended Attribute Record Length is always zero for tables written by this package.
	ExtendedAttributeRecordLength uint8 `json:"extended_attribute_record_length"`
	// Location of Extent specifies the Logical Block Number of the first Logical Block allocated to the Extent in which
	// the directory is recorded.
	LocationOfExtent uint32 `json:"location_of_extent"`
	// Parent Directory Number specifies the record number in the Path Table for the parent directory of the directory.
	// Record numbers start at 1 and the root is its own parent.
	ParentDirectoryNumber uint16 `json:"parent_directory_number"`
	// Directory Identifier specifies the identification for the directory. The root uses a single 0x00 byte. A 0x00
	// pad byte follows when the identifier length is odd and is not stored here.
	DirectoryIdentifier string `json:"directory_identifier"`
}

// Len returns the on-disk length of the record including the pad byte.
func (ptr *PathTableRecord) Len() int {
	n := recordFixedLength + len(ptr.DirectoryIdentifier)
	if len(ptr.DirectoryIdentifier)%2 != 0 {
		n++
	}
	return n
}

// Marshal converts a single PathTableRecord into a byte slice using the requested byte order.
func (ptr *PathTableRecord) Marshal(littleEndian bool) ([]byte, error) {
	if len(ptr.DirectoryIdentifier) == 0 || len(ptr.DirectoryIdentifier) > 0xFF {
		return nil, fmt.Errorf("invalid directory identifier length %d", len(ptr.DirectoryIdentifier))
	}
	ptr.LengthOfDirectoryIdentifier = uint8(len(ptr.DirectoryIdentifier))

	var order binary.ByteOrder = binary.BigEndian
	if littleEndian {
		order = binary.LittleEndian
	}

	buf := make([]byte, ptr.Len())
	buf[0] = ptr.LengthOfDirectoryIdentifier
	buf[1] = ptr.ExtendedAttributeRecordLength
	order.PutUint32(buf[2:6], ptr.LocationOfExtent)
	order.PutUint16(buf[6:8], ptr.ParentDirectoryNumber)
	copy(buf[recordFixedLength:], ptr.DirectoryIdentifier)
	return buf, nil
}

// Unmarshal decodes a single PathTableRecord from a byte slice.
func (ptr *PathTableRecord) Unmarshal(data []byte, littleEndian bool) error {
	if len(data) < recordFixedLength {
		return fmt.Errorf("data too short to contain a PathTableRecord")
	}
	var order binary.ByteOrder = binary.BigEndian
	if littleEndian {
		order = binary.LittleEndian
	}

	ptr.LengthOfDirectoryIdentifier = data[0]
	ptr.ExtendedAttributeRecordLength = data[1]
	ptr.LocationOfExtent = order.Uint32(data[2:6])
	ptr.ParentDirectoryNumber = order.Uint16(data[6:8])

	n := int(ptr.LengthOfDirectoryIdentifier)
	if n == 0 {
		return fmt.Errorf("path table record has an empty directory identifier")
	}
	if len(data) < recordFixedLength+n {
		return fmt.Errorf("data too short for DirectoryIdentifier")
	}
	ptr.DirectoryIdentifier = string(data[recordFixedLength : recordFixedLength+n])
	return nil
}
