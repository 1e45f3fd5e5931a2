package directory

import (
	"fmt"
	"time"

	"github.com/bgrewell/isobuild/pkg/iso9660/encoding"
)

const (
	// recordFixedLength is the size of a directory record without its identifier or padding.
	recordFixedLength = 33

	currentDirectoryIdentifier = "\x00"
	parentDirectoryIdentifier  = "\x01"
)

type DirectoryRecord struct {
	// Length Of Directory Record specifies the length of the directory record in bytes. It is computed by Marshal.
	LengthOfDirectoryRecord uint8 `json:"length_of_directory_record"`
	// Extended Attribute Record Length is always zero for records written by this package.
	ExtendedAttributeRecordLength uint8 `json:"extended_attribute_record_length"`
	// Location of Extent specifies the Logical Block Number of the first Logical Block allocated to the Extent.
	//  | Encoding: BothByteOrder
	LocationOfExtent uint32 `json:"location_of_extent"`
	// Data Length specifies the data length of the File Section. For directories this is a whole number of sectors.
	//  | Encoding: BothByteOrder
	DataLength uint32 `json:"data_length"`
	// Recording Date and Time
	//  | Encoding: 7-byte time format
	RecordingDateAndTime time.Time `json:"recording_date_and_time"`
	// File Flags, see FileFlags.
	FileFlags FileFlags `json:"file_flags"`
	// File Unit Size and Interleave Gap Size are zero since files are never recorded in interleaved mode.
	FileUnitSize      uint8 `json:"file_unit_size"`
	InterleaveGapSize uint8 `json:"interleave_gap_size"`
	// Volume Sequence Number is always 1 for a single volume set.
	//  | Encoding: BothByteOrder
	VolumeSequenceNumber uint16 `json:"volume_sequence_number"`
	// Length of File Identifier specifies the length in bytes of the File Identifier field.
	LengthOfFileIdentifier uint8 `json:"length_of_file_identifier"`
	// File Identifier is either a file name with version ("A.TXT;1"), a single 0x00 byte for the directory itself or a
	// single 0x01 byte for its parent. A 0x00 pad byte follows when the identifier length is even and is not stored
	// here.
	FileIdentifier string `json:"file_identifier"`
	// System Use holds any bytes past the identifier. Unmarshal copies them so the source buffer can be reused.
	SystemUse []byte `json:"system_use"`
}

// NewFileRecord returns the record for a regular file.
func NewFileRecord(identifier string, lba, length uint32, recorded time.Time) *DirectoryRecord {
	return &DirectoryRecord{
		LocationOfExtent:       lba,
		DataLength:             length,
		RecordingDateAndTime:   recorded,
		VolumeSequenceNumber:   1,
		LengthOfFileIdentifier: uint8(len(identifier)),
		FileIdentifier:         identifier,
	}
}

// NewDirectoryRecord returns a record for a directory. Use "\x00" and "\x01" for the self and parent entries.
func NewDirectoryRecord(identifier string, lba, length uint32, recorded time.Time) *DirectoryRecord {
	dr := NewFileRecord(identifier, lba, length, recorded)
	dr.FileFlags.Directory = true
	return dr
}

// RecordLength returns the on-disk length of a record carrying identifier, including the pad byte.
func RecordLength(identifier string) int {
	n := recordFixedLength + len(identifier)
	if len(identifier)%2 == 0 {
		n++
	}
	return n
}

// IsDirectory checks if the entry is a Directory
func (dr *DirectoryRecord) IsDirectory() bool {
	return dr.FileFlags.Directory
}

// IsSpecial checks for "." or ".."
func (dr *DirectoryRecord) IsSpecial() bool {
	return dr.FileIdentifier == currentDirectoryIdentifier || dr.FileIdentifier == parentDirectoryIdentifier
}

// Name returns "." and ".." for the special entries and the identifier without its version otherwise.
func (dr *DirectoryRecord) Name() string {
	switch dr.FileIdentifier {
	case currentDirectoryIdentifier:
		return "."
	case parentDirectoryIdentifier:
		return ".."
	}
	return StripVersion(dr.FileIdentifier)
}

// Marshal converts the DirectoryRecord into its on-disk byte representation and sets LengthOfDirectoryRecord.
func (dr *DirectoryRecord) Marshal() ([]byte, error) {
	if len(dr.FileIdentifier) == 0 {
		return nil, fmt.Errorf("directory record has an empty file identifier")
	}
	length := RecordLength(dr.FileIdentifier) + len(dr.SystemUse)
	if length > 0xFF {
		return nil, fmt.Errorf("directory record for %q is %d bytes, exceeds 255", dr.FileIdentifier, length)
	}

	buf := make([]byte, length)
	// [1] Length of Directory Record
	buf[0] = uint8(length)
	// [2] Extended Attribute Record Length
	buf[1] = dr.ExtendedAttributeRecordLength
	// [3-10] Location of Extent
	encoding.PutBothByteOrders32(buf[2:10], dr.LocationOfExtent)
	// [11-18] Data Length
	encoding.PutBothByteOrders32(buf[10:18], dr.DataLength)
	// [19-25] Recording Date and Time
	recorded, err := encoding.MarshalRecordingDateTime(dr.RecordingDateAndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recording date and time: %w", err)
	}
	copy(buf[18:25], recorded[:])
	// [26] File Flags
	buf[25] = dr.FileFlags.Marshal()
	// [27] File Unit Size
	buf[26] = dr.FileUnitSize
	// [28] Interleave Gap Size
	buf[27] = dr.InterleaveGapSize
	// [29-32] Volume Sequence Number
	encoding.PutBothByteOrders16(buf[28:32], dr.VolumeSequenceNumber)
	// [33] Length of File Identifier
	buf[32] = uint8(len(dr.FileIdentifier))
	// [34-(33+LEN_FI)] File Identifier, followed by the pad byte when LEN_FI is even
	copy(buf[33:], dr.FileIdentifier)
	// System Use
	copy(buf[RecordLength(dr.FileIdentifier):], dr.SystemUse)

	dr.LengthOfDirectoryRecord = uint8(length)
	dr.LengthOfFileIdentifier = uint8(len(dr.FileIdentifier))
	return buf, nil
}

// Unmarshal decodes a DirectoryRecord from the provided byte slice.
func (dr *DirectoryRecord) Unmarshal(data []byte) error {
	if len(data) < recordFixedLength+1 {
		return fmt.Errorf("data too short to contain a directory record: %d bytes", len(data))
	}
	recordLength := int(data[0])
	if recordLength < recordFixedLength+1 || len(data) < recordLength {
		return fmt.Errorf("invalid directory record length %d with %d bytes available", recordLength, len(data))
	}
	dr.LengthOfDirectoryRecord = data[0]
	dr.ExtendedAttributeRecordLength = data[1]

	var both32 [8]byte
	copy(both32[:], data[2:10])
	loc, err := encoding.UnmarshalUint32LSBMSB(both32)
	if err != nil {
		return fmt.Errorf("failed to unmarshal location of extent: %w", err)
	}
	dr.LocationOfExtent = loc

	copy(both32[:], data[10:18])
	dataLength, err := encoding.UnmarshalUint32LSBMSB(both32)
	if err != nil {
		return fmt.Errorf("failed to unmarshal data length: %w", err)
	}
	dr.DataLength = dataLength

	var recorded [7]byte
	copy(recorded[:], data[18:25])
	if dr.RecordingDateAndTime, err = encoding.UnmarshalRecordingDateTime(recorded); err != nil {
		return fmt.Errorf("failed to unmarshal recording date and time: %w", err)
	}

	if dr.FileFlags, err = UnmarshalFileFlags(data[25]); err != nil {
		return fmt.Errorf("failed to unmarshal file flags: %w", err)
	}
	dr.FileUnitSize = data[26]
	dr.InterleaveGapSize = data[27]

	var both16 [4]byte
	copy(both16[:], data[28:32])
	if dr.VolumeSequenceNumber, err = encoding.UnmarshalUint16LSBMSB(both16); err != nil {
		return fmt.Errorf("failed to unmarshal volume sequence number: %w", err)
	}

	fiLen := int(data[32])
	dr.LengthOfFileIdentifier = data[32]
	end := recordFixedLength + fiLen
	if end > recordLength {
		return fmt.Errorf("file identifier length %d overruns record length %d", fiLen, recordLength)
	}
	dr.FileIdentifier = string(data[recordFixedLength:end])
	if fiLen%2 == 0 {
		end++
	}

	dr.SystemUse = nil
	if end < recordLength {
		dr.SystemUse = make([]byte, recordLength-end)
		copy(dr.SystemUse, data[end:recordLength])
	}
	return nil
}
