package descriptor

import (
	"fmt"
	"strings"
	"time"

	"github.com/bgrewell/isobuild/pkg/consts"
	"github.com/bgrewell/isobuild/pkg/iso9660/directory"
	"github.com/bgrewell/isobuild/pkg/iso9660/isoerr"
	"github.com/bgrewell/isobuild/pkg/iso9660/validation"
)

const (
	PRIMARY_RESERVED_FIELD2_SIZE        = 653
	PRIMARY_VOLUME_DESCRIPTOR_BODY_SIZE = consts.ISO9660_SECTOR_SIZE - consts.ISO9660_VOLUME_DESC_HEADER_SIZE

	// Length of the Volume Identifier field.
	VolumeIdentifierLength = 32
	rootRecordLength       = 34
)

// Identifiers are the free-form a-character fields of the Primary Volume Descriptor.
type Identifiers struct {
	System       string `json:"system" yaml:"system"`
	VolumeSet    string `json:"volume_set" yaml:"volume_set"`
	Publisher    string `json:"publisher" yaml:"publisher"`
	DataPreparer string `json:"data_preparer" yaml:"data_preparer"`
	Application  string `json:"application" yaml:"application"`
}

// ValidateVolumeIdentifier folds label to upper case and checks it fits the 32-byte Volume Identifier field. The
// strict policy allows only d-characters; the relaxed policy allows a-characters, so labels such as "GAME-TEST" are
// accepted.
func ValidateVolumeIdentifier(label string, policy directory.NamingPolicy) (string, error) {
	label = strings.ToUpper(label)
	if len(label) > VolumeIdentifierLength {
		return "", fmt.Errorf("volume label %q is %d bytes, limit is %d: %w", label, len(label), VolumeIdentifierLength, isoerr.ErrLabelTooLong)
	}
	check := validation.ValidateACharacters
	if policy == directory.NamingStrict {
		check = validation.ValidateDCharacters
	}
	if err := check(label, false); err != nil {
		return "", fmt.Errorf("volume label %q: %v: %w", label, err, isoerr.ErrLabelTooLong)
	}
	return label, nil
}

// NewPrimaryVolumeDescriptor returns a descriptor carrying the label, identifiers and creation time. Extent related
// fields are filled in once the image is laid out.
func NewPrimaryVolumeDescriptor(label string, ids Identifiers, created time.Time, policy directory.NamingPolicy) (*PrimaryVolumeDescriptor, error) {
	label, err := ValidateVolumeIdentifier(label, policy)
	if err != nil {
		return nil, err
	}
	for _, f := range []struct{ name, value string }{
		{"system", ids.System}, {"volume set", ids.VolumeSet}, {"publisher", ids.Publisher},
		{"data preparer", ids.DataPreparer}, {"application", ids.Application},
	} {
		if err := validation.ValidateACharacters(strings.ToUpper(f.value), false); err != nil {
			return nil, fmt.Errorf("%s identifier %q: %w", f.name, f.value, err)
		}
	}
	return &PrimaryVolumeDescriptor{
		VolumeDescriptorHeader: newHeader(TYPE_PRIMARY_DESCRIPTOR),
		PrimaryVolumeDescriptorBody: PrimaryVolumeDescriptorBody{
			SystemIdentifier:              strings.ToUpper(ids.System),
			VolumeIdentifier:              label,
			VolumeSetSize:                 1,
			VolumeSequenceNumber:          1,
			LogicalBlockSize:              consts.ISO9660_SECTOR_SIZE,
			VolumeSetIdentifier:           strings.ToUpper(ids.VolumeSet),
			PublisherIdentifier:           strings.ToUpper(ids.Publisher),
			DataPreparerIdentifier:        strings.ToUpper(ids.DataPreparer),
			ApplicationIdentifier:         strings.ToUpper(ids.Application),
			VolumeCreationDateAndTime:     created,
			VolumeModificationDateAndTime: created,
			FileStructureVersion:          consts.ISO9660_FILE_STRUCTURE_VERSION,
		},
	}, nil
}

type PrimaryVolumeDescriptor struct {
	VolumeDescriptorHeader
	PrimaryVolumeDescriptorBody
}

func (pvd *PrimaryVolumeDescriptor) RootDirectory() *directory.DirectoryRecord {
	return pvd.PrimaryVolumeDescriptorBody.RootDirectoryRecord
}

func (pvd *PrimaryVolumeDescriptor) Marshal() ([consts.ISO9660_SECTOR_SIZE]byte, error) {
	var data [consts.ISO9660_SECTOR_SIZE]byte
	headerBytes, err := pvd.VolumeDescriptorHeader.Marshal()
	if err != nil {
		return data, fmt.Errorf("failed to marshal VolumeDescriptorHeader: %w", err)
	}
	bodyBytes, err := pvd.PrimaryVolumeDescriptorBody.Marshal()
	if err != nil {
		return data, fmt.Errorf("failed to marshal PrimaryVolumeDescriptorBody: %w", err)
	}
	copy(data[:consts.ISO9660_VOLUME_DESC_HEADER_SIZE], headerBytes[:])
	copy(data[consts.ISO9660_VOLUME_DESC_HEADER_SIZE:], bodyBytes[:])
	return data, nil
}

func (pvd *PrimaryVolumeDescriptor) Unmarshal(data [consts.ISO9660_SECTOR_SIZE]byte) error {
	if err := pvd.VolumeDescriptorHeader.Unmarshal([7]byte(data[:consts.ISO9660_VOLUME_DESC_HEADER_SIZE])); err != nil {
		return fmt.Errorf("failed to unmarshal VolumeDescriptorHeader: %w", err)
	}
	if pvd.VolumeDescriptorType != TYPE_PRIMARY_DESCRIPTOR {
		return fmt.Errorf("expected a primary volume descriptor, got %s", pvd.VolumeDescriptorType)
	}
	if err := pvd.PrimaryVolumeDescriptorBody.Unmarshal(data[consts.ISO9660_VOLUME_DESC_HEADER_SIZE:]); err != nil {
		return fmt.Errorf("failed to unmarshal PrimaryVolumeDescriptorBody: %w", err)
	}
	return nil
}

type PrimaryVolumeDescriptorBody struct {
	// Unused byte should be set to 0x00.
	UnusedField1 byte `json:"unused_field_1"`
	// System Identifier specifies a system which can recognize and act upon the content of the Logical Sectors within
	// logical Sector Numbers 0 to 15 of the volume.
	//  | (a-characters)
	SystemIdentifier string `json:"system_identifier"`
	// Volume Identifier specifies an identification of the volume, the label most systems display.
	//  | (d-characters, a-characters under the relaxed naming policy)
	VolumeIdentifier string `json:"volume_identifier"`
	// Unused all bytes should be set to 0x00
	UnusedField2 [8]byte `json:"unused_field_2"`
	// Volume Space Size is the number of logical blocks in the volume, system area included.
	//  | Encoding: BothByteOrder
	VolumeSpaceSize uint32 `json:"volume_space_size"`
	// Unused all bytes should be set to 0x00
	UnusedField3 [32]byte `json:"unused_field_3"`
	// Volume Set Size
	//  | Encoding: BothByteOrder
	VolumeSetSize uint16 `json:"volume_set_size"`
	// Volume Sequence Number is the ordinal number of the volume in the Volume Set.
	//  | Encoding: BothByteOrder
	VolumeSequenceNumber uint16 `json:"volume_sequence_number"`
	// Logical Block Size
	//  | Encoding: BothByteOrder
	LogicalBlockSize uint16 `json:"logical_block_size"`
	// Path Table Size is the length in bytes of one occurrence of the Path Table. The L and M tables are the same
	// length so a single field serves both.
	//  | Encoding: BothByteOrder
	PathTableSize uint32 `json:"path_table_size"`
	// Location of the Type L Path Table.
	//  | Encoding: LittleEndian
	LocationOfTypeLPathTable uint32 `json:"location_type_of_l_path_table"`
	// Location of the optional Type L Path Table. Zero means none was recorded.
	//  | Encoding: LittleEndian
	LocationOfOptionalTypeLPathTable uint32 `json:"location_of_optional_type_l_path_table"`
	// Location of the Type M Path Table.
	//  | Encoding: BigEndian
	LocationOfTypeMPathTable uint32 `json:"location_of_m_path_table"`
	// Location of the optional Type M Path Table. Zero means none was recorded.
	//  | Encoding: BigEndian
	LocationOfOptionalTypeMPathTable uint32 `json:"location_of_optional_type_m_path_table"`
	// Root Directory Record is the 34 byte "." record of the root directory.
	RootDirectoryRecord *directory.DirectoryRecord `json:"root_directory_record"`
	// Volume Set Identifier
	//  | (d-characters)
	VolumeSetIdentifier string `json:"volume_set_identifier"`
	// Publisher Identifier. All filler means there is no identifier.
	PublisherIdentifier string `json:"publisher_identifier"`
	// Data Preparer Identifier. All filler means there is no identifier.
	DataPreparerIdentifier string `json:"data_preparer_identifier"`
	// Application Identifier. All filler means there is no identifier.
	ApplicationIdentifier string `json:"application_identifier"`
	// Copyright, Abstract and Bibliographic File Identifiers name files in the root directory. All filler means no
	// such file.
	CopyrightFileIdentifier     string `json:"copyright_file_identifier"`
	AbstractFileIdentifier      string `json:"abstract_file_identifier"`
	BibliographicFileIdentifier string `json:"bibliographic_file_identifier"`
	// Volume Creation Date and Time
	//  | 8.4.26.1 Date and Time Format
	VolumeCreationDateAndTime time.Time `json:"volume_creation_date_and_time"`
	// Volume Modification Date and Time
	//  | 8.4.26.1 Date and Time Format
	VolumeModificationDateAndTime time.Time `json:"volume_modification_date_and_time"`
	// Volume Expiration Date and Time. The zero time is recorded as unspecified, meaning never obsolete.
	//  | 8.4.26.1 Date and Time Format
	VolumeExpirationDateAndTime time.Time `json:"volume_expiration_date_and_time"`
	// Volume Effective Date and Time. The zero time is recorded as unspecified, meaning usable at once.
	//  | 8.4.26.1 Date and Time Format
	VolumeEffectiveDateAndTime time.Time `json:"volume_effective_date_and_time"`
	// File Structure Version is 1 for a Primary Volume Descriptor.
	FileStructureVersion uint8 `json:"file_structure_version"`
	// Reserved Field 1 is unused and should be set to 0x00.
	ReservedField1 byte `json:"reserved_field_1"`
	// Application Use field is reserved for application use.
	ApplicationUse [consts.ISO9660_APPLICATION_USE_SIZE]byte `json:"application_use"`
	// Reserved Field 2 is unused and all bytes should be set to 0x00.
	ReservedField2 [PRIMARY_RESERVED_FIELD2_SIZE]byte `json:"reserved_field_2"`
}

// Marshal converts the PrimaryVolumeDescriptorBody into its 2041-byte on-disk representation. String fields are
// padded with consts.ISO9660_FILLER.
func (pvdb *PrimaryVolumeDescriptorBody) Marshal() ([PRIMARY_VOLUME_DESCRIPTOR_BODY_SIZE]byte, error) {
	var data [PRIMARY_VOLUME_DESCRIPTOR_BODY_SIZE]byte
	if pvdb.RootDirectoryRecord == nil {
		return data, fmt.Errorf("rootDirectoryRecord is nil")
	}
	root, err := pvdb.RootDirectoryRecord.Marshal()
	if err != nil {
		return data, fmt.Errorf("failed to marshal rootDirectoryRecord: %w", err)
	}
	if len(root) != rootRecordLength {
		return data, fmt.Errorf("expected %d bytes for rootDirectoryRecord, got %d", rootRecordLength, len(root))
	}

	w := &fieldWriter{buf: data[:]}
	w.u8(pvdb.UnusedField1)                            // [8]
	w.str(pvdb.SystemIdentifier, 32)                   // [9-40]
	w.str(pvdb.VolumeIdentifier, VolumeIdentifierLength) // [41-72]
	w.raw(pvdb.UnusedField2[:], 8)                     // [73-80]
	w.both32(pvdb.VolumeSpaceSize)                     // [81-88]
	w.raw(pvdb.UnusedField3[:], 32)                    // [89-120]
	w.both16(pvdb.VolumeSetSize)                       // [121-124]
	w.both16(pvdb.VolumeSequenceNumber)                // [125-128]
	w.both16(pvdb.LogicalBlockSize)                    // [129-132]
	w.both32(pvdb.PathTableSize)                       // [133-140]
	w.le32(pvdb.LocationOfTypeLPathTable)              // [141-144]
	w.le32(pvdb.LocationOfOptionalTypeLPathTable)      // [145-148]
	w.be32(pvdb.LocationOfTypeMPathTable)              // [149-152]
	w.be32(pvdb.LocationOfOptionalTypeMPathTable)      // [153-156]
	w.raw(root, rootRecordLength)                      // [157-190]
	w.str(pvdb.VolumeSetIdentifier, 128)               // [191-318]
	w.str(pvdb.PublisherIdentifier, 128)               // [319-446]
	w.str(pvdb.DataPreparerIdentifier, 128)            // [447-574]
	w.str(pvdb.ApplicationIdentifier, 128)             // [575-702]
	w.str(pvdb.CopyrightFileIdentifier, 37)            // [703-739]
	w.str(pvdb.AbstractFileIdentifier, 37)             // [740-776]
	w.str(pvdb.BibliographicFileIdentifier, 37)        // [777-813]
	w.dateTime(pvdb.VolumeCreationDateAndTime)         // [814-830]
	w.dateTime(pvdb.VolumeModificationDateAndTime)     // [831-847]
	w.dateTime(pvdb.VolumeExpirationDateAndTime)       // [848-864]
	w.dateTime(pvdb.VolumeEffectiveDateAndTime)        // [865-881]
	w.u8(pvdb.FileStructureVersion)                    // [882]
	w.u8(pvdb.ReservedField1)                          // [883]
	w.raw(pvdb.ApplicationUse[:], consts.ISO9660_APPLICATION_USE_SIZE) // [884-1395]
	w.raw(pvdb.ReservedField2[:], PRIMARY_RESERVED_FIELD2_SIZE)        // [1396-2048]

	if w.err != nil {
		return data, fmt.Errorf("failed to marshal date and time: %w", w.err)
	}
	if w.off != PRIMARY_VOLUME_DESCRIPTOR_BODY_SIZE {
		return data, fmt.Errorf("marshal error: expected offset %d, got %d", PRIMARY_VOLUME_DESCRIPTOR_BODY_SIZE, w.off)
	}
	return data, nil
}

// Unmarshal parses a 2041-byte slice into the PrimaryVolumeDescriptorBody. Fixed-width string fields have their
// trailing spaces trimmed.
func (pvdb *PrimaryVolumeDescriptorBody) Unmarshal(data []byte) error {
	if len(data) < PRIMARY_VOLUME_DESCRIPTOR_BODY_SIZE {
		return fmt.Errorf("data too short: expected %d bytes, got %d", PRIMARY_VOLUME_DESCRIPTOR_BODY_SIZE, len(data))
	}
	r := &fieldReader{buf: data}
	pvdb.UnusedField1 = r.u8()
	pvdb.SystemIdentifier = r.str(32)
	pvdb.VolumeIdentifier = r.str(VolumeIdentifierLength)
	r.raw(pvdb.UnusedField2[:])
	pvdb.VolumeSpaceSize = r.both32()
	r.raw(pvdb.UnusedField3[:])
	pvdb.VolumeSetSize = r.both16()
	pvdb.VolumeSequenceNumber = r.both16()
	pvdb.LogicalBlockSize = r.both16()
	pvdb.PathTableSize = r.both32()
	pvdb.LocationOfTypeLPathTable = r.le32()
	pvdb.LocationOfOptionalTypeLPathTable = r.le32()
	pvdb.LocationOfTypeMPathTable = r.be32()
	pvdb.LocationOfOptionalTypeMPathTable = r.be32()
	if pvdb.RootDirectoryRecord == nil {
		pvdb.RootDirectoryRecord = new(directory.DirectoryRecord)
	}
	r.keep(pvdb.RootDirectoryRecord.Unmarshal(r.next(rootRecordLength)))
	pvdb.VolumeSetIdentifier = r.str(128)
	pvdb.PublisherIdentifier = r.str(128)
	pvdb.DataPreparerIdentifier = r.str(128)
	pvdb.ApplicationIdentifier = r.str(128)
	pvdb.CopyrightFileIdentifier = r.str(37)
	pvdb.AbstractFileIdentifier = r.str(37)
	pvdb.BibliographicFileIdentifier = r.str(37)
	pvdb.VolumeCreationDateAndTime = r.dateTime()
	pvdb.VolumeModificationDateAndTime = r.dateTime()
	pvdb.VolumeExpirationDateAndTime = r.dateTime()
	pvdb.VolumeEffectiveDateAndTime = r.dateTime()
	pvdb.FileStructureVersion = r.u8()
	pvdb.ReservedField1 = r.u8()
	r.raw(pvdb.ApplicationUse[:])
	r.raw(pvdb.ReservedField2[:])

	if r.err != nil {
		return fmt.Errorf("failed to unmarshal primary volume descriptor: %w", r.err)
	}
	return nil
}
