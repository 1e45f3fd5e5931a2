// Package isoerr holds the error kinds returned when an image cannot be built. Every error returned by a build wraps
// exactly one of these, so callers can branch with errors.Is.
package isoerr

import "errors"

var (
	// ErrCapacity is returned when the image would exceed the addressable sector range, or a single extent would not
	// fit the 32-bit data length field.
	ErrCapacity = errors.New("image exceeds addressable capacity")
	// ErrMissingBootImage is returned when a boot catalog is requested without an El Torito boot image.
	ErrMissingBootImage = errors.New("boot catalog requested without a boot image")
	// ErrConflictingBootSector is returned when more than one source claims the system area boot sector.
	ErrConflictingBootSector = errors.New("conflicting system area boot sectors")
	// ErrBootSectorTooLarge is returned when a system area boot sector does not fit in the 16 sector system area.
	ErrBootSectorTooLarge = errors.New("boot sector exceeds system area")
	// ErrConflictingBootInfoFormat is returned when both boot info table formats are requested.
	ErrConflictingBootInfoFormat = errors.New("conflicting boot info table formats")
	// ErrBootImageTooSmall is returned when a boot info patch does not fit inside the boot image.
	ErrBootImageTooSmall = errors.New("boot image too small for boot info patch")
	// ErrLabelTooLong is returned when the volume label exceeds its field or uses characters outside the permitted set.
	ErrLabelTooLong = errors.New("volume label too long or invalid")
	// ErrDuplicateName is returned when two input files normalize to the same on-disk identifier.
	ErrDuplicateName = errors.New("duplicate file identifier")
	// ErrNameInvalid is returned when a file name cannot be represented as an ISO9660 file identifier.
	ErrNameInvalid = errors.New("invalid file identifier")
)
