package encoding

import (
	"encoding/binary"
	"fmt"
	"time"
)

// PutBothByteOrders32 writes val into dst[0:8] as a both-byte order field (ISO9660 7.3.3): little-endian in the
// first four bytes, big-endian in the last four.
func PutBothByteOrders32(dst []byte, val uint32) {
	binary.LittleEndian.PutUint32(dst[0:4], val)
	binary.BigEndian.PutUint32(dst[4:8], val)
}

// PutBothByteOrders16 writes val into dst[0:4] as a both-byte order field (ISO9660 7.2.3).
func PutBothByteOrders16(dst []byte, val uint16) {
	binary.LittleEndian.PutUint16(dst[0:2], val)
	binary.BigEndian.PutUint16(dst[2:4], val)
}

// MarshalBothByteOrders32 converts a uint32 value into an 8-byte field that
// encodes the value in both little‑endian and big‑endian orders.
// The resulting byte order is: (yz, wx, uv, st, st, uv, wx, yz),
// where (st uv wx yz) is the hexadecimal representation of the value.
func MarshalBothByteOrders32(val uint32) [8]byte {
	var data [8]byte
	PutBothByteOrders32(data[:], val)
	return data
}

// UnmarshalUint32LSBMSB converts an 8-byte both-byte order field back to a uint32 value. Both halves must agree.
func UnmarshalUint32LSBMSB(data [8]byte) (uint32, error) {
	little := binary.LittleEndian.Uint32(data[0:4])
	big := binary.BigEndian.Uint32(data[4:8])
	if little != big {
		return 0, fmt.Errorf("mismatched both-byte orders: little-endian value %d != big-endian value %d", little, big)
	}
	return little, nil
}

// MarshalBothByteOrders16 converts a uint16 value into a 4-byte field that
// encodes the value in both little‑endian and big‑endian orders.
// For example, for the value 0x1234, it returns [0x34, 0x12, 0x12, 0x34].
func MarshalBothByteOrders16(val uint16) [4]byte {
	var data [4]byte
	PutBothByteOrders16(data[:], val)
	return data
}

// UnmarshalUint16LSBMSB converts a 4-byte both-byte order field back to a uint16 value. Both halves must agree.
func UnmarshalUint16LSBMSB(data [4]byte) (uint16, error) {
	little := binary.LittleEndian.Uint16(data[0:2])
	big := binary.BigEndian.Uint16(data[2:4])
	if little != big {
		return 0, fmt.Errorf("mismatched both-byte orders: little-endian value %d != big-endian value %d", little, big)
	}
	return little, nil
}

// WordSum16 returns the sum of the little-endian 16-bit words in data, modulo 65536. The length of data must be even.
// El Torito validation entries are recorded so that this sum is zero.
func WordSum16(data []byte) uint16 {
	var sum uint16
	for i := 0; i+1 < len(data); i += 2 {
		sum += binary.LittleEndian.Uint16(data[i : i+2])
	}
	return sum
}

// WordSum32 returns the sum of the little-endian 32-bit words in data, modulo 2^32. A trailing partial word is
// treated as zero padded, which is how the boot info table checksum is computed.
func WordSum32(data []byte) uint32 {
	var sum uint32
	i := 0
	for ; i+4 <= len(data); i += 4 {
		sum += binary.LittleEndian.Uint32(data[i : i+4])
	}
	if i < len(data) {
		var tail [4]byte
		copy(tail[:], data[i:])
		sum += binary.LittleEndian.Uint32(tail[:])
	}
	return sum
}

// MarshalDateTime converts a time.Time into a 17-byte field following ISO9660 8.4.26.1.
// The first 16 bytes contain ASCII digits in the format:
//
//	YYYY MM DD hh mm ss cc
//
// and the 17th byte is the time zone offset (in 15-minute intervals) as a signed integer.
// Note: This format is used in Volume Descriptors
func MarshalDateTime(t time.Time) ([17]byte, error) {
	var out [17]byte

	// A zero time is recorded as "unspecified": 16 ASCII '0' and a zero offset.
	if t.IsZero() {
		for i := 0; i < 16; i++ {
			out[i] = '0'
		}
		return out, nil
	}

	y, m, d := t.Date()
	if y < 1 || y > 9999 {
		return out, fmt.Errorf("year %d out of range for ISO9660 date and time", y)
	}
	hh, mm, ss := t.Clock()
	hundredths := t.Nanosecond() / 10_000_000

	s := fmt.Sprintf("%04d%02d%02d%02d%02d%02d%02d", y, int(m), d, hh, mm, ss, hundredths)
	copy(out[:16], s)

	_, offsetSec := t.Zone()
	offset15 := offsetSec / 900
	if offset15 < -48 || offset15 > 52 {
		return [17]byte{}, fmt.Errorf("offset %d out of ISO9660 bounds", offset15)
	}
	out[16] = byte(int8(offset15))
	return out, nil
}

// UnmarshalDateTime converts a 17-byte ISO9660 date/time field into a time.Time.
func UnmarshalDateTime(b [17]byte) (time.Time, error) {
	isUnspecified := b[16] == 0
	for i := 0; i < 16 && isUnspecified; i++ {
		if b[i] != '0' {
			isUnspecified = false
		}
	}
	if isUnspecified {
		return time.Time{}, nil
	}

	var (
		year, mon, day int
		hour, min, sec int
		hundredths     int
	)
	_, err := fmt.Sscanf(string(b[:16]), "%4d%2d%2d%2d%2d%2d%2d",
		&year, &mon, &day, &hour, &min, &sec, &hundredths)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse error: %w", err)
	}

	offset15 := int8(b[16])
	if offset15 < -48 || offset15 > 52 {
		return time.Time{}, fmt.Errorf("offset %d out of ISO9660 bounds", offset15)
	}
	return time.Date(year, time.Month(mon), day, hour, min, sec, hundredths*10_000_000, zone(int(offset15)*900)), nil
}

// MarshalRecordingDateTime converts a time.Time into the 7-byte Recording Date and Time field used by directory
// records (ISO9660 9.1.5). All fields are binary numbers, not ASCII digits.
func MarshalRecordingDateTime(t time.Time) ([7]byte, error) {
	var b [7]byte
	if t.IsZero() {
		return b, nil
	}

	year, month, day := t.Date()
	hour, minute, second := t.Clock()

	// The field stores the number of years since 1900, so valid years are 1900–2155.
	if year < 1900 || year > 2155 {
		return b, fmt.Errorf("year %d out of range for Recording Date and Time (must be between 1900 and 2155)", year)
	}
	_, offsetSec := t.Zone()
	offset15 := offsetSec / (15 * 60)
	if offset15 < -48 || offset15 > 52 {
		return b, fmt.Errorf("time zone offset %d (in 15-minute intervals: %d) is out of allowed range", offsetSec, offset15)
	}

	b[0] = byte(year - 1900)
	b[1] = byte(month)
	b[2] = byte(day)
	b[3] = byte(hour)
	b[4] = byte(minute)
	b[5] = byte(second)
	b[6] = byte(int8(offset15))
	return b, nil
}

// UnmarshalRecordingDateTime converts a 7-byte Recording Date and Time field into a time.Time. All zero bytes mean
// the date and time are not specified and yield the zero time.
func UnmarshalRecordingDateTime(b [7]byte) (time.Time, error) {
	if b == [7]byte{} {
		return time.Time{}, nil
	}
	offset15 := int8(b[6])
	if offset15 < -48 || offset15 > 52 {
		return time.Time{}, fmt.Errorf("offset %d out of ISO9660 bounds", offset15)
	}
	return time.Date(int(b[0])+1900, time.Month(b[1]), int(b[2]), int(b[3]), int(b[4]), int(b[5]), 0,
		zone(int(offset15)*900)), nil
}

func zone(offsetSec int) *time.Location {
	if offsetSec == 0 {
		return time.UTC
	}
	return time.FixedZone("", offsetSec)
}
