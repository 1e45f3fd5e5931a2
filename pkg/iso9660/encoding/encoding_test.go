package encoding

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestISO9660DateTime(t *testing.T) {
	t.Run("Unspecified_AllZero", func(t *testing.T) {
		var zeros [17]byte
		for i := 0; i < 16; i++ {
			zeros[i] = '0'
		}

		tm, err := UnmarshalDateTime(zeros)
		require.NoError(t, err)
		require.True(t, tm.IsZero())

		reBytes, err := MarshalDateTime(tm)
		require.NoError(t, err)
		require.Equal(t, zeros, reBytes)
	})

	t.Run("RoundTripUTCOffset0", func(t *testing.T) {
		want := time.Date(2023, 6, 1, 12, 0, 0, 500_000_000, time.UTC)
		data, err := MarshalDateTime(want)
		require.NoError(t, err)
		require.Equal(t, "2023060112000050", string(data[:16]))
		require.Equal(t, byte(0), data[16])

		got, err := UnmarshalDateTime(data)
		require.NoError(t, err)
		require.True(t, want.Equal(got))
		require.Equal(t, time.UTC, got.Location())
	})

	t.Run("RoundTripNegativeOffset", func(t *testing.T) {
		want := time.Date(2023, 12, 31, 23, 59, 30, 370_000_000, time.FixedZone("", -8*3600))
		data, err := MarshalDateTime(want)
		require.NoError(t, err)
		require.Equal(t, int8(-32), int8(data[16]))

		got, err := UnmarshalDateTime(data)
		require.NoError(t, err)
		require.True(t, want.Equal(got))
		_, off := got.Zone()
		require.Equal(t, -8*3600, off)
	})

	t.Run("OffsetOutOfRange", func(t *testing.T) {
		badTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.FixedZone("", 53*900))
		_, err := MarshalDateTime(badTime)
		require.Error(t, err)
	})

	t.Run("GarbageDigits", func(t *testing.T) {
		var data [17]byte
		copy(data[:], "20XX0101000000001")
		_, err := UnmarshalDateTime(data)
		require.Error(t, err)
	})
}

func TestRecordingDateTime(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		want := time.Date(2024, 2, 29, 13, 14, 15, 0, time.FixedZone("", 2*3600))
		data, err := MarshalRecordingDateTime(want)
		require.NoError(t, err)
		require.Equal(t, [7]byte{124, 2, 29, 13, 14, 15, 8}, data)

		got, err := UnmarshalRecordingDateTime(data)
		require.NoError(t, err)
		require.True(t, want.Equal(got))
	})

	t.Run("ZeroTimeIsUnspecified", func(t *testing.T) {
		data, err := MarshalRecordingDateTime(time.Time{})
		require.NoError(t, err)
		require.Equal(t, [7]byte{}, data)

		got, err := UnmarshalRecordingDateTime(data)
		require.NoError(t, err)
		require.True(t, got.IsZero())
	})

	t.Run("YearOutOfRange", func(t *testing.T) {
		_, err := MarshalRecordingDateTime(time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC))
		require.Error(t, err)
		_, err = MarshalRecordingDateTime(time.Date(2156, 1, 1, 0, 0, 0, 0, time.UTC))
		require.Error(t, err)
	})
}

func TestBothByteOrders32(t *testing.T) {
	tests := []uint32{0, 1, 0x12345678, 0xFFFFFFFF}
	for _, val := range tests {
		data := MarshalBothByteOrders32(val)
		require.Equal(t, val, binary.LittleEndian.Uint32(data[0:4]))
		require.Equal(t, val, binary.BigEndian.Uint32(data[4:8]))

		got, err := UnmarshalUint32LSBMSB(data)
		require.NoError(t, err)
		require.Equal(t, val, got)
	}

	mismatched := [8]byte{1, 0, 0, 0, 0, 0, 0, 2}
	_, err := UnmarshalUint32LSBMSB(mismatched)
	require.Error(t, err)
}

func TestBothByteOrders16(t *testing.T) {
	require.Equal(t, [4]byte{0x34, 0x12, 0x12, 0x34}, MarshalBothByteOrders16(0x1234))

	got, err := UnmarshalUint16LSBMSB([4]byte{0x00, 0x08, 0x08, 0x00})
	require.NoError(t, err)
	require.Equal(t, uint16(2048), got)

	_, err = UnmarshalUint16LSBMSB([4]byte{0x01, 0x00, 0x00, 0x02})
	require.Error(t, err)
}

func TestWordSums(t *testing.T) {
	require.Equal(t, uint16(0x0303), WordSum16([]byte{0x01, 0x01, 0x02, 0x02}))
	require.Equal(t, uint16(0), WordSum16([]byte{0xFF, 0xFF, 0x01, 0x00}))

	require.Equal(t, uint32(3), WordSum32([]byte{1, 0, 0, 0, 2, 0, 0, 0}))
	require.Equal(t, uint32(0x0201+1), WordSum32([]byte{1, 0, 0, 0, 1, 2}))
}
