package pathtable

import (
	"testing"

	"github.com/bgrewell/isobuild/pkg/iso9660/directory"
	"github.com/bgrewell/isobuild/pkg/iso9660/extent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rootOnly(lba uint32) []*directory.Node {
	return []*directory.Node{{ID: directory.RootID, Parent: directory.RootID, Identifier: "\x00", Extent: extent.Extent{LBA: lba, Length: 2048}}}
}

func TestBuild_RootOnly(t *testing.T) {
	pt, err := Build(rootOnly(21))
	require.NoError(t, err)
	require.Len(t, pt.Records, 1)
	assert.Equal(t, uint16(1), pt.Records[0].ParentDirectoryNumber)
	assert.Equal(t, 10, pt.Size())

	l, err := pt.Marshal(true)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 21, 0, 0, 0, 1, 0, 0, 0}, l)

	m, err := pt.Marshal(false)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 21, 0, 1, 0, 0}, m)
	assert.Equal(t, len(l), len(m))
}

func TestBuild_OrdersByDepthParentAndName(t *testing.T) {
	nodes := append(rootOnly(20),
		&directory.Node{ID: 1, Parent: 0, Identifier: "ZETA", Extent: extent.Extent{LBA: 21}},
		&directory.Node{ID: 2, Parent: 1, Identifier: "CHILD", Extent: extent.Extent{LBA: 22}},
		&directory.Node{ID: 3, Parent: 0, Identifier: "ALPHA", Extent: extent.Extent{LBA: 23}},
	)
	pt, err := Build(nodes)
	require.NoError(t, err)

	var got []string
	for _, r := range pt.Records {
		got = append(got, r.DirectoryIdentifier)
	}
	assert.Equal(t, []string{"\x00", "ALPHA", "ZETA", "CHILD"}, got)
	assert.Equal(t, uint16(3), pt.Records[3].ParentDirectoryNumber)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(nil)
	assert.Error(t, err)

	orphan := append(rootOnly(20), &directory.Node{ID: 1, Parent: 7, Identifier: "LOST"})
	_, err = Build(orphan)
	assert.Error(t, err)
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	nodes := append(rootOnly(20), &directory.Node{ID: 1, Parent: 0, Identifier: "BOOT", Extent: extent.Extent{LBA: 30}})
	pt, err := Build(nodes)
	require.NoError(t, err)

	for _, littleEndian := range []bool{true, false} {
		data, err := pt.Marshal(littleEndian)
		require.NoError(t, err)

		decoded, err := Unmarshal(data, len(data), littleEndian)
		require.NoError(t, err)
		require.Len(t, decoded.Records, 2)
		assert.Equal(t, uint32(30), decoded.Records[1].LocationOfExtent)
		assert.Equal(t, "BOOT", decoded.Records[1].DirectoryIdentifier)
		assert.Equal(t, uint16(1), decoded.Records[1].ParentDirectoryNumber)
	}

	_, err = Unmarshal([]byte{1, 0}, 10, true)
	assert.Error(t, err)
}
