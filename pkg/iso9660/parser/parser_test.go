package parser

import (
	"bytes"
	"context"
	"testing"
	"testing/fstest"

	"github.com/bgrewell/isobuild/pkg/consts"
	"github.com/bgrewell/isobuild/pkg/iso9660/writer"
	"github.com/bgrewell/isobuild/pkg/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sector = consts.ISO9660_SECTOR_SIZE

func buildImage(t *testing.T, opts ...option.CreateOption) []byte {
	t.Helper()
	fsys := fstest.MapFS{
		"A.TXT":  {Data: []byte("hello")},
		"cd.img":  {Data: bytes.Repeat([]byte{0xEB}, 2048)},
	}
	base := []option.CreateOption{
		option.WithVolumeName("PARSE"),
		option.WithInputFiles("A.TXT"),
		option.WithFileReader(option.FSFileReader(fsys)),
	}
	img, err := writer.New(option.Apply(append(base, opts...)...)).Build(context.Background())
	require.NoError(t, err)
	return img.Data
}

func TestParser_VolumeDescriptorSet(t *testing.T) {
	data := buildImage(t, option.WithBootImage("cd.img"), option.WithNoEmuBoot(true))
	p := NewParser(bytes.NewReader(data), nil)

	set, err := p.GetVolumeDescriptorSet()
	require.NoError(t, err)
	require.NotNil(t, set.Boot)
	assert.Equal(t, "PARSE", set.Primary.VolumeIdentifier)

	catalog, err := p.GetElTorito(set.Boot)
	require.NoError(t, err)
	require.NotNil(t, catalog)
	assert.Equal(t, set.Boot.CatalogLocation(), catalog.ObjectLocation)

	image, err := p.GetBootImage(catalog, 2048)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xEB}, 2048), image)
}

func TestParser_ElToritoDisabled(t *testing.T) {
	data := buildImage(t, option.WithBootImage("cd.img"), option.WithNoEmuBoot(true))
	p := NewParser(bytes.NewReader(data), option.ApplyOpen(option.WithElToritoEnabled(false)))

	set, err := p.GetVolumeDescriptorSet()
	require.NoError(t, err)
	catalog, err := p.GetElTorito(set.Boot)
	require.NoError(t, err)
	assert.Nil(t, catalog)
}

func TestParser_DirectoryRecords(t *testing.T) {
	data := buildImage(t, option.WithNoBoot(true))
	p := NewParser(bytes.NewReader(data), nil)

	set, err := p.GetVolumeDescriptorSet()
	require.NoError(t, err)
	root := set.Primary.RootDirectory()
	records, err := p.ReadDirectoryRecords(root.LocationOfExtent, root.DataLength)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "A.TXT;1", records[2].FileIdentifier)

	content, err := p.ReadFileData(records[2])
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)

	l, err := p.GetPathTable(set.Primary, true)
	require.NoError(t, err)
	m, err := p.GetPathTable(set.Primary, false)
	require.NoError(t, err)
	assert.Equal(t, l.Records, m.Records)
	assert.Equal(t, root.LocationOfExtent, l.Records[0].LocationOfExtent)
}

func TestParser_Errors(t *testing.T) {
	t.Run("truncated", func(t *testing.T) {
		data := buildImage(t, option.WithNoBoot(true))
		p := NewParser(bytes.NewReader(data[:17*sector]), nil)
		_, err := p.GetVolumeDescriptorSet()
		assert.Error(t, err)
	})

	t.Run("no terminator", func(t *testing.T) {
		data := buildImage(t, option.WithNoBoot(true))
		// Replace the terminator with a second primary descriptor.
		copy(data[17*sector:18*sector], data[16*sector:17*sector])
		p := NewParser(bytes.NewReader(data), nil)
		_, err := p.GetVolumeDescriptorSet()
		assert.Error(t, err)
	})

	t.Run("bad catalog", func(t *testing.T) {
		data := buildImage(t, option.WithBootImage("cd.img"), option.WithNoEmuBoot(true))
		p := NewParser(bytes.NewReader(data), nil)
		set, err := p.GetVolumeDescriptorSet()
		require.NoError(t, err)
		data[int(set.Boot.CatalogLocation())*sector] = 0x02
		_, err = p.GetElTorito(set.Boot)
		assert.Error(t, err)
	})
}
