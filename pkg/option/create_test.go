package option

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/bgrewell/isobuild/pkg/iso9660/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Defaults(t *testing.T) {
	o := Apply()
	assert.Equal(t, directory.NamingRelaxed, o.Naming)
	assert.Equal(t, DEFAULT_APPLICATION_IDENTIFIER, o.Identifiers.Application)
	assert.NotNil(t, o.Clock)
	assert.NotNil(t, o.FileReader)
	assert.NotNil(t, o.Logger)
	assert.False(t, o.ElTorito.NoBoot)
}

func TestApply_Options(t *testing.T) {
	fixed := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	o := Apply(
		WithVolumeName("DBGAME-TEST"),
		WithInputFiles("a.txt"),
		WithInputFiles("b.bin", "c.dat"),
		WithBootImage("boot.img"),
		WithNoEmuBoot(true),
		WithBootInfoTable(true),
		WithBootLoadSize(4),
		WithProtectiveMSDOSLabel(true),
		WithNaming(directory.NamingStrict),
		WithClock(FixedClock(fixed)),
		WithWorkers(2),
	)
	assert.Equal(t, "DBGAME-TEST", o.VolumeName)
	assert.Equal(t, []string{"a.txt", "b.bin", "c.dat"}, o.InputFiles)
	assert.Equal(t, ElToritoOptions{BootImage: "boot.img", NoEmuBoot: true, BootInfoTable: true}, o.ElTorito)
	assert.Equal(t, uint32(4), o.BootLoadSize)
	assert.True(t, o.ProtectiveMSDOSLabel)
	assert.Equal(t, directory.NamingStrict, o.Naming)
	assert.Equal(t, fixed, o.Clock())
	assert.Equal(t, 2, o.Workers)
}

func TestFSFileReader(t *testing.T) {
	r := FSFileReader(fstest.MapFS{"dir/a.txt": {Data: []byte("hello")}})
	data, err := r.ReadFile("dir/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	_, err = r.ReadFile("missing")
	assert.Error(t, err)
}

func TestApplyOpen(t *testing.T) {
	o := ApplyOpen(WithStripVersionInfo(false))
	assert.False(t, o.StripVersionInfo)
	assert.True(t, o.ElToritoEnabled)
	assert.NotNil(t, o.Logger)
}
