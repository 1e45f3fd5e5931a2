package iso

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/bgrewell/isobuild/pkg/iso9660/isoerr"
	"github.com/bgrewell/isobuild/pkg/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inputs() option.CreateOption {
	return option.WithFileReader(option.FSFileReader(fstest.MapFS{
		"A.TXT": {Data: []byte("alpha")},
		"B.BIN": {Data: bytes.Repeat([]byte{0xB0}, 5000)},
	}))
}

func TestCreate_Verify(t *testing.T) {
	data, err := Create(inputs(), option.WithVolumeName("DBGAME-TEST"), option.WithNoBoot(true),
		option.WithInputFiles("A.TXT", "B.BIN"))
	require.NoError(t, err)

	img, err := Verify(data)
	require.NoError(t, err)
	assert.Equal(t, "DBGAME-TEST", img.GetVolumeID())
	assert.Equal(t, option.DEFAULT_APPLICATION_IDENTIFIER, img.GetApplicationID())
	assert.Equal(t, []string{"A.TXT", "B.BIN"}, img.FileNames())
}

func TestWrite_NothingOnFailure(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, inputs(), option.WithInputFiles("A.TXT"))
	assert.True(t, errors.Is(err, isoerr.ErrMissingBootImage))
	assert.Zero(t, buf.Len())
}

func TestWrite_Open(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.iso")
	f, err := os.Create(path)
	require.NoError(t, err)
	clock := option.FixedClock(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, Write(f, inputs(), option.WithNoBoot(true), option.WithInputFiles("B.BIN"), option.WithClock(clock)))
	require.NoError(t, f.Close())

	img, err := Open(path)
	require.NoError(t, err)
	defer img.Close()
	data, err := img.ReadFile("B.BIN;1")
	require.NoError(t, err)
	assert.Len(t, data, 5000)
}
