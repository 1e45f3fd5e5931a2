package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bgrewell/isobuild/pkg/iso9660/directory"
	"github.com/bgrewell/isobuild/pkg/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
volume_name: dbgame-test
boot_load_size: 4
protective_msdos_label: true
naming: strict
input_files:
  - data/a.txt
  - /abs/b.bin
el_torito:
  boot_image: boot/cd.img
  no_emu_boot: true
  boot_info_table: true
identifiers:
  publisher: ACME
`

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := write(t, "build.yml", sample)
	dir := filepath.Dir(path)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dbgame-test", m.VolumeName)
	assert.Equal(t, uint32(4), m.BootLoadSize)
	assert.True(t, m.ProtectiveMSDOSLabel)
	assert.Equal(t, []string{filepath.Join(dir, "data/a.txt"), "/abs/b.bin"}, m.InputFiles)
	assert.Equal(t, option.ElToritoOptions{
		BootImage:     filepath.Join(dir, "boot/cd.img"),
		NoEmuBoot:     true,
		BootInfoTable: true,
	}, m.ElTorito)
	assert.Equal(t, "ACME", m.Identifiers.Publisher)
}

func TestLoad_UnknownKey(t *testing.T) {
	_, err := Load(write(t, "bad.yml", "volume_nam: typo\n"))
	assert.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	m, err := Load(write(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Empty(t, m.InputFiles)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		ENV_VOLUME_NAME:       "OVERRIDE",
		ENV_WORKERS:           "3",
		ENV_SOURCE_DATE_EPOCH: "1700000000",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	m := &Manifest{VolumeName: "ORIGINAL", Naming: "relaxed"}
	require.NoError(t, m.ApplyEnv(lookup))
	assert.Equal(t, "OVERRIDE", m.VolumeName)
	assert.Equal(t, "relaxed", m.Naming)
	assert.Equal(t, 3, m.Workers)
	require.NotNil(t, m.SourceDateEpoch)
	assert.Equal(t, int64(1700000000), *m.SourceDateEpoch)

	env[ENV_WORKERS] = "many"
	assert.Error(t, m.ApplyEnv(lookup))
}

func TestLoadEnv(t *testing.T) {
	path := write(t, ".env", "ISOBUILD_TEST_LOAD_ENV=from-file\n")
	t.Setenv("ISOBUILD_TEST_LOAD_ENV", "")
	os.Unsetenv("ISOBUILD_TEST_LOAD_ENV")

	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("ISOBUILD_TEST_LOAD_ENV"))
}

func TestOptions(t *testing.T) {
	epoch := int64(1700000000)
	m := &Manifest{
		VolumeName:      "VOL",
		Naming:          "strict",
		InputFiles:      []string{"a", "b"},
		SourceDateEpoch: &epoch,
	}
	opts, err := m.Options()
	require.NoError(t, err)
	o := option.Apply(opts...)
	assert.Equal(t, "VOL", o.VolumeName)
	assert.Equal(t, directory.NamingStrict, o.Naming)
	assert.Equal(t, []string{"a", "b"}, o.InputFiles)
	assert.Equal(t, int64(1700000000), o.Clock().Unix())
	assert.Equal(t, option.DEFAULT_APPLICATION_IDENTIFIER, o.Identifiers.Application)

	m.Naming = "joliet"
	_, err = m.Options()
	assert.Error(t, err)
}
