package manifest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bgrewell/isobuild/pkg/iso9660/descriptor"
	"github.com/bgrewell/isobuild/pkg/iso9660/directory"
	"github.com/bgrewell/isobuild/pkg/option"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override manifest settings.
const (
	ENV_VOLUME_NAME       = "ISOBUILD_VOLUME_NAME"
	ENV_NAMING            = "ISOBUILD_NAMING"
	ENV_WORKERS           = "ISOBUILD_WORKERS"
	ENV_PUBLISHER         = "ISOBUILD_PUBLISHER"
	ENV_DATA_PREPARER     = "ISOBUILD_DATA_PREPARER"
	ENV_SOURCE_DATE_EPOCH = "SOURCE_DATE_EPOCH"
)

// Manifest describes a build in YAML. Relative paths are resolved against the manifest's directory.
type Manifest struct {
	VolumeName           string                 `yaml:"volume_name"`
	EmbeddedBoot         string                 `yaml:"embedded_boot"`
	Grub2MBR             string                 `yaml:"grub2_mbr"`
	BootLoadSize         uint32                 `yaml:"boot_load_size"`
	LoadSegment          uint16                 `yaml:"load_segment"`
	ProtectiveMSDOSLabel bool                   `yaml:"protective_msdos_label"`
	InputFiles           []string               `yaml:"input_files"`
	ElTorito             option.ElToritoOptions `yaml:"el_torito"`
	Naming               string                 `yaml:"naming"`
	Identifiers          descriptor.Identifiers `yaml:"identifiers"`
	Workers              int                    `yaml:"workers"`

	// SourceDateEpoch pins every timestamp in the image when non-nil.
	SourceDateEpoch *int64 `yaml:"source_date_epoch"`
}

// Load reads and decodes the manifest at path. Unknown keys are rejected so typos do not go unnoticed.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	m := &Manifest{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	m.resolve(filepath.Dir(path))
	return m, nil
}

func (m *Manifest) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	m.EmbeddedBoot = abs(m.EmbeddedBoot)
	m.Grub2MBR = abs(m.Grub2MBR)
	m.ElTorito.BootImage = abs(m.ElTorito.BootImage)
	for i, p := range m.InputFiles {
		m.InputFiles[i] = abs(p)
	}
}

// LoadEnv loads the given dotenv files into the process environment. Missing files are skipped and variables that
// are already set win.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv overrides manifest settings from the environment. lookup is usually os.LookupEnv.
func (m *Manifest) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(ENV_VOLUME_NAME); ok {
		m.VolumeName = v
	}
	if v, ok := lookup(ENV_NAMING); ok {
		m.Naming = v
	}
	if v, ok := lookup(ENV_PUBLISHER); ok {
		m.Identifiers.Publisher = v
	}
	if v, ok := lookup(ENV_DATA_PREPARER); ok {
		m.Identifiers.DataPreparer = v
	}
	if v, ok := lookup(ENV_WORKERS); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", ENV_WORKERS, err)
		}
		m.Workers = n
	}
	if v, ok := lookup(ENV_SOURCE_DATE_EPOCH); ok {
		epoch, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", ENV_SOURCE_DATE_EPOCH, err)
		}
		m.SourceDateEpoch = &epoch
	}
	return nil
}

// Options converts the manifest into build options.
func (m *Manifest) Options() ([]option.CreateOption, error) {
	naming, err := directory.ParseNamingPolicy(m.Naming)
	if err != nil {
		return nil, err
	}
	opts := []option.CreateOption{
		option.WithVolumeName(m.VolumeName),
		option.WithEmbeddedBoot(m.EmbeddedBoot),
		option.WithGrub2MBR(m.Grub2MBR),
		option.WithBootLoadSize(m.BootLoadSize),
		option.WithLoadSegment(m.LoadSegment),
		option.WithProtectiveMSDOSLabel(m.ProtectiveMSDOSLabel),
		option.WithInputFiles(m.InputFiles...),
		option.WithElTorito(m.ElTorito),
		option.WithNaming(naming),
		option.WithWorkers(m.Workers),
	}
	if m.Identifiers != (descriptor.Identifiers{}) {
		ids := m.Identifiers
		if ids.Application == "" {
			ids.Application = option.DEFAULT_APPLICATION_IDENTIFIER
		}
		opts = append(opts, option.WithIdentifiers(ids))
	}
	if m.SourceDateEpoch != nil {
		opts = append(opts, option.WithClock(option.FixedClock(time.Unix(*m.SourceDateEpoch, 0).UTC())))
	}
	return opts, nil
}
