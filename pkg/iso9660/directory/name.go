package directory

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bgrewell/isobuild/pkg/consts"
	"github.com/bgrewell/isobuild/pkg/iso9660/isoerr"
	"github.com/bgrewell/isobuild/pkg/iso9660/validation"
)

// NamingPolicy selects how input file names are turned into ISO9660 file identifiers.
type NamingPolicy int

const (
	// NamingRelaxed follows interchange level 2: a file identifier of at most 30 d-characters plus one separator.
	NamingRelaxed NamingPolicy = iota
	// NamingStrict follows interchange level 1: at most eight d-characters, a separator and three d-characters.
	NamingStrict
)

const (
	strictBaseLength      = 8
	strictExtensionLength = 3
	// Base, separator and extension together; the version suffix is not counted.
	relaxedIdentifierLength = 30
)

func (p NamingPolicy) String() string {
	switch p {
	case NamingRelaxed:
		return "relaxed"
	case NamingStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseNamingPolicy parses "strict" or "relaxed". The empty string selects NamingRelaxed.
func ParseNamingPolicy(s string) (NamingPolicy, error) {
	switch strings.ToLower(s) {
	case "", "relaxed":
		return NamingRelaxed, nil
	case "strict":
		return NamingStrict, nil
	default:
		return NamingRelaxed, fmt.Errorf("unknown naming policy %q", s)
	}
}

// FileIdentifier turns the base name of path into an on-disk file identifier such as "MAIN.WASM;1". Names are folded
// to upper case and an over-long name or extension is truncated to the policy limits. Characters outside the
// d-character set, more than one separator or an empty result fail with isoerr.ErrNameInvalid.
func FileIdentifier(path string, policy NamingPolicy) (string, error) {
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("%q has no file name: %w", path, isoerr.ErrNameInvalid)
	}
	name = strings.ToUpper(name)

	if strings.Count(name, consts.ISO9660_SEPARATOR_1) > 1 {
		return "", fmt.Errorf("%q contains more than one separator: %w", path, isoerr.ErrNameInvalid)
	}
	base, ext, _ := strings.Cut(name, consts.ISO9660_SEPARATOR_1)
	if base == "" && ext == "" {
		return "", fmt.Errorf("%q has neither a name nor an extension: %w", path, isoerr.ErrNameInvalid)
	}
	if err := validation.ValidateDCharacters(base+ext, false); err != nil {
		return "", fmt.Errorf("%q: %v: %w", path, err, isoerr.ErrNameInvalid)
	}

	switch policy {
	case NamingStrict:
		base = truncate(base, strictBaseLength)
		ext = truncate(ext, strictExtensionLength)
	default:
		limit := relaxedIdentifierLength - len(consts.ISO9660_SEPARATOR_1)
		ext = truncate(ext, limit)
		base = truncate(base, limit-len(ext))
	}

	return base + consts.ISO9660_SEPARATOR_1 + ext + consts.ISO9660_FILE_VERSION, nil
}

// StripVersion removes the version suffix and a trailing separator from a file identifier, giving the name a user
// would expect: "A.TXT;1" becomes "A.TXT" and "README.;1" becomes "README".
func StripVersion(identifier string) string {
	if i := strings.LastIndex(identifier, consts.ISO9660_SEPARATOR_2); i >= 0 {
		identifier = identifier[:i]
	}
	return strings.TrimSuffix(identifier, consts.ISO9660_SEPARATOR_1)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
