package directory

import (
	"strings"
	"testing"

	"github.com/bgrewell/isobuild/pkg/iso9660/isoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileIdentifier(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		policy NamingPolicy
		want   string
	}{
		{"upper cases", "a.txt", NamingRelaxed, "A.TXT;1"},
		{"no extension keeps separator", "README", NamingRelaxed, "README.;1"},
		{"directories are dropped", "build/out/main.wasm", NamingRelaxed, "MAIN.WASM;1"},
		{"strict truncates base and extension", "verylongname.text", NamingStrict, "VERYLONG.TEX;1"},
		{"relaxed keeps long names", "verylongname.text", NamingRelaxed, "VERYLONGNAME.TEXT;1"},
		{"relaxed truncates base first", strings.Repeat("a", 40) + ".bin", NamingRelaxed, strings.Repeat("A", 26) + ".BIN;1"},
		{"relaxed truncates long extension", "x." + strings.Repeat("e", 35), NamingRelaxed, "." + strings.Repeat("E", 29) + ";1"},
		{"underscore and digits", "boot_2.img", NamingStrict, "BOOT_2.IMG;1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileIdentifier(tt.input, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileIdentifier_Invalid(t *testing.T) {
	for _, input := range []string{"", "/", "a b.txt", "a.b.c", "dash-name.txt", "café.txt", "."} {
		t.Run(input, func(t *testing.T) {
			_, err := FileIdentifier(input, NamingRelaxed)
			require.Error(t, err)
			assert.ErrorIs(t, err, isoerr.ErrNameInvalid)
		})
	}
}

func TestStripVersion(t *testing.T) {
	assert.Equal(t, "A.TXT", StripVersion("A.TXT;1"))
	assert.Equal(t, "README", StripVersion("README.;1"))
	assert.Equal(t, "PLAIN", StripVersion("PLAIN"))
}

func TestParseNamingPolicy(t *testing.T) {
	p, err := ParseNamingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, NamingRelaxed, p)

	p, err = ParseNamingPolicy("Strict")
	require.NoError(t, err)
	assert.Equal(t, NamingStrict, p)
	assert.Equal(t, "strict", p.String())

	_, err = ParseNamingPolicy("joliet")
	assert.Error(t, err)
}
