package info

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISOLayout_AddKeepsOffsetOrder(t *testing.T) {
	l := NewISOLayout()
	l.Add(CategoryFileExtent, "B.BIN;1", "", 40960, 3)
	l.Add(CategorySystemArea, "System Area", "", 0, 32768)
	l.Add(CategoryVolumeDescriptor, "Primary Volume Descriptor", "", 32768, 2048)

	require.Len(t, l.Items, 3)
	assert.Equal(t, CategorySystemArea, l.Items[0].Category)
	assert.Equal(t, CategoryVolumeDescriptor, l.Items[1].Category)
	assert.Equal(t, "B.BIN;1", l.Items[2].Name)

	assert.NotNil(t, l.Find(CategoryFileExtent, "B.BIN;1"))
	assert.Nil(t, l.Find(CategoryFileExtent, "MISSING"))
}

func TestISOLayout_Print(t *testing.T) {
	l := NewISOLayout()
	l.VolumeSpaceSize = 21
	l.Add(CategoryPathTable, "Path Table (L)", "little-endian", 38912, 10)

	buf := &bytes.Buffer{}
	l.Print(buf, false, true)
	out := buf.String()
	assert.True(t, strings.Contains(out, "=== ISO Layout ==="))
	assert.True(t, strings.Contains(out, "0x9800"))
	assert.True(t, strings.Contains(out, "Path Table (L) (little-endian)"))
	assert.True(t, strings.Contains(out, "21 sectors"))
}

func TestISOLayout_PrettyJSON(t *testing.T) {
	l := NewISOLayout()
	l.Add(CategoryBootCatalog, "El Torito Boot Catalog", "", 45056, 2048)
	assert.Contains(t, l.PrettyJSON(), "\"category\": \"Boot Catalog\"")
}
