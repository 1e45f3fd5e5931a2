package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPadString(t *testing.T) {
	assert.Equal(t, []byte("AB  "), PadString("AB", 4))
	assert.Equal(t, []byte("ABCD"), PadString("ABCDEF", 4))
	assert.Equal(t, []byte("    "), PadString("", 4))
}

func TestPadZero(t *testing.T) {
	assert.Equal(t, []byte{'E', 'L', 0, 0}, PadZero("EL", 4))
}

func TestSectorsFor(t *testing.T) {
	assert.Equal(t, uint64(0), SectorsFor(0, 2048))
	assert.Equal(t, uint64(1), SectorsFor(1, 2048))
	assert.Equal(t, uint64(1), SectorsFor(2048, 2048))
	assert.Equal(t, uint64(2), SectorsFor(2049, 2048))
	assert.Equal(t, uint64(3), SectorsFor(1025, 512))
}
