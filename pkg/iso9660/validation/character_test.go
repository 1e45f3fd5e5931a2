package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDCharacters(t *testing.T) {
	assert.NoError(t, ValidateDCharacters("HELLO_123", false))
	assert.Error(t, ValidateDCharacters("hello", false))
	assert.Error(t, ValidateDCharacters("A-B", false))
	assert.Error(t, ValidateDCharacters("A.TXT", false))
	assert.NoError(t, ValidateDCharacters("A.TXT;1", true))
}

func TestValidateACharacters(t *testing.T) {
	assert.NoError(t, ValidateACharacters("DBGAME-TEST", false))
	assert.NoError(t, ValidateACharacters("MY VOLUME (1)", false))
	assert.Error(t, ValidateACharacters("lower", false))
	assert.Error(t, ValidateACharacters("A#B", false))
	assert.Error(t, ValidateACharacters("A$B", true))
	assert.Error(t, ValidateACharacters("CAFÉ", false))
}
