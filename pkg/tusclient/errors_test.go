package tusclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtocolError_StringsWithoutStatus(t *testing.T) {
	err := NewProtocolError("Expected HEADER 'Tus-Resumable'")
	assert.Equal(t, `ProtocolException: (null) Expected HEADER 'Tus-Resumable'`, err.Error())
}

func TestProtocolError_StringsWithStatus(t *testing.T) {
	err := NewProtocolStatusError(409, "mismatched offset")
	assert.Equal(t, "ProtocolException: 409 mismatched offset", err.Error())
}
