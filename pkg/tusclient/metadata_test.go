package tusclient

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMetadata_RoundTrip(t *testing.T) {
	md := Metadata{"filename": "report.pdf", "caption": "Q3 café"}
	encoded := encodeMetadata(md, "/tmp/report.pdf")

	decoded := decodeEntries(t, encoded)
	assert.Equal(t, "report.pdf", decoded["filename"])
	assert.Equal(t, "Q3 café", decoded["caption"])
}

func TestEncodeMetadata_DefaultsFilename(t *testing.T) {
	encoded := encodeMetadata(Metadata{"author": "jane"}, "/data/uploads/video.mp4")
	decoded := decodeEntries(t, encoded)
	assert.Equal(t, "video.mp4", decoded["filename"])
	assert.Equal(t, "jane", decoded["author"])
}

func TestEncodeMetadata_NilMap(t *testing.T) {
	encoded := encodeMetadata(nil, "/a/b/c.bin")
	decoded := decodeEntries(t, encoded)
	assert.Equal(t, "c.bin", decoded["filename"])
}

func decodeEntries(t *testing.T, encoded string) map[string]string {
	t.Helper()
	out := map[string]string{}
	if encoded == "" {
		return out
	}
	for _, entry := range strings.Split(encoded, ",") {
		parts := strings.SplitN(entry, " ", 2)
		require.Len(t, parts, 2)
		raw, err := base64.StdEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		out[parts[0]] = string(raw)
	}
	return out
}
