package tusclient

import (
	"encoding/base64"
	"path/filepath"
	"strings"
)

// Metadata is the caller-supplied key/value map attached to an upload. Keys
// must not contain spaces or commas; that is the caller's responsibility,
// matching the wire format's lack of separator escaping.
type Metadata map[string]string

// encodeMetadata builds the Upload-Metadata header value: a comma-separated
// list of "<key> <base64(utf8(value))>" entries. If filename is absent it is
// injected from path before encoding. Entry order is unspecified.
func encodeMetadata(md Metadata, path string) string {
	if _, ok := md["filename"]; !ok {
		if md == nil {
			md = Metadata{}
		} else {
			copied := make(Metadata, len(md)+1)
			for k, v := range md {
				copied[k] = v
			}
			md = copied
		}
		md["filename"] = filepath.Base(path)
	}

	entries := make([]string, 0, len(md))
	for k, v := range md {
		entries = append(entries, k+" "+base64.StdEncoding.EncodeToString([]byte(v)))
	}
	return strings.Join(entries, ",")
}
