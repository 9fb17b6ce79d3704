package tusclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFingerprint(t *testing.T) {
	assert.Equal(t, ".tmp.report.pdf", defaultFingerprint("/tmp/report.pdf"))
	assert.Equal(t, "C.Users.me.video.mp4", defaultFingerprint(`C:\Users\me\video.mp4`))
	assert.Equal(t, "a.b", defaultFingerprint("a!b"))
}

func TestDefaultFingerprint_Stable(t *testing.T) {
	a := defaultFingerprint("/home/me/pic.jpg")
	b := defaultFingerprint("/home/me/pic.jpg")
	assert.Equal(t, a, b)
}
