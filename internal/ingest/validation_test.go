package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const mib = 1024 * 1024

func TestIsValidImage(t *testing.T) {
	assert.True(t, IsValidImage("photo.png", 3*mib))
	assert.True(t, IsValidImage("photo.JPEG", 19*mib))
	assert.True(t, IsValidImage("anim.gif", mib))
	assert.False(t, IsValidImage("photo.png", 21*mib), "image ceiling is 20 MiB")
	assert.False(t, IsValidImage("clip.mp4", mib), "video extension fails the image check")
	assert.False(t, IsValidImage("notes.txt", 10), "extension outside the allow-list")
	assert.False(t, IsValidImage("noextension", 10))
}

func TestIsValidVideo(t *testing.T) {
	assert.True(t, IsValidVideo("clip.mp4", 45*mib))
	assert.True(t, IsValidVideo("clip.MOV", mib))
	assert.True(t, IsValidVideo("clip.webm", mib))
	assert.True(t, IsValidVideo("clip.avi", mib))
	assert.False(t, IsValidVideo("clip.mp4", 51*mib), "media ceiling is 50 MiB")
	assert.False(t, IsValidVideo("photo.png", mib))
}

func TestAcceptablePerKindCeilings(t *testing.T) {
	// An oversized image must not slip through on the looser video allowance.
	assert.False(t, acceptable("photo.png", 21*mib))
	assert.True(t, acceptable("photo.png", 19*mib))
	assert.True(t, acceptable("clip.mp4", 21*mib))
}

func TestCanonicalExtension(t *testing.T) {
	tests := map[string]string{
		"clip.mp4":   "mp4",
		"clip.mov":   "mp4",
		"clip.webm":  "mp4",
		"clip.AVI":   "mp4",
		"photo.png":  "png",
		"photo.jpg":  "png",
		"vector.svg": "png",
	}
	for name, want := range tests {
		assert.Equal(t, want, CanonicalExtension(name), name)
	}
}
