package ingest

import (
	"errors"
	"strings"
)

var (
	// ErrQuotaExceeded rejects a whole batch that would push the selection
	// past the attachment limit.
	ErrQuotaExceeded = errors.New("attachment quota exceeded")
	// ErrNoValidMedia means nothing in the batch survived the extension and
	// size checks; callers surface a single user-facing message for it.
	ErrNoValidMedia = errors.New("no valid media in batch")
)

const (
	// MaxAttachments is the per-post selection limit.
	MaxAttachments = 4

	maxImageBytes = 20 * 1024 * 1024
	maxVideoBytes = 50 * 1024 * 1024
)

var imageExtensions = map[string]struct{}{
	"apng": {}, "avif": {}, "gif": {}, "jpg": {}, "jpeg": {}, "jfif": {},
	"pjpeg": {}, "pjp": {}, "png": {}, "svg": {}, "webp": {},
}

var videoExtensions = map[string]struct{}{
	"mp4": {}, "mov": {}, "webm": {}, "avi": {},
}

func extensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// IsValidImage is the strict image admission check: image extension and under
// the 20 MiB image ceiling.
func IsValidImage(name string, size int64) bool {
	_, ok := imageExtensions[extensionOf(name)]
	return ok && size < maxImageBytes
}

// IsValidVideo is the permissive media check covering the video extension set
// up to 50 MiB.
func IsValidVideo(name string, size int64) bool {
	_, ok := videoExtensions[extensionOf(name)]
	return ok && size < maxVideoBytes
}

// acceptable admits a file when it passes the check for its own kind. Each
// kind is held to its own ceiling; an oversized image does not slip through
// on the looser video allowance.
func acceptable(name string, size int64) bool {
	return IsValidImage(name, size) || IsValidVideo(name, size)
}

// IsVideoName reports whether a file name carries a video extension.
func IsVideoName(name string) bool {
	_, ok := videoExtensions[extensionOf(name)]
	return ok
}

// CanonicalExtension is the extension of the final container: .mp4 for the
// video extension set, .png for everything else.
func CanonicalExtension(name string) string {
	if IsVideoName(name) {
		return "mp4"
	}
	return "png"
}
