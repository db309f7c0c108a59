package ids

import (
	"crypto/rand"
	"strings"

	"github.com/segmentio/ksuid"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// New returns a sortable unique id for persisted entities (users, posts, sessions).
func New() string {
	return ksuid.New().String()
}

// Token returns a random alphanumeric token of the given length. Attachment ids
// are 20-character tokens so they double as collision-safe object file names.
func Token(length int) string {
	if length <= 0 {
		length = 20
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to ksuid
		// material rather than returning a zeroed token.
		return fallbackToken(length)
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf)
}

// fallbackToken concatenates ksuid material until it covers any requested
// length; a single ksuid is only 27 characters.
func fallbackToken(length int) string {
	var b strings.Builder
	for b.Len() < length {
		b.WriteString(ksuid.New().String())
	}
	return b.String()[:length]
}
