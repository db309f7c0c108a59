package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLength(t *testing.T) {
	assert.Len(t, Token(20), 20)
	assert.Len(t, Token(1), 1)
	assert.Len(t, Token(64), 64)
	assert.Len(t, Token(0), 20, "non-positive lengths default to 20")
	assert.Len(t, Token(-3), 20)
}

func TestTokenAlphabet(t *testing.T) {
	token := Token(200)
	for _, r := range token {
		assert.True(t, strings.ContainsRune(tokenAlphabet, r), "unexpected character %q", r)
	}
}

func TestTokenUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token := Token(20)
		_, dup := seen[token]
		require.False(t, dup, "token collision")
		seen[token] = struct{}{}
	}
}

func TestFallbackTokenCoversAnyLength(t *testing.T) {
	assert.Len(t, fallbackToken(20), 20)
	assert.Len(t, fallbackToken(27), 27)
	assert.Len(t, fallbackToken(40), 40)
	assert.Len(t, fallbackToken(100), 100)
}
