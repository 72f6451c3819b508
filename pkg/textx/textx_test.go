package textx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hello world", SanitizeText("  hello world  "))
	assert.Equal(t, "a\nb\tc", SanitizeText("a\nb\tc"))
	assert.Equal(t, "ab", SanitizeText("a\x00\x07b"))
	assert.Equal(t, "xin chào", SanitizeText("xin chào"))
	assert.Equal(t, "", SanitizeText("\x01\x02\x03"))
}

func TestExcerpt(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", Excerpt("  short  ", 100))
	assert.Equal(t, strings.Repeat("x", 10), Excerpt(strings.Repeat("x", 50), 10))
	assert.Equal(t, "", Excerpt("   ", 10))
}
