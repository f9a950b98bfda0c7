package blob_test

import (
	"testing"

	"github.com/crawlctl/coordinator/internal/blob"
	"github.com/stretchr/testify/assert"
)

func TestKeyTruncatesHashTo16Chars(t *testing.T) {
	key := blob.Key("run-1", "example.com", "0123456789abcdef0123456789abcdef")
	assert.Equal(t, "run-1/example.com/0123456789abcdef.html", key)
}

func TestKeyShortHashUnchanged(t *testing.T) {
	key := blob.Key("run-1", "example.com", "abc123")
	assert.Equal(t, "run-1/example.com/abc123.html", key)
}
