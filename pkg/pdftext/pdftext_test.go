package pdftext

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	t.Run("short input passes through", func(t *testing.T) {
		assert.Equal(t, "hello", Truncate("hello", 10))
	})

	t.Run("cuts at the byte limit on ASCII", func(t *testing.T) {
		assert.Equal(t, "hel", Truncate("hello", 3))
	})

	t.Run("never splits a multi-byte sequence", func(t *testing.T) {
		// "é" is 2 bytes; a naive byte slice at 4 would cut it in half.
		s := "abcéf"
		got := Truncate(s, 4)
		assert.Equal(t, "abc", got)
		assert.True(t, utf8.ValidString(got))
	})

	t.Run("stays valid for any limit", func(t *testing.T) {
		s := strings.Repeat("日本語テキスト", 3)
		for limit := 0; limit <= len(s); limit++ {
			got := Truncate(s, limit)
			assert.True(t, utf8.ValidString(got), "limit %d", limit)
			assert.LessOrEqual(t, len(got), limit)
		}
	})

	t.Run("zero and negative limits yield empty", func(t *testing.T) {
		assert.Equal(t, "", Truncate("abc", 0))
		assert.Equal(t, "", Truncate("abc", -1))
	})
}
