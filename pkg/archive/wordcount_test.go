package archive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/archivehub/archive-hub/pkg/archive"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{
			name:     "empty text",
			text:     "",
			expected: 0,
		},
		{
			name:     "whitespace only",
			text:     "   \n\t  ",
			expected: 0,
		},
		{
			name:     "simple english",
			text:     "hello world",
			expected: 2,
		},
		{
			name:     "cyrillic counts by fields",
			text:     "один два три",
			expected: 3,
		},
		{
			name:     "collapses repeated whitespace",
			text:     "one  two\n\nthree\tfour",
			expected: 4,
		},
		{
			name:     "japanese counts characters",
			text:     "日本語のテスト",
			expected: 7,
		},
		{
			name:     "cjk with spaces skips whitespace",
			text:     "こんにちは 世界",
			expected: 7,
		},
		{
			name:     "single cjk rune switches the whole text",
			text:     "word 漢 another",
			expected: 12,
		},
		{
			name:     "halfwidth katakana",
			text:     "ｱｲｳ",
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, archive.CountWords(tt.text))
		})
	}
}
