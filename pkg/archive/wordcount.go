package archive

import (
	"strings"
	"unicode"
)

// CJK writing systems are not reliably space-delimited, so word counting
// switches to per-character counting when any rune falls in these ranges.
var cjkRanges = [][2]rune{
	{0x3040, 0x30FF}, // hiragana, katakana
	{0x3400, 0x4DBF}, // CJK unified ideographs extension A
	{0x4E00, 0x9FFF}, // CJK unified ideographs
	{0xF900, 0xFAFF}, // CJK compatibility ideographs
	{0xFF66, 0xFF9F}, // halfwidth katakana
}

func isCJK(r rune) bool {
	for _, rng := range cjkRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// CountWords returns the word count of text. For text containing any CJK
// character the count is the number of non-whitespace characters;
// otherwise it is the number of whitespace-delimited tokens. Empty text
// counts as zero.
func CountWords(text string) int {
	if text == "" {
		return 0
	}

	hasCJK := false
	for _, r := range text {
		if isCJK(r) {
			hasCJK = true
			break
		}
	}

	if hasCJK {
		n := 0
		for _, r := range text {
			if !unicode.IsSpace(r) {
				n++
			}
		}
		return n
	}

	return len(strings.Fields(text))
}
