package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// HumanizePauses inserts one extra space after every period and comma so engines
// take a slightly longer breath there. It does not look at sentence structure.
func HumanizePauses(text string) string {
	var b strings.Builder
	b.Grow(len(text) + strings.Count(text, ".") + strings.Count(text, ","))
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == ',' {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// IsBlank reports whether text has nothing but whitespace.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// splitText cuts text into pieces of at most maxLen runes, preferring to cut
// after sentence punctuation, then after whitespace, and only mid-word when a
// single word is longer than maxLen. Empty pieces are dropped.
func splitText(text string, maxLen int) []string {
	var parts []string
	rest := strings.TrimSpace(text)

	for rest != "" {
		if utf8.RuneCountInString(rest) <= maxLen {
			parts = append(parts, rest)
			break
		}

		window := prefixRunes(rest, maxLen)
		cut := lastIndexFunc(window, isPausePunct)
		if cut <= 0 {
			cut = lastIndexFunc(window, unicode.IsSpace)
		}
		if cut <= 0 {
			cut = len(window)
		}

		if piece := strings.TrimSpace(rest[:cut]); piece != "" {
			parts = append(parts, piece)
		}
		rest = strings.TrimSpace(rest[cut:])
	}

	return parts
}

func isPausePunct(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', '¡', '¿', '…', '\n':
		return true
	}
	return false
}

// prefixRunes returns the longest prefix of s holding n runes.
func prefixRunes(s string, n int) string {
	i := 0
	for idx := range s {
		if i == n {
			return s[:idx]
		}
		i++
	}
	return s
}

// lastIndexFunc returns the byte offset just past the last rune matching f, or -1.
func lastIndexFunc(s string, f func(rune) bool) int {
	idx := strings.LastIndexFunc(s, f)
	if idx < 0 {
		return -1
	}
	_, size := utf8.DecodeRuneInString(s[idx:])
	return idx + size
}
