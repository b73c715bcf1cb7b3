package bossbar

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SectionSign is the client's native formatting marker.
const SectionSign = '§'

const colorCodeChars = "0123456789AaBbCcDdEeFfKkLlMmNnOoRr"

// Truncate cuts s to at most n characters. s is composed to NFC first, so a
// letter typed as base plus combining mark counts once.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	s = norm.NFC.String(s)
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// TranslateColorCodes rewrites every alt+code pair (for example "&a") to the
// section-sign form ("§a"). Codes are lower-cased; an alt character not
// followed by a valid code is left alone.
func TranslateColorCodes(alt rune, s string) string {
	if !strings.ContainsRune(s, alt) {
		return s
	}
	r := []rune(s)
	for i := 0; i < len(r)-1; i++ {
		if r[i] == alt && strings.ContainsRune(colorCodeChars, r[i+1]) {
			r[i] = SectionSign
			r[i+1] = unicode.ToLower(r[i+1])
		}
	}
	return string(r)
}
