package similarity

import (
	"strings"
	"unicode"
)

// Soundex encodes a string as its four-character Soundex code. Useful as a
// cheap equivalence check for name-like values where spelling varies but
// pronunciation does not.
func Soundex(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))

	var first rune
	for _, r := range s {
		if unicode.IsLetter(r) {
			first = r
			break
		}
	}
	if first == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteRune(first)
	prev := soundexCode(first)

	started := false
	for _, r := range s {
		if !started {
			if r == first {
				started = true
			}
			continue
		}
		if !unicode.IsLetter(r) {
			continue
		}
		if b.Len() >= 4 {
			break
		}

		code := soundexCode(r)
		if code != 0 && code != prev {
			b.WriteRune(code)
		}
		prev = code
	}

	out := b.String()
	for len(out) < 4 {
		out += "0"
	}
	return out
}

// SoundexMatch reports whether two strings share a Soundex code
func SoundexMatch(a, b string) bool {
	codeA := Soundex(a)
	if codeA == "" {
		return false
	}
	return codeA == Soundex(b)
}

func soundexCode(r rune) rune {
	switch r {
	case 'B', 'F', 'P', 'V':
		return '1'
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return '2'
	case 'D', 'T':
		return '3'
	case 'L':
		return '4'
	case 'M', 'N':
		return '5'
	case 'R':
		return '6'
	default:
		return 0
	}
}
