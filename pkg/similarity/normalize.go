package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeOptions toggles the individual normalization steps
type NormalizeOptions struct {
	Trim               bool
	Lowercase          bool
	RemoveAccents      bool
	CollapseWhitespace bool
	StripNonAlnum      bool
}

// DefaultNormalizeOptions is the standard pipeline: trim, lowercase,
// de-accent and collapse internal whitespace.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		Trim:               true,
		Lowercase:          true,
		RemoveAccents:      true,
		CollapseWhitespace: true,
	}
}

// deaccent decomposes to NFD and drops combining marks
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize runs the configured normalization pipeline over s
func Normalize(s string, opts NormalizeOptions) string {
	if opts.Trim {
		s = strings.TrimSpace(s)
	}
	if opts.Lowercase {
		s = strings.ToLower(s)
	}
	if opts.RemoveAccents {
		if out, _, err := transform.String(deaccent, s); err == nil {
			s = out
		}
	}
	if opts.StripNonAlnum {
		// Replace punctuation with a space to preserve word boundaries
		var b strings.Builder
		b.Grow(len(s))
		for _, r := range s {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
				b.WriteRune(r)
			} else {
				b.WriteRune(' ')
			}
		}
		s = b.String()
	}
	if opts.CollapseWhitespace {
		s = collapseWhitespace(s)
	}
	return s
}

// NormalizeDefault normalizes with the standard pipeline
func NormalizeDefault(s string) string {
	return Normalize(s, DefaultNormalizeOptions())
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			prevSpace = true
			continue
		}
		if prevSpace && b.Len() > 0 {
			b.WriteRune(' ')
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
