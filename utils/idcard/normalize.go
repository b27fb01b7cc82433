package idcard

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Input is the normalized view of one recognized document shared by all extractors.
type Input struct {
	Text  string   // NFC text with \n line endings
	Upper string   // uppercased Text, for whole-text scans
	Lines []string // trimmed non-empty lines, split on line breaks and MRZ fillers
}

// Normalize splits raw OCR text into lines. It never fails; empty input gives an empty Input.
func Normalize(raw string) Input {
	text := norm.NFC.String(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '<' || r == '>'
	})

	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		lines = append(lines, s)
	}

	return Input{
		Text:  text,
		Upper: strings.ToUpper(text),
		Lines: lines,
	}
}

// fold lowercases s and strips diacritics, so "Cetăţenie" and "Cetățenie" both become "cetatenie".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
