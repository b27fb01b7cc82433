package idcard

import (
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
)

const (
	// proximityWindow is how many lines after a label may hold its value.
	proximityWindow = 4
	// minValueRunes is the length a candidate value must exceed.
	minValueRunes = 1
)

// reLabelLike matches lines that look like a label fragment rather than a value:
// one or two capitals ("NR", "S:") or a capitalized word ending in a colon.
// It also rejects genuine two-letter all-caps values such as the surname "LI".
var reLabelLike = regexp.MustCompile(`^(?:[A-Z]{1,2}[.:]?|[A-Z][A-Z ]*:)$`)

// proximityExtractor resolves one field from the lines following its label.
type proximityExtractor struct {
	key       dto.FieldKey
	label     *regexp.Regexp
	competing []*regexp.Regexp
}

func newProximityExtractor(key dto.FieldKey, labels map[dto.FieldKey]*regexp.Regexp) proximityExtractor {
	others := make([]dto.FieldKey, 0, len(labels))
	for k := range labels {
		if k != key {
			others = append(others, k)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })

	competing := make([]*regexp.Regexp, 0, len(others))
	for _, k := range others {
		competing = append(competing, labels[k])
	}
	return proximityExtractor{key: key, label: labels[key], competing: competing}
}

// Extract uses only the first line matching the label. If no line in the window
// qualifies, the field stays empty even when the label occurs again later.
func (p proximityExtractor) Extract(in Input) []Field {
	if p.label == nil {
		return nil
	}

	for i, line := range in.Lines {
		if !p.label.MatchString(fold(line)) {
			continue
		}

		end := min(i+proximityWindow, len(in.Lines)-1)
		for j := i + 1; j <= end; j++ {
			if p.accepts(in.Lines[j]) {
				return []Field{{Key: p.key, Value: in.Lines[j]}}
			}
		}
		return nil
	}
	return nil
}

func (p proximityExtractor) accepts(candidate string) bool {
	if utf8.RuneCountInString(candidate) <= minValueRunes {
		return false
	}
	if reLabelLike.MatchString(candidate) {
		return false
	}
	folded := fold(candidate)
	for _, re := range p.competing {
		if re.MatchString(folded) {
			return false
		}
	}
	return true
}
