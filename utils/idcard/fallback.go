package idcard

import (
	"regexp"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
)

var (
	reWord        = regexp.MustCompile(`\p{L}+`)
	reCapitalized = regexp.MustCompile(`^\p{Lu}\p{Ll}+$`)
)

// fallbackNameExtractor guesses names from capitalized words when labels gave nothing.
// It has no lexicon, so place names missing from the denylist can be taken for names.
type fallbackNameExtractor struct {
	denylist map[string]bool
}

// candidates returns distinct capitalized words in order of appearance, minus the denylist.
func (f fallbackNameExtractor) candidates(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range reWord.FindAllString(text, -1) {
		if !reCapitalized.MatchString(w) || seen[w] {
			continue
		}
		seen[w] = true
		if f.denylist[fold(w)] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// fill proposes the first candidate as surname and the second as given name.
func (f fallbackNameExtractor) fill(in Input, needSurname, needGivenName bool) []Field {
	words := f.candidates(in.Text)

	var fields []Field
	if needSurname && len(words) > 0 {
		fields = append(fields, Field{Key: dto.FieldSurname, Value: words[0]})
	}
	if needGivenName && len(words) > 1 {
		fields = append(fields, Field{Key: dto.FieldGivenName, Value: words[1]})
	}
	return fields
}
