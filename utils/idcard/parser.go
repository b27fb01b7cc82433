// Package idcard extracts the fields of a Romanian identity card from noisy OCR text.
//
// Extraction is heuristic and best effort: values are never validated, and a field
// that cannot be found is left as an empty string.
package idcard

import (
	"github.com/Aashish23092/ocr-idcard-extraction/dto"
)

// Field is one value produced by an extractor.
type Field struct {
	Key   dto.FieldKey
	Value string
}

// Extractor recovers zero or more fields from a normalized document.
// Implementations must be pure: no state, no I/O.
type Extractor interface {
	Extract(in Input) []Field
}

// ExtractorFunc adapts a plain function to Extractor.
type ExtractorFunc func(in Input) []Field

func (f ExtractorFunc) Extract(in Input) []Field { return f(in) }

// Parser runs a fixed pipeline of extractors built from one Template.
// It is immutable and safe for concurrent use.
type Parser struct {
	extractors []Extractor
	fallback   fallbackNameExtractor
}

// NewParser compiles t into a Parser.
func NewParser(t Template) (*Parser, error) {
	ct, err := compileTemplate(t)
	if err != nil {
		return nil, err
	}

	extractors := []Extractor{
		ExtractorFunc(extractCNP),
		ExtractorFunc(extractDates),
		ExtractorFunc(extractSex),
		citizenshipExtractor{token: ct.citizenshipToken, value: ct.citizenshipValue},
		ExtractorFunc(extractSeriesNumber),
	}
	for _, key := range proximityFields {
		extractors = append(extractors, newProximityExtractor(key, ct.labels))
	}

	return &Parser{
		extractors: extractors,
		fallback:   fallbackNameExtractor{denylist: ct.denylist},
	}, nil
}

// MustNewParser is like NewParser but panics on an invalid template.
func MustNewParser(t Template) *Parser {
	p, err := NewParser(t)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse extracts an identity card record from raw OCR text.
// The result always carries every field; unknown values are "".
func (p *Parser) Parse(raw string) dto.IDCardData {
	in := Normalize(raw)

	var record dto.IDCardData
	apply := func(fields []Field) {
		for _, f := range fields {
			if f.Value != "" {
				record.Set(f.Key, f.Value)
			}
		}
	}

	for _, e := range p.extractors {
		apply(e.Extract(in))
	}

	if record.Nume == "" || record.Prenume == "" {
		apply(p.fallback.fill(in, record.Nume == "", record.Prenume == ""))
	}

	return record
}

var defaultParser = MustNewParser(DefaultTemplate())

// ParseIDCardText parses raw OCR text with the built-in Romanian template.
func ParseIDCardText(raw string) dto.IDCardData {
	return defaultParser.Parse(raw)
}
