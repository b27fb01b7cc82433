package idcard

import (
	"regexp"
	"strings"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
)

var (
	reCNP     = regexp.MustCompile(`(?:^|\D)(\d{13})(?:\D|$)`)
	reDate    = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})[./-](\d{4})`)
	reSex     = regexp.MustCompile(`\bSEX[\s:./]*([MF])\b`)
	reSeriaNr = regexp.MustCompile(`\bSERIA\s*([A-Z]{2,3})\s*N[RO]\.?\s*(\d{5,7})\b`)
	reSeries  = regexp.MustCompile(`\b([A-Z]{2,3})\s*(\d{5,7})\b`)
)

// extractCNP finds the first standalone run of exactly 13 digits. No checksum is applied.
func extractCNP(in Input) []Field {
	m := reCNP.FindStringSubmatch(in.Text)
	if len(m) < 2 {
		return nil
	}
	return []Field{{Key: dto.FieldCNP, Value: m[1]}}
}

// extractDates assigns distinct dates by position: birth, issue, expiry.
// A stray date earlier in the text shifts every later assignment.
func extractDates(in Input) []Field {
	keys := []dto.FieldKey{dto.FieldBirthDate, dto.FieldIssueDate, dto.FieldExpiryDate}

	seen := make(map[string]bool)
	var fields []Field
	for _, m := range reDate.FindAllStringSubmatch(in.Text, -1) {
		d := padTwo(m[1]) + "." + padTwo(m[2]) + "." + m[3]
		if seen[d] {
			continue
		}
		seen[d] = true
		fields = append(fields, Field{Key: keys[len(fields)], Value: d})
		if len(fields) == len(keys) {
			break
		}
	}
	return fields
}

func padTwo(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func extractSex(in Input) []Field {
	m := reSex.FindStringSubmatch(in.Upper)
	if len(m) < 2 {
		return nil
	}
	return []Field{{Key: dto.FieldSex, Value: m[1]}}
}

// citizenshipExtractor is a presence test: only the template's country is recognized.
type citizenshipExtractor struct {
	token string
	value string
}

func (c citizenshipExtractor) Extract(in Input) []Field {
	if c.token == "" || !strings.Contains(in.Upper, c.token) {
		return nil
	}
	return []Field{{Key: dto.FieldCitizenship, Value: c.value}}
}

// extractSeriesNumber prefers the labeled "SERIA XX NR 123456" form, then the
// first bare letters-digits run such as "XZ 1234567" or the MRZ "XZ123456".
func extractSeriesNumber(in Input) []Field {
	m := reSeriaNr.FindStringSubmatch(in.Upper)
	if len(m) < 3 {
		m = reSeries.FindStringSubmatch(in.Text)
	}
	if len(m) < 3 {
		return nil
	}
	return []Field{
		{Key: dto.FieldSeries, Value: m[1]},
		{Key: dto.FieldNumber, Value: m[2]},
	}
}
