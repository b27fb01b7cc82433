package idcard

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
)

// Template holds the locale-specific data the extractors are tuned with:
// label synonyms per field, the fallback denylist and the citizenship token.
type Template struct {
	Name             string                    `yaml:"name"`
	Labels           map[dto.FieldKey][]string `yaml:"labels"`
	Denylist         []string                  `yaml:"denylist"`
	CitizenshipToken string                    `yaml:"citizenship_token"`
	CitizenshipValue string                    `yaml:"citizenship_value"`
}

// proximityFields are resolved from the lines following their label.
// Labels of every other key only act as competing labels.
var proximityFields = []dto.FieldKey{
	dto.FieldSurname,
	dto.FieldGivenName,
	dto.FieldDomicile,
	dto.FieldBirthplace,
	dto.FieldIssuedBy,
}

// DefaultTemplate returns the template for the Romanian identity card (carte de identitate).
func DefaultTemplate() Template {
	return Template{
		Name: "ro-ci",
		Labels: map[dto.FieldKey][]string{
			dto.FieldSurname:     {"nume", "nom", "last name", "surname"},
			dto.FieldGivenName:   {"prenume", "prenom", "first name", "given names", "given name"},
			dto.FieldBirthplace:  {"loc nastere", "locul nasterii", "lieu de naissance", "place of birth"},
			dto.FieldDomicile:    {"domiciliu", "adresse", "address", "adresa"},
			dto.FieldIssuedBy:    {"emisa de", "eliberat de", "eliberata de", "delivree par", "issued by"},
			dto.FieldCitizenship: {"cetatenie", "nationalite", "nationality"},
			dto.FieldSex:         {"sex", "sexe"},
			dto.FieldCNP:         {"cnp", "cod numeric personal", "personal numeric code"},
			dto.FieldBirthDate:   {"data nasterii", "date de naissance", "date of birth"},
			dto.FieldExpiryDate:  {"valabilitate", "validite", "validity", "valabil pana la"},
			dto.FieldSeries:      {"seria", "serie", "series"},
		},
		Denylist: []string{
			"Romania", "Roumanie", "Română", "Romana", "Rou",
			"Carte", "Identitate", "Identite", "Identity", "Card", "Anexa",
			"Nume", "Nom", "Last", "Prenume", "Prenom", "First", "Name", "Names", "Given",
			"Cetățenie", "Nationalite", "Nationality",
			"Sex", "Sexe",
			"Loc", "Locul", "Naștere", "Nasterii", "Lieu", "Naissance", "Place", "Birth", "Date",
			"Domiciliu", "Adresse", "Address", "Adresa",
			"Emisă", "Eliberat", "Delivree", "Issued", "Par",
			"Valabilitate", "Validite", "Validity",
			"Seria", "Serie", "Nr", "Cnp",
			"Spclep", "Spcep", "Sector", "Sec", "Mun", "Jud", "Str", "Bl", "Sc", "Et", "Ap", "Com", "Sat", "Oras",
			"București", "Bucuresti",
		},
		CitizenshipToken: "ROMANIA",
		CitizenshipValue: "Română / ROU",
	}
}

// LoadTemplate reads a YAML template. Keys it leaves out keep their DefaultTemplate values.
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return ParseTemplate(data)
}

// ParseTemplate decodes a YAML template on top of DefaultTemplate.
func ParseTemplate(data []byte) (Template, error) {
	var override Template
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Template{}, fmt.Errorf("failed to parse template: %w", err)
	}

	t := DefaultTemplate()
	if override.Name != "" {
		t.Name = override.Name
	}
	for key, synonyms := range override.Labels {
		t.Labels[key] = synonyms
	}
	if override.Denylist != nil {
		t.Denylist = override.Denylist
	}
	if override.CitizenshipToken != "" {
		t.CitizenshipToken = override.CitizenshipToken
		t.CitizenshipValue = override.CitizenshipValue
	}

	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

// Validate checks that the template can drive every extractor.
func (t Template) Validate() error {
	known := make(map[dto.FieldKey]bool, len(dto.AllFieldKeys))
	for _, k := range dto.AllFieldKeys {
		known[k] = true
	}
	for key := range t.Labels {
		if !known[key] {
			return fmt.Errorf("template %q: unknown field %q", t.Name, key)
		}
	}
	for _, key := range proximityFields {
		if len(nonEmpty(t.Labels[key])) == 0 {
			return fmt.Errorf("template %q: no labels for field %q", t.Name, key)
		}
	}
	if t.CitizenshipToken != "" && t.CitizenshipValue == "" {
		return fmt.Errorf("template %q: citizenship_value is required with citizenship_token", t.Name)
	}
	return nil
}

// compiledTemplate is the immutable, regex-compiled form a Parser works with.
type compiledTemplate struct {
	labels           map[dto.FieldKey]*regexp.Regexp
	denylist         map[string]bool
	citizenshipToken string
	citizenshipValue string
}

func compileTemplate(t Template) (*compiledTemplate, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	ct := &compiledTemplate{
		labels:           make(map[dto.FieldKey]*regexp.Regexp, len(t.Labels)),
		denylist:         make(map[string]bool, len(t.Denylist)),
		citizenshipToken: strings.ToUpper(strings.TrimSpace(t.CitizenshipToken)),
		citizenshipValue: t.CitizenshipValue,
	}

	for key, synonyms := range t.Labels {
		synonyms = nonEmpty(synonyms)
		if len(synonyms) == 0 {
			continue
		}
		re, err := labelPattern(synonyms)
		if err != nil {
			return nil, fmt.Errorf("template %q: labels for %q: %w", t.Name, key, err)
		}
		ct.labels[key] = re
	}

	for _, w := range t.Denylist {
		if w = fold(w); w != "" {
			ct.denylist[w] = true
		}
	}
	return ct, nil
}

// labelPattern matches a line made only of label synonyms joined by "/",
// e.g. "nume/nom/last name:". It runs on folded lines.
func labelPattern(synonyms []string) (*regexp.Regexp, error) {
	alts := make([]string, 0, len(synonyms))
	for _, s := range synonyms {
		words := strings.Fields(fold(s))
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `\s*`))
	}
	alt := "(?:" + strings.Join(alts, "|") + ")"
	return regexp.Compile(`^` + alt + `(?:\s*/\s*` + alt + `)*\s*[:.]?$`)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
