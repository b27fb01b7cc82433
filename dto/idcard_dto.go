package dto

// FieldKey names one field of an identity card record.
type FieldKey string

const (
	FieldCNP         FieldKey = "cnp"
	FieldSurname     FieldKey = "nume"
	FieldGivenName   FieldKey = "prenume"
	FieldCitizenship FieldKey = "cetatenie"
	FieldBirthplace  FieldKey = "locul_nasterii"
	FieldDomicile    FieldKey = "domiciliu"
	FieldBirthDate   FieldKey = "data_nasterii"
	FieldSex         FieldKey = "sex"
	FieldIssuedBy    FieldKey = "emis_de"
	FieldIssueDate   FieldKey = "data_emiterii"
	FieldExpiryDate  FieldKey = "data_expirarii"
	FieldSeries      FieldKey = "serie"
	FieldNumber      FieldKey = "numar"
)

// AllFieldKeys is the closed set of record keys in output order.
var AllFieldKeys = []FieldKey{
	FieldCNP,
	FieldSurname,
	FieldGivenName,
	FieldCitizenship,
	FieldBirthplace,
	FieldDomicile,
	FieldBirthDate,
	FieldSex,
	FieldIssuedBy,
	FieldIssueDate,
	FieldExpiryDate,
	FieldSeries,
	FieldNumber,
}

// IDCardData is the record extracted from a Romanian identity card.
// Fields are never omitted from the JSON encoding; missing values are "".
type IDCardData struct {
	CNP           string `json:"cnp"`
	Nume          string `json:"nume"`
	Prenume       string `json:"prenume"`
	Cetatenie     string `json:"cetatenie"`
	LoculNasterii string `json:"locul_nasterii"`
	Domiciliu     string `json:"domiciliu"`
	DataNasterii  string `json:"data_nasterii"`
	Sex           string `json:"sex"`
	EmisDe        string `json:"emis_de"`
	DataEmiterii  string `json:"data_emiterii"`
	DataExpirarii string `json:"data_expirarii"`
	Serie         string `json:"serie"`
	Numar         string `json:"numar"`
}

func (d *IDCardData) field(key FieldKey) *string {
	switch key {
	case FieldCNP:
		return &d.CNP
	case FieldSurname:
		return &d.Nume
	case FieldGivenName:
		return &d.Prenume
	case FieldCitizenship:
		return &d.Cetatenie
	case FieldBirthplace:
		return &d.LoculNasterii
	case FieldDomicile:
		return &d.Domiciliu
	case FieldBirthDate:
		return &d.DataNasterii
	case FieldSex:
		return &d.Sex
	case FieldIssuedBy:
		return &d.EmisDe
	case FieldIssueDate:
		return &d.DataEmiterii
	case FieldExpiryDate:
		return &d.DataExpirarii
	case FieldSeries:
		return &d.Serie
	case FieldNumber:
		return &d.Numar
	}
	return nil
}

// Set stores value under key. Unknown keys are ignored.
func (d *IDCardData) Set(key FieldKey, value string) {
	if f := d.field(key); f != nil {
		*f = value
	}
}

// Get returns the value stored under key, or "" for unknown keys.
func (d *IDCardData) Get(key FieldKey) string {
	if f := d.field(key); f != nil {
		return *f
	}
	return ""
}

// Map returns the record keyed by field name. It always has len(AllFieldKeys) entries.
func (d *IDCardData) Map() map[FieldKey]string {
	m := make(map[FieldKey]string, len(AllFieldKeys))
	for _, k := range AllFieldKeys {
		m[k] = d.Get(k)
	}
	return m
}

// Where the text behind a record came from.
const (
	SourceOCR     = "ocr"
	SourcePDFText = "pdf-text"
	SourceText    = "text"
)

// IDCardExtractResponse is returned by the extraction endpoints
type IDCardExtractResponse struct {
	RequestID string     `json:"request_id"`
	Engine    string     `json:"engine"`
	Source    string     `json:"source"`
	Data      IDCardData `json:"data"`
	RawText   string     `json:"raw_text,omitempty"`
}

// TextParseRequest is the JSON body of POST /api/v1/idcard/parse
type TextParseRequest struct {
	Text string `json:"text"`
}
