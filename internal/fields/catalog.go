package fields

// FieldName identifies one of the six canonical personal-data slots.
type FieldName string

const (
	Name    FieldName = "name"
	Age     FieldName = "age"
	Gender  FieldName = "gender"
	Address FieldName = "address"
	Email   FieldName = "email"
	Phone   FieldName = "phone"
)

// AllFields lists every field in the fixed extraction order. The set is
// closed; it is not extensible at runtime.
var AllFields = []FieldName{Name, Age, Gender, Address, Email, Phone}

// catalog maps each field to its ordered label synonyms. The first synonym
// of every field is the field's own name; the rest are common OCR
// misreadings of the printed label. Matching is case-insensitive and stops
// at the first synonym/pattern combination that captures a value.
var catalog = map[FieldName][]string{
	Name:    {"name", "nam", "nane", "full name"},
	Age:     {"age", "agc", "aqe"},
	Gender:  {"gender", "gendar", "qender", "sex"},
	Address: {"address", "adress", "addres", "addr"},
	Email:   {"email", "e-mail", "emali", "mail"},
	Phone:   {"phone", "phone number", "phon", "mobile", "contact"},
}

// Synonyms returns the catalog entry for a field. The returned slice must
// not be modified; the catalog is immutable for the process lifetime.
func Synonyms(f FieldName) []string {
	return catalog[f]
}

// IsField reports whether s names one of the six canonical fields.
func IsField(s string) bool {
	for _, f := range AllFields {
		if string(f) == s {
			return true
		}
	}
	return false
}
