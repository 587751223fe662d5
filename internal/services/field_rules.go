package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/formscan/document-ocr-service/internal/fields"
	"github.com/formscan/document-ocr-service/internal/models"
)

// FieldRules sanity-checks an extraction and reports advisory warnings.
// It never rejects or mutates values: OCR output is expected to be noisy,
// and the verification flow is what decides acceptance. The warnings only
// help the form UI draw attention to fields worth rechecking.
type FieldRules struct {
	minPhoneDigits int
	maxPhoneDigits int
	minAge         int
	maxAge         int
}

// NewFieldRules creates a rule checker with default bounds.
func NewFieldRules() *FieldRules {
	return &FieldRules{
		minPhoneDigits: 7,
		maxPhoneDigits: 15,
		minAge:         1,
		maxAge:         120,
	}
}

var (
	emailShape   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	knownGenders = map[string]bool{
		"male": true, "female": true, "m": true, "f": true,
		"other": true, "transgender": true,
	}
)

// Check runs every rule against the extraction. Empty fields are skipped:
// absence is an expected outcome, not a defect worth warning about.
func (r *FieldRules) Check(res fields.Result) []models.FieldWarning {
	var warnings []models.FieldWarning

	warn := func(field fields.FieldName, code, message string) {
		warnings = append(warnings, models.FieldWarning{
			Field:   string(field),
			Code:    code,
			Message: message,
		})
	}

	if v := res[fields.Name]; v != "" {
		if len(v) < 2 {
			warn(fields.Name, "name_too_short", "name is shorter than 2 characters")
		}
		if !strings.ContainsFunc(v, isLetter) {
			warn(fields.Name, "name_no_letters", "name contains no letters")
		}
	}

	if v := res[fields.Age]; v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			warn(fields.Age, "age_not_numeric", "age is not a number")
		} else if age < r.minAge || age > r.maxAge {
			warn(fields.Age, "age_out_of_range",
				fmt.Sprintf("age %d outside plausible range %d-%d", age, r.minAge, r.maxAge))
		}
	}

	if v := res[fields.Gender]; v != "" {
		if !knownGenders[strings.ToLower(v)] {
			warn(fields.Gender, "gender_unrecognized", "gender value not recognized: "+v)
		}
	}

	if v := res[fields.Address]; v != "" {
		if len(v) < 4 {
			warn(fields.Address, "address_too_short", "address is implausibly short")
		}
	}

	if v := res[fields.Email]; v != "" {
		if !emailShape.MatchString(v) {
			warn(fields.Email, "email_malformed", "email does not look like an address")
		}
	}

	if v := res[fields.Phone]; v != "" {
		if len(v) < r.minPhoneDigits || len(v) > r.maxPhoneDigits {
			warn(fields.Phone, "phone_length",
				fmt.Sprintf("phone has %d digits, expected %d-%d", len(v), r.minPhoneDigits, r.maxPhoneDigits))
		}
	}

	return warnings
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
