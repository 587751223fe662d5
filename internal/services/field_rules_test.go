package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/formscan/document-ocr-service/internal/fields"
)

func warningCodes(t *testing.T, res fields.Result) []string {
	t.Helper()
	var out []string
	for _, w := range NewFieldRules().Check(res) {
		out = append(out, w.Code)
	}
	return out
}

func TestCleanExtractionHasNoWarnings(t *testing.T) {
	res := fields.Result{
		fields.Name:    "Kanchan Sharma",
		fields.Age:     "30",
		fields.Gender:  "Female",
		fields.Address: "12 MG Road, Pune",
		fields.Email:   "kanchan@example.com",
		fields.Phone:   "9876543210",
	}
	require.Empty(t, warningCodes(t, res))
}

func TestEmptyFieldsAreSkipped(t *testing.T) {
	require.Empty(t, warningCodes(t, fields.NewResult()))
}

func TestNameRules(t *testing.T) {
	require.Contains(t, warningCodes(t, fields.Result{fields.Name: "X"}), "name_too_short")
	require.Contains(t, warningCodes(t, fields.Result{fields.Name: "1234"}), "name_no_letters")
}

func TestAgeRules(t *testing.T) {
	require.Contains(t, warningCodes(t, fields.Result{fields.Age: "thirty"}), "age_not_numeric")
	require.Contains(t, warningCodes(t, fields.Result{fields.Age: "0"}), "age_out_of_range")
	require.Contains(t, warningCodes(t, fields.Result{fields.Age: "121"}), "age_out_of_range")
	require.Empty(t, warningCodes(t, fields.Result{fields.Age: "120"}))
}

func TestGenderRule(t *testing.T) {
	require.Empty(t, warningCodes(t, fields.Result{fields.Gender: "female"}))
	require.Empty(t, warningCodes(t, fields.Result{fields.Gender: "M"}))
	require.Contains(t, warningCodes(t, fields.Result{fields.Gender: "Fenale"}), "gender_unrecognized")
}

func TestAddressRule(t *testing.T) {
	require.Contains(t, warningCodes(t, fields.Result{fields.Address: "12"}), "address_too_short")
	require.Empty(t, warningCodes(t, fields.Result{fields.Address: "12 MG Road"}))
}

func TestEmailRule(t *testing.T) {
	require.Contains(t, warningCodes(t, fields.Result{fields.Email: "not-an-email"}), "email_malformed")
	require.Empty(t, warningCodes(t, fields.Result{fields.Email: "a@b.co"}))
}

func TestPhoneRule(t *testing.T) {
	require.Contains(t, warningCodes(t, fields.Result{fields.Phone: "12345"}), "phone_length")
	require.Contains(t, warningCodes(t, fields.Result{fields.Phone: "1234567890123456"}), "phone_length")
	require.Empty(t, warningCodes(t, fields.Result{fields.Phone: "9876543210"}))
}

func TestMultipleWarningsAccumulate(t *testing.T) {
	got := warningCodes(t, fields.Result{
		fields.Name:  "7",
		fields.Age:   "999",
		fields.Phone: "123",
	})
	require.Len(t, got, 4) // name_too_short, name_no_letters, age_out_of_range, phone_length
}
