package fields

import "testing"

const sampleDocument = `Government Registration Form
Name: Kanchan Sharma
Age : 30
Gender Female
Address: 12 MG Road, Pune
Email : kanchan @ example.com
Phone 98-76 543 210`

func TestExtractSampleDocument(t *testing.T) {
	res := Extract(sampleDocument)

	want := map[FieldName]string{
		Name:    "Kanchan Sharma",
		Age:     "30",
		Gender:  "Female",
		Address: "12 MG Road, Pune",
		Email:   "kanchan@example.com",
		Phone:   "9876543210",
	}
	for f, expected := range want {
		if res[f] != expected {
			t.Errorf("%s: got %q, want %q", f, res[f], expected)
		}
	}
}

func TestExtractLabelColonForm(t *testing.T) {
	res := Extract("some noise\nName: Alice\nmore noise")
	if res[Name] != "Alice" {
		t.Errorf("name: got %q, want %q", res[Name], "Alice")
	}
}

func TestExtractPhoneDigitsOnly(t *testing.T) {
	res := Extract("Phone 98-76 543 210")
	if res[Phone] != "9876543210" {
		t.Errorf("phone: got %q, want %q", res[Phone], "9876543210")
	}
}

func TestExtractEmailSpacesRemoved(t *testing.T) {
	res := Extract("Email : alice @ example.com")
	if res[Email] != "alice@example.com" {
		t.Errorf("email: got %q, want %q", res[Email], "alice@example.com")
	}
}

func TestExtractEmptyInput(t *testing.T) {
	res := Extract("")
	if len(res) != len(AllFields) {
		t.Fatalf("expected %d fields, got %d", len(AllFields), len(res))
	}
	for f, v := range res {
		if v != "" {
			t.Errorf("%s: expected empty, got %q", f, v)
		}
	}
}

func TestExtractCaseInsensitive(t *testing.T) {
	res := Extract("NAME: alice\nemail: A@B.COM")
	if res[Name] != "alice" {
		t.Errorf("name: got %q", res[Name])
	}
	if res[Email] != "A@B.COM" {
		t.Errorf("email: got %q", res[Email])
	}
}

func TestExtractSynonymTypos(t *testing.T) {
	res := Extract("Nane: Ravi\nAgc: 42\nAdress: Delhi")
	if res[Name] != "Ravi" {
		t.Errorf("name via typo synonym: got %q", res[Name])
	}
	if res[Age] != "42" {
		t.Errorf("age via typo synonym: got %q", res[Age])
	}
	if res[Address] != "Delhi" {
		t.Errorf("address via typo synonym: got %q", res[Address])
	}
}

func TestExtractFirstMatchWins(t *testing.T) {
	res := Extract("Name: Bob\nFull Name: Robert Brown")
	if res[Name] != "Bob" {
		t.Errorf("expected first match to win, got %q", res[Name])
	}
}

func TestExtractLooseFallback(t *testing.T) {
	// OCR reads the colon after the label as "'s"; only the loose pattern
	// matches, and the normalizer strips the artifact.
	res := Extract("Name's Kanchan")
	if res[Name] != "Kanchan" {
		t.Errorf("got %q, want %q", res[Name], "Kanchan")
	}
}

func TestExtractNormalizationCollapseIsSilent(t *testing.T) {
	// The phone pattern matches but the capture has no digits; the field is
	// recorded as not found rather than erroring.
	res := Extract("Phone: unreadable")
	if res[Phone] != "" {
		t.Errorf("expected empty phone, got %q", res[Phone])
	}
}

func TestExtractMissingFieldsStayEmpty(t *testing.T) {
	res := Extract("Name: Alice")
	for _, f := range []FieldName{Age, Gender, Address, Email, Phone} {
		if res[f] != "" {
			t.Errorf("%s: expected empty, got %q", f, res[f])
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	a := Extract(sampleDocument)
	b := Extract(sampleDocument)
	for _, f := range AllFields {
		if a[f] != b[f] {
			t.Errorf("%s: %q != %q across runs", f, a[f], b[f])
		}
	}
}

func TestExtractDoesNotMatchInsideWords(t *testing.T) {
	res := Extract("message received\nusername: bob\npostage due")
	if res[Age] != "" {
		t.Errorf("age matched inside an unrelated word: %q", res[Age])
	}
	if res[Name] != "" {
		t.Errorf("name matched inside an unrelated word: %q", res[Name])
	}
}
