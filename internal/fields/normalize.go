package fields

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonDigit      = regexp.MustCompile(`[^0-9]`)
	// OCR often reads a colon after a handwritten label as "'s", which then
	// leaks into the captured value ("'s Kanchan"). No legitimate value in
	// this domain starts with that token, so stripping it is safe.
	leadingApostropheS = regexp.MustCompile(`^'s\s+`)
)

// Normalize cleans a raw regex capture into a usable field value. It applies
// a generic pass shared by every field, then a field-specific pass. An empty
// return means the capture held no usable value.
func Normalize(field FieldName, rawCapture string) string {
	v := strings.TrimSpace(rawCapture)
	v = whitespaceRun.ReplaceAllString(v, " ")
	v = strings.TrimSuffix(v, " .")
	v = strings.TrimPrefix(v, ".")
	// Pipe is a frequent OCR confusion for the digit one.
	v = strings.ReplaceAll(v, "|", "1")
	v = strings.TrimSpace(v)

	switch field {
	case Name:
		v = leadingApostropheS.ReplaceAllString(v, "")
	case Phone:
		v = nonDigit.ReplaceAllString(v, "")
	case Email:
		// OCR inserts spurious spaces inside addresses ("alice @ example.com").
		v = strings.ReplaceAll(v, " ", "")
	}

	return strings.TrimSpace(v)
}
