package fields

import (
	"regexp"
	"strings"
)

// Result maps every canonical field to its extracted value. An empty string
// means the field was not found; a Result always carries all six keys.
type Result map[FieldName]string

// NewResult returns a Result with every field present and empty.
func NewResult() Result {
	r := make(Result, len(AllFields))
	for _, f := range AllFields {
		r[f] = ""
	}
	return r
}

// Clone returns an independent copy of the result.
func (r Result) Clone() Result {
	out := make(Result, len(r))
	for f, v := range r {
		out[f] = v
	}
	return out
}

// fieldPatterns holds, per field, the flat ordered list of candidate
// patterns: for each synonym in catalog order, three styles in priority
// order — "label: value", "label value" (no colon, trailing colon segment
// excluded), and a loose fallback that tolerates any run of separators.
var fieldPatterns = compilePatterns()

func compilePatterns() map[FieldName][]*regexp.Regexp {
	out := make(map[FieldName][]*regexp.Regexp, len(AllFields))
	for _, f := range AllFields {
		var patterns []*regexp.Regexp
		for _, syn := range Synonyms(f) {
			q := regexp.QuoteMeta(syn)
			patterns = append(patterns,
				regexp.MustCompile(`(?i)\b`+q+`\s*:[:\s]*(.+)`),
				regexp.MustCompile(`(?i)\b`+q+`\s+([^:\n]+)`),
				regexp.MustCompile(`(?i)\b`+q+`[:\s]*(.+)`),
			)
		}
		out[f] = patterns
	}
	return out
}

// Extract locates and cleans every canonical field inside raw OCR text.
// It is a total function: any input, including the empty string, yields a
// complete Result. A field that no pattern matches, or whose capture
// normalizes to nothing, stays empty; absence is the expected outcome for
// partially legible documents, not an error.
func Extract(rawText string) Result {
	out := NewResult()
	if strings.TrimSpace(rawText) == "" {
		return out
	}
	for _, f := range AllFields {
		out[f] = extractField(f, rawText)
	}
	return out
}

// extractField runs the pattern cascade for one field. The first pattern
// that captures a non-empty remainder wins and the cascade stops, even if
// normalization then collapses the capture to nothing.
func extractField(f FieldName, text string) string {
	for _, re := range fieldPatterns[f] {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if strings.TrimSpace(m[1]) == "" {
			continue
		}
		return Normalize(f, m[1])
	}
	return ""
}
