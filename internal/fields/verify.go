package fields

import (
	"math"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// ReviewThreshold is the inclusive aggregate score at which a submission
// counts as verified. The HTTP layer uses the same constant to flag
// individual low-confidence fields.
const ReviewThreshold = 80

// Status is the binary outcome of a verification.
type Status string

const (
	StatusVerified    Status = "verified"
	StatusNeedsReview Status = "needs-review"
)

// Submission is the human-edited form data, keyed by canonical field name.
// Missing keys are treated as empty values.
type Submission map[FieldName]string

// VerificationResult carries per-field match scores in [0,100], their
// rounded mean, and the resulting status. Computed fresh on every call,
// never persisted by the engine.
type VerificationResult struct {
	Fields map[FieldName]int `json:"fields"`
	Total  int               `json:"total"`
	Status Status            `json:"status"`
}

var levenshtein = metrics.NewLevenshtein()

// Verify scores a user-submitted form against the original extraction.
// It is total: any pair of mappings yields a complete result.
func Verify(extracted Result, submitted Submission) VerificationResult {
	scores := make(map[FieldName]int, len(AllFields))
	sum := 0
	for _, f := range AllFields {
		s := FieldScore(extracted[f], submitted[f])
		scores[f] = s
		sum += s
	}

	total := int(math.Round(float64(sum) / float64(len(AllFields))))
	status := StatusNeedsReview
	if total >= ReviewThreshold {
		status = StatusVerified
	}

	return VerificationResult{Fields: scores, Total: total, Status: status}
}

// FieldScore compares one extracted value against one submitted value,
// case-insensitively and whitespace-normalized. Identical strings score
// 100, disjoint strings 0, partial overlap proportionally (Levenshtein
// similarity, which is symmetric and deterministic). When extraction found
// nothing there is no prior evidence to contradict the user, so an empty
// submission scores 100 and a non-empty one 50.
func FieldScore(extracted, submitted string) int {
	e := canonical(extracted)
	s := canonical(submitted)

	if e == "" {
		if s == "" {
			return 100
		}
		return 50
	}

	sim := strutil.Similarity(e, s, levenshtein)
	return int(math.Round(sim * 100))
}

func canonical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRun.ReplaceAllString(s, " ")
}
