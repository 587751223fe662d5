package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Document is one processed scan: the raw OCR text, the field extraction,
// and the latest verification outcome against it.
type Document struct {
	ID               uuid.UUID  `json:"id"`
	Filename         string     `json:"filename"`
	Mode             string     `json:"mode"`
	RawText          string     `json:"raw_text"`
	ExtractionJSON   string     `json:"extraction_json"`
	VerificationJSON string     `json:"verification_json,omitempty"`
	Status           string     `json:"status"`
	MatchScore       int        `json:"match_score"`
	ImageURL         string     `json:"image_url"`
	SessionToken     string     `json:"session_token,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// Document status values. "pending" until a verification has been run.
const (
	StatusPending     = "pending"
	StatusVerified    = "verified"
	StatusNeedsReview = "needs-review"
)

func SaveDocument(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO documents (
			filename, mode, raw_text, extraction_json,
			status, match_score, image_url, session_token
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := Pool.QueryRow(ctx, query,
		doc.Filename, doc.Mode, doc.RawText, doc.ExtractionJSON,
		doc.Status, doc.MatchScore, doc.ImageURL, doc.SessionToken,
	).Scan(&doc.ID, &doc.CreatedAt)

	return err
}

func GetDocuments(ctx context.Context, limit int) ([]Document, error) {
	query := `
		SELECT id, COALESCE(filename, ''), COALESCE(mode, ''),
		       COALESCE(status, ''), COALESCE(match_score, 0),
		       COALESCE(image_url, ''), created_at
		FROM documents
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		err := rows.Scan(
			&d.ID, &d.Filename, &d.Mode,
			&d.Status, &d.MatchScore, &d.ImageURL, &d.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}

	return docs, nil
}

// GetDocumentByID retrieves a single document by ID
func GetDocumentByID(ctx context.Context, documentID string) (*Document, error) {
	query := `
		SELECT id, COALESCE(filename, ''), COALESCE(mode, ''), COALESCE(raw_text, ''),
		       COALESCE(extraction_json::text, ''), COALESCE(verification_json::text, ''),
		       COALESCE(status, ''), COALESCE(match_score, 0), COALESCE(image_url, ''),
		       COALESCE(session_token, ''), created_at, updated_at
		FROM documents
		WHERE id = $1
	`

	var d Document
	err := Pool.QueryRow(ctx, query, documentID).Scan(
		&d.ID, &d.Filename, &d.Mode, &d.RawText,
		&d.ExtractionJSON, &d.VerificationJSON,
		&d.Status, &d.MatchScore, &d.ImageURL,
		&d.SessionToken, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateVerification stores the latest verification outcome for a document.
func UpdateVerification(ctx context.Context, documentID string, verificationJSON string, status string, matchScore int) error {
	query := `
		UPDATE documents
		SET verification_json = $1, status = $2, match_score = $3, updated_at = $4
		WHERE id = $5
	`
	_, err := Pool.Exec(ctx, query, verificationJSON, status, matchScore, time.Now(), documentID)
	return err
}

// UpdateExtraction replaces a document's extraction after a reprocess.
func UpdateExtraction(ctx context.Context, documentID string, extractionJSON string) error {
	query := `
		UPDATE documents
		SET extraction_json = $1, status = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := Pool.Exec(ctx, query, extractionJSON, StatusPending, time.Now(), documentID)
	return err
}

// DeleteDocument removes a document
func DeleteDocument(ctx context.Context, documentID string) error {
	_, err := Pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", documentID)
	return err
}

// Stats represents processing statistics for the current month
type Stats struct {
	Month          string  `json:"month"`
	TotalDocuments int     `json:"total_documents"`
	Verified       int     `json:"verified"`
	NeedsReview    int     `json:"needs_review"`
	Pending        int     `json:"pending"`
	AvgMatchScore  float64 `json:"avg_match_score"`
}

// GetMonthlyStats returns statistics for the current month
func GetMonthlyStats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) as total_documents,
			COUNT(*) FILTER (WHERE status = 'verified') as verified,
			COUNT(*) FILTER (WHERE status = 'needs-review') as needs_review,
			COUNT(*) FILTER (WHERE status = 'pending') as pending,
			COALESCE(AVG(match_score) FILTER (WHERE status <> 'pending'), 0) as avg_match_score
		FROM documents
		WHERE DATE_TRUNC('month', created_at) = DATE_TRUNC('month', CURRENT_DATE)
	`

	stats := &Stats{
		Month: time.Now().Format("2006-01"),
	}

	err := Pool.QueryRow(ctx, query).Scan(
		&stats.TotalDocuments,
		&stats.Verified,
		&stats.NeedsReview,
		&stats.Pending,
		&stats.AvgMatchScore,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
