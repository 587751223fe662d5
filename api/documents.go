package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/formscan/document-ocr-service/internal/auth"
	"github.com/formscan/document-ocr-service/internal/db"
	"github.com/formscan/document-ocr-service/internal/fields"
	"github.com/formscan/document-ocr-service/internal/models"
	"github.com/formscan/document-ocr-service/internal/storage"
)

// GetDocuments returns the processing history, newest first.
func (h *Handler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "document history not available: database not configured")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	docs, err := db.GetDocuments(r.Context(), limit)
	if err != nil {
		fmt.Printf("Error fetching documents: %v\n", err)
		h.sendError(w, http.StatusInternalServerError, "failed to fetch documents")
		return
	}

	records := make([]models.DocumentRecord, 0, len(docs))
	for _, d := range docs {
		rec := models.DocumentRecord{
			ID:         d.ID.String(),
			Filename:   d.Filename,
			Mode:       d.Mode,
			Status:     d.Status,
			MatchScore: d.MatchScore,
			CreatedAt:  d.CreatedAt,
		}
		if d.ImageURL != "" && storage.Client != nil {
			if url, err := storage.GetPresignedURL(r.Context(), d.ImageURL); err == nil {
				rec.ImageURL = url
			}
		}
		records = append(records, rec)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"documents": records,
		"count":     len(records),
	})
}

// GetDocument returns a single document with its extraction and
// verification payloads.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "document history not available: database not configured")
		return
	}

	documentID := mux.Vars(r)["id"]

	doc, err := db.GetDocumentByID(r.Context(), documentID)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "document not found")
		return
	}

	rec := models.DocumentRecord{
		ID:         doc.ID.String(),
		Filename:   doc.Filename,
		Mode:       doc.Mode,
		RawText:    doc.RawText,
		Status:     doc.Status,
		MatchScore: doc.MatchScore,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
	if doc.ExtractionJSON != "" {
		var extracted map[string]string
		if err := json.Unmarshal([]byte(doc.ExtractionJSON), &extracted); err == nil {
			rec.Fields = extracted
		}
	}
	if doc.VerificationJSON != "" {
		rec.Verification = json.RawMessage(doc.VerificationJSON)
	}
	if doc.ImageURL != "" && storage.Client != nil {
		if url, err := storage.GetPresignedURL(r.Context(), doc.ImageURL); err == nil {
			rec.ImageURL = url
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"document": rec,
	})
}

// DeleteDocument removes a document and its stored scan.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "document history not available: database not configured")
		return
	}

	documentID := mux.Vars(r)["id"]

	doc, err := db.GetDocumentByID(r.Context(), documentID)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "document not found")
		return
	}

	// Remove the scan first; an orphaned object is worse than an orphaned row
	if doc.ImageURL != "" && storage.Client != nil {
		if err := storage.DeleteScan(r.Context(), doc.ImageURL); err != nil {
			fmt.Printf("Warning: failed to delete scan %s: %v\n", doc.ImageURL, err)
		}
	}

	if err := db.DeleteDocument(r.Context(), documentID); err != nil {
		fmt.Printf("Error deleting document %s: %v\n", documentID, err)
		h.sendError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	if claims, err := auth.GetClaimsFromContext(r.Context()); err == nil {
		fmt.Printf("Document %s deleted by %s\n", documentID, claims.Email)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "document deleted",
	})
}

// GetDocumentImage streams the stored scan for a document. The image is
// proxied rather than redirected so the bucket never needs to be public.
func (h *Handler) GetDocumentImage(w http.ResponseWriter, r *http.Request) {
	if db.Pool == nil || storage.Client == nil {
		h.sendError(w, http.StatusServiceUnavailable, "document images not available")
		return
	}

	documentID := mux.Vars(r)["id"]

	doc, err := db.GetDocumentByID(r.Context(), documentID)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "document not found")
		return
	}
	if doc.ImageURL == "" {
		h.sendError(w, http.StatusNotFound, "document has no stored image")
		return
	}

	obj, err := storage.GetScan(r.Context(), doc.ImageURL)
	if err != nil {
		fmt.Printf("Error fetching scan %s: %v\n", doc.ImageURL, err)
		h.sendError(w, http.StatusInternalServerError, "failed to fetch image")
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, obj); err != nil {
		fmt.Printf("Error streaming scan %s: %v\n", doc.ImageURL, err)
	}
}

// ReprocessDocument re-runs field extraction over a document's stored raw
// text. Useful after a catalog update without re-scanning the original.
func (h *Handler) ReprocessDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "document history not available: database not configured")
		return
	}

	documentID := mux.Vars(r)["id"]

	doc, err := db.GetDocumentByID(r.Context(), documentID)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "document not found")
		return
	}
	if doc.RawText == "" {
		h.sendError(w, http.StatusUnprocessableEntity, "document has no stored raw text")
		return
	}

	extraction := fields.Extract(doc.RawText)
	extractionJSON, _ := json.Marshal(resultToMap(extraction))

	if claims, err := auth.GetClaimsFromContext(r.Context()); err == nil {
		fmt.Printf("Document %s reprocessed by %s\n", documentID, claims.Email)
	}

	if err := db.UpdateExtraction(r.Context(), documentID, string(extractionJSON)); err != nil {
		fmt.Printf("Error updating extraction for %s: %v\n", documentID, err)
		h.sendError(w, http.StatusInternalServerError, "failed to update document")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"fields":   resultToMap(extraction),
		"warnings": h.rules.Check(extraction),
	})
}

// GetStats returns processing statistics for the current month.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "statistics not available: database not configured")
		return
	}

	stats, err := db.GetMonthlyStats(r.Context())
	if err != nil {
		fmt.Printf("Error fetching stats: %v\n", err)
		h.sendError(w, http.StatusInternalServerError, "failed to fetch statistics")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}
