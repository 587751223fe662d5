package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/formscan/document-ocr-service/internal/ai"
	"github.com/formscan/document-ocr-service/internal/db"
	"github.com/formscan/document-ocr-service/internal/fields"
	"github.com/formscan/document-ocr-service/internal/models"
	"github.com/formscan/document-ocr-service/internal/ocr"
	"github.com/formscan/document-ocr-service/internal/services"
	"github.com/formscan/document-ocr-service/internal/storage"
)

const (
	MaxUploadSize = 16 * 1024 * 1024 // 16MB
	Version       = "1.2.0"
)

// Handler handles HTTP requests for document processing
type Handler struct {
	config   *models.Config
	sessions *fields.SessionStore
	rules    *services.FieldRules
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config) *Handler {
	return &Handler{
		config:   config,
		sessions: fields.NewSessionStore(),
		rules:    services.NewFieldRules(),
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Core extraction/verification surface
	router.HandleFunc("/extract", h.ExtractDocument).Methods("POST")
	router.HandleFunc("/verify", h.VerifyFields).Methods("POST")
	router.HandleFunc("/reset", h.ResetSession).Methods("POST")
	router.HandleFunc("/api/ocr/process-base64", h.ProcessBase64).Methods("POST")

	// Document history
	router.HandleFunc("/api/documents", h.GetDocuments).Methods("GET")
	router.HandleFunc("/api/documents/{id}", h.GetDocument).Methods("GET")
	router.HandleFunc("/api/documents/{id}", h.DeleteDocument).Methods("DELETE")
	router.HandleFunc("/api/documents/{id}/image", h.GetDocumentImage).Methods("GET")
	router.HandleFunc("/api/documents/{id}/reprocess", h.ReprocessDocument).Methods("POST")

	// Statistics
	router.HandleFunc("/api/stats", h.GetStats).Methods("GET")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	Timestamp   string            `json:"timestamp"`
	Uptime      string            `json:"uptime"`
	Memory      MemoryStats       `json:"memory"`
	Tesseract   ServiceStatus     `json:"tesseract"`
	ImageMagick ServiceStatus     `json:"imageMagick"`
	Database    ServiceStatus     `json:"database"`
	Storage     ServiceStatus     `json:"storage"`
	AI          map[string]string `json:"ai"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint - enhanced for monitoring
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Memory statistics
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// Check services
	tesseractStatus := h.checkTesseract()
	imageMagickStatus := h.checkImageMagick()
	databaseStatus := h.checkDatabase()
	storageStatus := h.checkStorage()

	// Build response
	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Tesseract:   tesseractStatus,
		ImageMagick: imageMagickStatus,
		Database:    databaseStatus,
		Storage:     storageStatus,
		AI: map[string]string{
			"defaultProvider": h.config.AI.DefaultProvider,
			"ocrEngine":       h.config.OCR.Engine,
		},
	}

	// Extraction and verification themselves are pure text transforms; the
	// service is only degraded when it cannot read any image at all.
	if !tesseractStatus.Available && h.config.OCR.Engine == "tesseract" {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkTesseract verifies Tesseract OCR is available
func (h *Handler) checkTesseract() ServiceStatus {
	cmd := exec.Command("tesseract", "--version")
	output, err := cmd.CombinedOutput()

	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     "tesseract not found or not executable",
		}
	}

	version := "unknown"
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}

	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkImageMagick verifies ImageMagick is available
func (h *Handler) checkImageMagick() ServiceStatus {
	cmd := exec.Command("convert", "-version")
	output, err := cmd.CombinedOutput()

	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     "imagemagick not found or not executable",
		}
	}

	version := "unknown"
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}

	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkDatabase verifies PostgreSQL connection
func (h *Handler) checkDatabase() ServiceStatus {
	if db.Pool == nil {
		return ServiceStatus{
			Available: false,
			Error:     "database pool not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "PostgreSQL via PgBouncer",
	}
}

// checkStorage verifies MinIO connection
func (h *Handler) checkStorage() ServiceStatus {
	if storage.Client == nil {
		return ServiceStatus{
			Available: false,
			Error:     "storage client not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// allowedExtensions matches the upload whitelist of the form frontend.
var allowedExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "bmp": true, "tiff": true, "pdf": true,
}

func allowedFile(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[idx+1:])]
}

// extractTextRequest is the JSON body accepted by /extract when the caller
// already has raw OCR text and only wants the field engine.
type extractTextRequest struct {
	Text         string `json:"text"`
	SessionToken string `json:"session_token,omitempty"`
}

// ExtractDocument handles document upload, OCR and field extraction.
// Accepts multipart/form-data with a file, or application/json with
// pre-extracted raw text.
func (h *Handler) ExtractDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	startTime := time.Now()

	// JSON mode: raw text in, fields out, no OCR involved
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req extractTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.sendError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		h.respondExtraction(w, req.Text, req.SessionToken, "", "", "", 0, startTime)
		return
	}

	// Parse multipart form
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	// Get file - accept both "file" and "image" field names
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("image")
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "No file provided (use 'file' or 'image' field)")
			return
		}
	}
	defer file.Close()

	if !allowedFile(header.Filename) {
		h.sendError(w, http.StatusBadRequest, "Invalid file type. Allowed: png, jpg, jpeg, bmp, tiff, pdf")
		return
	}

	mode := r.FormValue("mode")
	if mode == "" {
		mode = h.config.OCR.DefaultMode
	}
	if !models.ValidMode(mode) {
		h.sendError(w, http.StatusBadRequest, `Invalid mode. Use "handwritten" or "printed"`)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	rawText, ocrDuration, err := h.runOCR(imageData, mode, r.FormValue("aiProvider"), r.FormValue("language"))
	if err != nil {
		json.NewEncoder(w).Encode(models.ExtractResponse{
			Success:       false,
			Error:         err.Error(),
			TotalDuration: time.Since(startTime).Seconds(),
		})
		return
	}

	// Store the scan (best effort, storage is optional)
	imageURL := ""
	if storage.Client != nil {
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/jpeg"
		}
		filename := fmt.Sprintf("%s_%s%s",
			time.Now().Format("20060102_150405"),
			uuid.New().String()[:8],
			storage.GetFileExtension(contentType),
		)
		imageURL, err = storage.UploadScan(r.Context(), filename, bytes.NewReader(imageData), int64(len(imageData)), contentType)
		if err != nil {
			fmt.Printf("Warning: failed to upload scan to MinIO: %v\n", err)
			imageURL = ""
		}
	}

	h.respondExtraction(w, rawText, r.FormValue("session_token"), header.Filename, mode, imageURL, ocrDuration, startTime)
}

// respondExtraction runs the field engine over rawText inside the named
// session (minting a token when absent), persists the record when a
// database is configured, and writes the response.
func (h *Handler) respondExtraction(w http.ResponseWriter, rawText, token, filename, mode, imageURL string, ocrDuration float64, startTime time.Time) {
	if token == "" {
		token = uuid.New().String()
	}

	session := h.sessions.Get(token)
	extraction := session.Extract(rawText)
	warnings := h.rules.Check(extraction)

	if db.Pool != nil {
		extractionJSON, _ := json.Marshal(resultToMap(extraction))
		doc := &db.Document{
			Filename:       filename,
			Mode:           mode,
			RawText:        rawText,
			ExtractionJSON: string(extractionJSON),
			Status:         db.StatusPending,
			ImageURL:       imageURL,
			SessionToken:   token,
		}
		ctx, cancel := contextWithTimeout()
		defer cancel()
		if err := db.SaveDocument(ctx, doc); err != nil {
			fmt.Printf("Warning: failed to save document to DB: %v\n", err)
		}
	}

	json.NewEncoder(w).Encode(models.ExtractResponse{
		Success:       true,
		SessionToken:  token,
		Filename:      filename,
		Mode:          mode,
		Text:          rawText,
		Fields:        resultToMap(extraction),
		Warnings:      warnings,
		OCRDuration:   ocrDuration,
		TotalDuration: time.Since(startTime).Seconds(),
	})
}

// ProcessBase64 handles JSON payloads carrying a base64 encoded image.
func (h *Handler) ProcessBase64(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	startTime := time.Now()

	var req struct {
		Image        string `json:"image"`
		Mode         string `json:"mode,omitempty"`
		SessionToken string `json:"session_token,omitempty"`
		AIProvider   string `json:"aiProvider,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
		h.sendError(w, http.StatusBadRequest, "No image data provided")
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = h.config.OCR.DefaultMode
	}
	if !models.ValidMode(mode) {
		h.sendError(w, http.StatusBadRequest, `Invalid mode. Use "handwritten" or "printed"`)
		return
	}

	// Remove data URL prefix if present
	payload := req.Image
	if idx := strings.Index(payload, ","); idx >= 0 {
		payload = payload[idx+1:]
	}
	imageData, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid base64 image data")
		return
	}

	rawText, ocrDuration, err := h.runOCR(imageData, mode, req.AIProvider, "")
	if err != nil {
		json.NewEncoder(w).Encode(models.ExtractResponse{
			Success:       false,
			Error:         err.Error(),
			TotalDuration: time.Since(startTime).Seconds(),
		})
		return
	}

	h.respondExtraction(w, rawText, req.SessionToken, "", mode, "", ocrDuration, startTime)
}

// VerifyFields scores user-edited form values against the original
// extraction. The baseline comes from, in order of preference: an explicit
// extraction, raw OCR text (re-extracted), or the session named by token.
func (h *Handler) VerifyFields(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	submitted := req.Fields
	if submitted == nil {
		submitted = req.FormData
	}
	if submitted == nil {
		h.sendError(w, http.StatusBadRequest, "missing fields")
		return
	}

	var extracted fields.Result
	switch {
	case req.Extracted != nil:
		extracted = mapToResult(req.Extracted)
	case req.OCRText != "":
		extracted = fields.Extract(req.OCRText)
	case req.SessionToken != "":
		extracted = h.sessions.Get(req.SessionToken).Extraction()
	default:
		h.sendError(w, http.StatusBadRequest, "missing baseline: provide extracted, ocr_text or session_token")
		return
	}

	result := fields.Verify(extracted, mapToSubmission(submitted))

	var lowConfidence []string
	for _, f := range fields.AllFields {
		if result.Fields[f] < fields.ReviewThreshold {
			lowConfidence = append(lowConfidence, string(f))
		}
	}

	// Persist the outcome when the caller named a stored document
	if req.DocumentID != "" && db.Pool != nil {
		verificationJSON, _ := json.Marshal(result)
		ctx, cancel := contextWithTimeout()
		defer cancel()
		if err := db.UpdateVerification(ctx, req.DocumentID, string(verificationJSON), string(result.Status), result.Total); err != nil {
			fmt.Printf("Warning: failed to persist verification: %v\n", err)
		}
	}

	scores := make(map[string]int, len(result.Fields))
	for f, s := range result.Fields {
		scores[string(f)] = s
	}

	json.NewEncoder(w).Encode(models.VerifyResponse{
		Success:       true,
		Fields:        scores,
		Total:         result.Total,
		Status:        string(result.Status),
		LowConfidence: lowConfidence,
	})
}

// ResetSession clears the session named by token.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		SessionToken string `json:"session_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionToken == "" {
		h.sendError(w, http.StatusBadRequest, "missing session_token")
		return
	}

	h.sessions.Reset(req.SessionToken)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "session cleared",
	})
}

// runOCR turns image bytes into raw text using the configured engine:
// local tesseract (with ImageMagick preprocessing) or an AI vision model.
func (h *Handler) runOCR(imageData []byte, mode, providerName, language string) (string, float64, error) {
	if language == "" {
		language = h.config.OCR.Language
	}

	useVision := h.config.OCR.Engine == "vision" || providerName != "" || !ocr.Available()
	if !useVision {
		preprocessor := ocr.NewPreprocessor(mode)
		processedImage, err := preprocessor.PreprocessImageFromBytes(imageData)
		if err != nil {
			return "", 0, fmt.Errorf("image preprocessing failed: %w", err)
		}
		tesseract := ocr.NewTesseractOCR(language, mode)
		text, duration, err := tesseract.ExtractText(processedImage)
		if err != nil {
			return "", duration, fmt.Errorf("OCR failed: %w", err)
		}
		return text, duration, nil
	}

	if providerName == "" {
		providerName = h.config.AI.DefaultProvider
	}
	provider, err := h.createProvider(providerName)
	if err != nil {
		return "", 0, err
	}

	imageBase64 := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData)
	transcriber := ai.NewTranscriber(provider)
	return transcriber.Transcribe(imageBase64, mode)
}

// createProvider creates the appropriate AI provider
func (h *Handler) createProvider(providerName string) (ai.Provider, error) {
	switch providerName {
	case "openai":
		return ai.NewOpenAIProvider(
			h.config.AI.OpenAI.APIKey,
			h.config.AI.OpenAI.BaseURL,
			h.config.AI.OpenAI.Model,
		), nil

	case "gemini":
		return ai.NewGeminiProvider(
			h.config.AI.Gemini.APIKey,
			h.config.AI.Gemini.Model,
		), nil

	case "ollama":
		return ai.NewOllamaProvider(
			h.config.AI.Ollama.BaseURL,
			h.config.AI.Ollama.Model,
		), nil

	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func resultToMap(r fields.Result) map[string]string {
	out := make(map[string]string, len(r))
	for f, v := range r {
		out[string(f)] = v
	}
	return out
}

func mapToResult(m map[string]string) fields.Result {
	out := fields.NewResult()
	for k, v := range m {
		if fields.IsField(k) {
			out[fields.FieldName(k)] = v
		}
	}
	return out
}

func mapToSubmission(m map[string]string) fields.Submission {
	out := make(fields.Submission, len(m))
	for k, v := range m {
		if fields.IsField(k) {
			out[fields.FieldName(k)] = v
		}
	}
	return out
}
