package models

import (
	"encoding/json"
	"time"
)

// OCR capture modes supported by the engines. Handwritten documents get a
// gentler preprocessing pipeline than printed ones.
const (
	ModeHandwritten = "handwritten"
	ModePrinted     = "printed"
)

// ValidMode reports whether mode names a supported OCR capture mode.
func ValidMode(mode string) bool {
	return mode == ModeHandwritten || mode == ModePrinted
}

// ExtractResponse is the payload returned by the extract endpoints.
type ExtractResponse struct {
	Success      bool              `json:"success"`
	SessionToken string            `json:"session_token,omitempty"`
	Filename     string            `json:"filename,omitempty"`
	Mode         string            `json:"mode,omitempty"`
	Text         string            `json:"text,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	Warnings     []FieldWarning    `json:"warnings,omitempty"`
	Error        string            `json:"error,omitempty"`

	// Processing metadata
	OCRDuration   float64 `json:"ocrDuration,omitempty"`
	TotalDuration float64 `json:"totalDuration,omitempty"`
}

// FieldWarning flags a single extracted value that fails a sanity rule.
type FieldWarning struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// VerifyRequest is the payload accepted by the verify endpoint. The caller
// supplies the edited form values plus either a session token (the stored
// extraction becomes the comparison baseline) or an explicit baseline for
// stateless use.
type VerifyRequest struct {
	SessionToken string            `json:"session_token,omitempty"`
	DocumentID   string            `json:"document_id,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	FormData     map[string]string `json:"form_data,omitempty"` // legacy alias for Fields
	Extracted    map[string]string `json:"extracted,omitempty"`
	OCRText      string            `json:"ocr_text,omitempty"`
}

// VerifyResponse is the payload returned by the verify endpoint.
type VerifyResponse struct {
	Success       bool           `json:"success"`
	Fields        map[string]int `json:"fields,omitempty"`
	Total         int            `json:"total"`
	Status        string         `json:"status,omitempty"`
	LowConfidence []string       `json:"low_confidence,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// DocumentRecord is a processed document as returned by the history API.
type DocumentRecord struct {
	ID           string            `json:"id"`
	Filename     string            `json:"filename"`
	Mode         string            `json:"mode"`
	RawText      string            `json:"raw_text,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	Status       string            `json:"status"`
	MatchScore   int               `json:"match_score"`
	Verification json.RawMessage   `json:"verification,omitempty"`
	ImageURL     string            `json:"image_url,omitempty"`
	SessionToken string            `json:"session_token,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    *time.Time        `json:"updated_at,omitempty"`
}

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// OCR config
	OCR OCRConfig `yaml:"ocr"`

	// AI config
	AI AIConfig `yaml:"ai"`
}

// OCRConfig represents OCR-specific configuration
type OCRConfig struct {
	Engine      string `yaml:"engine"`       // "tesseract" or "vision"
	Language    string `yaml:"language"`     // OCR language (default: "eng")
	DefaultMode string `yaml:"default_mode"` // "handwritten" or "printed"
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	// OpenAI
	OpenAI OpenAIConfig `yaml:"openai"`

	// Gemini
	Gemini GeminiConfig `yaml:"gemini"`

	// Ollama (local)
	Ollama OllamaConfig `yaml:"ollama"`

	// Default provider
	DefaultProvider string `yaml:"default_provider"` // "openai", "gemini", "ollama"
}

// OpenAIConfig for OpenAI/Azure OpenAI
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"` // For custom endpoints
	Model   string `yaml:"model"`              // Default: "gpt-4o"
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}

// OllamaConfig for local Ollama
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"` // Default: "http://localhost:11434"
	Model   string `yaml:"model"`    // e.g., "llava", "moondream"
}
