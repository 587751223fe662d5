package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/formscan/document-ocr-service/internal/models"
)

func testHandler() *Handler {
	return NewHandler(&models.Config{
		Port: 8080,
		Host: "127.0.0.1",
		OCR: models.OCRConfig{
			Engine:      "tesseract",
			Language:    "eng",
			DefaultMode: models.ModePrinted,
		},
		AI: models.AIConfig{DefaultProvider: "openai"},
	})
}

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestExtractFromRawText(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h.ExtractDocument, map[string]string{
		"text": "Name: Kanchan Sharma\nAge: 30\nEmail: kanchan @ example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.SessionToken)
	require.Equal(t, "Kanchan Sharma", resp.Fields["name"])
	require.Equal(t, "30", resp.Fields["age"])
	require.Equal(t, "kanchan@example.com", resp.Fields["email"])
	require.Equal(t, "", resp.Fields["phone"])
}

func TestExtractRejectsBadJSON(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ExtractDocument(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyAgainstExplicitExtraction(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h.VerifyFields, models.VerifyRequest{
		Extracted: map[string]string{
			"name":    "Kanchan Sharma",
			"age":     "30",
			"gender":  "Female",
			"address": "12 MG Road, Pune",
			"email":   "kanchan@example.com",
			"phone":   "9876543210",
		},
		Fields: map[string]string{
			"name":    "Kanchan Sharma",
			"age":     "30",
			"gender":  "Female",
			"address": "12 MG Road, Pune",
			"email":   "kanchan@example.com",
			"phone":   "9876543210",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, 100, resp.Total)
	require.Equal(t, "verified", resp.Status)
	require.Empty(t, resp.LowConfidence)
}

func TestVerifyFromRawOCRText(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h.VerifyFields, models.VerifyRequest{
		OCRText: "Name: Rahul Verma\nPhone: 99999 88888",
		Fields: map[string]string{
			"name":  "Rahul Verma",
			"phone": "9999988888",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 100, resp.Fields["name"])
	require.Equal(t, 100, resp.Fields["phone"])
	// Fields absent from both the scan and the form score 100
	require.Equal(t, 100, resp.Fields["email"])
}

func TestVerifyFlagsLowConfidenceFields(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h.VerifyFields, models.VerifyRequest{
		Extracted: map[string]string{"name": "Kanchan Sharma"},
		Fields: map[string]string{
			"name": "Kanchan Sharma",
			"age":  "30", // no extracted evidence, scores 50
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 50, resp.Fields["age"])
	require.Contains(t, resp.LowConfidence, "age")
	require.NotContains(t, resp.LowConfidence, "name")
}

func TestVerifyAcceptsLegacyFormData(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h.VerifyFields, models.VerifyRequest{
		Extracted: map[string]string{"name": "Asha Patel"},
		FormData:  map[string]string{"name": "Asha Patel"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 100, resp.Fields["name"])
}

func TestVerifyRequiresBaseline(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h.VerifyFields, models.VerifyRequest{
		Fields: map[string]string{"name": "Asha Patel"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyRequiresFields(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h.VerifyFields, models.VerifyRequest{
		OCRText: "Name: Asha Patel",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionRoundTrip(t *testing.T) {
	h := testHandler()

	// Extract into a named session
	rec := postJSON(t, h.ExtractDocument, map[string]string{
		"text":          "Name: Meera Iyer\nAge: 42",
		"session_token": "sess-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Verify against the session state
	rec = postJSON(t, h.VerifyFields, models.VerifyRequest{
		SessionToken: "sess-1",
		Fields:       map[string]string{"name": "Meera Iyer", "age": "42"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 100, resp.Fields["name"])
	require.Equal(t, 100, resp.Fields["age"])

	// Reset drops the evidence: the same form values now score 50
	rec = postJSON(t, h.ResetSession, map[string]string{"session_token": "sess-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, h.VerifyFields, models.VerifyRequest{
		SessionToken: "sess-1",
		Fields:       map[string]string{"name": "Meera Iyer"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 50, resp.Fields["name"])
}

func TestResetRequiresToken(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h.ResetSession, map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessBase64RejectsMissingImage(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h.ProcessBase64, map[string]string{"mode": "printed"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessBase64RejectsInvalidMode(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h.ProcessBase64, map[string]string{
		"image": "aGVsbG8=",
		"mode":  "cursive",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAllowedFile(t *testing.T) {
	require.True(t, allowedFile("scan.png"))
	require.True(t, allowedFile("form.JPG"))
	require.True(t, allowedFile("doc.pdf"))
	require.False(t, allowedFile("script.exe"))
	require.False(t, allowedFile("noextension"))
}

func TestHealthReportsStatus(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, Version, resp.Version)
	require.Contains(t, []string{"healthy", "degraded"}, resp.Status)
	require.NotEmpty(t, resp.Uptime)
}
