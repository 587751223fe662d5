package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider transcribes images through Google's Gemini API.
type GeminiProvider struct {
	apiKey string
	model  string
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiProvider{
		apiKey: apiKey,
		model:  model,
	}
}

// Transcribe implements Provider.
func (p *GeminiProvider) Transcribe(prompt string, imageBase64 string) (string, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return "", fmt.Errorf("missing Gemini API key")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to init Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)

	parts := []genai.Part{genai.Text(prompt)}
	if imageBase64 != "" {
		format, data, err := decodeDataURL(imageBase64)
		if err != nil {
			return "", err
		}
		parts = append(parts, genai.ImageData(format, data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return sb.String(), nil
}

// decodeDataURL splits a "data:image/jpeg;base64,..." payload into the
// image format and its decoded bytes.
func decodeDataURL(dataURL string) (string, []byte, error) {
	format := "jpeg"
	payload := dataURL
	if idx := strings.Index(dataURL, ","); idx >= 0 {
		header := dataURL[:idx]
		payload = dataURL[idx+1:]
		if strings.Contains(header, "image/png") {
			format = "png"
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	return format, data, nil
}
