package ai

import (
	"fmt"
	"strings"
	"time"
)

// Transcriber turns a document image into raw OCR-style text via an AI
// vision provider. It deliberately asks for a faithful transcription, not
// structured data: field extraction stays in the fields package so the
// same matching rules apply regardless of which engine produced the text.
type Transcriber struct {
	provider Provider
}

// NewTranscriber creates a transcriber backed by the given provider.
func NewTranscriber(provider Provider) *Transcriber {
	return &Transcriber{provider: provider}
}

// Transcribe submits the image and returns the transcribed text plus the
// call duration in seconds.
func (t *Transcriber) Transcribe(imageBase64 string, mode string) (string, float64, error) {
	startTime := time.Now()

	response, err := t.provider.Transcribe(buildPrompt(mode), imageBase64)
	if err != nil {
		return "", 0, fmt.Errorf("AI transcription failed: %w", err)
	}

	duration := time.Since(startTime).Seconds()
	return cleanResponse(response), duration, nil
}

func buildPrompt(mode string) string {
	kind := "a scanned printed form"
	if mode == "handwritten" {
		kind = "a handwritten form"
	}

	return fmt.Sprintf(`You are an OCR engine. The image is %s containing personal data fields such as name, age, gender, address, email and phone.

Transcribe EVERY character you can read, exactly as written:
- Preserve line breaks: one line of the document per line of output.
- Keep labels and values together on their line (e.g. "Name: Kanchan Sharma").
- Do not correct spelling, do not reorder, do not summarize.
- If a character is unreadable, skip it rather than guessing.
- Output plain text only: no markdown, no commentary.`, kind)
}

// cleanResponse strips markdown fences some models wrap plain text in.
func cleanResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	backticks := "```"
	cleaned = strings.TrimPrefix(cleaned, backticks+"text")
	cleaned = strings.TrimPrefix(cleaned, backticks)
	cleaned = strings.TrimSuffix(cleaned, backticks)
	return strings.TrimSpace(cleaned)
}
