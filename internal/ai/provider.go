package ai

// Provider is a vision-capable model that can transcribe a document image
// to raw text when local OCR is unavailable or the caller requests it.
type Provider interface {
	// Transcribe sends the prompt (and, when non-empty, a base64 data-URL
	// image) to the model and returns its text output.
	Transcribe(prompt string, imageBase64 string) (string, error)
}
