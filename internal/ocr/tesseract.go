package ocr

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// TesseractOCR runs the tesseract binary over a preprocessed image.
type TesseractOCR struct {
	language string
	mode     string
}

// NewTesseractOCR creates a new Tesseract OCR instance
func NewTesseractOCR(language, mode string) *TesseractOCR {
	if language == "" {
		language = "eng" // Default to English
	}
	return &TesseractOCR{
		language: language,
		mode:     mode,
	}
}

// Available reports whether the tesseract binary can be executed.
func Available() bool {
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// ExtractText performs OCR on preprocessed image bytes and returns the raw
// text plus the OCR duration in seconds.
func (t *TesseractOCR) ExtractText(imageBytes []byte) (string, float64, error) {
	startTime := time.Now()

	tmpDir := os.TempDir()
	inputFile := filepath.Join(tmpDir, fmt.Sprintf("ocr_%d.jpg", os.Getpid()))
	if err := os.WriteFile(inputFile, imageBytes, 0644); err != nil {
		return "", 0, fmt.Errorf("failed to write temp image: %w", err)
	}
	defer os.Remove(inputFile)

	// Handwritten scans read better as a single uniform block; printed
	// forms tolerate full automatic page segmentation.
	psm := "3"
	if t.mode == "handwritten" {
		psm = "6"
	}

	args := []string{
		inputFile,
		"stdout",
		"-l", t.language,
		"--oem", "1",
		"--psm", psm,
	}

	cmd := exec.Command("tesseract", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", time.Since(startTime).Seconds(),
			fmt.Errorf("tesseract failed: %w - %s", err, stderr.String())
	}

	text := strings.TrimSpace(stdout.String())
	return text, time.Since(startTime).Seconds(), nil
}
