package ocr

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Preprocessor enhances a scanned image before OCR. Printed documents get
// the full contrast/sharpen pipeline; handwritten ones a gentler variant
// that preserves stroke detail.
type Preprocessor struct {
	mode string
}

// NewPreprocessor creates a preprocessor for the given capture mode.
func NewPreprocessor(mode string) *Preprocessor {
	return &Preprocessor{mode: mode}
}

// PreprocessImage reads and enhances an image file for better OCR reading
func (p *Preprocessor) PreprocessImage(imagePath string) ([]byte, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, err
	}
	return p.PreprocessImageFromBytes(imageData)
}

// PreprocessImageFromBytes applies image enhancement filters
// Uses ImageMagick for: grayscale, contrast, denoise, sharpen
func (p *Preprocessor) PreprocessImageFromBytes(imageData []byte) ([]byte, error) {
	// PDFs are rasterized first; tesseract cannot read raw PDF bytes, so
	// there is no fallback path for them.
	if isPDF(imageData) {
		converted, err := p.convertPDFFirstPage(imageData)
		if err != nil {
			return nil, err
		}
		imageData = converted
	}

	// Create temp files
	tmpDir := os.TempDir()
	inputFile := filepath.Join(tmpDir, fmt.Sprintf("input_%d.jpg", os.Getpid()))
	outputFile := filepath.Join(tmpDir, fmt.Sprintf("output_%d.jpg", os.Getpid()))

	// Write input image
	if err := os.WriteFile(inputFile, imageData, 0644); err != nil {
		return imageData, nil // Fallback to original
	}
	defer os.Remove(inputFile)
	defer os.Remove(outputFile)

	args := append([]string{inputFile}, p.pipelineArgs()...)
	args = append(args, outputFile)

	cmd := magickCommand(args)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// If ImageMagick fails, return original image
		fmt.Printf("[Preprocessor] ImageMagick failed: %v - %s\n", err, stderr.String())
		return imageData, nil
	}

	// Read processed image
	processed, err := os.ReadFile(outputFile)
	if err != nil {
		return imageData, nil // Fallback to original
	}

	fmt.Printf("[Preprocessor] Image enhanced (%s): %d bytes -> %d bytes\n", p.mode, len(imageData), len(processed))
	return processed, nil
}

// isPDF reports whether data carries the PDF magic header.
func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// convertPDFFirstPage rasterizes only the first page of a PDF at 300dpi.
// Later pages are ignored: one scanned form per upload.
func (p *Preprocessor) convertPDFFirstPage(pdfData []byte) ([]byte, error) {
	tmpDir := os.TempDir()
	inputFile := filepath.Join(tmpDir, fmt.Sprintf("input_%d.pdf", os.Getpid()))
	outputFile := filepath.Join(tmpDir, fmt.Sprintf("page_%d.jpg", os.Getpid()))

	if err := os.WriteFile(inputFile, pdfData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write temp pdf: %w", err)
	}
	defer os.Remove(inputFile)
	defer os.Remove(outputFile)

	// -density must precede the input so the page is rendered at 300dpi;
	// the [0] selector keeps ImageMagick from emitting one file per page
	args := []string{"-density", "300", inputFile + "[0]", "-quality", "95", outputFile}
	cmd := magickCommand(args)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdf conversion failed: %w - %s", err, stderr.String())
	}

	converted, err := os.ReadFile(outputFile)
	if err != nil {
		return nil, fmt.Errorf("pdf conversion produced no output: %w", err)
	}

	fmt.Printf("[Preprocessor] PDF first page rasterized: %d bytes -> %d bytes\n", len(pdfData), len(converted))
	return converted, nil
}

// magickCommand prefers 'magick' (ImageMagick 7), falling back to
// 'convert' (ImageMagick 6).
func magickCommand(args []string) *exec.Cmd {
	if _, err := exec.LookPath("magick"); err == nil {
		return exec.Command("magick", args...)
	}
	return exec.Command("convert", args...)
}

// pipelineArgs returns the ImageMagick filter chain for the capture mode.
func (p *Preprocessor) pipelineArgs() []string {
	if p.mode == "handwritten" {
		// Handwriting loses strokes under heavy thresholding: keep the
		// sharpening light and skip the aggressive contrast stretch.
		return []string{
			"-resize", "2500x2500>",
			"-colorspace", "Gray",
			"-normalize",
			"-despeckle",
			"-sharpen", "0x0.5",
			"-quality", "95",
		}
	}

	// Printed text: resize (if too large) -> grayscale -> contrast -> denoise -> sharpen
	return []string{
		"-resize", "2000x2000>",
		"-colorspace", "Gray",
		"-normalize",
		"-contrast-stretch", "2%x1%",
		"-despeckle",
		"-sharpen", "0x1",
		"-unsharp", "0x0.5+0.5+0",
		"-quality", "95",
	}
}

// SaveProcessedImage saves preprocessed image to file (for debugging)
func (p *Preprocessor) SaveProcessedImage(imageBytes []byte, outputPath string) error {
	return os.WriteFile(outputPath, imageBytes, 0644)
}
