package ocr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPDF(t *testing.T) {
	require.True(t, isPDF([]byte("%PDF-1.4\n...")))
	require.False(t, isPDF([]byte{0xFF, 0xD8, 0xFF, 0xE0})) // jpeg magic
	require.False(t, isPDF([]byte("plain text")))
	require.False(t, isPDF(nil))
}

func TestUnreadablePDFIsAnError(t *testing.T) {
	// PDF bytes never fall back to the raw input: with no usable page
	// image, downstream OCR would fail anyway, so conversion failure must
	// surface. A truncated PDF cannot be rasterized regardless of which
	// ImageMagick (if any) is installed.
	p := NewPreprocessor("printed")
	_, err := p.PreprocessImageFromBytes([]byte("%PDF-1.4 truncated"))
	require.Error(t, err)
}

func TestUnreadableImageFallsBackToOriginal(t *testing.T) {
	// Non-PDF input keeps the permissive behavior: if enhancement fails,
	// OCR still gets the original bytes.
	original := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}
	p := NewPreprocessor("printed")
	out, err := p.PreprocessImageFromBytes(original)
	require.NoError(t, err)
	require.Equal(t, original, out)
}

func TestPipelineArgsPerMode(t *testing.T) {
	printed := NewPreprocessor("printed").pipelineArgs()
	handwritten := NewPreprocessor("handwritten").pipelineArgs()

	require.Contains(t, printed, "-contrast-stretch")
	require.NotContains(t, handwritten, "-contrast-stretch")
	require.Contains(t, handwritten, "2500x2500>")
}
