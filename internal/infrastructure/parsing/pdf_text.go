package parsing

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// PDFTextExtractor pulls plain text out of PDF documents page by page.
// Page breaks are preserved as form feeds so downstream extraction can
// attribute clauses to pages.
type PDFTextExtractor struct {
	logger *zap.Logger
}

// NewPDFTextExtractor creates a new PDF text extractor
func NewPDFTextExtractor(logger *zap.Logger) *PDFTextExtractor {
	return &PDFTextExtractor{logger: logger}
}

// ExtractText returns the document's text content
func (e *PDFTextExtractor) ExtractText(content []byte) (string, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", page+1, err)
		}
		if page > 0 {
			sb.WriteString("\f")
		}
		sb.WriteString(text)
	}

	e.logger.Debug("Extracted document text",
		zap.Int("pages", doc.NumPage()),
		zap.Int("chars", sb.Len()))
	return sb.String(), nil
}
