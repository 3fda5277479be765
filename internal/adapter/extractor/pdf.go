package extractor

import (
	"path/filepath"
	"strings"

	"smartquiz/internal/domain"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts plain text from paginated PDF documents.
// Per-page text is concatenated with a blank-line separator.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract implements domain.SourceExtractor. It fails with a
// CodeExtraction error when the file cannot be parsed or yields no
// non-whitespace text.
func (e *PDFExtractor) Extract(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", domain.NewExtractionError("failed to read PDF", err).WithContext("path", path)
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	joined := strings.Join(pages, "\n\n")
	if strings.TrimSpace(joined) == "" {
		return "", domain.NewExtractionError("document produced no extractable text", nil).WithContext("path", path)
	}
	return joined, nil
}

// IsSourceDocument reports whether the file name looks like a document
// this extractor can consume.
func IsSourceDocument(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

var _ domain.SourceExtractor = (*PDFExtractor)(nil)
