package interfaces

import (
	"context"
)

// ExtractedPage is the plain text of one page (or the whole file for unpaged formats)
type ExtractedPage struct {
	Number int // 1-based; 0 for unpaged formats
	Text   string
}

// ExtractedText is the result of raw-text extraction
type ExtractedText struct {
	MimeType string
	Paged    bool
	Pages    []ExtractedPage
}

// TextExtractor produces plain text from an uploaded file
type TextExtractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (*ExtractedText, error)
}
