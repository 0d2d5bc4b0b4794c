package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

// Supported MIME types
const (
	MimeTypePlainText = "text/plain"
	MimeTypeMarkdown  = "text/markdown"
	MimeTypeHTML      = "text/html"
	MimeTypePDF       = "application/pdf"
	MimeTypeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Service routes uploads to a format-specific extractor by sniffed MIME
// type, falling back to the file extension
type Service struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.TextExtractor = (*Service)(nil)

// NewService creates a new extraction service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Extract returns the plain text of data. PDFs are returned per page.
func (s *Service) Extract(ctx context.Context, fileName string, data []byte) (*interfaces.ExtractedText, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file %q is empty", common.ErrInvalidRequest, fileName)
	}

	mimeType := DetectMimeType(fileName, data)

	s.logger.Debug().
		Str("file_name", fileName).
		Str("mime_type", mimeType).
		Int("size", len(data)).
		Msg("Extracting text")

	var (
		result *interfaces.ExtractedText
		err    error
	)

	switch mimeType {
	case MimeTypePDF:
		result, err = extractPDF(ctx, data)
	case MimeTypeDOCX:
		result, err = extractDOCX(data)
	case MimeTypeHTML:
		result, err = extractHTML(data)
	case MimeTypeMarkdown:
		result, err = extractMarkdown(data)
	case MimeTypePlainText:
		result, err = extractPlainText(data)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %s", common.ErrInvalidRequest, mimeType)
	}
	if err != nil {
		return nil, err
	}

	result.MimeType = mimeType

	total := 0
	for _, page := range result.Pages {
		total += len(page.Text)
	}

	s.logger.Debug().
		Str("file_name", fileName).
		Int("pages", len(result.Pages)).
		Int("text_length", total).
		Msg("Text extracted")

	return result, nil
}

// DetectMimeType sniffs data and refines the result with the file
// extension for formats that sniff as their container (zip, text)
func DetectMimeType(fileName string, data []byte) string {
	detected := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(fileName))

	switch {
	case detected.Is(MimeTypePDF):
		return MimeTypePDF
	case detected.Is(MimeTypeDOCX):
		return MimeTypeDOCX
	case detected.Is("application/zip") && ext == ".docx":
		return MimeTypeDOCX
	case detected.Is(MimeTypeHTML):
		return MimeTypeHTML
	}

	if strings.HasPrefix(detected.String(), "text/") {
		switch ext {
		case ".md", ".markdown":
			return MimeTypeMarkdown
		case ".html", ".htm":
			return MimeTypeHTML
		}
		return MimeTypePlainText
	}

	return detected.String()
}
