// -----------------------------------------------------------------------
// PDF text extraction
// pdfcpu validates the file and reports page count and encryption;
// ledongthuc/pdf reads the plain text of each page
// -----------------------------------------------------------------------

package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

func extractPDF(ctx context.Context, data []byte) (*interfaces.ExtractedText, error) {
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read PDF: %v", common.ErrInvalidRequest, err)
	}
	if pdfCtx.Encrypt != nil {
		return nil, fmt.Errorf("%w: encrypted PDFs are not supported", common.ErrInvalidRequest)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PDF: %v", common.ErrInvalidRequest, err)
	}

	pageCount := reader.NumPage()
	if pdfCtx.PageCount > 0 && pdfCtx.PageCount != pageCount {
		pageCount = min(pageCount, pdfCtx.PageCount)
	}

	result := &interfaces.ExtractedText{
		Paged: true,
		Pages: make([]interfaces.ExtractedPage, 0, pageCount),
	}

	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}

		result.Pages = append(result.Pages, interfaces.ExtractedPage{
			Number: i,
			Text:   strings.TrimSpace(text),
		})
	}

	return result, nil
}
