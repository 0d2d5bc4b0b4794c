package extract

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

// Elements that never carry document content
const htmlNoiseSelector = "script, style, noscript, svg, nav, header, footer, iframe, form"

// extractHTML strips page chrome and converts the remaining body to markdown
func extractHTML(data []byte) (*interfaces.ExtractedText, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML: %v", common.ErrInvalidRequest, err)
	}

	doc.Find(htmlNoiseSelector).Remove()

	body := doc.Find("body").First()
	if body.Length() == 0 {
		body = doc.Selection
	}

	html, err := body.Html()
	if err != nil {
		return unpaged(body.Text()), nil
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil || strings.TrimSpace(markdown) == "" {
		// Fall back to the raw text nodes
		return unpaged(body.Text()), nil
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" && !strings.Contains(markdown, title) {
		markdown = title + "\n\n" + markdown
	}

	return unpaged(markdown), nil
}
