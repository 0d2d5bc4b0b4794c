package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const defaultFontSize = 10.0

// Service renders chat transcripts as markdown and PDF
type Service struct {
	fontSize float64
	logger   arbor.ILogger
}

// NewService creates a new export service. A non-positive fontSize uses the default.
func NewService(fontSize float64, logger arbor.ILogger) *Service {
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	return &Service{
		fontSize: fontSize,
		logger:   logger,
	}
}

// ChatToMarkdown renders the chat as a markdown transcript
func (s *Service) ChatToMarkdown(chat *models.Chat) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Chat %s\n\n", chat.ID)
	fmt.Fprintf(&b, "_Started %s, %d turns_\n\n", chat.CreatedAt.UTC().Format(time.RFC1123), len(chat.Turns))

	for _, turn := range chat.Turns {
		speaker := "You"
		if turn.Role == models.TurnRoleAssistant {
			speaker = "Assistant"
		}
		fmt.Fprintf(&b, "---\n\n## %s\n\n", speaker)
		fmt.Fprintf(&b, "_%s_\n\n", turn.Timestamp.UTC().Format("2006-01-02 15:04:05"))
		if turn.AttachmentRef != "" {
			fmt.Fprintf(&b, "Attachment: `%s`\n\n", turn.AttachmentRef)
		}
		b.WriteString(strings.TrimSpace(turn.Content))
		b.WriteString("\n\n")
	}

	return b.String()
}

// ChatToPDF renders the chat transcript as an A4 PDF
func (s *Service) ChatToPDF(ctx context.Context, chat *models.Chat) ([]byte, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	markdown := s.ChatToMarkdown(chat)

	s.logger.Debug().
		Str("chat_id", chat.ID).
		Int("turns", len(chat.Turns)).
		Int("markdown_len", len(markdown)).
		Msg("Rendering chat transcript")

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Chat "+chat.ID, true)
	doc.SetCreator("docqa", true)
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont("Arial", "I", 8)
		doc.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	source := []byte(markdown)
	root := md.Parser().Parse(text.NewReader(source))

	r := newRenderer(doc, source, s.fontSize)
	if err := r.render(root); err != nil {
		s.logger.Error().Err(err).Str("chat_id", chat.ID).Msg("Failed to render transcript")
		return nil, fmt.Errorf("failed to render transcript: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		s.logger.Error().Err(err).Str("chat_id", chat.ID).Msg("Failed to write transcript PDF")
		return nil, fmt.Errorf("failed to write transcript PDF: %w", err)
	}

	s.logger.Info().
		Str("chat_id", chat.ID).
		Int("pdf_size", buf.Len()).
		Int("pages", doc.PageCount()).
		Msg("Chat transcript exported")

	return buf.Bytes(), nil
}
