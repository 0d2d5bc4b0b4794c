package extract

import (
	"strings"

	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

func extractPlainText(data []byte) (*interfaces.ExtractedText, error) {
	text := strings.ToValidUTF8(string(data), "")
	return unpaged(text), nil
}

// extractMarkdown renders the markdown AST to plain text, dropping markup
func extractMarkdown(data []byte) (*interfaces.ExtractedText, error) {
	source := []byte(strings.ToValidUTF8(string(data), ""))
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var b strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString(" ")
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				segment := lines.At(i)
				b.Write(segment.Value(source))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return unpaged(b.String()), nil
}

func unpaged(text string) *interfaces.ExtractedText {
	return &interfaces.ExtractedText{
		Pages: []interfaces.ExtractedPage{{Number: 0, Text: strings.TrimSpace(text)}},
	}
}
