package export

import (
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	fontBody = "Arial"
	fontCode = "Courier"
	lineMM   = 5.0
)

// renderer walks a goldmark AST and draws it with fpdf core fonts.
// Text is translated from UTF-8 to cp1252 for the core fonts.
type renderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	size      float64
	tr        func(string) string
	bold      bool
	italic    bool
	listDepth int
}

func newRenderer(pdf *fpdf.Fpdf, source []byte, size float64) *renderer {
	r := &renderer{
		pdf:    pdf,
		source: source,
		size:   size,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
	r.applyFont()
	return r
}

func (r *renderer) render(root ast.Node) error {
	if err := ast.Walk(root, r.walk); err != nil {
		return err
	}
	return r.pdf.Error()
}

func (r *renderer) applyFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(fontBody, style, r.size)
}

func (r *renderer) write(s string) {
	r.pdf.Write(lineMM, r.tr(s))
}

func (r *renderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		r.heading(node, entering)
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(lineMM)
			if r.listDepth == 0 {
				r.pdf.Ln(2)
			}
		}
	case *ast.TextBlock:
		if !entering {
			r.pdf.Ln(lineMM)
		}
	case *ast.Text:
		if entering {
			r.write(string(node.Segment.Value(r.source)))
			if node.SoftLineBreak() {
				r.write(" ")
			}
			if node.HardLineBreak() {
				r.pdf.Ln(lineMM)
			}
		}
	case *ast.String:
		if entering {
			r.write(string(node.Value))
		}
	case *ast.Emphasis:
		if node.Level >= 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.applyFont()
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont(fontCode, "", r.size)
			r.write(string(node.Text(r.source)))
			r.applyFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock:
		if entering {
			r.codeBlock(node.Lines())
		}
		return ast.WalkSkipChildren, nil
	case *ast.CodeBlock:
		if entering {
			r.codeBlock(node.Lines())
		}
		return ast.WalkSkipChildren, nil
	case *ast.List:
		if entering {
			r.listDepth++
		} else {
			r.listDepth--
			if r.listDepth == 0 {
				r.pdf.Ln(2)
			}
		}
	case *ast.ListItem:
		if entering {
			r.listItem(node)
		}
	case *ast.Blockquote:
		if entering {
			r.pdf.SetTextColor(90, 90, 90)
		} else {
			r.pdf.SetTextColor(0, 0, 0)
		}
	case *ast.ThematicBreak:
		if entering {
			left, _, right, _ := r.pdf.GetMargins()
			width, _ := r.pdf.GetPageSize()
			r.pdf.Ln(1)
			r.pdf.SetDrawColor(180, 180, 180)
			r.pdf.Line(left, r.pdf.GetY(), width-right, r.pdf.GetY())
			r.pdf.SetDrawColor(0, 0, 0)
			r.pdf.Ln(3)
		}
	case *extast.Table:
		if entering {
			r.table(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (r *renderer) heading(n *ast.Heading, entering bool) {
	if !entering {
		r.pdf.Ln(lineMM + 2)
		r.applyFont()
		return
	}
	scale := 1.0
	switch n.Level {
	case 1:
		scale = 1.6
	case 2:
		scale = 1.3
	case 3:
		scale = 1.15
	}
	r.pdf.Ln(2)
	r.pdf.SetFont(fontBody, "B", r.size*scale)
}

func (r *renderer) listItem(n *ast.ListItem) {
	marker := "-"
	if list, ok := n.Parent().(*ast.List); ok && list.IsOrdered() {
		index := list.Start
		for sib := n.PreviousSibling(); sib != nil; sib = sib.PreviousSibling() {
			index++
		}
		marker = strconv.Itoa(index) + "."
	}
	left, _, _, _ := r.pdf.GetMargins()
	r.pdf.SetX(left + float64(r.listDepth)*5)
	r.write(marker + " ")
}

func (r *renderer) codeBlock(lines *text.Segments) {
	r.pdf.Ln(1)
	r.pdf.SetFont(fontCode, "", r.size-1)
	r.pdf.SetFillColor(242, 242, 242)
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		content := strings.TrimRight(string(line.Value(r.source)), "\n")
		r.pdf.MultiCell(0, lineMM-0.5, r.tr(content), "", "L", true)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.applyFont()
	r.pdf.Ln(2)
}

// table draws rows as equal-width bordered cells; the header row is shaded
func (r *renderer) table(n *extast.Table) {
	var rows [][]string
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(string(cell.Text(r.source))))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	left, _, right, _ := r.pdf.GetMargins()
	pageWidth, _ := r.pdf.GetPageSize()
	colWidth := (pageWidth - left - right) / float64(len(rows[0]))

	r.pdf.Ln(1)
	for i, row := range rows {
		header := i == 0
		style := ""
		if header {
			style = "B"
		}
		r.pdf.SetFont(fontBody, style, r.size-1)
		for j := range rows[0] {
			content := ""
			if j < len(row) {
				content = row[j]
			}
			r.pdf.SetFillColor(230, 230, 230)
			r.pdf.CellFormat(colWidth, lineMM+1, r.tr(truncate(r.pdf, content, colWidth-2)), "1", 0, "L", header, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.applyFont()
	r.pdf.Ln(2)
}

func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
