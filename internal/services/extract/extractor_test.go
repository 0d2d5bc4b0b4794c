package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
)

func newTestService() *Service {
	return NewService(arbor.NewLogger())
}

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Cell(40, 10, text)
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     []byte
		expected string
	}{
		{"plain text", "notes.txt", []byte("hello world"), MimeTypePlainText},
		{"markdown by extension", "README.md", []byte("# Title\n\nbody"), MimeTypeMarkdown},
		{"html by content", "page.txt", []byte("<!DOCTYPE html><html><body>x</body></html>"), MimeTypeHTML},
		{"html by extension", "page.htm", []byte("just words"), MimeTypeHTML},
		{"pdf", "paper.bin", []byte("%PDF-1.4\n%binary"), MimeTypePDF},
		{"png", "image.png", []byte("\x89PNG\r\n\x1a\n0000"), "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectMimeType(tt.fileName, tt.data))
		})
	}
}

func TestExtract_PlainText(t *testing.T) {
	result, err := newTestService().Extract(context.Background(), "notes.txt", []byte("  Line one.\nLine two.  "))
	require.NoError(t, err)

	assert.Equal(t, MimeTypePlainText, result.MimeType)
	assert.False(t, result.Paged)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "Line one.\nLine two.", result.Pages[0].Text)
	assert.Equal(t, 0, result.Pages[0].Number)
}

func TestExtract_Markdown(t *testing.T) {
	source := "# Databases\n\nA **DBMS** stores data.\n\n- one\n- two\n\n```\nSELECT 1;\n```\n"
	result, err := newTestService().Extract(context.Background(), "notes.md", []byte(source))
	require.NoError(t, err)

	text := result.Pages[0].Text
	assert.Contains(t, text, "Databases")
	assert.Contains(t, text, "A DBMS stores data.")
	assert.Contains(t, text, "SELECT 1;")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "#")
}

func TestExtract_HTML(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>Guide</title><style>p{color:red}</style></head>
<body><nav>Home | About</nav><h1>Indexes</h1><p>Indexes speed up <b>lookups</b>.</p>
<script>alert("x")</script></body></html>`

	result, err := newTestService().Extract(context.Background(), "guide.html", []byte(page))
	require.NoError(t, err)

	text := result.Pages[0].Text
	assert.Equal(t, MimeTypeHTML, result.MimeType)
	assert.Contains(t, text, "Indexes speed up")
	assert.Contains(t, text, "Guide")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color:red")
	assert.NotContains(t, text, "Home | About")
}

func TestExtract_DOCX(t *testing.T) {
	data := buildDOCX(t, "First paragraph.", "Second paragraph.")

	result, err := newTestService().Extract(context.Background(), "report.docx", data)
	require.NoError(t, err)

	assert.Equal(t, MimeTypeDOCX, result.MimeType)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", result.Pages[0].Text)
}

func TestExtract_DOCXNestedText(t *testing.T) {
	t.Log("=== Testing DOCX text inside tables and hyperlinks")

	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>` +
		`<w:p><w:r><w:t>Intro paragraph.</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>TABLE CELL TEXT</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p><w:r><w:t xml:space="preserve">See </w:t></w:r>` +
		`<w:hyperlink r:id="rId5"><w:r><w:t>LINK TEXT</w:t></w:r></w:hyperlink></w:p>` +
		`<w:sdt><w:sdtContent><w:p><w:r><w:t>Control text</w:t></w:r></w:p></w:sdtContent></w:sdt>` +
		`</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	result, err := newTestService().Extract(context.Background(), "table.docx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "Intro paragraph.\nTABLE CELL TEXT\nSee LINK TEXT\nControl text", result.Pages[0].Text)

	t.Log("✓ Nested DOCX text extracted")
}

func TestExtract_DOCXWithoutDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("other.txt")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = newTestService().Extract(context.Background(), "broken.docx", buf.Bytes())
	assert.ErrorIs(t, err, common.ErrInvalidRequest)
}

func TestExtract_PDFPerPage(t *testing.T) {
	t.Log("=== Testing PDF text is extracted page by page")

	data := buildPDF(t, "Hello first page", "Hello second page")

	result, err := newTestService().Extract(context.Background(), "paper.pdf", data)
	require.NoError(t, err)

	assert.Equal(t, MimeTypePDF, result.MimeType)
	assert.True(t, result.Paged)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, 1, result.Pages[0].Number)
	assert.Equal(t, 2, result.Pages[1].Number)
	assert.Contains(t, result.Pages[0].Text, "first")
	assert.Contains(t, result.Pages[1].Text, "second")
}

func TestExtract_Rejects(t *testing.T) {
	service := newTestService()

	_, err := service.Extract(context.Background(), "empty.txt", nil)
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	_, err = service.Extract(context.Background(), "image.png", []byte("\x89PNG\r\n\x1a\n0000"))
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	_, err = service.Extract(context.Background(), "bad.pdf", []byte("%PDF-1.4\nnot really a pdf"))
	assert.ErrorIs(t, err, common.ErrInvalidRequest)
}
