package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

// WordprocessingML namespaces (transitional and strict)
var wordNamespaces = map[string]bool{
	"http://schemas.openxmlformats.org/wordprocessingml/2006/main": true,
	"http://purl.oclc.org/ooxml/wordprocessingml/main":             true,
}

// extractDOCX reads the text of word/document.xml, one paragraph per line
func extractDOCX(data []byte) (*interfaces.ExtractedText, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid DOCX archive: %v", common.ErrInvalidRequest, err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open document.xml: %v", common.ErrInvalidRequest, err)
		}
		text, err := parseDocumentXML(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: malformed document.xml: %v", common.ErrInvalidRequest, err)
		}

		return unpaged(text), nil
	}

	return nil, fmt.Errorf("%w: DOCX archive has no word/document.xml", common.ErrInvalidRequest)
}

// parseDocumentXML streams document.xml and collects every w:t wherever it
// sits (tables, hyperlinks, content controls). Each closing w:p ends a line.
func parseDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var lines []string
	var line strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			if !wordNamespaces[tok.Name.Space] {
				continue
			}
			switch tok.Name.Local {
			case "t":
				inText = true
			case "tab":
				line.WriteString("\t")
			case "br", "cr":
				line.WriteString("\n")
			}
		case xml.EndElement:
			if !wordNamespaces[tok.Name.Space] {
				continue
			}
			switch tok.Name.Local {
			case "t":
				inText = false
			case "p":
				lines = append(lines, line.String())
				line.Reset()
			}
		case xml.CharData:
			if inText {
				line.Write(tok)
			}
		}
	}

	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n"), nil
}
