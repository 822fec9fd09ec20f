// Package extract turns uploaded resume documents into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnsupportedFormat is returned for any extension other than .pdf and .docx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var xmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// Extractor converts document bytes to text based on the file extension.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Supported reports whether fileName has an extension Extract understands.
func Supported(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf", ".docx":
		return true
	}
	return false
}

// Extract returns the trimmed text content of data. The format is chosen
// from fileName's extension, case-insensitively.
func (e *Extractor) Extract(data []byte, fileName string) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		text, err = pdfText(data)
	case ".docx":
		text, err = docxText(data)
	default:
		return "", ErrUnsupportedFormat
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func pdfText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: malformed document: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		if b.Len() > 0 && pageText != "" {
			b.WriteByte('\n')
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent()), nil
}

// documentXMLText flattens WordprocessingML to text, one line per paragraph.
func documentXMLText(content string) string {
	content = strings.NewReplacer("<w:tab/>", "\t", "<w:br/>", "\n").Replace(content)

	body := content
	if i := strings.Index(body, "<w:body>"); i >= 0 {
		body = body[i:]
	}

	var paragraphs []string
	for _, p := range strings.Split(body, "</w:p>") {
		text := html.UnescapeString(xmlTagRegex.ReplaceAllString(p, ""))
		paragraphs = append(paragraphs, text)
	}
	// the chunk after the last paragraph holds section properties only
	if len(paragraphs) > 1 {
		paragraphs = paragraphs[:len(paragraphs)-1]
	}
	return strings.Join(paragraphs, "\n")
}
