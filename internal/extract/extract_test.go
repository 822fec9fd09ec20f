package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t xml:space="preserve">Python &amp; AWS </w:t></w:r><w:r><w:t>engineer</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go</w:t></w:r></w:p>` +
	`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/></w:sectPr></w:body></w:document>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtract_Docx(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": documentRels,
	})

	got, err := New().Extract(data, "resume.DOCX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Jane Doe\nPython & AWS engineer\nSkills:\tGo"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"resume.txt", "resume.doc", "resume", "pdf"} {
		_, err := New().Extract([]byte("hello"), name)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("%s: err = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestExtract_CorruptDocuments(t *testing.T) {
	tests := []string{"resume.pdf", "resume.docx"}
	for _, name := range tests {
		_, err := New().Extract([]byte("definitely not a document"), name)
		if err == nil {
			t.Errorf("%s: expected parse error", name)
		}
		if errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("%s: parse failure reported as unsupported format", name)
		}
	}
}

func TestSupported(t *testing.T) {
	tests := map[string]bool{
		"a.pdf":  true,
		"a.PDF":  true,
		"a.docx": true,
		"a.doc":  false,
		"a.txt":  false,
		"":       false,
	}
	for name, want := range tests {
		if got := Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDocumentXMLText_NoParagraphs(t *testing.T) {
	if got := documentXMLText(`<w:document><w:body></w:body></w:document>`); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
