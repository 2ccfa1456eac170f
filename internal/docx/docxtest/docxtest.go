// Package docxtest builds minimal .docx files for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"os"
	"testing"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// DocumentXML wraps one w:p per paragraph, each holding a single run.
func DocumentXML(paragraphs ...string) string {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	buf.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		buf.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		xml.EscapeText(&buf, []byte(p))
		buf.WriteString(`</w:t></w:r></w:p>`)
	}
	buf.WriteString(`<w:sectPr/></w:body></w:document>`)
	return buf.String()
}

// Build returns a .docx archive whose main part is documentXML.
func Build(t testing.TB, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rels},
		{"word/document.xml", documentXML},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			t.Fatalf("create %s: %v", part.name, err)
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			t.Fatalf("write %s: %v", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close docx archive: %v", err)
	}
	return buf.Bytes()
}

// Write saves a .docx with the given paragraphs to path.
func Write(t testing.TB, path string, paragraphs ...string) {
	t.Helper()
	if err := os.WriteFile(path, Build(t, DocumentXML(paragraphs...)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
