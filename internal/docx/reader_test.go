package docx_test

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdesk/chat-backend/internal/docx"
	"github.com/promptdesk/chat-backend/internal/docx/docxtest"
)

func TestParagraphsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.docx")
	docxtest.Write(t, path, "How do I return an item?", "", "Use the returns form & wait <2 days>.")

	paragraphs, err := docx.Paragraphs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"How do I return an item?", "", "Use the returns form & wait <2 days>."}, paragraphs)
}

func TestParagraphsJoinRunsTabsAndBreaks(t *testing.T) {
	const body = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Ship</w:t></w:r><w:r><w:t xml:space="preserve">ping </w:t></w:r><w:r><w:tab/><w:t>policy</w:t></w:r></w:p>
<w:p><w:r><w:t>line one</w:t><w:br/><w:t>line two</w:t></w:r></w:p>
</w:body></w:document>`

	data := docxtest.Build(t, body)
	paragraphs, err := docx.ReadParagraphs(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, []string{"Shipping \tpolicy", "line one\nline two"}, paragraphs)
}

func TestParagraphsSkipTablesAndTextBoxes(t *testing.T) {
	const body = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>before</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:p><w:r><w:t>after</w:t></w:r><w:r><w:pict><w:txbxContent><w:p><w:r><w:t>boxed</w:t></w:r></w:p></w:txbxContent></w:pict></w:r></w:p>
</w:body></w:document>`

	data := docxtest.Build(t, body)
	paragraphs, err := docx.ReadParagraphs(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "after"}, paragraphs)
}

func TestParagraphsMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<w:styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = docx.ReadParagraphs(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorIs(t, err, docx.ErrNoDocumentPart)
}

func TestParagraphsNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.docx")
	_, err := docx.Paragraphs(path)
	assert.Error(t, err)
}
