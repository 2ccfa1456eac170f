// Package docx extracts paragraph text from Word .docx files.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	documentPart  = "word/document.xml"
)

var ErrNoDocumentPart = errors.New("docx: word/document.xml not found")

// Paragraphs returns the text of every top-level body paragraph in the file
// at path, in document order. Empty paragraphs are included as "".
func Paragraphs(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()
	return paragraphsFromZip(&zr.Reader)
}

// ReadParagraphs is Paragraphs for an in-memory archive.
func ReadParagraphs(r io.ReaderAt, size int64) ([]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening docx archive: %w", err)
	}
	return paragraphsFromZip(zr)
}

func paragraphsFromZip(zr *zip.Reader) ([]string, error) {
	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", documentPart, err)
		}
		defer rc.Close()
		return parseDocument(rc)
	}
	return nil, ErrNoDocumentPart
}

// parseDocument walks document.xml collecting the direct w:p children of
// w:body. Paragraphs inside tables and text boxes are skipped.
func parseDocument(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		stack      []string
		current    strings.Builder
		inPara     bool
		paraDepth  int
		skipDepth  int
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := localName(t.Name)
			if !inPara && name == "p" && len(stack) > 0 && stack[len(stack)-1] == "body" {
				inPara = true
				paraDepth = len(stack)
				current.Reset()
			} else if inPara && skipDepth == 0 {
				switch name {
				case "txbxContent":
					skipDepth = len(stack)
				case "t":
					inText = true
				case "tab":
					current.WriteByte('\t')
				case "br", "cr":
					current.WriteByte('\n')
				}
			}
			stack = append(stack, name)

		case xml.EndElement:
			stack = stack[:len(stack)-1]
			name := localName(t.Name)
			switch {
			case skipDepth > 0 && len(stack) == skipDepth:
				skipDepth = 0
			case inPara && name == "t":
				inText = false
			case inPara && name == "p" && len(stack) == paraDepth:
				paragraphs = append(paragraphs, current.String())
				inPara = false
			}

		case xml.CharData:
			if inText && skipDepth == 0 {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

// localName drops the namespace for WordprocessingML elements and marks every
// other vocabulary so it never matches.
func localName(n xml.Name) string {
	if n.Space != wordNamespace {
		return n.Space + ":" + n.Local
	}
	return n.Local
}
