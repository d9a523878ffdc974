// Package ingest turns an uploaded PDF into page-tagged text chunks for
// the serve-mode document store.
package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts with the PDF file header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// Page is the extracted plain text of one document page. Numbering is
// 1-based, matching how readers cite pages.
type Page struct {
	Number int
	Text   string
}

// ExtractPages parses data as a PDF and returns the plain text of each
// page. Pages that yield no text are skipped; a document where every
// page is empty is an error, since nothing could ever be retrieved from it.
func ExtractPages(data []byte) ([]Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing PDF: %w", err)
	}

	var pages []Page
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in PDF")
	}
	return pages, nil
}
