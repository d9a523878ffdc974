package ingest

import "strings"

// DefaultChunkSize is the target chunk length in characters.
const DefaultChunkSize = 1000

// Chunk is a retrievable fragment of a page.
type Chunk struct {
	PageNumber int
	Text       string
}

// Split cuts each page's text into chunks of roughly size characters,
// breaking on whitespace so words stay intact. Chunks never span pages;
// the page number is what answers cite.
func Split(pages []Page, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	var chunks []Chunk
	for _, page := range pages {
		for _, text := range splitText(page.Text, size) {
			chunks = append(chunks, Chunk{PageNumber: page.Number, Text: text})
		}
	}
	return chunks
}

func splitText(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var parts []string
	for len(text) > size {
		cut := size
		// Prefer the last whitespace before the limit; fall back to a
		// hard cut for pathological unbroken runs.
		if idx := strings.LastIndexAny(text[:size], " \t\n"); idx > 0 {
			cut = idx
		}
		part := strings.TrimSpace(text[:cut])
		if part != "" {
			parts = append(parts, part)
		}
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
