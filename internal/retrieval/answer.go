package retrieval

import "strings"

// FallbackAnswer is returned when nothing in the document matches the
// question.
const FallbackAnswer = "I could not find that in the document."

// Citation is one source reference attached to an answer.
type Citation struct {
	PageNumber int
	Snippet    string
}

// Compose builds an extractive answer from scored chunks: the most
// relevant sentences of the best chunk, plus one citation per chunk with
// a snippet of at most snippetLen characters.
func Compose(query string, chunks []ScoredChunk, snippetLen int) (string, []Citation) {
	if len(chunks) == 0 {
		return FallbackAnswer, nil
	}
	if snippetLen <= 0 {
		snippetLen = 200
	}

	answer := bestSentences(query, chunks[0].Text, 2)
	if answer == "" {
		answer = snippet(chunks[0].Text, snippetLen)
	}

	citations := make([]Citation, len(chunks))
	for i, c := range chunks {
		citations[i] = Citation{
			PageNumber: c.PageNumber,
			Snippet:    snippet(c.Text, snippetLen),
		}
	}
	return answer, citations
}

// bestSentences returns up to max sentences of text ranked by query
// overlap, rejoined in their original order.
func bestSentences(query, text string, max int) string {
	terms := tokenize(query)
	sentences := splitSentences(text)
	if len(terms) == 0 || len(sentences) == 0 {
		return ""
	}

	type ranked struct {
		index int
		score float64
	}
	var hits []ranked
	for i, s := range sentences {
		if sc := score(terms, s); sc > 0 {
			hits = append(hits, ranked{index: i, score: sc})
		}
	}
	if len(hits) == 0 {
		return ""
	}

	// Keep the max best-scoring sentences, then restore document order.
	for i := 0; i < len(hits); i++ {
		for j := i + 1; j < len(hits); j++ {
			if hits[j].score > hits[i].score {
				hits[i], hits[j] = hits[j], hits[i]
			}
		}
	}
	if len(hits) > max {
		hits = hits[:max]
	}
	picked := make(map[int]bool, len(hits))
	for _, h := range hits {
		picked[h.index] = true
	}

	var out []string
	for i, s := range sentences {
		if picked[i] {
			out = append(out, s)
		}
	}
	return strings.Join(out, " ")
}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// snippet truncates text to at most limit characters on a rune boundary,
// appending "..." when cut.
func snippet(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
