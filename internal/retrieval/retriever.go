// Package retrieval finds the document chunks most relevant to a
// question. Serve mode has no embedding model behind it, so relevance is
// keyword overlap: deterministic, dependency-free, and good enough to
// exercise the client end to end.
package retrieval

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/errgroup"

	"pdfchat/internal/storage"
)

const scoreConcurrency = 4

// ScoredChunk is a chunk with its relevance to the query.
type ScoredChunk struct {
	ID         string
	PageNumber int
	Text       string
	Score      float64
}

// ChunkSource abstracts chunk listing for the retriever.
type ChunkSource interface {
	ListChunks(docID string) ([]storage.Chunk, error)
}

// Retriever scores a document's chunks against a query and returns the
// top-K matches.
type Retriever struct {
	source ChunkSource
	topK   int
}

func NewRetriever(source ChunkSource, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{source: source, topK: topK}
}

// Retrieve returns at most topK chunks with a positive score, sorted by
// score descending (page number ascending on ties, so citations read in
// document order).
func (r *Retriever) Retrieve(ctx context.Context, docID, query string) ([]ScoredChunk, error) {
	chunks, err := r.source.ListChunks(docID)
	if err != nil {
		return nil, err
	}

	terms := tokenize(query)
	if len(terms) == 0 || len(chunks) == 0 {
		return nil, nil
	}

	scored := make([]ScoredChunk, len(chunks))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)
	for i, c := range chunks {
		g.Go(func() error {
			s := ScoredChunk{
				ID:         c.ID,
				PageNumber: c.PageNumber,
				Text:       c.Content,
				Score:      score(terms, c.Content),
			}
			mu.Lock()
			scored[i] = s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matched := make([]ScoredChunk, 0, len(scored))
	for _, s := range scored {
		if s.Score > 0 {
			matched = append(matched, s)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		return matched[i].PageNumber < matched[j].PageNumber
	})

	if len(matched) > r.topK {
		matched = matched[:r.topK]
	}
	return matched, nil
}

// score is the fraction of distinct query terms present in the text,
// with a small bonus per repeated occurrence so denser chunks win ties.
func score(terms []string, text string) float64 {
	words := splitWords(text)
	if len(words) == 0 {
		return 0
	}
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	var matchedTerms int
	var occurrences int
	for _, t := range terms {
		if n := counts[t]; n > 0 {
			matchedTerms++
			occurrences += n
		}
	}
	if matchedTerms == 0 {
		return 0
	}
	base := float64(matchedTerms) / float64(len(terms))
	bonus := float64(occurrences-matchedTerms) * 0.01
	if bonus > 0.2 {
		bonus = 0.2
	}
	return base + bonus
}

// splitWords lowercases text, splits on non-alphanumeric runes and
// drops words shorter than three characters.
func splitWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := fields[:0]
	for _, f := range fields {
		if len(f) >= 3 {
			words = append(words, f)
		}
	}
	return words
}

// tokenize returns the distinct words of text in first-seen order.
// Duplicate query terms collapse to one so repeated words do not inflate
// the score denominator.
func tokenize(text string) []string {
	words := splitWords(text)
	seen := make(map[string]bool, len(words))
	var terms []string
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, w)
	}
	return terms
}
