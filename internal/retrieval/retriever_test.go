package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pdfchat/internal/storage"
)

// --- Fake chunk source ---

type fakeSource struct {
	chunks []storage.Chunk
	err    error
}

func (f *fakeSource) ListChunks(docID string) ([]storage.Chunk, error) {
	return f.chunks, f.err
}

func chunksOf(texts ...string) []storage.Chunk {
	out := make([]storage.Chunk, len(texts))
	for i, text := range texts {
		out[i] = storage.Chunk{
			ID:         strings.Repeat("c", i+1),
			DocID:      "doc-1",
			PageNumber: i + 1,
			Content:    text,
		}
	}
	return out
}

// --- Retrieve ---

func TestRetrieveRanksByOverlap(t *testing.T) {
	src := &fakeSource{chunks: chunksOf(
		"cats sleep most of the day",                // page 1: one term
		"migration routes of coastal birds in fall", // page 2: two terms
		"nothing relevant here at all",              // page 3: no terms
	)}
	r := NewRetriever(src, 5)

	got, err := r.Retrieve(context.Background(), "doc-1", "birds migration day")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("result count = %d, want 2", len(got))
	}
	if got[0].PageNumber != 2 {
		t.Errorf("best match page = %d, want 2", got[0].PageNumber)
	}
	if got[1].PageNumber != 1 {
		t.Errorf("second match page = %d, want 1", got[1].PageNumber)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores not descending: %v, %v", got[0].Score, got[1].Score)
	}
}

func TestRetrieveTopKLimit(t *testing.T) {
	src := &fakeSource{chunks: chunksOf(
		"birds here", "birds there", "birds everywhere", "birds again",
	)}
	r := NewRetriever(src, 2)

	got, err := r.Retrieve(context.Background(), "doc-1", "birds")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("result count = %d, want 2", len(got))
	}
}

func TestRetrieveTiesBreakByPageOrder(t *testing.T) {
	src := &fakeSource{chunks: chunksOf(
		"identical match text", "identical match text", "identical match text",
	)}
	r := NewRetriever(src, 5)

	got, err := r.Retrieve(context.Background(), "doc-1", "identical match")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].PageNumber < got[i-1].PageNumber {
			t.Errorf("tied results out of page order: %d before %d",
				got[i-1].PageNumber, got[i].PageNumber)
		}
	}
}

func TestRetrieveNoMatches(t *testing.T) {
	src := &fakeSource{chunks: chunksOf("lorem ipsum dolor sit amet")}
	r := NewRetriever(src, 5)

	got, err := r.Retrieve(context.Background(), "doc-1", "unrelated zebra question")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("result count = %d, want 0", len(got))
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	src := &fakeSource{chunks: chunksOf("some content")}
	r := NewRetriever(src, 5)

	// "a" and "is" are dropped as short words, leaving no terms.
	got, err := r.Retrieve(context.Background(), "doc-1", "a is")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if got != nil {
		t.Errorf("result = %v, want nil", got)
	}
}

func TestRetrieveSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("db gone")}
	r := NewRetriever(src, 5)

	if _, err := r.Retrieve(context.Background(), "doc-1", "birds"); err == nil {
		t.Fatal("expected error from chunk source")
	}
}

// --- Scoring ---

func TestScoreRepeatedTermsBonus(t *testing.T) {
	terms := tokenize("birds")
	sparse := score(terms, "birds appear once in this text")
	dense := score(terms, "birds and more birds, always birds")
	if dense <= sparse {
		t.Errorf("denser chunk should score higher: dense=%v sparse=%v", dense, sparse)
	}
}

func TestTokenizeDedupes(t *testing.T) {
	got := tokenize("Birds, birds and BIRDS fly south")
	want := []string{"birds", "and", "fly", "south"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tokenize[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// --- Compose ---

func TestComposeFallbackOnNoChunks(t *testing.T) {
	answer, citations := Compose("anything", nil, 200)
	if answer != FallbackAnswer {
		t.Errorf("answer = %q, want fallback", answer)
	}
	if citations != nil {
		t.Errorf("citations = %v, want nil", citations)
	}
}

func TestComposePicksRelevantSentences(t *testing.T) {
	chunks := []ScoredChunk{
		{
			PageNumber: 2,
			Text:       "Cats are common pets. Coastal birds migrate in autumn. The weather varies.",
			Score:      1.0,
		},
	}

	answer, citations := Compose("when do birds migrate", chunks, 200)
	if !strings.Contains(answer, "birds migrate") {
		t.Errorf("answer = %q, want the matching sentence", answer)
	}
	if strings.Contains(answer, "Cats") {
		t.Errorf("answer includes irrelevant sentence: %q", answer)
	}
	if len(citations) != 1 {
		t.Fatalf("citation count = %d, want 1", len(citations))
	}
	if citations[0].PageNumber != 2 {
		t.Errorf("citation page = %d, want 2", citations[0].PageNumber)
	}
}

func TestComposeSnippetTruncation(t *testing.T) {
	long := strings.Repeat("word ", 100)
	chunks := []ScoredChunk{{PageNumber: 1, Text: long, Score: 0.5}}

	_, citations := Compose("word", chunks, 50)
	if len(citations) != 1 {
		t.Fatalf("citation count = %d, want 1", len(citations))
	}
	snip := citations[0].Snippet
	if !strings.HasSuffix(snip, "...") {
		t.Errorf("truncated snippet should end with ellipsis: %q", snip)
	}
	if len([]rune(snip)) != 53 {
		t.Errorf("snippet length = %d runes, want 53", len([]rune(snip)))
	}
}

func TestComposeOneCitationPerChunk(t *testing.T) {
	chunks := []ScoredChunk{
		{PageNumber: 1, Text: "birds on page one", Score: 0.9},
		{PageNumber: 4, Text: "birds on page four", Score: 0.5},
	}

	_, citations := Compose("birds", chunks, 200)
	if len(citations) != 2 {
		t.Fatalf("citation count = %d, want 2", len(citations))
	}
	if citations[0].PageNumber != 1 || citations[1].PageNumber != 4 {
		t.Errorf("citations = %+v", citations)
	}
}
