// Package api hosts the serve-mode HTTP backend and the MCP surface.
//
// The HTTP side mirrors the production retrieval service's interface,
// POST /upload-pdf (multipart) and POST /chat (JSON), so the client can
// be exercised against a local stand-in. Error bodies carry the reason
// in a "detail" field.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pdfchat/internal/ingest"
	"pdfchat/internal/retrieval"
	"pdfchat/internal/storage"
)

const maxUploadSize = 20 << 20 // 20MB

type ServerDeps struct {
	Store         *storage.Store
	Retriever     *retrieval.Retriever
	SnippetLength int
	// Extract overrides PDF text extraction; nil means ingest.ExtractPages.
	// Tests substitute a fake so they don't need real PDF fixtures.
	Extract func(data []byte) ([]ingest.Page, error)
}

type ChatRequest struct {
	DocID    string `json:"doc_id"`
	Question string `json:"question"`
	History  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"history"`
}

type SourcePayload struct {
	PageNumber *int   `json:"page_number,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
}

type ChatResponse struct {
	Answer  string          `json:"answer"`
	Sources []SourcePayload `json:"sources"`
}

func NewServer(deps ServerDeps) http.Handler {
	if deps.Extract == nil {
		deps.Extract = ingest.ExtractPages
	}

	r := chi.NewRouter()
	r.Get("/health", handleHealth(deps))
	r.Post("/upload-pdf", handleUpload(deps))
	r.Post("/chat", handleChat(deps))
	return r
}

func handleHealth(deps ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := deps.Store.CountDocuments()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "storage unavailable: %v", err)
			return
		}
		writeJSON(w, map[string]any{"status": "ok", "documents": docs})
	}
}

func handleUpload(deps ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		file, header, err := r.FormFile("file")
		if err != nil {
			httpError(w, http.StatusBadRequest, "missing file field: %v", err)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			httpError(w, http.StatusBadRequest, "reading upload: %v", err)
			return
		}
		if !ingest.IsPDF(data) {
			httpError(w, http.StatusBadRequest, "File must be a PDF.")
			return
		}

		pages, err := deps.Extract(data)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "processing PDF: %v", err)
			return
		}
		chunks := ingest.Split(pages, ingest.DefaultChunkSize)

		docID := uuid.New().String()
		doc := storage.Document{
			ID:        docID,
			Filename:  header.Filename,
			PageCount: len(pages),
			CreatedAt: time.Now().UTC(),
		}
		stored := make([]storage.Chunk, len(chunks))
		for i, c := range chunks {
			stored[i] = storage.Chunk{
				ID:         uuid.New().String(),
				DocID:      docID,
				PageNumber: c.PageNumber,
				Content:    c.Text,
			}
		}
		if err := deps.Store.SaveDocument(doc, stored); err != nil {
			httpError(w, http.StatusInternalServerError, "saving document: %v", err)
			return
		}

		slog.Info("document ingested", "doc_id", docID, "filename", header.Filename, "pages", len(pages), "chunks", len(stored))
		writeJSON(w, map[string]string{
			"doc_id":  docID,
			"message": "PDF processed successfully",
		})
	}
}

func handleChat(deps ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.DocID == "" {
			httpError(w, http.StatusBadRequest, "doc_id is required")
			return
		}
		if req.Question == "" {
			httpError(w, http.StatusBadRequest, "question is required")
			return
		}

		if _, err := deps.Store.GetDocument(req.DocID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "unknown doc_id %q", req.DocID)
				return
			}
			httpError(w, http.StatusInternalServerError, "loading document: %v", err)
			return
		}

		scored, err := deps.Retriever.Retrieve(r.Context(), req.DocID, req.Question)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "retrieval failed: %v", err)
			return
		}

		answer, citations := retrieval.Compose(req.Question, scored, deps.SnippetLength)

		resp := ChatResponse{Answer: answer, Sources: []SourcePayload{}}
		for _, c := range citations {
			page := c.PageNumber
			resp.Sources = append(resp.Sources, SourcePayload{PageNumber: &page, Snippet: c.Snippet})
		}

		slog.Info("question answered", "doc_id", req.DocID, "history_turns", len(req.History), "sources", len(resp.Sources))
		writeJSON(w, resp)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// httpError writes the FastAPI-style error body the gateway's reason
// extraction expects.
func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"detail": fmt.Sprintf(format, args...),
	})
}
