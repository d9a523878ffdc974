package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pdfchat/internal/chat"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL, 5*time.Second)
}

func TestSubmitDocument(t *testing.T) {
	var gotFilename string
	var gotData []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload-pdf" {
			t.Errorf("path = %q, want /upload-pdf", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		gotFilename = header.Filename
		gotData, _ = io.ReadAll(file)

		json.NewEncoder(w).Encode(map[string]string{
			"doc_id":  "doc-42",
			"message": "PDF processed successfully",
		})
	}))
	defer srv.Close()

	docID, err := newTestClient(srv).SubmitDocument(context.Background(), "report.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("SubmitDocument: %v", err)
	}
	if docID != "doc-42" {
		t.Errorf("docID = %q, want %q", docID, "doc-42")
	}
	if gotFilename != "report.pdf" {
		t.Errorf("uploaded filename = %q, want %q", gotFilename, "report.pdf")
	}
	if string(gotData) != "%PDF-1.4" {
		t.Errorf("uploaded data = %q", gotData)
	}
}

func TestSubmitDocumentErrorReasons(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantReason string
	}{
		{
			name:       "detail field",
			status:     http.StatusBadRequest,
			body:       `{"detail": "File must be a PDF."}`,
			wantReason: "File must be a PDF.",
		},
		{
			name:       "message field",
			status:     http.StatusBadRequest,
			body:       `{"message": "something went wrong"}`,
			wantReason: "something went wrong",
		},
		{
			name:       "detail wins over message",
			status:     http.StatusBadRequest,
			body:       `{"detail": "the detail", "message": "the message"}`,
			wantReason: "the detail",
		},
		{
			name:       "unparseable body falls back to status text",
			status:     http.StatusInternalServerError,
			body:       "<html>nope</html>",
			wantReason: "Internal Server Error",
		},
		{
			name:       "empty structured body falls back to status text",
			status:     http.StatusServiceUnavailable,
			body:       `{}`,
			wantReason: "Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv).SubmitDocument(context.Background(), "a.pdf", []byte("%PDF-"))
			var ue *UploadError
			if !errors.As(err, &ue) {
				t.Fatalf("error = %v, want UploadError", err)
			}
			if ue.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", ue.StatusCode, tt.status)
			}
			if ue.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", ue.Reason, tt.wantReason)
			}
		})
	}
}

func TestSubmitDocumentMissingDocID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "ok but no id"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SubmitDocument(context.Background(), "a.pdf", []byte("%PDF-"))
	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want UploadError", err)
	}
}

func TestSubmitQuestion(t *testing.T) {
	var gotBody struct {
		DocID    string      `json:"doc_id"`
		Question string      `json:"question"`
		History  []chat.Turn `json:"history"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Errorf("path = %q, want /chat", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		io.WriteString(w, `{
			"answer": "It is about birds.",
			"sources": [
				{"page_number": 3, "snippet": "birds of the coast"},
				{"page_number": null, "snippet": "unpaged source"}
			]
		}`)
	}))
	defer srv.Close()

	history := []chat.Turn{
		{Role: chat.RoleUser, Content: "earlier question"},
		{Role: chat.RoleAssistant, Content: "earlier answer"},
		{Role: chat.RoleUser, Content: "what is it about?"},
	}
	ans, err := newTestClient(srv).SubmitQuestion(context.Background(), "doc-7", "what is it about?", history)
	if err != nil {
		t.Fatalf("SubmitQuestion: %v", err)
	}

	if gotBody.DocID != "doc-7" {
		t.Errorf("doc_id = %q", gotBody.DocID)
	}
	if gotBody.Question != "what is it about?" {
		t.Errorf("question = %q", gotBody.Question)
	}
	if len(gotBody.History) != 3 {
		t.Errorf("history length = %d, want 3", len(gotBody.History))
	}

	if ans.Answer != "It is about birds." {
		t.Errorf("answer = %q", ans.Answer)
	}
	if len(ans.Sources) != 2 {
		t.Fatalf("sources length = %d, want 2", len(ans.Sources))
	}
	if ans.Sources[0].PageNumber == nil || *ans.Sources[0].PageNumber != 3 {
		t.Errorf("first source page = %v, want 3", ans.Sources[0].PageNumber)
	}
	if ans.Sources[1].PageNumber != nil {
		t.Errorf("second source page = %v, want nil", ans.Sources[1].PageNumber)
	}
}

func TestSubmitQuestionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail": "unknown doc_id \"nope\""}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SubmitQuestion(context.Background(), "nope", "hello?", nil)
	var ce *ChatError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want ChatError", err)
	}
	if ce.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", ce.StatusCode)
	}
	if ce.Reason != `unknown doc_id "nope"` {
		t.Errorf("reason = %q", ce.Reason)
	}
}

func TestTransportErrorWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	client := newTestClient(srv)

	_, err := client.SubmitDocument(context.Background(), "a.pdf", []byte("%PDF-"))
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("upload error = %v, want TransportError", err)
	}
	if te.Unwrap() == nil {
		t.Error("TransportError should wrap the underlying error")
	}

	_, err = client.SubmitQuestion(context.Background(), "doc-1", "hello?", nil)
	if !errors.As(err, &te) {
		t.Fatalf("chat error = %v, want TransportError", err)
	}
}
