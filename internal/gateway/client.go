// Package gateway is the HTTP adapter between the chat controller and
// the retrieval backend. It owns no local state; both operations are
// pure request/response.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"pdfchat/internal/chat"
)

const maxErrorBodySize = 64 << 10 // 64KB

// Client talks to the backend over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ chat.Gateway = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SubmitDocument uploads a PDF as the multipart field "file" and returns
// the backend-assigned document ID.
func (c *Client) SubmitDocument(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("building multipart request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("building multipart request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("building multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-pdf", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UploadError{StatusCode: resp.StatusCode, Reason: extractReason(resp)}
	}

	var result struct {
		DocID string `json:"doc_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &UploadError{StatusCode: resp.StatusCode, Reason: fmt.Sprintf("invalid response body: %v", err)}
	}
	if result.DocID == "" {
		return "", &UploadError{StatusCode: resp.StatusCode, Reason: "backend returned no doc_id"}
	}
	return result.DocID, nil
}

// SubmitQuestion posts the question and the full ordered history and
// returns the answer with its citation set.
func (c *Client) SubmitQuestion(ctx context.Context, documentID, question string, history []chat.Turn) (chat.Answer, error) {
	payload := struct {
		DocID    string      `json:"doc_id"`
		Question string      `json:"question"`
		History  []chat.Turn `json:"history"`
	}{DocID: documentID, Question: question, History: history}

	data, err := json.Marshal(payload)
	if err != nil {
		return chat.Answer{}, fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(data))
	if err != nil {
		return chat.Answer{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chat.Answer{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return chat.Answer{}, &ChatError{StatusCode: resp.StatusCode, Reason: extractReason(resp)}
	}

	var result struct {
		Answer  string `json:"answer"`
		Sources []struct {
			PageNumber *int   `json:"page_number"`
			Snippet    string `json:"snippet"`
		} `json:"sources"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return chat.Answer{}, &ChatError{StatusCode: resp.StatusCode, Reason: fmt.Sprintf("invalid response body: %v", err)}
	}

	ans := chat.Answer{Answer: result.Answer}
	for _, s := range result.Sources {
		ans.Sources = append(ans.Sources, chat.Source{PageNumber: s.PageNumber, Snippet: s.Snippet})
	}
	return ans, nil
}

// extractReason pulls a failure reason from an error response. Order:
// structured "detail" field, then "message", then the HTTP status text.
func extractReason(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err == nil {
		var payload struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			if payload.Detail != "" {
				return payload.Detail
			}
			if payload.Message != "" {
				return payload.Message
			}
		}
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
