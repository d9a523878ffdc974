package gateway

import "fmt"

// TransportError means no response was received at all: the backend is
// unreachable, the connection dropped, or the request timed out.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend not reachable, is the server running? (%v)", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UploadError means the backend answered a document upload with a
// non-success status. Reason follows the extraction policy of
// extractReason.
type UploadError struct {
	StatusCode int
	Reason     string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %s", e.Reason)
}

// ChatError means the backend answered a question with a non-success
// status. The caller rolls the optimistic transcript append back.
type ChatError struct {
	StatusCode int
	Reason     string
}

func (e *ChatError) Error() string {
	return fmt.Sprintf("chat failed: %s", e.Reason)
}
