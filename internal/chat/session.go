package chat

// SessionStatus is the lifecycle state of the active document.
type SessionStatus string

const (
	StatusIdle       SessionStatus = "idle"
	StatusSubmitting SessionStatus = "submitting"
	StatusReady      SessionStatus = "ready"
)

// DocumentSession tracks whether a document has been accepted by the
// backend and holds its identifier once ready.
//
// Transitions: idle → submitting → ready, ready → idle (reset),
// submitting → idle (failure). The session is ready if and only if a
// document ID is present.
type DocumentSession struct {
	status     SessionStatus
	documentID string
}

func NewDocumentSession() *DocumentSession {
	return &DocumentSession{status: StatusIdle}
}

// BeginSubmit marks the start of a document upload. Allowed only from idle.
func (s *DocumentSession) BeginSubmit() error {
	if s.status != StatusIdle {
		return &InvalidStateError{Op: "beginSubmit", State: string(s.status)}
	}
	s.status = StatusSubmitting
	return nil
}

// CompleteSubmit records the backend-assigned document ID and moves the
// session to ready. Allowed only from submitting. The caller must clear
// the transcript and source set alongside this call; a new document
// invalidates all prior conversation context.
func (s *DocumentSession) CompleteSubmit(documentID string) error {
	if s.status != StatusSubmitting {
		return &InvalidStateError{Op: "completeSubmit", State: string(s.status)}
	}
	s.documentID = documentID
	s.status = StatusReady
	return nil
}

// FailSubmit abandons an in-flight upload and returns to idle. Allowed
// only from submitting.
func (s *DocumentSession) FailSubmit() error {
	if s.status != StatusSubmitting {
		return &InvalidStateError{Op: "failSubmit", State: string(s.status)}
	}
	s.documentID = ""
	s.status = StatusIdle
	return nil
}

// Reset discards the active document and returns to idle. Allowed from
// any state. The caller must clear the transcript and source set
// alongside this call.
func (s *DocumentSession) Reset() {
	s.documentID = ""
	s.status = StatusIdle
}

func (s *DocumentSession) Status() SessionStatus {
	return s.status
}

func (s *DocumentSession) Ready() bool {
	return s.status == StatusReady
}

// DocumentID returns the active document identifier. The second return
// is false until an upload has completed.
func (s *DocumentSession) DocumentID() (string, bool) {
	if s.status != StatusReady {
		return "", false
	}
	return s.documentID, true
}
