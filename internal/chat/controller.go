package chat

import (
	"context"
	"sync"

	"pdfchat/internal/ingest"
)

// Gateway is the transport boundary the controller drives. Implementations
// are stateless request/response adapters; see internal/gateway.
type Gateway interface {
	SubmitDocument(ctx context.Context, filename string, data []byte) (documentID string, err error)
	SubmitQuestion(ctx context.Context, documentID, question string, history []Turn) (Answer, error)
}

// Controller mediates user actions to the document session, the
// transcript and the gateway. It is the only writer of both state
// machines; a mutex serializes operations so the CLI, REPL and MCP
// surfaces can share one controller.
type Controller struct {
	mu         sync.Mutex
	gw         Gateway
	session    *DocumentSession
	transcript *Transcript
	sources    []Source
}

func NewController(gw Gateway) *Controller {
	return &Controller{
		gw:         gw,
		session:    NewDocumentSession(),
		transcript: NewTranscript(),
	}
}

// Upload submits a document to the backend. On success the previous
// transcript and source set are cleared together and the new document
// becomes the conversation subject. On failure the session returns to
// idle and the transcript is left untouched.
func (c *Controller) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !ingest.IsPDF(data) {
		return "", &PreconditionError{Reason: "file must be a PDF"}
	}

	// A replacement upload is allowed from ready: reset first so the
	// idle → submitting transition holds.
	if c.session.Ready() {
		c.session.Reset()
		c.clearConversation()
	}
	if err := c.session.BeginSubmit(); err != nil {
		return "", err
	}

	docID, err := c.gw.SubmitDocument(ctx, filename, data)
	if err != nil {
		c.session.FailSubmit()
		return "", err
	}
	if err := c.session.CompleteSubmit(docID); err != nil {
		return "", err
	}
	c.clearConversation()
	return docID, nil
}

// Ask submits a question about the active document. The user message is
// appended optimistically; on failure it is removed again and the source
// set is left untouched, so the transcript never contains a question the
// backend did not answer.
func (c *Controller) Ask(ctx context.Context, text string) (Message, []Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	docID, ok := c.session.DocumentID()
	if !ok {
		return Message{}, nil, &PreconditionError{Reason: "no document is ready"}
	}

	userMsg, history, err := c.transcript.BeginQuestion(text)
	if err != nil {
		return Message{}, nil, err
	}

	ans, err := c.gw.SubmitQuestion(ctx, docID, userMsg.Content, history)
	if err != nil {
		c.transcript.RollbackQuestion()
		return Message{}, nil, err
	}

	reply, err := c.transcript.CompleteQuestion(ans.Answer)
	if err != nil {
		return Message{}, nil, err
	}
	c.sources = append([]Source(nil), ans.Sources...)
	return reply, c.sourcesCopy(), nil
}

// Reset discards the active document, transcript and sources together.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Reset()
	c.clearConversation()
}

func (c *Controller) Status() SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Status()
}

func (c *Controller) DocumentID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.DocumentID()
}

func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Pending()
}

func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Messages()
}

// Sources returns the citation set of the most recent successful answer.
func (c *Controller) Sources() []Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sourcesCopy()
}

func (c *Controller) sourcesCopy() []Source {
	out := make([]Source, len(c.sources))
	copy(out, c.sources)
	return out
}

func (c *Controller) clearConversation() {
	c.transcript.Clear()
	c.sources = nil
}
