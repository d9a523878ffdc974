package chat

import "strings"

// Transcript is the ordered, append-only log of conversation turns.
//
// Outbound questions follow an optimistic append/rollback protocol: the
// user message is appended before the backend confirms, and removed again
// if the request fails. At most one question is pending at a time; while
// one is, every other mutation except completing or rolling back that
// question is rejected.
type Transcript struct {
	messages []Message
	pending  bool
	mark     int // message count before the pending optimistic append
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// BeginQuestion validates text, optimistically appends it as a user
// message and marks the transcript pending. It returns the appended
// message together with the outbound history: every message including
// the new question, in order.
func (t *Transcript) BeginQuestion(text string) (Message, []Turn, error) {
	if t.pending {
		return Message{}, nil, &PreconditionError{Reason: "a question is already pending"}
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Message{}, nil, &PreconditionError{Reason: "question is empty"}
	}

	msg := newMessage(RoleUser, trimmed)
	t.mark = len(t.messages)
	t.messages = append(t.messages, msg)
	t.pending = true

	history := make([]Turn, len(t.messages))
	for i, m := range t.messages {
		history[i] = Turn{Role: m.Role, Content: m.Content}
	}
	return msg, history, nil
}

// CompleteQuestion resolves the pending question with the backend's
// answer, appending it as an assistant message.
func (t *Transcript) CompleteQuestion(answer string) (Message, error) {
	if !t.pending {
		return Message{}, &InvalidStateError{Op: "completeQuestion", State: "not pending"}
	}
	msg := newMessage(RoleAssistant, answer)
	t.messages = append(t.messages, msg)
	t.pending = false
	return msg, nil
}

// RollbackQuestion removes the optimistically appended user message of
// the pending question, restoring the transcript to its exact state
// before BeginQuestion.
func (t *Transcript) RollbackQuestion() error {
	if !t.pending {
		return &InvalidStateError{Op: "rollbackQuestion", State: "not pending"}
	}
	t.messages = t.messages[:t.mark]
	t.pending = false
	return nil
}

// Clear empties the transcript. Rejected while a question is pending.
func (t *Transcript) Clear() error {
	if t.pending {
		return &InvalidStateError{Op: "clear", State: "pending"}
	}
	t.messages = nil
	return nil
}

func (t *Transcript) Pending() bool {
	return t.pending
}

func (t *Transcript) Len() int {
	return len(t.messages)
}

// Messages returns a copy of the transcript in insertion order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}
