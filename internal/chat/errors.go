package chat

import "fmt"

// PreconditionError reports a locally detected validation failure. The
// operation that returned it performed no state change.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// InvalidStateError reports an operation invoked in a state that does not
// permit it.
type InvalidStateError struct {
	Op    string
	State string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is not allowed in state %q", e.Op, e.State)
}
