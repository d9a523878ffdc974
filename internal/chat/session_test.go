package chat

import (
	"errors"
	"testing"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewDocumentSession()

	if got := s.Status(); got != StatusIdle {
		t.Fatalf("new session status = %q, want %q", got, StatusIdle)
	}
	if _, ok := s.DocumentID(); ok {
		t.Fatal("new session should have no document ID")
	}

	if err := s.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if got := s.Status(); got != StatusSubmitting {
		t.Fatalf("status after BeginSubmit = %q, want %q", got, StatusSubmitting)
	}
	if _, ok := s.DocumentID(); ok {
		t.Fatal("submitting session should have no document ID")
	}

	if err := s.CompleteSubmit("doc-123"); err != nil {
		t.Fatalf("CompleteSubmit: %v", err)
	}
	if !s.Ready() {
		t.Fatal("session should be ready after CompleteSubmit")
	}
	id, ok := s.DocumentID()
	if !ok || id != "doc-123" {
		t.Fatalf("DocumentID() = (%q, %v), want (%q, true)", id, ok, "doc-123")
	}
}

func TestSessionFailSubmitReturnsToIdle(t *testing.T) {
	s := NewDocumentSession()
	if err := s.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}

	if err := s.FailSubmit(); err != nil {
		t.Fatalf("FailSubmit: %v", err)
	}
	if got := s.Status(); got != StatusIdle {
		t.Fatalf("status after FailSubmit = %q, want %q", got, StatusIdle)
	}
	if _, ok := s.DocumentID(); ok {
		t.Fatal("failed session should have no document ID")
	}
}

func TestSessionInvalidTransitions(t *testing.T) {
	t.Run("begin while submitting", func(t *testing.T) {
		s := NewDocumentSession()
		s.BeginSubmit()
		assertInvalidState(t, s.BeginSubmit())
	})

	t.Run("begin while ready", func(t *testing.T) {
		s := NewDocumentSession()
		s.BeginSubmit()
		s.CompleteSubmit("doc-1")
		assertInvalidState(t, s.BeginSubmit())
	})

	t.Run("complete from idle", func(t *testing.T) {
		s := NewDocumentSession()
		assertInvalidState(t, s.CompleteSubmit("doc-1"))
	})

	t.Run("complete from ready", func(t *testing.T) {
		s := NewDocumentSession()
		s.BeginSubmit()
		s.CompleteSubmit("doc-1")
		assertInvalidState(t, s.CompleteSubmit("doc-2"))
	})

	t.Run("fail from idle", func(t *testing.T) {
		s := NewDocumentSession()
		assertInvalidState(t, s.FailSubmit())
	})

	t.Run("fail from ready", func(t *testing.T) {
		s := NewDocumentSession()
		s.BeginSubmit()
		s.CompleteSubmit("doc-1")
		assertInvalidState(t, s.FailSubmit())
	})
}

func TestSessionResetFromAnyState(t *testing.T) {
	for _, setup := range []struct {
		name string
		prep func(*DocumentSession)
	}{
		{"idle", func(s *DocumentSession) {}},
		{"submitting", func(s *DocumentSession) { s.BeginSubmit() }},
		{"ready", func(s *DocumentSession) { s.BeginSubmit(); s.CompleteSubmit("doc-1") }},
	} {
		t.Run(setup.name, func(t *testing.T) {
			s := NewDocumentSession()
			setup.prep(s)

			s.Reset()
			if got := s.Status(); got != StatusIdle {
				t.Errorf("status after Reset = %q, want %q", got, StatusIdle)
			}
			if _, ok := s.DocumentID(); ok {
				t.Error("reset session should have no document ID")
			}
		})
	}
}

func assertInvalidState(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected InvalidStateError, got nil")
	}
	var ise *InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InvalidStateError, got %T: %v", err, err)
	}
}
