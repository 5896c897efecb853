package session

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestTokenAbsentOnFreshStore(t *testing.T) {
	s, _ := openTestStore(t)

	token, err := s.Token()
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token != "" {
		t.Fatalf("fresh store returned token %q, want empty", token)
	}
}

func TestSetTokenOverwrites(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.SetToken("first"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := s.SetToken("second"); err != nil {
		t.Fatalf("overwrite token: %v", err)
	}

	token, err := s.Token()
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token != "second" {
		t.Fatalf("got token %q, want %q", token, "second")
	}
}

func TestClearRemovesToken(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.SetToken("tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	token, err := s.Token()
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token != "" {
		t.Fatalf("cleared store returned token %q, want empty", token)
	}

	// clearing an already empty store is fine
	if err := s.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestTokenSurvivesReopen(t *testing.T) {
	s, path := openTestStore(t)

	if err := s.SetToken("persisted"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	token, err := reopened.Token()
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if token != "persisted" {
		t.Fatalf("got token %q after reopen, want %q", token, "persisted")
	}
}
