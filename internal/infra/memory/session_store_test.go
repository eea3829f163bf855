package memory

import (
	"testing"

	"quiz-assessment-service/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	first := &app.Session{}
	if prev := store.Put("u1", first); prev != nil {
		t.Fatalf("expected no previous session")
	}
	if got, ok := store.Get("u1"); !ok || got != first {
		t.Fatalf("expected session present")
	}

	second := &app.Session{}
	if prev := store.Put("u1", second); prev != first {
		t.Fatalf("expected first session to be returned as replaced")
	}

	// stale delete must not drop the newer session
	store.Delete("u1", first)
	if _, ok := store.Get("u1"); !ok {
		t.Fatalf("expected newer session to survive stale delete")
	}

	store.Delete("u1", second)
	if _, ok := store.Get("u1"); ok {
		t.Fatalf("expected session removed")
	}
}
