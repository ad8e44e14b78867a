package media

import (
	"io"
	"os"
	"testing"
)

func TestRecorder_SessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	recorder := NewRecorder(store)

	session, err := recorder.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := session.Write([]byte("chunk-1")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := session.Write([]byte("chunk-2")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	found, err := recorder.Session(session.ID)
	if err != nil || found != session {
		t.Fatalf("Session() = %v, %v", found, err)
	}

	ref, err := recorder.Stop(session)
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if !ref.IsLocal() {
		t.Fatalf("Stop() returned non-local ref %v", ref)
	}

	rc, err := store.Open(ref.Path())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "chunk-1chunk-2" {
		t.Errorf("recording content = %q", data)
	}

	if _, err := recorder.Session(session.ID); err == nil {
		t.Error("Session() still resolves after Stop()")
	}
	if _, err := session.Write([]byte("late")); err == nil {
		t.Error("Write() accepted data after Stop()")
	}
	if _, err := recorder.Stop(session); err == nil {
		t.Error("Stop() succeeded twice")
	}
}

func TestRecorder_Discard(t *testing.T) {
	store := newTestStore(t)
	recorder := NewRecorder(store)

	session, err := recorder.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := session.Write([]byte("abandoned")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := recorder.Discard(session); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}

	if _, err := os.Stat(session.path); !os.IsNotExist(err) {
		t.Errorf("staging file survived Discard(): %v", err)
	}
	if _, err := recorder.Session(session.ID); err == nil {
		t.Error("Session() still resolves after Discard()")
	}
}

func TestRecorder_ConcurrentSessions(t *testing.T) {
	store := newTestStore(t)
	recorder := NewRecorder(store)

	a, err := recorder.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	b, err := recorder.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if a.ID == b.ID {
		t.Fatal("Start() reused a session ID")
	}

	a.Write([]byte("aaa"))
	b.Write([]byte("bbb"))

	refA, err := recorder.Stop(a)
	if err != nil {
		t.Fatalf("Stop(a) error = %v", err)
	}
	refB, err := recorder.Stop(b)
	if err != nil {
		t.Fatalf("Stop(b) error = %v", err)
	}

	if refA.Path() == refB.Path() {
		t.Error("sessions share a staging file")
	}
}
