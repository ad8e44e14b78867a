package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"notemap-server/internal/domain"

	"github.com/google/uuid"
)

// Recorder accepts voice recordings pushed in chunks. Each call to Start
// returns an independent session; nothing is shared between sessions, so any
// number can be live at once.
type Recorder struct {
	staging *StagingStore

	mu       sync.Mutex
	sessions map[string]*RecordingSession
}

func NewRecorder(staging *StagingStore) *Recorder {
	return &Recorder{
		staging:  staging,
		sessions: make(map[string]*RecordingSession),
	}
}

// RecordingSession is one in-progress voice recording backed by a staging
// file. It is finalized by Recorder.Stop or abandoned by Discard.
type RecordingSession struct {
	ID   string
	path string

	mu     sync.Mutex
	file   *os.File
	closed bool
}

func (r *Recorder) Start() (*RecordingSession, error) {
	id := uuid.New().String()
	path := filepath.Join(r.staging.dir, id+".m4a")

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to start recording session: %w", err)
	}

	session := &RecordingSession{
		ID:   id,
		path: path,
		file: f,
	}

	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()

	return session, nil
}

// Session looks up a live session by id.
func (r *Recorder) Session(id string) (*RecordingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no recording session %s", id)
	}
	return session, nil
}

// Stop finalizes the session and returns the local reference for the
// recorded clip. The session is no longer usable afterwards.
func (r *Recorder) Stop(session *RecordingSession) (domain.AssetRef, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return domain.AssetRef{}, fmt.Errorf("recording session %s already stopped", session.ID)
	}
	session.closed = true

	r.mu.Lock()
	delete(r.sessions, session.ID)
	r.mu.Unlock()

	if err := session.file.Close(); err != nil {
		os.Remove(session.path)
		return domain.AssetRef{}, fmt.Errorf("failed to finalize recording: %w", err)
	}

	return domain.LocalRef(session.path), nil
}

// Discard abandons the session and removes its staging file.
func (r *Recorder) Discard(session *RecordingSession) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return nil
	}
	session.closed = true

	r.mu.Lock()
	delete(r.sessions, session.ID)
	r.mu.Unlock()

	session.file.Close()
	return os.Remove(session.path)
}

// Write appends a chunk of audio to the session.
func (s *RecordingSession) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("recording session %s is closed", s.ID)
	}
	return s.file.Write(p)
}
