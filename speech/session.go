package speech

import (
	"context"

	"github.com/google/uuid"

	"github.com/overlaykit/speechcore/chunk"
)

// Session is the live, cancellable unit of one speak operation. At most one
// session is current process-wide; creating a new one discards the previous
// session's identity, and any continuation still holding the old session
// must no-op when it resumes. Fields are guarded by the controller's mutex.
type Session struct {
	id      uuid.UUID
	chunks  []chunk.Chunk
	backend string
	machine *StateMachine
	cursor  int
	cancel  context.CancelFunc
}

func newSession(chunks []chunk.Chunk, backend string, cancel context.CancelFunc) *Session {
	return &Session{
		id:      uuid.New(),
		chunks:  chunks,
		backend: backend,
		machine: NewStateMachine(),
		cancel:  cancel,
	}
}

// SessionInfo is a point-in-time snapshot of a session, safe to hand out.
type SessionInfo struct {
	ID          uuid.UUID
	Status      Status
	Cursor      int
	TotalChunks int
	Backend     string
}

func (s *Session) info() SessionInfo {
	return SessionInfo{
		ID:          s.id,
		Status:      s.machine.Current(),
		Cursor:      s.cursor,
		TotalChunks: len(s.chunks),
		Backend:     s.backend,
	}
}
