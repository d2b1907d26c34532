package speech

// Status represents the state of a speech session.
type Status int

const (
	// StatusIdle indicates no speech activity.
	StatusIdle Status = iota
	// StatusQueued indicates a session has been created and chunked.
	StatusQueued
	// StatusPlaying indicates audio output is in progress.
	StatusPlaying
	// StatusCancelled indicates the session was stopped or replaced.
	StatusCancelled
	// StatusCompleted indicates every chunk finished playing.
	StatusCompleted
	// StatusError indicates the session failed.
	StatusError
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusQueued:
		return "queued"
	case StatusPlaying:
		return "playing"
	case StatusCancelled:
		return "cancelled"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal returns true for states a session never leaves. A new speak call
// replaces the session rather than reviving it.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusError
}

// Active returns true while a session still owns the audio output.
func (s Status) Active() bool {
	return s == StatusQueued || s == StatusPlaying
}

// StateMachine guards session status transitions.
type StateMachine struct {
	current     Status
	transitions map[Status][]Status
}

// NewStateMachine creates a state machine starting at StatusIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StatusIdle,
		transitions: map[Status][]Status{
			StatusIdle:      {StatusQueued},
			StatusQueued:    {StatusPlaying, StatusCancelled, StatusError},
			StatusPlaying:   {StatusCompleted, StatusCancelled, StatusError},
			StatusCancelled: {},
			StatusCompleted: {},
			StatusError:     {},
		},
	}
}

// Transition attempts to move to the given status and reports whether the
// move was legal.
func (m *StateMachine) Transition(to Status) bool {
	for _, allowed := range m.transitions[m.current] {
		if allowed == to {
			m.current = to
			return true
		}
	}
	return false
}

// Current returns the current status.
func (m *StateMachine) Current() Status {
	return m.current
}
