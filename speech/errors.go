package speech

import "errors"

// Common errors for the speech pipeline.
var (
	// ErrEngineUnavailable means neither a local nor a remote speech
	// capability is present.
	ErrEngineUnavailable = errors.New("no speech engine available")
	// ErrNoAudio means the remote backend produced no playable audio for
	// a chunk.
	ErrNoAudio = errors.New("backend produced no audio")
	// ErrEmptyText means there was nothing to speak.
	ErrEmptyText = errors.New("nothing to speak")
)
