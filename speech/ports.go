// Package speech drives chunk-by-chunk audio output for page text through
// interchangeable audio backends, with a single cancellable session at a
// time.
package speech

import "context"

// PreferencesPort exposes the host's persisted playback preferences. This
// core reads it and never mutates it.
type PreferencesPort interface {
	Rate() float64            // Speech rate multiplier (1.0 = normal)
	Pitch() float64           // Pitch adjustment
	Voice() string            // Voice identifier
	Muted() bool              // Suppresses all audio output except preview
	ContentLanguage() string  // Language of the page content
}

// SpeakOptions carries the per-utterance settings handed to a backend.
type SpeakOptions struct {
	Rate  float64
	Pitch float64
	Voice string
	Lang  string
}

// LocalSpeechPort is the host's in-process synthesis capability.
type LocalSpeechPort interface {
	// Available probes whether local synthesis can be used right now.
	Available() bool

	// Speak synthesizes the whole text, returning when output finishes or
	// ctx is cancelled. When the engine reports word boundaries, boundary
	// is invoked with the rune offset of each word as it is reached; pass
	// nil to skip boundary reporting.
	Speak(ctx context.Context, text string, opts SpeakOptions, boundary func(offset int)) error

	// Cancel halts any in-progress synthesis immediately.
	Cancel()
}

// Capabilities describes how a backend wants to be driven.
type Capabilities struct {
	ChunkedPlayback bool // Chunk-at-a-time playback with a network round trip per chunk
	WordBoundaries  bool // Reports word offsets during playback
	RequiresNetwork bool
}

// AudioOutputPort produces audible output. The controller is agnostic to
// which implementation is active; Capabilities selects the driving mode.
type AudioOutputPort interface {
	// Name identifies the backend in logs and session info.
	Name() string

	// Available reports whether the backend can produce output.
	Available() bool

	// Capabilities returns the backend's driving mode.
	Capabilities() Capabilities

	// Speak plays a full text in one call (local-engine mode).
	Speak(ctx context.Context, text string, opts SpeakOptions, boundary func(offset int)) error

	// PlayChunk plays one chunk to completion (remote mode).
	PlayChunk(ctx context.Context, text string, opts SpeakOptions) error

	// Stop halts any in-progress output.
	Stop()
}

// AudioSink plays a fetched audio resource to completion. The host supplies
// it (an audio element, a file writer, a device player).
type AudioSink interface {
	PlayURL(ctx context.Context, url string) error
	Stop()
}

// StaticPreferences is a fixed, in-memory PreferencesPort implementation.
type StaticPreferences struct {
	SpeechRate  float64
	SpeechPitch float64
	VoiceID     string
	Mute        bool
	Language    string
}

// Rate implements PreferencesPort.
func (p *StaticPreferences) Rate() float64 {
	if p.SpeechRate == 0 {
		return 1.0
	}
	return p.SpeechRate
}

// Pitch implements PreferencesPort.
func (p *StaticPreferences) Pitch() float64 {
	if p.SpeechPitch == 0 {
		return 1.0
	}
	return p.SpeechPitch
}

// Voice implements PreferencesPort.
func (p *StaticPreferences) Voice() string { return p.VoiceID }

// Muted implements PreferencesPort.
func (p *StaticPreferences) Muted() bool { return p.Mute }

// ContentLanguage implements PreferencesPort.
func (p *StaticPreferences) ContentLanguage() string {
	if p.Language == "" {
		return "en"
	}
	return p.Language
}
