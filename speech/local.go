package speech

import "context"

// LocalBackend adapts the host's in-process synthesis engine to the
// AudioOutputPort. It hands the full text to the engine in one call and
// relays word-boundary events for highlighting.
type LocalBackend struct {
	port LocalSpeechPort
}

// NewLocalBackend wraps a local speech port.
func NewLocalBackend(port LocalSpeechPort) *LocalBackend {
	return &LocalBackend{port: port}
}

// Name implements AudioOutputPort.
func (b *LocalBackend) Name() string { return "local" }

// Available implements AudioOutputPort.
func (b *LocalBackend) Available() bool {
	return b.port != nil && b.port.Available()
}

// Capabilities implements AudioOutputPort.
func (b *LocalBackend) Capabilities() Capabilities {
	return Capabilities{WordBoundaries: true}
}

// Speak implements AudioOutputPort.
func (b *LocalBackend) Speak(ctx context.Context, text string, opts SpeakOptions, boundary func(int)) error {
	if b.port == nil {
		return ErrEngineUnavailable
	}
	return b.port.Speak(ctx, text, opts, boundary)
}

// PlayChunk implements AudioOutputPort. The local engine has no per-chunk
// network cost, so a chunk is just a short Speak.
func (b *LocalBackend) PlayChunk(ctx context.Context, text string, opts SpeakOptions) error {
	return b.Speak(ctx, text, opts, nil)
}

// Stop implements AudioOutputPort.
func (b *LocalBackend) Stop() {
	if b.port != nil {
		b.port.Cancel()
	}
}
