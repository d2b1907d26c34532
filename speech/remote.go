package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/overlaykit/speechcore/gateway"
	"github.com/overlaykit/speechcore/internal/cache"
)

// Caller issues one outbound request. *gateway.Client satisfies it; tests
// substitute canned responses.
type Caller interface {
	Do(ctx context.Context, spec gateway.RequestSpec) ([]byte, error)
}

// RemoteBackend drives the remote audio-generation service: one network
// round trip per chunk, yielding a fetchable audio resource the sink then
// plays to completion. Resolved audio locations are cached so repeated
// reads skip the service.
type RemoteBackend struct {
	endpoint string
	caller   Caller
	sink     AudioSink
	fallback LocalSpeechPort // optional per-chunk fallback
	cache    *cache.Manager  // optional
	logger   *log.Logger
}

// NewRemoteBackend creates a remote audio backend. fallback and cacheManager
// may be nil.
func NewRemoteBackend(endpoint string, caller Caller, sink AudioSink, fallback LocalSpeechPort, cacheManager *cache.Manager) *RemoteBackend {
	return &RemoteBackend{
		endpoint: endpoint,
		caller:   caller,
		sink:     sink,
		fallback: fallback,
		cache:    cacheManager,
		logger:   log.WithPrefix("speech"),
	}
}

// Name implements AudioOutputPort.
func (b *RemoteBackend) Name() string { return "remote" }

// Available implements AudioOutputPort.
func (b *RemoteBackend) Available() bool {
	return b.endpoint != "" && b.caller != nil && b.sink != nil
}

// Capabilities implements AudioOutputPort.
func (b *RemoteBackend) Capabilities() Capabilities {
	return Capabilities{ChunkedPlayback: true, RequiresNetwork: true}
}

// PlayChunk implements AudioOutputPort. A chunk the service cannot voice
// falls back to the local engine when one is present.
func (b *RemoteBackend) PlayChunk(ctx context.Context, text string, opts SpeakOptions) error {
	audioURL, err := b.resolveAudio(ctx, text, opts)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if b.fallback != nil && b.fallback.Available() {
			b.logger.Warn("remote audio failed, using local engine for chunk", "err", err)
			return b.fallback.Speak(ctx, text, opts, nil)
		}
		return err
	}
	return b.sink.PlayURL(ctx, audioURL)
}

// Speak implements AudioOutputPort. The remote service is chunk-oriented;
// a whole-text request is just one large chunk.
func (b *RemoteBackend) Speak(ctx context.Context, text string, opts SpeakOptions, _ func(int)) error {
	return b.PlayChunk(ctx, text, opts)
}

// Stop implements AudioOutputPort.
func (b *RemoteBackend) Stop() {
	if b.sink != nil {
		b.sink.Stop()
	}
}

// resolveAudio asks the service to generate audio for the chunk and returns
// the resource URL. Absence of a URL in the response signals failure.
func (b *RemoteBackend) resolveAudio(ctx context.Context, text string, opts SpeakOptions) (string, error) {
	rateKey := strconv.FormatFloat(opts.Rate, 'f', 2, 64)
	key := cache.Key("speech", text, opts.Lang, rateKey)
	if b.cache != nil {
		if cached, ok := b.cache.Get(key); ok {
			return string(cached), nil
		}
	}

	body, err := json.Marshal(map[string]any{
		"text": text,
		"lang": opts.Lang,
		"rate": opts.Rate,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	raw, err := b.caller.Do(ctx, gateway.RequestSpec{
		Method: http.MethodPost,
		URL:    b.endpoint,
		Body:   body,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoAudio, err)
	}
	if resp.URL == "" {
		return "", ErrNoAudio
	}

	if b.cache != nil {
		b.cache.Put(key, []byte(resp.URL)) //nolint:errcheck
	}
	return resp.URL, nil
}
