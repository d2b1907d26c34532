package translate

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/overlaykit/speechcore/gateway"
)

// Caller issues one outbound request. *gateway.Client satisfies it; tests
// substitute canned responses.
type Caller interface {
	Do(ctx context.Context, spec gateway.RequestSpec) ([]byte, error)
}

// Waterfall tries providers in fixed priority order until one yields a
// translation. Per-provider retry lives in the gateway; the waterfall only
// escalates across providers. Order is not adaptive.
type Waterfall struct {
	caller    Caller
	providers []Provider
	logger    *log.Logger
}

// NewWaterfall creates a waterfall over the given providers.
func NewWaterfall(caller Caller, providers []Provider) *Waterfall {
	return &Waterfall{
		caller:    caller,
		providers: providers,
		logger:    log.WithPrefix("translate"),
	}
}

// TranslateChunk translates a single chunk. It returns the first provider's
// non-empty parsed translation, or ErrAllProvidersExhausted when every
// provider failed. Caller cancellation stops the waterfall immediately.
func (w *Waterfall) TranslateChunk(ctx context.Context, text, source, target string) (string, error) {
	for _, provider := range w.providers {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		spec, err := provider.BuildRequest(text, source, target)
		if err != nil {
			w.logger.Warn("provider request build failed", "provider", provider.Name(), "err", err)
			continue
		}

		raw, err := w.caller.Do(ctx, spec)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			w.logger.Warn("provider call failed", "provider", provider.Name(), "err", err)
			continue
		}

		translated, err := provider.ParseResponse(raw)
		if err != nil {
			w.logger.Warn("provider response rejected", "provider", provider.Name(), "err", err)
			continue
		}
		return translated, nil
	}

	return "", ErrAllProvidersExhausted
}
