package translate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/overlaykit/speechcore/gateway"
)

// scriptedProvider succeeds or fails on parse according to ok.
type scriptedProvider struct {
	name  string
	ok    bool
	calls int
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) BuildRequest(text, source, target string) (gateway.RequestSpec, error) {
	return gateway.RequestSpec{Method: "POST", URL: "https://" + p.name, Body: []byte(text)}, nil
}

func (p *scriptedProvider) ParseResponse(raw []byte) (string, error) {
	p.calls++
	if !p.ok {
		return "", ErrEmptyResult
	}
	return p.name + ":" + string(raw), nil
}

// echoCaller returns the request body unchanged.
type echoCaller struct {
	calls int
	err   error
}

func (c *echoCaller) Do(_ context.Context, spec gateway.RequestSpec) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return spec.Body, nil
}

func TestTranslateChunkAllProviderCombinations(t *testing.T) {
	// Every success/failure pattern across a three-provider list: the
	// first succeeding provider wins, and only the all-fail pattern
	// exhausts the waterfall.
	for mask := 0; mask < 8; mask++ {
		t.Run(fmt.Sprintf("pattern_%03b", mask), func(t *testing.T) {
			providers := make([]Provider, 3)
			scripted := make([]*scriptedProvider, 3)
			firstOK := -1
			for i := 0; i < 3; i++ {
				ok := mask&(1<<i) != 0
				if ok && firstOK == -1 {
					firstOK = i
				}
				scripted[i] = &scriptedProvider{name: fmt.Sprintf("p%d", i), ok: ok}
				providers[i] = scripted[i]
			}

			w := NewWaterfall(&echoCaller{}, providers)
			got, err := w.TranslateChunk(context.Background(), "hi", "en", "fr")

			if firstOK == -1 {
				if !errors.Is(err, ErrAllProvidersExhausted) {
					t.Fatalf("error = %v, want ErrAllProvidersExhausted", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TranslateChunk() error = %v", err)
			}
			if want := fmt.Sprintf("p%d:hi", firstOK); got != want {
				t.Errorf("result = %q, want %q", got, want)
			}
			// Providers after the winner are never consulted.
			for i := firstOK + 1; i < 3; i++ {
				if scripted[i].calls != 0 {
					t.Errorf("provider p%d parsed %d responses, want 0", i, scripted[i].calls)
				}
			}
		})
	}
}

func TestTranslateChunkSkipsFailedCalls(t *testing.T) {
	// First provider's transport call fails; second provider still runs.
	failing := &scriptedProvider{name: "a", ok: true}
	healthy := &scriptedProvider{name: "b", ok: true}

	caller := &callerFailFirst{}
	w := NewWaterfall(caller, []Provider{failing, healthy})

	got, err := w.TranslateChunk(context.Background(), "x", "en", "de")
	if err != nil {
		t.Fatalf("TranslateChunk() error = %v", err)
	}
	if got != "b:x" {
		t.Errorf("result = %q, want %q", got, "b:x")
	}
	if caller.calls != 2 {
		t.Errorf("caller attempts = %d, want 2", caller.calls)
	}
}

type callerFailFirst struct {
	calls int
}

func (c *callerFailFirst) Do(_ context.Context, spec gateway.RequestSpec) ([]byte, error) {
	c.calls++
	if c.calls == 1 {
		return nil, errors.New("connection refused")
	}
	return spec.Body, nil
}

func TestTranslateChunkCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	caller := &echoCaller{}
	w := NewWaterfall(caller, []Provider{&scriptedProvider{name: "a", ok: true}})

	_, err := w.TranslateChunk(ctx, "x", "en", "de")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if caller.calls != 0 {
		t.Errorf("caller attempts = %d, want 0", caller.calls)
	}
}

func TestTranslateChunkNoProviders(t *testing.T) {
	w := NewWaterfall(&echoCaller{}, nil)
	_, err := w.TranslateChunk(context.Background(), "x", "en", "de")
	if !errors.Is(err, ErrAllProvidersExhausted) {
		t.Fatalf("error = %v, want ErrAllProvidersExhausted", err)
	}
}
