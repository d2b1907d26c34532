package translate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/overlaykit/speechcore/chunk"
	"github.com/overlaykit/speechcore/internal/cache"
)

// ChunkTranslator translates one chunk through the provider waterfall.
// *Waterfall satisfies it.
type ChunkTranslator interface {
	TranslateChunk(ctx context.Context, text, source, target string) (string, error)
}

// Config holds orchestrator tuning.
type Config struct {
	// ChunkThreshold is the text length (runes) under which the whole text
	// is treated as a single chunk.
	ChunkThreshold int
	// MaxChunkLen bounds each chunk produced by the splitter.
	MaxChunkLen int
}

// DefaultConfig returns defaults sized for free translation services.
func DefaultConfig() Config {
	return Config{
		ChunkThreshold: chunk.DefaultTranslationMaxLen,
		MaxChunkLen:    chunk.DefaultTranslationMaxLen,
	}
}

// Orchestrator splits long text and translates it chunk by chunk, strictly
// sequentially, reassembling results in original order. Sequential
// processing is deliberate: it bounds load on free services and makes
// ordering trivial, at the cost of latency.
type Orchestrator struct {
	translator ChunkTranslator
	splitter   *chunk.Splitter
	cache      *cache.Manager
	config     Config
	logger     *log.Logger

	mu         sync.Mutex
	current    uuid.UUID
	onStarted  func(target string)
	onFinished func(target string, err error)
}

// NewOrchestrator creates a translation orchestrator. The cache manager may
// be nil to disable chunk result caching.
func NewOrchestrator(translator ChunkTranslator, cacheManager *cache.Manager, cfg Config) *Orchestrator {
	if cfg.ChunkThreshold <= 0 {
		cfg.ChunkThreshold = DefaultConfig().ChunkThreshold
	}
	if cfg.MaxChunkLen <= 0 {
		cfg.MaxChunkLen = DefaultConfig().MaxChunkLen
	}
	return &Orchestrator{
		translator: translator,
		splitter:   chunk.NewSplitter(chunk.TranslationBoundaries),
		cache:      cacheManager,
		config:     cfg,
		logger:     log.WithPrefix("translate"),
	}
}

// OnStarted registers a callback fired when a translation request begins.
func (o *Orchestrator) OnStarted(fn func(target string)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onStarted = fn
}

// OnFinished registers a callback fired when the current translation request
// finishes; err is non-nil on failure. A request that has been superseded by
// a newer one does not fire it.
func (o *Orchestrator) OnFinished(fn func(target string, err error)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onFinished = fn
}

// Translate translates text from source to target. Any chunk exhausting all
// providers fails the whole request: no partial translations are returned.
// Requests issued in rapid succession are not cancelled by newer ones, but
// only the current request's completion fires the finished notification.
func (o *Orchestrator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	id := uuid.New()
	o.mu.Lock()
	o.current = id
	started := o.onStarted
	o.mu.Unlock()
	if started != nil {
		started(target)
	}

	result, err := o.translateChunks(ctx, text, source, target)

	// Staleness check: a superseded request must not speak for the current
	// one. Its result is still returned to its own caller.
	o.mu.Lock()
	stale := o.current != id
	finished := o.onFinished
	o.mu.Unlock()
	if finished != nil && !stale {
		finished(target, err)
	}
	return result, err
}

func (o *Orchestrator) translateChunks(ctx context.Context, text, source, target string) (string, error) {
	var chunks []chunk.Chunk
	if len([]rune(text)) <= o.config.ChunkThreshold {
		chunks = []chunk.Chunk{{Index: 0, Text: o.splitter.Normalize(text)}}
	} else {
		chunks = o.splitter.Split(text, o.config.MaxChunkLen)
	}
	if len(chunks) == 0 {
		return "", ErrEmptyText
	}

	results := make([]string, len(chunks))
	for i, ch := range chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		key := cache.Key("translate", ch.Text, source, target)
		if o.cache != nil {
			if cached, ok := o.cache.Get(key); ok {
				results[i] = string(cached)
				continue
			}
		}

		// Strictly sequential: chunk i+1 starts only after chunk i resolved.
		translated, err := o.translator.TranslateChunk(ctx, ch.Text, source, target)
		if err != nil {
			o.logger.Warn("translation aborted", "chunk", ch.Index, "of", len(chunks), "err", err)
			return "", fmt.Errorf("chunk %d: %w", ch.Index, err)
		}
		if o.cache != nil {
			o.cache.Put(key, []byte(translated)) //nolint:errcheck
		}
		results[i] = translated
	}

	return strings.Join(results, " "), nil
}
