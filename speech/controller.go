package speech

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/overlaykit/speechcore/chunk"
)

// Config holds playback controller tuning.
type Config struct {
	// MaxChunkLen bounds each chunk handed to the audio backend.
	MaxChunkLen int
	// PreviewTimeout bounds a voice preview utterance.
	PreviewTimeout time.Duration
}

// DefaultConfig returns sensible playback defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkLen:    chunk.DefaultSpeechMaxLen,
		PreviewTimeout: 10 * time.Second,
	}
}

// Controller is the single-session playback state machine. It splits text,
// drives chunk-by-chunk output through the configured backend, and exposes
// cancellation. Starting a new session unconditionally cancels the previous
// one; a continuation belonging to a stale session must no-op, which every
// loop here enforces by comparing the session against the current one before
// touching shared state.
type Controller struct {
	port     AudioOutputPort
	prefs    PreferencesPort
	splitter *chunk.Splitter
	config   Config
	logger   *log.Logger

	mu      sync.Mutex
	current *Session

	onStateChange func(SessionInfo)
	onChunkChange func(cursor int)
	onWord        func(wordIndex int)
	onError       func(err error)
}

// NewController creates a playback controller over the given backend.
func NewController(port AudioOutputPort, prefs PreferencesPort, cfg Config) *Controller {
	if cfg.MaxChunkLen <= 0 {
		cfg.MaxChunkLen = DefaultConfig().MaxChunkLen
	}
	if cfg.PreviewTimeout <= 0 {
		cfg.PreviewTimeout = DefaultConfig().PreviewTimeout
	}
	return &Controller{
		port:     port,
		prefs:    prefs,
		splitter: chunk.NewSplitter(chunk.SpeechBoundaries),
		config:   cfg,
		logger:   log.WithPrefix("speech"),
	}
}

// OnStateChange registers a callback for session state transitions.
func (c *Controller) OnStateChange(fn func(SessionInfo)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChange = fn
}

// OnChunkChange registers a callback fired when playback advances to a new
// chunk cursor.
func (c *Controller) OnChunkChange(fn func(cursor int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChunkChange = fn
}

// OnWord registers a callback for approximate word-highlight updates during
// local-engine playback.
func (c *Controller) OnWord(fn func(wordIndex int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onWord = fn
}

// OnError registers a callback for non-fatal playback errors.
func (c *Controller) OnError(fn func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// Speak starts reading text aloud. When muted it emits nothing and stays
// idle; that is a deliberate no-op, not an error. Any existing session is
// cancelled first.
func (c *Controller) Speak(text string) error {
	if c.prefs != nil && c.prefs.Muted() {
		return nil
	}
	if c.port == nil || !c.port.Available() {
		return ErrEngineUnavailable
	}

	chunks := c.splitter.Split(text, c.config.MaxChunkLen)
	if len(chunks) == 0 {
		return ErrEmptyText
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := newSession(chunks, c.port.Name(), cancel)

	c.mu.Lock()
	prevActive := false
	if prev := c.current; prev != nil && prev.machine.Current().Active() {
		prev.machine.Transition(StatusCancelled)
		if prev.cancel != nil {
			prev.cancel()
		}
		prevActive = true
	}
	c.current = sess
	sess.machine.Transition(StatusQueued)
	info := sess.info()
	c.mu.Unlock()

	if prevActive {
		c.port.Stop()
	}
	c.notifyState(info)

	go c.run(ctx, sess)
	return nil
}

// Stop cancels the current session, aborting any in-flight backend work. It
// is idempotent: calling it twice in a row, or before any Speak, is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	sess := c.current
	if sess == nil || !sess.machine.Current().Active() {
		c.mu.Unlock()
		return
	}
	sess.machine.Transition(StatusCancelled)
	if sess.cancel != nil {
		sess.cancel()
	}
	info := sess.info()
	c.mu.Unlock()

	c.port.Stop()
	c.notifyState(info)
}

// PreviewVoice plays a short sample with the current voice settings,
// bypassing the muted preference. This is the only path that produces
// output while muted.
func (c *Controller) PreviewVoice(sample string) error {
	if c.port == nil || !c.port.Available() {
		return ErrEngineUnavailable
	}
	if strings.TrimSpace(sample) == "" {
		return ErrEmptyText
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.config.PreviewTimeout)
	defer cancel()
	return c.port.PlayChunk(ctx, sample, c.speakOptions())
}

// Status returns the current session's status, or StatusIdle without one.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return StatusIdle
	}
	return c.current.machine.Current()
}

// Session returns a snapshot of the current session.
func (c *Controller) Session() SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return SessionInfo{Status: StatusIdle}
	}
	return c.current.info()
}

func (c *Controller) run(ctx context.Context, sess *Session) {
	c.mu.Lock()
	if c.current != sess || !sess.machine.Transition(StatusPlaying) {
		c.mu.Unlock()
		return
	}
	info := sess.info()
	caps := c.port.Capabilities()
	c.mu.Unlock()
	c.notifyState(info)

	var err error
	if caps.ChunkedPlayback {
		err = c.playChunked(ctx, sess)
	} else {
		err = c.playWhole(ctx, sess)
	}

	c.mu.Lock()
	if c.current != sess {
		c.mu.Unlock()
		return
	}
	status := StatusCompleted
	if err != nil {
		status = StatusError
	}
	if !sess.machine.Transition(status) {
		// Already cancelled; Stop reported that transition.
		c.mu.Unlock()
		return
	}
	info = sess.info()
	c.mu.Unlock()

	if err != nil {
		c.handleError(err)
	}
	c.notifyState(info)
}

// playChunked drives the remote mode: one chunk at a time, a staleness check
// before every continuation, failed chunks skipped.
func (c *Controller) playChunked(ctx context.Context, sess *Session) error {
	opts := c.speakOptions()
	for {
		c.mu.Lock()
		if c.current != sess || sess.machine.Current() != StatusPlaying {
			c.mu.Unlock()
			return nil
		}
		if sess.cursor >= len(sess.chunks) {
			c.mu.Unlock()
			return nil
		}
		current := sess.chunks[sess.cursor]
		c.mu.Unlock()

		if err := c.port.PlayChunk(ctx, current.Text, opts); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// A chunk that fails to produce audio is skipped, not fatal:
			// an incomplete read beats silence.
			c.logger.Warn("chunk skipped", "chunk", current.Index, "err", err)
			c.handleError(err)
		}

		c.mu.Lock()
		if c.current != sess {
			c.mu.Unlock()
			return nil
		}
		sess.cursor++
		cursor := sess.cursor
		total := len(sess.chunks)
		onChunk := c.onChunkChange
		c.mu.Unlock()

		if onChunk != nil && cursor < total {
			onChunk(cursor)
		}
	}
}

// playWhole drives the local mode: the full text in one engine call, with
// word-boundary events mapped onto the word list for highlighting.
func (c *Controller) playWhole(ctx context.Context, sess *Session) error {
	text := chunk.Join(sess.chunks)
	highlighter := NewHighlighter(text)

	boundary := func(offset int) {
		c.mu.Lock()
		stale := c.current != sess || sess.machine.Current() != StatusPlaying
		onWord := c.onWord
		c.mu.Unlock()
		if stale || onWord == nil {
			return
		}
		onWord(highlighter.WordAt(offset))
	}

	err := c.port.Speak(ctx, text, c.speakOptions(), boundary)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *Controller) speakOptions() SpeakOptions {
	opts := SpeakOptions{Rate: 1.0, Pitch: 1.0, Lang: "en"}
	if c.prefs != nil {
		opts.Rate = c.prefs.Rate()
		opts.Pitch = c.prefs.Pitch()
		opts.Voice = c.prefs.Voice()
		opts.Lang = c.prefs.ContentLanguage()
	}
	return opts
}

func (c *Controller) notifyState(info SessionInfo) {
	c.mu.Lock()
	fn := c.onStateChange
	c.mu.Unlock()
	if fn != nil {
		fn(info)
	}
}

func (c *Controller) handleError(err error) {
	c.mu.Lock()
	fn := c.onError
	c.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
