// Package chunk splits unbounded text into bounded, ordered segments,
// preferring linguistic boundaries over hard length cuts.
package chunk

import (
	"strings"
	"unicode"
)

// Default window sizes. Speech uses a smaller window than translation so
// local synthesis engines receive utterance-sized pieces.
const (
	DefaultSpeechMaxLen      = 200
	DefaultTranslationMaxLen = 500
)

// Chunk is a bounded-length, order-indexed segment of a larger text.
// Index ordering is the contract: indices are contiguous from 0 and
// consumers rely on them never being reordered.
type Chunk struct {
	Index int    // Position in the original text (0-based, contiguous)
	Text  string // Segment content
	Sep   string // Whitespace consumed between this chunk and the next
}

// BoundaryPolicy selects which breakpoints the splitter prefers.
type BoundaryPolicy int

const (
	// SpeechBoundaries cuts at sentence-terminating punctuation only.
	SpeechBoundaries BoundaryPolicy = iota
	// TranslationBoundaries additionally treats paragraph/newline breaks
	// and mid-sentence clause punctuation as preferred cut points.
	TranslationBoundaries
)

// String returns the string representation of the policy.
func (p BoundaryPolicy) String() string {
	switch p {
	case SpeechBoundaries:
		return "speech"
	case TranslationBoundaries:
		return "translation"
	default:
		return "unknown"
	}
}

// Splitter produces ordered chunks using one boundary policy.
type Splitter struct {
	policy BoundaryPolicy
}

// NewSplitter creates a splitter for the given boundary policy.
func NewSplitter(policy BoundaryPolicy) *Splitter {
	return &Splitter{policy: policy}
}

// Policy returns the splitter's boundary policy.
func (s *Splitter) Policy() BoundaryPolicy {
	return s.policy
}

// Normalize collapses whitespace ahead of splitting. The speech policy
// flattens all whitespace to single spaces; the translation policy keeps
// newline structure so paragraph breaks survive as cut points.
func (s *Splitter) Normalize(text string) string {
	if s.policy == SpeechBoundaries {
		return strings.Join(strings.Fields(text), " ")
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			// Collapse runs of blank lines to a single paragraph break.
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	// Drop a trailing paragraph break.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// Split breaks text into chunks of at most maxLen runes each. While the
// remainder exceeds maxLen it takes a window of maxLen runes and scans
// backward for the last preferred boundary; if one lies past the window's
// midpoint the cut lands there (inclusive of the terminator), otherwise the
// cut falls back to the last whitespace in the window. A single token longer
// than maxLen is emitted whole, never truncated.
func (s *Splitter) Split(text string, maxLen int) []Chunk {
	if maxLen <= 0 {
		if s.policy == SpeechBoundaries {
			maxLen = DefaultSpeechMaxLen
		} else {
			maxLen = DefaultTranslationMaxLen
		}
	}

	runes := []rune(s.Normalize(text))
	var chunks []Chunk

	for len(runes) > maxLen {
		cut := s.findCut(runes[:maxLen])
		if cut <= 0 {
			// No boundary and no whitespace in the window: the window sits
			// inside one oversized token. Extend to the token's end.
			cut = maxLen
			for cut < len(runes) && !unicode.IsSpace(runes[cut]) {
				cut++
			}
		}

		// The whitespace run around the cut is the separator; it is kept on
		// the chunk so Join can restore paragraph breaks exactly.
		end := cut
		for end > 0 && unicode.IsSpace(runes[end-1]) {
			end--
		}
		for cut < len(runes) && unicode.IsSpace(runes[cut]) {
			cut++
		}

		if end > 0 {
			chunks = append(chunks, Chunk{
				Index: len(chunks),
				Text:  string(runes[:end]),
				Sep:   string(runes[end:cut]),
			})
		}
		runes = runes[cut:]
	}

	if rest := strings.TrimSpace(string(runes)); rest != "" {
		chunks = append(chunks, Chunk{Index: len(chunks), Text: rest})
	}
	return chunks
}

// findCut returns the rune index to cut the window at, or -1 when the window
// contains neither a usable boundary nor whitespace.
func (s *Splitter) findCut(window []rune) int {
	mid := len(window) / 2

	// Boundary tiers in preference order. Within a tier the last boundary
	// past the midpoint wins; a lower tier is consulted only when a higher
	// one has no qualifying cut.
	for _, boundary := range s.boundaryTiers() {
		for i := len(window) - 1; i > mid; i-- {
			if boundary(window[i]) {
				return i + 1 // inclusive of the terminator
			}
		}
	}

	// No linguistic boundary past the midpoint: hard-cut at the last
	// whitespace so tokens stay intact.
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}
	return -1
}

func (s *Splitter) boundaryTiers() []func(rune) bool {
	sentence := func(r rune) bool {
		return r == '.' || r == '?' || r == '!'
	}
	if s.policy == SpeechBoundaries {
		return []func(rune) bool{sentence}
	}
	paragraph := func(r rune) bool { return r == '\n' }
	clause := func(r rune) bool {
		return r == ',' || r == ';' || r == ':'
	}
	return []func(rune) bool{paragraph, sentence, clause}
}

// Join reassembles chunk texts with their recorded separators, reproducing
// the normalized source exactly under either policy. Chunks built by hand
// without a separator fall back to a single space.
func Join(chunks []Chunk) string {
	var b strings.Builder
	for i, c := range chunks {
		b.WriteString(c.Text)
		if i == len(chunks)-1 {
			break
		}
		if c.Sep != "" {
			b.WriteString(c.Sep)
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}
