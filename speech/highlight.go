package speech

import "strings"

// Highlighter maps engine-reported character offsets onto the spoken text's
// word list so the host can highlight the word being read. The mapping is
// proportional (offset over total length scaled to the word count), not an
// exact alignment: engines report offsets against their own view of the
// text, which may drift from ours.
type Highlighter struct {
	words []string
	total int
}

// NewHighlighter prepares a highlighter for the given text.
func NewHighlighter(text string) *Highlighter {
	return &Highlighter{
		words: strings.Fields(text),
		total: len([]rune(text)),
	}
}

// Words returns the pre-split word list.
func (h *Highlighter) Words() []string {
	return h.words
}

// WordAt returns the approximate word index for a reported rune offset,
// clamped to the word list's bounds.
func (h *Highlighter) WordAt(offset int) int {
	if len(h.words) == 0 || h.total == 0 {
		return 0
	}
	if offset <= 0 {
		return 0
	}
	if offset >= h.total {
		return len(h.words) - 1
	}

	idx := offset * len(h.words) / h.total
	if idx >= len(h.words) {
		idx = len(h.words) - 1
	}
	return idx
}
