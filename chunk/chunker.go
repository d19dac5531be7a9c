package chunk

import (
	"strings"
	"unicode/utf8"

	"github.com/poiesic/jobdex/core"
)

// Config tunes the content chunker. All sizes are in bytes of UTF-8 text.
type Config struct {
	// Size is the target chunk size.
	Size int
	// Overlap is how many bytes each chunk shares with its predecessor.
	Overlap int
	// Tolerance is the window around the target size within which the
	// chunker prefers a paragraph or sentence boundary over a hard cut.
	Tolerance int
}

// DefaultConfig returns chunking defaults sized for embedding input.
func DefaultConfig() Config {
	return Config{Size: 1200, Overlap: 200, Tolerance: 200}
}

// Chunker splits document text into overlapping, bounded-size chunks.
//
// Chunking is deterministic: identical text and configuration always
// produce identical chunks, so re-chunking does not invalidate embeddings
// keyed by chunk content hash.
type Chunker struct {
	cfg Config
}

// New creates a chunker, validating the configuration.
func New(cfg Config) (*Chunker, error) {
	if cfg.Size <= 0 {
		return nil, ErrInvalidSize
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		return nil, ErrInvalidOverlap
	}
	if cfg.Tolerance < 0 || cfg.Tolerance >= cfg.Size {
		return nil, ErrInvalidTolerance
	}
	return &Chunker{cfg: cfg}, nil
}

// Chunk splits text by greedy forward scanning. Within the tolerance
// window around the target size it prefers, in order: a paragraph break,
// a sentence break, a line break; otherwise it cuts at the target size
// (adjusted to a rune boundary). The ordered union of the returned spans
// covers the entire text with no gaps, and no chunk exceeds
// Size+Tolerance bytes unless a single rune is wider than the target.
func (c *Chunker) Chunk(documentId core.ID, text string) []core.ContentChunk {
	if text == "" {
		return nil
	}

	var chunks []core.ContentChunk
	start := 0
	index := 0

	for start < len(text) {
		end := c.cutPoint(text, start)

		span := text[start:end]
		overlap := 0
		if index > 0 {
			overlap = chunks[index-1].End - start
		}
		chunks = append(chunks, core.ContentChunk{
			DocumentId:  documentId,
			Index:       index,
			Start:       start,
			End:         end,
			Text:        span,
			ContentHash: core.HashContent(span),
			Overlap:     overlap,
		})
		index++

		if end == len(text) {
			break
		}

		next := alignRuneStart(text, end-c.cfg.Overlap)
		if next <= start {
			// Overlap must never stall the scan: advance by one full
			// rune so alignment cannot move the start back again.
			_, width := utf8.DecodeRuneInString(text[start:])
			next = start + width
		}
		start = next
	}

	return chunks
}

// cutPoint picks the end offset for a chunk starting at start.
func (c *Chunker) cutPoint(text string, start int) int {
	target := start + c.cfg.Size
	if target >= len(text) {
		return len(text)
	}

	lo := target - c.cfg.Tolerance
	if lo <= start {
		lo = start + 1
	}
	hi := target + c.cfg.Tolerance
	if hi > len(text) {
		hi = len(text)
	}

	window := text[lo:hi]
	for _, boundary := range []string{"\n\n", ". ", "! ", "? ", "\n"} {
		if i := strings.LastIndex(window, boundary); i >= 0 {
			// Cut after the boundary so the separator stays with the
			// preceding chunk.
			return lo + i + len(boundary)
		}
	}

	end := alignRuneStart(text, target)
	if end <= start {
		// The target falls inside the first rune. Keep the rune whole
		// even if that exceeds the target size.
		_, width := utf8.DecodeRuneInString(text[start:])
		end = start + width
	}
	return end
}

// alignRuneStart moves offset back to the nearest UTF-8 rune start so a
// cut never splits a multi-byte character.
func alignRuneStart(text string, offset int) int {
	for offset > 0 && offset < len(text) && !utf8.RuneStart(text[offset]) {
		offset--
	}
	return offset
}
