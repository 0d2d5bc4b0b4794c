// Package chunker splits document text into overlapping, sentence-aware chunks.
package chunker

import (
	"fmt"
	"strings"

	"github.com/ternarybob/docqa/internal/common"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// sentenceBoundaryRatio is how far into a window a sentence end must sit
// before the chunk is cut there instead of at the hard boundary.
const sentenceBoundaryRatio = 0.5

// Segment is an emitted chunk with its rune offsets into the normalized text.
// Start and End bound the untrimmed span; Text is trimmed.
type Segment struct {
	Text  string
	Start int
	End   int
}

// Chunker holds validated chunking options.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. Invalid options are a *common.ConfigurationError.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 {
		return nil, &common.ConfigurationError{
			Field:  "chunk_size",
			Reason: fmt.Sprintf("must be positive, got %d", c.chunkSize),
		}
	}
	if c.overlap < 0 {
		return nil, &common.ConfigurationError{
			Field:  "chunk_overlap",
			Reason: fmt.Sprintf("must not be negative, got %d", c.overlap),
		}
	}
	if c.overlap >= c.chunkSize {
		return nil, &common.ConfigurationError{
			Field:  "chunk_overlap",
			Reason: fmt.Sprintf("overlap %d must be smaller than chunk size %d", c.overlap, c.chunkSize),
		}
	}

	return c, nil
}

// Chunk splits text with the given options.
func Chunk(text string, chunkSize, overlap int) ([]string, error) {
	c, err := New(WithChunkSize(chunkSize), WithOverlap(overlap))
	if err != nil {
		return nil, err
	}
	return c.Chunk(text), nil
}

// Chunk returns the chunk texts for text.
func (c *Chunker) Chunk(text string) []string {
	segments := c.Split(text)
	if len(segments) == 0 {
		return nil
	}
	chunks := make([]string, len(segments))
	for i, seg := range segments {
		chunks[i] = seg.Text
	}
	return chunks
}

// Split returns the chunks of text with their offsets into Normalize(text).
func (c *Chunker) Split(text string) []Segment {
	runes := []rune(Normalize(text))
	n := len(runes)
	if n == 0 {
		return nil
	}
	if n <= c.chunkSize {
		return []Segment{{Text: string(runes), Start: 0, End: n}}
	}

	segments := make([]Segment, 0, n/(c.chunkSize-c.overlap)+1)
	start := 0
	for start < n {
		end := start + c.chunkSize
		cut := end
		if end >= n {
			cut = n
		} else if lb := lastSentenceEnd(runes[start:end]); lb >= 0 &&
			float64(lb) >= float64(c.chunkSize)*sentenceBoundaryRatio &&
			lb+1 > c.overlap {
			// A cut that the overlap step would undo is not taken; the hard
			// boundary keeps the scan moving forward.
			cut = start + lb + 1
		}

		if chunk := strings.TrimSpace(string(runes[start:cut])); chunk != "" {
			segments = append(segments, Segment{Text: chunk, Start: start, End: cut})
		}

		if cut >= n {
			break
		}

		next := cut - c.overlap
		if next < 0 {
			next = 0
		}
		start = next
	}

	return segments
}

// Normalize collapses every whitespace run to a single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// lastSentenceEnd returns the index of the last '.', '?' or '!' in window, or -1.
func lastSentenceEnd(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '?', '!':
			return i
		}
	}
	return -1
}
