// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits text into fixed-size overlapping windows.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
// An overlap greater than or equal to the chunk size would make the
// window stop advancing, so that configuration is rejected outright
// instead of clamped.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidInput, p.overlap, p.chunkSize)
	}

	return p, nil
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured window overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split cuts text into windows of chunkSize characters, each window
// starting (chunkSize - overlap) after the previous one. Windows whose
// trimmed content is empty are dropped; the returned slice contains
// only emitted chunks, in document order.
func (p *Processor) Split(text string) []string {
	if text == "" {
		return nil
	}

	// Window over runes, not bytes, so multibyte characters are never
	// cut in half at a boundary.
	runes := []rune(text)
	step := p.chunkSize - p.overlap
	estimated := len(runes)/step + 1
	chunks := make([]string, 0, estimated)

	for start := 0; start < len(runes); start += step {
		end := start + p.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		window := string(runes[start:end])
		if strings.TrimSpace(window) == "" {
			continue
		}
		chunks = append(chunks, window)
	}

	return chunks
}
