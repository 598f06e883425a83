// Package chunker provides a boundary-preferring recursive text splitter.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators lists split points in priority order.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Processor splits document content into overlapping chunks, ending each chunk
// at the highest-priority separator that keeps it within the chunk size.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
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

// WithSeparators replaces the separator priority list.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		if len(separators) > 0 {
			p.separators = separators
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into segments.
// Input segments are ignored; this processor creates new segments from document content.
// ChunkCount is assigned after the full split so it is identical across the record.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Segment) ([]domain.Segment, error) {
	pieces := p.Split(doc.Content)
	if len(pieces) == 0 {
		return nil, nil
	}

	base := domain.NewSegmentMetadata(doc.Record)
	segments := make([]domain.Segment, len(pieces))
	for i, content := range pieces {
		meta := base
		meta.ChunkIndex = i
		meta.ChunkCount = len(pieces)
		segments[i] = domain.Segment{
			ID:       uuid.New().String(),
			Content:  content,
			Metadata: meta,
		}
	}

	return segments, nil
}

// Split breaks text into chunks in original order.
func (p *Processor) Split(text string) []string {
	return p.split(text, p.separators)
}

func (p *Processor) split(text string, separators []string) []string {
	sep, rest := "", []string(nil)
	for i, s := range separators {
		if strings.Contains(text, s) {
			sep, rest = s, separators[i+1:]
			break
		}
	}
	if sep == "" {
		return p.hardSplit(text)
	}

	var chunks, pending []string
	for _, piece := range splitKeep(text, sep) {
		if runeLen(piece) <= p.chunkSize {
			pending = append(pending, piece)
			continue
		}
		// Oversized piece: flush what fits, then split it on the next separator.
		chunks = append(chunks, p.merge(pending)...)
		pending = nil
		chunks = append(chunks, p.split(piece, rest)...)
	}
	return append(chunks, p.merge(pending)...)
}

// merge packs pieces into chunks of at most chunkSize characters. Each new chunk
// starts with the trailing pieces of the previous one, up to overlap characters.
func (p *Processor) merge(pieces []string) []string {
	var chunks, window []string
	total := 0

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > p.chunkSize && len(window) > 0 {
			chunks = appendChunk(chunks, window)
			for total > p.overlap || (total+n > p.chunkSize && total > 0) {
				total -= runeLen(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += n
	}

	return appendChunk(chunks, window)
}

// hardSplit cuts text with no usable separator into fixed windows.
func (p *Processor) hardSplit(text string) []string {
	runes := []rune(text)
	if len(runes) <= p.chunkSize {
		return appendChunk(nil, []string{text})
	}

	var chunks []string
	step := p.chunkSize - p.overlap
	for start := 0; start < len(runes); start += step {
		end := min(start+p.chunkSize, len(runes))
		chunks = appendChunk(chunks, []string{string(runes[start:end])})
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// splitKeep splits on sep, keeping sep at the end of each piece.
func splitKeep(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	pieces := parts[:0]
	for _, part := range parts {
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

func appendChunk(chunks, window []string) []string {
	if c := strings.TrimSpace(strings.Join(window, "")); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
