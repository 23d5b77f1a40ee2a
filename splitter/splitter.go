// Package splitter cuts loaded documents into overlapping chunks sized
// for embedding. The algorithm is recursive character splitting: try the
// coarsest separator first (paragraph break), fall back to finer ones
// (line break, space, character) for any piece still over the size
// limit, then greedily merge pieces back together so neighboring chunks
// share a window of trailing context.
package splitter

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/serillon/docqa/pipeline_type"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

var (
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
	ErrInvalidOverlap   = errors.New("chunk overlap must satisfy 0 <= overlap < chunk size")
)

// defaultSeparators is ordered coarse to fine; the empty string means
// character-level splitting and guarantees every piece eventually fits.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

type RecursiveSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

type Option func(*RecursiveSplitter)

func WithChunkSize(size int) Option {
	return func(s *RecursiveSplitter) {
		s.chunkSize = size
	}
}

func WithChunkOverlap(overlap int) Option {
	return func(s *RecursiveSplitter) {
		s.chunkOverlap = overlap
	}
}

// New validates the chunking parameters up front. Invalid parameters are
// a configuration error and must fail here, before any document work.
func New(opts ...Option) (*RecursiveSplitter, error) {
	s := &RecursiveSplitter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separators:   defaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, s.chunkSize)
	}
	if s.chunkOverlap < 0 || s.chunkOverlap >= s.chunkSize {
		return nil, fmt.Errorf("%w: got overlap %d with chunk size %d", ErrInvalidOverlap, s.chunkOverlap, s.chunkSize)
	}

	return s, nil
}

// Split chunks every document, preserving input document order and chunk
// order within each document. Chunk metadata is a copy of the parent's,
// so later stages can annotate chunks without touching the document.
func (s *RecursiveSplitter) Split(documents []pipeline_type.Document) []pipeline_type.Chunk {
	var chunks []pipeline_type.Chunk
	for _, doc := range documents {
		for i, text := range s.splitText(doc.Content, s.separators) {
			chunks = append(chunks, pipeline_type.Chunk{
				ID:       uuid.New().String(),
				Content:  text,
				Metadata: pipeline_type.CloneMetadata(doc.Metadata),
				Index:    i,
			})
		}
	}
	return chunks
}

// splitText splits on the first separator present in the text, recursing
// with the remaining separators for any piece still over the size limit,
// and merges under-limit pieces back into overlapping chunks.
func (s *RecursiveSplitter) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var final []string
	var good []string
	for _, piece := range splits {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.mergeSplits(good, separator)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitText(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.mergeSplits(good, separator)...)
	}

	return final
}

// mergeSplits packs under-limit pieces into chunks of at most chunkSize
// runes. When a chunk fills up it is emitted and the window is shrunk
// from the front until at most chunkOverlap runes of context remain,
// which become the start of the next chunk.
func (s *RecursiveSplitter) mergeSplits(splits []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)

	var docs []string
	var current []string
	total := 0

	for _, piece := range splits {
		pieceLen := utf8.RuneCountInString(piece)

		if len(current) > 0 && total+pieceLen+sepLen > s.chunkSize {
			if doc := joinPieces(current, separator); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.chunkOverlap ||
				(total+pieceLen+pendingSepLen(current, sepLen) > s.chunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}

		current = append(current, piece)
		total += pieceLen
		if len(current) > 1 {
			total += sepLen
		}
	}

	if doc := joinPieces(current, separator); doc != "" {
		docs = append(docs, doc)
	}

	return docs
}

func pendingSepLen(current []string, sepLen int) int {
	if len(current) > 0 {
		return sepLen
	}
	return 0
}

// splitOn splits and drops empty pieces; the empty separator splits into
// individual runes.
func splitOn(text, separator string) []string {
	splits := strings.Split(text, separator)
	out := make([]string, 0, len(splits))
	for _, piece := range splits {
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

func joinPieces(pieces []string, separator string) string {
	return strings.TrimSpace(strings.Join(pieces, separator))
}
