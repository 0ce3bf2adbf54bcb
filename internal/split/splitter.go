// Package split implements the line splitting engine. It converts a sequence
// of arbitrarily fragmented byte chunks into complete lines, recognizing \n,
// \r\n and bare \r terminators, and carries the unterminated remainder of
// each chunk over to the next one.
//
// The splitter is a total function over byte sequences: it has no failure
// modes and no I/O. Flow control, empty line policy and delivery order are
// the caller's concern.
package split

import (
	"bytes"

	"github.com/linetap/linetap/internal/pool"
)

// Splitter holds the carried partial line between chunks. One instance
// belongs to exactly one stream; it is not safe for concurrent use.
type Splitter struct {
	maxLineLength int
	partial       *bytes.Buffer
	pendingCR     bool
	forcedSplits  uint64
}

// New creates a splitter. maxLineLength caps a single line: once the carried
// partial reaches the cap it is emitted as a complete line and scanning
// continues. Zero means unlimited.
func New(maxLineLength int) *Splitter {
	return &Splitter{
		maxLineLength: maxLineLength,
		partial:       pool.GetBytesBuffer(),
	}
}

// Feed appends the chunk to the carried partial line and returns the
// complete lines found, terminators stripped, in encounter order. Buffer
// ownership is transferred to the caller; recycle via pool.RecycleBytesBuffer
// when done.
//
// A \r as the very last byte of a chunk is never classified immediately: it
// may be the first half of a \r\n pair split across the chunk boundary, so
// the decision is deferred until the next chunk (or Flush) arrives.
func (s *Splitter) Feed(chunk []byte) []*bytes.Buffer {
	var lines []*bytes.Buffer

	i := 0
	if s.pendingCR && len(chunk) > 0 {
		// The previous chunk ended in \r. If this chunk starts with
		// \n the two form a single \r\n terminator.
		s.pendingCR = false
		if chunk[0] == '\n' {
			i = 1
		}
		lines = append(lines, s.take())
	}

	for i < len(chunk) {
		switch chunk[i] {
		case '\n':
			lines = append(lines, s.take())
			i++
		case '\r':
			if i == len(chunk)-1 {
				// Last byte of the chunk: hold back, the next
				// chunk may begin with \n.
				s.pendingCR = true
				i++
			} else if chunk[i+1] == '\n' {
				lines = append(lines, s.take())
				i += 2
			} else {
				lines = append(lines, s.take())
				i++
			}
		default:
			s.partial.WriteByte(chunk[i])
			i++
			if s.maxLineLength > 0 && s.partial.Len() >= s.maxLineLength {
				s.forcedSplits++
				lines = append(lines, s.take())
			}
		}
	}

	return lines
}

// Flush finalizes the stream at end-of-input. A held back \r terminates the
// carried line; otherwise a non-empty partial is emitted as a final line
// without terminator so trailing content is not lost. The second return
// value reports whether a line was produced.
func (s *Splitter) Flush() (*bytes.Buffer, bool) {
	if s.pendingCR {
		s.pendingCR = false
		return s.take(), true
	}
	if s.partial.Len() == 0 {
		return nil, false
	}
	return s.take(), true
}

// Partial returns the current carried partial line. The returned slice is
// only valid until the next Feed or Flush call.
func (s *Splitter) Partial() []byte {
	return s.partial.Bytes()
}

// ForcedSplits returns how many lines were emitted due to the line length
// cap rather than a terminator.
func (s *Splitter) ForcedSplits() uint64 {
	return s.forcedSplits
}

// take hands the accumulated partial out as a complete line and starts a
// fresh one from the pool.
func (s *Splitter) take() *bytes.Buffer {
	line := s.partial
	s.partial = pool.GetBytesBuffer()
	return line
}
