// Package source feeds line streams from byte producers. A Pump reads an
// io.Reader in chunks and pushes them into a stream in strict order, one at
// a time; Open turns a file path into a byte producer, transparently
// decompressing zstd files and applying the configured charset decoding.
package source

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/linetap/linetap/internal/config"
	"github.com/linetap/linetap/internal/stream"
)

// Pump drives one reader-to-stream session. It is the upstream half of the
// flow control contract: while the stream is paused the pump blocks in
// WaitReady instead of producing, which is how a downstream pause propagates
// to the source.
type Pump struct {
	reader    io.Reader
	stream    *stream.LineStream
	chunkSize int
	logger    *zap.Logger
}

// NewPump creates a pump delivering chunks of opts.ChunkSize bytes.
func NewPump(r io.Reader, ls *stream.LineStream, opts config.Options, logger *zap.Logger) *Pump {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pump{
		reader:    r,
		stream:    ls,
		chunkSize: opts.EffectiveChunkSize(),
		logger:    logger,
	}
}

// Run reads chunks until end-of-input or error and feeds them to the
// stream. On EOF it signals End; a read error is surfaced verbatim through
// the stream's Fail and returned. Run processes each chunk to completion
// before reading the next one; there is no parallel chunk handling.
func (p *Pump) Run(ctx context.Context) error {
	buffer := make([]byte, p.chunkSize)
	var delivered uint64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.stream.WaitReady(ctx); err != nil {
			// The stream terminated underneath us or the context
			// was cancelled; either way production stops here.
			return err
		}

		n, err := p.reader.Read(buffer)
		if n > 0 {
			if _, werr := p.stream.Write(buffer[:n]); werr != nil {
				return werr
			}
			delivered += uint64(n)
		}
		if err == io.EOF {
			p.logger.Debug("source drained", zap.Uint64("bytes", delivered))
			p.stream.End()
			return nil
		}
		if err != nil {
			p.stream.Fail(err)
			return err
		}
	}
}
