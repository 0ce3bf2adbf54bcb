// Package stream implements the stateful line streaming stage. It consumes
// byte chunks from an upstream source, splits them into lines, and emits the
// lines downstream one at a time under the standard pause/resume flow
// control contract.
//
// Key behaviors:
// - Chunks are accepted via Write in strict delivery order
// - Lines queue up while the consumer is paused and drain in FIFO order
// - A consumer returning not-ready auto-pauses the drain loop
// - End-of-input flushes the carried partial line and fires end exactly once
// - An upstream error discards queued lines and fires error at most once
//
// All methods are safe for concurrent use; processing itself is cooperative
// and never runs chunk handling in parallel.
package stream

import (
	"bytes"
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/linetap/linetap/internal/config"
	"github.com/linetap/linetap/internal/errors"
	"github.com/linetap/linetap/internal/pool"
	"github.com/linetap/linetap/internal/split"
)

// State describes where a stream is in its lifecycle.
type State int

const (
	// Idle means no consumer has attached yet.
	Idle State = iota
	// Flowing means lines are pushed downstream as they are produced.
	Flowing
	// Paused means produced lines accumulate in the pending queue.
	Paused
	// Ending means end-of-input arrived and the queue is draining.
	Ending
	// Closed is terminal; no further operations are valid.
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Flowing:
		return "flowing"
	case Paused:
		return "paused"
	case Ending:
		return "ending"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Line is one complete line with its terminator stripped. Content buffer
// ownership is transferred to the consumer; recycle it when done.
type Line struct {
	Content  *bytes.Buffer
	Num      uint64
	SourceID string
}

// String returns the line content as a string.
func (l Line) String() string {
	return l.Content.String()
}

// Bytes returns the raw line content.
func (l Line) Bytes() []byte {
	return l.Content.Bytes()
}

// Recycle returns the content buffer to the pool.
func (l Line) Recycle() {
	pool.RecycleBytesBuffer(l.Content)
}

// LineStream is a pipeline stage between one chunk producer and one line
// consumer. Create it with New, attach callbacks, then push chunks via
// Write and finish with End or Fail.
type LineStream struct {
	mutex sync.Mutex

	opts     config.Options
	splitter *split.Splitter
	sourceID string
	logger   *zap.Logger

	// queue holds produced lines awaiting delivery, strictly FIFO.
	queue   []Line
	lineNum uint64

	flow     State // Idle, Flowing or Paused; Ending/Closed derive from below
	ending   bool
	closed   bool
	err      error
	draining bool

	// resumeCh is non-nil exactly while paused and closed on resume so
	// upstream pumps blocked in WaitReady wake up.
	resumeCh chan struct{}

	onLine  func(Line) bool
	onEnd   func()
	onError func(error)
}

// New creates a line stream. sourceID tags every emitted line (typically a
// file path or peer name). Invalid options are reported synchronously.
func New(sourceID string, opts config.Options, logger *zap.Logger) (*LineStream, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineStream{
		opts:     opts,
		splitter: split.New(opts.MaxLineLength),
		sourceID: sourceID,
		logger:   logger,
		flow:     Idle,
	}, nil
}

// OnLine attaches the line consumer. The callback's return value is the
// readiness signal: returning false pauses the drain loop until Resume is
// called, without losing any already accepted data. Attaching moves an idle
// stream to flowing and drains anything queued so far.
func (ls *LineStream) OnLine(fn func(Line) bool) {
	ls.mutex.Lock()
	ls.onLine = fn
	if ls.flow == Idle && !ls.closed {
		ls.flow = Flowing
		ls.logger.Debug("consumer attached",
			zap.String("source", ls.sourceID), zap.Int("queued", len(ls.queue)))
	}
	ls.mutex.Unlock()
	ls.drain()
}

// OnEnd registers the callback fired exactly once after the final line has
// been delivered.
func (ls *LineStream) OnEnd(fn func()) {
	ls.mutex.Lock()
	ls.onEnd = fn
	ls.mutex.Unlock()
}

// OnError registers the callback fired at most once when the upstream source
// fails. After it fires no further line or end callbacks run.
func (ls *LineStream) OnError(fn func(error)) {
	ls.mutex.Lock()
	ls.onError = fn
	ls.mutex.Unlock()
}

// State returns the current lifecycle state.
func (ls *LineStream) State() State {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	return ls.stateLocked()
}

func (ls *LineStream) stateLocked() State {
	switch {
	case ls.closed:
		return Closed
	case ls.ending:
		return Ending
	default:
		return ls.flow
	}
}

// Queued returns how many lines await delivery.
func (ls *LineStream) Queued() int {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	return len(ls.queue)
}

// Err returns the upstream error after the stream failed, nil otherwise.
func (ls *LineStream) Err() error {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	return ls.err
}

// Encoding returns the charset name the stream's input is decoded with, or
// the empty string in raw byte mode. It mirrors the wrapped source so
// consumers observe matching types on both sides.
func (ls *LineStream) Encoding() string {
	return ls.opts.Encoding
}

// Write accepts the next chunk from upstream, splits it and attempts a
// drain. Chunks are accepted while paused too: data already in flight from
// upstream must be buffered safely, not lost. Implements io.Writer.
func (ls *LineStream) Write(p []byte) (int, error) {
	ls.mutex.Lock()
	if ls.closed || ls.ending {
		ls.mutex.Unlock()
		return 0, errors.Wrap(errors.ErrStreamClosed, "write")
	}
	for _, buf := range ls.splitter.Feed(p) {
		ls.enqueueLocked(buf)
	}
	ls.mutex.Unlock()
	ls.drain()
	return len(p), nil
}

// enqueueLocked numbers the line, applies the empty line policy and appends
// to the pending queue. Line numbers count every complete line the splitter
// produced, filtered or not, so they match positions in the input.
func (ls *LineStream) enqueueLocked(buf *bytes.Buffer) {
	ls.lineNum++
	if buf.Len() == 0 && !ls.opts.KeepEmptyLines {
		pool.RecycleBytesBuffer(buf)
		return
	}
	ls.queue = append(ls.queue, Line{
		Content:  buf,
		Num:      ls.lineNum,
		SourceID: ls.sourceID,
	})
}

// Pause suspends downstream delivery. Chunks keep being accepted and split;
// the pending queue grows until Resume. Idempotent.
func (ls *LineStream) Pause() {
	ls.mutex.Lock()
	ls.pauseLocked("pause requested")
	ls.mutex.Unlock()
}

func (ls *LineStream) pauseLocked(reason string) {
	if ls.closed || ls.flow != Flowing {
		return
	}
	ls.flow = Paused
	ls.resumeCh = make(chan struct{})
	ls.logger.Debug("stream paused",
		zap.String("source", ls.sourceID),
		zap.String("reason", reason),
		zap.Int("queued", len(ls.queue)))
}

// Resume re-enters the drain loop from the current queue head. Calling it on
// a stream that is not paused is a no-op.
func (ls *LineStream) Resume() {
	ls.mutex.Lock()
	if ls.closed || ls.flow != Paused {
		ls.mutex.Unlock()
		return
	}
	ls.flow = Flowing
	close(ls.resumeCh)
	ls.resumeCh = nil
	ls.logger.Debug("stream resumed",
		zap.String("source", ls.sourceID), zap.Int("queued", len(ls.queue)))
	ls.mutex.Unlock()
	ls.drain()
}

// End signals clean end-of-input. The carried partial line is flushed and
// enqueued, then the stream closes once the queue fully drains. Calling End
// again, or after a failure, is a no-op.
func (ls *LineStream) End() {
	ls.mutex.Lock()
	if ls.closed || ls.ending {
		ls.mutex.Unlock()
		return
	}
	ls.ending = true
	if buf, ok := ls.splitter.Flush(); ok {
		ls.enqueueLocked(buf)
	}
	ls.logger.Debug("end of input",
		zap.String("source", ls.sourceID), zap.Int("queued", len(ls.queue)))
	ls.mutex.Unlock()
	ls.drain()
}

// Fail surfaces an upstream error. Buffered but undelivered lines are
// discarded (the whole pipeline is considered failed), the error callback
// fires once and the stream is closed.
func (ls *LineStream) Fail(err error) {
	ls.mutex.Lock()
	if ls.closed {
		ls.mutex.Unlock()
		return
	}
	ls.closed = true
	ls.err = err
	for _, line := range ls.queue {
		line.Recycle()
	}
	ls.queue = nil
	if ls.resumeCh != nil {
		close(ls.resumeCh)
		ls.resumeCh = nil
	}
	fn := ls.onError
	ls.logger.Debug("stream failed",
		zap.String("source", ls.sourceID), zap.Error(err))
	ls.mutex.Unlock()
	if fn != nil {
		fn(err)
	}
}

// Ready reports whether the stream currently accepts and forwards data.
// Source pumps use it together with WaitReady as the upstream backpressure
// signal.
func (ls *LineStream) Ready() bool {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	return !ls.closed && !ls.ending && ls.flow != Paused
}

// WaitReady blocks while the stream is paused, returning nil once delivery
// may continue. It returns the stream error (or ErrStreamClosed) when the
// stream terminated, or the context error on cancellation. This blocking is
// how a downstream pause propagates upstream: a pump that waits here simply
// stops producing.
func (ls *LineStream) WaitReady(ctx context.Context) error {
	for {
		ls.mutex.Lock()
		if ls.closed || ls.ending {
			err := ls.err
			ls.mutex.Unlock()
			if err != nil {
				return err
			}
			return errors.ErrStreamClosed
		}
		if ls.flow != Paused {
			ls.mutex.Unlock()
			return nil
		}
		ch := ls.resumeCh
		ls.mutex.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drain emits queued lines downstream one at a time until the queue empties,
// the consumer signals not-ready, or the stream pauses/closes. Both "new
// data arrived" and "resume requested" re-enter it; the draining flag folds
// re-entrant calls into the already running loop instead of recursing.
func (ls *LineStream) drain() {
	ls.mutex.Lock()
	if ls.draining {
		ls.mutex.Unlock()
		return
	}
	ls.draining = true

	for !ls.closed && ls.flow == Flowing && len(ls.queue) > 0 {
		line := ls.queue[0]
		ls.queue = ls.queue[1:]
		fn := ls.onLine
		ls.mutex.Unlock()

		// The callback runs unlocked so it may pause, resume or fail
		// the stream without deadlocking.
		ready := true
		if fn != nil {
			ready = fn(line)
		}

		ls.mutex.Lock()
		if !ready {
			ls.pauseLocked("consumer not ready")
		}
	}

	if ls.ending && !ls.closed && ls.flow == Flowing && len(ls.queue) == 0 {
		ls.closed = true
		fn := ls.onEnd
		ls.logger.Debug("stream closed",
			zap.String("source", ls.sourceID), zap.Uint64("lines", ls.lineNum))
		ls.draining = false
		ls.mutex.Unlock()
		if fn != nil {
			fn()
		}
		return
	}

	ls.draining = false
	ls.mutex.Unlock()
}
