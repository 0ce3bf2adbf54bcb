// Package config provides configuration for line stream instances.
// It holds the recognized stream options with their defaults and validates
// them synchronously, before any I/O has started.
//
// The configuration system supports:
// - Empty line policy (suppress or preserve zero-length lines)
// - Optional charset decoding of the input before splitting
// - A maximum line length after which overlong lines are force-split
// - The chunk size used by source pumps
//
// Invalid option values surface as errors wrapped around ErrInvalidConfig so
// callers can detect them with errors.Is without tearing anything down.
package config

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/linetap/linetap/internal/constants"
	"github.com/linetap/linetap/internal/errors"
)

// Options holds the recognized options of one line stream instance.
type Options struct {
	// KeepEmptyLines preserves zero-length lines instead of discarding
	// them before enqueue. Off by default.
	KeepEmptyLines bool

	// Encoding is an IANA charset name (e.g. "utf-8", "latin1") applied
	// to the input before splitting. Empty means operate on raw bytes.
	Encoding string

	// MaxLineLength caps a single line; longer lines are split at the cap
	// and the prefix emitted as its own line. Zero means unlimited.
	MaxLineLength int

	// ChunkSize is the read size used by source pumps. Zero selects
	// constants.DefaultChunkSize.
	ChunkSize int
}

// DefaultOptions returns the option defaults: empty lines suppressed, raw
// bytes, unlimited line length, default chunk size.
func DefaultOptions() Options {
	return Options{
		ChunkSize: constants.DefaultChunkSize,
	}
}

// Validate checks all option values. It is called by stream and source
// constructors; a non-nil result wraps errors.ErrInvalidConfig.
func (o Options) Validate() error {
	if o.MaxLineLength < 0 {
		return errors.Wrapf(errors.ErrInvalidConfig,
			"maxLineLength must not be negative, got %d", o.MaxLineLength)
	}
	if o.ChunkSize < 0 {
		return errors.Wrapf(errors.ErrInvalidConfig,
			"chunkSize must not be negative, got %d", o.ChunkSize)
	}
	if o.Encoding != "" {
		if _, err := lookupEncoding(o.Encoding); err != nil {
			return err
		}
	}
	return nil
}

// EffectiveChunkSize returns the configured chunk size or the default.
func (o Options) EffectiveChunkSize() int {
	if o.ChunkSize <= 0 {
		return constants.DefaultChunkSize
	}
	return o.ChunkSize
}

// Decoder returns the charset decoder selected by the Encoding option, or
// nil when the stream operates on raw bytes.
func (o Options) Decoder() (*encoding.Decoder, error) {
	if o.Encoding == "" {
		return nil, nil
	}
	enc, err := lookupEncoding(o.Encoding)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder(), nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, errors.Wrapf(errors.ErrUnknownEncoding, "%q", name)
	}
	return enc, nil
}
