package source

import (
	"io"
	"os"
	"strings"

	"github.com/DataDog/zstd"

	"github.com/linetap/linetap/internal/config"
	"github.com/linetap/linetap/internal/errors"
)

// readCloser pairs a wrapped reader with the close chain of everything
// underneath it.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r readCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open opens a file for streaming. Files ending in .zst or .zstd are
// decompressed on the fly; when opts selects an encoding the bytes are
// decoded to UTF-8 before they reach the splitter, so the stream sees the
// same text a decoded source would produce.
func Open(path string, opts config.Options) (io.ReadCloser, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrFileNotFound, path)
		}
		return nil, err
	}

	var reader io.Reader = f
	closers := []io.Closer{f}

	if strings.HasSuffix(path, ".zst") || strings.HasSuffix(path, ".zstd") {
		zr := zstd.NewReader(f)
		reader = zr
		closers = append([]io.Closer{zr}, closers...)
	}

	decoded, err := Decode(reader, opts)
	if err != nil {
		f.Close()
		return nil, err
	}

	return readCloser{Reader: decoded, closers: closers}, nil
}

// Decode applies the configured charset decoding to an arbitrary reader,
// returning it unchanged in raw byte mode.
func Decode(r io.Reader, opts config.Options) (io.Reader, error) {
	decoder, err := opts.Decoder()
	if err != nil {
		return nil, err
	}
	if decoder == nil {
		return r, nil
	}
	return decoder.Reader(r), nil
}
