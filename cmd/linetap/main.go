// Package main provides the linetap command-line tool. Linetap reads one or
// more files (or stdin), splits the byte stream into lines regardless of
// terminator convention, and writes the lines to stdout.
//
// Key features:
// - Recognizes \n, \r\n and bare \r line endings, also across read
//   boundaries
// - Transparent decompression of .zst/.zstd inputs
// - Optional charset decoding (-encoding) before splitting
// - Force-splitting of overlong lines (-maxLineLength)
// - Empty line policy toggle (-keepEmpty)
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/linetap/linetap/internal/config"
	"github.com/linetap/linetap/internal/constants"
	"github.com/linetap/linetap/internal/signal"
	"github.com/linetap/linetap/internal/source"
	"github.com/linetap/linetap/internal/stream"
	"github.com/linetap/linetap/internal/version"
)

func main() {
	var opts config.Options
	var displayVersion, quiet, numbers bool
	var logLevel string

	flag.BoolVar(&opts.KeepEmptyLines, "keepEmpty", false, "Preserve zero-length lines")
	flag.StringVar(&opts.Encoding, "encoding", "", "IANA charset name to decode input with")
	flag.IntVar(&opts.MaxLineLength, "maxLineLength", 0,
		"Split lines longer than this many bytes (0: unlimited)")
	flag.IntVar(&opts.ChunkSize, "chunkSize", constants.DefaultChunkSize,
		"Read size per chunk in bytes")
	flag.BoolVar(&numbers, "numbers", false, "Prefix each line with its line number")
	flag.BoolVar(&quiet, "quiet", false, "Quiet output mode")
	flag.StringVar(&logLevel, "logLevel", "info", "Log level")
	flag.BoolVar(&displayVersion, "version", false, "Display version")
	flag.Parse()

	if displayVersion {
		version.PrintAndExit()
	}

	logger := newLogger(logLevel, quiet)
	defer logger.Sync()

	if err := opts.Validate(); err != nil {
		logger.Fatal("Invalid options", zap.Error(err))
	}

	ctx, cancel := signal.InterruptCtx(context.Background())
	defer cancel()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	// On a terminal every line is flushed as it arrives; piped output is
	// flushed per buffer fill.
	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	for _, path := range paths {
		if err := tap(ctx, path, opts, out, interactive, numbers, logger); err != nil {
			out.Flush()
			logger.Fatal("Tapping failed", zap.String("file", path), zap.Error(err))
		}
	}
}

// tap streams one input through a line stream into out.
func tap(ctx context.Context, path string, opts config.Options, out *bufio.Writer,
	flushEachLine, numbers bool, logger *zap.Logger) error {

	var reader io.Reader
	if path == "-" {
		decoded, err := source.Decode(os.Stdin, opts)
		if err != nil {
			return err
		}
		reader = decoded
	} else {
		rc, err := source.Open(path, opts)
		if err != nil {
			return err
		}
		defer rc.Close()
		reader = rc
	}

	ls, err := stream.New(path, opts, logger)
	if err != nil {
		return err
	}

	ls.OnLine(func(line stream.Line) bool {
		if numbers {
			fmt.Fprintf(out, "%7d ", line.Num)
		}
		out.Write(line.Bytes())
		out.WriteByte('\n')
		if flushEachLine {
			out.Flush()
		}
		line.Recycle()
		return true
	})
	ls.OnEnd(func() {
		logger.Info("Reached end of input", zap.String("file", path))
	})
	ls.OnError(func(err error) {
		logger.Error("Input source failed", zap.String("file", path), zap.Error(err))
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return source.NewPump(reader, ls, opts, logger).Run(gctx)
	})
	return g.Wait()
}

// newLogger builds the process logger. Quiet mode suppresses everything
// below error level.
func newLogger(level string, quiet bool) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if quiet && lvl < zapcore.ErrorLevel {
		lvl = zapcore.ErrorLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
