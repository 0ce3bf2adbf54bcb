// Package signal wires process termination signals to context cancellation
// so running pumps can wind down cleanly.
package signal

import (
	"context"
	"os"
	gosignal "os/signal"
	"syscall"
)

// InterruptCtx returns a context that is cancelled when the process receives
// SIGINT, SIGHUP, SIGTERM or SIGQUIT.
func InterruptCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigCh := make(chan os.Signal, 10)
	gosignal.Notify(sigCh, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		gosignal.Stop(sigCh)
	}()

	return ctx, cancel
}
