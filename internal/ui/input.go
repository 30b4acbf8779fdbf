package ui

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/muesli/cancelreader"
)

// CancelableInput wraps f so a pending read returns once ctx is done.
// When f cannot be made cancelable it is returned unchanged. The returned
// function releases the reader and must be called when the booth exits.
func CancelableInput(ctx context.Context, f *os.File) (io.Reader, func()) {
	cr, err := cancelreader.NewReader(f)
	if err != nil {
		slog.Warn("ui.CancelableInput: input is not cancelable, interrupts wait for Enter", "error", err)
		return f, func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cr.Cancel()
		case <-done:
		}
	}()
	return cr, func() {
		close(done)
		if err := cr.Close(); err != nil {
			slog.Debug("ui.CancelableInput: close failed", "error", err)
		}
	}
}
