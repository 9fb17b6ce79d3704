package cli

import (
	"os"

	"golang.org/x/exp/slog"
)

// newLogger builds the structured logger tus-upload threads through
// tusclient.Options. debug enables Debug-level output; otherwise only
// Info and above are printed, matching tusd's own terse default verbosity.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
