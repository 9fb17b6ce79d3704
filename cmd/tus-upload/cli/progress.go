package cli

import (
	"fmt"
	"io"
	"time"
)

// progressBar renders the engine's onProgress/onStart/onComplete callbacks
// as a single overwritten line, the same terse single-line style tusd's own
// CLI favors over a full-screen TUI.
type progressBar struct {
	out io.Writer
}

func (b *progressBar) OnStart(eta *time.Duration) {
	if eta != nil {
		fmt.Fprintf(b.out, "starting upload, estimated %s\n", eta.Round(time.Second))
		return
	}
	fmt.Fprintln(b.out, "starting upload")
}

func (b *progressBar) OnProgress(percent float64, eta *time.Duration) {
	etaStr := "unknown"
	if eta != nil {
		etaStr = eta.Round(time.Second).String()
	}
	fmt.Fprintf(b.out, "\r%5.1f%% complete, eta %s", percent, etaStr)
}

func (b *progressBar) OnComplete() {
	fmt.Fprintln(b.out, "\ndone")
}
