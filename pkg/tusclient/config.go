package tusclient

import (
	"io"
	"net/http"

	"golang.org/x/exp/slog"

	"github.com/tus/tus-client-go/internal/transport"
	"github.com/tus/tus-client-go/pkg/retry"
	"github.com/tus/tus-client-go/pkg/store"
)

const defaultMaxChunkBytes = 6 * 1024 * 1024 // 6 MiB, per §6

// Options configures a Client for the lifetime of every session it starts.
// Mirrors the split in tusd's handler.Config: a handful of required
// collaborators plus policy knobs, with validate() filling in defaults.
type Options struct {
	// Store persists fingerprint -> resource URI across sessions. Defaults
	// to an in-memory store, meaning resumption across process restarts is
	// unavailable unless the caller supplies store.NewFile or another
	// durable implementation.
	Store store.Store

	// Doer performs the create/probe/patch requests. Defaults to
	// transport.New(), a pester-backed client absorbing transient
	// connection failures.
	Doer transport.Doer

	// Logger receives structured events about the session's progress. If
	// nil, a logger writing to io.Discard is installed so the library
	// never writes to stdout/stderr uninvited.
	Logger *slog.Logger

	// MaxChunkBytes bounds how much of the file is read and sent per PATCH.
	// Defaults to 6 MiB.
	MaxChunkBytes int64

	// MaxRetries bounds the attempt counter (§I4); exceeding it terminates
	// the session. Defaults to 5.
	MaxRetries int

	// FirstRetryCooldownSeconds is the base wait (attempt==0) fed to
	// pkg/retry. Defaults to 0, which disables retry pacing (interval
	// always 0) unless the caller opts in.
	FirstRetryCooldownSeconds float64

	// RetryScale selects how the wait grows with the attempt counter.
	// Defaults to retry.Exponential.
	RetryScale retry.Scale

	// Jitter is the fraction fed to pkg/retry.Interval. Defaults to
	// retry.DefaultJitter (0.5) when nil; pass a pointer to 0 for fully
	// deterministic backoff, e.g. in tests.
	Jitter *float64

	// ExtraHeaders are merged into every create/probe/patch request,
	// underneath the protocol-mandated headers.
	ExtraHeaders http.Header

	// Fingerprint overrides the default fingerprint deriver (§4.4). If nil,
	// defaultFingerprint(file.Path()) is used.
	Fingerprint func(File) string
}

func (o *Options) withDefaults() *Options {
	out := *o
	if out.Store == nil {
		out.Store = store.NewMemory()
	}
	if out.Doer == nil {
		out.Doer = transport.New()
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if out.MaxChunkBytes == 0 {
		out.MaxChunkBytes = defaultMaxChunkBytes
	}
	if out.MaxRetries == 0 {
		out.MaxRetries = 5
	}
	if out.RetryScale == "" {
		out.RetryScale = retry.Exponential
	}
	if out.Jitter == nil {
		j := retry.DefaultJitter
		out.Jitter = &j
	}
	if out.ExtraHeaders == nil {
		out.ExtraHeaders = http.Header{}
	}
	if out.Fingerprint == nil {
		out.Fingerprint = func(f File) string { return defaultFingerprint(f.Path()) }
	}
	return &out
}
