package tusclient

import "time"

// Observer groups the upload callbacks together so a caller only implements
// the hooks it cares about. Every method defaults to a no-op via
// NopObserver; embed it to override selectively.
//
// This replaces the ad-hoc function parameters (on_progress, on_start,
// on_complete) the protocol's reference clients pass around individually
// with a single capability set, the idiomatic Go shape for an optional
// bundle of callbacks.
type Observer interface {
	// OnStart fires once, after the server-held offset has been resolved
	// and before the first chunk is sent. eta is nil when no throughput
	// estimate (measured or assumed) is available yet.
	OnStart(eta *time.Duration)
	// OnProgress fires after every acknowledged chunk. percent is clamped
	// to [0, 100].
	OnProgress(percent float64, eta *time.Duration)
	// OnComplete fires exactly once, when the upload reaches file_size and
	// the server has acknowledged it.
	OnComplete()
}

// NopObserver implements Observer with no-ops. Embed it in partial
// implementations.
type NopObserver struct{}

func (NopObserver) OnStart(*time.Duration)             {}
func (NopObserver) OnProgress(float64, *time.Duration) {}
func (NopObserver) OnComplete()                        {}

// RetryHook owns the inter-attempt wait and the re-invocation of the
// engine's resume entry point. The engine never sleeps or spawns a
// goroutine on its own behalf; if RetryHook is nil, a chunk-level failure
// is treated as fatal once the attempt counter would otherwise call for a
// retry.
//
// wait is the duration computed by pkg/retry for this attempt. resume must
// be called after the wait elapses to continue the upload from where it
// left off; it returns the same error resume itself would return, letting
// hooks compose (e.g. to bound total retry wall-clock time across calls).
type RetryHook func(wait time.Duration, resume func() error) error
