// Package transport supplies the HTTP capability the upload engine is built
// against. The default implementation wraps github.com/sethgrid/pester,
// the same retrying HTTP client tusd's pkg/hooks/http uses to call webhook
// endpoints, so that connection-level hiccups (DNS blips, dropped
// connections, timeouts) are absorbed below the protocol-level retry
// schedule the engine itself drives at chunk boundaries.
package transport

import (
	"net/http"
	"time"

	"github.com/sethgrid/pester"
)

// Doer is the capability the upload engine depends on. http.Client
// satisfies it directly; so does *pester.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// New builds the default Doer: a pester client with a small, fixed
// low-level retry budget and linear backoff, independent of and below the
// engine's own chunk-level retry_hook.
func New() Doer {
	client := pester.New()
	client.MaxRetries = 3
	client.Backoff = func(retry int) time.Duration {
		return time.Duration(retry+1) * 100 * time.Millisecond
	}
	client.KeepLog = false
	return client
}
