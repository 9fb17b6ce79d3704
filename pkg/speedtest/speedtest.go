// Package speedtest implements the optional upstream-bandwidth probe (C8)
// used only to seed the engine's ETA estimate. A failing probe is never
// fatal to an upload; callers are expected to log and continue without an
// estimate.
package speedtest

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/tus/tus-client-go/internal/transport"
)

// DefaultPayloadSize is how much data is uploaded to each measurement
// endpoint to estimate throughput.
const DefaultPayloadSize = 1 << 20 // 1 MiB

// Prober measures upstream throughput against a small set of endpoints and
// reports the best observed result in megabits per second.
type Prober struct {
	// Endpoints accept a PUT of PayloadSize bytes and discard it.
	Endpoints []string
	// PayloadSize overrides DefaultPayloadSize.
	PayloadSize int64
	// Doer performs the measurement requests. Defaults to transport.New().
	Doer transport.Doer
}

// NewProber builds a Prober against the given measurement endpoints.
func NewProber(endpoints ...string) *Prober {
	return &Prober{Endpoints: endpoints, PayloadSize: DefaultPayloadSize, Doer: transport.New()}
}

// Measure uploads a synthetic payload to each configured endpoint and
// returns the highest observed throughput in Mbps. It returns an error only
// if every endpoint fails or none are configured; callers should treat that
// as "no estimate available" and continue without one.
func (p *Prober) Measure(ctx context.Context) (float64, error) {
	if len(p.Endpoints) == 0 {
		return 0, errNoEndpoints
	}

	payloadSize := p.PayloadSize
	if payloadSize == 0 {
		payloadSize = DefaultPayloadSize
	}
	doer := p.Doer
	if doer == nil {
		doer = transport.New()
	}
	payload := bytes.Repeat([]byte{0}, int(payloadSize))

	var best float64
	var lastErr error
	measured := false

	for _, endpoint := range p.Endpoints {
		mbps, err := measureOne(ctx, doer, endpoint, payload)
		if err != nil {
			lastErr = err
			continue
		}
		measured = true
		if mbps > best {
			best = mbps
		}
	}

	if !measured {
		if lastErr == nil {
			lastErr = errNoEndpoints
		}
		return 0, lastErr
	}
	return best, nil
}

func measureOne(ctx context.Context, doer transport.Doer, endpoint string, payload []byte) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.ContentLength = int64(len(payload))

	start := time.Now()
	resp, err := doer.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)
	if elapsed <= 0 {
		return 0, errZeroDuration
	}

	bits := float64(len(payload)) * 8
	return bits / elapsed.Seconds() / 1e6, nil
}

var (
	errNoEndpoints  = speedError("no measurement endpoints configured")
	errZeroDuration = speedError("measurement completed instantaneously, discarding sample")
)

type speedError string

func (e speedError) Error() string { return string(e) }
