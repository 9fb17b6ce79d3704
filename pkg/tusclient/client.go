// Package tusclient implements the resumable upload protocol's client-side
// state machine: discovering or creating a remote resource, reconciling the
// client's and server's byte offsets, driving chunked PATCH transfers, and
// persisting enough state that an interrupted upload can resume after a
// full process restart.
package tusclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tus/tus-client-go/pkg/retry"
)

const tusResumableVersion = "1.0.0"

// Client drives a single file's upload session end to end: resolving or
// creating the resource URI, synchronizing the offset, and transmitting
// chunks. It corresponds to the "upload session" of the data model (§3);
// one Client is good for exactly one file, but may be reused across
// multiple calls to Upload (e.g. after Pause).
type Client struct {
	file        File
	fingerprint string

	opts *Options

	mu          sync.Mutex
	resourceURI string
	fileSize    int64
	offset      int64
	attempt     int

	paused atomic.Bool

	uploadSpeedMbps *float64
}

// NewClient prepares a Client for file. It does not perform any I/O beyond
// reading file.Size().
func NewClient(file File, opts Options) (*Client, error) {
	size, err := file.Size()
	if err != nil {
		return nil, &IoError{Err: err}
	}

	resolved := opts.withDefaults()

	return &Client{
		file:        file,
		fingerprint: resolved.Fingerprint(file),
		opts:        resolved,
		fileSize:    size,
	}, nil
}

// IsResumable reports whether the configured store already holds a resource
// URI for this file's fingerprint.
func (c *Client) IsResumable(ctx context.Context) (bool, error) {
	_, ok, err := c.opts.Store.Get(ctx, c.fingerprint)
	if err != nil {
		return false, &StoreError{Op: "get", Err: err}
	}
	return ok, nil
}

// MeasureUploadSpeed runs the optional throughput probe (C8) and records the
// result for later ETA computation. Any failure is swallowed; the ETA path
// tolerates an unset speed.
func (c *Client) MeasureUploadSpeed(ctx context.Context, probe SpeedProbe) {
	if probe == nil {
		return
	}
	mbps, err := probe.Measure(ctx)
	if err != nil {
		c.opts.Logger.Warn("speed probe failed, continuing without ETA estimate", "error", err)
		return
	}
	c.mu.Lock()
	c.uploadSpeedMbps = &mbps
	c.mu.Unlock()
}

// SpeedProbe is the seam the optional network-speed measurement (C8) is
// consumed through. Implementations must not block the engine beyond the
// single call to Measure; a failing probe should return an error rather
// than a zero value, so the caller can distinguish "not measured" from "no
// bandwidth".
type SpeedProbe interface {
	Measure(ctx context.Context) (mbps float64, err error)
}

// CreateUpload drives the create step only: it issues POST endpoint,
// extracts and resolves the Location header, and persists the resulting
// resource URI under the file's fingerprint. It does not probe the offset
// or send any chunk.
func (c *Client) CreateUpload(ctx context.Context, endpoint string, metadata Metadata, headers http.Header) (string, error) {
	uri, err := c.createUpload(ctx, endpoint, metadata, headers)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.resourceURI = uri
	c.mu.Unlock()
	return uri, nil
}

// UploadParams customizes a single call to Upload. All fields are optional.
type UploadParams struct {
	Observer     Observer
	RetryHook    RetryHook
	Metadata     Metadata
	Headers      http.Header
	MeasureSpeed bool
	SpeedProbe   SpeedProbe
}

// Upload drives Preparing -> Resolving -> Transmitting -> Terminal for this
// session (§4.6). Every call probes the server-held offset and continues
// from it, so a call made after Pause picks up where the server's
// acknowledged bytes end.
func (c *Client) Upload(ctx context.Context, endpoint string, params UploadParams) error {
	obs := params.Observer
	if obs == nil {
		obs = NopObserver{}
	}

	c.paused.Store(false)

	if params.MeasureSpeed {
		c.MeasureUploadSpeed(ctx, params.SpeedProbe)
	}

	if err := c.resolve(ctx, endpoint, params.Metadata, params.Headers); err != nil {
		return err
	}

	if err := c.probeOffset(ctx, params.Headers); err != nil {
		return err
	}

	var eta *time.Duration
	if mbps := c.currentSpeedMbps(); mbps != nil {
		d := etaFromSpeed(c.fileSize, *mbps)
		eta = &d
	}
	obs.OnStart(eta)

	return c.transmit(ctx, params.Headers, obs, params.RetryHook)
}

// Pause requests that the Transmitting loop stop at the next chunk
// boundary. It is idempotent: pausing an already-paused session is a no-op.
// Pause returns true if it changed the paused state.
func (c *Client) Pause() bool {
	return c.paused.CompareAndSwap(false, true)
}

// Cancel pauses the session and removes its store entry, if any. It is
// idempotent: cancelling a session whose store lacks an entry succeeds.
// Store failures during cancellation are swallowed, matching §7's
// best-effort cleanup contract.
func (c *Client) Cancel(ctx context.Context) bool {
	changed := c.paused.CompareAndSwap(false, true)
	if err := c.opts.Store.Delete(ctx, c.fingerprint); err != nil {
		c.opts.Logger.Warn("store cleanup on cancel failed, ignoring", "fingerprint", c.fingerprint, "error", err)
	}
	return changed
}

// Offset returns the session's current byte offset.
func (c *Client) Offset() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

func (c *Client) currentSpeedMbps() *float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploadSpeedMbps
}

func etaFromSpeed(remainingBytes int64, mbps float64) time.Duration {
	if mbps <= 0 {
		return 0
	}
	seconds := float64(remainingBytes) / (mbps * 1e6)
	return time.Duration(seconds * float64(time.Second))
}

// resolve implements Preparing -> Resolving: adopt a stored resource URI, or
// create one.
func (c *Client) resolve(ctx context.Context, endpoint string, metadata Metadata, headers http.Header) error {
	uri, ok, err := c.opts.Store.Get(ctx, c.fingerprint)
	if err != nil {
		return &StoreError{Op: "get", Err: err}
	}
	if ok {
		c.mu.Lock()
		c.resourceURI = uri
		c.mu.Unlock()
		c.opts.Logger.Info("resuming upload from stored resource", "fingerprint", c.fingerprint, "resource_uri", uri)
		return nil
	}

	uri, err = c.createUpload(ctx, endpoint, metadata, headers)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.resourceURI = uri
	c.mu.Unlock()
	return nil
}

// createUpload issues the POST that mints a new resource and persists its
// URI under the file's fingerprint.
func (c *Client) createUpload(ctx context.Context, endpoint string, metadata Metadata, headers http.Header) (string, error) {
	endpointURL, err := url.Parse(endpoint)
	if err != nil {
		return "", NewProtocolError("invalid endpoint")
	}

	encoded := encodeMetadata(metadata, c.file.Path())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	applyHeaders(req.Header, c.opts.ExtraHeaders, headers, map[string]string{
		"Tus-Resumable":   tusResumableVersion,
		"Upload-Length":   strconv.FormatInt(c.fileSize, 10),
		"Upload-Metadata": encoded,
	})

	resp, err := c.opts.Doer.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	// A 404 is accepted as create-success; this is a quirk of the reference
	// clients this protocol is modeled on (see DESIGN.md, Q1).
	ok := (resp.StatusCode >= 200 && resp.StatusCode < 300) || resp.StatusCode == http.StatusNotFound
	if !ok {
		return "", NewProtocolStatusError(resp.StatusCode, "create failed")
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", NewProtocolError("missing upload Uri")
	}

	uri, err := resolveLocation(endpointURL, location)
	if err != nil {
		return "", err
	}

	if err := c.opts.Store.Put(ctx, c.fingerprint, uri); err != nil {
		return "", &StoreError{Op: "put", Err: err}
	}

	return uri, nil
}

// probeOffset implements the HEAD probe that resolves the authoritative
// server-held offset (Resolving -> Transmitting).
func (c *Client) probeOffset(ctx context.Context, headers http.Header) error {
	c.mu.Lock()
	uri := c.resourceURI
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err != nil {
		return &TransportError{Err: err}
	}
	applyHeaders(req.Header, c.opts.ExtraHeaders, headers, map[string]string{
		"Tus-Resumable": tusResumableVersion,
	})

	resp, err := c.opts.Doer.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewProtocolStatusError(resp.StatusCode, "probe failed")
	}

	offset, err := parseOffsetHeader(resp.Header.Get("Upload-Offset"))
	if err != nil {
		return NewProtocolError("Expected HEADER 'Upload-Offset'")
	}

	c.mu.Lock()
	c.offset = offset
	c.mu.Unlock()
	return nil
}

// transmit implements the Transmitting loop of §4.6.
func (c *Client) transmit(ctx context.Context, headers http.Header, obs Observer, retryHook RetryHook) error {
	start := time.Now()
	var bytesSent int64

	var loop func() error
	loop = func() error {
		for {
			if c.paused.Load() {
				return nil
			}

			c.mu.Lock()
			offset := c.offset
			size := c.fileSize
			uri := c.resourceURI
			c.mu.Unlock()

			if offset >= size {
				return c.complete(obs)
			}

			chunk, err := c.file.ReadChunk(offset, c.opts.MaxChunkBytes)
			if err != nil {
				return c.handleFailure(ctx, err, retryHook, loop)
			}

			newOffset, err := c.sendChunk(ctx, uri, headers, offset, chunk)
			if err != nil {
				return c.handleFailure(ctx, err, retryHook, loop)
			}

			c.mu.Lock()
			c.offset = newOffset
			// Reset on a fully-acknowledged chunk rather than on any forward
			// byte: a cooperative, single-threaded engine only ever learns
			// about progress once per PATCH response, so there is no
			// sub-chunk moment to reset on anyway (see DESIGN.md, Q4).
			c.attempt = 0
			c.mu.Unlock()

			bytesSent += int64(len(chunk))
			percent := clamp(100*float64(newOffset)/float64(size), 0, 100)
			obs.OnProgress(percent, c.progressETA(start, bytesSent, size-newOffset))

			if newOffset >= size {
				return c.complete(obs)
			}
		}
	}

	return loop()
}

func (c *Client) progressETA(start time.Time, bytesSent, remaining int64) *time.Duration {
	if mbps := c.currentSpeedMbps(); mbps != nil {
		d := etaFromSpeed(remaining, *mbps)
		return &d
	}
	elapsed := time.Since(start)
	if bytesSent <= 0 || elapsed <= 0 {
		return nil
	}
	bytesPerMs := float64(bytesSent) / float64(elapsed.Milliseconds())
	if bytesPerMs <= 0 {
		return nil
	}
	d := time.Duration(float64(remaining)/bytesPerMs) * time.Millisecond
	return &d
}

func (c *Client) sendChunk(ctx context.Context, uri string, headers http.Header, offset int64, chunk []byte) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, uri, bytes.NewReader(chunk))
	if err != nil {
		return 0, &TransportError{Err: err}
	}
	applyHeaders(req.Header, c.opts.ExtraHeaders, headers, map[string]string{
		"Tus-Resumable": tusResumableVersion,
		"Upload-Offset": strconv.FormatInt(offset, 10),
		"Content-Type":  "application/offset+octet-stream",
	})
	req.ContentLength = int64(len(chunk))

	resp, err := c.opts.Doer.Do(req)
	if err != nil {
		return 0, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, NewProtocolStatusError(resp.StatusCode, "patch failed")
	}

	serverOffset, err := parseOffsetHeader(resp.Header.Get("Upload-Offset"))
	if err != nil {
		return 0, NewProtocolError("Expected HEADER 'Upload-Offset'")
	}

	expected := offset + int64(len(chunk))
	if serverOffset != expected {
		return 0, NewProtocolError(fmt.Sprintf("offset mismatch: server=%d, expected=%d", serverOffset, expected))
	}

	return serverOffset, nil
}

func (c *Client) complete(obs Observer) error {
	obs.OnComplete()
	return nil
}

func (c *Client) handleFailure(ctx context.Context, cause error, retryHook RetryHook, resume func() error) error {
	c.mu.Lock()
	attempt := c.attempt
	c.mu.Unlock()

	if attempt >= c.opts.MaxRetries {
		c.opts.Logger.Error("upload failed fatally", "fingerprint", c.fingerprint, "attempt", attempt, "error", cause)
		return cause
	}

	wait := retry.Interval(attempt, c.opts.FirstRetryCooldownSeconds, c.opts.RetryScale, *c.opts.Jitter)

	c.mu.Lock()
	c.attempt++
	c.mu.Unlock()

	if retryHook == nil {
		return cause
	}

	c.opts.Logger.Warn("chunk failed, scheduling retry", "fingerprint", c.fingerprint, "attempt", attempt, "wait", wait, "error", cause)
	return retryHook(wait, resume)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// applyHeaders layers extra (Options.ExtraHeaders, the session-wide
// defaults), caller (UploadParams.Headers, this call's overrides), and
// protocolOverrides (the wire-mandated headers, which always win) onto dst,
// in that precedence order.
func applyHeaders(dst http.Header, extra, caller http.Header, protocolOverrides map[string]string) {
	for k, vs := range extra {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
	for k, vs := range caller {
		dst.Del(k)
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
	for k, v := range protocolOverrides {
		dst.Set(k, v)
	}
}

func parseOffsetHeader(raw string) (int64, error) {
	raw = firstCommaField(raw)
	if raw == "" {
		return 0, fmt.Errorf("missing offset header")
	}
	return strconv.ParseInt(raw, 10, 64)
}

func firstCommaField(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		return strings.TrimSpace(v[:i])
	}
	return strings.TrimSpace(v)
}

// resolveLocation resolves a Location header value against endpoint,
// inheriting scheme/host when the header omits them, and keeping only the
// portion before the first comma when the server concatenated duplicate
// headers (§6).
func resolveLocation(endpoint *url.URL, location string) (string, error) {
	location = firstCommaField(location)
	if location == "" {
		return "", NewProtocolError("missing upload Uri")
	}

	locURL, err := url.Parse(location)
	if err != nil {
		return "", NewProtocolError("missing upload Uri")
	}

	resolved := endpoint.ResolveReference(locURL)
	return resolved.String(), nil
}
