// Package retry implements the pacing algebra used to space out retried
// chunk uploads: constant, linear, and exponential backoff, each with
// optional jitter.
package retry

import (
	"math"
	"math/rand"
	"time"
)

// Scale selects how the base wait grows with the attempt counter.
type Scale string

const (
	Constant    Scale = "constant"
	Linear      Scale = "linear"
	Exponential Scale = "exponential"
)

// DefaultJitter is applied when a caller does not specify one. A jitter of
// 0.5 means the final wait is uniformly distributed in
// [0.5*base, 1.5*base].
const DefaultJitter = 0.5

// Interval computes the wait duration before retry number attempt+1, given a
// base wait in seconds, a Scale, and a jitter fraction.
//
// attempt is 0-indexed on the first failure: the first retry is attempt 0,
// the second is attempt 1, and so on. base==0 always returns zero,
// regardless of scale or jitter, since there is nothing to scale.
func Interval(attempt int, baseSeconds float64, scale Scale, jitter float64) time.Duration {
	if baseSeconds == 0 {
		return 0
	}

	base := baseSeconds
	if attempt > 0 {
		switch scale {
		case Linear:
			base = float64(attempt+1) * baseSeconds
		case Exponential:
			base = baseSeconds * math.Pow(2, float64(attempt))
		default: // Constant
			base = baseSeconds
		}
	}

	jittered := base * (1 + jitter*(2*rand.Float64()-1))
	if jittered < 0 {
		jittered = 0
	}
	return time.Duration(math.Floor(jittered)) * time.Second
}
