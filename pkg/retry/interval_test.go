package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInterval_ZeroBaseIsAlwaysZero(t *testing.T) {
	assert.Equal(t, time.Duration(0), Interval(0, 0, Exponential, 0.9))
	assert.Equal(t, time.Duration(0), Interval(5, 0, Linear, 0.9))
}

func TestInterval_ConstantNoJitter(t *testing.T) {
	for n := 0; n < 4; n++ {
		assert.Equal(t, 2*time.Second, Interval(n, 2, Constant, 0))
	}
}

func TestInterval_LinearNoJitter(t *testing.T) {
	assert.Equal(t, 2*time.Second, Interval(0, 2, Linear, 0))
	assert.Equal(t, 4*time.Second, Interval(1, 2, Linear, 0))
	assert.Equal(t, 6*time.Second, Interval(2, 2, Linear, 0))
	assert.Equal(t, 8*time.Second, Interval(3, 2, Linear, 0))
}

func TestInterval_ExponentialNoJitter(t *testing.T) {
	assert.Equal(t, 2*time.Second, Interval(0, 2, Exponential, 0))
	assert.Equal(t, 4*time.Second, Interval(1, 2, Exponential, 0))
	assert.Equal(t, 8*time.Second, Interval(2, 2, Exponential, 0))
	assert.Equal(t, 16*time.Second, Interval(3, 2, Exponential, 0))
}

func TestInterval_JitterStaysWithinBounds(t *testing.T) {
	for i := 0; i < 200; i++ {
		d := Interval(4, 2, Exponential, 0.5)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, time.Duration(float64(2*16)*1.5)*time.Second)
	}
}
