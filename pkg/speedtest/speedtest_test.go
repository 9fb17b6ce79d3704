package speedtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tus/tus-client-go/internal/transport"
)

func TestMeasure_NoEndpointsReturnsError(t *testing.T) {
	p := &Prober{}
	_, err := p.Measure(context.Background())
	require.Error(t, err)
}

func TestMeasure_SingleEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	p := &Prober{Endpoints: []string{ts.URL}, PayloadSize: 1024, Doer: transport.New()}
	mbps, err := p.Measure(context.Background())
	require.NoError(t, err)
	assert.Greater(t, mbps, 0.0)
}

func TestMeasure_AllEndpointsFail(t *testing.T) {
	p := &Prober{Endpoints: []string{"http://127.0.0.1:0"}, PayloadSize: 1024}
	_, err := p.Measure(context.Background())
	require.Error(t, err)
}
