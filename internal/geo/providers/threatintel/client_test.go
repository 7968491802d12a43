package threatintel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden/internal/geo"
	"warden/pkg/platform/provider"
)

func TestDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/ip/203.0.113.9", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(`{"is_vpn":false,"is_proxy":false,"is_tor":true,"threat_level":"critical"}`))
	}))
	defer srv.Close()

	sig, err := New(srv.URL, "secret").Detect(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	assert.True(t, sig.IsTor)
	assert.Equal(t, geo.ThreatCritical, sig.ThreatLevel)
}

func TestDetect_StatusCategories(t *testing.T) {
	cases := []struct {
		status    int
		category  provider.Category
		retryable bool
	}{
		{http.StatusUnauthorized, provider.CategoryAuthentication, false},
		{http.StatusNotFound, provider.CategoryNotFound, false},
		{http.StatusTooManyRequests, provider.CategoryRateLimited, true},
		{http.StatusBadGateway, provider.CategoryOutage, true},
		{http.StatusBadRequest, provider.CategoryBadData, false},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := New(srv.URL, "k").Detect(context.Background(), "203.0.113.9")
			require.Error(t, err)
			assert.Equal(t, tc.category, provider.CategoryOf(err))
			assert.Equal(t, tc.retryable, provider.IsRetryable(err))
		})
	}
}

func TestDetect_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k").Detect(context.Background(), "203.0.113.9")
	assert.Equal(t, provider.CategoryBadData, provider.CategoryOf(err))
}

func TestDetect_UnknownThreatLabelIsLow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"threat_level":"spicy"}`))
	}))
	defer srv.Close()

	sig, err := New(srv.URL, "k").Detect(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, geo.ThreatLow, sig.ThreatLevel)
}
