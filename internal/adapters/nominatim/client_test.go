package nominatim_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/locationwizard/internal/adapters/nominatim"
	"github.com/samirrijal/locationwizard/internal/core/domain"
)

func newClient(t *testing.T, h http.HandlerFunc) *nominatim.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return nominatim.New(nominatim.Config{BaseURL: srv.URL + "/"})
}

func TestSearch_ReturnsFirstHit(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Pune, India", q.Get("q"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "in", q.Get("countrycodes"))
		assert.Equal(t, nominatim.DefaultUserAgent, r.Header.Get("User-Agent"))

		_, _ = w.Write([]byte(`[{"lat":"18.5204","lon":"73.8567","display_name":"Pune, Maharashtra, India"}]`))
	})

	res, err := c.Search(context.Background(), "Pune")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.InDelta(t, 18.5204, res.Lat, 1e-9)
	assert.InDelta(t, 73.8567, res.Lon, 1e-9)
	assert.Equal(t, "Pune, Maharashtra, India", res.DisplayName)
	assert.Equal(t, domain.SourceNominatim, res.Source)
}

func TestSearch_DisplayNameFallsBackToQuery(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"12.97","lon":"77.59"}]`))
	})

	res, err := c.Search(context.Background(), "Bengaluru")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Bengaluru", res.DisplayName)
}

func TestSearch_NoHits(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	res, err := c.Search(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestSearch_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"rate limited", http.StatusTooManyRequests, ``},
		{"malformed body", http.StatusOK, `{"lat":`},
		{"bad latitude", http.StatusOK, `[{"lat":"north","lon":"77"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			res, err := c.Search(context.Background(), "Delhi")
			assert.Error(t, err)
			assert.Nil(t, res)
		})
	}
}

func TestSearch_NonOKWrapsErrUpstream(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Search(context.Background(), "Delhi")
	assert.ErrorIs(t, err, nominatim.ErrUpstream)
}

func TestReverse(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "28.6139", q.Get("lat"))
		assert.Equal(t, "77.209", q.Get("lon"))
		assert.Equal(t, "1", q.Get("addressdetails"))
		_, _ = w.Write([]byte(`{"display_name":"Janpath, New Delhi, Delhi, India"}`))
	})

	name, err := c.Reverse(context.Background(), 28.6139, 77.209)
	require.NoError(t, err)
	assert.Equal(t, "Janpath, New Delhi, Delhi, India", name)
}

func TestReverse_NothingFound(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	})

	name, err := c.Reverse(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestReverse_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := nominatim.New(nominatim.Config{BaseURL: srv.URL, ReverseTimeout: 50 * time.Millisecond})
	_, err := c.Reverse(context.Background(), 28.6, 77.2)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := nominatim.New(nominatim.Config{BaseURL: srv.URL}, nominatim.WithBreaker(nominatim.NewBreaker("test")))
	for i := 0; i < 5; i++ {
		_, err := c.Search(context.Background(), "Delhi")
		require.ErrorIs(t, err, nominatim.ErrUpstream)
	}

	_, err := c.Search(context.Background(), "Delhi")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), calls.Load())
}
