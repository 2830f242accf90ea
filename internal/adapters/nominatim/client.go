// Package nominatim is a geocoding client for the OpenStreetMap Nominatim API.
// All calls go through a circuit breaker and carry their own timeout.
package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/pkg/metrics"
)

// Defaults applied by New to zero Config fields.
const (
	// DefaultBaseURL is the public OpenStreetMap instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent identifies the client, as the Nominatim usage policy requires.
	DefaultUserAgent      = "LocationWizard/1.0"
	DefaultSearchTimeout  = 10 * time.Second
	DefaultReverseTimeout = 5 * time.Second

	maxBodyBytes = 1 << 20
)

// ErrUpstream wraps non-200 responses.
var ErrUpstream = errors.New("nominatim upstream error")

// Config configures a Client. Zero fields take the defaults above.
type Config struct {
	BaseURL        string
	UserAgent      string
	SearchTimeout  time.Duration
	ReverseTimeout time.Duration
	// CountryCodes restricts search results (Nominatim "countrycodes").
	CountryCodes string
	// QuerySuffix is appended to every search query.
	QuerySuffix string
}

// Client implements ports.Geocoder.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb *gobreaker.CircuitBreaker[[]byte]) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// New creates a Client. India-specific search defaults apply when
// CountryCodes and QuerySuffix are both empty.
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = DefaultSearchTimeout
	}
	if cfg.ReverseTimeout <= 0 {
		cfg.ReverseTimeout = DefaultReverseTimeout
	}
	if cfg.CountryCodes == "" && cfg.QuerySuffix == "" {
		cfg.CountryCodes = "in"
		cfg.QuerySuffix = ", India"
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{},
		breaker: NewBreaker("nominatim"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewBreaker returns the default breaker: open after 5 consecutive
// failures, half-open after 30s.
func NewBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

type searchHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Search returns the best match for query, or (nil, nil) when there is none.
func (c *Client) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query+c.cfg.QuerySuffix)
	params.Set("format", "json")
	params.Set("limit", "1")
	if c.cfg.CountryCodes != "" {
		params.Set("countrycodes", c.cfg.CountryCodes)
	}

	body, err := c.get(ctx, "search", "/search", params, c.cfg.SearchTimeout)
	if err != nil {
		return nil, err
	}

	var hits []searchHit
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if len(hits) == 0 {
		metrics.GeocoderRequests.WithLabelValues("search", metrics.ResultEmpty).Inc()
		return nil, nil
	}

	hit := hits[0]
	lat, err := strconv.ParseFloat(hit.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("decode search lat %q: %w", hit.Lat, err)
	}
	lon, err := strconv.ParseFloat(hit.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("decode search lon %q: %w", hit.Lon, err)
	}
	name := hit.DisplayName
	if name == "" {
		name = query
	}
	return &domain.SearchResult{Lat: lat, Lon: lon, DisplayName: name, Source: domain.SourceNominatim}, nil
}

// Reverse returns the display name for (lat, lon), or "" when Nominatim has none.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	body, err := c.get(ctx, "reverse", "/reverse", params, c.cfg.ReverseTimeout)
	if err != nil {
		return "", err
	}

	var r reverseResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("decode reverse response: %w", err)
	}
	if r.Error != "" || r.DisplayName == "" {
		metrics.GeocoderRequests.WithLabelValues("reverse", metrics.ResultEmpty).Inc()
		return "", nil
	}
	return r.DisplayName, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("build %s request: %w", op, err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request: %w", op, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return nil, fmt.Errorf("%w: %s returned status %d", ErrUpstream, op, resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read %s response: %w", op, err)
		}
		return data, nil
	})

	metrics.GeocoderDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.GeocoderRequests.WithLabelValues(op, metrics.Result(err)).Inc()
	return body, err
}
