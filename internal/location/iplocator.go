package location

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/tidwall/gjson"

	apierrors "github.com/serenelabs/serene/internal/errors"
	"github.com/serenelabs/serene/internal/models"
)

// DefaultEndpoint is a coarse IP-based geolocation service. Accuracy is
// city-level at best, which is all the backend needs to localize resources.
const DefaultEndpoint = "https://ipapi.co/json/"

// AcquireTimeout bounds the single acquisition attempt.
const AcquireTimeout = 5 * time.Second

// IPLocator resolves a coarse location from the caller's IP address. One
// acquisition per process: the first result, success or failure, is cached
// and never retried.
type IPLocator struct {
	httpClient tls_client.HttpClient
	endpoint   string

	mu     sync.Mutex
	done   bool
	cached models.Location
	err    error
}

// LocatorOption configures an IPLocator
type LocatorOption func(*IPLocator)

// WithEndpoint overrides the geolocation service URL
func WithEndpoint(endpoint string) LocatorOption {
	return func(l *IPLocator) {
		l.endpoint = endpoint
	}
}

// WithHTTPClient injects the HTTP client, mainly for tests
func WithHTTPClient(httpClient tls_client.HttpClient) LocatorOption {
	return func(l *IPLocator) {
		l.httpClient = httpClient
	}
}

// NewIPLocator creates an IPLocator.
func NewIPLocator(opts ...LocatorOption) (*IPLocator, error) {
	l := &IPLocator{endpoint: DefaultEndpoint}
	for _, opt := range opts {
		opt(l)
	}

	if l.httpClient == nil {
		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(),
			tls_client.WithTimeoutSeconds(int(AcquireTimeout.Seconds())))
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		l.httpClient = httpClient
	}
	return l, nil
}

// Acquire performs the one-shot lookup. Every failure maps to
// ErrLocationUnavailable; the underlying cause is only worth a log line.
func (l *IPLocator) Acquire(ctx context.Context) (models.Location, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return l.cached, l.err
	}
	l.done = true
	l.cached, l.err = l.lookup(ctx)
	return l.cached, l.err
}

func (l *IPLocator) lookup(ctx context.Context) (models.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, AcquireTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return models.Location{}, apierrors.ErrLocationUnavailable
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return models.Location{}, apierrors.ErrLocationUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Location{}, apierrors.ErrLocationUnavailable
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Location{}, apierrors.ErrLocationUnavailable
	}

	lat := gjson.GetBytes(data, "latitude")
	lon := gjson.GetBytes(data, "longitude")
	if !lat.Exists() || !lon.Exists() {
		return models.Location{}, apierrors.ErrLocationUnavailable
	}

	return models.Location{
		Latitude:  lat.Float(),
		Longitude: lon.Float(),
		Known:     true,
	}, nil
}
