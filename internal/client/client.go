// Package client talks to the idea-generation and text-transform endpoints.
//
// Generator wraps the idea endpoint with credit/quota gating, bounded
// retries with exponential backoff, per-attempt timeouts and supersede-on-new-call.
// Transformer is a single-shot call for rewriting a selected span.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// APIKeyHeader carries the service API key on every request.
const APIKeyHeader = "X-API-Key"

// Default endpoint paths and limits.
const (
	DefaultIdeasPath        = "/api/task/research_task"
	DefaultTransformPath    = "/api/transform-text"
	DefaultGenerateTimeout  = 240 * time.Second
	DefaultTransformTimeout = 30 * time.Second
	DefaultMaxAttempts      = 3
	DefaultInitialBackoff   = time.Second
	DefaultMaxBackoff       = 8 * time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// settings is shared by Generator and Transformer.
type settings struct {
	http           *http.Client
	path           string
	timeout        time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	sleep          SleepFunc
	log            zerolog.Logger
}

// Option configures a Generator or Transformer during construction.
type Option func(*settings) error

// WithHTTPClient replaces the underlying http.Client. Its transport is
// wrapped to add the API key.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		s.http = hc
		return nil
	}
}

// WithPath overrides the endpoint path.
func WithPath(p string) Option {
	return func(s *settings) error {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("path must start with /: %q", p)
		}
		s.path = p
		return nil
	}
}

// WithTimeout bounds each attempt. The timer is stopped as soon as the
// attempt completes.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be > 0")
		}
		s.timeout = d
		return nil
	}
}

// WithRetry sets the total number of attempts and the backoff bounds.
// Only the Generator retries.
func WithRetry(maxAttempts int, initial, max time.Duration) Option {
	return func(s *settings) error {
		if maxAttempts < 1 {
			return fmt.Errorf("max attempts must be >= 1")
		}
		if initial <= 0 || max < initial {
			return fmt.Errorf("invalid backoff bounds %s..%s", initial, max)
		}
		s.maxAttempts = maxAttempts
		s.initialBackoff = initial
		s.maxBackoff = max
		return nil
	}
}

// WithSleep replaces the backoff sleep, mainly so tests do not wait.
func WithSleep(fn SleepFunc) Option {
	return func(s *settings) error {
		if fn == nil {
			return fmt.Errorf("sleep func must not be nil")
		}
		s.sleep = fn
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) error {
		s.log = l
		return nil
	}
}

func newSettings(apiKey, path string, timeout time.Duration, opts []Option) (*settings, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	s := &settings{
		http:           &http.Client{},
		path:           path,
		timeout:        timeout,
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: DefaultInitialBackoff,
		maxBackoff:     DefaultMaxBackoff,
		sleep:          sleepCtx,
		log:            zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	base := s.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *s.http
	wrapped.Transport = &apiKeyTransport{base: base, apiKey: apiKey}
	s.http = &wrapped
	return s, nil
}

// apiKeyTransport adds the API key header to every request.
type apiKeyTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set(APIKeyHeader, t.apiKey)
	return t.base.RoundTrip(cloned)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// postJSON sends one POST bounded by timeout and returns the 2xx body.
// Failures are classified: ErrSuperseded when ctx itself is done, ErrTimeout
// when only the attempt deadline fired, *TransportError for network
// failures and *StatusError for non-2xx responses.
func postJSON(ctx context.Context, s *settings, url, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	actx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	attemptsTotal.WithLabelValues(endpoint).Inc()
	defer func() {
		requestSeconds.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, classifyDoError(ctx, actx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyDoError(ctx, actx, err)
	}

	s.log.Debug().
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, string(data))
	}
	return data, nil
}

func classifyDoError(parent, attempt context.Context, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("%w: %w", ErrSuperseded, context.Cause(parent))
	}
	if errors.Is(attempt.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return &TransportError{Err: err}
}
