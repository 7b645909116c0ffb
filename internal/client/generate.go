package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"

	"github.com/rcliao/easiergen/internal/model"
)

// SuggestionCount is the exact number of suggestions a valid response holds.
const SuggestionCount = 5

var validate = validator.New(validator.WithRequiredStructEnabled())

// Credits is the balance of an authenticated user.
type Credits interface {
	Balance(ctx context.Context, userID string) (int, error)
	// UseCredit deducts one credit and reports whether it was available.
	UseCredit(ctx context.Context, userID string) (bool, error)
}

// Quota is the anonymous daily allowance.
type Quota interface {
	CanProceed(ctx context.Context) (bool, error)
	// RecordUsage consumes one unit and reports whether one was available.
	RecordUsage(ctx context.Context) (bool, error)
}

// Identity reports who is calling. An empty user ID means anonymous.
type Identity interface {
	UserID() string
}

// StaticIdentity is a fixed caller identity.
type StaticIdentity string

func (s StaticIdentity) UserID() string { return string(s) }

// GenerateRequest holds the user's choices for an idea request.
type GenerateRequest struct {
	Topic       string `json:"topic" validate:"required"`
	Language    string `json:"language" validate:"required,oneof=DE US FR ES IT"`
	Address     string `json:"address" validate:"required,oneof=formally informally"`
	Mood        string `json:"mood" validate:"required,oneof=Inspiring Provocative Practical Storytelling Analytical"`
	Perspective string `json:"perspective" validate:"required,oneof=me us"`
}

// WithDefaults fills unset choices with DE, formally, Inspiring and me.
func (r GenerateRequest) WithDefaults() GenerateRequest {
	if r.Language == "" {
		r.Language = "DE"
	}
	if r.Address == "" {
		r.Address = "formally"
	}
	if r.Mood == "" {
		r.Mood = "Inspiring"
	}
	if r.Perspective == "" {
		r.Perspective = "me"
	}
	return r
}

type ideasResponse struct {
	Posts []model.Suggestion `json:"posts" validate:"len=5,dive"`
}

// Generator requests post suggestions. At most one Generate call is live at
// a time; starting a new one cancels the previous one.
type Generator struct {
	s        *settings
	url      string
	identity Identity
	credits  Credits
	quota    Quota

	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64
}

// NewGenerator creates a Generator for the service at baseURL.
func NewGenerator(baseURL, apiKey string, identity Identity, credits Credits, quota Quota, opts ...Option) (*Generator, error) {
	if identity == nil || credits == nil || quota == nil {
		return nil, fmt.Errorf("identity, credits and quota are required")
	}
	s, err := newSettings(apiKey, DefaultIdeasPath, DefaultGenerateTimeout, opts)
	if err != nil {
		return nil, err
	}
	return &Generator{
		s:        s,
		url:      strings.TrimRight(baseURL, "/") + s.path,
		identity: identity,
		credits:  credits,
		quota:    quota,
	}, nil
}

// Generate returns exactly SuggestionCount suggestions for req.
//
// Callers with a user ID need a positive credit balance, anonymous callers
// need remaining daily quota; otherwise ErrNoCredits or ErrQuotaReached is
// returned without any network call. Gateway and transport failures are
// retried with exponential backoff. Exactly one credit or quota unit is
// consumed per successful call and none on failure. A call cancelled by a
// newer one returns ErrSuperseded.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (suggestions []model.Suggestion, err error) {
	defer func() {
		outcomesTotal.WithLabelValues(endpointIdeas, outcome(err)).Inc()
	}()

	if strings.TrimSpace(req.Topic) == "" {
		return nil, ErrEmptyTopic
	}
	req = req.WithDefaults()
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	runCtx, seq := g.begin(ctx)
	defer g.end(seq)

	userID := g.identity.UserID()
	if err := g.gate(runCtx, userID); err != nil {
		if runCtx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrSuperseded, context.Cause(runCtx))
		}
		return nil, err
	}

	posts, err := g.fetch(runCtx, req)

	// The supersede check covers failures too, and shares the lock with
	// accounting so a newer call cannot slip in between them.
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq != g.seq || runCtx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrSuperseded, context.Cause(runCtx))
	}
	if err != nil {
		return nil, err
	}
	if err := g.account(runCtx, userID); err != nil {
		return nil, err
	}
	return posts, nil
}

// begin cancels any in-flight call and registers a new one.
func (g *Generator) begin(ctx context.Context) (context.Context, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.seq++
	return runCtx, g.seq
}

func (g *Generator) end(seq uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seq == seq && g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

func (g *Generator) gate(ctx context.Context, userID string) error {
	if userID != "" {
		balance, err := g.credits.Balance(ctx, userID)
		if err != nil {
			return fmt.Errorf("check credits: %w", err)
		}
		if balance <= 0 {
			return ErrNoCredits
		}
		return nil
	}
	ok, err := g.quota.CanProceed(ctx)
	if err != nil {
		return fmt.Errorf("check quota: %w", err)
	}
	if !ok {
		return ErrQuotaReached
	}
	return nil
}

func (g *Generator) account(ctx context.Context, userID string) error {
	var (
		ok  bool
		err error
	)
	if userID != "" {
		ok, err = g.credits.UseCredit(ctx, userID)
	} else {
		ok, err = g.quota.RecordUsage(ctx)
	}
	if err != nil {
		return &AccountingError{Err: err}
	}
	if !ok {
		return &AccountingError{Err: errors.New("no unit left to consume")}
	}
	return nil
}

// fetch runs the retry loop. Attempts are counted from 1 and capped at
// maxAttempts; waits grow from initialBackoff by a factor of two up to
// maxBackoff.
func (g *Generator) fetch(ctx context.Context, req GenerateRequest) ([]model.Suggestion, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.s.initialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = g.s.maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	for attempt := 1; ; attempt++ {
		posts, err := g.attempt(ctx, req)
		if err == nil {
			return posts, nil
		}
		if IsSilent(err) {
			return nil, err
		}
		if !isRetryable(err) || attempt >= g.s.maxAttempts {
			var se *StatusError
			if errors.As(err, &se) {
				se.Attempt = attempt
				se.MaxAttempts = g.s.maxAttempts
			}
			g.s.log.Warn().Err(err).Int("attempt", attempt).Msg("generate failed")
			return nil, err
		}

		wait := b.NextBackOff()
		g.s.log.Debug().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", g.s.maxAttempts).
			Dur("backoff", wait).
			Msg("generate attempt failed, retrying")
		if err := g.s.sleep(ctx, wait); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSuperseded, err)
		}
	}
}

func (g *Generator) attempt(ctx context.Context, req GenerateRequest) ([]model.Suggestion, error) {
	data, err := postJSON(ctx, g.s, g.url, endpointIdeas, req)
	if err != nil {
		return nil, err
	}

	var resp ideasResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &ValidationError{Reason: "decode body", Err: err}
	}
	if err := validate.Struct(resp); err != nil {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("expected %d complete suggestions, got %d", SuggestionCount, len(resp.Posts)),
			Err:    err,
		}
	}
	return resp.Posts, nil
}
