// Package usage tracks the anonymous daily generation quota.
//
// The quota is advisory and client-side: it lives in a local key-value slot
// and resets at local midnight.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcliao/easiergen/internal/model"
)

const (
	// DailyLimit is the number of free generations per calendar day.
	DailyLimit = 10
	// SlotKey is the fixed key the usage record is stored under.
	SlotKey = "free_usage"

	dateLayout = "2006-01-02"
)

// Slot is a local key-value persistence slot holding JSON text.
type Slot interface {
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	Save(ctx context.Context, key, value string) error
}

// Limiter enforces DailyLimit over a persisted model.UsageRecord.
// Check-and-increment is serialized, so concurrent callers cannot overshoot.
type Limiter struct {
	mu   sync.Mutex
	slot Slot
	now  func() time.Time
	log  zerolog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the clock used to decide the current day.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithLogger sets the limiter logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Limiter) { l.log = log }
}

// NewLimiter returns a limiter backed by slot.
func NewLimiter(slot Slot, opts ...Option) *Limiter {
	l := &Limiter{slot: slot, now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Remaining returns how many free generations are left today.
func (l *Limiter) Remaining(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, err := l.today(ctx)
	if err != nil {
		return 0, err
	}
	return max(0, DailyLimit-rec.Count), nil
}

// CanProceed reports whether at least one free generation is left.
func (l *Limiter) CanProceed(ctx context.Context) (bool, error) {
	n, err := l.Remaining(ctx)
	return n > 0, err
}

// RecordUsage consumes one unit. It returns false without writing anything
// when the limit is already reached.
func (l *Limiter) RecordUsage(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, err := l.today(ctx)
	if err != nil {
		return false, err
	}
	if rec.Count >= DailyLimit {
		return false, nil
	}
	rec.Count++
	if err := l.save(ctx, rec); err != nil {
		return false, err
	}
	l.log.Debug().Int("count", rec.Count).Str("date", rec.Date).Msg("free usage recorded")
	return true, nil
}

// Record returns the current record after rolling it forward to today.
func (l *Limiter) Record(ctx context.Context) (model.UsageRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.today(ctx)
}

// today loads the record, resetting and persisting it when the stored date
// is not the current local day. Callers hold l.mu.
func (l *Limiter) today(ctx context.Context) (model.UsageRecord, error) {
	date := l.now().Local().Format(dateLayout)

	raw, ok, err := l.slot.Load(ctx, SlotKey)
	if err != nil {
		return model.UsageRecord{}, fmt.Errorf("load usage: %w", err)
	}
	rec := model.UsageRecord{Count: 0, Date: date}
	if ok {
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			l.log.Warn().Err(err).Msg("discarding unreadable usage record")
			rec = model.UsageRecord{Count: 0, Date: ""}
		}
	}

	if rec.Date != date {
		rec = model.UsageRecord{Count: 0, Date: date}
		if err := l.save(ctx, rec); err != nil {
			return model.UsageRecord{}, err
		}
	}
	rec.Count = min(max(rec.Count, 0), DailyLimit)
	return rec, nil
}

func (l *Limiter) save(ctx context.Context, rec model.UsageRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := l.slot.Save(ctx, SlotKey, string(b)); err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}
