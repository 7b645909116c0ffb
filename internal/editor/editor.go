// Package editor applies selection-aware edits to a three-field post draft.
//
// All offsets are rune offsets into the active field. Every write returns the
// selection the caller should restore, so there is no deferred cursor fix-up.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/rcliao/easiergen/internal/glyph"
	"github.com/rcliao/easiergen/internal/model"
)

var (
	// ErrNoActiveField is returned when an edit needs a focused field and none is set.
	ErrNoActiveField = errors.New("no active field")
	// ErrStaleSelection is returned when the selected text changed while a
	// transform was in flight.
	ErrStaleSelection = errors.New("selection is stale")
	// ErrTransformInFlight is returned when the field already has a transform running.
	ErrTransformInFlight = errors.New("a transform is already running for this field")
)

// TransformFunc rewrites a span of text, typically over the network.
type TransformFunc func(ctx context.Context, text string) (string, error)

// State is the serializable form of a session.
type State struct {
	Draft     model.Draft      `json:"draft"`
	Selection *model.Selection `json:"selection,omitempty"`
}

// Session owns a draft and the current selection. It is the only writer of
// the draft.
type Session struct {
	mu     sync.Mutex
	draft  model.Draft
	sel    model.Selection
	active bool

	transforms map[model.Field]*semaphore.Weighted
	log        zerolog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession starts a session over draft with no active field.
func NewSession(draft model.Draft, opts ...Option) *Session {
	s := &Session{
		draft:      draft,
		transforms: make(map[model.Field]*semaphore.Weighted, len(model.ValidFields)),
		log:        zerolog.Nop(),
	}
	for f := range model.ValidFields {
		s.transforms[f] = semaphore.NewWeighted(1)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore rebuilds a session from a saved state. A saved selection is
// clamped against the saved draft.
func Restore(st State, opts ...Option) *Session {
	s := NewSession(st.Draft, opts...)
	if st.Selection != nil && model.ValidFields[st.Selection.Field] {
		s.sel = clamp(*st.Selection, st.Draft)
		s.active = true
	}
	return s
}

// State returns a snapshot suitable for persisting.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{Draft: s.draft}
	if s.active {
		sel := s.sel
		st.Selection = &sel
	}
	return st
}

// Draft returns the current draft.
func (s *Session) Draft() model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Selection returns the current selection and whether a field is active.
func (s *Session) Selection() (model.Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel, s.active
}

// SetField replaces a field wholesale, as typing does. An existing selection
// in that field is clamped to the new value.
func (s *Session) SetField(f model.Field, value string) error {
	if !model.ValidFields[f] {
		return fmt.Errorf("unknown field %q", f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = s.draft.With(f, value)
	if s.active && s.sel.Field == f {
		s.sel = clamp(s.sel, s.draft)
	}
	return nil
}

// Select focuses field f and sets the selection. Reversed ranges are
// normalized and out-of-range offsets are clamped.
func (s *Session) Select(f model.Field, start, end int) (model.Selection, error) {
	if !model.ValidFields[f] {
		return model.Selection{}, fmt.Errorf("unknown field %q", f)
	}
	if start > end {
		start, end = end, start
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = clamp(model.Selection{Field: f, Start: start, End: end}, s.draft)
	s.active = true
	return s.sel, nil
}

// ApplyStyle replaces the selected text with its styled form and selects the
// result. An empty selection is a no-op.
func (s *Session) ApplyStyle(style glyph.Style) (model.Selection, error) {
	return s.rewriteSelection(func(text string) string {
		return glyph.EncodeString(text, style)
	})
}

// ClearStyle maps styled glyphs in the selection back to plain characters.
func (s *Session) ClearStyle() (model.Selection, error) {
	return s.rewriteSelection(glyph.DecodeString)
}

func (s *Session) rewriteSelection(fn func(string) string) (model.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return model.Selection{}, ErrNoActiveField
	}
	sel := clamp(s.sel, s.draft)
	if sel.IsEmpty() {
		return sel, nil
	}

	value := []rune(s.draft.Get(sel.Field))
	replaced := fn(string(value[sel.Start:sel.End]))
	s.draft = s.draft.With(sel.Field, string(value[:sel.Start])+replaced+string(value[sel.End:]))
	s.sel = model.Selection{
		Field: sel.Field,
		Start: sel.Start,
		End:   sel.Start + utf8.RuneCountInString(replaced),
	}
	return s.sel, nil
}

// InsertAtCursor inserts content at the selection start and collapses the
// caret right after it. Calling it twice inserts twice.
func (s *Session) InsertAtCursor(content string) (model.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return model.Selection{}, ErrNoActiveField
	}
	sel := clamp(s.sel, s.draft)
	value := []rune(s.draft.Get(sel.Field))
	s.draft = s.draft.With(sel.Field, string(value[:sel.Start])+content+string(value[sel.Start:]))

	caret := sel.Start + utf8.RuneCountInString(content)
	s.sel = model.Selection{Field: sel.Field, Start: caret, End: caret}
	return s.sel, nil
}

// ApplySuggestion replaces all three fields with a generated suggestion and
// drops the selection.
func (s *Session) ApplySuggestion(sug model.Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = sug.Draft()
	s.sel = model.Selection{}
	s.active = false
}

// ApplyTransform sends the selected text through fn and splices the result
// back at the original offsets. Only one transform may run per field. If the
// selected span changed while fn ran, the result is discarded.
func (s *Session) ApplyTransform(ctx context.Context, fn TransformFunc) (model.Selection, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return model.Selection{}, ErrNoActiveField
	}
	snap := clamp(s.sel, s.draft)
	if snap.IsEmpty() {
		s.mu.Unlock()
		return snap, nil
	}
	selected := string([]rune(s.draft.Get(snap.Field))[snap.Start:snap.End])
	s.mu.Unlock()

	lock := s.transforms[snap.Field]
	if !lock.TryAcquire(1) {
		return snap, ErrTransformInFlight
	}
	defer lock.Release(1)

	out, err := fn(ctx, selected)
	if err != nil {
		return snap, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	value := []rune(s.draft.Get(snap.Field))
	if snap.End > len(value) || string(value[snap.Start:snap.End]) != selected {
		s.log.Debug().Str("field", string(snap.Field)).Msg("transform result discarded, selection changed")
		return snap, ErrStaleSelection
	}
	s.draft = s.draft.With(snap.Field, string(value[:snap.Start])+out+string(value[snap.End:]))
	s.sel = model.Selection{
		Field: snap.Field,
		Start: snap.Start,
		End:   snap.Start + utf8.RuneCountInString(out),
	}
	s.active = true
	return s.sel, nil
}

func clamp(sel model.Selection, d model.Draft) model.Selection {
	n := utf8.RuneCountInString(d.Get(sel.Field))
	sel.Start = min(max(sel.Start, 0), n)
	sel.End = min(max(sel.End, sel.Start), n)
	return sel
}
