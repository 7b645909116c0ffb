// Package model defines the core post and usage data types.
package model

import (
	"time"
	"unicode/utf16"
)

// MaxExportChars is the draft size above which copy/export is disabled.
const MaxExportChars = 3000

// Field names one of the three editable parts of a draft.
type Field string

const (
	FieldTitle Field = "title"
	FieldText  Field = "text"
	FieldCTA   Field = "cta"
)

// ValidFields are the allowed draft fields.
var ValidFields = map[Field]bool{
	FieldTitle: true,
	FieldText:  true,
	FieldCTA:   true,
}

// Draft is the in-progress three-field post.
type Draft struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	CTA   string `json:"cta"`
}

// Get returns the current value of f.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldTitle:
		return d.Title
	case FieldText:
		return d.Text
	case FieldCTA:
		return d.CTA
	}
	return ""
}

// With returns a copy of d with f replaced wholesale by value.
func (d Draft) With(f Field, value string) Draft {
	switch f {
	case FieldTitle:
		d.Title = value
	case FieldText:
		d.Text = value
	case FieldCTA:
		d.CTA = value
	}
	return d
}

// CharCount is the length of all three fields in UTF-16 code units, the
// unit the feed counts in. Styled glyphs count as two.
func (d Draft) CharCount() int {
	return utf16Len(d.Title) + utf16Len(d.Text) + utf16Len(d.CTA)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// Exportable reports whether the draft is small enough to copy or export.
func (d Draft) Exportable() bool {
	return d.CharCount() <= MaxExportChars
}

// Selection is a [Start, End) rune range inside one draft field.
type Selection struct {
	Field Field `json:"field"`
	Start int   `json:"start"`
	End   int   `json:"end"`
}

// IsEmpty reports whether the selection is a collapsed caret.
func (s Selection) IsEmpty() bool {
	return s.Start >= s.End
}

// Len returns the selection length in runes.
func (s Selection) Len() int {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// Suggestion is one idea returned by the generation service.
// The wire name of the title field is "titel".
type Suggestion struct {
	Title string `json:"titel" validate:"required"`
	Text  string `json:"text" validate:"required"`
	CTA   string `json:"cta" validate:"required"`
}

// Draft converts the suggestion into a draft.
func (s Suggestion) Draft() Draft {
	return Draft{Title: s.Title, Text: s.Text, CTA: s.CTA}
}

// UsageRecord is the persisted anonymous daily usage.
type UsageRecord struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

// SavedPost is a draft persisted for an authenticated user.
type SavedPost struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CTA       string    `json:"cta"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreditGrant records credits added after a completed checkout.
type CreditGrant struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}
