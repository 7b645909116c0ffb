package model

import (
	"strings"
	"testing"
)

func TestCharCountASCII(t *testing.T) {
	d := Draft{Title: "abc", Text: strings.Repeat("x", 2990), CTA: "1234567"}
	if got := d.CharCount(); got != 3000 {
		t.Fatalf("expected 3000, got %d", got)
	}
	if !d.Exportable() {
		t.Error("expected 3000 characters to be exportable")
	}
}

func TestCharCountStyledGlyphs(t *testing.T) {
	// U+1D5D4 MATHEMATICAL SANS-SERIF BOLD CAPITAL A
	bold := "\U0001D5D4"

	d := Draft{Text: strings.Repeat(bold, 1500)}
	if got := d.CharCount(); got != 3000 {
		t.Fatalf("expected 3000, got %d", got)
	}
	if !d.Exportable() {
		t.Error("expected 1500 styled glyphs to be exportable")
	}

	d.Text += bold
	if d.Exportable() {
		t.Errorf("expected 1501 styled glyphs to exceed the limit, count %d", d.CharCount())
	}

	d = Draft{Text: strings.Repeat(bold, 2000)}
	if got := d.CharCount(); got != 4000 {
		t.Errorf("expected 4000, got %d", got)
	}
}

func TestCharCountMixed(t *testing.T) {
	d := Draft{Title: "é", Text: "a\U0001D5EE", CTA: "🙂"}
	if got := d.CharCount(); got != 1+3+2 {
		t.Errorf("expected 6, got %d", got)
	}
}
