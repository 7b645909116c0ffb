package glyph

import (
	"testing"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func TestRoundTripLetters(t *testing.T) {
	for _, style := range []Style{Bold, Italic} {
		for _, c := range letters {
			enc := Encode(c, style)
			if enc == c {
				t.Errorf("%s: expected %q to be styled", style, c)
			}
			if got := Decode(enc); got != c {
				t.Errorf("%s: Decode(Encode(%q)) = %q", style, c, got)
			}
		}
	}
}

func TestKnownGlyphs(t *testing.T) {
	tests := []struct {
		in    rune
		style Style
		want  rune
	}{
		{'a', Bold, '𝗮'},
		{'Z', Bold, '𝗭'},
		{'0', Bold, '𝟬'},
		{'9', Bold, '𝟵'},
		{'a', Italic, '𝘢'},
		{'Z', Italic, '𝘡'},
	}
	for _, tt := range tests {
		if got := Encode(tt.in, tt.style); got != tt.want {
			t.Errorf("Encode(%q, %s) = %q, want %q", tt.in, tt.style, got, tt.want)
		}
	}
}

func TestDigitsPassThroughItalic(t *testing.T) {
	for c := '0'; c <= '9'; c++ {
		if got := Encode(c, Italic); got != c {
			t.Errorf("expected digit %q unchanged under italic, got %q", c, got)
		}
	}
}

func TestUnsupportedPassThrough(t *testing.T) {
	for _, c := range []rune{' ', '!', '-', 'é', 'ß', '😀', '\n', '𝗮'} {
		if got := Encode(c, Bold); got != c {
			t.Errorf("Encode(%q, bold) = %q, want unchanged", c, got)
		}
		if got := Encode(c, Italic); got != c {
			t.Errorf("Encode(%q, italic) = %q, want unchanged", c, got)
		}
	}
	if got := Decode('x'); got != 'x' {
		t.Errorf("Decode('x') = %q", got)
	}
	if got := Encode('a', Style("strike")); got != 'a' {
		t.Errorf("unknown style should pass through, got %q", got)
	}
}

func TestStrings(t *testing.T) {
	in := "Hello, World 2025! 👋"
	bold := EncodeString(in, Bold)
	if bold != "𝗛𝗲𝗹𝗹𝗼, 𝗪𝗼𝗿𝗹𝗱 𝟮𝟬𝟮𝟱! 👋" {
		t.Errorf("unexpected bold: %q", bold)
	}
	if got := DecodeString(bold); got != in {
		t.Errorf("DecodeString(bold) = %q", got)
	}

	italic := EncodeString(in, Italic)
	if got := DecodeString(italic); got != in {
		t.Errorf("DecodeString(italic) = %q", got)
	}
}

func TestParseStyle(t *testing.T) {
	if s, err := ParseStyle("bold"); err != nil || s != Bold {
		t.Errorf("ParseStyle(bold) = %q, %v", s, err)
	}
	if _, err := ParseStyle("underline"); err == nil {
		t.Error("expected error for unknown style")
	}
}
