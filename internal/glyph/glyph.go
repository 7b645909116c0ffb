// Package glyph maps plain ASCII letters and digits to Unicode
// mathematical sans-serif lookalikes and back.
package glyph

import (
	"fmt"
	"strings"
)

// Style selects a lookalike alphabet.
type Style string

const (
	Bold   Style = "bold"
	Italic Style = "italic"
)

// ParseStyle parses a style name.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case Bold, Italic:
		return Style(s), nil
	}
	return "", fmt.Errorf("unknown style %q (use bold or italic)", s)
}

// First code points of each run in the Mathematical Alphanumeric Symbols block.
const (
	boldUpper   = 0x1D5D4 // 𝗔
	boldLower   = 0x1D5EE // 𝗮
	boldDigit   = 0x1D7EC // 𝟬
	italicUpper = 0x1D608 // 𝘈
	italicLower = 0x1D622 // 𝘢
)

var (
	boldTable   = map[rune]rune{}
	italicTable = map[rune]rune{}

	boldReverse   = map[rune]rune{}
	italicReverse = map[rune]rune{}
)

func init() {
	for i := rune(0); i < 26; i++ {
		boldTable['A'+i] = boldUpper + i
		boldTable['a'+i] = boldLower + i
		italicTable['A'+i] = italicUpper + i
		italicTable['a'+i] = italicLower + i
	}
	// Italic has no digit run.
	for i := rune(0); i < 10; i++ {
		boldTable['0'+i] = boldDigit + i
	}

	for k, v := range boldTable {
		boldReverse[v] = k
	}
	for k, v := range italicTable {
		italicReverse[v] = k
	}
}

// Encode returns the styled glyph for r, or r unchanged if the style has no
// glyph for it.
func Encode(r rune, style Style) rune {
	var table map[rune]rune
	switch style {
	case Bold:
		table = boldTable
	case Italic:
		table = italicTable
	default:
		return r
	}
	if g, ok := table[r]; ok {
		return g
	}
	return r
}

// Decode reverses either style, bold first. Anything else passes through.
func Decode(r rune) rune {
	if p, ok := boldReverse[r]; ok {
		return p
	}
	if p, ok := italicReverse[r]; ok {
		return p
	}
	return r
}

// EncodeString applies Encode to every rune of s.
func EncodeString(s string, style Style) string {
	var b strings.Builder
	b.Grow(len(s) * 4)
	for _, r := range s {
		b.WriteRune(Encode(r, style))
	}
	return b.String()
}

// DecodeString applies Decode to every rune of s.
func DecodeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(Decode(r))
	}
	return b.String()
}
