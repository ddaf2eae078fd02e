// Package arabic normalizes Arabic verse text for comparison.
//
// Transcriptions of the same verse differ across sources in vocalization
// marks, in-text verse numerals, elongation, and a handful of letter
// variants. Normalization strips that orthographic noise so texts can be
// compared word for word. The normalized form exists only for comparison;
// display text keeps its diacritics.
package arabic

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	tatweel        = 'ـ' // ـ elongation
	alefMadda      = 'آ' // آ
	alefHamzaAbove = 'أ' // أ
	alefHamzaBelow = 'إ' // إ
	alef           = 'ا' // ا
	alefWasla      = 'ٱ' // ٱ
	tehMarbuta     = 'ة' // ة
	heh            = 'ه' // ه
	alefMaksura    = 'ى' // ى
	yeh            = 'ي' // ي
)

// Token pairs one word of display text with its normalized form.
type Token struct {
	// Display is the word as transcribed, diacritics intact, verse
	// marker removed.
	Display string

	// Norm is the normalized form used for comparison.
	Norm string
}

// IsTashkeel reports whether r is an Arabic vocalization or Quranic
// annotation mark. Covers the honorifics and small-high-sign blocks in
// addition to the plain harakat.
func IsTashkeel(r rune) bool {
	switch {
	case r >= 0x0610 && r <= 0x061A:
		return true
	case r >= 0x064B && r <= 0x065F:
		return true
	case r == 0x0670: // superscript alef
		return true
	case r >= 0x06D6 && r <= 0x06DC:
		return true
	case r >= 0x06DF && r <= 0x06E8:
		return true
	case r >= 0x06EA && r <= 0x06ED:
		return true
	}
	return false
}

func isVerseDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 0x0660 && r <= 0x0669)
}

// StripVerseMarker removes one trailing run of Eastern Arabic or Western
// digits. Printed editions append the verse number to the verse body;
// it is typography, not text.
func StripVerseMarker(s string) string {
	trimmed := strings.TrimRightFunc(s, unicode.IsSpace)
	rs := []rune(trimmed)
	end := len(rs)
	for end > 0 && isVerseDigit(rs[end-1]) {
		end--
	}
	if end == len(rs) {
		return trimmed
	}
	return strings.TrimRightFunc(string(rs[:end]), unicode.IsSpace)
}

func foldRune(r rune) rune {
	switch r {
	case alefMadda, alefHamzaAbove, alefHamzaBelow, alefWasla:
		return alef
	case tehMarbuta:
		return heh
	case alefMaksura:
		return yeh
	}
	return r
}

// normalizeWord strips marks and tatweel from a single word and folds
// letter variants.
func normalizeWord(w string) string {
	var b strings.Builder
	b.Grow(len(w))
	for _, r := range w {
		if IsTashkeel(r) || r == tatweel {
			continue
		}
		b.WriteRune(foldRune(r))
	}
	return b.String()
}

// Normalize returns the comparison form of raw verse text: NFC, verse
// marker stripped, tashkeel and tatweel removed, alef variants folded to
// bare alef, teh marbuta to heh, alef maksura to yeh, whitespace
// collapsed. Pure and total; any input yields a (possibly empty) result.
func Normalize(raw string) string {
	words := Tokenize(raw)
	if len(words) == 0 {
		return ""
	}
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Norm
	}
	return strings.Join(parts, " ")
}

// Tokenize splits raw verse text into whitespace-delimited word tokens.
// Tokens whose normalized form is empty (stray marks, standalone
// tatweel) are dropped so the display and normalized sequences stay
// aligned position for position.
func Tokenize(raw string) []Token {
	body := StripVerseMarker(norm.NFC.String(raw))
	words := strings.Fields(body)
	toks := make([]Token, 0, len(words))
	for _, w := range words {
		n := normalizeWord(w)
		if n == "" {
			continue
		}
		toks = append(toks, Token{Display: w, Norm: n})
	}
	return toks
}

// DisplayText returns raw verse text cleaned for display: verse marker
// stripped and whitespace collapsed, diacritics left in place.
func DisplayText(raw string) string {
	body := StripVerseMarker(norm.NFC.String(raw))
	return strings.Join(strings.Fields(body), " ")
}
