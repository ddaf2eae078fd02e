package quran

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref is a parsed verse reference: a whole surah, a surah range, a
// single verse, or a verse range within one surah.
type Ref struct {
	// Surah is the first (or only) surah number.
	Surah int `json:"surah"`

	// SurahEnd is the last surah of a surah range (0 otherwise).
	SurahEnd int `json:"surah_end,omitempty"`

	// Verse is the verse number (0 for whole-surah references).
	Verse int `json:"verse,omitempty"`

	// VerseEnd is the ending verse for ranges (0 otherwise).
	VerseEnd int `json:"verse_end,omitempty"`
}

// refGrammar is the participle grammar for verse references.
// Examples: "2", "2-4", "2:255", "2:1-20"
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Surah    int        `parser:"@Int"`
	SurahEnd *int       `parser:"( \"-\" @Int )?"`
	Span     *verseSpan `parser:"( \":\" @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type verseSpan struct {
	Start int  `parser:"@Int"`
	End   *int `parser:"( \"-\" @Int )?"`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// ParseRef parses a verse reference string.
// Supported formats:
//   - "2" (whole surah)
//   - "2-4" (surah range)
//   - "2:255" (single verse)
//   - "2:1-20" (verse range within one surah)
func ParseRef(s string) (*Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid reference format: %q: %w", s, err)
	}

	ref := &Ref{Surah: parsed.Surah}
	if parsed.SurahEnd != nil {
		ref.SurahEnd = *parsed.SurahEnd
	}
	if parsed.Span != nil {
		ref.Verse = parsed.Span.Start
		if parsed.Span.End != nil {
			ref.VerseEnd = *parsed.Span.End
		}
	}

	if err := ref.validate(); err != nil {
		return nil, fmt.Errorf("invalid reference %q: %w", s, err)
	}
	return ref, nil
}

func (r *Ref) validate() error {
	if r.SurahEnd != 0 && r.Verse != 0 {
		return fmt.Errorf("surah range cannot carry verse numbers")
	}
	if _, ok := BySurah(r.Surah); !ok {
		return fmt.Errorf("surah %d out of range 1..%d", r.Surah, SurahCount)
	}
	if r.SurahEnd != 0 {
		if _, ok := BySurah(r.SurahEnd); !ok {
			return fmt.Errorf("surah %d out of range 1..%d", r.SurahEnd, SurahCount)
		}
		if r.SurahEnd < r.Surah {
			return fmt.Errorf("surah range %d-%d is reversed", r.Surah, r.SurahEnd)
		}
	}
	if r.Verse != 0 {
		count := VerseCount(r.Surah)
		if r.Verse > count {
			return fmt.Errorf("surah %d has %d verses, got verse %d", r.Surah, count, r.Verse)
		}
		if r.VerseEnd != 0 {
			if r.VerseEnd < r.Verse {
				return fmt.Errorf("verse range %d-%d is reversed", r.Verse, r.VerseEnd)
			}
			if r.VerseEnd > count {
				return fmt.Errorf("surah %d has %d verses, got verse %d", r.Surah, count, r.VerseEnd)
			}
		}
	}
	return nil
}

// String renders the reference in its canonical text form.
func (r *Ref) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(r.Surah))
	if r.SurahEnd != 0 {
		sb.WriteString("-")
		sb.WriteString(strconv.Itoa(r.SurahEnd))
		return sb.String()
	}
	if r.Verse != 0 {
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(r.Verse))
		if r.VerseEnd != 0 {
			sb.WriteString("-")
			sb.WriteString(strconv.Itoa(r.VerseEnd))
		}
	}
	return sb.String()
}

// IsRange reports whether the reference spans more than one verse.
func (r *Ref) IsRange() bool {
	return r.SurahEnd > r.Surah || r.VerseEnd > r.Verse || r.Verse == 0
}

// Expand returns the concrete verse keys the reference covers, in
// canonical order.
func (r *Ref) Expand() []VerseKey {
	switch {
	case r.SurahEnd != 0:
		var keys []VerseKey
		for n := r.Surah; n <= r.SurahEnd; n++ {
			keys = append(keys, SurahKeys(n)...)
		}
		return keys
	case r.Verse == 0:
		return SurahKeys(r.Surah)
	case r.VerseEnd != 0:
		keys := make([]VerseKey, 0, r.VerseEnd-r.Verse+1)
		for v := r.Verse; v <= r.VerseEnd; v++ {
			keys = append(keys, VerseKey{Surah: r.Surah, Verse: v})
		}
		return keys
	default:
		return []VerseKey{{Surah: r.Surah, Verse: r.Verse}}
	}
}
