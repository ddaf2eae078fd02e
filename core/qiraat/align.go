package qiraat

import (
	"sort"

	"github.com/h9-tec/qiraat-engine/core/arabic"
	"github.com/h9-tec/qiraat-engine/core/quran"
)

// Align tokenizes every lineage's transcription of one verse and lays
// the tokens out for position-by-position comparison.
//
// If all lineages agree on token count, the matrix is dense: one
// column per lineage, one row per word position. If counts diverge,
// no sub-word or edit-distance alignment is attempted; the matrix
// degrades to a single whole-verse position whose token per lineage is
// the entire normalized text. Word-count divergence between
// independent transcription traditions is common (inserted or omitted
// connective particles), and a whole-verse diff is preferred over a
// misaligned word-level one.
//
// Lineages whose transcription normalizes to nothing are recorded in
// Dropped and excluded: text with no comparable content is missing
// data, not evidence of divergence.
func Align(key quran.VerseKey, texts map[string]VerseText) *TokenMatrix {
	m := &TokenMatrix{
		Key:     key,
		Columns: make(map[string][]arabic.Token, len(texts)),
	}

	codes := make([]string, 0, len(texts))
	for code := range texts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	count := -1
	uniform := true
	for _, code := range codes {
		toks := arabic.Tokenize(texts[code].Text)
		if len(toks) == 0 {
			m.Dropped = append(m.Dropped, code)
			continue
		}
		m.Lineages = append(m.Lineages, code)
		m.Columns[code] = toks
		if count == -1 {
			count = len(toks)
		} else if len(toks) != count {
			uniform = false
		}
	}

	if uniform || len(m.Lineages) == 0 {
		return m
	}

	// Whole-verse fallback: one synthetic position per lineage.
	m.WholeVerse = true
	for _, code := range m.Lineages {
		raw := texts[code].Text
		m.Columns[code] = []arabic.Token{{
			Display: arabic.DisplayText(raw),
			Norm:    arabic.Normalize(raw),
		}}
	}
	return m
}
