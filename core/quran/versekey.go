package quran

import "fmt"

// VerseKey identifies one verse by surah and verse number.
type VerseKey struct {
	Surah int `json:"surah"`
	Verse int `json:"verse"`
}

// String renders the key in the conventional "surah:verse" form,
// e.g. "2:255".
func (k VerseKey) String() string {
	return fmt.Sprintf("%d:%d", k.Surah, k.Verse)
}

// Valid reports whether k names a verse within the canonical structure.
func (k VerseKey) Valid() bool {
	c := VerseCount(k.Surah)
	return c > 0 && k.Verse >= 1 && k.Verse <= c
}

// CompareKeys orders keys by surah, then verse. It returns a negative
// number, zero, or a positive number as a sorts before, equal to, or
// after b.
func CompareKeys(a, b VerseKey) int {
	if a.Surah != b.Surah {
		return a.Surah - b.Surah
	}
	return a.Verse - b.Verse
}

// SurahKeys returns every canonical verse key of surah n in order, or
// nil when n is out of range.
func SurahKeys(n int) []VerseKey {
	count := VerseCount(n)
	if count == 0 {
		return nil
	}
	keys := make([]VerseKey, count)
	for i := range keys {
		keys[i] = VerseKey{Surah: n, Verse: i + 1}
	}
	return keys
}

// AllKeys returns every canonical verse key in order, all 6236 of them.
func AllKeys() []VerseKey {
	keys := make([]VerseKey, 0, TotalVerses)
	for n := 1; n <= SurahCount; n++ {
		keys = append(keys, SurahKeys(n)...)
	}
	return keys
}
