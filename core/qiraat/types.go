package qiraat

import (
	"github.com/h9-tec/qiraat-engine/core/arabic"
	"github.com/h9-tec/qiraat-engine/core/quran"
)

// Lineage identifies one canonical transmission (riwaya) of the text:
// a reader (qari) paired with a named transmitter (rawi).
type Lineage struct {
	// Code is the stable lineage key, e.g. "hafs".
	Code string `yaml:"code" json:"code"`

	// ArabicName and EnglishName are the riwaya display titles,
	// e.g. "حفص عن عاصم" / "Hafs from Asim".
	ArabicName  string `yaml:"name_ar" json:"name_ar"`
	EnglishName string `yaml:"name_en" json:"name_en"`

	// RawiArabic and RawiEnglish name the transmitter.
	RawiArabic  string `yaml:"rawi_ar" json:"rawi_ar"`
	RawiEnglish string `yaml:"rawi_en" json:"rawi_en"`

	// QariArabic and QariEnglish name the reader the transmission
	// descends from.
	QariArabic  string `yaml:"qari_ar" json:"qari_ar"`
	QariEnglish string `yaml:"qari_en" json:"qari_en"`

	// Source tags the provenance of this lineage's transcriptions.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`
}

// VerseText is one lineage's transcription of one verse.
type VerseText struct {
	// Lineage is the transmission the text belongs to.
	Lineage string `json:"lineage"`

	// Key locates the verse.
	Key quran.VerseKey `json:"key"`

	// Text is the transcription as sourced, diacritics intact.
	Text string `json:"text"`

	// Simple is an undiacritized rendering when the source provides
	// one. Informational; comparison always normalizes Text.
	Simple string `json:"simple,omitempty"`

	// Juz and Page are print-edition locators when known.
	Juz  int `json:"juz,omitempty"`
	Page int `json:"page,omitempty"`
}

// TokenMatrix is one verse's transcriptions tokenized and laid out for
// position-by-position comparison.
type TokenMatrix struct {
	// Key locates the verse.
	Key quran.VerseKey

	// Lineages are the codes with comparable text, sorted.
	Lineages []string

	// Columns holds each lineage's token stream. All streams have
	// equal length; when WholeVerse is set that length is one.
	Columns map[string][]arabic.Token

	// WholeVerse marks the alignment-mismatch fallback: token counts
	// diverged, so each lineage contributes a single token covering
	// the entire verse.
	WholeVerse bool

	// Dropped lists lineages that held a transcription whose
	// normalized form was empty; they are excluded from comparison.
	Dropped []string
}

// PositionCount returns the number of comparable positions.
func (m *TokenMatrix) PositionCount() int {
	if len(m.Lineages) == 0 {
		return 0
	}
	return len(m.Columns[m.Lineages[0]])
}

// TokenAt returns one lineage's token at a position.
func (m *TokenMatrix) TokenAt(lineage string, pos int) (arabic.Token, bool) {
	col, ok := m.Columns[lineage]
	if !ok || pos < 0 || pos >= len(col) {
		return arabic.Token{}, false
	}
	return col[pos], true
}

// TokenClass is one equivalence class at one matrix position: the
// lineages sharing a normalized wording.
type TokenClass struct {
	// Norm is the normalized token all members share.
	Norm string

	// Members are the lineage codes sharing it, sorted.
	Members []string
}

// FlaggedPosition is a matrix position where more than one equivalence
// class exists. Classes are ordered by their lexicographically
// smallest member code so repeated runs produce identical output.
type FlaggedPosition struct {
	// Position is the 0-based token index.
	Position int

	// Classes partition the matrix lineages at this position.
	Classes []TokenClass
}

// Classification tags why a difference exists.
type Classification string

const (
	// ClassFarsh marks a word-specific lexical variant.
	ClassFarsh Classification = "farsh"

	// ClassUsul marks a recurring structural alternation.
	ClassUsul Classification = "usul"

	// ClassWholeVerse marks a verse compared whole because token
	// counts diverged across lineages.
	ClassWholeVerse Classification = "whole_verse"
)

// Difference records one divergent slot in one verse. Differences are
// created only by recomputation; updating a verse deletes its rows and
// reinserts them.
type Difference struct {
	// Key locates the verse.
	Key quran.VerseKey `json:"key"`

	// Position is the 0-based token index the divergence occurs at.
	// Whole-verse differences sit at position 0.
	Position int `json:"position"`

	// Word labels the slot with the baseline lineage's wording, or
	// the first reading's when the baseline holds no text here.
	// Empty for whole-verse differences.
	Word string `json:"word,omitempty"`

	// Class is the divergence classification.
	Class Classification `json:"class"`

	// Note carries diagnostics: the alignment fallback, an absent
	// baseline.
	Note string `json:"note,omitempty"`

	// Readings are the wording classes, one per equivalence class.
	Readings []Reading `json:"readings"`
}

// Reading is one wording class within a Difference. The readings of a
// Difference partition the lineages that held comparable text for the
// verse.
type Reading struct {
	// Text is the display wording, diacritics intact, taken from the
	// class's lexicographically smallest lineage code.
	Text string `json:"text"`

	// Norm is the normalized form the members share.
	Norm string `json:"norm"`

	// Lineages are the member codes, sorted.
	Lineages []string `json:"lineages"`

	// Baseline marks the reading held by the baseline lineage.
	Baseline bool `json:"baseline"`
}
