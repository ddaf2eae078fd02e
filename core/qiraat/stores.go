package qiraat

import (
	"context"

	"github.com/h9-tec/qiraat-engine/core/quran"
)

// CorpusStore supplies verse transcriptions. The engine only reads;
// ingestion adapters populate it through PutText, keeping the
// (lineage, surah, verse) uniqueness invariant via upsert.
type CorpusStore interface {
	// GetText returns one lineage's transcription of a verse. found
	// is false when the lineage has no row for it; that is missing
	// data, not an error.
	GetText(ctx context.Context, lineage string, key quran.VerseKey) (VerseText, bool, error)

	// TextsForVerse returns every transcription of a verse keyed by
	// lineage code. Lineages without text are absent from the map.
	TextsForVerse(ctx context.Context, key quran.VerseKey) (map[string]VerseText, error)

	// PutText inserts or replaces a transcription.
	PutText(ctx context.Context, vt VerseText) error

	// ListLineages returns the lineage codes present in the corpus,
	// sorted.
	ListLineages(ctx context.Context) ([]string, error)

	// ListVerseKeys returns the verses a lineage holds, in canonical
	// order.
	ListVerseKeys(ctx context.Context, lineage string) ([]quran.VerseKey, error)
}

// DifferenceStore persists the engine's output. The write path for one
// verse is atomic: a concurrent reader never observes a half-replaced
// verse.
type DifferenceStore interface {
	// PutDifference appends one difference record.
	PutDifference(ctx context.Context, d Difference) error

	// GetDifferences returns a verse's differences in position order.
	GetDifferences(ctx context.Context, key quran.VerseKey) ([]Difference, error)

	// DeleteDifferences removes a verse's differences and readings.
	DeleteDifferences(ctx context.Context, key quran.VerseKey) error

	// ReplaceDifferences deletes and reinserts a verse's differences
	// in a single transaction. Recomputation always goes through
	// here, which is what makes reruns idempotent.
	ReplaceDifferences(ctx context.Context, key quran.VerseKey, diffs []Difference) error
}
