package store

import (
	"context"
	"sort"
	"sync"

	"github.com/h9-tec/qiraat-engine/core/qiraat"
	"github.com/h9-tec/qiraat-engine/core/quran"
)

// Memory is a map-backed store implementing both engine interfaces.
// Safe for concurrent use; ReplaceDifferences is atomic under the
// write lock, matching the transactional guarantee of the SQLite
// store.
type Memory struct {
	mu    sync.RWMutex
	texts map[string]map[quran.VerseKey]qiraat.VerseText
	diffs map[quran.VerseKey][]qiraat.Difference
}

var (
	_ qiraat.CorpusStore     = (*Memory)(nil)
	_ qiraat.DifferenceStore = (*Memory)(nil)
)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		texts: make(map[string]map[quran.VerseKey]qiraat.VerseText),
		diffs: make(map[quran.VerseKey][]qiraat.Difference),
	}
}

// PutText inserts or replaces a transcription.
func (m *Memory) PutText(_ context.Context, vt qiraat.VerseText) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.texts[vt.Lineage] == nil {
		m.texts[vt.Lineage] = make(map[quran.VerseKey]qiraat.VerseText)
	}
	m.texts[vt.Lineage][vt.Key] = vt
	return nil
}

// GetText returns one lineage's transcription of a verse.
func (m *Memory) GetText(_ context.Context, lineage string, key quran.VerseKey) (qiraat.VerseText, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vt, ok := m.texts[lineage][key]
	return vt, ok, nil
}

// TextsForVerse returns every transcription of a verse.
func (m *Memory) TextsForVerse(_ context.Context, key quran.VerseKey) (map[string]qiraat.VerseText, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]qiraat.VerseText)
	for lineage, verses := range m.texts {
		if vt, ok := verses[key]; ok {
			out[lineage] = vt
		}
	}
	return out, nil
}

// ListLineages returns the lineage codes present, sorted.
func (m *Memory) ListLineages(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	codes := make([]string, 0, len(m.texts))
	for code := range m.texts {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

// ListVerseKeys returns a lineage's verses in canonical order.
func (m *Memory) ListVerseKeys(_ context.Context, lineage string) ([]quran.VerseKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]quran.VerseKey, 0, len(m.texts[lineage]))
	for k := range m.texts[lineage] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return quran.CompareKeys(keys[i], keys[j]) < 0 })
	return keys, nil
}

// PutDifference appends one difference record.
func (m *Memory) PutDifference(_ context.Context, d qiraat.Difference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diffs[d.Key] = append(m.diffs[d.Key], d)
	return nil
}

// GetDifferences returns a verse's differences in position order.
func (m *Memory) GetDifferences(_ context.Context, key quran.VerseKey) ([]qiraat.Difference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]qiraat.Difference(nil), m.diffs[key]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// DeleteDifferences removes a verse's differences.
func (m *Memory) DeleteDifferences(_ context.Context, key quran.VerseKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.diffs, key)
	return nil
}

// ReplaceDifferences swaps a verse's differences atomically.
func (m *Memory) ReplaceDifferences(_ context.Context, key quran.VerseKey, diffs []qiraat.Difference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.diffs, key)
	if len(diffs) > 0 {
		m.diffs[key] = append([]qiraat.Difference(nil), diffs...)
	}
	return nil
}

// DifferenceKeys returns the verses holding differences, in canonical
// order.
func (m *Memory) DifferenceKeys(_ context.Context) ([]quran.VerseKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]quran.VerseKey, 0, len(m.diffs))
	for k := range m.diffs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return quran.CompareKeys(keys[i], keys[j]) < 0 })
	return keys, nil
}
