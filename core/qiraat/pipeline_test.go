package qiraat

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/h9-tec/qiraat-engine/core/quran"
)

// fakeDiffStore collects differences in memory. ReplaceDifferences is
// atomic under a mutex, mirroring the per-verse transaction of the
// real store.
type fakeDiffStore struct {
	mu   sync.Mutex
	rows map[quran.VerseKey][]Difference
	fail error
}

func newFakeDiffStore() *fakeDiffStore {
	return &fakeDiffStore{rows: make(map[quran.VerseKey][]Difference)}
}

func (s *fakeDiffStore) PutDifference(_ context.Context, d Difference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.rows[d.Key] = append(s.rows[d.Key], d)
	return nil
}

func (s *fakeDiffStore) GetDifferences(_ context.Context, key quran.VerseKey) ([]Difference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Difference(nil), s.rows[key]...), nil
}

func (s *fakeDiffStore) DeleteDifferences(_ context.Context, key quran.VerseKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, key)
	return nil
}

func (s *fakeDiffStore) ReplaceDifferences(_ context.Context, key quran.VerseKey, diffs []Difference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	delete(s.rows, key)
	if len(diffs) > 0 {
		s.rows[key] = append([]Difference(nil), diffs...)
	}
	return nil
}

// seedCorpus builds a small three-lineage corpus over surah 112
// (4 verses): verse 1 diverges at one word, verse 2 diverges in token
// count, verses 3 and 4 agree.
func seedCorpus(t *testing.T) *fakeCorpus {
	t.Helper()
	corpus := newFakeCorpus()
	put := func(lineage string, verse int, text string) {
		corpus.put(lineage, quran.VerseKey{Surah: 112, Verse: verse}, text)
	}
	put("hafs", 1, "قُلْ هُوَ ٱللَّهُ أَحَدٌ")
	put("qaloon", 1, "قُلْ هُوَ ٱللَّهُ وَاحِدٌ")
	put("warsh", 1, "قُلْ هُوَ ٱللَّهُ أَحَدٌ")

	put("hafs", 2, "ٱللَّهُ ٱلصَّمَدُ")
	put("qaloon", 2, "ٱللَّهُ ٱلصَّمَدُ")
	put("warsh", 2, "هُوَ ٱللَّهُ ٱلصَّمَدُ")

	put("hafs", 3, "لَمْ يَلِدْ وَلَمْ يُولَدْ")
	put("qaloon", 3, "لَمْ يَلِدْ وَلَمْ يُولَدْ")
	put("warsh", 3, "لَمْ يَلِدْ وَلَمْ يُولَدْ")

	put("hafs", 4, "وَلَمْ يَكُن لَّهُۥ كُفُوًا أَحَدٌ")
	put("qaloon", 4, "وَلَمْ يَكُن لَّهُۥ كُفُوًا أَحَدٌ")
	put("warsh", 4, "وَلَمْ يَكُن لَّهُۥ كُفُوًا أَحَدٌ")
	return corpus
}

func TestPipelineRun(t *testing.T) {
	corpus := seedCorpus(t)
	diffs := newFakeDiffStore()
	p := NewPipeline(corpus, diffs, Options{Baseline: "hafs", Workers: 2})

	keys := quran.SurahKeys(112)
	summary, err := p.Run(context.Background(), keys)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Verses != 4 {
		t.Errorf("Verses = %d, want 4", summary.Verses)
	}
	if summary.Flagged != 2 {
		t.Errorf("Flagged = %d, want 2", summary.Flagged)
	}
	if summary.WholeVerse != 1 {
		t.Errorf("WholeVerse = %d, want 1 (verse 2 token counts diverge)", summary.WholeVerse)
	}
	if summary.Differences() != 2 {
		t.Errorf("Differences() = %d, want 2", summary.Differences())
	}
	if summary.RunID == "" || summary.Digest == "" {
		t.Error("summary must carry a run id and digest")
	}

	got, err := diffs.GetDifferences(context.Background(), quran.VerseKey{Surah: 112, Verse: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("verse 1 stored %d differences, want 1", len(got))
	}
	var members []string
	for _, r := range got[0].Readings {
		members = append(members, r.Lineages...)
	}
	if want := 3; len(members) != want {
		t.Errorf("readings cover %d lineages, want %d", len(members), want)
	}
}

func TestPipelineIdempotent(t *testing.T) {
	corpus := seedCorpus(t)
	diffs := newFakeDiffStore()
	p := NewPipeline(corpus, diffs, Options{Baseline: "hafs", Workers: 3})
	keys := quran.SurahKeys(112)

	first, err := p.Run(context.Background(), keys)
	if err != nil {
		t.Fatal(err)
	}
	firstRows := snapshotRows(t, diffs, keys)

	second, err := p.Run(context.Background(), keys)
	if err != nil {
		t.Fatal(err)
	}
	secondRows := snapshotRows(t, diffs, keys)

	if first.Digest != second.Digest {
		t.Errorf("run digests differ across reruns: %s vs %s", first.Digest, second.Digest)
	}
	if !reflect.DeepEqual(firstRows, secondRows) {
		t.Error("stored rows differ across reruns over unchanged input")
	}
}

func TestPipelineDeterministicAcrossWorkerCounts(t *testing.T) {
	keys := quran.SurahKeys(112)
	var digests []string
	for _, workers := range []int{1, 2, 8} {
		corpus := seedCorpus(t)
		diffs := newFakeDiffStore()
		p := NewPipeline(corpus, diffs, Options{Baseline: "hafs", Workers: workers})
		summary, err := p.Run(context.Background(), keys)
		if err != nil {
			t.Fatal(err)
		}
		digests = append(digests, summary.Digest)
	}
	if digests[0] != digests[1] || digests[1] != digests[2] {
		t.Errorf("digest depends on worker count: %v", digests)
	}
}

func TestPipelineStoreFailureAborts(t *testing.T) {
	corpus := seedCorpus(t)
	diffs := newFakeDiffStore()
	diffs.fail = errors.New("disk full")
	p := NewPipeline(corpus, diffs, Options{Baseline: "hafs", Workers: 1})

	_, err := p.Run(context.Background(), quran.SurahKeys(112))
	if err == nil {
		t.Fatal("store failure must abort the run")
	}
	var se *StoreError
	if !errors.As(err, &se) {
		t.Errorf("error %v is not a StoreError", err)
	}
}

func TestPipelineCancellation(t *testing.T) {
	corpus := seedCorpus(t)
	diffs := newFakeDiffStore()
	p := NewPipeline(corpus, diffs, Options{Baseline: "hafs", Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := p.Run(ctx, quran.SurahKeys(112))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run on a cancelled context returned %v, want context.Canceled", err)
	}
	if summary == nil || summary.Verses != 0 {
		t.Errorf("pre-cancelled run processed %v verses, want a partial summary with 0", summary)
	}
	// No verse may be half-written, cancelled or not.
	for _, key := range quran.SurahKeys(112) {
		rows, getErr := diffs.GetDifferences(context.Background(), key)
		if getErr != nil {
			t.Fatal(getErr)
		}
		for _, d := range rows {
			if len(d.Readings) == 0 {
				t.Errorf("verse %s holds a difference with no readings", key)
			}
		}
	}
}

func snapshotRows(t *testing.T, s *fakeDiffStore, keys []quran.VerseKey) map[quran.VerseKey][]Difference {
	t.Helper()
	out := make(map[quran.VerseKey][]Difference)
	for _, key := range keys {
		rows, err := s.GetDifferences(context.Background(), key)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) > 0 {
			out[key] = rows
		}
	}
	return out
}
