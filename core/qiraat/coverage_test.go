package qiraat

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"github.com/h9-tec/qiraat-engine/core/quran"
)

// fakeCorpus is a map-backed CorpusStore for auditor tests.
type fakeCorpus struct {
	texts map[string]map[quran.VerseKey]VerseText
}

func newFakeCorpus() *fakeCorpus {
	return &fakeCorpus{texts: make(map[string]map[quran.VerseKey]VerseText)}
}

func (f *fakeCorpus) put(lineage string, key quran.VerseKey, text string) {
	if f.texts[lineage] == nil {
		f.texts[lineage] = make(map[quran.VerseKey]VerseText)
	}
	f.texts[lineage][key] = VerseText{Lineage: lineage, Key: key, Text: text}
}

func (f *fakeCorpus) GetText(_ context.Context, lineage string, key quran.VerseKey) (VerseText, bool, error) {
	vt, ok := f.texts[lineage][key]
	return vt, ok, nil
}

func (f *fakeCorpus) TextsForVerse(_ context.Context, key quran.VerseKey) (map[string]VerseText, error) {
	out := make(map[string]VerseText)
	for lineage, verses := range f.texts {
		if vt, ok := verses[key]; ok {
			out[lineage] = vt
		}
	}
	return out, nil
}

func (f *fakeCorpus) PutText(_ context.Context, vt VerseText) error {
	f.put(vt.Lineage, vt.Key, vt.Text)
	return nil
}

func (f *fakeCorpus) ListLineages(_ context.Context) ([]string, error) {
	codes := make([]string, 0, len(f.texts))
	for code := range f.texts {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

func (f *fakeCorpus) ListVerseKeys(_ context.Context, lineage string) ([]quran.VerseKey, error) {
	keys := make([]quran.VerseKey, 0, len(f.texts[lineage]))
	for k := range f.texts[lineage] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return quran.CompareKeys(keys[i], keys[j]) < 0 })
	return keys, nil
}

// fillLineage populates every canonical verse, minus the given keys.
func fillLineage(f *fakeCorpus, lineage string, skip map[quran.VerseKey]bool) {
	for _, k := range quran.AllKeys() {
		if skip[k] {
			continue
		}
		f.put(lineage, k, "نص")
	}
}

func TestAuditComplete(t *testing.T) {
	corpus := newFakeCorpus()
	fillLineage(corpus, "hafs", nil)
	a := NewAuditor(corpus, DefaultCatalog(), Band{})

	cov, err := a.Audit(context.Background(), "hafs")
	if err != nil {
		t.Fatal(err)
	}
	if cov.Status != CoverageOK {
		t.Errorf("Status = %s, want OK", cov.Status)
	}
	if cov.Found != quran.TotalVerses {
		t.Errorf("Found = %d, want %d", cov.Found, quran.TotalVerses)
	}
	if len(cov.MissingSurahs) != 0 || len(cov.Incomplete) != 0 {
		t.Errorf("complete lineage reported missing=%v incomplete=%v", cov.MissingSurahs, cov.Incomplete)
	}
	if !cov.WithinTolerance {
		t.Error("canonical total must sit inside the tolerance band")
	}
	if cov.Percent != 100 {
		t.Errorf("Percent = %v, want 100", cov.Percent)
	}
}

func TestAuditMissingAndIncomplete(t *testing.T) {
	// One surah entirely missing (108, 3 verses) and surah 1 missing
	// verses 5-7: found = 6236-3-3 = 6230, status LOW, exactly one
	// missing surah and one incomplete surah with gap (5,7).
	skip := map[quran.VerseKey]bool{
		{Surah: 1, Verse: 5}: true,
		{Surah: 1, Verse: 6}: true,
		{Surah: 1, Verse: 7}: true,
	}
	for _, k := range quran.SurahKeys(108) {
		skip[k] = true
	}
	corpus := newFakeCorpus()
	fillLineage(corpus, "warsh", skip)
	a := NewAuditor(corpus, DefaultCatalog(), Band{})

	cov, err := a.Audit(context.Background(), "warsh")
	if err != nil {
		t.Fatal(err)
	}
	if cov.Found != 6230 {
		t.Errorf("Found = %d, want 6230", cov.Found)
	}
	if cov.Status != CoverageLow {
		t.Errorf("Status = %s, want LOW", cov.Status)
	}
	if !reflect.DeepEqual(cov.MissingSurahs, []int{108}) {
		t.Errorf("MissingSurahs = %v, want [108]", cov.MissingSurahs)
	}
	if len(cov.Incomplete) != 1 {
		t.Fatalf("Incomplete = %+v, want exactly one surah", cov.Incomplete)
	}
	inc := cov.Incomplete[0]
	if inc.Surah != 1 || inc.Found != 4 || inc.Expected != 7 {
		t.Errorf("incomplete = %+v, want surah 1 with 4/7", inc)
	}
	if !reflect.DeepEqual(inc.Gaps, []GapRange{{Start: 5, End: 7}}) {
		t.Errorf("Gaps = %v, want [{5 7}]", inc.Gaps)
	}
	if !cov.WithinTolerance {
		t.Error("6230 sits inside the default 6200..6250 band")
	}
}

func TestAuditGapCompression(t *testing.T) {
	// Surah 1 (7 verses) holding only verses 1, 4, 7 has two gaps.
	corpus := newFakeCorpus()
	for _, v := range []int{1, 4, 7} {
		corpus.put("hafs", quran.VerseKey{Surah: 1, Verse: v}, "نص")
	}
	a := NewAuditor(corpus, DefaultCatalog(), Band{})

	cov, err := a.Audit(context.Background(), "hafs")
	if err != nil {
		t.Fatal(err)
	}
	var inc *SurahCoverage
	for i := range cov.Incomplete {
		if cov.Incomplete[i].Surah == 1 {
			inc = &cov.Incomplete[i]
		}
	}
	if inc == nil {
		t.Fatal("surah 1 missing from incomplete list")
	}
	want := []GapRange{{Start: 2, End: 3}, {Start: 5, End: 6}}
	if !reflect.DeepEqual(inc.Gaps, want) {
		t.Errorf("Gaps = %v, want %v", inc.Gaps, want)
	}
}

func TestAuditExtraVersesFlagHigh(t *testing.T) {
	corpus := newFakeCorpus()
	fillLineage(corpus, "hafs", nil)
	// A verse number past the surah's canonical count.
	corpus.put("hafs", quran.VerseKey{Surah: 1, Verse: 8}, "نص")
	a := NewAuditor(corpus, DefaultCatalog(), Band{})

	cov, err := a.Audit(context.Background(), "hafs")
	if err != nil {
		t.Fatal(err)
	}
	if cov.Status != CoverageHigh {
		t.Errorf("Status = %s, want HIGH", cov.Status)
	}
	if len(cov.Extra) != 1 {
		t.Errorf("Extra = %v, want one entry", cov.Extra)
	}
}

func TestAuditAllReportsOrphans(t *testing.T) {
	corpus := newFakeCorpus()
	fillLineage(corpus, "hafs", nil)
	fillLineage(corpus, "mystery", nil) // not in the catalog
	a := NewAuditor(corpus, DefaultCatalog(), Band{})

	report, err := a.AuditAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// 20 catalog lineages plus the orphan.
	if len(report.Lineages) != 21 {
		t.Fatalf("reported %d lineages, want 21", len(report.Lineages))
	}
	var orphan *LineageCoverage
	for i := range report.Lineages {
		if report.Lineages[i].Lineage == "mystery" {
			orphan = &report.Lineages[i]
		}
	}
	if orphan == nil {
		t.Fatal("orphan lineage missing from report")
	}
	if !orphan.Orphan {
		t.Error("mystery must carry the orphan flag")
	}
	// Orphans stay out of the average: one complete catalog lineage
	// out of twenty is 5%.
	if got, want := report.Average, 100.0/20; got != want {
		t.Errorf("Average = %v, want %v (orphan excluded from denominator)", got, want)
	}
}

func TestMonotonicCoverage(t *testing.T) {
	// found(L,S) never exceeds expected(S), and a full surah never
	// lands in the incomplete list.
	skip := map[quran.VerseKey]bool{{Surah: 2, Verse: 100}: true}
	corpus := newFakeCorpus()
	fillLineage(corpus, "hafs", skip)
	a := NewAuditor(corpus, DefaultCatalog(), Band{})

	cov, err := a.Audit(context.Background(), "hafs")
	if err != nil {
		t.Fatal(err)
	}
	for _, inc := range cov.Incomplete {
		if inc.Found >= inc.Expected {
			t.Errorf("surah %d reported incomplete with found %d >= expected %d",
				inc.Surah, inc.Found, inc.Expected)
		}
	}
	if len(cov.Incomplete) != 1 || cov.Incomplete[0].Surah != 2 {
		t.Errorf("Incomplete = %+v, want only surah 2", cov.Incomplete)
	}
}
