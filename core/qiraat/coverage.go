package qiraat

import (
	"context"
	"sort"
	"time"

	"github.com/h9-tec/qiraat-engine/core/quran"
)

// CoverageStatus summarizes a lineage's verse accounting.
type CoverageStatus string

const (
	// CoverageOK means every canonical verse is present, nothing
	// more.
	CoverageOK CoverageStatus = "OK"

	// CoverageLow means verses are missing against the canonical
	// total.
	CoverageLow CoverageStatus = "LOW"

	// CoverageHigh means more rows exist than the canonical total.
	CoverageHigh CoverageStatus = "HIGH"
)

// Band is the accepted tolerance band around the canonical verse
// total. Historical counting conventions differ slightly, so a total
// inside the band is a warning-level finding, not a defect.
type Band struct {
	Low  int `json:"low" yaml:"low"`
	High int `json:"high" yaml:"high"`
}

// DefaultBand covers the spread of the common historical counting
// conventions.
var DefaultBand = Band{Low: 6200, High: 6250}

// GapRange is a run of consecutive missing verse numbers, inclusive.
type GapRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SurahCoverage reports one incomplete surah.
type SurahCoverage struct {
	Surah    int        `json:"surah"`
	Expected int        `json:"expected"`
	Found    int        `json:"found"`
	Gaps     []GapRange `json:"gaps"`
}

// LineageCoverage is the audit result for one lineage.
type LineageCoverage struct {
	// Lineage is the audited code.
	Lineage string `json:"lineage"`

	// Expected is the canonical verse total.
	Expected int `json:"expected"`

	// Found counts distinct verses within the canonical structure.
	Found int `json:"found"`

	// Extra lists rows outside the canonical structure (verse
	// numbers beyond a surah's count, surah numbers beyond 114).
	Extra []quran.VerseKey `json:"extra,omitempty"`

	// Percent is Found over Expected.
	Percent float64 `json:"percent"`

	// MissingSurahs lists surahs with no verses at all.
	MissingSurahs []int `json:"missing_surahs,omitempty"`

	// Incomplete lists surahs with some but not all verses.
	Incomplete []SurahCoverage `json:"incomplete,omitempty"`

	// Status is the overall verdict; the band only grades severity.
	Status CoverageStatus `json:"status"`

	// WithinTolerance reports whether the raw row total falls inside
	// the accepted band.
	WithinTolerance bool `json:"within_tolerance"`

	// Orphan marks a lineage present in the corpus but absent from
	// the catalog. Orphans are excluded from aggregate denominators.
	Orphan bool `json:"orphan,omitempty"`
}

// CoverageReport is the corpus-wide audit: every catalog lineage plus
// any orphans found in the corpus.
type CoverageReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Expected    int                `json:"expected"`
	Band        Band               `json:"band"`
	Lineages    []LineageCoverage  `json:"lineages"`
	// Average is the mean coverage percent across catalog lineages;
	// orphans do not enter the denominator.
	Average float64 `json:"average"`
}

// Auditor computes coverage reports. It never mutates data and is safe
// to run at any time, including concurrently with the write pipeline.
type Auditor struct {
	corpus  CorpusStore
	catalog *Catalog
	band    Band
}

// NewAuditor builds an auditor. A zero band selects DefaultBand.
func NewAuditor(corpus CorpusStore, catalog *Catalog, band Band) *Auditor {
	if band == (Band{}) {
		band = DefaultBand
	}
	return &Auditor{corpus: corpus, catalog: catalog, band: band}
}

// Audit reports one lineage's coverage: found verses per surah diffed
// against the expected contiguous range, missing surahs separated from
// incomplete ones, consecutive missing verses compressed into gap
// ranges.
func (a *Auditor) Audit(ctx context.Context, lineage string) (*LineageCoverage, error) {
	keys, err := a.corpus.ListVerseKeys(ctx, lineage)
	if err != nil {
		return nil, &StoreError{Op: "list verse keys", Err: err}
	}

	found := make(map[int]map[int]bool)
	cov := &LineageCoverage{
		Lineage:  lineage,
		Expected: quran.TotalVerses,
		Orphan:   !a.catalog.Contains(lineage),
	}
	for _, k := range keys {
		if !k.Valid() {
			cov.Extra = append(cov.Extra, k)
			continue
		}
		if found[k.Surah] == nil {
			found[k.Surah] = make(map[int]bool)
		}
		found[k.Surah][k.Verse] = true
	}

	for n := 1; n <= quran.SurahCount; n++ {
		expected := quran.VerseCount(n)
		verses := found[n]
		cov.Found += len(verses)
		switch {
		case len(verses) == 0:
			cov.MissingSurahs = append(cov.MissingSurahs, n)
		case len(verses) < expected:
			cov.Incomplete = append(cov.Incomplete, SurahCoverage{
				Surah:    n,
				Expected: expected,
				Found:    len(verses),
				Gaps:     missingRuns(verses, expected),
			})
		}
	}

	cov.Percent = float64(cov.Found) / float64(cov.Expected) * 100
	total := cov.Found + len(cov.Extra)
	cov.WithinTolerance = total >= a.band.Low && total <= a.band.High
	switch {
	case total > cov.Expected:
		cov.Status = CoverageHigh
	case total < cov.Expected,
		len(cov.MissingSurahs) > 0, len(cov.Incomplete) > 0, len(cov.Extra) > 0:
		cov.Status = CoverageLow
	default:
		cov.Status = CoverageOK
	}
	return cov, nil
}

// AuditAll reports every catalog lineage, then every orphan lineage
// the corpus holds, both groups sorted by code.
func (a *Auditor) AuditAll(ctx context.Context) (*CoverageReport, error) {
	report := &CoverageReport{
		GeneratedAt: time.Now().UTC(),
		Expected:    quran.TotalVerses,
		Band:        a.band,
	}

	codes := a.catalog.Codes()
	present, err := a.corpus.ListLineages(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list lineages", Err: err}
	}
	var orphans []string
	for _, code := range present {
		if !a.catalog.Contains(code) {
			orphans = append(orphans, code)
		}
	}
	sort.Strings(orphans)

	var sum float64
	for _, code := range append(codes, orphans...) {
		cov, err := a.Audit(ctx, code)
		if err != nil {
			return nil, err
		}
		report.Lineages = append(report.Lineages, *cov)
		if !cov.Orphan {
			sum += cov.Percent
		}
	}
	if len(codes) > 0 {
		report.Average = sum / float64(len(codes))
	}
	return report, nil
}

// missingRuns compresses the missing verse numbers of 1..expected into
// inclusive ranges.
func missingRuns(found map[int]bool, expected int) []GapRange {
	var runs []GapRange
	start := 0
	for v := 1; v <= expected; v++ {
		switch {
		case !found[v] && start == 0:
			start = v
		case found[v] && start != 0:
			runs = append(runs, GapRange{Start: start, End: v - 1})
			start = 0
		}
	}
	if start != 0 {
		runs = append(runs, GapRange{Start: start, End: expected})
	}
	return runs
}
