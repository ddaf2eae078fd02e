package ingest

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/h9-tec/qiraat-engine/core/qiraat"
	"github.com/h9-tec/qiraat-engine/core/quran"
	"github.com/h9-tec/qiraat-engine/internal/logging"
)

// Precompiled XPath expressions for the Tanzil layout:
// <quran><sura index="1"><aya index="1" text="..."/>...
var (
	suraExpr = xpath.MustCompile("//sura")
	ayaExpr  = xpath.MustCompile("aya")
)

// LoadTanzil reads a Tanzil-style XML corpus file and upserts its
// verses for the given lineage. Returns the number of verses written.
func LoadTanzil(ctx context.Context, store qiraat.CorpusStore, lineage, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := xmlquery.Parse(f)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	count := 0
	for _, sura := range xmlquery.QuerySelectorAll(doc, suraExpr) {
		surah, err := strconv.Atoi(sura.SelectAttr("index"))
		if err != nil {
			logging.Warn("skipping sura with non-numeric index",
				"path", path, "index", sura.SelectAttr("index"))
			continue
		}
		logging.Debug("loading surah", "lineage", lineage, "surah", surah)
		for _, aya := range xmlquery.QuerySelectorAll(sura, ayaExpr) {
			verse, err := strconv.Atoi(aya.SelectAttr("index"))
			if err != nil {
				logging.Warn("skipping aya with non-numeric index",
					"path", path, "surah", surah, "index", aya.SelectAttr("index"))
				continue
			}
			vt := qiraat.VerseText{
				Lineage: lineage,
				Key:     quran.VerseKey{Surah: surah, Verse: verse},
				Text:    aya.SelectAttr("text"),
			}
			if err := store.PutText(ctx, vt); err != nil {
				return count, fmt.Errorf("store %s %s: %w", lineage, vt.Key, err)
			}
			count++
		}
	}
	logging.Info("tanzil corpus loaded", "lineage", lineage, "path", path, "verses", count)
	return count, nil
}
