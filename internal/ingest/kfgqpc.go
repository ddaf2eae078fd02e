// Package ingest loads verse transcriptions from local corpus files
// into the corpus store. These are reference implementations of the
// engine's ingestion collaborators: each must leave the store
// honoring the one-row-per-(lineage, surah, verse) invariant, which
// the store's upsert provides.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/h9-tec/qiraat-engine/core/qiraat"
	"github.com/h9-tec/qiraat-engine/core/quran"
	"github.com/h9-tec/qiraat-engine/internal/logging"
)

// flexInt decodes JSON numbers that some corpus dumps quote as
// strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("numeric field %q: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

// kfgqpcVerse is one row of the KFGQPC verse-dump layout. Dumps vary
// between "sora" and "sura_no" for the surah number.
type kfgqpcVerse struct {
	Sora    flexInt `json:"sora"`
	SuraNo  flexInt `json:"sura_no"`
	AyaNo   flexInt `json:"aya_no"`
	AyaText string  `json:"aya_text"`
	Emlaey  string  `json:"aya_text_emlaey"`
	Jozz    flexInt `json:"jozz"`
	Page    flexInt `json:"page"`
}

func (v *kfgqpcVerse) surah() int {
	if v.SuraNo != 0 {
		return int(v.SuraNo)
	}
	return int(v.Sora)
}

// LoadKFGQPC reads a KFGQPC-layout JSON verse dump and upserts its
// verses for the given lineage. Returns the number of verses written.
func LoadKFGQPC(ctx context.Context, store qiraat.CorpusStore, lineage, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	var verses []kfgqpcVerse
	if err := json.Unmarshal(data, &verses); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	count := 0
	lastSurah := 0
	for _, v := range verses {
		key := quran.VerseKey{Surah: v.surah(), Verse: int(v.AyaNo)}
		if key.Surah < 1 || key.Verse < 1 {
			logging.Warn("skipping row with invalid verse key",
				"path", path, "surah", key.Surah, "verse", key.Verse)
			continue
		}
		if key.Surah != lastSurah {
			logging.Debug("loading surah", "lineage", lineage, "surah", key.Surah)
			lastSurah = key.Surah
		}
		vt := qiraat.VerseText{
			Lineage: lineage,
			Key:     key,
			Text:    v.AyaText,
			Simple:  v.Emlaey,
			Juz:     int(v.Jozz),
			Page:    int(v.Page),
		}
		if err := store.PutText(ctx, vt); err != nil {
			return count, fmt.Errorf("store %s %s: %w", lineage, key, err)
		}
		count++
	}
	logging.Info("kfgqpc corpus loaded", "lineage", lineage, "path", path, "verses", count)
	return count, nil
}
