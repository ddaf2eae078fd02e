package qiraat

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/h9-tec/qiraat-engine/core/quran"
)

// verseDigestDoc is the canonical shape hashed for one verse. Fields
// marshal in declaration order and Difference contains no maps, so the
// encoding is byte-stable for equal content.
type verseDigestDoc struct {
	Key         quran.VerseKey `json:"key"`
	Differences []Difference   `json:"differences"`
}

// VerseDigest returns the blake3 digest of one verse's difference set.
// Equal difference content always yields an equal digest, which is how
// idempotence is demonstrated: rerun the pipeline, compare digests.
func VerseDigest(key quran.VerseKey, diffs []Difference) (string, error) {
	doc := verseDigestDoc{Key: key, Differences: diffs}
	if doc.Differences == nil {
		doc.Differences = []Difference{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("digest verse %s: %w", key, err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// RunDigest folds per-verse digests, in verse order, into one run
// digest. The slice must be ordered by job index, not completion
// order, so the result is independent of worker count.
func RunDigest(verseDigests []string) string {
	h := blake3.New()
	for _, d := range verseDigests {
		h.WriteString(d)
		h.WriteString("\n")
	}
	return hex.EncodeToString(h.Sum(nil))
}
