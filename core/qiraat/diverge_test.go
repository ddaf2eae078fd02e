package qiraat

import (
	"reflect"
	"testing"

	"github.com/h9-tec/qiraat-engine/core/arabic"
	"github.com/h9-tec/qiraat-engine/core/quran"
)

// matrixOf builds a dense matrix from per-lineage token lists given as
// normalized strings. Display text mirrors the normalized form.
func matrixOf(cols map[string][]string) *TokenMatrix {
	m := &TokenMatrix{
		Key:     quran.VerseKey{Surah: 1, Verse: 1},
		Columns: make(map[string][]arabic.Token, len(cols)),
	}
	for code, words := range cols {
		toks := make([]arabic.Token, len(words))
		for i, w := range words {
			toks[i] = arabic.Token{Display: w, Norm: w}
		}
		m.Columns[code] = toks
	}
	for code := range cols {
		m.Lineages = append(m.Lineages, code)
	}
	// Callers pass small maps; sort mirrors Align's ordering.
	for i := 0; i < len(m.Lineages); i++ {
		for j := i + 1; j < len(m.Lineages); j++ {
			if m.Lineages[j] < m.Lineages[i] {
				m.Lineages[i], m.Lineages[j] = m.Lineages[j], m.Lineages[i]
			}
		}
	}
	return m
}

func TestDetectSingleDivergentPosition(t *testing.T) {
	// Three lineages, tokens a b c / a x c / a b c: exactly one flag at
	// position 1, partitioned {l1,l3} vs {l2}.
	m := matrixOf(map[string][]string{
		"l1": {"a", "b", "c"},
		"l2": {"a", "x", "c"},
		"l3": {"a", "b", "c"},
	})

	flagged := Detect(m)
	if len(flagged) != 1 {
		t.Fatalf("Detect flagged %d positions, want 1", len(flagged))
	}
	fp := flagged[0]
	if fp.Position != 1 {
		t.Errorf("flagged position = %d, want 1", fp.Position)
	}
	want := []TokenClass{
		{Norm: "b", Members: []string{"l1", "l3"}},
		{Norm: "x", Members: []string{"l2"}},
	}
	if !reflect.DeepEqual(fp.Classes, want) {
		t.Errorf("classes = %+v, want %+v", fp.Classes, want)
	}
}

func TestDetectNoDivergence(t *testing.T) {
	m := matrixOf(map[string][]string{
		"l1": {"a", "b"},
		"l2": {"a", "b"},
	})
	if flagged := Detect(m); len(flagged) != 0 {
		t.Errorf("Detect flagged %d positions on identical input, want 0", len(flagged))
	}
}

func TestDetectEmptyMatrix(t *testing.T) {
	m := &TokenMatrix{Key: quran.VerseKey{Surah: 1, Verse: 1}}
	if flagged := Detect(m); flagged != nil {
		t.Errorf("Detect on empty matrix = %v, want nil", flagged)
	}
}

func TestDetectClassOrderIsDeterministic(t *testing.T) {
	// Classes must order by smallest member code whatever map
	// iteration does; run repeatedly to shake out ordering luck.
	m := matrixOf(map[string][]string{
		"dd": {"x"},
		"aa": {"y"},
		"cc": {"y"},
		"bb": {"z"},
	})
	want := Detect(m)
	for i := 0; i < 50; i++ {
		got := Detect(m)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d produced different output:\n got %+v\nwant %+v", i, got, want)
		}
	}
	classes := want[0].Classes
	if classes[0].Members[0] != "aa" || classes[1].Members[0] != "bb" || classes[2].Members[0] != "dd" {
		t.Errorf("classes not ordered by smallest member: %+v", classes)
	}
}
