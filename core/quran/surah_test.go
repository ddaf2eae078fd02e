package quran

import "testing"

func TestSurahTableTotals(t *testing.T) {
	sum := 0
	for _, s := range Surahs() {
		sum += s.Verses
	}
	if sum != TotalVerses {
		t.Errorf("verse counts sum to %d, want %d", sum, TotalVerses)
	}
}

func TestSurahTableOrdering(t *testing.T) {
	for i, s := range Surahs() {
		if s.Number != i+1 {
			t.Errorf("surah at index %d has number %d, want %d", i, s.Number, i+1)
		}
		if s.Verses < 3 {
			t.Errorf("surah %d has %d verses, below the minimum 3", s.Number, s.Verses)
		}
		if s.Name == "" || s.ArabicName == "" {
			t.Errorf("surah %d missing a name", s.Number)
		}
	}
}

func TestBySurah(t *testing.T) {
	s, ok := BySurah(1)
	if !ok {
		t.Fatal("BySurah(1) not found")
	}
	if s.Name != "Al-Fatiha" || s.Verses != 7 {
		t.Errorf("BySurah(1) = %q with %d verses, want Al-Fatiha with 7", s.Name, s.Verses)
	}

	s, ok = BySurah(114)
	if !ok {
		t.Fatal("BySurah(114) not found")
	}
	if s.Name != "An-Nas" || s.Verses != 6 {
		t.Errorf("BySurah(114) = %q with %d verses, want An-Nas with 6", s.Name, s.Verses)
	}

	for _, n := range []int{0, -1, 115} {
		if _, ok := BySurah(n); ok {
			t.Errorf("BySurah(%d) found, want not found", n)
		}
	}
}

func TestVerseCount(t *testing.T) {
	tests := []struct {
		surah int
		want  int
	}{
		{1, 7},
		{2, 286},
		{103, 3},
		{114, 6},
		{0, 0},
		{115, 0},
	}
	for _, tt := range tests {
		if got := VerseCount(tt.surah); got != tt.want {
			t.Errorf("VerseCount(%d) = %d, want %d", tt.surah, got, tt.want)
		}
	}
}

func TestVerseKey(t *testing.T) {
	k := VerseKey{Surah: 2, Verse: 255}
	if got := k.String(); got != "2:255" {
		t.Errorf("String() = %q, want %q", got, "2:255")
	}
	if !k.Valid() {
		t.Error("2:255 reported invalid")
	}

	invalid := []VerseKey{
		{Surah: 0, Verse: 1},
		{Surah: 1, Verse: 0},
		{Surah: 1, Verse: 8},
		{Surah: 115, Verse: 1},
	}
	for _, k := range invalid {
		if k.Valid() {
			t.Errorf("%s reported valid", k)
		}
	}
}

func TestCompareKeys(t *testing.T) {
	a := VerseKey{Surah: 2, Verse: 255}
	b := VerseKey{Surah: 3, Verse: 1}
	if CompareKeys(a, b) >= 0 {
		t.Error("2:255 should sort before 3:1")
	}
	if CompareKeys(b, a) <= 0 {
		t.Error("3:1 should sort after 2:255")
	}
	if CompareKeys(a, a) != 0 {
		t.Error("key should compare equal to itself")
	}

	c := VerseKey{Surah: 2, Verse: 1}
	if CompareKeys(c, a) >= 0 {
		t.Error("2:1 should sort before 2:255")
	}
}

func TestAllKeys(t *testing.T) {
	keys := AllKeys()
	if len(keys) != TotalVerses {
		t.Fatalf("AllKeys returned %d keys, want %d", len(keys), TotalVerses)
	}
	if keys[0] != (VerseKey{Surah: 1, Verse: 1}) {
		t.Errorf("first key = %s, want 1:1", keys[0])
	}
	if keys[len(keys)-1] != (VerseKey{Surah: 114, Verse: 6}) {
		t.Errorf("last key = %s, want 114:6", keys[len(keys)-1])
	}
	for i := 1; i < len(keys); i++ {
		if CompareKeys(keys[i-1], keys[i]) >= 0 {
			t.Fatalf("keys out of order at %d: %s then %s", i, keys[i-1], keys[i])
		}
	}
}

func TestSurahKeys(t *testing.T) {
	keys := SurahKeys(1)
	if len(keys) != 7 {
		t.Fatalf("SurahKeys(1) returned %d keys, want 7", len(keys))
	}
	if keys[6] != (VerseKey{Surah: 1, Verse: 7}) {
		t.Errorf("last key = %s, want 1:7", keys[6])
	}
	if SurahKeys(0) != nil {
		t.Error("SurahKeys(0) should be nil")
	}
}
