package qiraat

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/h9-tec/qiraat-engine/core/arabic"
)

// CodeUnknown is returned by Resolve for names that match no catalog
// entry, or match more than one. Ambiguity never resolves to a best
// guess.
const CodeUnknown = "unknown"

// canonicalLineages are the twenty canonical transmissions: the ten
// readers of the major tradition, two named transmitters each.
var canonicalLineages = []Lineage{
	{Code: "hafs", ArabicName: "حفص عن عاصم", EnglishName: "Hafs from Asim", RawiArabic: "حفص", RawiEnglish: "Hafs", QariArabic: "عاصم", QariEnglish: "Asim"},
	{Code: "shuba", ArabicName: "شعبة عن عاصم", EnglishName: "Shuba from Asim", RawiArabic: "شعبة", RawiEnglish: "Shuba", QariArabic: "عاصم", QariEnglish: "Asim"},
	{Code: "warsh", ArabicName: "ورش عن نافع", EnglishName: "Warsh from Nafi", RawiArabic: "ورش", RawiEnglish: "Warsh", QariArabic: "نافع", QariEnglish: "Nafi"},
	{Code: "qaloon", ArabicName: "قالون عن نافع", EnglishName: "Qaloon from Nafi", RawiArabic: "قالون", RawiEnglish: "Qaloon", QariArabic: "نافع", QariEnglish: "Nafi"},
	{Code: "doori", ArabicName: "الدوري عن أبي عمرو", EnglishName: "Al-Doori from Abu Amr", RawiArabic: "الدوري", RawiEnglish: "Doori", QariArabic: "أبو عمرو", QariEnglish: "Abu Amr"},
	{Code: "soosi", ArabicName: "السوسي عن أبي عمرو", EnglishName: "Al-Soosi from Abu Amr", RawiArabic: "السوسي", RawiEnglish: "Soosi", QariArabic: "أبو عمرو", QariEnglish: "Abu Amr"},
	{Code: "bazzi", ArabicName: "البزي عن ابن كثير", EnglishName: "Al-Bazzi from Ibn Kathir", RawiArabic: "البزي", RawiEnglish: "Bazzi", QariArabic: "ابن كثير", QariEnglish: "Ibn Kathir"},
	{Code: "qunbul", ArabicName: "قنبل عن ابن كثير", EnglishName: "Qunbul from Ibn Kathir", RawiArabic: "قنبل", RawiEnglish: "Qunbul", QariArabic: "ابن كثير", QariEnglish: "Ibn Kathir"},
	{Code: "hisham", ArabicName: "هشام عن ابن عامر", EnglishName: "Hisham from Ibn Amir", RawiArabic: "هشام", RawiEnglish: "Hisham", QariArabic: "ابن عامر", QariEnglish: "Ibn Amir"},
	{Code: "ibn_dhakwan", ArabicName: "ابن ذكوان عن ابن عامر", EnglishName: "Ibn Dhakwan from Ibn Amir", RawiArabic: "ابن ذكوان", RawiEnglish: "Ibn Dhakwan", QariArabic: "ابن عامر", QariEnglish: "Ibn Amir"},
	{Code: "khalaf", ArabicName: "خلف عن حمزة", EnglishName: "Khalaf from Hamza", RawiArabic: "خلف", RawiEnglish: "Khalaf", QariArabic: "حمزة", QariEnglish: "Hamza"},
	{Code: "khallad", ArabicName: "خلاد عن حمزة", EnglishName: "Khallad from Hamza", RawiArabic: "خلاد", RawiEnglish: "Khallad", QariArabic: "حمزة", QariEnglish: "Hamza"},
	{Code: "doori_kisai", ArabicName: "الدوري عن الكسائي", EnglishName: "Al-Doori from Al-Kisai", RawiArabic: "الدوري", RawiEnglish: "Doori Al-Kisai", QariArabic: "الكسائي", QariEnglish: "Al-Kisai"},
	{Code: "abu_harith", ArabicName: "أبو الحارث عن الكسائي", EnglishName: "Abu Al-Harith from Al-Kisai", RawiArabic: "أبو الحارث", RawiEnglish: "Abu Al-Harith", QariArabic: "الكسائي", QariEnglish: "Al-Kisai"},
	{Code: "ibn_wardan", ArabicName: "ابن وردان عن أبي جعفر", EnglishName: "Ibn Wardan from Abu Jafar", RawiArabic: "ابن وردان", RawiEnglish: "Ibn Wardan", QariArabic: "أبو جعفر", QariEnglish: "Abu Jafar"},
	{Code: "ibn_jamaz", ArabicName: "ابن جماز عن أبي جعفر", EnglishName: "Ibn Jamaz from Abu Jafar", RawiArabic: "ابن جماز", RawiEnglish: "Ibn Jamaz", QariArabic: "أبو جعفر", QariEnglish: "Abu Jafar"},
	{Code: "ruways", ArabicName: "رويس عن يعقوب", EnglishName: "Ruways from Yaqub", RawiArabic: "رويس", RawiEnglish: "Ruways", QariArabic: "يعقوب", QariEnglish: "Yaqub"},
	{Code: "rawh", ArabicName: "روح عن يعقوب", EnglishName: "Rawh from Yaqub", RawiArabic: "روح", RawiEnglish: "Rawh", QariArabic: "يعقوب", QariEnglish: "Yaqub"},
	{Code: "ishaq", ArabicName: "إسحاق عن خلف العاشر", EnglishName: "Ishaq from Khalaf Al-Ashir", RawiArabic: "إسحاق", RawiEnglish: "Ishaq", QariArabic: "خلف العاشر", QariEnglish: "Khalaf Al-Ashir"},
	{Code: "idris", ArabicName: "إدريس عن خلف العاشر", EnglishName: "Idris from Khalaf Al-Ashir", RawiArabic: "إدريس", RawiEnglish: "Idris", QariArabic: "خلف العاشر", QariEnglish: "Khalaf Al-Ashir"},
}

// Catalog is the immutable set of recognized lineages, loaded once at
// startup and passed by reference into everything that needs it.
type Catalog struct {
	lineages []Lineage
	byCode   map[string]int
	byName   map[string]string
}

// NewCatalog builds a catalog from a lineage list. Codes must be
// non-empty and unique.
func NewCatalog(lineages []Lineage) (*Catalog, error) {
	if len(lineages) == 0 {
		return nil, NewValidation("lineages", "catalog is empty")
	}

	sorted := make([]Lineage, len(lineages))
	copy(sorted, lineages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	c := &Catalog{
		lineages: sorted,
		byCode:   make(map[string]int, len(sorted)),
		byName:   make(map[string]string),
	}
	for i, l := range sorted {
		if l.Code == "" {
			return nil, NewValidation("code", "lineage code is empty")
		}
		if _, dup := c.byCode[l.Code]; dup {
			return nil, NewValidation("code", fmt.Sprintf("duplicate lineage code %q", l.Code))
		}
		c.byCode[l.Code] = i
	}

	// Exact-match lookup over codes and display names. Names shared
	// by more than one lineage are ambiguous and removed: Resolve
	// answers "unknown" rather than guessing.
	ambiguous := make(map[string]bool)
	for _, l := range sorted {
		for _, name := range []string{l.Code, l.ArabicName, l.EnglishName, l.RawiArabic, l.RawiEnglish} {
			key := normalizeName(name)
			if key == "" {
				continue
			}
			if existing, ok := c.byName[key]; ok && existing != l.Code {
				ambiguous[key] = true
				continue
			}
			c.byName[key] = l.Code
		}
	}
	for key := range ambiguous {
		delete(c.byName, key)
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog of the twenty canonical
// transmissions.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(canonicalLineages)
	if err != nil {
		panic(fmt.Sprintf("qiraat: built-in catalog invalid: %v", err))
	}
	return c
}

// catalogFile is the YAML layout of a catalog override file.
type catalogFile struct {
	Lineages []Lineage `yaml:"lineages"`
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return NewCatalog(f.Lineages)
}

// Lineages returns the catalog entries sorted by code.
func (c *Catalog) Lineages() []Lineage {
	out := make([]Lineage, len(c.lineages))
	copy(out, c.lineages)
	return out
}

// Codes returns the lineage codes sorted.
func (c *Catalog) Codes() []string {
	codes := make([]string, len(c.lineages))
	for i, l := range c.lineages {
		codes[i] = l.Code
	}
	return codes
}

// Len returns the number of lineages.
func (c *Catalog) Len() int {
	return len(c.lineages)
}

// ByCode returns the lineage with the given code.
func (c *Catalog) ByCode(code string) (Lineage, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return Lineage{}, false
	}
	return c.lineages[i], true
}

// Contains reports whether code is a catalog lineage.
func (c *Catalog) Contains(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

// Resolve maps a human-entered lineage name or code onto a catalog
// code. Matching is exact after normalization; unmatched or ambiguous
// names yield CodeUnknown.
func (c *Catalog) Resolve(name string) string {
	if code, ok := c.byName[normalizeName(name)]; ok {
		return code
	}
	return CodeUnknown
}

// normalizeName prepares a name for exact-match lookup: lower-cased,
// whitespace collapsed, Arabic folded the same way verse text is.
func normalizeName(s string) string {
	return arabic.Normalize(strings.ToLower(s))
}
