package qiraat

import "strings"

// Assemble turns flagged positions into Difference records: one
// Reading per equivalence class, the baseline lineage's reading
// flagged as default, and a classification tag per difference.
//
// A reading's display text comes from the class's lexicographically
// smallest lineage code; the choice is arbitrary within the class
// (members share a normalized form by construction) but must be stable
// for determinism. If the baseline lineage has no comparable text for
// the verse, no reading carries the baseline flag and the difference
// note records it; that is reported, never treated as an error.
func Assemble(m *TokenMatrix, flagged []FlaggedPosition, baseline string) []Difference {
	if len(flagged) == 0 {
		return nil
	}

	diffs := make([]Difference, 0, len(flagged))
	for _, fp := range flagged {
		baselineSeen := false
		readings := make([]Reading, 0, len(fp.Classes))
		for _, cls := range fp.Classes {
			rep := cls.Members[0]
			tok, _ := m.TokenAt(rep, fp.Position)
			r := Reading{
				Text:     tok.Display,
				Norm:     cls.Norm,
				Lineages: append([]string(nil), cls.Members...),
			}
			for _, code := range cls.Members {
				if code == baseline {
					r.Baseline = true
					baselineSeen = true
					break
				}
			}
			readings = append(readings, r)
		}

		d := Difference{
			Key:      m.Key,
			Position: fp.Position,
			Readings: readings,
		}
		if m.WholeVerse {
			d.Class = ClassWholeVerse
			d.Note = "token counts differ; compared whole verse"
		} else {
			d.Class = classify(fp.Classes)
			if tok, ok := m.TokenAt(baseline, fp.Position); ok {
				d.Word = tok.Display
			} else {
				d.Word = readings[0].Text
			}
		}
		if !baselineSeen {
			d.Note = joinNote(d.Note, "baseline "+baseline+" has no text for this verse")
		}
		diffs = append(diffs, d)
	}
	return diffs
}

// classify screens a position's wording classes for the recognized
// structural alternation patterns that mark a recurring-rule (usul)
// variant. Anything unrecognized defaults to farsh; the tag is
// best-effort, not a correctness invariant.
func classify(classes []TokenClass) Classification {
	norms := make([]string, len(classes))
	for i, cls := range classes {
		norms[i] = cls.Norm
	}
	if prefixAlternation(norms) || skeletonEqual(norms) {
		return ClassUsul
	}
	return ClassFarsh
}

// prefixAlternation reports the verbal person-prefix pattern: every
// wording identical after its first letter, and every first letter one
// of the imperfect prefixes ي ت ن ا.
func prefixAlternation(norms []string) bool {
	var tail string
	for i, n := range norms {
		rs := []rune(n)
		if len(rs) < 2 {
			return false
		}
		switch rs[0] {
		case 'ي', 'ت', 'ن', 'ا':
		default:
			return false
		}
		t := string(rs[1:])
		if i == 0 {
			tail = t
		} else if t != tail {
			return false
		}
	}
	return true
}

// skeletonEqual reports whether all wordings share one consonant
// skeleton once the long-vowel letters ا و ي are removed. This catches
// stem alternations realized through vowel letters, active/passive
// pairs among them.
func skeletonEqual(norms []string) bool {
	strip := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch r {
			case 'ا', 'و', 'ي':
				return -1
			}
			return r
		}, s)
	}
	var skeleton string
	for i, n := range norms {
		s := strip(n)
		if s == "" {
			return false
		}
		if i == 0 {
			skeleton = s
		} else if s != skeleton {
			return false
		}
	}
	return true
}

func joinNote(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
