package qiraat

import "sort"

// Detect scans the token matrix position by position, partitions the
// lineages into equivalence classes by normalized token, and returns
// the positions where more than one class exists.
//
// Class members are sorted by code and classes are ordered by their
// smallest member, so repeated runs over unchanged input produce
// identically ordered output regardless of map iteration order. An
// empty matrix yields no flags; absence of data is not divergence.
func Detect(m *TokenMatrix) []FlaggedPosition {
	var flagged []FlaggedPosition
	for pos := 0; pos < m.PositionCount(); pos++ {
		byNorm := make(map[string][]string)
		for _, code := range m.Lineages {
			tok := m.Columns[code][pos]
			byNorm[tok.Norm] = append(byNorm[tok.Norm], code)
		}
		if len(byNorm) < 2 {
			continue
		}

		classes := make([]TokenClass, 0, len(byNorm))
		for norm, members := range byNorm {
			sort.Strings(members)
			classes = append(classes, TokenClass{Norm: norm, Members: members})
		}
		sort.Slice(classes, func(i, j int) bool {
			return classes[i].Members[0] < classes[j].Members[0]
		})

		flagged = append(flagged, FlaggedPosition{Position: pos, Classes: classes})
	}
	return flagged
}
