package model

import (
	"cmp"
	"slices"
)

// RankedProfessor pairs a professor name with the rating used to rank it.
type RankedProfessor struct {
	Name   string `json:"name"`
	Rating Score  `json:"rating"`
}

// RankProfessors orders every professor attached to the course (rating
// entries plus section instructors) by descending rating.  Professors
// without a rating come after all rated ones, and ties in either tier
// are broken by name.  The ranking is rebuilt on every call.
func RankProfessors(c Course) []RankedProfessor {
	seen := make(map[string]bool)
	out := make([]RankedProfessor, 0, len(c.ProfessorRatings))
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, RankedProfessor{Name: name, Rating: c.ProfessorRatings[name]})
	}
	for name := range c.ProfessorRatings {
		add(name)
	}
	for _, s := range c.Sections {
		for _, name := range s.Instructors {
			add(name)
		}
	}
	slices.SortStableFunc(out, compareRanked)
	return out
}

func compareRanked(a, b RankedProfessor) int {
	if a.Rating.Valid != b.Rating.Valid {
		if a.Rating.Valid {
			return -1
		}
		return 1
	}
	if a.Rating.Valid && a.Rating.Value != b.Rating.Value {
		// descending
		return cmp.Compare(b.Rating.Value, a.Rating.Value)
	}
	return cmp.Compare(a.Name, b.Name)
}

// RankedProfessors is RankProfessors(c).
func (c Course) RankedProfessors() []RankedProfessor { return RankProfessors(c) }
