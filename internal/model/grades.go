package model

import "sort"

// GradeSummary is one adapted grade record: the average GPA observed for
// a professor in a course over some number of graded students.
type GradeSummary struct {
	Course    string
	Professor string
	GPA       Score
	Graded    int
}

// GradeKey identifies a (course, professor) pair.
type GradeKey struct {
	Course    string
	Professor string
}

// MergeGrades combines summaries into one GPA per (course, professor),
// weighting each summary by its graded count.  Summaries with an unknown
// GPA or no graded students contribute nothing; a pair with no
// contribution at all maps to Unknown.
func MergeGrades(rows []GradeSummary) map[GradeKey]Score {
	points := make(map[GradeKey]float64)
	counts := make(map[GradeKey]int)
	for _, r := range rows {
		k := GradeKey{Course: r.Course, Professor: r.Professor}
		if _, ok := counts[k]; !ok {
			counts[k] = 0
		}
		if !r.GPA.Valid || r.Graded <= 0 {
			continue
		}
		points[k] += r.GPA.Value * float64(r.Graded)
		counts[k] += r.Graded
	}
	out := make(map[GradeKey]Score, len(counts))
	for k, n := range counts {
		if n == 0 {
			out[k] = Unknown
			continue
		}
		out[k] = Known(points[k] / float64(n))
	}
	return out
}

// ByProfessor projects merged grades for one course onto professor names.
func ByProfessor(merged map[GradeKey]Score, course string) map[string]Score {
	out := make(map[string]Score)
	for k, v := range merged {
		if k.Course == course {
			out[k.Professor] = v
		}
	}
	return out
}

// ByCourse projects merged grades for one professor onto course codes.
func ByCourse(merged map[GradeKey]Score, professor string) map[string]Score {
	out := make(map[string]Score)
	for k, v := range merged {
		if k.Professor == professor {
			out[k.Course] = v
		}
	}
	return out
}

// SortedKeys is a helper for deterministic iteration in logs and tests.
func SortedKeys(m map[string]Score) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
