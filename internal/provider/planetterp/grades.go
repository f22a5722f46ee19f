package planetterp

import (
	"math"

	"github.com/iliyamo/schedule-builder/internal/model"
)

// gradePoints is the fixed letter -> quality point table.  Plus adds 0.3
// and minus subtracts 0.3, capped at 4.0.  W counts as a 0.0 grade; the
// "Other" bucket is not a grade and is ignored.
var gradePoints = map[string]float64{
	"A+": 4.0,
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"D-": 0.7,
	"F":  0.0,
	"W":  0.0,
}

// HistogramGPA is the student-weighted mean of the histogram.  It returns
// an unknown score when no grades were observed.
func HistogramGPA(hist map[string]int) (model.Score, int) {
	var points float64
	var n int
	for letter, count := range hist {
		p, ok := gradePoints[letter]
		if !ok || count <= 0 {
			continue
		}
		points += p * float64(count)
		n += count
	}
	if n == 0 {
		return model.Unknown, 0
	}
	return model.Known(math.Min(points/float64(n), 4.0)), n
}
