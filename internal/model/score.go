package model

import (
	"encoding/json"
	"strconv"
)

// Score is an optional numeric value such as a professor rating or an
// average GPA.  Valid is false when the upstream had no data, which is
// different from a genuine 0.0.  It mirrors the sql.Null* types the
// repositories scan into.
type Score struct {
	Value float64
	Valid bool
}

// Unknown is the "no data" score.
var Unknown = Score{}

// Known wraps a value that is present.
func Known(v float64) Score { return Score{Value: v, Valid: true} }

func (s Score) String() string {
	if !s.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(s.Value, 'f', 2, 64)
}

// MarshalJSON encodes unknown scores as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts null or a number.
func (s *Score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Unknown
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Known(v)
	return nil
}
