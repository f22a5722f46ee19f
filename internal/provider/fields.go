package provider

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The accessors below read one field of a Record.  Each returns ok=false
// when the key is absent or null so the caller decides, per field,
// whether that is an error or a default.  A present value of the wrong
// type is reported through err.

// String reads a string field.  Numbers are formatted so that ids sent
// as JSON numbers still read as strings.
func String(r Record, key string) (s string, ok bool, err error) {
	v, present := r[key]
	if !present || v == nil {
		return "", false, nil
	}
	switch t := v.(type) {
	case string:
		return t, true, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true, nil
	case json.Number:
		return t.String(), true, nil
	case int:
		return strconv.Itoa(t), true, nil
	}
	return "", true, fmt.Errorf("want string, got %T", v)
}

// Float reads a numeric field; numeric strings ("4", "3.5") are accepted
// because one provider sends credits as text.
func Float(r Record, key string) (f float64, ok bool, err error) {
	v, present := r[key]
	if !present || v == nil {
		return 0, false, nil
	}
	switch t := v.(type) {
	case float64:
		return t, true, nil
	case int:
		return float64(t), true, nil
	case int64:
		return float64(t), true, nil
	case json.Number:
		f, err := t.Float64()
		return f, true, err
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, true, fmt.Errorf("want number, got %q", t)
		}
		return f, true, nil
	}
	return 0, true, fmt.Errorf("want number, got %T", v)
}

// Int reads an integral numeric field.
func Int(r Record, key string) (n int, ok bool, err error) {
	f, ok, err := Float(r, key)
	if !ok || err != nil {
		return 0, ok, err
	}
	if f != math.Trunc(f) {
		return 0, true, fmt.Errorf("want integer, got %v", f)
	}
	return int(f), true, nil
}

// Strings reads a list of strings.  Nested lists are flattened, which is
// how one provider ships gen-ed tags ([["FSAR","FSMA"]]).  Non-string
// elements are skipped.
func Strings(r Record, key string) (out []string, ok bool) {
	v, present := r[key]
	if !present || v == nil {
		return nil, false
	}
	var walk func(any)
	walk = func(x any) {
		switch t := x.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case []any:
			for _, e := range t {
				walk(e)
			}
		case []string:
			for _, e := range t {
				walk(e)
			}
		}
	}
	walk(v)
	return out, true
}

// Records reads a list of nested objects; other elements are skipped.
func Records(r Record, key string) (out []Record, ok bool) {
	v, present := r[key]
	if !present || v == nil {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
	case []Record:
		out = append(out, t...)
	}
	return out, true
}
