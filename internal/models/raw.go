package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawRecord is one loosely typed provider record (a statement row, a price
// snapshot, a holding). Values are whatever encoding/json produced: float64,
// json.Number, string, bool or nil.
type RawRecord map[string]interface{}

// Number returns the first present, non-null, non-zero numeric value among
// keys, or 0 when none resolves. Absent and zero are deliberately the same.
func (r RawRecord) Number(keys ...string) float64 {
	for _, key := range keys {
		if v, ok := toFloat(r[key]); ok && v != 0 {
			return v
		}
	}
	return 0
}

// OptionalNumber is Number with an explicit "nothing resolved" result.
func (r RawRecord) OptionalNumber(keys ...string) *float64 {
	for _, key := range keys {
		if v, ok := toFloat(r[key]); ok && v != 0 {
			return &v
		}
	}
	return nil
}

// String returns the first non-empty string value among keys.
func (r RawRecord) String(keys ...string) string {
	for _, key := range keys {
		switch v := r[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// Int returns the value at key as an int. Floats are truncated and numeric
// strings are parsed.
func (r RawRecord) Int(key string) (int, bool) {
	v, ok := toFloat(r[key])
	if !ok {
		return 0, false
	}
	return int(v), true
}

// Has reports whether key is present with a non-null value.
func (r RawRecord) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
