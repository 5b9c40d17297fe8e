package mapper

import (
	"strconv"
	"strings"
	"time"

	"github.com/ericfeunekes/wxbench/internal/domain"
)

// Helpers for picking through decoded JSON. Providers disagree on types as
// much as on field names, so numeric accessors accept numbers, integral
// strings, and booleans-free scalars alike, returning nil for anything else.

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func array(v any) []any {
	a, _ := v.([]any)
	return a
}

func getObject(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	return object(m[key])
}

func getArray(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	return array(m[key])
}

func get(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

func floatVal(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return domain.Float(t)
	case float32:
		return domain.Float(float64(t))
	case int:
		return domain.Float(float64(t))
	case int64:
		return domain.Float(float64(t))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return domain.Float(f)
		}
	}
	return nil
}

func intVal(v any) *int {
	f := floatVal(v)
	if f == nil {
		return nil
	}
	return domain.Int(int(*f))
}

// textVal stringifies a scalar, treating nil and whitespace-only strings as
// absent.
func textVal(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return domain.String(t)
	case float64:
		return domain.String(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		return domain.String(strconv.FormatBool(t))
	}
	return nil
}

// firstText returns the first value that stringifies to non-blank text.
func firstText(values ...any) *string {
	for _, v := range values {
		if s := textVal(v); s != nil {
			return s
		}
	}
	return nil
}

// orFloat mirrors a truthiness chain over optional numbers: a wins unless it
// is absent or zero.
func orFloat(a, b *float64) *float64 {
	if a != nil && *a != 0 {
		return a
	}
	return b
}

// firstFloat returns the first key in m holding a usable number.
func firstFloat(m map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		if _, ok := m[key]; !ok {
			continue
		}
		if v := floatVal(m[key]); v != nil {
			return v
		}
	}
	return nil
}

// firstKey returns the first key whose value is present and non-nil.
func firstKey(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// epochTime interprets a numeric value as seconds since the Unix epoch, UTC.
func epochTime(v any) *time.Time {
	n := intVal(v)
	if n == nil {
		return nil
	}
	t := time.Unix(int64(*n), 0).UTC()
	return &t
}

// isoTime parses RFC 3339 timestamps, tolerating a bare "Z" suffix and
// offset forms alike. Returns nil when the value is absent or unparseable.
func isoTime(v any) *time.Time {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
