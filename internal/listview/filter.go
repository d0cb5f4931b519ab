package listview

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FieldValues stringifies every top-level JSON field of v: strings as-is,
// numbers and booleans as their literal, null as "", nested values as JSON.
func FieldValues(v any) []string {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	values := make([]string, 0, len(fields))
	for _, field := range fields {
		values = append(values, stringify(field))
	}
	return values
}

func stringify(field json.RawMessage) string {
	trimmed := bytes.TrimSpace(field)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

// Matches reports whether any value contains query, ignoring case.
func Matches(values []string, query string) bool {
	needle := strings.ToLower(query)
	for _, value := range values {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

// Filter keeps the rows with at least one value containing query, ignoring
// case. values picks the searchable fields of a row; nil searches every field.
// An empty query returns every row.
func Filter[T any](rows []T, query string, values func(T) []string) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}
	if values == nil {
		values = func(row T) []string { return FieldValues(row) }
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if Matches(values(row), query) {
			out = append(out, row)
		}
	}
	return out
}
