package forms

import (
	"strings"
	"time"
	"unicode"

	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
)

// MobileLength is the number of digits kept in a phone number field.
const MobileLength = 10

// BackendDateLayout is the "DD Mon YYYY" form the men4u API expects for dates.
const BackendDateLayout = "02 Jan 2006"

var dateInputLayouts = []string{
	"2006-01-02",
	BackendDateLayout,
	"2 Jan 2006",
	time.RFC3339,
}

// DigitsOnly strips every non-digit from s and keeps at most limit digits.
// limit <= 0 keeps all of them.
func DigitsOnly(s string, limit int) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			continue
		}
		if limit > 0 && b.Len() >= limit {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Mobile normalizes a phone number input.
func Mobile(s string) string {
	return DigitsOnly(s, MobileLength)
}

// BackendDate formats t for the men4u API.
func BackendDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(BackendDateLayout)
}

// NormalizeDate accepts a date picker value (YYYY-MM-DD), an RFC 3339
// timestamp or a date already in backend form, and returns the backend form.
// Blank input stays blank.
func NormalizeDate(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return BackendDate(t), nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid date").
		WithDetails(map[string]any{"field": field, "value": raw})
}
