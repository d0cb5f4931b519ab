package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a men4u record identifier. The API sends ids as JSON numbers on some
// endpoints and as strings on others; ID accepts both and writes numeric ids
// back as numbers.
type ID string

// IDFromInt formats an integer id.
func IDFromInt(v int64) ID {
	return ID(strconv.FormatInt(v, 10))
}

func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Int returns the numeric value of the id.
func (id ID) Int() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	trimmed := strings.TrimSpace(string(id))
	if trimmed == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return []byte(trimmed), nil
	}
	return json.Marshal(trimmed)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("invalid id %s", string(trimmed))
		}
		*id = ID(strings.TrimSpace(raw))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("invalid id %s", string(trimmed))
	}
	*id = ID(n.String())
	return nil
}
