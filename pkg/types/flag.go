package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Flag is the 0/1 integer the men4u API uses for booleans. It decodes from 0/1,
// "0"/"1", true/false and null, and always encodes as 0 or 1.
type Flag int

const (
	FlagOff Flag = 0
	FlagOn  Flag = 1
)

// FlagFrom converts a boolean into its wire form.
func FlagFrom(on bool) Flag {
	if on {
		return FlagOn
	}
	return FlagOff
}

// Bool reports whether the flag is set.
func (f Flag) Bool() bool {
	return f == FlagOn
}

// MarshalJSON implements json.Marshaler.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f.Bool() {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "", "null", "false", "0":
		*f = FlagOff
		return nil
	case "true", "1":
		*f = FlagOn
		return nil
	}

	var raw string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("invalid flag %s", string(trimmed))
	}
	return f.parse(raw)
}

func (f *Flag) parse(raw string) error {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "", "false", "no":
		*f = FlagOff
		return nil
	case "true", "yes":
		*f = FlagOn
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || (n != 0 && n != 1) {
		return fmt.Errorf("invalid flag %q", raw)
	}
	*f = Flag(n)
	return nil
}
