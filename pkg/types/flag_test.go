package types

import (
	"encoding/json"
	"testing"
)

func TestFlagDecodesBackendShapes(t *testing.T) {
	cases := map[string]Flag{
		`1`:       FlagOn,
		`0`:       FlagOff,
		`true`:    FlagOn,
		`false`:   FlagOff,
		`null`:    FlagOff,
		`"1"`:     FlagOn,
		`"0"`:     FlagOff,
		`"true"`:  FlagOn,
		`" yes "`: FlagOn,
	}
	for raw, want := range cases {
		var got Flag
		if err := json.Unmarshal([]byte(raw), &got); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if got != want {
			t.Fatalf("decode %s: expected %d got %d", raw, want, got)
		}
	}
}

func TestFlagRejectsOutOfRange(t *testing.T) {
	for _, raw := range []string{`2`, `"2"`, `"maybe"`, `{}`} {
		var got Flag
		if err := json.Unmarshal([]byte(raw), &got); err == nil {
			t.Fatalf("expected %s to be rejected", raw)
		}
	}
}

func TestFlagEncodesAsInteger(t *testing.T) {
	payload := struct {
		IsOpen Flag `json:"is_open"`
		Active Flag `json:"is_active"`
	}{IsOpen: FlagFrom(true), Active: FlagFrom(false)}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"is_open":1,"is_active":0}` {
		t.Fatalf("unexpected encoding %s", raw)
	}
}
