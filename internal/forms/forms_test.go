package forms

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
)

func TestDigitsOnly(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{in: "98765 43210", limit: 10, want: "9876543210"},
		{in: "+91-98765-43210", limit: 10, want: "9198765432"},
		{in: "abc", limit: 10, want: ""},
		{in: "123456789012", limit: 0, want: "123456789012"},
		{in: "١٢٣45", limit: 10, want: "45"},
	}
	for _, tc := range cases {
		if got := DigitsOnly(tc.in, tc.limit); got != tc.want {
			t.Fatalf("DigitsOnly(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
	if got := Mobile("(987) 654-3210 ext 9"); got != "9876543210" {
		t.Fatalf("unexpected mobile %q", got)
	}
}

func TestBackendDate(t *testing.T) {
	d := time.Date(1990, time.March, 5, 0, 0, 0, 0, time.UTC)
	if got := BackendDate(d); got != "05 Mar 1990" {
		t.Fatalf("unexpected backend date %q", got)
	}
	if got := BackendDate(time.Time{}); got != "" {
		t.Fatalf("zero time should format blank, got %q", got)
	}
}

func TestNormalizeDate(t *testing.T) {
	for _, in := range []string{"1990-03-05", "05 Mar 1990", "5 Mar 1990", "1990-03-05T00:00:00Z"} {
		got, err := NormalizeDate("dob", in)
		if err != nil {
			t.Fatalf("NormalizeDate(%q) returned error: %v", in, err)
		}
		if got != "05 Mar 1990" {
			t.Fatalf("NormalizeDate(%q) = %q", in, got)
		}
	}

	if got, err := NormalizeDate("dob", "  "); err != nil || got != "" {
		t.Fatalf("blank date should stay blank, got %q, %v", got, err)
	}

	_, err := NormalizeDate("dob", "05/03/1990")
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSelectionToggle(t *testing.T) {
	s := NewSelection(1, 2)

	s.Toggle(3)
	if got := s.IDs(); !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Fatalf("toggling an absent id should append it, got %v", got)
	}

	s.Toggle(2)
	if got := s.IDs(); !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Fatalf("toggling a present id should remove it, got %v", got)
	}

	s.Toggle(2)
	s.Toggle(2)
	if got := s.IDs(); !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Fatalf("double toggle should be a no-op, got %v", got)
	}
	if s.Has(2) || !s.Has(3) {
		t.Fatal("membership does not match ids")
	}
}

func TestSelectionDeduplicatesAndDefaults(t *testing.T) {
	s := NewSelection(4, 4, 5)
	if s.Len() != 2 {
		t.Fatalf("expected duplicates to be dropped, got %v", s.IDs())
	}

	empty := NewSelection()
	if got := empty.OrDefault(1); !reflect.DeepEqual(got, []int64{1}) {
		t.Fatalf("expected default ids, got %v", got)
	}
	if got := s.OrDefault(1); !reflect.DeepEqual(got, []int64{4, 5}) {
		t.Fatalf("explicit selection should win, got %v", got)
	}
}

func TestSelectionJSON(t *testing.T) {
	var payload struct {
		IDs *Selection `json:"functionality_ids"`
	}
	if err := json.Unmarshal([]byte(`{"functionality_ids":[2,2,7]}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"functionality_ids":[2,7]}` {
		t.Fatalf("unexpected json %s", raw)
	}
}

func TestPersonNormalize(t *testing.T) {
	got, err := Person{
		Name:         "  Asha Rao ",
		Mobile:       "+91 98765 43210",
		Email:        " asha@example.com ",
		AadharNumber: "1234 5678 9012",
		DOB:          "1990-03-05",
	}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := Person{Name: "Asha Rao", Mobile: "9198765432", Email: "asha@example.com", AadharNumber: "123456789012", DOB: "05 Mar 1990"}
	if got != want {
		t.Fatalf("unexpected person %+v", got)
	}
}

func TestPersonNormalizeReportsEveryField(t *testing.T) {
	_, err := Person{Mobile: "12345", AadharNumber: "123", DOB: "yesterday"}.Normalize()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	for _, field := range []string{"name", "mobile", "aadhar_number", "dob"} {
		if _, ok := details[field]; !ok {
			t.Fatalf("expected %s to be reported, got %v", field, details)
		}
	}
}
