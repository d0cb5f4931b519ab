package enums

import "fmt"

// SearchField selects which attribute the cross-entity search matches on.
type SearchField string

const (
	SearchFieldName   SearchField = "name"
	SearchFieldMobile SearchField = "mobile"
)

var validSearchFields = []SearchField{
	SearchFieldName,
	SearchFieldMobile,
}

func (s SearchField) String() string {
	return string(s)
}

func (s SearchField) IsValid() bool {
	for _, candidate := range validSearchFields {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseSearchField(value string) (SearchField, error) {
	for _, candidate := range validSearchFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid search field %q", value)
}
