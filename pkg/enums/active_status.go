package enums

import (
	"fmt"

	"github.com/angelmondragon/men4u-admin/pkg/types"
)

// ActiveStatus is the two-state reading of the backend's is_active / outlet_status flags.
type ActiveStatus string

const (
	ActiveStatusActive   ActiveStatus = "active"
	ActiveStatusInactive ActiveStatus = "inactive"
)

var validActiveStatuses = []ActiveStatus{
	ActiveStatusActive,
	ActiveStatusInactive,
}

// ActiveStatusFromFlag converts the wire flag at the boundary.
func ActiveStatusFromFlag(f types.Flag) ActiveStatus {
	if f.Bool() {
		return ActiveStatusActive
	}
	return ActiveStatusInactive
}

// String implements fmt.Stringer.
func (a ActiveStatus) String() string {
	return string(a)
}

// IsValid reports whether the value matches a known ActiveStatus.
func (a ActiveStatus) IsValid() bool {
	for _, candidate := range validActiveStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// Flag converts the status back into the backend's 0/1 form.
func (a ActiveStatus) Flag() types.Flag {
	return types.FlagFrom(a == ActiveStatusActive)
}

// ParseActiveStatus converts raw input into an ActiveStatus.
func ParseActiveStatus(value string) (ActiveStatus, error) {
	for _, candidate := range validActiveStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid active status %q", value)
}
