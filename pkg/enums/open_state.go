package enums

import (
	"fmt"

	"github.com/angelmondragon/men4u-admin/pkg/types"
)

// OpenState is the two-state reading of an outlet's is_open flag.
type OpenState string

const (
	OpenStateOpen   OpenState = "open"
	OpenStateClosed OpenState = "closed"
)

var validOpenStates = []OpenState{
	OpenStateOpen,
	OpenStateClosed,
}

func OpenStateFromFlag(f types.Flag) OpenState {
	if f.Bool() {
		return OpenStateOpen
	}
	return OpenStateClosed
}

func (o OpenState) String() string {
	return string(o)
}

func (o OpenState) IsValid() bool {
	for _, candidate := range validOpenStates {
		if candidate == o {
			return true
		}
	}
	return false
}

func (o OpenState) Flag() types.Flag {
	return types.FlagFrom(o == OpenStateOpen)
}

func ParseOpenState(value string) (OpenState, error) {
	for _, candidate := range validOpenStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid open state %q", value)
}
