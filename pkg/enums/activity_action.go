package enums

import "fmt"

// ActivityAction classifies console mutations recorded in the activity log.
type ActivityAction string

const (
	ActivityActionLogin   ActivityAction = "login"
	ActivityActionLogout  ActivityAction = "logout"
	ActivityActionCreate  ActivityAction = "create"
	ActivityActionUpdate  ActivityAction = "update"
	ActivityActionDelete  ActivityAction = "delete"
	ActivityActionMessage ActivityAction = "message"
	ActivityActionStatus  ActivityAction = "status"
)

var validActivityActions = []ActivityAction{
	ActivityActionLogin,
	ActivityActionLogout,
	ActivityActionCreate,
	ActivityActionUpdate,
	ActivityActionDelete,
	ActivityActionMessage,
	ActivityActionStatus,
}

func (a ActivityAction) String() string {
	return string(a)
}

func (a ActivityAction) IsValid() bool {
	for _, candidate := range validActivityActions {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseActivityAction(value string) (ActivityAction, error) {
	for _, candidate := range validActivityActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity action %q", value)
}
