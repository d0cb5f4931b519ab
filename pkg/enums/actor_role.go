package enums

import (
	"fmt"
	"strings"
)

// ActorRole names the platform roles the search screen can filter by.
type ActorRole string

const (
	ActorRoleOwner    ActorRole = "owner"
	ActorRoleCustomer ActorRole = "customer"
	ActorRoleCaptain  ActorRole = "captain"
	ActorRoleWaiter   ActorRole = "waiter"
	ActorRolePartner  ActorRole = "partner"
	ActorRoleManager  ActorRole = "manager"
	ActorRoleChef     ActorRole = "chef"
)

var validActorRoles = []ActorRole{
	ActorRoleOwner,
	ActorRoleCustomer,
	ActorRoleCaptain,
	ActorRoleWaiter,
	ActorRolePartner,
	ActorRoleManager,
	ActorRoleChef,
}

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}

// IsValid reports whether the value matches a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validActorRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
