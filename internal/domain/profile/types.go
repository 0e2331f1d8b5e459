package profile

import "plogo-server/internal/pkg/errs"

// Role is asserted by the identity provider's token. Drivers charge at
// stations they are members of; owners operate stations and confirm payments.
type Role string

const (
	RoleDriver Role = "driver"
	RoleOwner  Role = "owner"
)

func NewRole(value string) (Role, error) {
	switch Role(value) {
	case RoleDriver, RoleOwner:
		return Role(value), nil
	default:
		return "", errs.Newf("invalid role: %s", value)
	}
}

func (r Role) String() string {
	return string(r)
}

// MembershipStatusApproved is the only membership status that grants charging
// rights on a station.
const MembershipStatusApproved = "approved"
