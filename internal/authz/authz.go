// Package authz defines capability checks as pure predicates over the
// authenticated principal, so role and tenant-ownership rules live in one
// place instead of being restated in every handler.
package authz

import (
	"github.com/google/uuid"

	"notably/internal/common"
)

// Capability reports whether a principal may perform some action.
type Capability func(p common.Principal) bool

// RoleIs grants the capability to principals with the given role.
func RoleIs(role string) Capability {
	return func(p common.Principal) bool {
		return p.Role == role
	}
}

// MemberOf grants the capability to principals belonging to the given tenant.
func MemberOf(tenantID uuid.UUID) Capability {
	return func(p common.Principal) bool {
		return p.TenantID == tenantID
	}
}
