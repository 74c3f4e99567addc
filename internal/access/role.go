// Package access decides what a user may do on a board.
//
// A user's effective role is their direct board membership if they have one; otherwise it is
// inherited from their membership in the organization that owns the board. Every mutating
// handler asks the Resolver before touching the store.
package access

import (
	"epitrello-backend/internal/models"
)

// Inherited maps an organization role onto the board role it grants on the
// organization's boards.
func Inherited(org models.OrgRole) models.BoardRole {
	if org.IsAdmin() {
		return models.BoardRoleAdmin
	}
	return models.BoardRoleWrite
}

// Effective combines the two membership sources. Direct membership always wins.
// A nil result means no access.
func Effective(direct *models.BoardRole, org *models.OrgRole) *models.BoardRole {
	if direct != nil {
		role := *direct
		return &role
	}
	if org != nil && org.IsMember() {
		role := Inherited(*org)
		return &role
	}
	return nil
}

// Capability is one of the four yes/no questions asked about a board.
type Capability int

const (
	Read Capability = iota
	Write
	Admin
	Owner
)

func (c Capability) String() string {
	switch c {
	case Read:
		return "read"
	case Write:
		return "write"
	case Admin:
		return "admin"
	case Owner:
		return "owner"
	}
	return "unknown"
}

// Allows reports whether role grants c. A nil role grants nothing.
func (c Capability) Allows(role *models.BoardRole) bool {
	if role == nil {
		return false
	}
	switch c {
	case Read:
		return role.CanRead()
	case Write:
		return role.CanWrite()
	case Admin:
		return role.HasAdminAccess()
	case Owner:
		return role.IsOwner()
	}
	return false
}
