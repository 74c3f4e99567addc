package models

// BoardRole is a user's access level on a board. Ordering: owner > admin > write > read.
type BoardRole string

const (
	BoardRoleOwner BoardRole = "owner"
	BoardRoleAdmin BoardRole = "admin"
	BoardRoleWrite BoardRole = "write"
	BoardRoleRead  BoardRole = "read"
)

// Rank orders board roles, lower is stronger. Unknown roles sort last.
func (r BoardRole) Rank() int {
	switch r {
	case BoardRoleOwner:
		return 1
	case BoardRoleAdmin:
		return 2
	case BoardRoleWrite:
		return 3
	case BoardRoleRead:
		return 4
	}
	return 5
}

func (r BoardRole) Valid() bool {
	return r.Rank() < 5
}

// Assignable reports whether the role can be granted through invites or role updates.
// Ownership never changes hands.
func (r BoardRole) Assignable() bool {
	return r == BoardRoleAdmin || r == BoardRoleWrite || r == BoardRoleRead
}

func (r BoardRole) CanRead() bool {
	return r.Valid()
}

func (r BoardRole) CanWrite() bool {
	return r == BoardRoleOwner || r == BoardRoleAdmin || r == BoardRoleWrite
}

func (r BoardRole) HasAdminAccess() bool {
	return r == BoardRoleOwner || r == BoardRoleAdmin
}

func (r BoardRole) IsOwner() bool {
	return r == BoardRoleOwner
}

// OrgRole is a user's role inside an organization.
type OrgRole string

const (
	OrgRoleOwner  OrgRole = "owner"
	OrgRoleAdmin  OrgRole = "admin"
	OrgRoleMember OrgRole = "member"
)

func (r OrgRole) Rank() int {
	switch r {
	case OrgRoleOwner:
		return 1
	case OrgRoleAdmin:
		return 2
	case OrgRoleMember:
		return 3
	}
	return 4
}

func (r OrgRole) Valid() bool {
	return r.Rank() < 4
}

func (r OrgRole) IsMember() bool {
	return r.Valid()
}

func (r OrgRole) IsAdmin() bool {
	return r == OrgRoleOwner || r == OrgRoleAdmin
}

func (r OrgRole) IsOwner() bool {
	return r == OrgRoleOwner
}
