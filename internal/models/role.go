package models

// Role is a member's permission level within a budget. Roles form a total
// order: Owner > Manager > Contributor > Viewer. Comparison is by Rank,
// except for owner-only operations which require an exact match.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleManager     Role = "manager"
	RoleContributor Role = "contributor"
	RoleViewer      Role = "viewer"
)

// Rank returns the privilege rank of the role. Higher means more privileged.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleManager:
		return 2
	case RoleContributor:
		return 1
	case RoleViewer:
		return 0
	}
	return -1
}

// ParseRole matches s against the four lowercase role tokens. The boolean is
// false for anything else; callers must reject unknown tokens rather than
// substitute a default.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleManager, RoleContributor, RoleViewer:
		return Role(s), true
	}
	return "", false
}
