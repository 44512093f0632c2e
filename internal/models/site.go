package models

// SiteRole is a user's role within a site. Roles form a strict hierarchy:
// admin > editor > viewer.
type SiteRole string

const (
	RoleAdmin  SiteRole = "admin"
	RoleEditor SiteRole = "editor"
	RoleViewer SiteRole = "viewer"
)

var roleRank = map[SiteRole]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// AtLeast reports whether the role grants at least the privileges of min.
// Unknown roles rank below viewer.
func (r SiteRole) AtLeast(min SiteRole) bool {
	return roleRank[r] >= roleRank[min]
}

// Site is an organizational scope that partitions interaction data and user
// permissions.
type Site struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Role        SiteRole `json:"role,omitempty"`
}
