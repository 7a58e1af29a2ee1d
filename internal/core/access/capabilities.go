// Package access turns a resolved role into the capability set consumers
// check, so role comparisons are made in exactly one place.
package access

import "fmt"

// Role is the access level a user has been granted.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleGlobalViewer Role = "global_viewer"
	RoleSiteLeader   Role = "campus_leader"
	RoleNone         Role = ""
)

// ParseRole maps a stored role string to a Role. Unknown values map to RoleNone.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleGlobalViewer, RoleSiteLeader:
		return Role(s)
	default:
		return RoleNone
	}
}

// Capabilities is computed once from a role and the site it is bound to.
type Capabilities struct {
	Role   Role
	SiteID string
}

// For builds the capability set of a role. The site id only matters for
// site leaders.
func For(role Role, siteID string) Capabilities {
	if role != RoleSiteLeader {
		siteID = ""
	}
	return Capabilities{Role: role, SiteID: siteID}
}

// CanCreate reports whether the user may record new reports.
func (c Capabilities) CanCreate() bool {
	return c.Role == RoleAdmin || (c.Role == RoleSiteLeader && c.SiteID != "")
}

// CanEdit reports whether the user may edit or delete reports of siteID.
func (c Capabilities) CanEdit(siteID string) bool {
	switch c.Role {
	case RoleAdmin:
		return true
	case RoleSiteLeader:
		return c.SiteID != "" && c.SiteID == siteID
	default:
		return false
	}
}

// CanViewAll reports whether the user sees every site.
func (c Capabilities) CanViewAll() bool {
	return c.Role == RoleAdmin || c.Role == RoleGlobalViewer
}

// CanView reports whether the user may see reports of siteID.
func (c Capabilities) CanView(siteID string) bool {
	return c.CanViewAll() || (c.Role == RoleSiteLeader && c.SiteID == siteID)
}

// CanManageCatalog reports whether the user may add or remove presenters,
// volunteer areas and sites.
func (c Capabilities) CanManageCatalog() bool {
	return c.Role == RoleAdmin
}

// GuardResult represents the outcome of a capability check.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CheckEdit evaluates whether a report on siteID may be changed.
func (c Capabilities) CheckEdit(siteID string) GuardResult {
	if c.CanEdit(siteID) {
		return GuardResult{Allowed: true}
	}
	if c.Role == RoleNone {
		return GuardResult{Reason: "no role assigned; ask an administrator for access"}
	}
	return GuardResult{Reason: fmt.Sprintf("role %s cannot change reports of site %s", c.Role, siteID)}
}

// CheckCatalog evaluates whether catalog entries may be changed.
func (c Capabilities) CheckCatalog() GuardResult {
	if c.CanManageCatalog() {
		return GuardResult{Allowed: true}
	}
	return GuardResult{Reason: "only administrators can manage presenters, areas and sites"}
}
