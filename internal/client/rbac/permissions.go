// Package rbac maps roles to capabilities. Views ask for a capability and
// derive the roles allowed to open them from this one table instead of
// comparing role strings at each call site.
package rbac

import (
	"slices"

	"github.com/dmitrijs2005/gallerist/internal/client/models"
)

type Capability string

const (
	Browse             Capability = "browse"
	EditProfile        Capability = "edit_profile"
	UploadFiles        Capability = "upload_files"
	ManageOwnArtworks  Capability = "manage_own_artworks"
	ManageAllArtworks  Capability = "manage_all_artworks"
	ManageGalleries    Capability = "manage_galleries"
	ManageUsers        Capability = "manage_users"
	ViewAdminDashboard Capability = "view_admin_dashboard"
)

// Capabilities is a set of capabilities.
type Capabilities map[Capability]struct{}

func (c Capabilities) Has(cap Capability) bool {
	_, ok := c[cap]
	return ok
}

// List returns the capabilities in a stable order.
func (c Capabilities) List() []Capability {
	out := make([]Capability, 0, len(c))
	for cap := range c {
		out = append(out, cap)
	}
	slices.Sort(out)
	return out
}

func set(caps ...Capability) Capabilities {
	c := make(Capabilities, len(caps))
	for _, cap := range caps {
		c[cap] = struct{}{}
	}
	return c
}

var table = map[models.Role]Capabilities{
	models.RoleAdmin: set(Browse, EditProfile, UploadFiles, ManageOwnArtworks,
		ManageAllArtworks, ManageGalleries, ManageUsers, ViewAdminDashboard),
	models.RoleGalleryManager: set(Browse, EditProfile, UploadFiles, ManageOwnArtworks,
		ManageAllArtworks, ManageGalleries),
	models.RoleArtist:   set(Browse, EditProfile, UploadFiles, ManageOwnArtworks),
	models.RoleCustomer: set(Browse, EditProfile),
}

// PermissionsOf returns the capability set of role. Unknown roles get none.
// The returned set is a copy.
func PermissionsOf(role models.Role) Capabilities {
	src := table[role]
	out := make(Capabilities, len(src))
	for cap := range src {
		out[cap] = struct{}{}
	}
	return out
}

// RolesWith returns every role holding cap, in models.AllRoles order.
func RolesWith(cap Capability) []models.Role {
	var roles []models.Role
	for _, r := range models.AllRoles {
		if table[r].Has(cap) {
			roles = append(roles, r)
		}
	}
	return roles
}
