// Package models defines the client-side data models of gallerist: users
// and roles, the auth session, upload items, and the catalog (artworks and
// galleries). Backend-owned records carry JSON tags matching the API.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is a user's role as reported by the backend.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleGalleryManager Role = "gallery_manager"
	RoleArtist         Role = "artist"
	RoleCustomer       Role = "customer"
)

// AllRoles lists every known role in privilege order.
var AllRoles = []Role{RoleAdmin, RoleGalleryManager, RoleArtist, RoleCustomer}

func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole accepts the backend spelling as well as "gallery-manager".
func ParseRole(s string) (Role, error) {
	r := Role(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is the backend's user record. The client holds a cached copy that is
// only refreshed by an explicit "who am I" fetch.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Role            Role      `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	Avatar          *string   `json:"avatar,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	Address         *string   `json:"address,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Name joins first and last name, falling back to the email.
func (u *User) Name() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Clone returns a deep copy so callers cannot mutate cached state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Avatar = cloneString(u.Avatar)
	c.Phone = cloneString(u.Phone)
	c.Bio = cloneString(u.Bio)
	c.Address = cloneString(u.Address)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ProfileUpdate carries the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Address   *string `json:"address,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
}
