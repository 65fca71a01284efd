package entity

import (
	"slices"
	"sort"
)

// Status values shared by roles and menus.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Role groups menus. Users receive permissions only through roles.
type Role struct {
	ID     int64
	Domain string
	Key    string
	Name   string
	Status string
}

// MenuType distinguishes directories, pages and buttons.
type MenuType string

const (
	MenuTypeDirectory MenuType = "directory"
	MenuTypePage      MenuType = "page"
	MenuTypeButton    MenuType = "button"
)

// Menu is a navigation node. Permission is the capability string it grants, e.g. "system:user".
type Menu struct {
	ID         int64
	ParentID   int64
	Name       string
	Path       string
	Type       MenuType
	Permission string
	Sort       int
	Status     string
}

// PermissionSet is an immutable set of permission strings.
type PermissionSet struct {
	items map[string]struct{}
}

// NewPermissionSet builds a set, dropping empty strings and duplicates.
func NewPermissionSet(perms ...string) PermissionSet {
	items := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		if p == "" {
			continue
		}
		items[p] = struct{}{}
	}

	return PermissionSet{items: items}
}

// Has reports whether perm is in the set.
func (s PermissionSet) Has(perm string) bool {
	_, ok := s.items[perm]

	return ok
}

// Len returns the number of permissions.
func (s PermissionSet) Len() int {
	return len(s.items)
}

// Slice returns the permissions in sorted order.
func (s PermissionSet) Slice() []string {
	out := make([]string, 0, len(s.items))
	for p := range s.items {
		out = append(out, p)
	}
	sort.Strings(out)

	return out
}

// Equal reports whether both sets contain the same permissions.
func (s PermissionSet) Equal(other PermissionSet) bool {
	return slices.Equal(s.Slice(), other.Slice())
}
