package permission

import "sort"

// RoleSet is an immutable set of role names.
type RoleSet struct {
	roles map[string]struct{}
}

// NewRoleSet builds a RoleSet from roles. Empty names are ignored.
func NewRoleSet(roles ...string) RoleSet {
	set := RoleSet{roles: make(map[string]struct{}, len(roles))}
	for _, r := range roles {
		if r == "" {
			continue
		}
		set.roles[r] = struct{}{}
	}
	return set
}

// Has reports whether role is in the set.
func (s RoleSet) Has(role string) bool {
	_, ok := s.roles[role]
	return ok
}

// Intersects reports whether any of required is in the set.
//
// An empty required list means "no role requirement" and always admits.
func (s RoleSet) Intersects(required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct roles.
func (s RoleSet) Len() int {
	return len(s.roles)
}

// Slice returns the roles in lexical order.
func (s RoleSet) Slice() []string {
	out := make([]string, 0, len(s.roles))
	for r := range s.roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
