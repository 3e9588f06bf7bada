package models

// Caller is the identity extracted from a validated bearer token. It is
// the only input to content authorization decisions.
type Caller struct {
	Subject  string
	Username string
	Email    string
	Roles    []string
}

// IsOwnerOrAdmin is the single authorization predicate shared by every
// mutating content endpoint: the caller must be the resource owner or
// hold the Admin role.
func (c Caller) IsOwnerOrAdmin(owner string) bool {
	if c.Username == owner {
		return true
	}
	return c.HasRole(RoleAdmin)
}

func (c Caller) HasRole(name string) bool {
	for _, r := range c.Roles {
		if r == name {
			return true
		}
	}
	return false
}
