package domain

type Role string

const (
	RoleMember    Role = "member"
	RoleAdmin     Role = "admin"
	RoleSuperuser Role = "superuser"
)

// Roles is the verified role set of a caller.
type Roles []Role

func NewRoles(values ...string) Roles {
	roles := make(Roles, 0, len(values))
	for _, v := range values {
		roles = append(roles, Role(v))
	}
	return roles
}

func (r Roles) Has(role Role) bool {
	for _, have := range r {
		if have == role {
			return true
		}
	}
	return false
}

// IsAdmin is true for admins and superusers.
func (r Roles) IsAdmin() bool {
	return r.Has(RoleAdmin) || r.Has(RoleSuperuser)
}

func (r Roles) IsMember() bool {
	return r.Has(RoleMember) || r.IsAdmin()
}

func (r Roles) IsSuperuser() bool {
	return r.Has(RoleSuperuser)
}
