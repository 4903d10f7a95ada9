package domain

// Operation names a gated user-management action.
type Operation string

const (
	OpCreateUser Operation = "users.create"
	OpListUsers  Operation = "users.list"
	OpUpdateUser Operation = "users.update"
	OpDeleteUser Operation = "users.delete"
)

// RoleSet is the set of roles allowed to perform an operation.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether r belongs to the set.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Policy maps each gated operation to the roles allowed to invoke it.
// Operations absent from the table are denied to everyone.
type Policy map[Operation]RoleSet

// DefaultPolicy is the route policy of the user API. SUPER_ADMIN may do
// anything ADMIN may.
func DefaultPolicy() Policy {
	admins := []Role{RoleSuperAdmin, RoleAdmin}
	return Policy{
		OpCreateUser: NewRoleSet(admins...),
		OpListUsers:  NewRoleSet(RoleSuperAdmin, RoleAdmin, RoleUser),
		OpUpdateUser: NewRoleSet(admins...),
		OpDeleteUser: NewRoleSet(admins...),
	}
}

// Allows reports whether role may perform op.
func (p Policy) Allows(op Operation, role Role) bool {
	set, ok := p[op]
	if !ok {
		return false
	}
	return set.Contains(role)
}
