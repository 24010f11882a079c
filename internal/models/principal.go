package models

// Role represents the capability a principal holds. The set is closed:
// there are no other roles and no hierarchy between them.
type Role string

const (
	RoleStudent Role = "student"
	RoleVendor  Role = "vendor"
)

// ParseRole maps a wire value onto a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleVendor:
		return Role(s), true
	}
	return "", false
}

// Principal is the already-verified identity attached to a request by the
// upstream auth layer. The core trusts it as-is. A vendor principal's
// UserID doubles as its vendor id.
type Principal struct {
	UserID int
	Role   Role
}

// IsStudent reports whether the principal holds the student capability.
func (p Principal) IsStudent() bool { return p.Role == RoleStudent }

// IsVendor reports whether the principal holds the vendor capability.
func (p Principal) IsVendor() bool { return p.Role == RoleVendor }

// OwnsVendor reports whether the principal may act for the given vendor.
func (p Principal) OwnsVendor(vendorID int) bool {
	return p.Role == RoleVendor && p.UserID == vendorID
}
