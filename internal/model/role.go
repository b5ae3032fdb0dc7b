package model

// Role is the closed set of access tiers an account can hold. Tokens carry
// the role as a string claim; everything inside the service goes through
// ParseRole so that an unknown or mistyped value can never slip past the
// authorization gate as a valid role.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// ParseRole maps a raw claim or request value onto a known Role. The boolean
// is false for anything outside the closed set, including the empty string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// String returns the claim representation of the role.
func (r Role) String() string { return string(r) }
