package models

// Role is the kind of account a session belongs to.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleReception Role = "reception"
	RolePartner   Role = "partner"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleReception, RolePartner:
		return true
	}
	return false
}

// Session is the authenticated identity behind a request.
type Session struct {
	Username string
	Role     Role

	// PartnerID is set only when Role is RolePartner.
	PartnerID string
}
