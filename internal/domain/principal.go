package domain

import "github.com/google/uuid"

// Role is the coarse authorization level carried by a principal.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the authenticated actor a mutating operation runs on behalf of.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin reports whether the principal may moderate and run backfills.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanManage reports whether the principal owns rec or is an admin.
func (p Principal) CanManage(rec Record) bool {
	return p.IsAdmin() || (p.ID != uuid.Nil && p.ID == rec.OwnerID)
}
