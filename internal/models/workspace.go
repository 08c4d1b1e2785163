package models

import "time"

// Workspace groups accounts shared by a set of member users.
type Workspace struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkspaceMember roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)
