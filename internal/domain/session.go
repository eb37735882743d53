package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role defines the access level carried by a session.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Session is the authenticated caller, decoded from a bearer token.
// Admin sessions carry no UserID.
type Session struct {
	UserID    primitive.ObjectID
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the session passed the admin gate.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
