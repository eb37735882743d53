package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team is one of the fixed units a user signs up under.
type Team string

// Define constants for teams
const (
	TeamNorth        Team = "north"
	TeamSouth        Team = "south"
	TeamCenter       Team = "center"
	TeamHQ           Team = "hq"
	TeamGeneralStaff Team = "general_staff"
)

// Teams lists every valid team in display order.
var Teams = []Team{TeamNorth, TeamSouth, TeamCenter, TeamHQ, TeamGeneralStaff}

// Valid reports whether t is one of the known teams.
func (t Team) Valid() bool {
	for _, known := range Teams {
		if t == known {
			return true
		}
	}
	return false
}

// User represents a person logging trainings. Identification is by full name only.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName  string             `bson:"fullName" json:"fullName"` // Not unique, duplicates are allowed
	Team      Team               `bson:"team" json:"team"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Set when an admin deletes the user; the reconciler purges the document later.
	DeletedAt *time.Time `bson:"deletedAt,omitempty" json:"-"`
}

// IsDeleted reports whether the user has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}
