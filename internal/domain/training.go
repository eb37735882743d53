package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingType distinguishes the kinds of sessions a user can log.
type TrainingType string

const (
	TrainingStrength TrainingType = "strength"
	TrainingRun      TrainingType = "run"
)

// TrainingTypes lists every valid training type in display order.
var TrainingTypes = []TrainingType{TrainingStrength, TrainingRun}

// Valid reports whether t is one of the known training types.
func (t TrainingType) Valid() bool {
	return t == TrainingStrength || t == TrainingRun
}

// Training is a single logged workout session.
type Training struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"` // Not enforced; may point to a user that no longer exists
	Type     TrainingType       `bson:"type" json:"type"`
	Details  string             `bson:"details" json:"details"`
	ImageKey string             `bson:"imageKey,omitempty" json:"-"` // Object key in the blob store, empty when no image

	// ImageURL is derived on read from ImageKey and never stored.
	ImageURL string `bson:"-" json:"imageUrl"`

	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"` // Server-assigned at insert
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	DeletedAt *time.Time `bson:"deletedAt,omitempty" json:"-"`
}

// HasImage reports whether an image was uploaded with the training.
func (t *Training) HasImage() bool {
	return t.ImageKey != ""
}
