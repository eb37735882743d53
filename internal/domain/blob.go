package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlobTombstone records an object in the blob store that no document references
// anymore and that the reconciler must remove.
type BlobTombstone struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ObjectKey string             `bson:"objectKey" json:"objectKey"`
	Reason    string             `bson:"reason" json:"reason"` // e.g. "replaced", "create_failed"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
