package mongo

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/repository"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tombstoneCollectionName = "blob_tombstones"

// mongoTombstoneRepository implements repository.BlobTombstoneRepository
type mongoTombstoneRepository struct {
	collection *mongo.Collection
}

// NewMongoTombstoneRepository creates a tombstone repository backed by MongoDB.
func NewMongoTombstoneRepository(db *mongo.Database) repository.BlobTombstoneRepository {
	return &mongoTombstoneRepository{
		collection: db.Collection(tombstoneCollectionName),
	}
}

// Add records an object key for later removal.
func (r *mongoTombstoneRepository) Add(ctx context.Context, objectKey, reason string) error {
	if objectKey == "" {
		return fmt.Errorf("tombstone requires an object key: %w", repository.ErrInvalidInput)
	}
	tombstone := domain.BlobTombstone{
		ID:        primitive.NewObjectID(),
		ObjectKey: objectKey,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, tombstone); err != nil {
		return fmt.Errorf("insert tombstone: %w", err)
	}
	return nil
}

// List returns up to limit tombstones, oldest first.
func (r *mongoTombstoneRepository) List(ctx context.Context, limit int64) ([]domain.BlobTombstone, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find tombstones: %w", err)
	}
	defer cursor.Close(ctx)

	tombstones := []domain.BlobTombstone{}
	if err = cursor.All(ctx, &tombstones); err != nil {
		return nil, fmt.Errorf("decode tombstones: %w", err)
	}
	return tombstones, nil
}

// Remove deletes a tombstone once its object is gone. Removing twice is not an error.
func (r *mongoTombstoneRepository) Remove(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("remove tombstone: %w", err)
	}
	return nil
}

// EnsureTombstoneIndexes creates necessary indexes. Call during startup.
func EnsureTombstoneIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index(),
	})
	return err
}
