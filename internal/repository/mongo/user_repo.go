package mongo

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/repository" // Import the repository interfaces package
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.FullName == "" || user.Team == "" {
		return primitive.NilObjectID, fmt.Errorf("user full name and team are required: %w", repository.ErrInvalidInput)
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.DeletedAt = nil

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert user: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a live user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"_id": id, "deletedAt": notDeleted()}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// FindFirstByFullName retrieves the earliest-created live user with an exactly matching name.
// Names are not unique; ordering by creation time (then id) makes the pick deterministic.
func (r *mongoUserRepository) FindFirstByFullName(ctx context.Context, fullName string) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"fullName": fullName, "deletedAt": notDeleted()}
	findOneOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	err := r.collection.FindOne(ctx, filter, findOneOptions).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find user by name: %w", err)
	}
	return &user, nil
}

// List retrieves all live users, oldest first.
func (r *mongoUserRepository) List(ctx context.Context) ([]domain.User, error) {
	filter := bson.M{"deletedAt": notDeleted()}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.find(ctx, filter, findOptions)
}

// Update overwrites the editable fields of a user. The last writer wins.
func (r *mongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	if user.ID == primitive.NilObjectID {
		return fmt.Errorf("user ID is required for update: %w", repository.ErrInvalidInput)
	}

	now := time.Now().UTC()
	filter := bson.M{"_id": user.ID, "deletedAt": notDeleted()}
	update := bson.M{
		"$set": bson.M{
			"fullName":  user.FullName,
			"team":      user.Team,
			"updatedAt": now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	user.UpdatedAt = now
	return nil
}

// MarkDeleted soft-deletes a user. Marking an already deleted user is a no-op;
// ErrNotFound is returned only when the document does not exist at all.
func (r *mongoUserRepository) MarkDeleted(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, markDeletedPipeline())
	if err != nil {
		return fmt.Errorf("mark user deleted: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListDeleted returns up to limit soft-deleted users, oldest deletion first.
func (r *mongoUserRepository) ListDeleted(ctx context.Context, limit int64) ([]domain.User, error) {
	filter := bson.M{"deletedAt": bson.M{"$exists": true}}
	findOptions := options.Find().SetSort(bson.D{{Key: "deletedAt", Value: 1}}).SetLimit(limit)
	return r.find(ctx, filter, findOptions)
}

// Purge permanently removes a user document.
func (r *mongoUserRepository) Purge(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("purge user: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []domain.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Login lookup: exact name, earliest first
			Keys:    bson.D{{Key: "fullName", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "deletedAt", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
