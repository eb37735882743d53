package mongo

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const trainingCollectionName = "trainings"

// mongoTrainingRepository implements repository.TrainingRepository
type mongoTrainingRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingRepository creates a new Training repository backed by MongoDB.
func NewMongoTrainingRepository(db *mongo.Database) repository.TrainingRepository {
	return &mongoTrainingRepository{
		collection: db.Collection(trainingCollectionName),
	}
}

// newestFirst sorts by creation time descending; _id breaks ties within the same millisecond.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// Create inserts a new training. CreatedAt is always assigned here, never by the caller.
func (r *mongoTrainingRepository) Create(ctx context.Context, training *domain.Training) (primitive.ObjectID, error) {
	if training.UserID == primitive.NilObjectID || training.Type == "" {
		return primitive.NilObjectID, fmt.Errorf("training requires userId and type: %w", repository.ErrInvalidInput)
	}

	training.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	training.CreatedAt = now
	training.UpdatedAt = now
	training.DeletedAt = nil

	result, err := r.collection.InsertOne(ctx, training)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert training: %w", err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted training ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single live training by its ID.
func (r *mongoTrainingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Training, error) {
	var training domain.Training
	filter := bson.M{"_id": id, "deletedAt": notDeleted()}

	err := r.collection.FindOne(ctx, filter).Decode(&training)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find training: %w", err)
	}
	return &training, nil
}

// ListByUser retrieves the live trainings of one user, newest first.
func (r *mongoTrainingRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Training, error) {
	filter := bson.M{"userId": userID, "deletedAt": notDeleted()}
	return r.find(ctx, filter, options.Find().SetSort(newestFirst))
}

// ListAll retrieves every live training, newest first.
func (r *mongoTrainingRepository) ListAll(ctx context.Context) ([]domain.Training, error) {
	filter := bson.M{"deletedAt": notDeleted()}
	return r.find(ctx, filter, options.Find().SetSort(newestFirst))
}

// Update overwrites type, details and image key. UserID and CreatedAt never change.
func (r *mongoTrainingRepository) Update(ctx context.Context, training *domain.Training) error {
	if training.ID == primitive.NilObjectID {
		return fmt.Errorf("training ID is required for update: %w", repository.ErrInvalidInput)
	}

	now := time.Now().UTC()
	set := bson.M{
		"type":      training.Type,
		"details":   training.Details,
		"updatedAt": now,
	}
	update := bson.M{"$set": set}
	if training.ImageKey != "" {
		set["imageKey"] = training.ImageKey
	} else {
		update["$unset"] = bson.M{"imageKey": ""}
	}

	filter := bson.M{"_id": training.ID, "deletedAt": notDeleted()}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update training: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	training.UpdatedAt = now
	return nil
}

// MarkDeleted soft-deletes one training. Repeating the call is harmless.
func (r *mongoTrainingRepository) MarkDeleted(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, markDeletedPipeline())
	if err != nil {
		return fmt.Errorf("mark training deleted: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkDeletedByUser soft-deletes every training referencing userID and returns how many matched.
func (r *mongoTrainingRepository) MarkDeletedByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx, bson.M{"userId": userID}, markDeletedPipeline())
	if err != nil {
		return 0, fmt.Errorf("mark user trainings deleted: %w", err)
	}
	return result.MatchedCount, nil
}

// ListDeleted returns up to limit soft-deleted trainings, oldest deletion first.
func (r *mongoTrainingRepository) ListDeleted(ctx context.Context, limit int64) ([]domain.Training, error) {
	filter := bson.M{"deletedAt": bson.M{"$exists": true}}
	findOptions := options.Find().SetSort(bson.D{{Key: "deletedAt", Value: 1}}).SetLimit(limit)
	return r.find(ctx, filter, findOptions)
}

// CountByUser counts the trainings referencing userID.
func (r *mongoTrainingRepository) CountByUser(ctx context.Context, userID primitive.ObjectID, includeDeleted bool) (int64, error) {
	filter := bson.M{"userId": userID}
	if !includeDeleted {
		filter["deletedAt"] = notDeleted()
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count trainings: %w", err)
	}
	return n, nil
}

// Purge permanently removes a training document.
func (r *mongoTrainingRepository) Purge(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("purge training: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTrainingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Training, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find trainings: %w", err)
	}
	defer cursor.Close(ctx)

	trainings := []domain.Training{}
	if err = cursor.All(ctx, &trainings); err != nil {
		return nil, fmt.Errorf("decode trainings: %w", err)
	}
	return trainings, nil
}

// markDeletedPipeline keeps the first deletion time when a document is marked twice.
func markDeletedPipeline() bson.A {
	return bson.A{
		bson.M{"$set": bson.M{"deletedAt": bson.M{"$ifNull": bson.A{"$deletedAt", "$$NOW"}}}},
	}
}

// EnsureTrainingIndexes creates necessary indexes. Call during startup.
func EnsureTrainingIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Dashboard: own trainings, newest first
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Stats and admin listing
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
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
