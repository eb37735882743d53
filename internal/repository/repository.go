package repository

import (
	"alcyxob/team-training/internal/domain" // Import our defined domain models
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
	ErrInvalidInput = RepositoryError("invalid input")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
// Read methods never return soft-deleted users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// FindFirstByFullName returns the earliest-created user with exactly this name.
	FindFirstByFullName(ctx context.Context, fullName string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error

	// Soft delete and purge, used by the cascade delete and the reconciler.
	MarkDeleted(ctx context.Context, id primitive.ObjectID) error
	ListDeleted(ctx context.Context, limit int64) ([]domain.User, error)
	Purge(ctx context.Context, id primitive.ObjectID) error
}

// TrainingRepository defines the interface for interacting with training data.
// Read methods never return soft-deleted trainings.
type TrainingRepository interface {
	Create(ctx context.Context, training *domain.Training) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Training, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Training, error) // Newest first
	ListAll(ctx context.Context) ([]domain.Training, error)                                // Newest first
	Update(ctx context.Context, training *domain.Training) error

	MarkDeleted(ctx context.Context, id primitive.ObjectID) error
	MarkDeletedByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	ListDeleted(ctx context.Context, limit int64) ([]domain.Training, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID, includeDeleted bool) (int64, error)
	Purge(ctx context.Context, id primitive.ObjectID) error
}

// BlobTombstoneRepository tracks blob store objects waiting to be removed.
type BlobTombstoneRepository interface {
	Add(ctx context.Context, objectKey, reason string) error
	List(ctx context.Context, limit int64) ([]domain.BlobTombstone, error)
	Remove(ctx context.Context, id primitive.ObjectID) error
}
