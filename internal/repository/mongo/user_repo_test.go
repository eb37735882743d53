package mongo

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns id and timestamps", func(mt *mtest.T) {
		repo := &mongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &domain.User{FullName: "Dana", Team: domain.TeamNorth}
		id, err := repo.Create(context.Background(), user)
		require.NoError(mt, err)
		assert.False(mt, id.IsZero())
		assert.Equal(mt, id, user.ID)
		assert.False(mt, user.CreatedAt.IsZero())
	})

	mt.Run("create rejects empty name", func(mt *mtest.T) {
		repo := &mongoUserRepository{collection: mt.Coll}
		_, err := repo.Create(context.Background(), &domain.User{Team: domain.TeamNorth})
		assert.ErrorIs(mt, err, repository.ErrInvalidInput)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := &mongoUserRepository{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "fullName", Value: "Dana"},
			{Key: "team", Value: "north"},
		}))

		user, err := repo.GetByID(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, "Dana", user.FullName)
		assert.Equal(mt, domain.TeamNorth, user.Team)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := &mongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("find first by full name not found", func(mt *mtest.T) {
		repo := &mongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := repo.FindFirstByFullName(context.Background(), "nobody")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := &mongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "fullName", Value: "A"}, {Key: "team", Value: "south"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "fullName", Value: "B"}, {Key: "team", Value: "hq"}},
		))

		users, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "A", users[0].FullName)
	})

	mt.Run("update missing user", func(mt *mtest.T) {
		repo := &mongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.Update(context.Background(), &domain.User{ID: primitive.NewObjectID(), FullName: "X", Team: domain.TeamHQ})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("update sets updatedAt", func(mt *mtest.T) {
		repo := &mongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		user := &domain.User{ID: primitive.NewObjectID(), FullName: "X", Team: domain.TeamHQ}
		require.NoError(mt, repo.Update(context.Background(), user))
		assert.WithinDuration(mt, time.Now().UTC(), user.UpdatedAt, time.Minute)
	})

	mt.Run("mark deleted is idempotent", func(mt *mtest.T) {
		repo := &mongoUserRepository{collection: mt.Coll}
		// Second call matches the already-deleted document but modifies nothing.
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}),
		)

		id := primitive.NewObjectID()
		require.NoError(mt, repo.MarkDeleted(context.Background(), id))
		require.NoError(mt, repo.MarkDeleted(context.Background(), id))
	})

	mt.Run("purge missing user", func(mt *mtest.T) {
		repo := &mongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Purge(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("driver errors are wrapped", func(mt *mtest.T) {
		repo := &mongoUserRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11600, Message: "interrupted"}))

		_, err := repo.List(context.Background())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, repository.ErrNotFound)
		assert.Contains(mt, err.Error(), "find users")
	})
}
