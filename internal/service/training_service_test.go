package service

import (
	"alcyxob/team-training/internal/domain"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type trainingFixture struct {
	users      *fakeUserRepo
	trainings  *fakeTrainingRepo
	tombstones *fakeTombstoneRepo
	files      *fakeStorage
	cache      *fakeCache
	kicker     *countingKicker
	svc        TrainingService
}

func newTrainingFixture(maxBytes int64) *trainingFixture {
	f := &trainingFixture{
		users:      newFakeUserRepo(),
		trainings:  newFakeTrainingRepo(),
		tombstones: &fakeTombstoneRepo{},
		files:      newFakeStorage(),
		cache:      &fakeCache{},
		kicker:     &countingKicker{},
	}
	f.svc = NewTrainingService(f.users, f.trainings, f.tombstones, f.files, f.cache, f.kicker,
		TrainingServiceConfig{MaxImageBytes: maxBytes}, zerolog.Nop())
	return f
}

func pngUpload() *ImageUpload {
	return &ImageUpload{Filename: "shot.png", Body: bytes.NewReader(pngBytes)}
}

func TestCreateWithoutImage(t *testing.T) {
	f := newTrainingFixture(0)
	dana := f.users.add("Dana", domain.TeamNorth)

	tr, err := f.svc.Create(context.Background(), dana.ID, TrainingInput{Type: domain.TrainingRun, Details: "5k"})
	require.NoError(t, err)

	assert.Equal(t, dana.ID, tr.UserID)
	assert.Empty(t, tr.ImageKey)
	assert.Empty(t, tr.ImageURL)
	assert.False(t, tr.CreatedAt.IsZero())
	assert.Equal(t, 1, f.cache.invalidated)
}

func TestCreateWithImageRoundTrip(t *testing.T) {
	f := newTrainingFixture(0)
	dana := f.users.add("Dana", domain.TeamNorth)
	ctx := context.Background()

	tr, err := f.svc.Create(ctx, dana.ID, TrainingInput{Type: domain.TrainingStrength, Details: "squats", Image: pngUpload()})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(tr.ImageKey, "trainings/"+dana.ID.Hex()+"/"), tr.ImageKey)
	assert.True(t, strings.HasSuffix(tr.ImageKey, ".png"), tr.ImageKey)
	assert.True(t, f.files.has(tr.ImageKey))
	assert.Equal(t, "image/png", f.files.types[tr.ImageKey])

	mine, err := f.svc.ListMine(ctx, dana.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Contains(t, mine[0].ImageURL, tr.ImageKey)
}

func TestCreateRejectsNonImage(t *testing.T) {
	f := newTrainingFixture(0)
	dana := f.users.add("Dana", domain.TeamNorth)

	_, err := f.svc.Create(context.Background(), dana.ID, TrainingInput{
		Type: domain.TrainingRun, Details: "5k",
		Image: &ImageUpload{Filename: "notes.png", Body: strings.NewReader("just some text, not an image")},
	})
	assert.ErrorIs(t, err, ErrImageType)
	assert.Zero(t, f.trainings.count())
	assert.Empty(t, f.files.objects)
}

func TestCreateRejectsLargeImage(t *testing.T) {
	f := newTrainingFixture(int64(len(pngBytes) - 1))
	dana := f.users.add("Dana", domain.TeamNorth)

	_, err := f.svc.Create(context.Background(), dana.ID, TrainingInput{Type: domain.TrainingRun, Details: "5k", Image: pngUpload()})
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Zero(t, f.trainings.count())
}

func TestCreateValidation(t *testing.T) {
	f := newTrainingFixture(0)
	dana := f.users.add("Dana", domain.TeamNorth)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, dana.ID, TrainingInput{Type: "yoga", Details: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(ctx, dana.ID, TrainingInput{Type: domain.TrainingRun, Details: "  "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateForMissingUser(t *testing.T) {
	f := newTrainingFixture(0)

	_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), TrainingInput{Type: domain.TrainingRun, Details: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUploadFailureWritesNoDocument(t *testing.T) {
	f := newTrainingFixture(0)
	dana := f.users.add("Dana", domain.TeamNorth)
	f.files.failUpload = errStoreDown

	_, err := f.svc.Create(context.Background(), dana.ID, TrainingInput{Type: domain.TrainingRun, Details: "x", Image: pngUpload()})
	assert.ErrorIs(t, err, errStoreDown)
	assert.Zero(t, f.trainings.count())
}

func TestCreateInsertFailureTombstonesBlob(t *testing.T) {
	f := newTrainingFixture(0)
	dana := f.users.add("Dana", domain.TeamNorth)
	f.trainings.failCreate = errStoreDown

	_, err := f.svc.Create(context.Background(), dana.ID, TrainingInput{Type: domain.TrainingRun, Details: "x", Image: pngUpload()})
	assert.ErrorIs(t, err, errStoreDown)

	keys := f.tombstones.keys()
	require.Len(t, keys, 1)
	assert.True(t, f.files.has(keys[0]), "blob stays until the reconciler removes it")
}

func TestListMineNewestFirstAndOwnOnly(t *testing.T) {
	f := newTrainingFixture(0)
	dana := f.users.add("Dana", domain.TeamNorth)
	omer := f.users.add("Omer", domain.TeamSouth)
	first := f.trainings.add(dana.ID, domain.TrainingRun, "")
	f.trainings.add(omer.ID, domain.TrainingRun, "")
	second := f.trainings.add(dana.ID, domain.TrainingStrength, "")

	mine, err := f.svc.ListMine(context.Background(), dana.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
}

func TestUpdateReplacesImage(t *testing.T) {
	f := newTrainingFixture(0)
	dana := f.users.add("Dana", domain.TeamNorth)
	f.files.put("trainings/old.png")
	tr := f.trainings.add(dana.ID, domain.TrainingRun, "trainings/old.png")

	updated, err := f.svc.Update(context.Background(), tr.ID, TrainingInput{Type: domain.TrainingStrength, Details: "new", Image: pngUpload()})
	require.NoError(t, err)

	assert.Equal(t, domain.TrainingStrength, updated.Type)
	assert.NotEqual(t, "trainings/old.png", updated.ImageKey)
	assert.True(t, f.files.has(updated.ImageKey))
	assert.Equal(t, []string{"trainings/old.png"}, f.tombstones.keys())
	assert.Equal(t, dana.ID, updated.UserID)

	stored, _ := f.trainings.raw(tr.ID)
	assert.Equal(t, updated.ImageKey, stored.ImageKey)
	assert.Equal(t, "new", stored.Details)
}

func TestUpdateKeepsImageWhenNoneGiven(t *testing.T) {
	f := newTrainingFixture(0)
	dana := f.users.add("Dana", domain.TeamNorth)
	tr := f.trainings.add(dana.ID, domain.TrainingRun, "trainings/keep.png")

	updated, err := f.svc.Update(context.Background(), tr.ID, TrainingInput{Type: domain.TrainingRun, Details: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "trainings/keep.png", updated.ImageKey)
	assert.Empty(t, f.tombstones.keys())
}

func TestUpdateMissing(t *testing.T) {
	f := newTrainingFixture(0)
	_, err := f.svc.Update(context.Background(), primitive.NewObjectID(), TrainingInput{Type: domain.TrainingRun, Details: "x"})
	assert.ErrorIs(t, err, ErrTrainingNotFound)
}

func TestDeleteByOwnerAndStranger(t *testing.T) {
	f := newTrainingFixture(0)
	dana := f.users.add("Dana", domain.TeamNorth)
	omer := f.users.add("Omer", domain.TeamSouth)
	tr := f.trainings.add(dana.ID, domain.TrainingRun, "")
	ctx := context.Background()

	err := f.svc.Delete(ctx, &domain.Session{UserID: omer.ID, Role: domain.RoleMember}, tr.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, &domain.Session{UserID: dana.ID, Role: domain.RoleMember}, tr.ID))

	mine, err := f.svc.ListMine(ctx, dana.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
	assert.Equal(t, 1, f.kicker.count())

	err = f.svc.Delete(ctx, &domain.Session{UserID: dana.ID, Role: domain.RoleMember}, tr.ID)
	assert.ErrorIs(t, err, ErrTrainingNotFound)
}

func TestDeleteByAdmin(t *testing.T) {
	f := newTrainingFixture(0)
	dana := f.users.add("Dana", domain.TeamNorth)
	tr := f.trainings.add(dana.ID, domain.TrainingRun, "")

	require.NoError(t, f.svc.Delete(context.Background(), &domain.Session{Role: domain.RoleAdmin}, tr.ID))
	stored, ok := f.trainings.raw(tr.ID)
	require.True(t, ok, "document stays until the reconciler purges it")
	assert.NotNil(t, stored.DeletedAt)
}
