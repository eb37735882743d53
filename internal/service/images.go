package service

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/storage"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultMaxImageBytes applies when no upload limit is configured.
const DefaultMaxImageBytes = 10 << 20

// ImageUpload is an image attached to a create or edit request.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

// preparedImage is an upload that passed the type and size checks.
type preparedImage struct {
	key         string
	contentType string
	data        []byte
}

// imageStore wraps FileStorage with the checks, key layout and presigning
// shared by the training, admin, stats and profile services.
type imageStore struct {
	files         storage.FileStorage
	presignExpiry time.Duration
	maxBytes      int64
	log           zerolog.Logger
	now           func() time.Time
}

func newImageStore(files storage.FileStorage, presignExpiry time.Duration, maxBytes int64, log zerolog.Logger) *imageStore {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &imageStore{
		files:         files,
		presignExpiry: presignExpiry,
		maxBytes:      maxBytes,
		log:           log,
		now:           time.Now,
	}
}

// prepare reads and sniffs the upload. The declared content type is ignored.
func (s *imageStore) prepare(owner primitive.ObjectID, img *ImageUpload) (*preparedImage, error) {
	data, err := io.ReadAll(io.LimitReader(img.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, ErrImageType
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, ErrImageType
	}

	return &preparedImage{
		key:         objectKey(owner, s.now(), mt.Extension()),
		contentType: mt.String(),
		data:        data,
	}, nil
}

func (s *imageStore) upload(ctx context.Context, img *preparedImage) error {
	return s.files.Upload(ctx, img.key, img.contentType, bytes.NewReader(img.data), int64(len(img.data)))
}

// link fills ImageURL for every training that has an image. A presign
// failure leaves the URL empty rather than failing the read.
func (s *imageStore) link(ctx context.Context, trainings []domain.Training) {
	for i := range trainings {
		s.linkOne(ctx, &trainings[i])
	}
}

func (s *imageStore) linkOne(ctx context.Context, t *domain.Training) {
	t.ImageURL = ""
	if !t.HasImage() {
		return
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, t.ImageKey, s.presignExpiry)
	if err != nil {
		s.log.Warn().Err(err).Str("training_id", t.ID.Hex()).Msg("presign image url")
		return
	}
	t.ImageURL = url
}

// objectKey lays blobs out as trainings/<userId>/<unixMillis>_<uuid><ext>.
func objectKey(owner primitive.ObjectID, at time.Time, ext string) string {
	return path.Join("trainings", owner.Hex(), fmt.Sprintf("%d_%s%s", at.UnixMilli(), uuid.NewString(), ext))
}
