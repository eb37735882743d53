package service

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/repository"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStoreDown = errors.New("store unavailable")

// --- users ---

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]*domain.User
	seq     int
	failAll error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *fakeUserRepo) add(name string, team domain.Team) *domain.User {
	u := &domain.User{FullName: name, Team: team}
	if _, err := r.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return primitive.NilObjectID, r.failAll
	}
	r.seq++
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Date(2024, 1, 1, 0, 0, r.seq, 0, time.UTC)
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return u.ID, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	u, ok := r.users[id]
	if !ok || u.IsDeleted() {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindFirstByFullName(_ context.Context, name string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	var best *domain.User
	for _, u := range r.users {
		if u.FullName != name || u.IsDeleted() {
			continue
		}
		if best == nil || u.CreatedAt.Before(best.CreatedAt) {
			best = u
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *fakeUserRepo) list(deleted bool) []domain.User {
	out := []domain.User{}
	for _, u := range r.users {
		if u.IsDeleted() == deleted {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakeUserRepo) List(context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	return r.list(false), nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[u.ID]
	if !ok || cur.IsDeleted() {
		return repository.ErrNotFound
	}
	cur.FullName, cur.Team = u.FullName, u.Team
	return nil
}

func (r *fakeUserRepo) MarkDeleted(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.DeletedAt == nil {
		now := time.Now()
		u.DeletedAt = &now
	}
	return nil
}

func (r *fakeUserRepo) ListDeleted(_ context.Context, limit int64) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.list(true)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) Purge(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) exists(id primitive.ObjectID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok
}

// --- trainings ---

type fakeTrainingRepo struct {
	mu         sync.Mutex
	trainings  map[primitive.ObjectID]*domain.Training
	seq        int
	failCreate error
	failList   error
	failMark   error
}

func newFakeTrainingRepo() *fakeTrainingRepo {
	return &fakeTrainingRepo{trainings: map[primitive.ObjectID]*domain.Training{}}
}

func (r *fakeTrainingRepo) add(userID primitive.ObjectID, tt domain.TrainingType, imageKey string) *domain.Training {
	t := &domain.Training{UserID: userID, Type: tt, Details: "d", ImageKey: imageKey}
	if _, err := r.Create(context.Background(), t); err != nil {
		panic(err)
	}
	return t
}

func (r *fakeTrainingRepo) Create(_ context.Context, t *domain.Training) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return primitive.NilObjectID, r.failCreate
	}
	r.seq++
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Date(2024, 1, 1, 0, 0, r.seq, 0, time.UTC)
	cp := *t
	r.trainings[t.ID] = &cp
	return t.ID, nil
}

func (r *fakeTrainingRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Training, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trainings[id]
	if !ok || t.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTrainingRepo) filter(keep func(*domain.Training) bool) []domain.Training {
	out := []domain.Training{}
	for _, t := range r.trainings {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeTrainingRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Training, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList != nil {
		return nil, r.failList
	}
	return r.filter(func(t *domain.Training) bool { return t.UserID == userID && t.DeletedAt == nil }), nil
}

func (r *fakeTrainingRepo) ListAll(context.Context) ([]domain.Training, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList != nil {
		return nil, r.failList
	}
	return r.filter(func(t *domain.Training) bool { return t.DeletedAt == nil }), nil
}

func (r *fakeTrainingRepo) Update(_ context.Context, t *domain.Training) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.trainings[t.ID]
	if !ok || cur.DeletedAt != nil {
		return repository.ErrNotFound
	}
	cur.Type, cur.Details, cur.ImageKey = t.Type, t.Details, t.ImageKey
	return nil
}

func (r *fakeTrainingRepo) MarkDeleted(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trainings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if t.DeletedAt == nil {
		now := time.Now()
		t.DeletedAt = &now
	}
	return nil
}

func (r *fakeTrainingRepo) MarkDeletedByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMark != nil {
		return 0, r.failMark
	}
	var n int64
	now := time.Now()
	for _, t := range r.trainings {
		if t.UserID != userID {
			continue
		}
		n++
		if t.DeletedAt == nil {
			t.DeletedAt = &now
		}
	}
	return n, nil
}

func (r *fakeTrainingRepo) ListDeleted(_ context.Context, limit int64) ([]domain.Training, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.filter(func(t *domain.Training) bool { return t.DeletedAt != nil })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTrainingRepo) CountByUser(_ context.Context, userID primitive.ObjectID, includeDeleted bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.trainings {
		if t.UserID == userID && (includeDeleted || t.DeletedAt == nil) {
			n++
		}
	}
	return n, nil
}

func (r *fakeTrainingRepo) Purge(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trainings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.trainings, id)
	return nil
}

func (r *fakeTrainingRepo) raw(id primitive.ObjectID) (domain.Training, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trainings[id]
	if !ok {
		return domain.Training{}, false
	}
	return *t, true
}

func (r *fakeTrainingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trainings)
}

// --- tombstones ---

type fakeTombstoneRepo struct {
	mu    sync.Mutex
	items []domain.BlobTombstone
}

func (r *fakeTombstoneRepo) Add(_ context.Context, key, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, domain.BlobTombstone{ID: primitive.NewObjectID(), ObjectKey: key, Reason: reason})
	return nil
}

func (r *fakeTombstoneRepo) List(_ context.Context, limit int64) ([]domain.BlobTombstone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.BlobTombstone{}, r.items...)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTombstoneRepo) Remove(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ts := range r.items {
		if ts.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeTombstoneRepo) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ts := range r.items {
		out = append(out, ts.ObjectKey)
	}
	return out
}

// --- blob storage ---

type fakeStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	types      map[string]string
	failUpload error
	failDelete error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStorage) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpload != nil {
		return s.failUpload
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return err
	}
	s.objects[key] = buf.Bytes()
	s.types[key] = contentType
	return nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://blobs.test/%s?sig=x", key), nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *fakeStorage) put(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = []byte("x")
}

// --- cache, denylist, kicker ---

type fakeCache struct {
	mu          sync.Mutex
	stored      []byte
	invalidated int
}

func (c *fakeCache) Load(_ context.Context, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stored == nil {
		return false, nil
	}
	return true, json.Unmarshal(c.stored, dst)
}

func (c *fakeCache) Store(_ context.Context, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(v)
	c.stored = raw
	return err
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = nil
	c.invalidated++
	return nil
}

type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	fail    error
}

func (d *fakeDenylist) Revoke(_ context.Context, id string, exp time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = map[string]time.Time{}
	}
	d.revoked[id] = exp
	return nil
}

func (d *fakeDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return false, d.fail
	}
	_, ok := d.revoked[id]
	return ok, nil
}

type countingKicker struct {
	mu    sync.Mutex
	kicks int
}

func (k *countingKicker) Kick() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kicks++
}

func (k *countingKicker) count() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.kicks
}

// pngBytes is the smallest valid PNG header mimetype recognises.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

