package api

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/service"
	"alcyxob/team-training/internal/stats"
	"context"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tokens understood by stubAuth.ParseToken: "admin", or "member:<hex id>".
const adminToken = "admin"

func memberToken(id primitive.ObjectID) string { return "member:" + id.Hex() }

type stubAuth struct {
	signUp     func(ctx context.Context, name string, team domain.Team) (string, *domain.User, error)
	login      func(ctx context.Context, name string) (string, *domain.User, error)
	adminLogin func(ctx context.Context, password string) (string, error)
	parseErr   error
	loggedOut  []*domain.Session
}

func (s *stubAuth) SignUp(ctx context.Context, name string, team domain.Team) (string, *domain.User, error) {
	return s.signUp(ctx, name, team)
}

func (s *stubAuth) Login(ctx context.Context, name string) (string, *domain.User, error) {
	return s.login(ctx, name)
}

func (s *stubAuth) Logout(_ context.Context, session *domain.Session) error {
	s.loggedOut = append(s.loggedOut, session)
	return nil
}

func (s *stubAuth) AdminLogin(ctx context.Context, password string) (string, error) {
	return s.adminLogin(ctx, password)
}

func (s *stubAuth) AdminEnabled() bool { return true }

func (s *stubAuth) ParseToken(_ context.Context, token string) (*domain.Session, error) {
	if s.parseErr != nil {
		return nil, s.parseErr
	}
	if token == adminToken {
		return &domain.Session{Role: domain.RoleAdmin, TokenID: "a"}, nil
	}
	if hex, ok := strings.CutPrefix(token, "member:"); ok {
		id, err := primitive.ObjectIDFromHex(hex)
		if err == nil {
			return &domain.Session{UserID: id, Role: domain.RoleMember, TokenID: "m"}, nil
		}
	}
	return nil, service.ErrInvalidToken
}

type createCall struct {
	userID primitive.ObjectID
	in     service.TrainingInput
	image  []byte
}

type stubTrainings struct {
	created []createCall
	updated []createCall
	deleted []primitive.ObjectID
	list    []domain.Training
	err     error
}

func (s *stubTrainings) record(userID primitive.ObjectID, in service.TrainingInput) createCall {
	call := createCall{userID: userID, in: in}
	if in.Image != nil {
		call.image, _ = io.ReadAll(in.Image.Body)
	}
	return call
}

func (s *stubTrainings) Create(_ context.Context, userID primitive.ObjectID, in service.TrainingInput) (*domain.Training, error) {
	s.created = append(s.created, s.record(userID, in))
	if s.err != nil {
		return nil, s.err
	}
	t := &domain.Training{ID: primitive.NewObjectID(), UserID: userID, Type: in.Type, Details: in.Details}
	if in.Image != nil {
		t.ImageURL = "https://blobs.test/x.png"
	}
	return t, nil
}

func (s *stubTrainings) ListMine(context.Context, primitive.ObjectID) ([]domain.Training, error) {
	return s.list, s.err
}

func (s *stubTrainings) Update(_ context.Context, id primitive.ObjectID, in service.TrainingInput) (*domain.Training, error) {
	s.updated = append(s.updated, s.record(id, in))
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Training{ID: id, Type: in.Type, Details: in.Details}, nil
}

func (s *stubTrainings) Delete(_ context.Context, session *domain.Session, id primitive.ObjectID) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubAdmin struct {
	users      []domain.User
	trainings  []service.AdminTraining
	deletedN   int64
	err        error
	deletedIDs []primitive.ObjectID
}

func (s *stubAdmin) ListUsers(context.Context) ([]domain.User, error) { return s.users, s.err }

func (s *stubAdmin) UpdateUser(_ context.Context, id primitive.ObjectID, name string, team domain.Team) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id, FullName: name, Team: team}, nil
}

func (s *stubAdmin) DeleteUser(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.deletedIDs = append(s.deletedIDs, id)
	return s.deletedN, s.err
}

func (s *stubAdmin) ListTrainings(context.Context) ([]service.AdminTraining, error) {
	return s.trainings, s.err
}

type stubStats struct {
	summary *stats.Summary
	err      error
}

func (s *stubStats) Snapshot(context.Context) (*stats.Summary, error) { return s.summary, s.err }

type stubProfile struct {
	user      *domain.User
	trainings []domain.Training
	err       error
}

func (s *stubProfile) GetProfile(_ context.Context, session *domain.Session) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubProfile) GetDashboard(ctx context.Context, session *domain.Session) (*service.Dashboard, error) {
	u, err := s.GetProfile(ctx, session)
	if err != nil {
		return nil, err
	}
	return &service.Dashboard{User: u, Trainings: s.trainings}, nil
}
