package api

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/i18n"
	"alcyxob/team-training/internal/service"
	"time"
)

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string      `json:"id"`
	FullName  string      `json:"fullName"`
	Team      domain.Team `json:"team"`
	TeamLabel string      `json:"teamLabel"`
	CreatedAt time.Time   `json:"createdAt"`
}

// TrainingResponse is the public view of a training. ImageURL is empty when
// there is no image.
type TrainingResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	OwnerName string              `json:"ownerName,omitempty"`
	Type      domain.TrainingType `json:"type"`
	TypeLabel string              `json:"typeLabel"`
	Details   string              `json:"details"`
	ImageURL  string              `json:"imageUrl"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user,omitempty"`
}

type SessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	UserID        string      `json:"userId,omitempty"`
	Role          domain.Role `json:"role,omitempty"`
	Landing       string      `json:"landing"`
}

type DashboardResponse struct {
	User      UserResponse       `json:"user"`
	Trainings []TrainingResponse `json:"trainings"`
	Empty     string             `json:"emptyMessage,omitempty"`
}

type OptionResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type MetaResponse struct {
	Lang          i18n.Lang        `json:"lang"`
	Teams         []OptionResponse `json:"teams"`
	TrainingTypes []OptionResponse `json:"trainingTypes"`
}

// --- Mappers ---

func MapUserToResponse(u *domain.User, lang i18n.Lang) UserResponse {
	return UserResponse{
		ID:        u.ID.Hex(),
		FullName:  u.FullName,
		Team:      u.Team,
		TeamLabel: i18n.TeamLabel(lang, u.Team),
		CreatedAt: u.CreatedAt,
	}
}

func MapUsersToResponse(users []domain.User, lang i18n.Lang) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, MapUserToResponse(&users[i], lang))
	}
	return out
}

func MapTrainingToResponse(t *domain.Training, lang i18n.Lang) TrainingResponse {
	return TrainingResponse{
		ID:        t.ID.Hex(),
		UserID:    t.UserID.Hex(),
		Type:      t.Type,
		TypeLabel: i18n.TrainingTypeLabel(lang, t.Type),
		Details:   t.Details,
		ImageURL:  t.ImageURL,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func MapTrainingsToResponse(trainings []domain.Training, lang i18n.Lang) []TrainingResponse {
	out := make([]TrainingResponse, 0, len(trainings))
	for i := range trainings {
		out = append(out, MapTrainingToResponse(&trainings[i], lang))
	}
	return out
}

// MapAdminTrainingsToResponse fills OwnerName, using the unknown-user label
// for trainings whose user is gone.
func MapAdminTrainingsToResponse(trainings []service.AdminTraining, lang i18n.Lang) []TrainingResponse {
	out := make([]TrainingResponse, 0, len(trainings))
	for i := range trainings {
		r := MapTrainingToResponse(&trainings[i].Training, lang)
		r.OwnerName = trainings[i].OwnerName
		if !trainings[i].OwnerKnown {
			r.OwnerName = i18n.UnknownUser(lang)
		}
		out = append(out, r)
	}
	return out
}
