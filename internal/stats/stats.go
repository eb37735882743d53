// Package stats turns a snapshot of trainings and users into chart-ready counts.
//
// The two snapshots are fetched independently and may disagree: a training can
// point at a user missing from the user list. Such trainings are counted per
// user (with Known=false) and per type, but never per team.
package stats

import (
	"alcyxob/team-training/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecentLimit is how many trainings Summary.Recent carries.
const RecentLimit = 10

// UserCount is the number of trainings logged under one user id.
type UserCount struct {
	UserID   primitive.ObjectID `json:"userId"`
	FullName string             `json:"fullName,omitempty"`
	Team     domain.Team        `json:"team,omitempty"`
	Known    bool               `json:"known"`
	Count    int                `json:"count"`
}

type TypeCount struct {
	Type  domain.TrainingType `json:"type"`
	Count int                 `json:"count"`
}

type TeamCount struct {
	Team  domain.Team `json:"team"`
	Count int         `json:"count"`
}

// Summary is the result of Compute. Slices keep first-appearance order so
// chart labels come out stable for the same input.
type Summary struct {
	Total   int               `json:"total"`
	PerUser []UserCount       `json:"perUser"`
	PerType []TypeCount       `json:"perType"`
	PerTeam []TeamCount       `json:"perTeam"`
	Recent  []domain.Training `json:"recent"`
}

// Compute folds trainings (newest first, as the store returns them) against users.
func Compute(trainings []domain.Training, users []domain.User) Summary {
	byID := make(map[primitive.ObjectID]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	s := Summary{
		Total:   len(trainings),
		PerUser: []UserCount{},
		PerType: []TypeCount{},
		PerTeam: []TeamCount{},
	}

	userIdx := make(map[primitive.ObjectID]int)
	typeIdx := make(map[domain.TrainingType]int)
	for _, t := range trainings {
		i, ok := userIdx[t.UserID]
		if !ok {
			uc := UserCount{UserID: t.UserID}
			if u, found := byID[t.UserID]; found {
				uc.FullName = u.FullName
				uc.Team = u.Team
				uc.Known = true
			}
			i = len(s.PerUser)
			userIdx[t.UserID] = i
			s.PerUser = append(s.PerUser, uc)
		}
		s.PerUser[i].Count++

		j, ok := typeIdx[t.Type]
		if !ok {
			j = len(s.PerType)
			typeIdx[t.Type] = j
			s.PerType = append(s.PerType, TypeCount{Type: t.Type})
		}
		s.PerType[j].Count++
	}

	// Teams are driven by the user list, so a team with members but no
	// trainings still gets a zero bucket.
	teamIdx := make(map[domain.Team]int)
	for _, u := range users {
		k, ok := teamIdx[u.Team]
		if !ok {
			k = len(s.PerTeam)
			teamIdx[u.Team] = k
			s.PerTeam = append(s.PerTeam, TeamCount{Team: u.Team})
		}
		if i, ok := userIdx[u.ID]; ok {
			s.PerTeam[k].Count += s.PerUser[i].Count
		}
	}

	n := len(trainings)
	if n > RecentLimit {
		n = RecentLimit
	}
	s.Recent = append([]domain.Training{}, trainings[:n]...)

	return s
}

// UnknownCount is the number of trainings whose user is not in the snapshot.
func (s Summary) UnknownCount() int {
	total := 0
	for _, uc := range s.PerUser {
		if !uc.Known {
			total += uc.Count
		}
	}
	return total
}
