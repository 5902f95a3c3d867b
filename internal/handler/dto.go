package handler

import (
	"time"

	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/service"
)

type UserResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	Points    int64   `json:"points"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		Points:    u.Points,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

func toSessionResponse(s *service.Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserResponse(s.User),
	}
}

type RewardResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	ImageURL       *string `json:"imageUrl,omitempty"`
	PointsRequired int64   `json:"pointsRequired"`
	Stock          int64   `json:"stock"`
	IsActive       bool    `json:"isActive"`
}

func toRewardResponse(r *model.Reward) RewardResponse {
	return RewardResponse{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		ImageURL:       r.ImageURL,
		PointsRequired: r.PointsRequired,
		Stock:          r.Stock,
		IsActive:       r.IsActive,
	}
}

type RewardSummaryResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ImageURL       *string `json:"imageUrl,omitempty"`
	PointsRequired int64   `json:"pointsRequired"`
}

func toRewardSummary(s *service.RewardSummary) *RewardSummaryResponse {
	if s == nil {
		return nil
	}
	return &RewardSummaryResponse{ID: s.ID, Name: s.Name, ImageURL: s.ImageURL, PointsRequired: s.PointsRequired}
}

type ClaimResponse struct {
	ID          string                 `json:"id"`
	RewardID    string                 `json:"rewardId"`
	PointsSpent int64                  `json:"pointsSpent"`
	ClaimedAt   string                 `json:"claimedAt"`
	Reward      *RewardSummaryResponse `json:"reward,omitempty"`
}

func toClaimResponse(c model.Claim, r *service.RewardSummary) ClaimResponse {
	return ClaimResponse{
		ID:          c.ID,
		RewardID:    c.RewardID,
		PointsSpent: c.PointsSpent,
		ClaimedAt:   c.ClaimedAt.UTC().Format(time.RFC3339),
		Reward:      toRewardSummary(r),
	}
}

type ActivityResponse struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	Description  string  `json:"description"`
	PointsDelta  int64   `json:"pointsDelta"`
	TournamentID *string `json:"tournamentId,omitempty"`
	RewardID     *string `json:"rewardId,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

func toActivityResponse(a model.Activity) ActivityResponse {
	return ActivityResponse{
		ID:           a.ID,
		Kind:         string(a.Kind),
		Description:  a.Description,
		PointsDelta:  a.PointsDelta,
		TournamentID: a.TournamentID,
		RewardID:     a.RewardID,
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type TournamentResponse struct {
	ID              string `json:"id"`
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Game            string `json:"game"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	StartsAt        string `json:"startsAt"`
	EndsAt          string `json:"endsAt"`
	MaxParticipants int64  `json:"maxParticipants"`
	Participants    int64  `json:"participants"`
	PrizePool       int64  `json:"prizePool"`
}

func toTournamentResponse(t *model.Tournament) TournamentResponse {
	return TournamentResponse{
		ID:              t.ID,
		Slug:            t.Slug,
		Title:           t.Title,
		Game:            t.Game,
		Description:     t.Description,
		Status:          string(t.Status),
		StartsAt:        t.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:          t.EndsAt.UTC().Format(time.RFC3339),
		MaxParticipants: t.MaxParticipants,
		Participants:    t.Participants,
		PrizePool:       t.PrizePool,
	}
}

func toTournamentList(list []model.Tournament) []TournamentResponse {
	out := make([]TournamentResponse, 0, len(list))
	for i := range list {
		out = append(out, toTournamentResponse(&list[i]))
	}
	return out
}
