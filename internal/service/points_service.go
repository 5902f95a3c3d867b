package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
)

type PointsService interface {
	Balance(ctx context.Context, userID string) (int64, error)
	// Award credits amount to the user and returns the new balance.
	Award(ctx context.Context, userID string, amount int64, reason string) (int64, error)
}

type pointsService struct {
	users       repository.UserRepository
	activity    ActivityLog
	maxAttempts int
}

func NewPointsService(users repository.UserRepository, activity ActivityLog, maxAttempts int) PointsService {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &pointsService{users: users, activity: activity, maxAttempts: maxAttempts}
}

func (s *pointsService) Balance(ctx context.Context, userID string) (int64, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, notFoundAs(err, ErrUserNotFound)
	}
	return u.Points, nil
}

func (s *pointsService) Award(ctx context.Context, userID string, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive: %w", ErrValidation)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Points awarded"
	}

	var balance int64
	err := retryStale(ctx, "award", s.maxAttempts, func(int) error {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		next := u.Points + amount
		if err := s.users.CompareAndSetPoints(ctx, u.ID, u.Points, next); err != nil {
			return err
		}
		balance = next
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.activity.Record(ctx, &model.Activity{
		UserID:      userID,
		Kind:        model.ActivityPointsEarned,
		Description: reason,
		PointsDelta: amount,
	})
	return balance, nil
}
