package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shinyyama/arena-backend/internal/logging"
	"github.com/shinyyama/arena-backend/internal/metrics"
	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
)

type RewardSummary struct {
	ID             string
	Name           string
	ImageURL       *string
	PointsRequired int64
}

func summarize(r *model.Reward) *RewardSummary {
	if r == nil {
		return nil
	}
	return &RewardSummary{ID: r.ID, Name: r.Name, ImageURL: r.ImageURL, PointsRequired: r.PointsRequired}
}

type ClaimResult struct {
	Claim           model.Claim
	Reward          *RewardSummary
	RemainingPoints int64
}

type ClaimWithReward struct {
	Claim  model.Claim
	Reward *RewardSummary
}

type ClaimService interface {
	// ClaimReward spends the reward's cost from the user's balance and takes
	// one unit of stock. Points, stock and the claim row change together or
	// not at all.
	ClaimReward(ctx context.Context, userID, rewardID string) (*ClaimResult, error)
	ListClaims(ctx context.Context, userID string, limit int) ([]ClaimWithReward, error)
}

type claimService struct {
	store       repository.Store
	activity    ActivityLog
	maxAttempts int
	now         func() time.Time
}

func NewClaimService(store repository.Store, activity ActivityLog, maxAttempts int) ClaimService {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &claimService{store: store, activity: activity, maxAttempts: maxAttempts, now: time.Now}
}

func (s *claimService) ClaimReward(ctx context.Context, userID, rewardID string) (*ClaimResult, error) {
	if userID == "" || rewardID == "" {
		return nil, fmt.Errorf("user and reward are required: %w", ErrValidation)
	}

	var res *ClaimResult
	var reward *model.Reward
	err := retryStale(ctx, "claim", s.maxAttempts, func(int) error {
		var err error
		res, reward, err = s.attempt(ctx, userID, rewardID)
		return err
	})
	metrics.ClaimsTotal.WithLabelValues(claimOutcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, &model.Activity{
		UserID:      userID,
		RewardID:    &reward.ID,
		Kind:        model.ActivityRewardClaim,
		Description: fmt.Sprintf("Claimed reward: %s", reward.Name),
		PointsDelta: -res.Claim.PointsSpent,
	})
	logging.FromContext(ctx).Info().
		Str("user_id", userID).
		Str("reward_id", rewardID).
		Int64("points_spent", res.Claim.PointsSpent).
		Int64("remaining_points", res.RemainingPoints).
		Msg("reward claimed")
	return res, nil
}

// attempt performs one read-validate-commit cycle. A concurrent writer
// surfaces as ErrStaleState and the whole cycle is rolled back.
func (s *claimService) attempt(ctx context.Context, userID, rewardID string) (*ClaimResult, *model.Reward, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, nil, notFoundAs(err, ErrUserNotFound)
	}
	reward, err := s.store.Rewards().GetByID(ctx, rewardID)
	if err != nil {
		return nil, nil, notFoundAs(err, ErrRewardNotFound)
	}
	if !reward.IsActive {
		return nil, nil, ErrRewardNotFound
	}
	if user.Points < reward.PointsRequired {
		return nil, nil, ErrInsufficientBalance
	}
	if reward.Stock <= 0 {
		return nil, nil, ErrOutOfStock
	}

	remaining := user.Points - reward.PointsRequired
	claim := model.Claim{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		RewardID:    reward.ID,
		PointsSpent: reward.PointsRequired,
		ClaimedAt:   s.now().UTC(),
	}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().CompareAndSetPoints(ctx, user.ID, user.Points, remaining); err != nil {
			return err
		}
		if err := tx.Rewards().DecrementStock(ctx, reward.ID, reward.Stock); err != nil {
			return err
		}
		return tx.Claims().Create(ctx, &claim)
	})
	if err != nil {
		return nil, nil, err
	}
	return &ClaimResult{Claim: claim, Reward: summarize(reward), RemainingPoints: remaining}, reward, nil
}

func (s *claimService) ListClaims(ctx context.Context, userID string, limit int) ([]ClaimWithReward, error) {
	if userID == "" {
		return nil, fmt.Errorf("user is required: %w", ErrValidation)
	}
	claims, err := s.store.Claims().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	rewards := make(map[string]*RewardSummary)
	out := make([]ClaimWithReward, 0, len(claims))
	for _, c := range claims {
		sum, ok := rewards[c.RewardID]
		if !ok {
			r, err := s.store.Rewards().GetByID(ctx, c.RewardID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			sum = summarize(r)
			rewards[c.RewardID] = sum
		}
		out = append(out, ClaimWithReward{Claim: c, Reward: sum})
	}
	return out, nil
}

func claimOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrRepositoryUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
