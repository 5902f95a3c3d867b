package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
	"github.com/shinyyama/arena-backend/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

// hookStore wraps a Store so tests can override individual writes. Hooks
// follow the store into transactions and receive the repository they wrap.
type hookStore struct {
	repository.Store
	casPoints      func(next repository.UserRepository, ctx context.Context, id string, expected, points int64) error
	decrementStock func(next repository.RewardRepository, ctx context.Context, id string, expected int64) error
	getReward      func(next repository.RewardRepository, ctx context.Context, id string) (*model.Reward, error)
	appendActivity func(next repository.ActivityRepository, ctx context.Context, a *model.Activity) error
}

func (h *hookStore) Users() repository.UserRepository {
	return hookUsers{UserRepository: h.Store.Users(), h: h}
}

func (h *hookStore) Rewards() repository.RewardRepository {
	return hookRewards{RewardRepository: h.Store.Rewards(), h: h}
}

func (h *hookStore) Activities() repository.ActivityRepository {
	return hookActivities{ActivityRepository: h.Store.Activities(), h: h}
}

func (h *hookStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return h.Store.Transaction(ctx, func(tx repository.Store) error {
		inner := *h
		inner.Store = tx
		return fn(&inner)
	})
}

type hookUsers struct {
	repository.UserRepository
	h *hookStore
}

func (u hookUsers) CompareAndSetPoints(ctx context.Context, id string, expected, next int64) error {
	if u.h.casPoints != nil {
		return u.h.casPoints(u.UserRepository, ctx, id, expected, next)
	}
	return u.UserRepository.CompareAndSetPoints(ctx, id, expected, next)
}

type hookRewards struct {
	repository.RewardRepository
	h *hookStore
}

func (r hookRewards) DecrementStock(ctx context.Context, id string, expected int64) error {
	if r.h.decrementStock != nil {
		return r.h.decrementStock(r.RewardRepository, ctx, id, expected)
	}
	return r.RewardRepository.DecrementStock(ctx, id, expected)
}

func (r hookRewards) GetByID(ctx context.Context, id string) (*model.Reward, error) {
	if r.h.getReward != nil {
		return r.h.getReward(r.RewardRepository, ctx, id)
	}
	return r.RewardRepository.GetByID(ctx, id)
}

type hookActivities struct {
	repository.ActivityRepository
	h *hookStore
}

func (a hookActivities) Append(ctx context.Context, e *model.Activity) error {
	if a.h.appendActivity != nil {
		return a.h.appendActivity(a.ActivityRepository, ctx, e)
	}
	return a.ActivityRepository.Append(ctx, e)
}

func seedUser(t *testing.T, store repository.Store, points int64) *model.User {
	t.Helper()
	id := uuid.NewString()
	u := &model.User{
		ID:           id,
		Username:     "player-" + id[:6],
		Email:        id[:8] + "@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
		Points:       points,
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func seedReward(t *testing.T, store repository.Store, cost, stock int64, active bool) *model.Reward {
	t.Helper()
	r := &model.Reward{
		ID:             uuid.NewString(),
		Name:           "Reward " + uuid.NewString()[:4],
		PointsRequired: cost,
		Stock:          stock,
		IsActive:       active,
	}
	require.NoError(t, store.Rewards().Create(context.Background(), r))
	return r
}

func pointsOf(t *testing.T, store repository.Store, userID string) int64 {
	t.Helper()
	u, err := store.Users().GetByID(context.Background(), userID)
	require.NoError(t, err)
	return u.Points
}

func stockOf(t *testing.T, store repository.Store, rewardID string) int64 {
	t.Helper()
	r, err := store.Rewards().GetByID(context.Background(), rewardID)
	require.NoError(t, err)
	return r.Stock
}

func activitiesOf(t *testing.T, store repository.Store, userID string) []model.Activity {
	t.Helper()
	list, err := store.Activities().ListByUser(context.Background(), userID, 100)
	require.NoError(t, err)
	return list
}

func claimsOf(t *testing.T, store repository.Store, userID string) []model.Claim {
	t.Helper()
	list, err := store.Claims().ListByUser(context.Background(), userID, 100)
	require.NoError(t, err)
	return list
}

func newMemoryStore() *memory.Store {
	return memory.New()
}
