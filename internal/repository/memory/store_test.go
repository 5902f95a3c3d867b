package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersCreateAndCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Users().Create(ctx, &model.User{ID: "u1", Email: "Bob@Example.com", Points: 100}))

	err := s.Users().Create(ctx, &model.User{ID: "u2", Email: "bob@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	u, err := s.Users().GetByEmail(ctx, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	assert.ErrorIs(t, s.Users().CompareAndSetPoints(ctx, "u1", 99, 50), repository.ErrStaleState)
	assert.ErrorIs(t, s.Users().CompareAndSetPoints(ctx, "u1", 100, -1), repository.ErrConstraint)
	assert.ErrorIs(t, s.Users().CompareAndSetPoints(ctx, "nobody", 0, 1), repository.ErrStaleState)
	require.NoError(t, s.Users().CompareAndSetPoints(ctx, "u1", 100, 40))

	u, err = s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(40), u.Points)
}

func TestRewardsDecrementStock(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Rewards().Create(ctx, &model.Reward{ID: "live", Name: "Mug", Stock: 1, IsActive: true}))
	require.NoError(t, s.Rewards().Create(ctx, &model.Reward{ID: "hidden", Name: "Cap", Stock: 5, IsActive: false}))

	tests := []struct {
		name     string
		id       string
		expected int64
		want     error
	}{
		{name: "wrong expectation", id: "live", expected: 2, want: repository.ErrStaleState},
		{name: "inactive", id: "hidden", expected: 5, want: repository.ErrStaleState},
		{name: "missing", id: "nope", expected: 0, want: repository.ErrStaleState},
		{name: "last unit", id: "live", expected: 1},
		{name: "sold out", id: "live", expected: 0, want: repository.ErrStaleState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Rewards().DecrementStock(ctx, tt.id, tt.expected)
			if tt.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.want)
			}
		})
	}

	rw, err := s.Rewards().GetByID(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rw.Stock)
}

func TestRewardsListOrdersByCost(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Rewards().Create(ctx, &model.Reward{ID: "a", Name: "Hoodie", PointsRequired: 500, IsActive: true}))
	require.NoError(t, s.Rewards().Create(ctx, &model.Reward{ID: "b", Name: "Sticker", PointsRequired: 50, IsActive: true}))
	require.NoError(t, s.Rewards().Create(ctx, &model.Reward{ID: "c", Name: "Badge", PointsRequired: 50, IsActive: false}))

	active, err := s.Rewards().List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "b", active[0].ID)
	assert.Equal(t, "a", active[1].ID)

	all, err := s.Rewards().List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
}

func TestTransactionDiscardsWritesOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Users().Create(ctx, &model.User{ID: "u1", Email: "a@example.com", Points: 100}))
	require.NoError(t, s.Rewards().Create(ctx, &model.Reward{ID: "r1", Name: "Mug", Stock: 0, IsActive: true}))

	err := s.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().CompareAndSetPoints(ctx, "u1", 100, 0); err != nil {
			return err
		}
		return tx.Rewards().DecrementStock(ctx, "r1", 0)
	})
	require.ErrorIs(t, err, repository.ErrStaleState)

	u, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), u.Points)
}

func TestTransactionCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Users().Create(ctx, &model.User{ID: "u1", Email: "a@example.com", Points: 100}))

	err := s.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().CompareAndSetPoints(ctx, "u1", 100, 70); err != nil {
			return err
		}
		return tx.Claims().Create(ctx, &model.Claim{ID: "c1", UserID: "u1", RewardID: "r1", PointsSpent: 30, ClaimedAt: time.Now()})
	})
	require.NoError(t, err)

	claims, err := s.Claims().ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	u, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(70), u.Points)
}

func TestCancelledContextIsUnavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New()

	_, err := s.Users().GetByID(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrUnavailable)
	err = s.Transaction(ctx, func(repository.Store) error { return errors.New("not reached") })
	assert.ErrorIs(t, err, repository.ErrUnavailable)
}

func TestListByUserNewestFirstAndLimited(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 0; i < 25; i++ {
		require.NoError(t, s.Activities().Append(ctx, &model.Activity{ID: string(rune('a' + i)), UserID: "u1", Kind: model.ActivityLogin}))
	}
	require.NoError(t, s.Activities().Append(ctx, &model.Activity{ID: "other", UserID: "u2", Kind: model.ActivityLogin}))

	list, err := s.Activities().ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 20)
	assert.Equal(t, string(rune('a'+24)), list[0].ID)

	list, err = s.Activities().ListByUser(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestTournamentsParticipantsAndStatuses(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New()

	seed := []model.Tournament{
		{ID: "past", Slug: "past", Status: model.TournamentStatusUpcoming, StartsAt: now.Add(-48 * time.Hour), EndsAt: now.Add(-24 * time.Hour)},
		{ID: "live", Slug: "live", Status: model.TournamentStatusUpcoming, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)},
		{ID: "soon", Slug: "soon", Status: model.TournamentStatusUpcoming, StartsAt: now.Add(time.Hour), EndsAt: now.Add(2 * time.Hour), MaxParticipants: 2},
	}
	for i := range seed {
		require.NoError(t, s.Tournaments().Create(ctx, &seed[i]))
	}
	assert.ErrorIs(t, s.Tournaments().Create(ctx, &model.Tournament{ID: "x", Slug: "soon"}), repository.ErrDuplicate)

	require.NoError(t, s.Tournaments().IncrementParticipants(ctx, "soon", 0))
	assert.ErrorIs(t, s.Tournaments().IncrementParticipants(ctx, "soon", 0), repository.ErrStaleState)

	p := &model.TournamentParticipant{ID: "p1", TournamentID: "soon", UserID: "u1", JoinedAt: now}
	require.NoError(t, s.Tournaments().AddParticipant(ctx, p))
	assert.ErrorIs(t, s.Tournaments().AddParticipant(ctx, &model.TournamentParticipant{ID: "p2", TournamentID: "soon", UserID: "u1"}), repository.ErrDuplicate)

	joined, err := s.Tournaments().ListByParticipant(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, int64(1), joined[0].Participants)

	n, err := s.Tournaments().AdvanceStatuses(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.Tournaments().GetBySlug(ctx, "past")
	require.NoError(t, err)
	assert.Equal(t, model.TournamentStatusCompleted, got.Status)
	got, err = s.Tournaments().GetByID(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, model.TournamentStatusOngoing, got.Status)

	page, total, err := s.Tournaments().List(ctx, model.TournamentStatusUpcoming, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, page, 1)
	assert.Equal(t, "soon", page[0].ID)

	page, total, err = s.Tournaments().List(ctx, "", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "live", page[0].ID)
}

func TestTruncate(t *testing.T) {
	list := make([]int, 150)
	assert.Len(t, truncate(list, 0), 20)
	assert.Len(t, truncate(list, 7), 7)
	assert.Len(t, truncate(list, 101), 20)
	assert.Len(t, truncate(list[:3], 10), 3)
}

func TestRewardsUpdateLeavesStockAlone(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Rewards().Create(ctx, &model.Reward{ID: "r1", Name: "Mug", Description: "old", PointsRequired: 10, Stock: 5, IsActive: true}))

	require.NoError(t, s.Rewards().Update(ctx, &model.Reward{ID: "r1", Name: "Big Mug", Description: "ignored", Stock: 99}, repository.RewardColumnName))
	assert.ErrorIs(t, s.Rewards().Update(ctx, &model.Reward{ID: "r1"}, "stock"), repository.ErrConstraint)
	assert.ErrorIs(t, s.Rewards().Update(ctx, &model.Reward{ID: "nope"}, repository.RewardColumnName), repository.ErrNotFound)
	require.NoError(t, s.Rewards().SetImageURL(ctx, "r1", "https://cdn.example.com/mug.png"))

	rw, err := s.Rewards().GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", rw.Name)
	assert.Equal(t, "old", rw.Description)
	assert.Equal(t, int64(5), rw.Stock)
	require.NotNil(t, rw.ImageURL)
	assert.Equal(t, "https://cdn.example.com/mug.png", *rw.ImageURL)
}

func TestRewardsCompareAndSetStock(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Rewards().Create(ctx, &model.Reward{ID: "r1", Name: "Mug", Stock: 5, IsActive: true}))

	assert.ErrorIs(t, s.Rewards().CompareAndSetStock(ctx, "r1", 4, 10), repository.ErrStaleState)
	assert.ErrorIs(t, s.Rewards().CompareAndSetStock(ctx, "r1", 5, -1), repository.ErrConstraint)
	require.NoError(t, s.Rewards().CompareAndSetStock(ctx, "r1", 5, 10))

	rw, err := s.Rewards().GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), rw.Stock)
}
