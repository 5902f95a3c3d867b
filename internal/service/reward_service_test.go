package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
	"github.com/shinyyama/arena-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingImages struct {
	path        string
	contentType string
	body        []byte
	err         error
}

func (r *recordingImages) Upload(_ context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	r.path, r.contentType, r.body = objectPath, contentType, b
	return "https://cdn.example.com/" + objectPath, nil
}

func TestRewardCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewRewardService(store, &recordingImages{})

	r, err := svc.Create(ctx, RewardInput{Name: " Sticker Pack ", PointsRequired: 50, Stock: 10, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Sticker Pack", r.Name)

	stock := int64(3)
	inactive := false
	updated, err := svc.Update(ctx, r.ID, RewardPatch{Stock: &stock, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.Stock)
	assert.False(t, updated.IsActive)
	assert.Equal(t, int64(50), updated.PointsRequired)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRewardValidation(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewRewardService(store, &recordingImages{})

	tests := []struct {
		name string
		in   RewardInput
	}{
		{name: "missing name", in: RewardInput{Name: "", PointsRequired: 10}},
		{name: "zero cost", in: RewardInput{Name: "x", PointsRequired: 0}},
		{name: "negative stock", in: RewardInput{Name: "x", PointsRequired: 10, Stock: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	r, err := svc.Create(ctx, RewardInput{Name: "x", PointsRequired: 10, Stock: 1})
	require.NoError(t, err)
	neg := int64(-2)
	_, err = svc.Update(ctx, r.ID, RewardPatch{PointsRequired: &neg})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, "missing", RewardPatch{})
	assert.ErrorIs(t, err, ErrRewardNotFound)
}

func TestAttachImage(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	images := &recordingImages{}
	svc := NewRewardService(store, images)
	r, err := svc.Create(ctx, RewardInput{Name: "Mouse Pad", PointsRequired: 450, Stock: 5, IsActive: true})
	require.NoError(t, err)

	got, err := svc.AttachImage(ctx, r.ID, "My Photo.PNG", "image/png", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	require.NotNil(t, got.ImageURL)
	assert.True(t, strings.HasPrefix(images.path, "rewards/"+r.ID+"/"))
	assert.True(t, strings.HasSuffix(images.path, "-my-photo.png"), images.path)
	assert.Equal(t, "image/png", images.contentType)
	assert.Equal(t, []byte("png-bytes"), images.body)
	assert.Equal(t, "https://cdn.example.com/"+images.path, *got.ImageURL)

	stored, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, got.ImageURL, stored.ImageURL)
}

func TestAttachImageErrors(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewRewardService(store, &recordingImages{err: storage.ErrDisabled})
	r, err := svc.Create(ctx, RewardInput{Name: "Mouse Pad", PointsRequired: 450, Stock: 5, IsActive: true})
	require.NoError(t, err)

	_, err = svc.AttachImage(ctx, r.ID, "x.txt", "text/plain", strings.NewReader("hi"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AttachImage(ctx, "missing", "x.png", "image/png", strings.NewReader("hi"))
	assert.ErrorIs(t, err, ErrRewardNotFound)

	_, err = svc.AttachImage(ctx, r.ID, "x.png", "image/png", strings.NewReader("hi"))
	assert.ErrorIs(t, err, storage.ErrDisabled)

	stored, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ImageURL)
}

// claimingImages runs a claim while the upload is in flight.
type claimingImages struct {
	claim func() error
}

func (c *claimingImages) Upload(_ context.Context, objectPath, _ string, _ io.Reader) (string, error) {
	if err := c.claim(); err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + objectPath, nil
}

func TestAttachImageKeepsStockTakenDuringUpload(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	user := seedUser(t, store, 1000)
	reward := seedReward(t, store, 100, 5, true)
	claims := NewClaimService(store, NewActivityLog(store.Activities()), DefaultMaxAttempts)

	images := &claimingImages{claim: func() error {
		_, err := claims.ClaimReward(ctx, user.ID, reward.ID)
		return err
	}}
	svc := NewRewardService(store, images)

	got, err := svc.AttachImage(ctx, reward.ID, "mug.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, int64(4), got.Stock)

	assert.Len(t, claimsOf(t, store, user.ID), 1)
	assert.Equal(t, int64(900), pointsOf(t, store, user.ID))
	assert.Equal(t, int64(4), stockOf(t, store, reward.ID))
}

// claimAfterFirstRead returns a store whose first reward read is followed by a
// committed claim, so the caller works from a stale snapshot.
func claimAfterFirstRead(t *testing.T, base repository.Store, userID string) *hookStore {
	t.Helper()
	claims := NewClaimService(base, NewActivityLog(base.Activities()), DefaultMaxAttempts)
	fired := false
	return &hookStore{
		Store: base,
		getReward: func(next repository.RewardRepository, ctx context.Context, id string) (*model.Reward, error) {
			r, err := next.GetByID(ctx, id)
			if err != nil || fired {
				return r, err
			}
			fired = true
			_, cerr := claims.ClaimReward(ctx, userID, id)
			require.NoError(t, cerr)
			return r, nil
		},
	}
}

func TestRewardUpdateWithoutStockKeepsConcurrentClaim(t *testing.T) {
	ctx := context.Background()
	base := newMemoryStore()
	user := seedUser(t, base, 1000)
	reward := seedReward(t, base, 100, 5, true)
	svc := NewRewardService(claimAfterFirstRead(t, base, user.ID), &recordingImages{})

	name := "Renamed Mug"
	got, err := svc.Update(ctx, reward.ID, RewardPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Mug", got.Name)
	assert.Equal(t, int64(4), got.Stock)
	assert.Equal(t, int64(4), stockOf(t, base, reward.ID))
}

func TestRewardUpdateStockConflictsWithConcurrentClaim(t *testing.T) {
	ctx := context.Background()
	base := newMemoryStore()
	user := seedUser(t, base, 1000)
	reward := seedReward(t, base, 100, 5, true)
	svc := NewRewardService(claimAfterFirstRead(t, base, user.ID), &recordingImages{})

	name := "Restocked Mug"
	stock := int64(20)
	_, err := svc.Update(ctx, reward.ID, RewardPatch{Name: &name, Stock: &stock})
	require.ErrorIs(t, err, ErrConflict)

	stored, err := base.Rewards().GetByID(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stored.Stock)
	assert.Equal(t, reward.Name, stored.Name)

	got, err := svc.Update(ctx, reward.ID, RewardPatch{Name: &name, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Stock)
	assert.Equal(t, "Restocked Mug", got.Name)
}
