package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
	"github.com/shinyyama/arena-backend/internal/storage"
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type RewardInput struct {
	Name           string
	Description    string
	PointsRequired int64
	Stock          int64
	IsActive       bool
}

// RewardPatch carries the fields an admin wants to change. Nil means keep.
type RewardPatch struct {
	Name           *string
	Description    *string
	PointsRequired *int64
	Stock          *int64
	IsActive       *bool
}

type RewardService interface {
	List(ctx context.Context, activeOnly bool) ([]model.Reward, error)
	Get(ctx context.Context, id string) (*model.Reward, error)
	Create(ctx context.Context, in RewardInput) (*model.Reward, error)
	Update(ctx context.Context, id string, patch RewardPatch) (*model.Reward, error)
	AttachImage(ctx context.Context, id, filename, contentType string, body io.Reader) (*model.Reward, error)
}

type rewardService struct {
	store   repository.Store
	rewards repository.RewardRepository
	images  storage.ImageStore
	now     func() time.Time
}

func NewRewardService(store repository.Store, images storage.ImageStore) RewardService {
	return &rewardService{store: store, rewards: store.Rewards(), images: images, now: time.Now}
}

func (s *rewardService) List(ctx context.Context, activeOnly bool) ([]model.Reward, error) {
	return s.rewards.List(ctx, activeOnly)
}

func (s *rewardService) Get(ctx context.Context, id string) (*model.Reward, error) {
	r, err := s.rewards.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrRewardNotFound)
	}
	return r, nil
}

func validateReward(name string, cost, stock int64) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("name is required: %w", ErrValidation)
	case cost <= 0:
		return fmt.Errorf("points_required must be positive: %w", ErrValidation)
	case stock < 0:
		return fmt.Errorf("stock must not be negative: %w", ErrValidation)
	}
	return nil
}

func (s *rewardService) Create(ctx context.Context, in RewardInput) (*model.Reward, error) {
	if err := validateReward(in.Name, in.PointsRequired, in.Stock); err != nil {
		return nil, err
	}
	r := &model.Reward{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		PointsRequired: in.PointsRequired,
		Stock:          in.Stock,
		IsActive:       in.IsActive,
	}
	if err := s.rewards.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update writes only the fields present in patch. A stock change is applied
// against the stock value read here; a claim committed in between turns it
// into ErrConflict.
func (s *rewardService) Update(ctx context.Context, id string, patch RewardPatch) (*model.Reward, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *cur
	var columns []string
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
		columns = append(columns, repository.RewardColumnName)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
		columns = append(columns, repository.RewardColumnDescription)
	}
	if patch.PointsRequired != nil {
		next.PointsRequired = *patch.PointsRequired
		columns = append(columns, repository.RewardColumnPointsRequired)
	}
	if patch.Stock != nil {
		next.Stock = *patch.Stock
	}
	if patch.IsActive != nil {
		next.IsActive = *patch.IsActive
		columns = append(columns, repository.RewardColumnIsActive)
	}
	if err := validateReward(next.Name, next.PointsRequired, next.Stock); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if next.Stock != cur.Stock {
			err := tx.Rewards().CompareAndSetStock(ctx, id, cur.Stock, next.Stock)
			if errors.Is(err, repository.ErrStaleState) {
				return fmt.Errorf("%w: reward %s stock changed since it was read", ErrConflict, id)
			}
			if err != nil {
				return err
			}
		}
		if err := tx.Rewards().Update(ctx, &next, columns...); err != nil {
			return notFoundAs(err, ErrRewardNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *rewardService) AttachImage(ctx context.Context, id, filename, contentType string, body io.Reader) (*model.Reward, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("unsupported image type %q: %w", contentType, ErrValidation)
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	base := slug.Make(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if base == "" {
		base = "image"
	}
	objectPath := fmt.Sprintf("rewards/%s/%d-%s%s", r.ID, s.now().Unix(), base, ext)
	url, err := s.images.Upload(ctx, objectPath, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("upload reward image: %w", err)
	}
	if err := s.rewards.SetImageURL(ctx, r.ID, url); err != nil {
		return nil, notFoundAs(err, ErrRewardNotFound)
	}
	return s.Get(ctx, id)
}
