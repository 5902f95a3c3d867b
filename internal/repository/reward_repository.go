package repository

import (
	"context"
	"fmt"

	"github.com/shinyyama/arena-backend/internal/model"
	"gorm.io/gorm"
)

type RewardRepository interface {
	GetByID(ctx context.Context, id string) (*model.Reward, error)
	List(ctx context.Context, activeOnly bool) ([]model.Reward, error)
	Create(ctx context.Context, r *model.Reward) error
	// Update writes only the listed catalogue columns of r. Stock is never
	// written here; see CompareAndSetStock and DecrementStock.
	Update(ctx context.Context, r *model.Reward, columns ...string) error
	SetImageURL(ctx context.Context, id, url string) error
	// CompareAndSetStock sets stock to next only while the stored stock still
	// equals expected. A mismatch yields ErrStaleState.
	CompareAndSetStock(ctx context.Context, id string, expected, next int64) error
	// DecrementStock takes one unit of stock while the stored stock still
	// equals expectedStock and the reward is active. Otherwise ErrStaleState.
	DecrementStock(ctx context.Context, id string, expectedStock int64) error
}

// Reward columns accepted by RewardRepository.Update.
const (
	RewardColumnName           = "name"
	RewardColumnDescription    = "description"
	RewardColumnPointsRequired = "points_required"
	RewardColumnIsActive       = "is_active"
)

func checkRewardColumns(columns []string) error {
	for _, c := range columns {
		switch c {
		case RewardColumnName, RewardColumnDescription, RewardColumnPointsRequired, RewardColumnIsActive:
		default:
			return fmt.Errorf("reward column %q: %w", c, ErrConstraint)
		}
	}
	return nil
}

type rewardRepository struct {
	base
}

func (r *rewardRepository) GetByID(ctx context.Context, id string) (*model.Reward, error) {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return nil, err
	}
	var rw model.Reward
	if err := db.Where("id = ?", id).First(&rw).Error; err != nil {
		return nil, translateError(err)
	}
	return &rw, nil
}

func (r *rewardRepository) List(ctx context.Context, activeOnly bool) ([]model.Reward, error) {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return nil, err
	}
	q := db.Model(&model.Reward{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var list []model.Reward
	if err := q.Order("points_required ASC").Order("name ASC").Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

func (r *rewardRepository) Create(ctx context.Context, rw *model.Reward) error {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	return translateError(db.Create(rw).Error)
}

func (r *rewardRepository) Update(ctx context.Context, rw *model.Reward, columns ...string) error {
	if err := checkRewardColumns(columns); err != nil {
		return err
	}
	if len(columns) == 0 {
		return nil
	}
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	res := db.Model(&model.Reward{}).
		Where("id = ?", rw.ID).
		Select(columns).
		Updates(rw)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *rewardRepository) SetImageURL(ctx context.Context, id, url string) error {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	res := db.Model(&model.Reward{}).Where("id = ?", id).Update("image_url", url)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *rewardRepository) CompareAndSetStock(ctx context.Context, id string, expected, next int64) error {
	if next < 0 {
		return fmt.Errorf("reward %s stock %d: %w", id, next, ErrConstraint)
	}
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	res := db.Model(&model.Reward{}).
		Where("id = ? AND stock = ?", id, expected).
		Update("stock", next)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *rewardRepository) DecrementStock(ctx context.Context, id string, expectedStock int64) error {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	res := db.Model(&model.Reward{}).
		Where("id = ? AND stock = ? AND stock > 0 AND is_active = ?", id, expectedStock, true).
		Update("stock", gorm.Expr("stock - 1"))
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
