package repository

import (
	"context"

	"github.com/shinyyama/arena-backend/internal/model"
)

type ClaimRepository interface {
	Create(ctx context.Context, c *model.Claim) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Claim, error)
}

type claimRepository struct {
	base
}

func (r *claimRepository) Create(ctx context.Context, c *model.Claim) error {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	return translateError(db.Create(c).Error)
}

func (r *claimRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Claim, error) {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return nil, err
	}
	var list []model.Claim
	if err := db.
		Where("user_id = ?", userID).
		Order("claimed_at DESC").
		Limit(clampLimit(limit, 20, 100)).
		Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}
