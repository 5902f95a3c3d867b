package repository

import (
	"context"

	"github.com/shinyyama/arena-backend/internal/model"
)

type ActivityRepository interface {
	Append(ctx context.Context, a *model.Activity) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Activity, error)
}

type activityRepository struct {
	base
}

func (r *activityRepository) Append(ctx context.Context, a *model.Activity) error {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	return translateError(db.Create(a).Error)
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return nil, err
	}
	var list []model.Activity
	if err := db.Model(&model.Activity{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(clampLimit(limit, 20, 100)).
		Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}
