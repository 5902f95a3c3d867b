package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/shinyyama/arena-backend/internal/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	// CompareAndSetPoints sets points to next only while the stored balance
	// still equals expected. A mismatch yields ErrStaleState.
	CompareAndSetPoints(ctx context.Context, id string, expected, next int64) error
}

type userRepository struct {
	base
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := db.Where("email = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	return translateError(db.Create(u).Error)
}

func (r *userRepository) CompareAndSetPoints(ctx context.Context, id string, expected, next int64) error {
	if next < 0 {
		return fmt.Errorf("user %s points %d: %w", id, next, ErrConstraint)
	}
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	res := db.Model(&model.User{}).
		Where("id = ? AND points = ?", id, expected).
		Update("points", next)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
