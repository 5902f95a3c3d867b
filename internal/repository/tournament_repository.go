package repository

import (
	"context"
	"time"

	"github.com/shinyyama/arena-backend/internal/model"
	"gorm.io/gorm"
)

type TournamentRepository interface {
	List(ctx context.Context, status model.TournamentStatus, limit, offset int) ([]model.Tournament, int64, error)
	GetByID(ctx context.Context, id string) (*model.Tournament, error)
	GetBySlug(ctx context.Context, slug string) (*model.Tournament, error)
	Create(ctx context.Context, t *model.Tournament) error
	// IncrementParticipants bumps the participant counter while it still
	// equals expected. A mismatch yields ErrStaleState.
	IncrementParticipants(ctx context.Context, id string, expected int64) error
	AddParticipant(ctx context.Context, p *model.TournamentParticipant) error
	ListByParticipant(ctx context.Context, userID string) ([]model.Tournament, error)
	// AdvanceStatuses moves tournaments along upcoming -> ongoing -> completed
	// according to their schedule and returns the number of rows changed.
	AdvanceStatuses(ctx context.Context, now time.Time) (int64, error)
}

type tournamentRepository struct {
	base
}

func (r *tournamentRepository) List(ctx context.Context, status model.TournamentStatus, limit, offset int) ([]model.Tournament, int64, error) {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return nil, 0, err
	}
	var (
		list  []model.Tournament
		total int64
	)
	byStatus := func(q *gorm.DB) *gorm.DB {
		if status != "" {
			return q.Where("status = ?", status)
		}
		return q
	}
	if err := db.Model(&model.Tournament{}).Scopes(byStatus).Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}
	if err := db.Model(&model.Tournament{}).Scopes(byStatus).
		Order("starts_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return list, total, nil
}

func (r *tournamentRepository) GetByID(ctx context.Context, id string) (*model.Tournament, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *tournamentRepository) GetBySlug(ctx context.Context, slug string) (*model.Tournament, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *tournamentRepository) first(ctx context.Context, cond string, arg string) (*model.Tournament, error) {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return nil, err
	}
	var t model.Tournament
	if err := db.Where(cond, arg).First(&t).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

func (r *tournamentRepository) Create(ctx context.Context, t *model.Tournament) error {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	return translateError(db.Create(t).Error)
}

func (r *tournamentRepository) IncrementParticipants(ctx context.Context, id string, expected int64) error {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	res := db.Model(&model.Tournament{}).
		Where("id = ? AND participants = ?", id, expected).
		Update("participants", gorm.Expr("participants + 1"))
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *tournamentRepository) AddParticipant(ctx context.Context, p *model.TournamentParticipant) error {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	return translateError(db.Create(p).Error)
}

func (r *tournamentRepository) ListByParticipant(ctx context.Context, userID string) ([]model.Tournament, error) {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return nil, err
	}
	var list []model.Tournament
	if err := db.
		Joins("JOIN tournament_participants tp ON tp.tournament_id = tournaments.id").
		Where("tp.user_id = ?", userID).
		Order("tournaments.starts_at DESC").
		Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

func (r *tournamentRepository) AdvanceStatuses(ctx context.Context, now time.Time) (int64, error) {
	db, cancel, err := r.conn(ctx)
	defer cancel()
	if err != nil {
		return 0, err
	}
	// Finished first so a tournament whose whole window has passed skips ongoing.
	done := db.Model(&model.Tournament{}).
		Where("status IN ? AND ends_at <= ?", []model.TournamentStatus{model.TournamentStatusUpcoming, model.TournamentStatusOngoing}, now).
		Update("status", model.TournamentStatusCompleted)
	if done.Error != nil {
		return 0, translateError(done.Error)
	}
	started := db.Model(&model.Tournament{}).
		Where("status = ? AND starts_at <= ?", model.TournamentStatusUpcoming, now).
		Update("status", model.TournamentStatusOngoing)
	if started.Error != nil {
		return done.RowsAffected, translateError(started.Error)
	}
	return done.RowsAffected + started.RowsAffected, nil
}
