package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Store groups the repositories that share one storage backend.
//
// Transaction runs fn against a Store bound to a single unit of work: either
// every write made through tx is committed or none is. Nested calls on a
// transactional Store join the outer transaction.
type Store interface {
	Users() UserRepository
	Rewards() RewardRepository
	Claims() ClaimRepository
	Activities() ActivityRepository
	Tournaments() TournamentRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	base
	inTx bool
}

// NewStore returns a Store backed by gorm. Every statement is bounded by
// timeout when it is positive.
func NewStore(db *gorm.DB, timeout time.Duration) Store {
	return &gormStore{base: base{db: db, timeout: timeout}}
}

func (s *gormStore) Users() UserRepository             { return &userRepository{base: s.base} }
func (s *gormStore) Rewards() RewardRepository         { return &rewardRepository{base: s.base} }
func (s *gormStore) Claims() ClaimRepository           { return &claimRepository{base: s.base} }
func (s *gormStore) Activities() ActivityRepository    { return &activityRepository{base: s.base} }
func (s *gormStore) Tournaments() TournamentRepository { return &tournamentRepository{base: s.base} }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.db == nil {
		return ErrDBNotReady
	}
	if s.inTx {
		return fn(s)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{base: base{db: tx, timeout: s.timeout}, inTx: true})
	})
	return translateError(err)
}

type base struct {
	db      *gorm.DB
	timeout time.Duration
}

// conn returns a session bound to ctx plus the per-statement deadline.
func (b base) conn(ctx context.Context) (*gorm.DB, context.CancelFunc, error) {
	if b.db == nil {
		return nil, func() {}, ErrDBNotReady
	}
	if b.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, b.timeout)
		return b.db.WithContext(ctx), cancel, nil
	}
	return b.db.WithContext(ctx), func() {}, nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 || limit > max {
		return def
	}
	return limit
}
