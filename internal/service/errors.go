// Package service implements the business rules of the platform: session
// issuance, the reward claim engine, the points ledger and tournaments.
//
// Errors returned by this package wrap one of the sentinels below with
// fmt.Errorf("...: %w") and are matched with errors.Is by the transport layer.
package service

import (
	"errors"
	"fmt"

	"github.com/shinyyama/arena-backend/internal/auth"
	"github.com/shinyyama/arena-backend/internal/repository"
)

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a duplicate identity or an exhausted retry budget.
	ErrConflict = errors.New("conflict")
	// ErrAuthentication is deliberately the same for an unknown identity and
	// a wrong password.
	ErrAuthentication = errors.New("invalid credentials")
	ErrForbidden      = errors.New("forbidden")

	ErrInvalidToken = auth.ErrInvalidToken
	ErrExpiredToken = auth.ErrExpiredToken

	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrRewardNotFound     = fmt.Errorf("reward %w", ErrNotFound)
	ErrTournamentNotFound = fmt.Errorf("tournament %w", ErrNotFound)

	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOutOfStock          = errors.New("out of stock")

	ErrTournamentClosed = errors.New("tournament not open for registration")
	ErrTournamentFull   = errors.New("tournament full")
	ErrAlreadyJoined    = fmt.Errorf("already joined: %w", ErrConflict)

	// ErrStaleState is transient and never leaves this package.
	ErrStaleState = repository.ErrStaleState
	// ErrRepositoryUnavailable is an infrastructure fault; callers may retry.
	ErrRepositoryUnavailable = repository.ErrUnavailable
)

// notFoundAs replaces a repository miss with the domain sentinel for the
// missing resource and passes every other error through.
func notFoundAs(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
