package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleState is returned by conditional writes whose expected value no
	// longer matches the stored one. Callers re-read and retry.
	ErrStaleState = errors.New("stale state")
	// ErrUnavailable wraps every storage fault: driver errors, timeouts and
	// cancelled contexts.
	ErrUnavailable = errors.New("repository unavailable")
	// ErrConstraint is returned when a write would break a column invariant,
	// such as a negative balance.
	ErrConstraint = errors.New("constraint violation")
)

var ErrDBNotReady = fmt.Errorf("database not initialized: %w", ErrUnavailable)

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrStaleState),
		errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrConstraint):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
