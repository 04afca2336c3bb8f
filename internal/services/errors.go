package services

import (
	"errors"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
)

// Errors surfaced by the services. Storage errors are re-exported so callers
// only need to import this package.
var (
	ErrNotFound              = repositories.ErrNotFound
	ErrStaleState            = repositories.ErrStaleState
	ErrDuplicateTarget       = repositories.ErrDuplicateTarget
	ErrDuplicateWinner       = repositories.ErrDuplicateWinner
	ErrDuplicateContribution = repositories.ErrDuplicateContribution
	ErrLockHeld              = repositories.ErrLockHeld
	ErrInvalidTransition     = models.ErrInvalidTransition

	// ErrInvalidEvent wraps configuration problems found while creating or updating an event
	ErrInvalidEvent = errors.New("invalid lottery event")
	// ErrEventImmutable is returned when changing an event that is drawn or cancelled
	ErrEventImmutable = errors.New("lottery event can no longer be changed")
	// ErrInvalidContribution is returned for a non-positive contribution position
	ErrInvalidContribution = errors.New("contribution position must be greater than 0")
)
