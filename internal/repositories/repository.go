package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a requested document does not exist
	ErrNotFound = errors.New("not found")
	// ErrStaleState is returned when a compare-and-set finds a different current status
	ErrStaleState = errors.New("stale lottery status")
	// ErrDuplicateTarget is returned when a second event is created for the same target
	ErrDuplicateTarget = errors.New("a lottery event already exists for this target")
	// ErrDuplicateWinner is returned when a participant would win the same event twice
	ErrDuplicateWinner = errors.New("participant already recorded as winner for this event")
	// ErrDuplicateContribution is returned when a position is already taken within a target
	ErrDuplicateContribution = errors.New("position already recorded for this target")
	// ErrLockHeld is returned when another owner holds an unexpired draw lock
	ErrLockHeld = errors.New("draw lock is held by another owner")
)

// LotteryEventRepository defines the interface for lottery event data operations.
// Status changes go exclusively through CompareAndSetStatus and CommitDraw.
type LotteryEventRepository interface {
	Create(ctx context.Context, event *models.LotteryEvent) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.LotteryEvent, error)
	FindByTargetID(ctx context.Context, targetID string) (*models.LotteryEvent, error)
	// FindDrawable returns active events whose draw time is at or before now
	FindDrawable(ctx context.Context, now time.Time) ([]*models.LotteryEvent, error)
	// UpdateConfig replaces the configuration fields while the status still
	// equals expected and the stored draw time is after now
	UpdateConfig(ctx context.Context, event *models.LotteryEvent, expected models.LotteryStatus, now time.Time) error
	// CompareAndSetStatus moves the event from one status to another, returning
	// ErrStaleState when the stored status is no longer from.
	CompareAndSetStatus(ctx context.Context, id primitive.ObjectID, from, to models.LotteryStatus, reason models.CancelReason) error
	// CommitDraw inserts all winners and moves the event active -> drawn in a
	// single transaction. Either both are visible or neither is. Winner IDs
	// already set by the caller are kept.
	CommitDraw(ctx context.Context, id primitive.ObjectID, winners []models.LotteryWinner, drawnAt time.Time) error
	// Delete removes the event and all of its winners
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// LotteryWinnerRepository defines the read side of winner records
type LotteryWinnerRepository interface {
	FindByEventID(ctx context.Context, eventID primitive.ObjectID) ([]models.LotteryWinner, error)
}

// ParticipantRepository lists and records contributions within a target
type ParticipantRepository interface {
	// ListEligible returns identified, non-deleted contributions with
	// position >= minPosition, ordered by position ascending.
	ListEligible(ctx context.Context, targetID string, minPosition int) ([]models.Participant, error)
	Record(ctx context.Context, contribution *models.Contribution) error
	MarkDeleted(ctx context.Context, targetID string, position int) error
}

// DrawLockRepository grants short-lived exclusive leases per event
type DrawLockRepository interface {
	// Acquire returns ErrLockHeld when an unexpired lease exists for key.
	// Expired leases are taken over.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease is a held lock. Release is safe to call more than once and only
// removes the lock if it is still owned by this lease.
type Lease interface {
	Release(ctx context.Context) error
}
