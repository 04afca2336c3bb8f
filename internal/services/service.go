package services

import (
	"context"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawService defines the interface for running lottery draws
type DrawService interface {
	// AttemptDraw draws winners for an event if it is due. Every outcome other
	// than an unknown event or an infrastructure failure is reported through
	// the result status.
	AttemptDraw(ctx context.Context, eventID primitive.ObjectID) (*models.DrawResult, error)
}

// LotteryEventService defines the interface for managing lottery events
type LotteryEventService interface {
	// CreateEvent validates and stores a new event for a target
	CreateEvent(ctx context.Context, req *models.LotteryEventRequest, createdBy string) (*models.LotteryEvent, error)

	// UpdateEvent replaces the configuration of a pending or active event
	UpdateEvent(ctx context.Context, id primitive.ObjectID, req *models.LotteryEventRequest) (*models.LotteryEvent, error)

	// ActivateEvent opens a pending event for participation
	ActivateEvent(ctx context.Context, id primitive.ObjectID) (*models.LotteryEvent, error)

	// Cancel cancels a pending or active event on behalf of the organizer
	Cancel(ctx context.Context, id primitive.ObjectID) (*models.CancelResult, error)

	// GetEvent retrieves an event together with its winners
	GetEvent(ctx context.Context, id primitive.ObjectID) (*models.LotteryEventDetails, error)

	// GetEventByTarget retrieves the event attached to a target
	GetEventByTarget(ctx context.Context, targetID string) (*models.LotteryEventDetails, error)

	// ListWinners retrieves the recorded winners of an event
	ListWinners(ctx context.Context, id primitive.ObjectID) ([]models.LotteryWinner, error)

	// ListDrawable retrieves active events whose draw time has passed
	ListDrawable(ctx context.Context, now time.Time) ([]*models.LotteryEvent, error)

	// HandleTargetDeleted cancels the event of a target that no longer exists
	HandleTargetDeleted(ctx context.Context, targetID string) (*models.CancelResult, error)

	// DeleteEvent removes an event and its winners
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error

	// RecordContribution stores a numbered entry within a target
	RecordContribution(ctx context.Context, targetID string, req *models.ContributionRequest) (*models.Contribution, error)

	// RemoveContribution marks an entry deleted so it no longer counts
	RemoveContribution(ctx context.Context, targetID string, position int) error
}
