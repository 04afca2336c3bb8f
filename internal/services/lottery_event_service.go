package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// maxCancelAttempts bounds re-fetches when a cancel races another status change
const maxCancelAttempts = 3

var _ LotteryEventService = (*LotteryEventServiceImpl)(nil)

// LotteryEventServiceImpl manages the lifecycle of lottery events outside the draw itself
type LotteryEventServiceImpl struct {
	eventRepo       repositories.LotteryEventRepository
	winnerRepo      repositories.LotteryWinnerRepository
	participantRepo repositories.ParticipantRepository
	now             func() time.Time
}

// NewLotteryEventService creates a new LotteryEventServiceImpl
func NewLotteryEventService(
	eventRepo repositories.LotteryEventRepository,
	winnerRepo repositories.LotteryWinnerRepository,
	participantRepo repositories.ParticipantRepository,
) *LotteryEventServiceImpl {
	return &LotteryEventServiceImpl{
		eventRepo:       eventRepo,
		winnerRepo:      winnerRepo,
		participantRepo: participantRepo,
		now:             time.Now,
	}
}

// WithClock replaces the time source
func (s *LotteryEventServiceImpl) WithClock(now func() time.Time) *LotteryEventServiceImpl {
	s.now = now
	return s
}

// CreateEvent stores a new event. It is stored active unless the request
// explicitly asks to keep it pending.
func (s *LotteryEventServiceImpl) CreateEvent(ctx context.Context, req *models.LotteryEventRequest, createdBy string) (*models.LotteryEvent, error) {
	event, err := eventFromRequest(req)
	if err != nil {
		return nil, err
	}
	event.TargetID = strings.TrimSpace(req.TargetID)
	event.Status = models.LotteryStatusPending
	event.CreatedBy = createdBy

	if err := validateEvent(event, s.now()); err != nil {
		return nil, err
	}
	if req.Activate == nil || *req.Activate {
		if err := models.ValidateTransition(event.Status, models.LotteryStatusActive); err != nil {
			return nil, err
		}
		event.Status = models.LotteryStatusActive
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrDuplicateTarget) {
			return nil, err
		}
		slog.Error("Failed to create lottery event", "error", err, "targetId", event.TargetID)
		return nil, fmt.Errorf("failed to create lottery event: %w", err)
	}

	slog.Info("Lottery event created", "eventId", event.ID.Hex(), "targetId", event.TargetID, "status", event.Status)
	return event, nil
}

// UpdateEvent replaces the configuration of an event that has not been
// finalized and whose deadline has not passed
func (s *LotteryEventServiceImpl) UpdateEvent(ctx context.Context, id primitive.ObjectID, req *models.LotteryEventRequest) (*models.LotteryEvent, error) {
	current, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if current.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: event is %s", ErrEventImmutable, current.Status)
	}
	if !now.Before(current.DrawTime) {
		return nil, fmt.Errorf("%w: draw time has passed", ErrEventImmutable)
	}

	updated, err := eventFromRequest(req)
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.TargetID = current.TargetID
	updated.Status = current.Status
	updated.CancelReason = current.CancelReason
	updated.CreatedBy = current.CreatedBy
	updated.CreatedAt = current.CreatedAt

	if err := validateEvent(updated, now); err != nil {
		return nil, err
	}
	if err := s.eventRepo.UpdateConfig(ctx, updated, current.Status, s.now()); err != nil {
		if errors.Is(err, repositories.ErrStaleState) {
			return nil, fmt.Errorf("%w: event changed while updating: %w", ErrEventImmutable, err)
		}
		return nil, err
	}
	return updated, nil
}

// ActivateEvent moves a pending event to active
func (s *LotteryEventServiceImpl) ActivateEvent(ctx context.Context, id primitive.ObjectID) (*models.LotteryEvent, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateTransition(event.Status, models.LotteryStatusActive); err != nil {
		return nil, err
	}
	if err := s.eventRepo.CompareAndSetStatus(ctx, id, event.Status, models.LotteryStatusActive, ""); err != nil {
		return nil, err
	}
	event.Status = models.LotteryStatusActive
	return event, nil
}

// Cancel cancels a pending or active event on behalf of the organizer
func (s *LotteryEventServiceImpl) Cancel(ctx context.Context, id primitive.ObjectID) (*models.CancelResult, error) {
	return s.cancel(ctx, func() (*models.LotteryEvent, error) {
		return s.eventRepo.FindByID(ctx, id)
	}, models.CancelReasonOrganizer)
}

// HandleTargetDeleted force-cancels the event of a deleted target
func (s *LotteryEventServiceImpl) HandleTargetDeleted(ctx context.Context, targetID string) (*models.CancelResult, error) {
	return s.cancel(ctx, func() (*models.LotteryEvent, error) {
		return s.eventRepo.FindByTargetID(ctx, targetID)
	}, models.CancelReasonTargetDeleted)
}

// cancel re-fetches and retries when the status changes between read and write
func (s *LotteryEventServiceImpl) cancel(ctx context.Context, load func() (*models.LotteryEvent, error), reason models.CancelReason) (*models.CancelResult, error) {
	for attempt := 0; attempt < maxCancelAttempts; attempt++ {
		event, err := load()
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return &models.CancelResult{Status: models.CancelOutcomeNotFound, Message: "lottery event not found"}, nil
			}
			return nil, fmt.Errorf("failed to load lottery event: %w", err)
		}

		result := &models.CancelResult{EventID: event.ID}
		if event.Status.IsTerminal() {
			result.Status = models.CancelOutcomeAlreadyFinalized
			result.Message = fmt.Sprintf("event is already %s", event.Status)
			return result, nil
		}

		err = s.eventRepo.CompareAndSetStatus(ctx, event.ID, event.Status, models.LotteryStatusCancelled, reason)
		switch {
		case err == nil:
			slog.Info("Lottery event cancelled", "eventId", event.ID.Hex(), "reason", reason)
			result.Status = models.CancelOutcomeSuccess
			result.Message = "event cancelled"
			return result, nil
		case errors.Is(err, repositories.ErrStaleState):
			continue
		case errors.Is(err, repositories.ErrNotFound):
			result.Status = models.CancelOutcomeNotFound
			result.Message = "lottery event not found"
			return result, nil
		default:
			return nil, fmt.Errorf("failed to cancel lottery event: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to cancel lottery event after %d attempts: %w", maxCancelAttempts, repositories.ErrStaleState)
}

// GetEvent retrieves an event with its winners
func (s *LotteryEventServiceImpl) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.LotteryEventDetails, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withWinners(ctx, event)
}

// GetEventByTarget retrieves the event of a target with its winners
func (s *LotteryEventServiceImpl) GetEventByTarget(ctx context.Context, targetID string) (*models.LotteryEventDetails, error) {
	event, err := s.eventRepo.FindByTargetID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return s.withWinners(ctx, event)
}

func (s *LotteryEventServiceImpl) withWinners(ctx context.Context, event *models.LotteryEvent) (*models.LotteryEventDetails, error) {
	winners, err := s.winnerRepo.FindByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load winners: %w", err)
	}
	return &models.LotteryEventDetails{Event: event, Winners: winners}, nil
}

// ListWinners retrieves the winners of an existing event
func (s *LotteryEventServiceImpl) ListWinners(ctx context.Context, id primitive.ObjectID) ([]models.LotteryWinner, error) {
	if _, err := s.eventRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.winnerRepo.FindByEventID(ctx, id)
}

// ListDrawable retrieves active events due at now
func (s *LotteryEventServiceImpl) ListDrawable(ctx context.Context, now time.Time) ([]*models.LotteryEvent, error) {
	return s.eventRepo.FindDrawable(ctx, now)
}

// DeleteEvent removes an event and its winners
func (s *LotteryEventServiceImpl) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Lottery event deleted", "eventId", id.Hex())
	return nil
}

// RecordContribution stores a numbered entry within a target
func (s *LotteryEventServiceImpl) RecordContribution(ctx context.Context, targetID string, req *models.ContributionRequest) (*models.Contribution, error) {
	if req.Position <= 0 {
		return nil, ErrInvalidContribution
	}
	c := &models.Contribution{
		TargetID:      targetID,
		Position:      req.Position,
		ParticipantID: strings.TrimSpace(req.ParticipantID),
	}
	if err := s.participantRepo.Record(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveContribution marks an entry deleted
func (s *LotteryEventServiceImpl) RemoveContribution(ctx context.Context, targetID string, position int) error {
	return s.participantRepo.MarkDeleted(ctx, targetID, position)
}

// eventFromRequest converts the request into an event without persisting
// state fields
func eventFromRequest(req *models.LotteryEventRequest) (*models.LotteryEvent, error) {
	positions, err := models.ParsePositionSet(req.SpecificPositions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	strategy := models.BackupStrategy(strings.TrimSpace(req.BackupStrategy))
	if strategy == "" {
		strategy = models.BackupStrategyContinue
	}
	return &models.LotteryEvent{
		ActivityName:           strings.TrimSpace(req.ActivityName),
		PrizeDescription:       strings.TrimSpace(req.PrizeDescription),
		PrizeImageURL:          strings.TrimSpace(req.PrizeImageURL),
		DrawTime:               req.DrawTime,
		WinnerCount:            req.WinnerCount,
		ParticipationThreshold: req.ParticipationThreshold,
		BackupStrategy:         strategy,
		SpecificPositions:      positions,
		AdditionalNotes:        req.AdditionalNotes,
	}, nil
}

func validateEvent(event *models.LotteryEvent, now time.Time) error {
	if err := event.Validate(now, true); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return nil
}
