package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// DefaultLockTTL bounds how long a crashed draw can block the next attempt
const DefaultLockTTL = 2 * time.Minute

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawServiceImpl coordinates a draw: lock, eligibility, backup policy,
// selection and the atomic commit of winners
type DrawServiceImpl struct {
	eventRepo repositories.LotteryEventRepository
	lockRepo  repositories.DrawLockRepository
	evaluator *EligibilityEvaluator
	selector  *WinnerSelector
	sink      ResultsSink
	lockTTL   time.Duration
	now       func() time.Time
}

// DrawOption customises a DrawServiceImpl
type DrawOption func(*DrawServiceImpl)

// WithLockTTL sets the lease duration for the per-event draw lock
func WithLockTTL(ttl time.Duration) DrawOption {
	return func(s *DrawServiceImpl) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithResultsSink sets where committed results are published
func WithResultsSink(sink ResultsSink) DrawOption {
	return func(s *DrawServiceImpl) { s.sink = sink }
}

// WithRand replaces the random source used for uniform selection
func WithRand(rnd Rand) DrawOption {
	return func(s *DrawServiceImpl) { s.selector = NewWinnerSelector(rnd) }
}

// WithClock replaces the time source
func WithClock(now func() time.Time) DrawOption {
	return func(s *DrawServiceImpl) { s.now = now }
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(
	eventRepo repositories.LotteryEventRepository,
	participantRepo repositories.ParticipantRepository,
	lockRepo repositories.DrawLockRepository,
	opts ...DrawOption,
) *DrawServiceImpl {
	s := &DrawServiceImpl{
		eventRepo: eventRepo,
		lockRepo:  lockRepo,
		evaluator: NewEligibilityEvaluator(participantRepo),
		selector:  NewWinnerSelector(nil),
		sink:      LogSink{},
		lockTTL:   DefaultLockTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AttemptDraw draws winners for an event whose deadline has passed.
// At most one concurrent call for the same event can reach the commit; the
// status compare-and-set inside CommitDraw guarantees the rest observe
// already_processed even if the lease expired underneath them.
func (s *DrawServiceImpl) AttemptDraw(ctx context.Context, eventID primitive.ObjectID) (*models.DrawResult, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("lottery event %s: %w", eventID.Hex(), err)
		}
		return nil, fmt.Errorf("failed to load lottery event: %w", err)
	}

	result := &models.DrawResult{EventID: eventID, TargetID: event.TargetID, Winners: []models.LotteryWinner{}}

	if !models.IsDrawable(event, s.now()) {
		result.Status = models.DrawOutcomeNotDrawable
		result.Message = fmt.Sprintf("event is %s and draws at %s", event.Status, event.DrawTime.UTC().Format(time.RFC3339))
		return result, nil
	}

	lease, err := s.lockRepo.Acquire(ctx, drawLockKey(eventID), s.lockTTL)
	if err != nil {
		if errors.Is(err, repositories.ErrLockHeld) {
			result.Status = models.DrawOutcomeInProgress
			result.Message = "another draw for this event is in progress"
			return result, nil
		}
		return nil, fmt.Errorf("failed to acquire draw lock: %w", err)
	}
	defer func() {
		// release even if the caller's context is already done
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := lease.Release(releaseCtx); err != nil {
			slog.Warn("Failed to release draw lock", "error", err, "eventId", eventID.Hex())
		}
	}()

	// the event may have been drawn or cancelled while we waited for the lock
	event, err = s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return s.persistenceFailure(result, "reload event", err), nil
	}
	if event.Status != models.LotteryStatusActive {
		result.Status = models.DrawOutcomeAlreadyProcessed
		result.Message = fmt.Sprintf("event is already %s", event.Status)
		return result, nil
	}

	set, err := s.evaluator.Evaluate(ctx, event)
	if err != nil {
		return s.persistenceFailure(result, "evaluate eligibility", err), nil
	}
	result.EligibleCount = set.Count()

	if set.Count() < event.ParticipationThreshold {
		if event.BackupStrategy == models.BackupStrategyCancel {
			return s.cancelForInsufficientParticipation(ctx, event, result), nil
		}
		result.InsufficientParticipation = true
	}

	winners := s.selector.Select(event, set)
	if len(winners) == 0 {
		result.Status = models.DrawOutcomeNoWinners
		result.Message = "no eligible participant matched the draw rules"
		slog.Info("Lottery draw produced no winners", "eventId", eventID.Hex(), "eligible", set.Count())
		return result, nil
	}

	drawnAt := s.now()
	for i := range winners {
		winners[i].ID = primitive.NewObjectID()
		winners[i].EventID = eventID
		winners[i].CreatedAt = drawnAt
	}
	if err := s.eventRepo.CommitDraw(ctx, eventID, winners, drawnAt); err != nil {
		if errors.Is(err, repositories.ErrStaleState) {
			result.Status = models.DrawOutcomeAlreadyProcessed
			result.Message = "event was finalized by another draw"
			return result, nil
		}
		return s.persistenceFailure(result, "commit draw", err), nil
	}

	result.Status = models.DrawOutcomeSuccess
	result.Winners = winners
	result.Message = fmt.Sprintf("%d winner(s) drawn", len(winners))
	if result.InsufficientParticipation {
		result.Message += fmt.Sprintf(" with %d of %d required participants", set.Count(), event.ParticipationThreshold)
	}
	s.publish(ctx, result)
	return result, nil
}

func (s *DrawServiceImpl) cancelForInsufficientParticipation(ctx context.Context, event *models.LotteryEvent, result *models.DrawResult) *models.DrawResult {
	err := s.eventRepo.CompareAndSetStatus(ctx, event.ID, models.LotteryStatusActive, models.LotteryStatusCancelled, models.CancelReasonInsufficientParticipation)
	if err != nil {
		if errors.Is(err, repositories.ErrStaleState) {
			result.Status = models.DrawOutcomeAlreadyProcessed
			result.Message = "event was finalized by another draw"
			return result
		}
		return s.persistenceFailure(result, "cancel event", err)
	}
	result.Status = models.DrawOutcomeCancelled
	result.Message = fmt.Sprintf("cancelled: %d of %d required participants", result.EligibleCount, event.ParticipationThreshold)
	s.publish(ctx, result)
	return result
}

func (s *DrawServiceImpl) persistenceFailure(result *models.DrawResult, step string, err error) *models.DrawResult {
	slog.Error("Lottery draw failed", "error", err, "step", step, "eventId", result.EventID.Hex())
	result.Status = models.DrawOutcomePersistenceFailure
	result.Winners = []models.LotteryWinner{}
	result.Message = "draw could not be saved, it is safe to retry"
	return result
}

func (s *DrawServiceImpl) publish(ctx context.Context, result *models.DrawResult) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Publish(ctx, result); err != nil {
		slog.Error("Failed to publish draw result", "error", err, "eventId", result.EventID.Hex())
	}
}

func drawLockKey(eventID primitive.ObjectID) string {
	return "lottery_draw:" + eventID.Hex()
}
