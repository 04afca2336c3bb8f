package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LotteryStatus represents the lifecycle status of a lottery event
type LotteryStatus string

const (
	LotteryStatusPending   LotteryStatus = "pending"
	LotteryStatusActive    LotteryStatus = "active"
	LotteryStatusDrawn     LotteryStatus = "drawn"
	LotteryStatusCancelled LotteryStatus = "cancelled"
)

// ErrInvalidTransition is returned when a status change is not allowed by the lifecycle
var ErrInvalidTransition = errors.New("invalid lottery status transition")

// transitions lists every legal move; anything absent is rejected.
var transitions = map[LotteryStatus][]LotteryStatus{
	LotteryStatusPending: {LotteryStatusActive, LotteryStatusCancelled},
	LotteryStatusActive:  {LotteryStatusDrawn, LotteryStatusCancelled},
}

// Valid reports whether s is one of the known statuses
func (s LotteryStatus) Valid() bool {
	switch s {
	case LotteryStatusPending, LotteryStatusActive, LotteryStatusDrawn, LotteryStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s
func (s LotteryStatus) IsTerminal() bool {
	return s == LotteryStatusDrawn || s == LotteryStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is legal
func (s LotteryStatus) CanTransitionTo(next LotteryStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition when from -> to is not a legal move
func ValidateTransition(from, to LotteryStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// BackupStrategy decides what happens when participation is below the threshold
type BackupStrategy string

const (
	BackupStrategyContinue BackupStrategy = "continue"
	BackupStrategyCancel   BackupStrategy = "cancel"
)

// Valid reports whether b is a known strategy
func (b BackupStrategy) Valid() bool {
	return b == BackupStrategyContinue || b == BackupStrategyCancel
}

// CancelReason records why an event ended up cancelled
type CancelReason string

const (
	CancelReasonOrganizer                 CancelReason = "organizer"
	CancelReasonInsufficientParticipation CancelReason = "insufficient_participation"
	CancelReasonTargetDeleted             CancelReason = "target_deleted"
)

// Field limits carried over from the forum plugin schema.
const (
	MaxActivityNameLength     = 200
	MaxPrizeDescriptionLength = 1000
	MaxPrizeImageURLLength    = 500
)

// LotteryEvent is a sweepstake attached to a single discussion target
type LotteryEvent struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TargetID               string             `bson:"targetId" json:"targetId"`
	ActivityName           string             `bson:"activityName" json:"activityName"`
	PrizeDescription       string             `bson:"prizeDescription" json:"prizeDescription"`
	PrizeImageURL          string             `bson:"prizeImageUrl,omitempty" json:"prizeImageUrl,omitempty"`
	DrawTime               time.Time          `bson:"drawTime" json:"drawTime"`
	WinnerCount            int                `bson:"winnerCount" json:"winnerCount"`
	ParticipationThreshold int                `bson:"participationThreshold" json:"participationThreshold"`
	BackupStrategy         BackupStrategy     `bson:"backupStrategy" json:"backupStrategy"`
	SpecificPositions      PositionSet        `bson:"specificPositions,omitempty" json:"specificPositions,omitempty"`
	AdditionalNotes        string             `bson:"additionalNotes,omitempty" json:"additionalNotes,omitempty"`
	Status                 LotteryStatus      `bson:"status" json:"status"`
	CancelReason           CancelReason       `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CreatedBy              string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	DrawnAt                time.Time          `bson:"drawnAt,omitempty" json:"drawnAt,omitempty"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Strategy returns the win type the selector must use for this event
func (e *LotteryEvent) Strategy() WinType {
	if e.SpecificPositions.Len() > 0 {
		return WinTypeSpecific
	}
	return WinTypeRandom
}

// IsDrawable reports whether the event is active and its deadline has passed.
// It has no side effects.
func IsDrawable(e *LotteryEvent, now time.Time) bool {
	if e == nil {
		return false
	}
	return e.Status == LotteryStatusActive && !now.Before(e.DrawTime)
}

// Validate checks the configuration invariants. The deadline is only
// required to be in the future when checkDeadline is set (creation and update).
func (e *LotteryEvent) Validate(now time.Time, checkDeadline bool) error {
	var problems []string

	if strings.TrimSpace(e.TargetID) == "" {
		problems = append(problems, "targetId is required")
	}
	if strings.TrimSpace(e.ActivityName) == "" {
		problems = append(problems, "activityName is required")
	} else if len([]rune(e.ActivityName)) > MaxActivityNameLength {
		problems = append(problems, fmt.Sprintf("activityName must be at most %d characters", MaxActivityNameLength))
	}
	if strings.TrimSpace(e.PrizeDescription) == "" {
		problems = append(problems, "prizeDescription is required")
	} else if len([]rune(e.PrizeDescription)) > MaxPrizeDescriptionLength {
		problems = append(problems, fmt.Sprintf("prizeDescription must be at most %d characters", MaxPrizeDescriptionLength))
	}
	if len(e.PrizeImageURL) > MaxPrizeImageURLLength {
		problems = append(problems, fmt.Sprintf("prizeImageUrl must be at most %d characters", MaxPrizeImageURLLength))
	}
	if e.DrawTime.IsZero() {
		problems = append(problems, "drawTime is required")
	} else if checkDeadline && !e.DrawTime.After(now) {
		problems = append(problems, "drawTime must be in the future")
	}
	if e.WinnerCount <= 0 {
		problems = append(problems, "winnerCount must be greater than 0")
	}
	if e.ParticipationThreshold < 0 {
		problems = append(problems, "participationThreshold must be greater than or equal to 0")
	}
	if !e.BackupStrategy.Valid() {
		problems = append(problems, "backupStrategy must be one of continue, cancel")
	}
	if err := e.SpecificPositions.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidationError lists every configuration problem found on an event
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}
