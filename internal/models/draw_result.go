package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawOutcome is the typed result of a draw attempt
type DrawOutcome string

const (
	DrawOutcomeSuccess            DrawOutcome = "success"
	DrawOutcomeAlreadyProcessed   DrawOutcome = "already_processed"
	DrawOutcomeInProgress         DrawOutcome = "draw_in_progress"
	DrawOutcomeNotDrawable        DrawOutcome = "not_drawable"
	DrawOutcomeCancelled          DrawOutcome = "cancelled"
	DrawOutcomeNoWinners          DrawOutcome = "no_winners"
	DrawOutcomePersistenceFailure DrawOutcome = "persistence_failure"
)

// DrawResult is returned by every draw attempt
type DrawResult struct {
	EventID                   primitive.ObjectID `json:"eventId"`
	TargetID                  string             `json:"targetId,omitempty"`
	Status                    DrawOutcome        `json:"status"`
	Winners                   []LotteryWinner    `json:"winners"`
	EligibleCount             int                `json:"eligibleCount"`
	InsufficientParticipation bool               `json:"insufficientParticipation,omitempty"`
	Message                   string             `json:"message"`
}

// CancelOutcome is the typed result of a cancellation
type CancelOutcome string

const (
	CancelOutcomeSuccess          CancelOutcome = "success"
	CancelOutcomeAlreadyFinalized CancelOutcome = "already_finalized"
	CancelOutcomeNotFound         CancelOutcome = "not_found"
)

// CancelResult is returned by Cancel
type CancelResult struct {
	EventID primitive.ObjectID `json:"eventId"`
	Status  CancelOutcome      `json:"status"`
	Message string             `json:"message"`
}
