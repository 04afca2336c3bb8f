package models

import "time"

// LotteryEventRequest is the payload for creating or updating a lottery event.
// SpecificPositions accepts the comma separated form used by the forum composer.
type LotteryEventRequest struct {
	TargetID               string    `json:"targetId"`
	ActivityName           string    `json:"activityName" binding:"required"`
	PrizeDescription       string    `json:"prizeDescription" binding:"required"`
	PrizeImageURL          string    `json:"prizeImageUrl"`
	DrawTime               time.Time `json:"drawTime" binding:"required"`
	WinnerCount            int       `json:"winnerCount" binding:"required"`
	ParticipationThreshold int       `json:"participationThreshold"`
	BackupStrategy         string    `json:"backupStrategy"`
	SpecificPositions      string    `json:"specificPositions"`
	AdditionalNotes        string    `json:"additionalNotes"`
	// Activate defaults to true: events open for participation as soon as they are created.
	Activate *bool `json:"activate,omitempty"`
}

// ContributionRequest records a numbered entry within a target
type ContributionRequest struct {
	Position      int    `json:"position" binding:"required"`
	ParticipantID string `json:"participantId"`
}

// LotteryEventDetails bundles an event with its recorded winners
type LotteryEventDetails struct {
	Event   *LotteryEvent   `json:"event"`
	Winners []LotteryWinner `json:"winners"`
}
