package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WinType tags how a winner was chosen
type WinType string

const (
	WinTypeRandom   WinType = "random"
	WinTypeSpecific WinType = "specific"
)

// LotteryWinner is a participant recorded as winning a lottery event.
// Records are created once, together with the drawn status, and never updated.
type LotteryWinner struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EventID       primitive.ObjectID `bson:"eventId" json:"eventId"`
	ParticipantID string             `bson:"participantId" json:"participantId"`
	Position      int                `bson:"position" json:"position"`
	WinType       WinType            `bson:"winType" json:"winType"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// Participant is an eligible contributor as seen by the draw engine
type Participant struct {
	ID       string `bson:"participantId" json:"participantId"`
	Position int    `bson:"position" json:"position"`
}

// Contribution is a numbered entry (post) within a target. Anonymous
// contributions carry an empty ParticipantID.
type Contribution struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TargetID      string             `bson:"targetId" json:"targetId"`
	Position      int                `bson:"position" json:"position"`
	ParticipantID string             `bson:"participantId,omitempty" json:"participantId,omitempty"`
	Deleted       bool               `bson:"deleted" json:"deleted"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
