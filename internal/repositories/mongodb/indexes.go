package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	EventsCollection        = "lottery_events"
	WinnersCollection       = "lottery_winners"
	ContributionsCollection = "contributions"
	DrawLocksCollection     = "draw_locks"
)

// EnsureIndexes creates the indexes the repositories rely on for uniqueness.
// Safe to run on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		EventsCollection: {
			{Keys: bson.D{{Key: "targetId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "drawTime", Value: 1}}},
		},
		WinnersCollection: {
			{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "participantId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ContributionsCollection: {
			{Keys: bson.D{{Key: "targetId", Value: 1}, {Key: "position", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		DrawLocksCollection: {
			// stale leases are taken over on acquire; the TTL index only tidies up
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
