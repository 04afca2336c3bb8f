package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.ParticipantRepository = (*ParticipantRepository)(nil)

// ParticipantRepository stores numbered contributions per target
type ParticipantRepository struct {
	collection *mongo.Collection
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *mongo.Database) *ParticipantRepository {
	return &ParticipantRepository{
		collection: db.Collection(ContributionsCollection),
	}
}

// ListEligible finds identified, non-deleted contributions at or above minPosition
func (r *ParticipantRepository) ListEligible(ctx context.Context, targetID string, minPosition int) ([]models.Participant, error) {
	filter := bson.M{
		"targetId":      targetID,
		"position":      bson.M{"$gte": minPosition},
		"deleted":       false,
		"participantId": bson.M{"$exists": true, "$ne": ""},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "position", Value: 1}}).
		SetProjection(bson.M{"participantId": 1, "position": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list eligible contributions: %w", err)
	}
	defer cursor.Close(ctx)

	var participants []models.Participant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, fmt.Errorf("decode contributions: %w", err)
	}
	if participants == nil {
		participants = []models.Participant{}
	}
	return participants, nil
}

// Record inserts a contribution; the (targetId, position) index rejects repeats
func (r *ParticipantRepository) Record(ctx context.Context, contribution *models.Contribution) error {
	if contribution.ID.IsZero() {
		contribution.ID = primitive.NewObjectID()
	}
	contribution.CreatedAt = time.Now()
	contribution.UpdatedAt = contribution.CreatedAt

	if _, err := r.collection.InsertOne(ctx, contribution); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicateContribution
		}
		return fmt.Errorf("insert contribution: %w", err)
	}
	return nil
}

// MarkDeleted flags a contribution as deleted
func (r *ParticipantRepository) MarkDeleted(ctx context.Context, targetID string, position int) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"targetId": targetID, "position": position},
		bson.M{"$set": bson.M{"deleted": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("mark contribution deleted: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
