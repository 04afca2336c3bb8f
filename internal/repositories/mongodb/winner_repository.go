package mongodb

import (
	"context"
	"fmt"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.LotteryWinnerRepository = (*WinnerRepository)(nil)

// WinnerRepository reads lottery winner records. Writes happen only through
// LotteryEventRepository.CommitDraw.
type WinnerRepository struct {
	collection *mongo.Collection
}

// NewWinnerRepository creates a new WinnerRepository
func NewWinnerRepository(db *mongo.Database) *WinnerRepository {
	return &WinnerRepository{
		collection: db.Collection(WinnersCollection),
	}
}

// FindByEventID finds winners of an event ordered by position
func (r *WinnerRepository) FindByEventID(ctx context.Context, eventID primitive.ObjectID) ([]models.LotteryWinner, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"eventId": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find winners: %w", err)
	}
	defer cursor.Close(ctx)

	var winners []models.LotteryWinner
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, fmt.Errorf("decode winners: %w", err)
	}
	if winners == nil {
		winners = []models.LotteryWinner{}
	}
	return winners, nil
}
