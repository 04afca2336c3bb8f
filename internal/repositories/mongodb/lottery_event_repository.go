package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure LotteryEventRepository implements the interface
var _ repositories.LotteryEventRepository = (*LotteryEventRepository)(nil)

// LotteryEventRepository handles MongoDB operations for lottery events and
// the winner writes that must commit together with a status change
type LotteryEventRepository struct {
	client  *mongo.Client
	events  *mongo.Collection
	winners *mongo.Collection
}

// NewLotteryEventRepository creates a new LotteryEventRepository.
// CommitDraw and Delete use multi-document transactions, so the deployment
// must be a replica set or sharded cluster.
func NewLotteryEventRepository(db *mongo.Database) *LotteryEventRepository {
	return &LotteryEventRepository{
		client:  db.Client(),
		events:  db.Collection(EventsCollection),
		winners: db.Collection(WinnersCollection),
	}
}

// Create inserts a new lottery event
func (r *LotteryEventRepository) Create(ctx context.Context, event *models.LotteryEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt

	_, err := r.events.InsertOne(ctx, event)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicateTarget
		}
		return fmt.Errorf("insert lottery event: %w", err)
	}
	return nil
}

// FindByID finds a lottery event by ID
func (r *LotteryEventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.LotteryEvent, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByTargetID finds the lottery event attached to a target
func (r *LotteryEventRepository) FindByTargetID(ctx context.Context, targetID string) (*models.LotteryEvent, error) {
	return r.findOne(ctx, bson.M{"targetId": targetID})
}

func (r *LotteryEventRepository) findOne(ctx context.Context, filter bson.M) (*models.LotteryEvent, error) {
	var event models.LotteryEvent
	err := r.events.FindOne(ctx, filter).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("find lottery event: %w", err)
	}
	return &event, nil
}

// FindDrawable finds active events whose draw time has passed, earliest first
func (r *LotteryEventRepository) FindDrawable(ctx context.Context, now time.Time) ([]*models.LotteryEvent, error) {
	filter := bson.M{
		"status":   models.LotteryStatusActive,
		"drawTime": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "drawTime", Value: 1}})

	cursor, err := r.events.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find drawable events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*models.LotteryEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode drawable events: %w", err)
	}
	if events == nil {
		events = []*models.LotteryEvent{}
	}
	return events, nil
}

// UpdateConfig replaces the configuration fields while the status is still
// expected and the stored draw time lies after now
func (r *LotteryEventRepository) UpdateConfig(ctx context.Context, event *models.LotteryEvent, expected models.LotteryStatus, now time.Time) error {
	event.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"activityName":           event.ActivityName,
			"prizeDescription":       event.PrizeDescription,
			"prizeImageUrl":          event.PrizeImageURL,
			"drawTime":               event.DrawTime,
			"winnerCount":            event.WinnerCount,
			"participationThreshold": event.ParticipationThreshold,
			"backupStrategy":         event.BackupStrategy,
			"specificPositions":      event.SpecificPositions,
			"additionalNotes":        event.AdditionalNotes,
			"updatedAt":              event.UpdatedAt,
		},
	}
	res, err := r.events.UpdateOne(ctx, bson.M{
		"_id":      event.ID,
		"status":   expected,
		"drawTime": bson.M{"$gt": now},
	}, update)
	if err != nil {
		return fmt.Errorf("update lottery event: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missOrStale(ctx, event.ID)
	}
	return nil
}

// CompareAndSetStatus moves the event from one status to another only if
// the stored status still equals from
func (r *LotteryEventRepository) CompareAndSetStatus(ctx context.Context, id primitive.ObjectID, from, to models.LotteryStatus, reason models.CancelReason) error {
	set := bson.M{"status": to, "updatedAt": time.Now()}
	if to == models.LotteryStatusCancelled && reason != "" {
		set["cancelReason"] = reason
	}
	res, err := r.events.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update lottery status: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missOrStale(ctx, id)
	}
	return nil
}

// CommitDraw flips active -> drawn and inserts the winners inside one
// transaction. A failed insert aborts the status change as well.
func (r *LotteryEventRepository) CommitDraw(ctx context.Context, id primitive.ObjectID, winners []models.LotteryWinner, drawnAt time.Time) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	docs := make([]interface{}, 0, len(winners))
	for _, w := range winners {
		if w.ID.IsZero() {
			w.ID = primitive.NewObjectID()
		}
		w.EventID = id
		w.CreatedAt = drawnAt
		docs = append(docs, w)
	}

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.events.UpdateOne(sc,
			bson.M{"_id": id, "status": models.LotteryStatusActive},
			bson.M{"$set": bson.M{
				"status":    models.LotteryStatusDrawn,
				"drawnAt":   drawnAt,
				"updatedAt": drawnAt,
			}},
		)
		if err != nil {
			return nil, fmt.Errorf("mark event drawn: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, repositories.ErrStaleState
		}
		if len(docs) == 0 {
			return nil, nil
		}
		if _, err := r.winners.InsertMany(sc, docs); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, repositories.ErrDuplicateWinner
			}
			return nil, fmt.Errorf("insert winners: %w", err)
		}
		return nil, nil
	})
	return err
}

// Delete removes the event and its winners together
func (r *LotteryEventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.winners.DeleteMany(sc, bson.M{"eventId": id}); err != nil {
			return nil, fmt.Errorf("delete winners: %w", err)
		}
		res, err := r.events.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, fmt.Errorf("delete lottery event: %w", err)
		}
		if res.DeletedCount == 0 {
			return nil, repositories.ErrNotFound
		}
		return nil, nil
	})
	return err
}

// missOrStale tells apart a missing document from a status mismatch after
// a filtered update matched nothing
func (r *LotteryEventRepository) missOrStale(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.events.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("count lottery event: %w", err)
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return repositories.ErrStaleState
}
