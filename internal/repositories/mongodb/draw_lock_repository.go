package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.DrawLockRepository = (*DrawLockRepository)(nil)

// DrawLockRepository implements per-event leases on a collection keyed by
// the lock name. A lease is a document {_id, owner, expiresAt}.
type DrawLockRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewDrawLockRepository creates a new DrawLockRepository
func NewDrawLockRepository(db *mongo.Database) *DrawLockRepository {
	return &DrawLockRepository{
		collection: db.Collection(DrawLocksCollection),
		now:        time.Now,
	}
}

// Acquire takes the lease for key if it is free or expired.
//
// The filter only matches an expired lease. When a live lease exists the
// upsert tries to insert a second document with the same _id and fails with
// a duplicate key error, which means the lock is held.
func (r *DrawLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (repositories.Lease, error) {
	now := r.now()
	owner := uuid.NewString()

	filter := bson.M{"_id": key, "expiresAt": bson.M{"$lte": now}}
	update := bson.M{"$set": bson.M{
		"owner":      owner,
		"acquiredAt": now,
		"expiresAt":  now.Add(ttl),
	}}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repositories.ErrLockHeld
		}
		return nil, fmt.Errorf("acquire draw lock: %w", err)
	}
	return &mongoLease{collection: r.collection, key: key, owner: owner}, nil
}

type mongoLease struct {
	collection *mongo.Collection
	key        string
	owner      string
}

// Release deletes the lease only while this owner still holds it
func (l *mongoLease) Release(ctx context.Context) error {
	if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": l.key, "owner": l.owner}); err != nil {
		return fmt.Errorf("release draw lock: %w", err)
	}
	return nil
}
