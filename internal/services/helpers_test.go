package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingSink struct {
	mu      sync.Mutex
	results []*models.DrawResult
}

func (s *recordingSink) Publish(ctx context.Context, result *models.DrawResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// clock is a settable time source shared by the services and the lock table
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store  *memory.Store
	locks  *memory.DrawLocks
	clock  *clock
	sink   *recordingSink
	draws  *DrawServiceImpl
	events *LotteryEventServiceImpl
}

func newFixture(t *testing.T, opts ...DrawOption) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		clock: &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		sink:  &recordingSink{},
	}
	f.locks = memory.NewDrawLocks().WithClock(f.clock.Now)
	f.draws = f.newDrawService(f.store, opts...)
	f.events = NewLotteryEventService(f.store, f.store, f.store).WithClock(f.clock.Now)
	return f
}

// newDrawService builds a draw service over a possibly wrapped event repository
func (f *fixture) newDrawService(events repositories.LotteryEventRepository, opts ...DrawOption) *DrawServiceImpl {
	base := []DrawOption{WithClock(f.clock.Now), WithResultsSink(f.sink), WithLockTTL(time.Minute)}
	return NewDrawService(events, f.store, f.locks, append(base, opts...)...)
}

// seedEvent stores an active event whose deadline has just passed
func (f *fixture) seedEvent(t *testing.T, mutate func(e *models.LotteryEvent)) *models.LotteryEvent {
	t.Helper()
	e := &models.LotteryEvent{
		TargetID:         primitive.NewObjectID().Hex(),
		ActivityName:     "Giveaway",
		PrizeDescription: "Sticker pack",
		DrawTime:         f.clock.Now().Add(-time.Minute),
		WinnerCount:      1,
		BackupStrategy:   models.BackupStrategyContinue,
		Status:           models.LotteryStatusActive,
	}
	if mutate != nil {
		mutate(e)
	}
	if err := f.store.Create(context.Background(), e); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return e
}

// contribute records one contribution per position, keyed to the participant id
func (f *fixture) contribute(t *testing.T, targetID string, byPosition map[int]string) {
	t.Helper()
	for position, participant := range byPosition {
		c := &models.Contribution{TargetID: targetID, Position: position, ParticipantID: participant}
		if err := f.store.Record(context.Background(), c); err != nil {
			t.Fatalf("record contribution %d: %v", position, err)
		}
	}
}

func (f *fixture) status(t *testing.T, id primitive.ObjectID) models.LotteryStatus {
	t.Helper()
	e, err := f.store.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	return e.Status
}

func (f *fixture) winners(t *testing.T, id primitive.ObjectID) []models.LotteryWinner {
	t.Helper()
	w, err := f.store.FindByEventID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindByEventID: %v", err)
	}
	return w
}

// hookedEvents lets a test intercept writes on top of the memory store
type hookedEvents struct {
	*memory.Store
	beforeCommit func(id primitive.ObjectID) error
	beforeCAS    func(id primitive.ObjectID) error
	beforeUpdate func(id primitive.ObjectID)
}

func (h *hookedEvents) CommitDraw(ctx context.Context, id primitive.ObjectID, winners []models.LotteryWinner, drawnAt time.Time) error {
	if h.beforeCommit != nil {
		if err := h.beforeCommit(id); err != nil {
			return err
		}
	}
	return h.Store.CommitDraw(ctx, id, winners, drawnAt)
}

func (h *hookedEvents) CompareAndSetStatus(ctx context.Context, id primitive.ObjectID, from, to models.LotteryStatus, reason models.CancelReason) error {
	if h.beforeCAS != nil {
		if err := h.beforeCAS(id); err != nil {
			return err
		}
	}
	return h.Store.CompareAndSetStatus(ctx, id, from, to, reason)
}

func (h *hookedEvents) UpdateConfig(ctx context.Context, event *models.LotteryEvent, expected models.LotteryStatus, now time.Time) error {
	if h.beforeUpdate != nil {
		h.beforeUpdate(event.ID)
	}
	return h.Store.UpdateConfig(ctx, event, expected, now)
}

func boolPtr(b bool) *bool { return &b }
