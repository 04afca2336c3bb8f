package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories/memory"
	"github.com/ArowuTest/forum-lottery-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seed(t *testing.T, store *memory.Store, drawTime time.Time, participants map[int]string) *models.LotteryEvent {
	t.Helper()
	ctx := context.Background()
	e := &models.LotteryEvent{
		TargetID:       primitive.NewObjectID().Hex(),
		DrawTime:       drawTime,
		WinnerCount:    1,
		BackupStrategy: models.BackupStrategyContinue,
		Status:         models.LotteryStatusActive,
	}
	if err := store.Create(ctx, e); err != nil {
		t.Fatal(err)
	}
	for pos, id := range participants {
		if err := store.Record(ctx, &models.Contribution{TargetID: e.TargetID, Position: pos, ParticipantID: id}); err != nil {
			t.Fatal(err)
		}
	}
	return e
}

func TestDrawJobRunOnce(t *testing.T) {
	store := memory.NewStore()
	now := time.Now()
	due := seed(t, store, now.Add(-time.Minute), map[int]string{2: "a", 3: "b"})
	later := seed(t, store, now.Add(time.Hour), map[int]string{2: "c"})

	events := services.NewLotteryEventService(store, store, store)
	draws := services.NewDrawService(store, store, memory.NewDrawLocks(), services.WithResultsSink(services.MultiSink{}))
	job := NewDrawJob(events, draws, time.Second)

	if err := job.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, _ := store.FindByID(context.Background(), due.ID)
	if got.Status != models.LotteryStatusDrawn {
		t.Errorf("due event status = %s", got.Status)
	}
	got, _ = store.FindByID(context.Background(), later.ID)
	if got.Status != models.LotteryStatusActive {
		t.Errorf("future event status = %s", got.Status)
	}

	// nothing left to draw
	job.Run()
	stats := job.Stats()
	if stats.Runs != 2 || stats.Drawn != 1 || stats.Failures != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

type failingLister struct{}

func (failingLister) ListDrawable(context.Context, time.Time) ([]*models.LotteryEvent, error) {
	return nil, errors.New("db down")
}

func TestDrawJobCountsFailures(t *testing.T) {
	job := NewDrawJob(failingLister{}, nil, time.Second)
	if err := job.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if job.Stats().Failures != 1 {
		t.Errorf("failures = %d", job.Stats().Failures)
	}
}

func TestDrawJobSkipsOverlappingRun(t *testing.T) {
	job := NewDrawJob(failingLister{}, nil, time.Second)
	job.running.Store(true)
	job.Run()
	if job.Stats().Runs != 0 {
		t.Errorf("overlapping tick ran")
	}
}

func TestNewScheduler(t *testing.T) {
	job := NewDrawJob(failingLister{}, nil, time.Second)
	if _, err := NewScheduler("not a schedule", job); err == nil {
		t.Error("invalid spec accepted")
	}
	c, err := NewScheduler("@every 1m", job)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("entries = %d", len(c.Entries()))
	}
}
