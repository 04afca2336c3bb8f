package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
)

func newActiveEvent(t *testing.T, s *Store, target string) *models.LotteryEvent {
	t.Helper()
	e := &models.LotteryEvent{TargetID: target, Status: models.LotteryStatusActive, DrawTime: time.Now().Add(-time.Minute), WinnerCount: 1}
	if err := s.Create(context.Background(), e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return e
}

func TestStoreDuplicateTarget(t *testing.T) {
	s := NewStore()
	newActiveEvent(t, s, "post-1")
	err := s.Create(context.Background(), &models.LotteryEvent{TargetID: "post-1"})
	if !errors.Is(err, repositories.ErrDuplicateTarget) {
		t.Fatalf("expected ErrDuplicateTarget, got %v", err)
	}
}

func TestStoreCompareAndSetStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := newActiveEvent(t, s, "post-1")

	if err := s.CompareAndSetStatus(ctx, e.ID, models.LotteryStatusPending, models.LotteryStatusCancelled, models.CancelReasonOrganizer); !errors.Is(err, repositories.ErrStaleState) {
		t.Fatalf("expected ErrStaleState, got %v", err)
	}
	if err := s.CompareAndSetStatus(ctx, e.ID, models.LotteryStatusActive, models.LotteryStatusCancelled, models.CancelReasonOrganizer); err != nil {
		t.Fatalf("CompareAndSetStatus: %v", err)
	}
	got, _ := s.FindByID(ctx, e.ID)
	if got.Status != models.LotteryStatusCancelled || got.CancelReason != models.CancelReasonOrganizer {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestStoreCommitDrawIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := newActiveEvent(t, s, "post-1")

	dup := []models.LotteryWinner{
		{ParticipantID: "u1", Position: 1, WinType: models.WinTypeRandom},
		{ParticipantID: "u1", Position: 2, WinType: models.WinTypeRandom},
	}
	if err := s.CommitDraw(ctx, e.ID, dup, time.Now()); !errors.Is(err, repositories.ErrDuplicateWinner) {
		t.Fatalf("expected ErrDuplicateWinner, got %v", err)
	}
	got, _ := s.FindByID(ctx, e.ID)
	if got.Status != models.LotteryStatusActive {
		t.Fatalf("status changed on failed commit: %s", got.Status)
	}
	winners, _ := s.FindByEventID(ctx, e.ID)
	if len(winners) != 0 {
		t.Fatalf("winners written on failed commit: %v", winners)
	}

	ok := []models.LotteryWinner{{ParticipantID: "u2", Position: 4, WinType: models.WinTypeRandom}}
	if err := s.CommitDraw(ctx, e.ID, ok, time.Now()); err != nil {
		t.Fatalf("CommitDraw: %v", err)
	}
	if err := s.CommitDraw(ctx, e.ID, ok, time.Now()); !errors.Is(err, repositories.ErrStaleState) {
		t.Fatalf("second commit: expected ErrStaleState, got %v", err)
	}
	winners, _ = s.FindByEventID(ctx, e.ID)
	if len(winners) != 1 || winners[0].EventID != e.ID {
		t.Fatalf("unexpected winners %+v", winners)
	}
}

func TestStoreListEligible(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, c := range []models.Contribution{
		{TargetID: "t", Position: 1, ParticipantID: "op"},
		{TargetID: "t", Position: 4, ParticipantID: "b"},
		{TargetID: "t", Position: 2, ParticipantID: "a"},
		{TargetID: "t", Position: 3},
		{TargetID: "t", Position: 5, ParticipantID: "c"},
		{TargetID: "other", Position: 2, ParticipantID: "z"},
	} {
		c := c
		if err := s.Record(ctx, &c); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := s.MarkDeleted(ctx, "t", 5); err != nil {
		t.Fatalf("MarkDeleted: %v", err)
	}
	if err := s.Record(ctx, &models.Contribution{TargetID: "t", Position: 4, ParticipantID: "x"}); !errors.Is(err, repositories.ErrDuplicateContribution) {
		t.Fatalf("expected ErrDuplicateContribution, got %v", err)
	}

	got, err := s.ListEligible(ctx, "t", 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Participant{{ID: "a", Position: 2}, {ID: "b", Position: 4}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStoreDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := newActiveEvent(t, s, "post-1")
	if err := s.CommitDraw(ctx, e.ID, []models.LotteryWinner{{ParticipantID: "u", Position: 2}}, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FindByTargetID(ctx, "post-1"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	winners, _ := s.FindByEventID(ctx, e.ID)
	if len(winners) != 0 {
		t.Errorf("winners survived delete: %v", winners)
	}
}

func TestDrawLocksExpiryAndOwnership(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	locks := NewDrawLocks().WithClock(func() time.Time { return now })

	first, err := locks.Acquire(ctx, "k", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := locks.Acquire(ctx, "k", time.Minute); !errors.Is(err, repositories.ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	second, err := locks.Acquire(ctx, "k", time.Minute)
	if err != nil {
		t.Fatalf("expired lease not taken over: %v", err)
	}

	// the stale owner must not release the new lease
	_ = first.Release(ctx)
	if _, err := locks.Acquire(ctx, "k", time.Minute); !errors.Is(err, repositories.ErrLockHeld) {
		t.Fatalf("stale release freed the lock: %v", err)
	}
	_ = second.Release(ctx)
	if _, err := locks.Acquire(ctx, "k", time.Minute); err != nil {
		t.Fatalf("lock not free after release: %v", err)
	}
}

func TestStoreUpdateConfigAfterDeadline(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	deadline := time.Now().Add(time.Hour)
	e := &models.LotteryEvent{TargetID: "post-1", Status: models.LotteryStatusActive, DrawTime: deadline, WinnerCount: 1}
	if err := s.Create(ctx, e); err != nil {
		t.Fatal(err)
	}

	changed := *e
	changed.WinnerCount = 3
	if err := s.UpdateConfig(ctx, &changed, models.LotteryStatusActive, deadline); !errors.Is(err, repositories.ErrStaleState) {
		t.Fatalf("update at deadline: expected ErrStaleState, got %v", err)
	}
	got, _ := s.FindByID(ctx, e.ID)
	if got.WinnerCount != 1 {
		t.Errorf("winner count = %d, want unchanged", got.WinnerCount)
	}

	if err := s.UpdateConfig(ctx, &changed, models.LotteryStatusActive, deadline.Add(-time.Minute)); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	got, _ = s.FindByID(ctx, e.ID)
	if got.WinnerCount != 3 {
		t.Errorf("winner count = %d, want 3", got.WinnerCount)
	}
}
