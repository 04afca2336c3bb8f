// Package memory provides in-process implementations of the repository
// interfaces. A single mutex guards all state, so every method is atomic.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.LotteryEventRepository  = (*Store)(nil)
	_ repositories.LotteryWinnerRepository = (*Store)(nil)
	_ repositories.ParticipantRepository   = (*Store)(nil)
)

// Store holds events, winners and contributions for all targets
type Store struct {
	mu            sync.RWMutex
	events        map[primitive.ObjectID]*models.LotteryEvent
	byTarget      map[string]primitive.ObjectID
	winners       map[primitive.ObjectID][]models.LotteryWinner
	contributions map[string]map[int]*models.Contribution // targetID -> position
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		events:        make(map[primitive.ObjectID]*models.LotteryEvent),
		byTarget:      make(map[string]primitive.ObjectID),
		winners:       make(map[primitive.ObjectID][]models.LotteryWinner),
		contributions: make(map[string]map[int]*models.Contribution),
	}
}

// Create inserts a new event
func (s *Store) Create(ctx context.Context, event *models.LotteryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byTarget[event.TargetID]; exists {
		return repositories.ErrDuplicateTarget
	}
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	stored := *event
	s.events[event.ID] = &stored
	s.byTarget[event.TargetID] = event.ID
	return nil
}

// FindByID returns a copy of the event
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (*models.LotteryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	found := *event
	return &found, nil
}

// FindByTargetID returns the event attached to a target
func (s *Store) FindByTargetID(ctx context.Context, targetID string) (*models.LotteryEvent, error) {
	s.mu.RLock()
	id, ok := s.byTarget[targetID]
	s.mu.RUnlock()
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// FindDrawable returns active events past their draw time, earliest first
func (s *Store) FindDrawable(ctx context.Context, now time.Time) ([]*models.LotteryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := []*models.LotteryEvent{}
	for _, event := range s.events {
		if models.IsDrawable(event, now) {
			found := *event
			events = append(events, &found)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].DrawTime.Before(events[j].DrawTime)
	})
	return events, nil
}

// UpdateConfig replaces configuration fields if the status still matches
// expected and the stored deadline has not been reached
func (s *Store) UpdateConfig(ctx context.Context, event *models.LotteryEvent, expected models.LotteryStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.events[event.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if current.Status != expected || !now.Before(current.DrawTime) {
		return repositories.ErrStaleState
	}
	current.ActivityName = event.ActivityName
	current.PrizeDescription = event.PrizeDescription
	current.PrizeImageURL = event.PrizeImageURL
	current.DrawTime = event.DrawTime
	current.WinnerCount = event.WinnerCount
	current.ParticipationThreshold = event.ParticipationThreshold
	current.BackupStrategy = event.BackupStrategy
	current.SpecificPositions = event.SpecificPositions
	current.AdditionalNotes = event.AdditionalNotes
	current.UpdatedAt = time.Now()
	return nil
}

// CompareAndSetStatus moves the event from -> to atomically
func (s *Store) CompareAndSetStatus(ctx context.Context, id primitive.ObjectID, from, to models.LotteryStatus, reason models.CancelReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if event.Status != from {
		return repositories.ErrStaleState
	}
	event.Status = to
	if to == models.LotteryStatusCancelled {
		event.CancelReason = reason
	}
	event.UpdatedAt = time.Now()
	return nil
}

// CommitDraw records winners and the drawn status under one lock acquisition
func (s *Store) CommitDraw(ctx context.Context, id primitive.ObjectID, winners []models.LotteryWinner, drawnAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if event.Status != models.LotteryStatusActive {
		return repositories.ErrStaleState
	}

	seen := make(map[string]struct{}, len(s.winners[id])+len(winners))
	for _, w := range s.winners[id] {
		seen[w.ParticipantID] = struct{}{}
	}
	staged := make([]models.LotteryWinner, 0, len(winners))
	for _, w := range winners {
		if _, dup := seen[w.ParticipantID]; dup {
			return repositories.ErrDuplicateWinner
		}
		seen[w.ParticipantID] = struct{}{}
		if w.ID.IsZero() {
			w.ID = primitive.NewObjectID()
		}
		w.EventID = id
		w.CreatedAt = drawnAt
		staged = append(staged, w)
	}

	s.winners[id] = append(s.winners[id], staged...)
	event.Status = models.LotteryStatusDrawn
	event.DrawnAt = drawnAt
	event.UpdatedAt = drawnAt
	return nil
}

// Delete removes the event and its winners
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(s.byTarget, event.TargetID)
	delete(s.events, id)
	delete(s.winners, id)
	return nil
}

// FindByEventID returns the winners of an event ordered by position
func (s *Store) FindByEventID(ctx context.Context, eventID primitive.ObjectID) ([]models.LotteryWinner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	winners := make([]models.LotteryWinner, len(s.winners[eventID]))
	copy(winners, s.winners[eventID])
	sort.Slice(winners, func(i, j int) bool {
		return winners[i].Position < winners[j].Position
	})
	return winners, nil
}

// ListEligible returns identified, non-deleted contributions at or above minPosition
func (s *Store) ListEligible(ctx context.Context, targetID string, minPosition int) ([]models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	participants := []models.Participant{}
	for position, c := range s.contributions[targetID] {
		if position < minPosition || c.Deleted || c.ParticipantID == "" {
			continue
		}
		participants = append(participants, models.Participant{ID: c.ParticipantID, Position: position})
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].Position < participants[j].Position
	})
	return participants, nil
}

// Record stores a contribution; positions are unique within a target
func (s *Store) Record(ctx context.Context, contribution *models.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byPosition, ok := s.contributions[contribution.TargetID]
	if !ok {
		byPosition = make(map[int]*models.Contribution)
		s.contributions[contribution.TargetID] = byPosition
	}
	if _, taken := byPosition[contribution.Position]; taken {
		return repositories.ErrDuplicateContribution
	}
	if contribution.ID.IsZero() {
		contribution.ID = primitive.NewObjectID()
	}
	now := time.Now()
	contribution.CreatedAt = now
	contribution.UpdatedAt = now

	stored := *contribution
	byPosition[contribution.Position] = &stored
	return nil
}

// MarkDeleted flags a contribution so it is no longer eligible
func (s *Store) MarkDeleted(ctx context.Context, targetID string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contributions[targetID][position]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Deleted = true
	c.UpdatedAt = time.Now()
	return nil
}
