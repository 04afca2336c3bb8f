package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
)

// EligibleSet is the ordered set of contributions that may win a draw.
// Entries are unique by position; Participants keeps the lowest position of
// each distinct participant.
type EligibleSet struct {
	participants []models.Participant
	byPosition   map[int]models.Participant
}

// NewEligibleSet orders entries by position and drops anonymous entries and
// repeated positions
func NewEligibleSet(entries []models.Participant) EligibleSet {
	sorted := make([]models.Participant, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" || e.Position <= 0 {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	set := EligibleSet{byPosition: make(map[int]models.Participant, len(sorted))}
	seen := make(map[string]struct{}, len(sorted))
	for _, e := range sorted {
		if _, dup := set.byPosition[e.Position]; dup {
			continue
		}
		set.byPosition[e.Position] = e
		if _, ok := seen[e.ID]; !ok {
			seen[e.ID] = struct{}{}
			set.participants = append(set.participants, e)
		}
	}
	return set
}

// Participants returns one entry per participant at their lowest position
func (s EligibleSet) Participants() []models.Participant {
	out := make([]models.Participant, len(s.participants))
	copy(out, s.participants)
	return out
}

// Count is the number of distinct eligible participants
func (s EligibleSet) Count() int {
	return len(s.participants)
}

// At returns the entry occupying position, if any
func (s EligibleSet) At(position int) (models.Participant, bool) {
	p, ok := s.byPosition[position]
	return p, ok
}

// EligibilityEvaluator builds the eligible set for an event
type EligibilityEvaluator struct {
	participants repositories.ParticipantRepository
}

// NewEligibilityEvaluator creates a new EligibilityEvaluator
func NewEligibilityEvaluator(participants repositories.ParticipantRepository) *EligibilityEvaluator {
	return &EligibilityEvaluator{participants: participants}
}

// Evaluate lists contributions at or above the event's participation
// threshold. It does not modify anything.
func (e *EligibilityEvaluator) Evaluate(ctx context.Context, event *models.LotteryEvent) (EligibleSet, error) {
	entries, err := e.participants.ListEligible(ctx, event.TargetID, event.ParticipationThreshold)
	if err != nil {
		return EligibleSet{}, fmt.Errorf("list eligible participants for target %s: %w", event.TargetID, err)
	}
	return NewEligibleSet(entries), nil
}
