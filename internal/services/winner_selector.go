package services

import (
	"math/rand/v2"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
)

// Rand is the random source used for uniform selection. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// globalRand uses the auto-seeded top level generator, safe for concurrent use
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// WinnerSelector picks winners from an eligible set
type WinnerSelector struct {
	rnd Rand
}

// NewWinnerSelector creates a selector. A nil source uses the process-wide generator.
func NewWinnerSelector(rnd Rand) *WinnerSelector {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &WinnerSelector{rnd: rnd}
}

// Select applies the event's strategy. Returned winners carry no event id
// or timestamps; those are stamped on commit.
func (s *WinnerSelector) Select(event *models.LotteryEvent, set EligibleSet) []models.LotteryWinner {
	if event.Strategy() == models.WinTypeSpecific {
		return s.selectSpecific(event.SpecificPositions, set)
	}
	return s.selectRandom(event.WinnerCount, set)
}

func (s *WinnerSelector) selectSpecific(positions models.PositionSet, set EligibleSet) []models.LotteryWinner {
	winners := make([]models.LotteryWinner, 0, positions.Len())
	awarded := make(map[string]struct{}, positions.Len())
	for _, position := range positions {
		entry, ok := set.At(position)
		if !ok {
			continue
		}
		// one prize per participant
		if _, dup := awarded[entry.ID]; dup {
			continue
		}
		awarded[entry.ID] = struct{}{}
		winners = append(winners, models.LotteryWinner{
			ParticipantID: entry.ID,
			Position:      entry.Position,
			WinType:       models.WinTypeSpecific,
		})
	}
	return winners
}

// selectRandom runs a partial Fisher-Yates shuffle over the distinct participants
func (s *WinnerSelector) selectRandom(count int, set EligibleSet) []models.LotteryWinner {
	pool := set.Participants()
	k := min(count, len(pool))
	if k <= 0 {
		return []models.LotteryWinner{}
	}

	for i := 0; i < k; i++ {
		j := i + s.rnd.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	winners := make([]models.LotteryWinner, k)
	for i, p := range pool[:k] {
		winners[i] = models.LotteryWinner{
			ParticipantID: p.ID,
			Position:      p.Position,
			WinType:       models.WinTypeRandom,
		}
	}
	return winners
}
