// tabletennis-tournament/brackets/single_elimination.go
package brackets

import (
	"context"
	"math"
	"time"

	"github.com/Dosada05/tabletennis-tournament/models"
)

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// BracketSize returns the smallest power of two that fits n players.
func BracketSize(n int) int {
	if n <= 1 {
		return 1
	}
	numRounds := int(math.Ceil(math.Log2(float64(n))))
	return 1 << uint(numRounds)
}

// GenerateBracket builds round 1 only. After shuffling, the first (size-n) players receive
// byes and the remaining players are paired in order, so round 1 always holds size/2 entries.
// Later rounds are produced by AdvanceKnockout once results are in.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]models.Match, error) {
	if err := validateRoster(params.PlayerIDs); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shuffled := NewShuffler(params.Seed).Shuffle(params.PlayerIDs)
	n := len(shuffled)
	sizeOfFullBracket := BracketSize(n)
	numByes := sizeOfFullBracket - n

	var tournamentID int
	var date *time.Time
	if t := params.Tournament; t != nil {
		tournamentID = t.ID
		if !t.StartDate.IsZero() {
			start := t.StartDate
			date = &start
		}
	}

	matches := make([]models.Match, 0, sizeOfFullBracket/2)
	for i := 0; i < numByes; i++ {
		matches = append(matches, models.NewBye(tournamentID, 1, shuffled[i], date))
	}
	for i := numByes; i+1 < n; i += 2 {
		matches = append(matches, models.Match{
			TournamentID: tournamentID,
			RoundNumber:  1,
			Player1ID:    shuffled[i],
			Player2ID:    shuffled[i+1],
			DatePlayed:   date,
		})
	}
	return matches, nil
}
