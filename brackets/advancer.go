package brackets

import (
	"fmt"
	"time"

	"github.com/Dosada05/tabletennis-tournament/models"
)

type AdvanceKind string

const (
	NewRoundGenerated  AdvanceKind = "new_round_generated"
	TournamentComplete AdvanceKind = "tournament_complete"
)

// RoundAdvanceOutcome is the result of a successful advance attempt. TournamentComplete is a
// normal outcome, not an error.
type RoundAdvanceOutcome struct {
	Kind       AdvanceKind    `json:"kind"`
	Round      int            `json:"round,omitempty"`
	Matches    []models.Match `json:"matches,omitempty"`
	ChampionID *int           `json:"champion_id,omitempty"`
}

type AdvanceParams struct {
	TournamentID int
	// CurrentRound holds every match of the highest existing round.
	CurrentRound []models.Match
	Seed         int64
	Date         *time.Time
}

// RoundWinners returns the distinct winners of a fully approved round, in match order.
func RoundWinners(round []models.Match) ([]int, error) {
	winners := make([]int, 0, len(round))
	seen := make(map[int]struct{}, len(round))
	for _, m := range round {
		if !m.IsApproved {
			return nil, fmt.Errorf("%w: match %d (round %d) awaits approval", ErrRoundIncomplete, m.ID, m.RoundNumber)
		}
		if m.IsBye() && (m.Score1 != 1 || m.Score2 != 0) {
			return nil, fmt.Errorf("%w: bye match %d for player %d has tally %d:%d", ErrBracketCorrupted, m.ID, m.Player1ID, m.Score1, m.Score2)
		}
		winner, ok := m.WinnerID()
		if !ok {
			return nil, fmt.Errorf("%w: match %d is approved but tied %d:%d", ErrRoundIncomplete, m.ID, m.Score1, m.Score2)
		}
		if _, dup := seen[winner]; dup {
			continue
		}
		seen[winner] = struct{}{}
		winners = append(winners, winner)
	}
	return winners, nil
}

// AdvanceKnockout derives round R+1 from round R. Winners are shuffled with the seed; an odd
// count gives the last shuffled winner a bye.
func AdvanceKnockout(params AdvanceParams) (*RoundAdvanceOutcome, error) {
	if len(params.CurrentRound) == 0 {
		return nil, fmt.Errorf("%w: no matches in the current round", ErrRoundIncomplete)
	}
	round := params.CurrentRound[0].RoundNumber
	for _, m := range params.CurrentRound {
		if m.RoundNumber != round {
			return nil, fmt.Errorf("%w: mixed rounds %d and %d passed as one round", ErrBracketCorrupted, round, m.RoundNumber)
		}
	}

	winners, err := RoundWinners(params.CurrentRound)
	if err != nil {
		return nil, err
	}
	if len(winners) < 2 {
		outcome := &RoundAdvanceOutcome{Kind: TournamentComplete, Round: round}
		if len(winners) == 1 {
			champion := winners[0]
			outcome.ChampionID = &champion
		}
		return outcome, nil
	}

	winners = NewShuffler(params.Seed).Shuffle(winners)
	next := round + 1
	total := len(winners)

	matches := make([]models.Match, 0, (total+1)/2)
	for i := 0; i+1 < total; i += 2 {
		matches = append(matches, models.Match{
			TournamentID: params.TournamentID,
			RoundNumber:  next,
			Player1ID:    winners[i],
			Player2ID:    winners[i+1],
			DatePlayed:   params.Date,
		})
	}
	if total%2 == 1 {
		matches = append(matches, models.NewBye(params.TournamentID, next, winners[total-1], params.Date))
	}

	return &RoundAdvanceOutcome{Kind: NewRoundGenerated, Round: next, Matches: matches}, nil
}
