package brackets

import (
	"context"
	"time"

	"github.com/Dosada05/tabletennis-tournament/models"
)

// byeSlot pads an odd roster; pairings against it are skipped.
const byeSlot = 0

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket schedules a league with the circle method. Slot 0 stays fixed while the
// others rotate one place per round, so every pair meets exactly once over n-1 rounds.
// With two legs the same rounds are replayed with home and away swapped.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]models.Match, error) {
	if err := validateRoster(params.PlayerIDs); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	legs := 1
	var tournamentID int
	var start time.Time
	if t := params.Tournament; t != nil {
		tournamentID = t.ID
		legs = t.LegCount()
		start = t.StartDate
	}

	slots := make([]int, len(params.PlayerIDs))
	copy(slots, params.PlayerIDs)
	if len(slots)%2 == 1 {
		slots = append(slots, byeSlot)
	}

	n := len(slots)
	rounds := n - 1
	half := n / 2

	matches := make([]models.Match, 0, legs*len(params.PlayerIDs)*(len(params.PlayerIDs)-1)/2)
	for r := 1; r <= rounds; r++ {
		for i := 0; i < half; i++ {
			p1, p2 := slots[i], slots[n-1-i]
			if p1 == byeSlot || p2 == byeSlot {
				continue
			}
			matches = append(matches, leagueMatch(tournamentID, r, p1, p2, start))
		}
		rotate(slots)
	}

	if legs == 2 {
		firstLeg := len(matches)
		for i := 0; i < firstLeg; i++ {
			m := matches[i]
			matches = append(matches, leagueMatch(tournamentID, m.RoundNumber+rounds, m.Player2ID, m.Player1ID, start))
		}
	}
	return matches, nil
}

// rotate keeps index 0 in place and shifts [1, n-1] right by one.
func rotate(slots []int) {
	n := len(slots)
	if n < 3 {
		return
	}
	last := slots[n-1]
	copy(slots[2:], slots[1:n-1])
	slots[1] = last
}

func leagueMatch(tournamentID, round, p1, p2 int, start time.Time) models.Match {
	m := models.Match{
		TournamentID: tournamentID,
		RoundNumber:  round,
		Player1ID:    p1,
		Player2ID:    p2,
	}
	if !start.IsZero() {
		date := start.AddDate(0, 0, round-1)
		m.DatePlayed = &date
	}
	return m
}
