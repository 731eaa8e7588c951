package models

import "time"

// Tournament holds its configuration, roster and an owned copy of its matches.
// Derived flags (State, IsFinished, IsOpenForSignup) are recomputed from Matches on every call.
type Tournament struct {
	ID                      int               `json:"id" db:"id"`
	Name                    string            `json:"name" db:"name"`
	Format                  CompetitionFormat `json:"format" db:"format"`
	SetsToWin               int               `json:"sets_to_win" db:"sets_to_win"`
	PointsPerSet            int               `json:"points_per_set" db:"points_per_set"`
	Legs                    int               `json:"legs" db:"legs"` // league only: 1 single, 2 double round robin
	AllowPlayersEnterScores bool              `json:"allow_players_enter_scores" db:"allow_players_enter_scores"`
	MaxPlayers              *int              `json:"max_players,omitempty" db:"max_players"`
	StartDate               time.Time         `json:"start_date" db:"start_date"`
	EndDate                 *time.Time        `json:"end_date,omitempty" db:"end_date"`
	HasStarted              bool              `json:"has_started" db:"has_started"`
	CreatedAt               time.Time         `json:"created_at" db:"created_at"`

	// Загружаются отдельно, в таблице tournaments не хранятся
	PlayerIDs []int    `json:"player_ids,omitempty" db:"-"`
	Players   []Player `json:"players,omitempty" db:"-"`
	Matches   []Match  `json:"matches,omitempty" db:"-"`
}

func (t *Tournament) Rules() ScoringRules {
	return ScoringRules{SetsToWin: t.SetsToWin, PointsPerSet: t.PointsPerSet}
}

// LegCount normalises Legs to 1 or 2.
func (t *Tournament) LegCount() int {
	if t.Legs == 2 {
		return 2
	}
	return 1
}

// HighestRound is the largest round number among the matches, 0 when there are none.
func (t *Tournament) HighestRound() int {
	return HighestRound(t.Matches)
}

func (t *Tournament) MatchesInRound(round int) []Match {
	return MatchesInRound(t.Matches, round)
}

func HighestRound(matches []Match) int {
	highest := 0
	for _, m := range matches {
		if m.RoundNumber > highest {
			highest = m.RoundNumber
		}
	}
	return highest
}

func MatchesInRound(matches []Match, round int) []Match {
	out := make([]Match, 0)
	for _, m := range matches {
		if m.RoundNumber == round {
			out = append(out, m)
		}
	}
	return out
}
