package models

import "fmt"

// CompetitionFormat is the structure of play for a tournament.
type CompetitionFormat string

const (
	FormatKnockout CompetitionFormat = "knockout"
	FormatLeague   CompetitionFormat = "league"
)

func (f CompetitionFormat) Valid() bool {
	return f == FormatKnockout || f == FormatLeague
}

const (
	MinSetsToWin    = 2
	MinPointsPerSet = 5
)

// ScoringRules is the part of the tournament configuration the match validator needs.
type ScoringRules struct {
	SetsToWin    int `json:"sets_to_win"`
	PointsPerSet int `json:"points_per_set"`
}

func (r ScoringRules) Validate() error {
	if r.SetsToWin < MinSetsToWin {
		return fmt.Errorf("sets_to_win must be at least %d, got %d", MinSetsToWin, r.SetsToWin)
	}
	if r.PointsPerSet < MinPointsPerSet {
		return fmt.Errorf("points_per_set must be at least %d, got %d", MinPointsPerSet, r.PointsPerSet)
	}
	return nil
}

// MaxSets is the longest a best-of match can run.
func (r ScoringRules) MaxSets() int {
	return r.SetsToWin*2 - 1
}
