package models

import "time"

// StandingRow is one line of a tournament table.
type StandingRow struct {
	Rank      int    `json:"rank" db:"rank"`
	PlayerID  int    `json:"player_id" db:"player_id"`
	Name      string `json:"name" db:"-"`
	Played    int    `json:"played" db:"played"`
	Won       int    `json:"won" db:"won"`
	Lost      int    `json:"lost" db:"lost"`
	SetsPlus  int    `json:"sets_plus" db:"sets_plus"`
	SetsMinus int    `json:"sets_minus" db:"sets_minus"`
	Points    int    `json:"points" db:"points"`
}

func (r StandingRow) SetDifference() int {
	return r.SetsPlus - r.SetsMinus
}

// TournamentStanding is the snapshot row written once a tournament finishes.
type TournamentStanding struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	StandingRow
}

// RankingRow is a player's record across every tournament.
type RankingRow struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	Played   int    `json:"played"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	SetsWon  int    `json:"sets_won"`
	SetsLost int    `json:"sets_lost"`
}
