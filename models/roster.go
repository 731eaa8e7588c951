package models

import "time"

type TournamentPlayer struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	JoinedAt     time.Time `json:"joined_at" db:"joined_at"`
}
