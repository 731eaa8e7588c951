package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SetScore is one set of a match. A set only counts when both scores are present.
type SetScore struct {
	Score1 *int `json:"score1"`
	Score2 *int `json:"score2"`
}

func NewSetScore(score1, score2 int) SetScore {
	return SetScore{Score1: &score1, Score2: &score2}
}

// Complete reports whether both sides of the set have a score.
func (s SetScore) Complete() bool {
	return s.Score1 != nil && s.Score2 != nil
}

// SetScores is stored as "11:8;8:11;11:9" in the set_scores column.
type SetScores []SetScore

func (s SetScores) String() string {
	parts := make([]string, 0, len(s))
	for _, set := range s {
		var a, b string
		if set.Score1 != nil {
			a = strconv.Itoa(*set.Score1)
		}
		if set.Score2 != nil {
			b = strconv.Itoa(*set.Score2)
		}
		parts = append(parts, a+":"+b)
	}
	return strings.Join(parts, ";")
}

// ParseSetScores reads the "a:b;c:d" format. Empty sides are kept as missing scores.
func ParseSetScores(raw string) (SetScores, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SetScores{}, nil
	}
	chunks := strings.Split(raw, ";")
	sets := make(SetScores, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		sides := strings.Split(chunk, ":")
		if len(sides) != 2 {
			return nil, fmt.Errorf("malformed set score %q", chunk)
		}
		var set SetScore
		for i, side := range sides {
			side = strings.TrimSpace(side)
			if side == "" {
				continue
			}
			v, err := strconv.Atoi(side)
			if err != nil {
				return nil, fmt.Errorf("malformed set score %q: %w", chunk, err)
			}
			if i == 0 {
				set.Score1 = &v
			} else {
				set.Score2 = &v
			}
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func (s SetScores) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return s.String(), nil
}

func (s *SetScores) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = SetScores{}
		return nil
	case string:
		parsed, err := ParseSetScores(v)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case []byte:
		parsed, err := ParseSetScores(string(v))
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	default:
		return errors.New("set_scores: unsupported source type")
	}
}

// Match is a single pairing inside a tournament. Player1ID == Player2ID marks a bye.
type Match struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	RoundNumber  int        `json:"round_number,omitempty" db:"round_number"`
	Player1ID    int        `json:"player1_id" db:"player1_id"`
	Player2ID    int        `json:"player2_id" db:"player2_id"`
	SetScores    SetScores  `json:"set_scores,omitempty" db:"set_scores"`
	Score1       int        `json:"score1" db:"score1"`
	Score2       int        `json:"score2" db:"score2"`
	IsApproved   bool       `json:"is_approved" db:"is_approved"`
	EnteredBy    *string    `json:"entered_by,omitempty" db:"entered_by"`
	DatePlayed   *time.Time `json:"date_played,omitempty" db:"date_played"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// NewBye builds the synthetic self-paired match that carries a player into the next round.
func NewBye(tournamentID, round, playerID int, date *time.Time) Match {
	return Match{
		TournamentID: tournamentID,
		RoundNumber:  round,
		Player1ID:    playerID,
		Player2ID:    playerID,
		Score1:       1,
		Score2:       0,
		IsApproved:   true,
		DatePlayed:   date,
	}
}

func (m Match) IsBye() bool {
	return m.Player1ID == m.Player2ID
}

// IsPlayed reports whether any set was won by either side.
func (m Match) IsPlayed() bool {
	return m.Score1+m.Score2 > 0
}

// Decided reports whether the tally names a winner.
func (m Match) Decided() bool {
	return m.Score1 != m.Score2
}

// WinnerID returns the side with the strictly higher tally.
func (m Match) WinnerID() (int, bool) {
	switch {
	case m.IsBye():
		return m.Player1ID, true
	case m.Score1 > m.Score2:
		return m.Player1ID, true
	case m.Score2 > m.Score1:
		return m.Player2ID, true
	default:
		return 0, false
	}
}

func (m Match) Involves(playerID int) bool {
	return m.Player1ID == playerID || m.Player2ID == playerID
}
