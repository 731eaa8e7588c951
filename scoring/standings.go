package scoring

import (
	"sort"

	"github.com/Dosada05/tabletennis-tournament/models"
)

// PointsPolicy weights results in the table.
type PointsPolicy struct {
	Win  int `json:"win"`
	Loss int `json:"loss"`
}

// DefaultPointsPolicy awards two points for a win and nothing for a loss.
var DefaultPointsPolicy = PointsPolicy{Win: 2, Loss: 0}

// Counts reports whether a match contributes to a table: approved, played, not a bye.
func Counts(m models.Match) bool {
	return m.IsApproved && !m.IsBye() && m.IsPlayed()
}

// ComputeStandings aggregates the counted matches into a table ordered by points, set
// difference, name and finally player id, so rows never compare equal.
func ComputeStandings(matches []models.Match, names map[int]string, policy PointsPolicy) []models.StandingRow {
	rows := make(map[int]*models.StandingRow)
	row := func(playerID int) *models.StandingRow {
		r, ok := rows[playerID]
		if !ok {
			r = &models.StandingRow{PlayerID: playerID, Name: names[playerID]}
			rows[playerID] = r
		}
		return r
	}

	for _, m := range matches {
		if !Counts(m) {
			continue
		}
		home, away := row(m.Player1ID), row(m.Player2ID)
		home.SetsPlus += m.Score1
		home.SetsMinus += m.Score2
		away.SetsPlus += m.Score2
		away.SetsMinus += m.Score1

		switch {
		case m.Score1 > m.Score2:
			recordResult(home, away, policy)
		case m.Score2 > m.Score1:
			recordResult(away, home, policy)
		}
	}

	table := make([]models.StandingRow, 0, len(rows))
	for _, r := range rows {
		table = append(table, *r)
	}
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.SetDifference() != b.SetDifference() {
			return a.SetDifference() > b.SetDifference()
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlayerID < b.PlayerID
	})
	for i := range table {
		table[i].Rank = i + 1
	}
	return table
}

func recordResult(winner, loser *models.StandingRow, policy PointsPolicy) {
	winner.Played++
	winner.Won++
	winner.Points += policy.Win
	loser.Played++
	loser.Lost++
	loser.Points += policy.Loss
}

// GlobalRanking ranks players over every match they played, regardless of tournament.
// Players without matches are listed with zero records.
func GlobalRanking(players []models.Player, matches []models.Match) []models.RankingRow {
	byID := make(map[int]*models.RankingRow, len(players))
	ranking := make([]*models.RankingRow, 0, len(players))
	for _, p := range players {
		r := &models.RankingRow{PlayerID: p.ID, Name: p.Name}
		byID[p.ID] = r
		ranking = append(ranking, r)
	}

	for _, m := range matches {
		if !Counts(m) {
			continue
		}
		if r, ok := byID[m.Player1ID]; ok {
			addRanking(r, m.Score1, m.Score2)
		}
		if r, ok := byID[m.Player2ID]; ok {
			addRanking(r, m.Score2, m.Score1)
		}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		a, b := ranking[i], ranking[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.SetsWon != b.SetsWon {
			return a.SetsWon > b.SetsWon
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlayerID < b.PlayerID
	})

	out := make([]models.RankingRow, len(ranking))
	for i, r := range ranking {
		out[i] = *r
	}
	return out
}

func addRanking(r *models.RankingRow, won, lost int) {
	r.Played++
	r.SetsWon += won
	r.SetsLost += lost
	switch {
	case won > lost:
		r.Wins++
	case won < lost:
		r.Losses++
	}
}
