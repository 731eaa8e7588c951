package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Dosada05/tabletennis-tournament/models"
)

// StandingRepository stores the final table of a finished tournament.
type StandingRepository interface {
	ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, rows []models.StandingRow, at time.Time) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentStanding, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceForTournament drops the previous snapshot and writes rows. Pass a transaction to make
// the swap atomic.
func (r *postgresStandingRepository) ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, rows []models.StandingRow, at time.Time) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM tournament_standings WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to clear standings of tournament %d: %w", tournamentID, err)
	}

	query := `
		INSERT INTO tournament_standings
			(tournament_id, player_id, rank, played, won, lost, sets_plus, sets_minus, points, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, row := range rows {
		_, err := executor.ExecContext(ctx, query,
			tournamentID, row.PlayerID, row.Rank, row.Played, row.Won, row.Lost,
			row.SetsPlus, row.SetsMinus, row.Points, at,
		)
		if err != nil {
			return fmt.Errorf("failed to insert standing of player %d in tournament %d: %w", row.PlayerID, tournamentID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentStanding, error) {
	query := `
		SELECT s.tournament_id, s.player_id, COALESCE(p.name, ''), s.rank, s.played, s.won, s.lost,
		       s.sets_plus, s.sets_minus, s.points, s.updated_at
		FROM tournament_standings s
		LEFT JOIN players p ON p.id = s.player_id
		WHERE s.tournament_id = $1
		ORDER BY s.rank ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	standings := make([]models.TournamentStanding, 0)
	for rows.Next() {
		var s models.TournamentStanding
		if err := rows.Scan(
			&s.TournamentID, &s.PlayerID, &s.Name, &s.Rank, &s.Played, &s.Won, &s.Lost,
			&s.SetsPlus, &s.SetsMinus, &s.Points, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", err)
		}
		standings = append(standings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standing rows iteration: %w", err)
	}
	return standings, nil
}
