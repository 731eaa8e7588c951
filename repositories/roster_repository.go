package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRosterEntryNotFound = errors.New("player is not registered for this tournament")
	ErrRosterConflict      = errors.New("player is already registered for this tournament")
	ErrRosterPlayerInvalid = errors.New("roster player reference is invalid")
)

// RosterRepository manages the tournament_players link table.
type RosterRepository interface {
	ListPlayerIDs(ctx context.Context, exec SQLExecutor, tournamentID int) ([]int, error)
	Add(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	Remove(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	// Replace swaps the whole roster; exec should be a transaction.
	Replace(ctx context.Context, exec SQLExecutor, tournamentID int, playerIDs []int) error
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRosterRepository) ListPlayerIDs(ctx context.Context, exec SQLExecutor, tournamentID int) ([]int, error) {
	query := `SELECT player_id FROM tournament_players WHERE tournament_id = $1 ORDER BY joined_at ASC, player_id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roster rows iteration: %w", err)
	}
	return ids, nil
}

func (r *postgresRosterRepository) Add(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	query := `INSERT INTO tournament_players (tournament_id, player_id) VALUES ($1, $2)`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, playerID)
	if err == nil {
		return nil
	}
	if mapped := r.handleRosterError(err); mapped != err {
		return mapped
	}
	return fmt.Errorf("failed to add player %d to tournament %d: %w", playerID, tournamentID, err)
}

func (r *postgresRosterRepository) Replace(ctx context.Context, exec SQLExecutor, tournamentID int, playerIDs []int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM tournament_players WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to clear roster of tournament %d: %w", tournamentID, err)
	}
	if len(playerIDs) == 0 {
		return nil
	}

	int64IDs := make([]int64, len(playerIDs))
	for i, id := range playerIDs {
		int64IDs[i] = int64(id)
	}
	// порядок в массиве сохраняется как порядок записи
	query := `
		INSERT INTO tournament_players (tournament_id, player_id, joined_at)
		SELECT $1, ids.player_id, NOW() + (ids.ord * INTERVAL '1 microsecond')
		FROM unnest($2::int[]) WITH ORDINALITY AS ids(player_id, ord)`
	_, err := executor.ExecContext(ctx, query, tournamentID, pq.Array(int64IDs))
	if err == nil {
		return nil
	}
	if mapped := r.handleRosterError(err); mapped != err {
		return mapped
	}
	return fmt.Errorf("failed to replace roster of tournament %d: %w", tournamentID, err)
}

func (r *postgresRosterRepository) handleRosterError(err error) error {
	if _, ok := pqViolation(err, pqUniqueViolation); ok {
		return ErrRosterConflict
	}
	if constraint, ok := pqViolation(err, pqForeignKeyViolation); ok {
		switch constraint {
		case "tournament_players_tournament_id_fkey":
			return ErrTournamentNotFound
		default:
			return ErrRosterPlayerInvalid
		}
	}
	return err
}

func (r *postgresRosterRepository) Remove(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	query := `DELETE FROM tournament_players WHERE tournament_id = $1 AND player_id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, playerID)
	if err != nil {
		return fmt.Errorf("failed to remove player %d from tournament %d: %w", playerID, tournamentID, err)
	}
	return checkAffectedRows(result, ErrRosterEntryNotFound)
}
