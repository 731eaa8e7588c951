package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/tabletennis-tournament/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchPlayerInvalid     = errors.New("match player conflict or invalid")
	// ErrMatchRoundConflict is returned when a round already holds a match for the same player1.
	ErrMatchRoundConflict = errors.New("match already exists for this round")
)

const matchColumns = `id, tournament_id, round_number, player1_id, player2_id, set_scores,
	score1, score2, is_approved, entered_by, date_played, created_at`

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, round *int) ([]models.Match, error)
	CountByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) (int, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Approve(ctx context.Context, exec SQLExecutor, id int) error
	ListPendingApproval(ctx context.Context, tournamentID int) ([]models.Match, error)
	ListApproved(ctx context.Context) ([]models.Match, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateBatch inserts the matches in order and fills their ids. Callers pass a transaction
// so that a round is stored entirely or not at all.
func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, round_number, player1_id, player2_id, set_scores,
			 score1, score2, is_approved, entered_by, date_played)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	for i := range matches {
		m := &matches[i]
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID,
			m.RoundNumber,
			m.Player1ID,
			m.Player2ID,
			m.SetScores,
			m.Score1,
			m.Score2,
			m.IsApproved,
			m.EnteredBy,
			m.DatePlayed,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert match %d/%d (round %d, player %d): %w",
				i+1, len(matches), m.RoundNumber, m.Player1ID, r.handleMatchError(err))
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, roundFilter *int) ([]models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)
	args := []interface{}{tournamentID}

	if roundFilter != nil {
		queryBuilder.WriteString(" AND round_number = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *roundFilter)
	}
	queryBuilder.WriteString(" ORDER BY round_number ASC, id ASC")

	rows, err := r.getExecutor(exec).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	return collectMatches(rows)
}

func (r *postgresMatchRepository) CountByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1 AND round_number = $2`
	var count int
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, round).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches of tournament %d round %d: %w", tournamentID, round, err)
	}
	return count, nil
}

// UpdateResult stores the entered sets, the derived tally and the approval state.
func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches
		SET set_scores = $1, score1 = $2, score2 = $3, is_approved = $4, entered_by = $5, date_played = $6
		WHERE id = $7`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		m.SetScores, m.Score1, m.Score2, m.IsApproved, m.EnteredBy, m.DatePlayed, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update result of match %d: %w", m.ID, r.handleMatchError(err))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Approve(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE matches SET is_approved = TRUE WHERE id = $1`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to approve match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// ListPendingApproval returns real matches that still wait for an organizer, oldest round first.
func (r *postgresMatchRepository) ListPendingApproval(ctx context.Context, tournamentID int) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = $1 AND is_approved = FALSE AND player1_id <> player2_id
		ORDER BY round_number ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending matches for tournament %d: %w", tournamentID, err)
	}
	return collectMatches(rows)
}

// ListApproved returns every approved real match across all tournaments.
func (r *postgresMatchRepository) ListApproved(ctx context.Context) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE is_approved = TRUE AND player1_id <> player2_id
		ORDER BY tournament_id ASC, round_number ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved matches: %w", err)
	}
	return collectMatches(rows)
}

// ListByPlayer returns every real match of the player across tournaments, most recent first.
func (r *postgresMatchRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE (player1_id = $1 OR player2_id = $1) AND player1_id <> player2_id
		ORDER BY date_played DESC NULLS LAST, id DESC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches of player %d: %w", playerID, err)
	}
	return collectMatches(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.RoundNumber,
		&m.Player1ID,
		&m.Player2ID,
		&m.SetScores,
		&m.Score1,
		&m.Score2,
		&m.IsApproved,
		&m.EnteredBy,
		&m.DatePlayed,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func collectMatches(rows *sql.Rows) ([]models.Match, error) {
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := pqViolation(err, pqUniqueViolation); ok && constraint == "matches_round_player1_key" {
		return ErrMatchRoundConflict
	}
	if constraint, ok := pqViolation(err, pqForeignKeyViolation); ok {
		switch constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_player1_id_fkey", "matches_player2_id_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
