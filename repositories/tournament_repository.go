package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/tabletennis-tournament/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

const tournamentColumns = `id, name, format, sets_to_win, points_per_set, legs,
	allow_players_enter_scores, max_players, start_date, end_date, has_started, created_at`

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// LockForUpdate reads the tournament row with SELECT ... FOR UPDATE; exec must be a transaction.
	LockForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	SetStarted(ctx context.Context, exec SQLExecutor, id int) error
	StampEnd(ctx context.Context, exec SQLExecutor, id int, at time.Time) (bool, error)
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	ListOpenForSignup(ctx context.Context) ([]models.Tournament, error)
	ListUnfinished(ctx context.Context) ([]models.Tournament, error)
}

// ListTournamentsFilter narrows List; zero values mean no restriction.
type ListTournamentsFilter struct {
	Format *models.CompetitionFormat
	Limit  int
	Offset int
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, format, sets_to_win, points_per_set, legs,
			allow_players_enter_scores, max_players, start_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, has_started, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Format, t.SetsToWin, t.PointsPerSet, t.LegCount(),
		t.AllowPlayersEnterScores, t.MaxPlayers, t.StartDate,
	).Scan(&t.ID, &t.HasStarted, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.getOne(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresTournamentRepository) LockForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	if exec == nil {
		return nil, errors.New("LockForUpdate requires a transaction")
	}
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, exec, query, id)
}

func (r *postgresTournamentRepository) getOne(ctx context.Context, executor SQLExecutor, query string, id int) (*models.Tournament, error) {
	t, err := scanTournament(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) SetStarted(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE tournaments SET has_started = TRUE WHERE id = $1`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark tournament %d as started: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// StampEnd sets end_date only while it is still empty and reports whether this call set it.
func (r *postgresTournamentRepository) StampEnd(ctx context.Context, exec SQLExecutor, id int, at time.Time) (bool, error) {
	query := `UPDATE tournaments SET end_date = $1 WHERE id = $2 AND end_date IS NULL`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, at, id)
	if err != nil {
		return false, fmt.Errorf("failed to stamp end of tournament %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected == 1, nil
}

// Update overwrites the configuration columns. Lifecycle columns (has_started, end_date) are
// changed only by SetStarted and StampEnd.
func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1,
			format = $2,
			sets_to_win = $3,
			points_per_set = $4,
			legs = $5,
			allow_players_enter_scores = $6,
			max_players = $7,
			start_date = $8
		WHERE id = $9`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		t.Name, t.Format, t.SetsToWin, t.PointsPerSet, t.LegCount(),
		t.AllowPlayersEnterScores, t.MaxPlayers, t.StartDate,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// Delete removes the tournament; roster, matches and standings go with it (ON DELETE CASCADE).
func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`)
	args := []interface{}{}

	if filter.Format != nil {
		args = append(args, *filter.Format)
		queryBuilder.WriteString(" AND format = $" + strconv.Itoa(len(args)))
	}
	queryBuilder.WriteString(" ORDER BY start_date DESC, id DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		queryBuilder.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		queryBuilder.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	return r.list(ctx, queryBuilder.String(), args...)
}

// ListOpenForSignup returns tournaments that have not started or ended and still have room.
func (r *postgresTournamentRepository) ListOpenForSignup(ctx context.Context) ([]models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments t
		WHERE t.has_started = FALSE
		  AND t.end_date IS NULL
		  AND (t.max_players IS NULL OR
		       (SELECT COUNT(*) FROM tournament_players tp WHERE tp.tournament_id = t.id) < t.max_players)
		ORDER BY t.start_date ASC, t.id ASC`
	return r.list(ctx, query)
}

// ListUnfinished returns started tournaments without an end stamp.
func (r *postgresTournamentRepository) ListUnfinished(ctx context.Context) ([]models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE has_started = TRUE AND end_date IS NULL
		ORDER BY id ASC`
	return r.list(ctx, query)
}

func (r *postgresTournamentRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Format, &t.SetsToWin, &t.PointsPerSet, &t.Legs,
		&t.AllowPlayersEnterScores, &t.MaxPlayers, &t.StartDate, &t.EndDate, &t.HasStarted, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := pqViolation(err, pqUniqueViolation); ok && constraint == "tournaments_name_key" {
		return ErrTournamentNameConflict
	}
	return err
}
