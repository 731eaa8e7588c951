package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tabletennis-tournament/models"
	"github.com/Dosada05/tabletennis-tournament/repositories"
	"github.com/Dosada05/tabletennis-tournament/scoring"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name                    string                   `json:"name"`
	Format                  models.CompetitionFormat `json:"format"`
	SetsToWin               int                      `json:"sets_to_win"`
	PointsPerSet            int                      `json:"points_per_set"`
	Legs                    int                      `json:"legs,omitempty"`
	AllowPlayersEnterScores bool                     `json:"allow_players_enter_scores"`
	MaxPlayers              *int                     `json:"max_players,omitempty"`
	StartDate               time.Time                `json:"start_date"`
}

// UpdateTournamentInput carries the full configuration. PlayerIDs replaces the roster when
// present; an empty list clears it, a missing one keeps it.
type UpdateTournamentInput struct {
	CreateTournamentInput
	PlayerIDs []int `json:"player_ids,omitempty"`
}

// PlayerHistory is one player's record and real matches across all tournaments.
type PlayerHistory struct {
	Player  models.Player     `json:"player"`
	Stats   models.RankingRow `json:"stats"`
	Matches []models.Match    `json:"matches"`
}

const maxListLimit = 100

// TournamentDetails is a tournament with its roster, matches and derived state.
type TournamentDetails struct {
	*models.Tournament
	State           models.TournamentState `json:"state"`
	IsFinished      bool                   `json:"is_finished"`
	IsOpenForSignup bool                   `json:"is_open_for_signup"`
	ChampionID      *int                   `json:"champion_id,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetDetails(ctx context.Context, tournamentID int) (*TournamentDetails, error)
	// Update changes configuration and roster while the tournament has not started.
	Update(ctx context.Context, tournamentID int, input UpdateTournamentInput) (*models.Tournament, error)
	// Delete removes a tournament unless one of its real matches is already approved.
	Delete(ctx context.Context, tournamentID int) error
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	ListOpenForSignup(ctx context.Context) ([]models.Tournament, error)
	Standings(ctx context.Context, tournamentID int) ([]models.StandingRow, error)
	GlobalRanking(ctx context.Context) ([]models.RankingRow, error)
	PlayerHistory(ctx context.Context, playerID int) (*PlayerHistory, error)
	// FinalizeFinished stamps End on every started tournament that has finished and returns how many it stamped.
	FinalizeFinished(ctx context.Context) (int, error)
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	rosterRepo     repositories.RosterRepository
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	standingRepo   repositories.StandingRepository
	finalizer      *finalizer
	policy         scoring.PointsPolicy
	logger         *slog.Logger
}

func NewTournamentService(deps Deps) TournamentService {
	deps = deps.withDefaults()
	return &tournamentService{
		db:             deps.DB,
		tournamentRepo: deps.TournamentRepo,
		rosterRepo:     deps.RosterRepo,
		matchRepo:      deps.MatchRepo,
		playerRepo:     deps.PlayerRepo,
		standingRepo:   deps.StandingRepo,
		finalizer:      deps.finalizer(),
		policy:         deps.Policy,
		logger:         deps.Logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	t := &models.Tournament{
		Name:                    strings.TrimSpace(input.Name),
		Format:                  input.Format,
		SetsToWin:               input.SetsToWin,
		PointsPerSet:            input.PointsPerSet,
		Legs:                    input.Legs,
		AllowPlayersEnterScores: input.AllowPlayersEnterScores,
		MaxPlayers:              input.MaxPlayers,
		StartDate:               input.StartDate,
	}
	t.Legs = t.LegCount()

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, fmt.Errorf("%w: name %q is taken", ErrInvalidTournamentConfig, t.Name)
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.Int("tournament_id", t.ID),
		slog.String("format", string(t.Format)),
		slog.Int("sets_to_win", t.SetsToWin),
		slog.Int("points_per_set", t.PointsPerSet))
	return t, nil
}

func validateCreateInput(input CreateTournamentInput) error {
	var problems []string
	if strings.TrimSpace(input.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !input.Format.Valid() {
		problems = append(problems, fmt.Sprintf("format must be %q or %q", models.FormatKnockout, models.FormatLeague))
	}
	if err := (models.ScoringRules{SetsToWin: input.SetsToWin, PointsPerSet: input.PointsPerSet}).Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	switch {
	case input.Legs < 0 || input.Legs > 2:
		problems = append(problems, "legs must be 1 or 2")
	case input.Legs == 2 && input.Format != models.FormatLeague:
		problems = append(problems, "two legs are only possible in a league")
	}
	if input.MaxPlayers != nil && *input.MaxPlayers < 2 {
		problems = append(problems, "max_players must be at least 2")
	}
	if input.StartDate.IsZero() {
		problems = append(problems, "start_date is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTournamentConfig, strings.Join(problems, "; "))
	}
	return nil
}

func validateRoster(ids []int) error {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("%w: player id %d is invalid", ErrInvalidTournamentConfig, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: player %d is listed twice", ErrInvalidTournamentConfig, id)
		}
		seen[id] = true
	}
	return nil
}

func (s *tournamentService) Update(ctx context.Context, tournamentID int, input UpdateTournamentInput) (*models.Tournament, error) {
	if err := validateCreateInput(input.CreateTournamentInput); err != nil {
		return nil, err
	}
	if err := validateRoster(input.PlayerIDs); err != nil {
		return nil, err
	}

	var updated *models.Tournament
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		t, err := s.tournamentRepo.LockForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if t.HasStarted || t.EndDate != nil {
			return ErrTournamentStarted
		}

		roster := input.PlayerIDs
		if roster == nil {
			roster, err = s.rosterRepo.ListPlayerIDs(ctx, tx, tournamentID)
			if err != nil {
				return fmt.Errorf("failed to load roster of tournament %d: %w", tournamentID, err)
			}
		}
		if input.MaxPlayers != nil && len(roster) > *input.MaxPlayers {
			return fmt.Errorf("%w: %d players registered, max_players is %d", ErrTournamentFull, len(roster), *input.MaxPlayers)
		}

		t.Name = strings.TrimSpace(input.Name)
		t.Format = input.Format
		t.SetsToWin = input.SetsToWin
		t.PointsPerSet = input.PointsPerSet
		t.Legs = input.Legs
		t.Legs = t.LegCount()
		t.AllowPlayersEnterScores = input.AllowPlayersEnterScores
		t.MaxPlayers = input.MaxPlayers
		t.StartDate = input.StartDate

		if err := s.tournamentRepo.Update(ctx, tx, t); err != nil {
			if errors.Is(err, repositories.ErrTournamentNameConflict) {
				return fmt.Errorf("%w: name %q is taken", ErrInvalidTournamentConfig, t.Name)
			}
			return handleRepositoryError(err)
		}
		if input.PlayerIDs != nil {
			if err := s.rosterRepo.Replace(ctx, tx, tournamentID, input.PlayerIDs); err != nil {
				return handleRepositoryError(err)
			}
		}
		t.PlayerIDs = roster
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament updated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("players", len(updated.PlayerIDs)),
		slog.Bool("roster_replaced", input.PlayerIDs != nil))
	return updated, nil
}

func (s *tournamentService) Delete(ctx context.Context, tournamentID int) error {
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if _, err := s.tournamentRepo.LockForUpdate(ctx, tx, tournamentID); err != nil {
			return handleRepositoryError(err)
		}
		matches, err := s.matchRepo.ListByTournament(ctx, tx, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		for _, m := range matches {
			// byes are approved on creation and do not count as results
			if !m.IsBye() && m.IsApproved {
				return fmt.Errorf("%w: match %d (round %d)", ErrTournamentHasResults, m.ID, m.RoundNumber)
			}
		}
		return handleRepositoryError(s.tournamentRepo.Delete(ctx, tx, tournamentID))
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "tournament deleted", slog.Int("tournament_id", tournamentID))
	return nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Format != nil && !filter.Format.Valid() {
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidTournamentConfig, *filter.Format)
	}
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// GetDetails loads the tournament, its roster with names and its matches in parallel.
func (s *tournamentService) GetDetails(ctx context.Context, tournamentID int) (*TournamentDetails, error) {
	var (
		t        *models.Tournament
		players  []models.Player
		matches  []models.Match
		rosterID []int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = s.tournamentRepo.GetByID(gCtx, nil, tournamentID)
		return handleRepositoryError(err)
	})
	g.Go(func() error {
		var err error
		rosterID, err = s.rosterRepo.ListPlayerIDs(gCtx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}
		players, err = s.playerRepo.GetByIDs(gCtx, rosterID)
		if err != nil {
			return fmt.Errorf("failed to load players: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, nil, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t.PlayerIDs = rosterID
	t.Players = players
	t.Matches = matches

	details := &TournamentDetails{
		Tournament:      t,
		State:           t.State(),
		IsFinished:      t.IsFinished(),
		IsOpenForSignup: t.IsOpenForSignup(),
	}
	if champion, ok := t.Champion(); ok {
		details.ChampionID = &champion
	}
	return details, nil
}

func (s *tournamentService) ListOpenForSignup(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListOpenForSignup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open tournaments: %w", err)
	}
	return tournaments, nil
}

// Standings returns the stored final table of a finished tournament, or computes the live one.
func (s *tournamentService) Standings(ctx context.Context, tournamentID int) ([]models.StandingRow, error) {
	details, err := s.GetDetails(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	if details.EndDate != nil {
		snapshot, err := s.standingRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load final standings: %w", err)
		}
		if len(snapshot) > 0 {
			rows := make([]models.StandingRow, len(snapshot))
			for i, st := range snapshot {
				rows[i] = st.StandingRow
			}
			return rows, nil
		}
	}

	return scoring.ComputeStandings(details.Matches, models.PlayerNames(details.Players), s.policy), nil
}

func (s *tournamentService) GlobalRanking(ctx context.Context) ([]models.RankingRow, error) {
	var (
		players []models.Player
		matches []models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.List(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListApproved(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load ranking data: %w", err)
	}
	return scoring.GlobalRanking(players, matches), nil
}

// PlayerHistory lists every real match of the player; stats count approved matches only.
func (s *tournamentService) PlayerHistory(ctx context.Context, playerID int) (*PlayerHistory, error) {
	var (
		player  *models.Player
		matches []models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		player, err = s.playerRepo.GetByID(gCtx, playerID)
		return handleRepositoryError(err)
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByPlayer(gCtx, playerID)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	approved := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.IsApproved {
			approved = append(approved, m)
		}
	}
	stats := scoring.GlobalRanking([]models.Player{*player}, approved)[0]

	return &PlayerHistory{Player: *player, Stats: stats, Matches: matches}, nil
}

func (s *tournamentService) FinalizeFinished(ctx context.Context) (int, error) {
	candidates, err := s.tournamentRepo.ListUnfinished(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unfinished tournaments: %w", err)
	}

	stamped := 0
	var errs []error
	for _, candidate := range candidates {
		var finished *finishedTournament
		err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
			t, err := s.tournamentRepo.LockForUpdate(ctx, tx, candidate.ID)
			if err != nil {
				return handleRepositoryError(err)
			}
			if err := s.finalizer.loadState(ctx, tx, t); err != nil {
				return err
			}
			finished, err = s.finalizer.markFinishedIfDone(ctx, tx, t)
			return err
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to finalize tournament", slog.Int("tournament_id", candidate.ID), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("tournament %d: %w", candidate.ID, err))
			continue
		}
		if finished != nil {
			stamped++
			s.finalizer.publish(ctx, finished)
		}
	}
	return stamped, errors.Join(errs...)
}
