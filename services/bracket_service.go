package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Dosada05/tabletennis-tournament/brackets"
	"github.com/Dosada05/tabletennis-tournament/models"
	"github.com/Dosada05/tabletennis-tournament/repositories"
)

// BracketGeneratedPayload is pushed to the tournament room after a schedule or round is stored.
type BracketGeneratedPayload struct {
	TournamentID int            `json:"tournament_id"`
	Round        int            `json:"round"`
	Matches      []models.Match `json:"matches"`
}

type BracketService interface {
	// GenerateBracket stores round 1 of a knockout or the whole league schedule.
	GenerateBracket(ctx context.Context, tournamentID int) ([]models.Match, error)
	// AdvanceRound builds the next knockout round from the approved winners of the latest one.
	AdvanceRound(ctx context.Context, tournamentID int) (*brackets.RoundAdvanceOutcome, error)
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	rosterRepo     repositories.RosterRepository
	matchRepo      repositories.MatchRepository
	finalizer      *finalizer
	hub            Broadcaster
	seed           SeedFunc
	logger         *slog.Logger
	locks          *tournamentLocks
}

func NewBracketService(deps Deps) BracketService {
	deps = deps.withDefaults()
	return &bracketService{
		db:             deps.DB,
		tournamentRepo: deps.TournamentRepo,
		rosterRepo:     deps.RosterRepo,
		matchRepo:      deps.MatchRepo,
		finalizer:      deps.finalizer(),
		hub:            deps.Hub,
		seed:           deps.Seed,
		logger:         deps.Logger,
		locks:          newTournamentLocks(),
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) ([]models.Match, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	var created []models.Match
	var seed int64
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		t, err := s.tournamentRepo.LockForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}

		generator, ok := brackets.GeneratorFor(t.Format)
		if !ok {
			return fmt.Errorf("%w: unknown format %q", ErrUnsupportedFormat, t.Format)
		}
		if err := t.Rules().Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTournamentConfig, err)
		}

		existing, err := s.matchRepo.CountByRound(ctx, tx, tournamentID, 1)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyGenerated
		}

		playerIDs, err := s.rosterRepo.ListPlayerIDs(ctx, tx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load roster of tournament %d: %w", tournamentID, err)
		}
		t.PlayerIDs = playerIDs

		seed = s.seed()
		matches, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			Tournament: t,
			PlayerIDs:  playerIDs,
			Seed:       seed,
		})
		if err != nil {
			return fmt.Errorf("failed to generate %s schedule for tournament %d: %w", generator.GetName(), tournamentID, err)
		}

		if err := s.matchRepo.CreateBatch(ctx, tx, matches); err != nil {
			return handleRepositoryError(err)
		}
		if err := s.tournamentRepo.SetStarted(ctx, tx, tournamentID); err != nil {
			return handleRepositoryError(err)
		}
		created = matches
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "bracket generation failed", tournamentID, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "schedule generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("matches", len(created)),
		slog.Int64("seed", seed))
	broadcastTournamentEvent(s.hub, tournamentID, brackets.EventBracketGenerated, BracketGeneratedPayload{
		TournamentID: tournamentID,
		Round:        1,
		Matches:      created,
	})
	return created, nil
}

func (s *bracketService) AdvanceRound(ctx context.Context, tournamentID int) (*brackets.RoundAdvanceOutcome, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	var outcome *brackets.RoundAdvanceOutcome
	var finished *finishedTournament
	var seed int64
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		t, err := s.tournamentRepo.LockForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if t.Format != models.FormatKnockout {
			return fmt.Errorf("%w: rounds only advance in knockout tournaments", ErrUnsupportedFormat)
		}
		if err := s.finalizer.loadState(ctx, tx, t); err != nil {
			return err
		}
		if len(t.Matches) == 0 {
			return ErrNotGenerated
		}

		highest := t.HighestRound()
		current := t.MatchesInRound(highest)
		if highest > 1 && roundUntouched(current) {
			// раунд уже создан предыдущим вызовом, результатов ещё нет
			return fmt.Errorf("%w: round %d has no results yet", ErrAlreadyGenerated, highest)
		}
		seed = s.seed()
		outcome, err = brackets.AdvanceKnockout(brackets.AdvanceParams{
			TournamentID: tournamentID,
			CurrentRound: current,
			Seed:         seed,
		})
		if err != nil {
			return err
		}

		if outcome.Kind == brackets.TournamentComplete {
			finished, err = s.finalizer.markFinishedIfDone(ctx, tx, t)
			return err
		}

		if err := s.matchRepo.CreateBatch(ctx, tx, outcome.Matches); err != nil {
			return handleRepositoryError(err)
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "round advance failed", tournamentID, err)
		return nil, err
	}

	switch outcome.Kind {
	case brackets.NewRoundGenerated:
		s.logger.InfoContext(ctx, "knockout round generated",
			slog.Int("tournament_id", tournamentID),
			slog.Int("round", outcome.Round),
			slog.Int("matches", len(outcome.Matches)),
			slog.Int64("seed", seed))
		broadcastTournamentEvent(s.hub, tournamentID, brackets.EventRoundAdvanced, BracketGeneratedPayload{
			TournamentID: tournamentID,
			Round:        outcome.Round,
			Matches:      outcome.Matches,
		})
	case brackets.TournamentComplete:
		s.finalizer.publish(ctx, finished)
	}
	return outcome, nil
}

func (s *bracketService) logFailure(ctx context.Context, msg string, tournamentID int, err error) {
	level := slog.LevelWarn
	if errors.Is(err, brackets.ErrBracketCorrupted) {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, msg, slog.Int("tournament_id", tournamentID), slog.Any("error", err))
}

// roundUntouched reports whether a round holds real matches and none of them has a result yet.
func roundUntouched(round []models.Match) bool {
	pending := 0
	for _, m := range round {
		if m.IsBye() {
			continue
		}
		if m.IsPlayed() || m.IsApproved {
			return false
		}
		pending++
	}
	return pending > 0
}

// tournamentLocks serialises writers of the same tournament inside this process.
// Entries live only while someone holds or waits for them.
type tournamentLocks struct {
	mu    sync.Mutex
	locks map[int]*tournamentLock
}

type tournamentLock struct {
	mu   sync.Mutex
	refs int
}

func newTournamentLocks() *tournamentLocks {
	return &tournamentLocks{locks: make(map[int]*tournamentLock)}
}

func (l *tournamentLocks) lock(tournamentID int) func() {
	l.mu.Lock()
	entry, ok := l.locks[tournamentID]
	if !ok {
		entry = &tournamentLock{}
		l.locks[tournamentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, tournamentID)
		}
		l.mu.Unlock()
	}
}

