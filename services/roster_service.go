package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Dosada05/tabletennis-tournament/repositories"
)

type RosterService interface {
	Join(ctx context.Context, tournamentID, playerID int) error
	Leave(ctx context.Context, tournamentID, playerID int) error
}

type rosterService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	rosterRepo     repositories.RosterRepository
	playerRepo     repositories.PlayerRepository
	logger         *slog.Logger
}

func NewRosterService(deps Deps) RosterService {
	deps = deps.withDefaults()
	return &rosterService{
		db:             deps.DB,
		tournamentRepo: deps.TournamentRepo,
		rosterRepo:     deps.RosterRepo,
		playerRepo:     deps.PlayerRepo,
		logger:         deps.Logger,
	}
}

func (s *rosterService) Join(ctx context.Context, tournamentID, playerID int) error {
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		return handleRepositoryError(err)
	}

	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		t, err := s.tournamentRepo.LockForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		t.PlayerIDs, err = s.rosterRepo.ListPlayerIDs(ctx, tx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load roster of tournament %d: %w", tournamentID, err)
		}

		if slices.Contains(t.PlayerIDs, playerID) {
			return ErrAlreadyRegistered
		}
		if !t.IsOpenForSignup() {
			if t.HasStarted || t.EndDate != nil {
				return ErrRegistrationClosed
			}
			return fmt.Errorf("%w: %d of %d places taken", ErrTournamentFull, len(t.PlayerIDs), *t.MaxPlayers)
		}

		return handleRepositoryError(s.rosterRepo.Add(ctx, tx, tournamentID, playerID))
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "player joined tournament", slog.Int("tournament_id", tournamentID), slog.Int("player_id", playerID))
	return nil
}

func (s *rosterService) Leave(ctx context.Context, tournamentID, playerID int) error {
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		t, err := s.tournamentRepo.LockForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if t.HasStarted || t.EndDate != nil {
			return ErrRegistrationClosed
		}
		return handleRepositoryError(s.rosterRepo.Remove(ctx, tx, tournamentID, playerID))
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "player left tournament", slog.Int("tournament_id", tournamentID), slog.Int("player_id", playerID))
	return nil
}
