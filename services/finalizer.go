package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tabletennis-tournament/brackets"
	"github.com/Dosada05/tabletennis-tournament/models"
	"github.com/Dosada05/tabletennis-tournament/repositories"
	"github.com/Dosada05/tabletennis-tournament/scoring"
)

const archiveTimeout = 30 * time.Second

// TournamentFinishedPayload is pushed to the tournament room once End is stamped.
type TournamentFinishedPayload struct {
	TournamentID int                  `json:"tournament_id"`
	EndDate      time.Time            `json:"end_date"`
	ChampionID   *int                 `json:"champion_id,omitempty"`
	Standings    []models.StandingRow `json:"standings"`
}

// finalizer detects finished tournaments, stamps End once and snapshots the final table.
// Shared by every service that can complete a tournament.
type finalizer struct {
	tournamentRepo repositories.TournamentRepository
	rosterRepo     repositories.RosterRepository
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	standingRepo   repositories.StandingRepository
	archiver       ResultArchiver
	policy         scoring.PointsPolicy
	hub            Broadcaster
	now            func() time.Time
	logger         *slog.Logger
}

type finishedTournament struct {
	tournament *models.Tournament
	table      []models.StandingRow
	championID *int
}

// loadState fills the roster and the matches of t through exec.
func (f *finalizer) loadState(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	playerIDs, err := f.rosterRepo.ListPlayerIDs(ctx, exec, t.ID)
	if err != nil {
		return fmt.Errorf("failed to load roster of tournament %d: %w", t.ID, err)
	}
	matches, err := f.matchRepo.ListByTournament(ctx, exec, t.ID, nil)
	if err != nil {
		return fmt.Errorf("failed to load matches of tournament %d: %w", t.ID, err)
	}
	t.PlayerIDs = playerIDs
	t.Matches = matches
	return nil
}

func (f *finalizer) playerNames(ctx context.Context, ids []int) (map[int]string, error) {
	players, err := f.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load player names: %w", err)
	}
	return models.PlayerNames(players), nil
}

// markFinishedIfDone expects t with roster and matches loaded. It returns nil when the
// tournament is not finished or End was already stamped.
func (f *finalizer) markFinishedIfDone(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) (*finishedTournament, error) {
	now := f.now()
	if !t.StampEnd(now) {
		return nil, nil
	}

	stamped, err := f.tournamentRepo.StampEnd(ctx, exec, t.ID, now)
	if err != nil {
		return nil, err
	}
	if !stamped {
		f.logger.InfoContext(ctx, "tournament end already stamped", slog.Int("tournament_id", t.ID))
		return nil, nil
	}

	names, err := f.playerNames(ctx, t.PlayerIDs)
	if err != nil {
		return nil, err
	}
	table := scoring.ComputeStandings(t.Matches, names, f.policy)
	if err := f.standingRepo.ReplaceForTournament(ctx, exec, t.ID, table, now); err != nil {
		return nil, fmt.Errorf("failed to snapshot standings of tournament %d: %w", t.ID, err)
	}

	done := &finishedTournament{tournament: t, table: table}
	if champion, ok := t.Champion(); ok {
		done.championID = &champion
	}
	return done, nil
}

// publish announces a committed finish and archives the result. Failures are logged only.
func (f *finalizer) publish(ctx context.Context, done *finishedTournament) {
	if done == nil {
		return
	}
	t := done.tournament
	attrs := []any{slog.Int("tournament_id", t.ID), slog.String("format", string(t.Format))}
	if done.championID != nil {
		attrs = append(attrs, slog.Int("champion_id", *done.championID))
	}
	f.logger.InfoContext(ctx, "tournament finished", attrs...)

	broadcastTournamentEvent(f.hub, t.ID, brackets.EventTournamentFinished, TournamentFinishedPayload{
		TournamentID: t.ID,
		EndDate:      *t.EndDate,
		ChampionID:   done.championID,
		Standings:    done.table,
	})

	if f.archiver == nil {
		return
	}
	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	location, err := f.archiver.Archive(archiveCtx, FinalResult{
		TournamentID: t.ID,
		Name:         t.Name,
		Format:       string(t.Format),
		StartDate:    t.StartDate,
		EndDate:      *t.EndDate,
		ChampionID:   done.championID,
		Standings:    done.table,
		Matches:      t.Matches,
	})
	if err != nil {
		f.logger.ErrorContext(ctx, "failed to archive final result", slog.Int("tournament_id", t.ID), slog.Any("error", err))
		return
	}
	f.logger.InfoContext(ctx, "final result archived", slog.Int("tournament_id", t.ID), slog.String("location", location))
}
