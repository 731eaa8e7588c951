package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tabletennis-tournament/brackets"
	"github.com/Dosada05/tabletennis-tournament/models"
	"github.com/Dosada05/tabletennis-tournament/repositories"
	"github.com/Dosada05/tabletennis-tournament/scoring"
)

type EnterScoreInput struct {
	SetScores models.SetScores `json:"set_scores"`
	// ByOrganizer marks an entry made by the tournament organizer; it is approved at once.
	ByOrganizer bool       `json:"by_organizer"`
	EnteredBy   string     `json:"entered_by"`
	DatePlayed  *time.Time `json:"date_played,omitempty"`
}

type EditScoreInput struct {
	SetScores  models.SetScores `json:"set_scores"`
	Approve    bool             `json:"approve"`
	EnteredBy  string           `json:"entered_by"`
	DatePlayed *time.Time       `json:"date_played,omitempty"`
}

type MatchService interface {
	EnterScore(ctx context.Context, matchID int, input EnterScoreInput) (*models.Match, error)
	ApproveMatch(ctx context.Context, matchID int) (*models.Match, error)
	// EditScore is the organizer override; knockout matches of older rounds stay locked.
	EditScore(ctx context.Context, matchID int, input EditScoreInput) (*models.Match, error)
	ListPendingApproval(ctx context.Context, tournamentID int) ([]models.Match, error)
}

type matchService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	finalizer      *finalizer
	hub            Broadcaster
	now            func() time.Time
	logger         *slog.Logger
}

func NewMatchService(deps Deps) MatchService {
	deps = deps.withDefaults()
	return &matchService{
		db:             deps.DB,
		tournamentRepo: deps.TournamentRepo,
		matchRepo:      deps.MatchRepo,
		finalizer:      deps.finalizer(),
		hub:            deps.Hub,
		now:            deps.Now,
		logger:         deps.Logger,
	}
}

// matchUpdate carries one result change through the shared write path.
type matchUpdate struct {
	sets       models.SetScores
	approve    bool
	enteredBy  string
	datePlayed *time.Time
	// check runs against the locked tournament and the stored match before validation.
	check func(t *models.Tournament, m *models.Match) error
}

func (s *matchService) EnterScore(ctx context.Context, matchID int, input EnterScoreInput) (*models.Match, error) {
	return s.writeResult(ctx, matchID, matchUpdate{
		sets:       input.SetScores,
		approve:    input.ByOrganizer,
		enteredBy:  input.EnteredBy,
		datePlayed: input.DatePlayed,
		check: func(t *models.Tournament, m *models.Match) error {
			if !input.ByOrganizer && !t.AllowPlayersEnterScores {
				return ErrScoreEntryNotAllowed
			}
			if m.IsApproved {
				return ErrMatchAlreadyApproved
			}
			return nil
		},
	})
}

func (s *matchService) EditScore(ctx context.Context, matchID int, input EditScoreInput) (*models.Match, error) {
	return s.writeResult(ctx, matchID, matchUpdate{
		sets:       input.SetScores,
		approve:    input.Approve,
		enteredBy:  input.EnteredBy,
		datePlayed: input.DatePlayed,
		check: func(t *models.Tournament, m *models.Match) error {
			if t.Format == models.FormatKnockout && m.RoundNumber < t.HighestRound() {
				return fmt.Errorf("%w: match %d is in round %d, latest round is %d", ErrStaleRound, m.ID, m.RoundNumber, t.HighestRound())
			}
			return nil
		},
	})
}

func (s *matchService) writeResult(ctx context.Context, matchID int, upd matchUpdate) (*models.Match, error) {
	var updated *models.Match
	var finished *finishedTournament
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		m, t, err := s.loadForWrite(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if err := upd.check(t, m); err != nil {
			return err
		}

		w1, w2, err := scoring.ValidateAndScoreMatch(upd.sets, t.Rules())
		if err != nil {
			return err
		}

		m.SetScores = upd.sets
		m.Score1, m.Score2 = w1, w2
		m.IsApproved = upd.approve
		if by := strings.TrimSpace(upd.enteredBy); by != "" {
			m.EnteredBy = &by
		}
		switch {
		case upd.datePlayed != nil:
			m.DatePlayed = upd.datePlayed
		case m.DatePlayed == nil:
			now := s.now()
			m.DatePlayed = &now
		}

		if err := s.matchRepo.UpdateResult(ctx, tx, m); err != nil {
			return handleRepositoryError(err)
		}
		replaceMatch(t, *m)
		updated = m

		if m.IsApproved {
			finished, err = s.finalizer.markFinishedIfDone(ctx, tx, t)
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "score rejected", slog.Int("match_id", matchID), slog.Any("error", err))
		return nil, err
	}

	s.afterWrite(ctx, updated, finished)
	return updated, nil
}

func (s *matchService) ApproveMatch(ctx context.Context, matchID int) (*models.Match, error) {
	var approved *models.Match
	var finished *finishedTournament
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		m, t, err := s.loadForWrite(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if m.IsApproved {
			return ErrMatchAlreadyApproved
		}
		if !m.IsPlayed() {
			return fmt.Errorf("%w: match %d has no result to approve", scoring.ErrInvalidMatchOutcome, m.ID)
		}

		if err := s.matchRepo.Approve(ctx, tx, m.ID); err != nil {
			return handleRepositoryError(err)
		}
		m.IsApproved = true
		replaceMatch(t, *m)
		approved = m

		finished, err = s.finalizer.markFinishedIfDone(ctx, tx, t)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "approval rejected", slog.Int("match_id", matchID), slog.Any("error", err))
		return nil, err
	}

	s.afterWrite(ctx, approved, finished)
	return approved, nil
}

// loadForWrite reads the match, locks its tournament and loads the tournament state.
func (s *matchService) loadForWrite(ctx context.Context, tx *sql.Tx, matchID int) (*models.Match, *models.Tournament, error) {
	m, err := s.matchRepo.GetByID(ctx, tx, matchID)
	if err != nil {
		return nil, nil, handleRepositoryError(err)
	}
	if m.IsBye() {
		return nil, nil, ErrByeNotEditable
	}

	t, err := s.tournamentRepo.LockForUpdate(ctx, tx, m.TournamentID)
	if err != nil {
		return nil, nil, handleRepositoryError(err)
	}
	if t.EndDate != nil {
		return nil, nil, ErrTournamentFinished
	}
	if err := s.finalizer.loadState(ctx, tx, t); err != nil {
		return nil, nil, err
	}
	return m, t, nil
}

func (s *matchService) afterWrite(ctx context.Context, m *models.Match, finished *finishedTournament) {
	s.logger.InfoContext(ctx, "match result stored",
		slog.Int("match_id", m.ID),
		slog.Int("tournament_id", m.TournamentID),
		slog.String("tally", fmt.Sprintf("%d:%d", m.Score1, m.Score2)),
		slog.Bool("approved", m.IsApproved))
	broadcastTournamentEvent(s.hub, m.TournamentID, brackets.EventMatchUpdated, m)
	s.finalizer.publish(ctx, finished)
}

func (s *matchService) ListPendingApproval(ctx context.Context, tournamentID int) ([]models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	matches, err := s.matchRepo.ListPendingApproval(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending matches of tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

// replaceMatch swaps the stored copy of m inside t.Matches.
func replaceMatch(t *models.Tournament, m models.Match) {
	for i := range t.Matches {
		if t.Matches[i].ID == m.ID {
			t.Matches[i] = m
			return
		}
	}
	t.Matches = append(t.Matches, m)
}
