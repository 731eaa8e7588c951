package services

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/Dosada05/tabletennis-tournament/repositories"
	"github.com/Dosada05/tabletennis-tournament/scoring"
)

// Deps wires the services together. Zero optional fields fall back to defaults.
type Deps struct {
	DB             *sql.DB
	TournamentRepo repositories.TournamentRepository
	RosterRepo     repositories.RosterRepository
	MatchRepo      repositories.MatchRepository
	PlayerRepo     repositories.PlayerRepository
	StandingRepo   repositories.StandingRepository

	Archiver ResultArchiver // nil disables archiving
	Hub      Broadcaster
	Policy   scoring.PointsPolicy
	Seed     SeedFunc
	Now      func() time.Time
	Logger   *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Hub == nil {
		d.Hub = nopBroadcaster{}
	}
	if d.Policy == (scoring.PointsPolicy{}) {
		d.Policy = scoring.DefaultPointsPolicy
	}
	if d.Seed == nil {
		d.Seed = TimeSeed
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

func (d Deps) finalizer() *finalizer {
	return &finalizer{
		tournamentRepo: d.TournamentRepo,
		rosterRepo:     d.RosterRepo,
		matchRepo:      d.MatchRepo,
		playerRepo:     d.PlayerRepo,
		standingRepo:   d.StandingRepo,
		archiver:       d.Archiver,
		policy:         d.Policy,
		hub:            d.Hub,
		now:            d.Now,
		logger:         d.Logger,
	}
}
