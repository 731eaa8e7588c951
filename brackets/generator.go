package brackets

import (
	"context"
	"errors"

	"github.com/Dosada05/tabletennis-tournament/models"
)

var (
	ErrInvalidRoster   = errors.New("roster must contain at least two distinct players")
	ErrRoundIncomplete = errors.New("not every match of the current round is approved")
	// ErrBracketCorrupted signals stored matches that break a bracket invariant.
	// It is a programming or data error, never a user input problem.
	ErrBracketCorrupted = errors.New("bracket invariant violated")
)

type GenerateBracketParams struct {
	Tournament *models.Tournament
	PlayerIDs  []int
	Seed       int64
}

// BracketGenerator produces the opening schedule of a tournament.
type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]models.Match, error)

	GetName() string
}

// GeneratorFor picks the generator matching the tournament format.
func GeneratorFor(format models.CompetitionFormat) (BracketGenerator, bool) {
	switch format {
	case models.FormatKnockout:
		return NewSingleEliminationGenerator(), true
	case models.FormatLeague:
		return NewRoundRobinGenerator(), true
	default:
		return nil, false
	}
}

func validateRoster(ids []int) error {
	if len(ids) < 2 {
		return ErrInvalidRoster
	}
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return ErrInvalidRoster
		}
		if _, dup := seen[id]; dup {
			return ErrInvalidRoster
		}
		seen[id] = struct{}{}
	}
	return nil
}
