// Package scoring validates entered results and turns approved matches into tables.
package scoring

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tabletennis-tournament/models"
)

var (
	ErrInvalidSetScore     = errors.New("invalid set score")
	ErrInvalidMatchOutcome = errors.New("invalid match outcome")
)

// Set rules, reported in SetScoreError.Rule.
const (
	RuleNegative       = "negative"
	RuleBelowThreshold = "below_threshold"
	RuleTie            = "tie"
	RuleMarginTooSmall = "margin_too_small"
	RuleBeyondDeuce    = "beyond_deuce"
)

// SetScoreError names the broken rule and the offending pair. It unwraps to ErrInvalidSetScore.
type SetScoreError struct {
	Set    int // 1-based position in the entered sets
	Score1 int
	Score2 int
	Rule   string
	Target int
}

func (e *SetScoreError) Error() string {
	var reason string
	switch e.Rule {
	case RuleNegative:
		reason = "scores cannot be negative"
	case RuleBelowThreshold:
		reason = fmt.Sprintf("the winner needs at least %d points", e.Target)
	case RuleTie:
		reason = "a set cannot end in a tie"
	case RuleMarginTooSmall:
		reason = "a set must be won by at least 2 points"
	case RuleBeyondDeuce:
		reason = fmt.Sprintf("past %d points only a 2 point margin is possible, e.g. %d:%d", e.Target, e.Target+1, e.Target-1)
	default:
		reason = e.Rule
	}
	return fmt.Sprintf("set %d (%d:%d): %s", e.Set, e.Score1, e.Score2, reason)
}

func (e *SetScoreError) Unwrap() error {
	return ErrInvalidSetScore
}

// ValidateSet checks a single finished set against the points-per-set threshold.
func ValidateSet(a, b, pointsPerSet int) string {
	if a < 0 || b < 0 {
		return RuleNegative
	}
	if a == b {
		return RuleTie
	}
	high, low := max(a, b), min(a, b)
	if high < pointsPerSet {
		return RuleBelowThreshold
	}
	if high-low < 2 {
		return RuleMarginTooSmall
	}
	if high > pointsPerSet && high-low != 2 {
		return RuleBeyondDeuce
	}
	return ""
}

// SetWins counts sets won by each side over the sets that carry both scores.
func SetWins(sets models.SetScores) (int, int) {
	w1, w2 := 0, 0
	for _, s := range sets {
		if !s.Complete() {
			continue
		}
		switch {
		case *s.Score1 > *s.Score2:
			w1++
		case *s.Score2 > *s.Score1:
			w2++
		}
	}
	return w1, w2
}

// ValidateAndScoreMatch validates every complete set and returns the set-win tally, which
// becomes the match's aggregate score. Exactly one side must reach SetsToWin.
func ValidateAndScoreMatch(sets models.SetScores, rules models.ScoringRules) (int, int, error) {
	if err := rules.Validate(); err != nil {
		return 0, 0, fmt.Errorf("scoring rules: %w", err)
	}

	for i, s := range sets {
		if !s.Complete() {
			continue
		}
		if rule := ValidateSet(*s.Score1, *s.Score2, rules.PointsPerSet); rule != "" {
			return 0, 0, &SetScoreError{Set: i + 1, Score1: *s.Score1, Score2: *s.Score2, Rule: rule, Target: rules.PointsPerSet}
		}
	}

	w1, w2 := SetWins(sets)
	target := rules.SetsToWin
	if (w1 == target && w2 < target) || (w2 == target && w1 < target) {
		return w1, w2, nil
	}
	return 0, 0, fmt.Errorf("%w: got %d:%d in sets, exactly one player must win %d", ErrInvalidMatchOutcome, w1, w2, target)
}
