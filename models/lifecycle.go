package models

import "time"

type TournamentState string

const (
	StateDraft      TournamentState = "draft"
	StateScheduled  TournamentState = "scheduled"
	StateInProgress TournamentState = "in_progress"
	StateFinished   TournamentState = "finished"
)

// State derives the lifecycle position from the current match set.
func (t *Tournament) State() TournamentState {
	if len(t.Matches) == 0 {
		return StateDraft
	}
	if t.IsFinished() {
		return StateFinished
	}
	for _, m := range t.Matches {
		if m.IsBye() {
			continue
		}
		if m.IsPlayed() || m.IsApproved {
			return StateInProgress
		}
	}
	return StateScheduled
}

// IsFinished is true for a knockout whose highest round holds a single decided, approved
// final, and for a league in which every scheduled pairing has been played and approved.
func (t *Tournament) IsFinished() bool {
	switch t.Format {
	case FormatKnockout:
		return knockoutFinished(t.Matches)
	case FormatLeague:
		return leagueFinished(len(t.PlayerIDs), t.LegCount(), t.Matches)
	default:
		return false
	}
}

func knockoutFinished(matches []Match) bool {
	if len(matches) == 0 {
		return false
	}
	final := MatchesInRound(matches, HighestRound(matches))
	if len(final) != 1 {
		return false
	}
	m := final[0]
	return !m.IsBye() && m.IsApproved && m.Decided()
}

func leagueFinished(players, legs int, matches []Match) bool {
	if players < 2 {
		return false
	}
	expected := legs * players * (players - 1) / 2
	played, approved := 0, 0
	for _, m := range matches {
		if m.IsBye() {
			continue
		}
		if m.IsPlayed() {
			played++
		}
		if m.IsApproved {
			approved++
		}
	}
	return played == expected && approved == expected
}

// IsOpenForSignup mirrors the public listing rule: not started, not ended, room left.
func (t *Tournament) IsOpenForSignup() bool {
	if t.HasStarted || t.EndDate != nil {
		return false
	}
	if t.MaxPlayers != nil && len(t.PlayerIDs) >= *t.MaxPlayers {
		return false
	}
	return true
}

// StampEnd records the finish time once. It reports whether the stamp happened on this call.
func (t *Tournament) StampEnd(now time.Time) bool {
	if t.EndDate != nil || !t.IsFinished() {
		return false
	}
	t.EndDate = &now
	return true
}

// Champion returns the winner of a finished knockout.
func (t *Tournament) Champion() (int, bool) {
	if t.Format != FormatKnockout || !t.IsFinished() {
		return 0, false
	}
	final := t.MatchesInRound(t.HighestRound())
	return final[0].WinnerID()
}
