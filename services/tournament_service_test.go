package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/tabletennis-tournament/models"
	"github.com/Dosada05/tabletennis-tournament/repositories"
)

func TestCreateTournament(t *testing.T) {
	e := newEnv(t)
	input := CreateTournamentInput{
		Name:         "  Autumn Open ",
		Format:       models.FormatLeague,
		SetsToWin:    3,
		PointsPerSet: 11,
		StartDate:    time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC),
	}

	created, err := e.tournamentSvc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == 0 {
		t.Error("tournament id was not assigned")
	}
	if created.Name != "Autumn Open" {
		t.Errorf("Name = %q, want trimmed", created.Name)
	}
	if created.Legs != 1 {
		t.Errorf("Legs = %d, want 1", created.Legs)
	}
}

func TestCreateTournamentValidation(t *testing.T) {
	start := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	valid := CreateTournamentInput{Name: "Cup", Format: models.FormatKnockout, SetsToWin: 3, PointsPerSet: 11, StartDate: start}

	tests := []struct {
		name    string
		mutate  func(in *CreateTournamentInput)
		problem string
	}{
		{"blank name", func(in *CreateTournamentInput) { in.Name = "  " }, "name is required"},
		{"unknown format", func(in *CreateTournamentInput) { in.Format = "swiss" }, "format must be"},
		{"one set", func(in *CreateTournamentInput) { in.SetsToWin = 1 }, "sets_to_win"},
		{"short sets", func(in *CreateTournamentInput) { in.PointsPerSet = 4 }, "points_per_set"},
		{"three legs", func(in *CreateTournamentInput) { in.Legs = 3 }, "legs must be"},
		{"double knockout", func(in *CreateTournamentInput) { in.Legs = 2 }, "only possible in a league"},
		{"tiny roster", func(in *CreateTournamentInput) { in.MaxPlayers = ptr(1) }, "max_players"},
		{"no start", func(in *CreateTournamentInput) { in.StartDate = time.Time{} }, "start_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			in := valid
			tt.mutate(&in)

			_, err := e.tournamentSvc.Create(context.Background(), in)
			if !errors.Is(err, ErrInvalidTournamentConfig) {
				t.Fatalf("Create() error = %v, want %v", err, ErrInvalidTournamentConfig)
			}
			if !strings.Contains(err.Error(), tt.problem) {
				t.Errorf("Create() error = %q, want it to mention %q", err, tt.problem)
			}
		})
	}
}

func TestCreateTournamentNameConflict(t *testing.T) {
	e := newEnv(t)
	e.store.createErr = repositories.ErrTournamentNameConflict

	_, err := e.tournamentSvc.Create(context.Background(), CreateTournamentInput{
		Name: "Cup", Format: models.FormatKnockout, SetsToWin: 3, PointsPerSet: 11, StartDate: time.Now(),
	})
	if !errors.Is(err, ErrInvalidTournamentConfig) {
		t.Fatalf("Create() error = %v, want %v", err, ErrInvalidTournamentConfig)
	}
}

func TestGetDetailsFollowsLifecycle(t *testing.T) {
	e := newEnv(t)
	e.store.addTournament(league(1), 1, 2)
	ctx := context.Background()

	details, err := e.tournamentSvc.GetDetails(ctx, 1)
	if err != nil {
		t.Fatalf("GetDetails() error = %v", err)
	}
	if details.State != models.StateDraft || !details.IsOpenForSignup || details.IsFinished {
		t.Errorf("draft details = %+v", details)
	}
	if len(details.Players) != 2 {
		t.Errorf("players = %d, want 2", len(details.Players))
	}

	e.expectCommit()
	matches, err := e.bracketSvc.GenerateBracket(ctx, 1)
	if err != nil {
		t.Fatalf("GenerateBracket() error = %v", err)
	}
	details, _ = e.tournamentSvc.GetDetails(ctx, 1)
	if details.State != models.StateScheduled || details.IsOpenForSignup {
		t.Errorf("scheduled details: state=%s open=%t", details.State, details.IsOpenForSignup)
	}

	e.expectCommit()
	if _, err := e.matchSvc.EnterScore(ctx, matches[0].ID, EnterScoreInput{SetScores: player1Wins(), ByOrganizer: true}); err != nil {
		t.Fatalf("EnterScore() error = %v", err)
	}
	details, _ = e.tournamentSvc.GetDetails(ctx, 1)
	if details.State != models.StateFinished || !details.IsFinished || details.EndDate == nil {
		t.Errorf("finished details: state=%s finished=%t end=%v", details.State, details.IsFinished, details.EndDate)
	}
	if details.ChampionID != nil {
		t.Errorf("league has champion %d", *details.ChampionID)
	}

	if _, err := e.tournamentSvc.GetDetails(ctx, 42); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("GetDetails(unknown) error = %v, want %v", err, ErrTournamentNotFound)
	}
}

func TestStandingsLiveAndSnapshot(t *testing.T) {
	e := newEnv(t)
	matches := seedLeague(t, e, league(1), 1, 2, 3)
	ctx := context.Background()

	e.expectCommit()
	if _, err := e.matchSvc.EnterScore(ctx, matches[0].ID, EnterScoreInput{SetScores: player1Wins(), ByOrganizer: true}); err != nil {
		t.Fatalf("EnterScore() error = %v", err)
	}

	live, err := e.tournamentSvc.Standings(ctx, 1)
	if err != nil {
		t.Fatalf("Standings() error = %v", err)
	}
	if len(live) != 2 {
		t.Fatalf("live table has %d rows, want the 2 players who played", len(live))
	}
	if live[0].PlayerID != matches[0].Player1ID || live[0].Points != 2 {
		t.Errorf("leader = %+v, want player %d with 2 points", live[0], matches[0].Player1ID)
	}

	// The stored snapshot wins over recomputation once the tournament has ended.
	end := fixedNow
	e.store.tournaments[1].EndDate = &end
	e.store.standings[1] = []models.StandingRow{{Rank: 1, PlayerID: 3, Points: 99}}
	final, err := e.tournamentSvc.Standings(ctx, 1)
	if err != nil {
		t.Fatalf("Standings() error = %v", err)
	}
	if len(final) != 1 || final[0].Points != 99 {
		t.Errorf("final table = %+v, want stored snapshot", final)
	}
}

func TestListOpenForSignup(t *testing.T) {
	e := newEnv(t)
	full := league(2)
	full.MaxPlayers = ptr(2)
	started := knockout(3)
	started.HasStarted = true

	e.store.addTournament(league(1), 1)
	e.store.addTournament(full, 1, 2)
	e.store.addTournament(started, 1, 2)

	open, err := e.tournamentSvc.ListOpenForSignup(context.Background())
	if err != nil {
		t.Fatalf("ListOpenForSignup() error = %v", err)
	}
	if len(open) != 1 || open[0].ID != 1 {
		t.Errorf("open = %+v, want only tournament 1", open)
	}
}

func TestGlobalRanking(t *testing.T) {
	e := newEnv(t)
	matches := seedLeague(t, e, league(1), 1, 2, 3)

	e.expectCommit()
	if _, err := e.matchSvc.EnterScore(context.Background(), matches[0].ID, EnterScoreInput{SetScores: player2Wins(), ByOrganizer: true}); err != nil {
		t.Fatalf("EnterScore() error = %v", err)
	}

	ranking, err := e.tournamentSvc.GlobalRanking(context.Background())
	if err != nil {
		t.Fatalf("GlobalRanking() error = %v", err)
	}
	if len(ranking) != 3 {
		t.Fatalf("ranking has %d rows, want every player", len(ranking))
	}
	if ranking[0].PlayerID != matches[0].Player2ID || ranking[0].Wins != 1 || ranking[0].SetsWon != 3 {
		t.Errorf("top row = %+v, want player %d with one win", ranking[0], matches[0].Player2ID)
	}
}

func TestFinalizeFinishedStampsOnce(t *testing.T) {
	e := newEnv(t)
	done := league(1)
	done.HasStarted = true
	e.store.addTournament(done, 1, 2)
	e.store.matches = []models.Match{{ID: 1, TournamentID: 1, RoundNumber: 1, Player1ID: 1, Player2ID: 2,
		SetScores: player1Wins(), Score1: 3, Score2: 1, IsApproved: true}}

	running := knockout(2)
	running.HasStarted = true
	e.store.addTournament(running, 1, 2)
	e.store.matches = append(e.store.matches, models.Match{ID: 2, TournamentID: 2, RoundNumber: 1, Player1ID: 1, Player2ID: 2})

	e.expectCommit()
	e.expectCommit()
	stamped, err := e.tournamentSvc.FinalizeFinished(context.Background())
	if err != nil {
		t.Fatalf("FinalizeFinished() error = %v", err)
	}
	if stamped != 1 {
		t.Errorf("stamped = %d, want 1", stamped)
	}
	if e.store.tournament(1).EndDate == nil || e.store.tournament(2).EndDate != nil {
		t.Error("wrong tournament was stamped")
	}

	e.expectCommit()
	stamped, err = e.tournamentSvc.FinalizeFinished(context.Background())
	if err != nil {
		t.Fatalf("second FinalizeFinished() error = %v", err)
	}
	if stamped != 0 || e.store.stamps != 1 {
		t.Errorf("second sweep stamped %d, total stamps %d", stamped, e.store.stamps)
	}
	if len(e.archiver.results) != 1 {
		t.Errorf("archived %d results, want 1", len(e.archiver.results))
	}
}

func updateInput(name string) UpdateTournamentInput {
	return UpdateTournamentInput{CreateTournamentInput: CreateTournamentInput{
		Name:         name,
		Format:       models.FormatLeague,
		SetsToWin:    4,
		PointsPerSet: 11,
		Legs:         2,
		MaxPlayers:   ptr(4),
		StartDate:    time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}}
}

func TestUpdateTournamentReplacesRoster(t *testing.T) {
	e := newEnv(t)
	e.store.addTournament(knockout(1), 1, 2, 3)
	e.store.addPlayers(4, 5)

	input := updateInput(" Summer League ")
	input.PlayerIDs = []int{5, 1, 4}

	e.expectCommit()
	updated, err := e.tournamentSvc.Update(context.Background(), 1, input)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Summer League" || updated.Format != models.FormatLeague || updated.Legs != 2 || updated.SetsToWin != 4 {
		t.Errorf("updated = %+v", updated)
	}
	stored := e.store.tournament(1)
	if stored.Name != "Summer League" || !stored.StartDate.Equal(input.StartDate) {
		t.Errorf("stored = %+v", stored)
	}
	roster := e.store.rosters[1]
	if len(roster) != 3 || roster[0] != 5 || roster[1] != 1 || roster[2] != 4 {
		t.Errorf("roster = %v, want [5 1 4]", roster)
	}
}

func TestUpdateTournamentKeepsRosterWhenOmitted(t *testing.T) {
	e := newEnv(t)
	e.store.addTournament(league(1), 1, 2)

	e.expectCommit()
	updated, err := e.tournamentSvc.Update(context.Background(), 1, updateInput("Renamed"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated.PlayerIDs) != 2 || len(e.store.rosters[1]) != 2 {
		t.Errorf("roster changed: %v / %v", updated.PlayerIDs, e.store.rosters[1])
	}
}

func TestUpdateTournamentRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("started", func(t *testing.T) {
		e := newEnv(t)
		seedLeague(t, e, league(1), 1, 2)

		e.expectRollback()
		if _, err := e.tournamentSvc.Update(ctx, 1, updateInput("Late")); !errors.Is(err, ErrTournamentStarted) {
			t.Fatalf("Update() error = %v, want %v", err, ErrTournamentStarted)
		}
		if e.store.tournament(1).Name != "Club League" {
			t.Error("started tournament was renamed")
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		e := newEnv(t)
		e.store.addTournament(league(1), 1, 2)
		input := updateInput("Cup")
		input.SetsToWin = 1

		if _, err := e.tournamentSvc.Update(ctx, 1, input); !errors.Is(err, ErrInvalidTournamentConfig) {
			t.Fatalf("Update() error = %v, want %v", err, ErrInvalidTournamentConfig)
		}
	})

	t.Run("duplicate roster entry", func(t *testing.T) {
		e := newEnv(t)
		e.store.addTournament(league(1), 1, 2)
		input := updateInput("Cup")
		input.PlayerIDs = []int{1, 2, 1}

		if _, err := e.tournamentSvc.Update(ctx, 1, input); !errors.Is(err, ErrInvalidTournamentConfig) {
			t.Fatalf("Update() error = %v, want %v", err, ErrInvalidTournamentConfig)
		}
	})

	t.Run("roster over the cap", func(t *testing.T) {
		e := newEnv(t)
		e.store.addTournament(league(1), 1, 2, 3, 4, 5)

		e.expectRollback()
		if _, err := e.tournamentSvc.Update(ctx, 1, updateInput("Cup")); !errors.Is(err, ErrTournamentFull) {
			t.Fatalf("Update() error = %v, want %v", err, ErrTournamentFull)
		}
	})

	t.Run("unknown player", func(t *testing.T) {
		e := newEnv(t)
		e.store.addTournament(league(1), 1, 2)
		input := updateInput("Cup")
		input.PlayerIDs = []int{1, 99}

		e.expectRollback()
		if _, err := e.tournamentSvc.Update(ctx, 1, input); !errors.Is(err, ErrPlayerNotFound) {
			t.Fatalf("Update() error = %v, want %v", err, ErrPlayerNotFound)
		}
	})

	t.Run("name taken", func(t *testing.T) {
		e := newEnv(t)
		e.store.addTournament(league(1), 1, 2)
		e.store.addTournament(knockout(2))

		e.expectRollback()
		if _, err := e.tournamentSvc.Update(ctx, 1, updateInput("Spring Cup")); !errors.Is(err, ErrInvalidTournamentConfig) {
			t.Fatalf("Update() error = %v, want %v", err, ErrInvalidTournamentConfig)
		}
	})

	t.Run("unknown tournament", func(t *testing.T) {
		e := newEnv(t)

		e.expectRollback()
		if _, err := e.tournamentSvc.Update(ctx, 42, updateInput("Cup")); !errors.Is(err, ErrTournamentNotFound) {
			t.Fatalf("Update() error = %v, want %v", err, ErrTournamentNotFound)
		}
	})
}

func TestDeleteTournament(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	// три игрока: сетка с одним bye, реальных результатов нет
	e.store.addTournament(knockout(1), 1, 2, 3)
	e.expectCommit()
	if _, err := e.bracketSvc.GenerateBracket(ctx, 1); err != nil {
		t.Fatalf("GenerateBracket() error = %v", err)
	}

	e.expectCommit()
	if err := e.tournamentSvc.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := e.store.tournaments[1]; ok {
		t.Error("tournament is still stored")
	}
	if n := len(e.store.matchesOf(1)); n != 0 {
		t.Errorf("%d matches left behind", n)
	}

	e.expectRollback()
	if err := e.tournamentSvc.Delete(ctx, 1); !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("second Delete() error = %v, want %v", err, ErrTournamentNotFound)
	}
}

func TestDeleteTournamentWithApprovedResult(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	matches := seedLeague(t, e, league(1), 1, 2, 3)

	e.expectCommit()
	if _, err := e.matchSvc.EnterScore(ctx, matches[0].ID, EnterScoreInput{SetScores: player1Wins(), ByOrganizer: true}); err != nil {
		t.Fatalf("EnterScore() error = %v", err)
	}

	e.expectRollback()
	if err := e.tournamentSvc.Delete(ctx, 1); !errors.Is(err, ErrTournamentHasResults) {
		t.Fatalf("Delete() error = %v, want %v", err, ErrTournamentHasResults)
	}
	if _, ok := e.store.tournaments[1]; !ok {
		t.Error("tournament with results was deleted")
	}
}

func TestListTournaments(t *testing.T) {
	e := newEnv(t)
	older := league(1)
	newer := knockout(2)
	newer.StartDate = older.StartDate.AddDate(0, 1, 0)
	e.store.addTournament(older)
	e.store.addTournament(newer)
	ctx := context.Background()

	all, err := e.tournamentSvc.List(ctx, repositories.ListTournamentsFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 || all[0].ID != 2 {
		t.Errorf("List() = %+v, want newest first", all)
	}

	format := models.FormatLeague
	leagues, err := e.tournamentSvc.List(ctx, repositories.ListTournamentsFilter{Format: &format})
	if err != nil || len(leagues) != 1 || leagues[0].ID != 1 {
		t.Errorf("List(league) = %+v, %v", leagues, err)
	}

	page, err := e.tournamentSvc.List(ctx, repositories.ListTournamentsFilter{Limit: 1, Offset: 1})
	if err != nil || len(page) != 1 || page[0].ID != 1 {
		t.Errorf("List(limit 1, offset 1) = %+v, %v", page, err)
	}

	bad := models.CompetitionFormat("swiss")
	if _, err := e.tournamentSvc.List(ctx, repositories.ListTournamentsFilter{Format: &bad}); !errors.Is(err, ErrInvalidTournamentConfig) {
		t.Errorf("List(swiss) error = %v, want %v", err, ErrInvalidTournamentConfig)
	}
}

func TestPlayerHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	matches := seedLeague(t, e, league(1), 1, 2, 3)

	winner := matches[0].Player1ID
	e.expectCommit()
	if _, err := e.matchSvc.EnterScore(ctx, matches[0].ID, EnterScoreInput{SetScores: player1Wins(), ByOrganizer: true}); err != nil {
		t.Fatalf("EnterScore() error = %v", err)
	}

	history, err := e.tournamentSvc.PlayerHistory(ctx, winner)
	if err != nil {
		t.Fatalf("PlayerHistory() error = %v", err)
	}
	if history.Player.ID != winner {
		t.Errorf("player = %+v", history.Player)
	}
	// в круговом турнире из трёх игроков каждый играет два матча
	if len(history.Matches) != 2 {
		t.Errorf("matches = %d, want 2", len(history.Matches))
	}
	if history.Stats.Played != 1 || history.Stats.Wins != 1 || history.Stats.SetsWon != 3 || history.Stats.SetsLost != 1 {
		t.Errorf("stats = %+v, want only the approved win", history.Stats)
	}

	if _, err := e.tournamentSvc.PlayerHistory(ctx, 99); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("PlayerHistory(unknown) error = %v, want %v", err, ErrPlayerNotFound)
	}
}
