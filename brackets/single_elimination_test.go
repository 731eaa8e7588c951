package brackets

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Dosada05/tabletennis-tournament/models"
)

func playerIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

func TestBracketSize(t *testing.T) {
	tests := []struct {
		players int
		want    int
	}{
		{2, 2}, {3, 4}, {4, 4}, {5, 8}, {8, 8}, {9, 16}, {17, 32}, {32, 32}, {33, 64},
	}
	for _, tt := range tests {
		if got := BracketSize(tt.players); got != tt.want {
			t.Errorf("BracketSize(%d) = %d, want %d", tt.players, got, tt.want)
		}
	}
}

func TestSingleEliminationRoundOneShape(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	for p := 2; p <= 40; p++ {
		matches, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
			Tournament: &models.Tournament{ID: 7},
			PlayerIDs:  playerIDs(p),
			Seed:       int64(p),
		})
		if err != nil {
			t.Fatalf("P=%d: unexpected error: %v", p, err)
		}

		size := BracketSize(p)
		if len(matches) != size/2 {
			t.Fatalf("P=%d: got %d round-1 entries, want %d", p, len(matches), size/2)
		}

		seen := make(map[int]int)
		byes := 0
		for _, m := range matches {
			if m.RoundNumber != 1 || m.TournamentID != 7 {
				t.Fatalf("P=%d: match %+v has wrong round or tournament", p, m)
			}
			if m.IsBye() {
				byes++
				if m.Score1 != 1 || m.Score2 != 0 || !m.IsApproved {
					t.Fatalf("P=%d: bye %+v must be approved with tally 1:0", p, m)
				}
				seen[m.Player1ID]++
				continue
			}
			if m.IsApproved || m.Score1 != 0 || m.Score2 != 0 {
				t.Fatalf("P=%d: real match %+v must start unapproved at 0:0", p, m)
			}
			seen[m.Player1ID]++
			seen[m.Player2ID]++
		}
		if byes != size-p {
			t.Errorf("P=%d: got %d byes, want %d", p, byes, size-p)
		}
		if len(seen) != p {
			t.Errorf("P=%d: %d distinct players in round 1, want %d", p, len(seen), p)
		}
		for id, count := range seen {
			if count != 1 {
				t.Errorf("P=%d: player %d appears %d times", p, id, count)
			}
		}
	}
}

func TestSingleEliminationByesComeFirstAfterShuffle(t *testing.T) {
	ids := playerIDs(6)
	matches, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{PlayerIDs: ids, Seed: 99})
	if err != nil {
		t.Fatal(err)
	}
	shuffled := NewShuffler(99).Shuffle(ids)
	if !matches[0].IsBye() || matches[0].Player1ID != shuffled[0] {
		t.Fatalf("first bye should go to the first shuffled player %d, got %+v", shuffled[0], matches[0])
	}
	if !matches[1].IsBye() || matches[1].Player1ID != shuffled[1] {
		t.Fatalf("second bye should go to the second shuffled player %d, got %+v", shuffled[1], matches[1])
	}
	if matches[2].Player1ID != shuffled[2] || matches[2].Player2ID != shuffled[3] {
		t.Fatalf("first real match should pair %d and %d, got %+v", shuffled[2], shuffled[3], matches[2])
	}
}

func TestSingleEliminationIsReproducible(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	params := GenerateBracketParams{PlayerIDs: playerIDs(13), Seed: 2024}
	first, err := gen.GenerateBracket(context.Background(), params)
	if err != nil {
		t.Fatal(err)
	}
	second, err := gen.GenerateBracket(context.Background(), params)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same seed produced different brackets")
	}
}

func TestSingleEliminationUsesStartDate(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	matches, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament: &models.Tournament{ID: 1, StartDate: start},
		PlayerIDs:  playerIDs(4),
		Seed:       1,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range matches {
		if m.DatePlayed == nil || !m.DatePlayed.Equal(start) {
			t.Fatalf("match %+v should be dated %v", m, start)
		}
	}
}

func TestSingleEliminationRejectsInvalidRoster(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
	}{
		{"empty", nil},
		{"single player", []int{4}},
		{"duplicate ids", []int{1, 2, 2}},
		{"non-positive id", []int{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{PlayerIDs: tt.ids})
			if !errors.Is(err, ErrInvalidRoster) {
				t.Fatalf("expected ErrInvalidRoster, got %v", err)
			}
		})
	}
}

func TestShufflerKeepsInputAndPermutes(t *testing.T) {
	ids := playerIDs(20)
	orig := append([]int(nil), ids...)
	out := NewShuffler(5).Shuffle(ids)

	if !reflect.DeepEqual(ids, orig) {
		t.Fatal("Shuffle modified its input")
	}
	if len(out) != len(ids) {
		t.Fatalf("got %d ids, want %d", len(out), len(ids))
	}
	seen := make(map[int]bool)
	for _, id := range out {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Fatalf("player %d lost in shuffle", id)
		}
	}
	if !reflect.DeepEqual(out, NewShuffler(5).Shuffle(ids)) {
		t.Fatal("same seed produced different orders")
	}
}

func TestGeneratorFor(t *testing.T) {
	if g, ok := GeneratorFor(models.FormatKnockout); !ok || g.GetName() != "SingleElimination" {
		t.Errorf("knockout should map to SingleElimination")
	}
	if g, ok := GeneratorFor(models.FormatLeague); !ok || g.GetName() != "RoundRobin" {
		t.Errorf("league should map to RoundRobin")
	}
	if _, ok := GeneratorFor("swiss"); ok {
		t.Errorf("unknown format should not resolve")
	}
}
