package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/tabletennis-tournament/brackets"
	"github.com/Dosada05/tabletennis-tournament/models"
	"github.com/Dosada05/tabletennis-tournament/repositories"
)

// memStore backs every repository fake. Transactions are driven by sqlmock; the store itself
// is not transactional, so services must reject before they write.
type memStore struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	rosters     map[int][]int
	players     map[int]models.Player
	matches     []models.Match
	standings   map[int][]models.StandingRow
	nextID      int
	inserts     int
	stamps      int

	createErr error
}

func newMemStore() *memStore {
	return &memStore{
		tournaments: make(map[int]*models.Tournament),
		rosters:     make(map[int][]int),
		players:     make(map[int]models.Player),
		standings:   make(map[int][]models.StandingRow),
	}
}

func (s *memStore) addPlayers(ids ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.players[id] = models.Player{ID: id, Name: "Player " + string(rune('A'+id-1))}
	}
}

func (s *memStore) addTournament(t models.Tournament, roster ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := t
	s.tournaments[t.ID] = &c
	s.rosters[t.ID] = append([]int(nil), roster...)
	for _, id := range roster {
		if _, ok := s.players[id]; !ok {
			s.players[id] = models.Player{ID: id, Name: "Player " + string(rune('A'+id-1))}
		}
	}
}

func (s *memStore) tournament(id int) models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.tournaments[id]
}

func (s *memStore) matchesOf(tournamentID int) []models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Match, 0)
	for _, m := range s.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out
}

// tournament repository

type fakeTournamentRepo struct{ s *memStore }

func (r fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createErr != nil {
		return r.s.createErr
	}
	t.ID = len(r.s.tournaments) + 1
	t.CreatedAt = time.Now()
	c := *t
	r.s.tournaments[t.ID] = &c
	return nil
}

func (r fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	c := *t
	c.PlayerIDs, c.Players, c.Matches = nil, nil, nil
	return &c, nil
}

func (r fakeTournamentRepo) LockForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r fakeTournamentRepo) SetStarted(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tournaments[id].HasStarted = true
	return nil
}

func (r fakeTournamentRepo) StampEnd(ctx context.Context, exec repositories.SQLExecutor, id int, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.s.tournaments[id]
	if t.EndDate != nil {
		return false, nil
	}
	t.EndDate = &at
	r.s.stamps++
	return true, nil
}

func (r fakeTournamentRepo) ListOpenForSignup(ctx context.Context) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Tournament
	for id, t := range r.s.tournaments {
		c := *t
		c.PlayerIDs = r.s.rosters[id]
		if c.IsOpenForSignup() {
			c.PlayerIDs = nil
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeTournamentRepo) ListUnfinished(ctx context.Context) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Tournament
	for _, t := range r.s.tournaments {
		if t.HasStarted && t.EndDate == nil {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeTournamentRepo) Update(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tournaments[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	for id, other := range r.s.tournaments {
		if id != t.ID && other.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	c := *t
	c.PlayerIDs, c.Players, c.Matches = nil, nil, nil
	c.CreatedAt = stored.CreatedAt
	r.s.tournaments[t.ID] = &c
	return nil
}

func (r fakeTournamentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.s.tournaments, id)
	delete(r.s.rosters, id)
	delete(r.s.standings, id)
	kept := r.s.matches[:0]
	for _, m := range r.s.matches {
		if m.TournamentID != id {
			kept = append(kept, m)
		}
	}
	r.s.matches = kept
	return nil
}

func (r fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Tournament, 0, len(r.s.tournaments))
	for _, t := range r.s.tournaments {
		if filter.Format != nil && t.Format != *filter.Format {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Offset >= len(out) {
		return []models.Tournament{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// roster repository

type fakeRosterRepo struct{ s *memStore }

func (r fakeRosterRepo) ListPlayerIDs(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]int{}, r.s.rosters[tournamentID]...), nil
}

func (r fakeRosterRepo) Add(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.rosters[tournamentID] {
		if id == playerID {
			return repositories.ErrRosterConflict
		}
	}
	r.s.rosters[tournamentID] = append(r.s.rosters[tournamentID], playerID)
	return nil
}

func (r fakeRosterRepo) Remove(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := r.s.rosters[tournamentID]
	for i, id := range ids {
		if id == playerID {
			r.s.rosters[tournamentID] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return repositories.ErrRosterEntryNotFound
}

func (r fakeRosterRepo) Replace(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, playerIDs []int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[tournamentID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	for _, id := range playerIDs {
		if _, ok := r.s.players[id]; !ok {
			return repositories.ErrRosterPlayerInvalid
		}
	}
	r.s.rosters[tournamentID] = append([]int{}, playerIDs...)
	return nil
}

// match repository

type fakeMatchRepo struct{ s *memStore }

func (r fakeMatchRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createErr != nil {
		return r.s.createErr
	}
	for i := range matches {
		r.s.nextID++
		matches[i].ID = r.s.nextID
		matches[i].CreatedAt = time.Now()
		r.s.matches = append(r.s.matches, matches[i])
		r.s.inserts++
	}
	return nil
}

func (r fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.matches {
		if m.ID == id {
			c := m
			return &c, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, round *int) ([]models.Match, error) {
	all := r.s.matchesOf(tournamentID)
	if round == nil {
		return all, nil
	}
	return models.MatchesInRound(all, *round), nil
}

func (r fakeMatchRepo) CountByRound(ctx context.Context, exec repositories.SQLExecutor, tournamentID, round int) (int, error) {
	return len(models.MatchesInRound(r.s.matchesOf(tournamentID), round)), nil
}

func (r fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.matches {
		if r.s.matches[i].ID == m.ID {
			r.s.matches[i] = *m
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r fakeMatchRepo) Approve(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.matches {
		if r.s.matches[i].ID == id {
			r.s.matches[i].IsApproved = true
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r fakeMatchRepo) ListPendingApproval(ctx context.Context, tournamentID int) ([]models.Match, error) {
	var out []models.Match
	for _, m := range r.s.matchesOf(tournamentID) {
		if !m.IsApproved && !m.IsBye() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r fakeMatchRepo) ListApproved(ctx context.Context) ([]models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Match
	for _, m := range r.s.matches {
		if m.IsApproved && !m.IsBye() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r fakeMatchRepo) ListByPlayer(ctx context.Context, playerID int) ([]models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Match, 0)
	for i := len(r.s.matches) - 1; i >= 0; i-- {
		m := r.s.matches[i]
		if !m.IsBye() && (m.Player1ID == playerID || m.Player2ID == playerID) {
			out = append(out, m)
		}
	}
	return out, nil
}

// player repository

type fakePlayerRepo struct{ s *memStore }

func (r fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r fakePlayerRepo) GetByIDs(ctx context.Context, ids []int) ([]models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakePlayerRepo) List(ctx context.Context) ([]models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Player, 0, len(r.s.players))
	for _, p := range r.s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// standing repository

type fakeStandingRepo struct{ s *memStore }

func (r fakeStandingRepo) ReplaceForTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, rows []models.StandingRow, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.standings[tournamentID] = append([]models.StandingRow(nil), rows...)
	return nil
}

func (r fakeStandingRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentStanding, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.TournamentStanding
	for _, row := range r.s.standings[tournamentID] {
		out = append(out, models.TournamentStanding{TournamentID: tournamentID, StandingRow: row})
	}
	return out, nil
}

// collaborators

type recordingHub struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (h *recordingHub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		h.messages = append(h.messages, msg)
	}
}

func (h *recordingHub) count(eventType string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, m := range h.messages {
		if m.Type == eventType {
			n++
		}
	}
	return n
}

type recordingArchiver struct {
	mu      sync.Mutex
	results []FinalResult
}

func (a *recordingArchiver) Archive(ctx context.Context, result FinalResult) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, result)
	return "https://cdn.example.com/results.json", nil
}

type env struct {
	store         *memStore
	mock          sqlmock.Sqlmock
	db            *sql.DB
	hub           *recordingHub
	archiver      *recordingArchiver
	deps          Deps
	bracketSvc    BracketService
	matchSvc      MatchService
	tournamentSvc TournamentService
	rosterSvc     RosterService
}

var fixedNow = time.Date(2025, 5, 17, 12, 0, 0, 0, time.UTC)

func newEnv(t *testing.T) *env {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		db.Close()
	})

	store := newMemStore()
	hub := &recordingHub{}
	archiver := &recordingArchiver{}
	deps := Deps{
		DB:             db,
		TournamentRepo: fakeTournamentRepo{store},
		RosterRepo:     fakeRosterRepo{store},
		MatchRepo:      fakeMatchRepo{store},
		PlayerRepo:     fakePlayerRepo{store},
		StandingRepo:   fakeStandingRepo{store},
		Archiver:       archiver,
		Hub:            hub,
		Seed:           func() int64 { return 42 },
		Now:            func() time.Time { return fixedNow },
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return &env{
		store:         store,
		mock:          mock,
		db:            db,
		hub:           hub,
		archiver:      archiver,
		deps:          deps,
		bracketSvc:    NewBracketService(deps),
		matchSvc:      NewMatchService(deps),
		tournamentSvc: NewTournamentService(deps),
		rosterSvc:     NewRosterService(deps),
	}
}

func (e *env) expectCommit() {
	e.mock.ExpectBegin()
	e.mock.ExpectCommit()
}

func (e *env) expectRollback() {
	e.mock.ExpectBegin()
	e.mock.ExpectRollback()
}

func sets(pairs ...[2]int) models.SetScores {
	out := make(models.SetScores, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, models.NewSetScore(p[0], p[1]))
	}
	return out
}

// player1Wins is a valid best-of-five for player1 with points to 11.
func player1Wins() models.SetScores {
	return sets([2]int{11, 7}, [2]int{9, 11}, [2]int{11, 5}, [2]int{12, 10})
}

func player2Wins() models.SetScores {
	return sets([2]int{7, 11}, [2]int{8, 11}, [2]int{11, 13})
}

func knockout(id int) models.Tournament {
	return models.Tournament{ID: id, Name: "Spring Cup", Format: models.FormatKnockout, SetsToWin: 3, PointsPerSet: 11,
		StartDate: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func league(id int) models.Tournament {
	return models.Tournament{ID: id, Name: "Club League", Format: models.FormatLeague, SetsToWin: 3, PointsPerSet: 11,
		StartDate: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
}
