package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tabletennis-tournament/brackets"
	"github.com/Dosada05/tabletennis-tournament/repositories"
)

// SeedFunc supplies the shuffle seed for one generate or advance call.
type SeedFunc func() int64

// TimeSeed is the default SeedFunc.
func TimeSeed() int64 {
	return time.Now().UnixNano()
}

// Broadcaster pushes an event to every client of a room.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToRoom(string, interface{}) {}

func broadcastTournamentEvent(hub Broadcaster, tournamentID int, eventType string, payload interface{}) {
	room := brackets.RoomForTournament(tournamentID)
	hub.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    eventType,
		Payload: payload,
		RoomID:  room,
	})
}

// runInTx commits when fn returns nil and rolls back otherwise. A panic rolls back and is re-raised.
func runInTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.ErrorContext(ctx, "transaction rollback failed", slog.Any("error", rbErr), slog.Any("cause", err))
			}
		} else if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}

// handleRepositoryError translates repository sentinels into service errors.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound),
		errors.Is(err, repositories.ErrRosterPlayerInvalid),
		errors.Is(err, repositories.ErrMatchPlayerInvalid):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrMatchRoundConflict):
		return ErrAlreadyGenerated
	case errors.Is(err, repositories.ErrRosterConflict):
		return ErrAlreadyRegistered
	case errors.Is(err, repositories.ErrRosterEntryNotFound):
		return ErrNotRegistered
	default:
		return err
	}
}
