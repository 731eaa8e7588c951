package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/tabletennis-tournament/models"
	"github.com/Dosada05/tabletennis-tournament/storage"
	"github.com/google/uuid"
)

// FinalResult is the document archived when a tournament finishes.
type FinalResult struct {
	TournamentID int                  `json:"tournament_id"`
	Name         string               `json:"name"`
	Format       string               `json:"format"`
	StartDate    time.Time            `json:"start_date"`
	EndDate      time.Time            `json:"end_date"`
	ChampionID   *int                 `json:"champion_id,omitempty"`
	Standings    []models.StandingRow `json:"standings"`
	Matches      []models.Match       `json:"matches"`
}

// ResultArchiver stores final results outside the database and returns their public location.
type ResultArchiver interface {
	Archive(ctx context.Context, result FinalResult) (string, error)
}

type r2ResultArchiver struct {
	uploader storage.FileUploader
	newID    func() uuid.UUID
}

func NewResultArchiver(uploader storage.FileUploader) ResultArchiver {
	return &r2ResultArchiver{uploader: uploader, newID: uuid.New}
}

func (a *r2ResultArchiver) Archive(ctx context.Context, result FinalResult) (string, error) {
	body, err := json.MarshalIndent(result, "", "\t")
	if err != nil {
		return "", fmt.Errorf("failed to encode final result of tournament %d: %w", result.TournamentID, err)
	}

	key := fmt.Sprintf("results/tournament_%d/%s.json", result.TournamentID, a.newID())
	uploaded, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to archive final result of tournament %d: %w", result.TournamentID, err)
	}
	return uploaded.Location, nil
}
