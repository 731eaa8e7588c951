package handlers

import (
	"net/http"

	"github.com/Dosada05/tabletennis-tournament/services"
)

type PlayerHandler struct {
	tournamentService services.TournamentService
}

func NewPlayerHandler(ts services.TournamentService) *PlayerHandler {
	return &PlayerHandler{tournamentService: ts}
}

// HistoryHandler godoc
// @Summary Карточка игрока: статистика и все матчи
// @Tags players
// @Description Статистика считается только по подтверждённым матчам, список включает и ожидающие.
// @Produce json
// @Param playerID path int true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Игрок не найден"
// @Router /players/{playerID} [get]
func (h *PlayerHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	history, err := h.tournamentService.PlayerHistory(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
