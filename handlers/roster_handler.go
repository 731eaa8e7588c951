package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tabletennis-tournament/services"
)

type RosterHandler struct {
	rosterService services.RosterService
}

func NewRosterHandler(rs services.RosterService) *RosterHandler {
	return &RosterHandler{
		rosterService: rs,
	}
}

type joinInput struct {
	PlayerID int `json:"player_id"`
}

// JoinHandler godoc
// @Summary Записать игрока на турнир
// @Tags roster
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body joinInput true "ID игрока"
// @Success 201 {object} map[string]interface{} "Игрок записан"
// @Failure 404 {object} map[string]string "Турнир или игрок не найден"
// @Failure 409 {object} map[string]string "Уже записан / запись закрыта / турнир полон"
// @Router /tournaments/{tournamentID}/players [post]
func (h *RosterHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input joinInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.PlayerID <= 0 {
		badRequestResponse(w, r, errors.New("player_id must be a positive integer"))
		return
	}

	if err := h.rosterService.Join(r.Context(), tournamentID, input.PlayerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"tournament_id": tournamentID, "player_id": input.PlayerID}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaveHandler godoc
// @Summary Отменить запись игрока
// @Tags roster
// @Param tournamentID path int true "Tournament ID"
// @Param playerID path int true "Player ID"
// @Success 204 "Запись отменена"
// @Failure 404 {object} map[string]string "Игрок не записан"
// @Failure 409 {object} map[string]string "Турнир уже начался"
// @Router /tournaments/{tournamentID}/players/{playerID} [delete]
func (h *RosterHandler) LeaveHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.rosterService.Leave(r.Context(), tournamentID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
