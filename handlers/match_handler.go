package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tabletennis-tournament/models"
	"github.com/Dosada05/tabletennis-tournament/scoring"
	"github.com/Dosada05/tabletennis-tournament/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: ms,
	}
}

// EnterScoreHandler godoc
// @Summary Внести счёт матча
// @Tags matches
// @Description Запись организатора подтверждается сразу, запись игрока ждёт подтверждения.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.EnterScoreInput true "Счёт по сетам"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Игрокам запрещено вносить счёт"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Матч уже подтверждён / турнир завершён"
// @Failure 422 {object} map[string]string "Неверный счёт"
// @Router /matches/{matchID}/score [post]
func (h *MatchHandler) EnterScoreHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.EnterScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.SetScores) == 0 {
		failedValidationResponse(w, r, "set_scores must not be empty")
		return
	}

	match, err := h.matchService.EnterScore(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EditScoreHandler godoc
// @Summary Исправить счёт матча (организатор)
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.EditScoreInput true "Новый счёт и флаг подтверждения"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Раунд уже закрыт"
// @Failure 422 {object} map[string]string "Неверный счёт"
// @Router /matches/{matchID}/score [put]
func (h *MatchHandler) EditScoreHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.EditScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.SetScores) == 0 {
		failedValidationResponse(w, r, "set_scores must not be empty")
		return
	}

	match, err := h.matchService.EditScore(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ApproveHandler godoc
// @Summary Подтвердить результат матча
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Уже подтверждён"
// @Failure 422 {object} map[string]string "Счёт не внесён"
// @Router /matches/{matchID}/approve [post]
func (h *MatchHandler) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.ApproveMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type validateScoreInput struct {
	SetScores models.SetScores    `json:"set_scores"`
	Rules     models.ScoringRules `json:"rules"`
}

// ValidateHandler godoc
// @Summary Проверить счёт без сохранения
// @Tags scoring
// @Accept json
// @Produce json
// @Param body body validateScoreInput true "Сеты и правила"
// @Success 200 {object} map[string]interface{} "Счёт по сетам"
// @Failure 422 {object} map[string]string "Неверный счёт"
// @Router /scoring/validate [post]
func (h *MatchHandler) ValidateHandler(w http.ResponseWriter, r *http.Request) {
	var input validateScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	w1, w2, err := scoring.ValidateAndScoreMatch(input.SetScores, input.Rules)
	if err != nil {
		if !errors.Is(err, scoring.ErrInvalidSetScore) && !errors.Is(err, scoring.ErrInvalidMatchOutcome) {
			// неверные правила
			failedValidationResponse(w, r, err.Error())
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"score1": w1, "score2": w2}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
