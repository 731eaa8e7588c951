package services

import "errors"

// Ошибки сервисного слоя, используемые при маппинге в HTTP.
var (
	// Не найдено
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNotRegistered      = errors.New("player is not registered for this tournament")

	// Конфигурация и формат
	ErrInvalidTournamentConfig = errors.New("invalid tournament configuration")
	ErrUnsupportedFormat       = errors.New("operation is not supported for this tournament format")

	// Расписание
	ErrAlreadyGenerated = errors.New("schedule has already been generated for this round")
	ErrNotGenerated     = errors.New("schedule has not been generated yet")

	// Регистрация
	ErrRegistrationClosed = errors.New("tournament registration is closed")
	ErrTournamentFull     = errors.New("tournament registration is full")
	ErrAlreadyRegistered  = errors.New("player is already registered for this tournament")

	// Управление турниром
	ErrTournamentStarted    = errors.New("tournament has started, its configuration and roster are locked")
	ErrTournamentHasResults = errors.New("tournament has approved results and cannot be deleted")

	// Ввод результатов
	ErrScoreEntryNotAllowed = errors.New("players are not allowed to enter scores in this tournament")
	ErrMatchAlreadyApproved = errors.New("match result is already approved")
	ErrStaleRound           = errors.New("only matches of the latest knockout round can be edited")
	ErrByeNotEditable       = errors.New("bye matches cannot be scored or edited")
	ErrTournamentFinished   = errors.New("tournament is finished, results are final")
)
