// Package docs holds the Swagger 2.0 description served under /swagger. It is maintained by hand
// next to the handler annotations; keep both in sync when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/matches/{matchID}/approve": {
            "post": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Подтвердить результат матча",
                "parameters": [
                    {"type": "integer", "description": "Match ID", "name": "matchID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Матч не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Уже подтверждён", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Счёт не внесён", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/matches/{matchID}/score": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Исправить счёт матча (организатор)",
                "parameters": [
                    {"type": "integer", "description": "Match ID", "name": "matchID", "in": "path", "required": true},
                    {"description": "Новый счёт и флаг подтверждения", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.EditScoreInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Матч не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Раунд уже закрыт", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Неверный счёт", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "description": "Запись организатора подтверждается сразу, запись игрока ждёт подтверждения.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Внести счёт матча",
                "parameters": [
                    {"type": "integer", "description": "Match ID", "name": "matchID", "in": "path", "required": true},
                    {"description": "Счёт по сетам", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.EnterScoreInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "Игрокам запрещено вносить счёт", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Матч не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Матч уже подтверждён / турнир завершён", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Неверный счёт", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/players/{playerID}": {
            "get": {
                "description": "Статистика считается только по подтверждённым матчам, список включает и ожидающие.",
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "Карточка игрока: статистика и все матчи",
                "parameters": [
                    {"type": "integer", "description": "Player ID", "name": "playerID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Игрок не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ranking": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ranking"],
                "summary": "Общий рейтинг игроков по всем турнирам",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/scoring/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["scoring"],
                "summary": "Проверить счёт без сохранения",
                "parameters": [
                    {"description": "Сеты и правила", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.validateScoreInput"}}
                ],
                "responses": {
                    "200": {"description": "Счёт по сетам", "schema": {"type": "object", "additionalProperties": true}},
                    "422": {"description": "Неверный счёт", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tournaments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Список турниров",
                "parameters": [
                    {"type": "string", "description": "knockout или league", "name": "format", "in": "query"},
                    {"type": "integer", "description": "Сколько вернуть (по умолчанию 20, не больше 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Сколько пропустить", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Неверные параметры запроса", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Создать турнир",
                "parameters": [
                    {"description": "Формат, правила счёта, лимит игроков, дата старта", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateTournamentInput"}}
                ],
                "responses": {
                    "201": {"description": "Турнир создан", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Некорректный JSON", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Неверная конфигурация турнира", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tournaments/open": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Турниры, открытые для записи",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/tournaments/{tournamentID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Турнир с участниками, матчами и состоянием",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Турнир не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "put": {
                "description": "Название, дата, правила и состав. player_ids заменяет список участников целиком; без него состав не меняется.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Изменить турнир до старта",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true},
                    {"description": "Новая конфигурация", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.UpdateTournamentInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Турнир или игрок не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Турнир уже начался или состав превышает лимит", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Неверная конфигурация турнира", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "tags": ["tournaments"],
                "summary": "Удалить турнир",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Турнир удалён"},
                    "404": {"description": "Турнир не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Есть подтверждённые результаты", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tournaments/{tournamentID}/advance": {
            "post": {
                "produces": ["application/json"],
                "tags": ["brackets"],
                "summary": "Перейти к следующему раунду плей-офф",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Турнир завершён", "schema": {"type": "object", "additionalProperties": true}},
                    "201": {"description": "Создан новый раунд", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Не плей-офф или сетка не создана", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Раунд не завершён", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tournaments/{tournamentID}/generate": {
            "post": {
                "description": "Для плей-офф создаётся первый раунд, для лиги всё расписание. Повторный вызов возвращает 409.",
                "produces": ["application/json"],
                "tags": ["brackets"],
                "summary": "Сгенерировать сетку или расписание лиги",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Матчи созданы", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Турнир не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Сетка уже сгенерирована", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Недостаточно игроков", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tournaments/{tournamentID}/pending": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Матчи, ожидающие подтверждения организатором",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Турнир не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tournaments/{tournamentID}/players": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["roster"],
                "summary": "Записать игрока на турнир",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true},
                    {"description": "ID игрока", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.joinInput"}}
                ],
                "responses": {
                    "201": {"description": "Игрок записан", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Турнир или игрок не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Уже записан / запись закрыта / турнир полон", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tournaments/{tournamentID}/players/{playerID}": {
            "delete": {
                "tags": ["roster"],
                "summary": "Отменить запись игрока",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true},
                    {"type": "integer", "description": "Player ID", "name": "playerID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Запись отменена"},
                    "404": {"description": "Игрок не записан", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Турнир уже начался", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/tournaments/{tournamentID}/standings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Турнирная таблица",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Турнир не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ws/tournaments/{tournamentID}": {
            "get": {
                "description": "BRACKET_GENERATED, ROUND_ADVANCED, MATCH_UPDATED, TOURNAMENT_FINISHED.",
                "tags": ["websocket"],
                "summary": "Подписка на события турнира",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "404": {"description": "Турнир не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.joinInput": {
            "type": "object",
            "properties": {
                "player_id": {"type": "integer"}
            }
        },
        "handlers.validateScoreInput": {
            "type": "object",
            "properties": {
                "rules": {"$ref": "#/definitions/models.ScoringRules"},
                "set_scores": {"type": "array", "items": {"$ref": "#/definitions/models.SetScore"}}
            }
        },
        "models.CompetitionFormat": {
            "type": "string",
            "enum": ["knockout", "league"],
            "x-enum-varnames": ["FormatKnockout", "FormatLeague"]
        },
        "models.ScoringRules": {
            "type": "object",
            "properties": {
                "points_per_set": {"type": "integer"},
                "sets_to_win": {"type": "integer"}
            }
        },
        "models.SetScore": {
            "type": "object",
            "properties": {
                "score1": {"type": "integer"},
                "score2": {"type": "integer"}
            }
        },
        "services.CreateTournamentInput": {
            "type": "object",
            "properties": {
                "allow_players_enter_scores": {"type": "boolean"},
                "format": {"$ref": "#/definitions/models.CompetitionFormat"},
                "legs": {"type": "integer"},
                "max_players": {"type": "integer"},
                "name": {"type": "string"},
                "points_per_set": {"type": "integer"},
                "sets_to_win": {"type": "integer"},
                "start_date": {"type": "string"}
            }
        },
        "services.EditScoreInput": {
            "type": "object",
            "properties": {
                "approve": {"type": "boolean"},
                "date_played": {"type": "string"},
                "entered_by": {"type": "string"},
                "set_scores": {"type": "array", "items": {"$ref": "#/definitions/models.SetScore"}}
            }
        },
        "services.EnterScoreInput": {
            "type": "object",
            "properties": {
                "by_organizer": {"type": "boolean"},
                "date_played": {"type": "string"},
                "entered_by": {"type": "string"},
                "set_scores": {"type": "array", "items": {"$ref": "#/definitions/models.SetScore"}}
            }
        },
        "services.UpdateTournamentInput": {
            "type": "object",
            "properties": {
                "allow_players_enter_scores": {"type": "boolean"},
                "format": {"$ref": "#/definitions/models.CompetitionFormat"},
                "legs": {"type": "integer"},
                "max_players": {"type": "integer"},
                "name": {"type": "string"},
                "player_ids": {"type": "array", "items": {"type": "integer"}},
                "points_per_set": {"type": "integer"},
                "sets_to_win": {"type": "integer"},
                "start_date": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Table Tennis Tournament API",
	Description:      "Knockout brackets, league schedules, score entry and standings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
