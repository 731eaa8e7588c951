package models

import "time"

// Player is owned by the surrounding application; the engine only reads it.
type Player struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PlayerNames indexes display names by player id.
func PlayerNames(players []Player) map[int]string {
	names := make(map[int]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return names
}
