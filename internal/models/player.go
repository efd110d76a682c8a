package models

import "github.com/google/uuid"

// PlayerStatus tracks whether a player's connection is currently live.
// Disconnected players stay on the roster so their turn slot and score
// survive a reconnect attempt.
type PlayerStatus string

const (
	PlayerConnected    PlayerStatus = "connected"
	PlayerDisconnected PlayerStatus = "disconnected"
)

// Player is one seat in a room's roster. The id is assigned server-side on
// join and is never taken from the client. TileCount mirrors the size of the
// player's private rack; the rack contents themselves are never placed on
// the public snapshot.
type Player struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Status    PlayerStatus `json:"status"`
	TileCount int          `json:"tilesCount"`
}
