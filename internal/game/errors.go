package game

import "errors"

// Every operation failure in the room engine maps to one of these. All of
// them are recoverable: the failing operation leaves the room untouched and
// only the originating connection hears about it.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrInvalidConfig    = errors.New("maxPlayers must be between 2 and 4")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrNotEnoughPlayers = errors.New("need at least 2 connected players to start")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrGameNotActive    = errors.New("game is not active")
)

// ErrBadPlacement covers rejected tile staging and word submissions:
// tiles not in the rack, occupied or out-of-range cells, vetoed words.
// The gateway drops these with a warning rather than surfacing them as a
// taxonomy error event.
var ErrBadPlacement = errors.New("invalid placement")
