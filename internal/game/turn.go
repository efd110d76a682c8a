package game

import (
	"github.com/google/uuid"

	"github.com/DavinciDreams/vscrabbleproject/internal/models"
)

// nextTurn scans forward from the current holder's roster index, wrapping,
// and returns the id of the next connected player. If every other player is
// disconnected the holder keeps the turn. Bounded by a single full pass over
// the roster.
func nextTurn(players []*models.Player, current uuid.UUID) uuid.UUID {
	if len(players) == 0 {
		return uuid.Nil
	}
	cur := 0
	for i, p := range players {
		if p.ID == current {
			cur = i
			break
		}
	}
	for step := 1; step <= len(players); step++ {
		candidate := players[(cur+step)%len(players)]
		if candidate.Status == models.PlayerConnected {
			return candidate.ID
		}
	}
	return current
}
