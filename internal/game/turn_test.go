// internal/game/turn_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/DavinciDreams/vscrabbleproject/internal/models"
)

func rosterOf(statuses ...models.PlayerStatus) []*models.Player {
	players := make([]*models.Player, len(statuses))
	for i, s := range statuses {
		players[i] = &models.Player{ID: uuid.New(), Status: s}
	}
	return players
}

func TestNextTurnAdvancesInRosterOrder(t *testing.T) {
	players := rosterOf(models.PlayerConnected, models.PlayerConnected, models.PlayerConnected)
	assert.Equal(t, players[1].ID, nextTurn(players, players[0].ID))
	assert.Equal(t, players[2].ID, nextTurn(players, players[1].ID))
	assert.Equal(t, players[0].ID, nextTurn(players, players[2].ID))
}

func TestNextTurnSkipsDisconnected(t *testing.T) {
	players := rosterOf(models.PlayerConnected, models.PlayerDisconnected, models.PlayerConnected)
	assert.Equal(t, players[2].ID, nextTurn(players, players[0].ID))
}

func TestNextTurnAllOthersDisconnected(t *testing.T) {
	players := rosterOf(models.PlayerConnected, models.PlayerDisconnected, models.PlayerDisconnected)
	// The sole connected player keeps cycling back to themselves.
	assert.Equal(t, players[0].ID, nextTurn(players, players[0].ID))
}

func TestNextTurnNobodyConnected(t *testing.T) {
	players := rosterOf(models.PlayerDisconnected, models.PlayerDisconnected)
	assert.Equal(t, players[0].ID, nextTurn(players, players[0].ID))
}

func TestNextTurnEmptyRoster(t *testing.T) {
	assert.Equal(t, uuid.Nil, nextTurn(nil, uuid.New()))
}
