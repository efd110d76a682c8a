package game

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/DavinciDreams/vscrabbleproject/internal/models"
)

// Status is the room lifecycle state. StatusStarting exists for wire
// compatibility with older clients but no transition produces it; rooms go
// straight from waiting to active.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusStarting Status = "starting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Validator checks word legality for a committed move. The default
// implementation accepts everything; a dictionary-backed validator can be
// plugged in without touching the room engine.
type Validator interface {
	ValidateWord(word string) bool
}

type acceptAllValidator struct{}

func (acceptAllValidator) ValidateWord(string) bool { return true }

// Snapshot is the full public view of a room, rebuilt after every committed
// transition and broadcast to every subscribed connection. Rack contents are
// deliberately absent; only per-player tile counts are public.
type Snapshot struct {
	ID             string                   `json:"id"`
	RoomCode       string                   `json:"roomCode"`
	HostID         string                   `json:"hostId"`
	Status         Status                   `json:"status"`
	MaxPlayers     int                      `json:"maxPlayers"`
	Players        []models.Player          `json:"players"`
	Board          [][]*models.PlacedTile   `json:"board"`
	Scores         map[string]int           `json:"scores"`
	CurrentTurn    string                   `json:"currentTurn,omitempty"`
	Winner         string                   `json:"winner,omitempty"`
	TilesRemaining int                      `json:"tilesRemaining"`
	Messages       []models.Message         `json:"messages"`
}

// Room owns all authoritative state for one game session: roster, board,
// bag, racks, scores and the chat/system log. Every mutating operation
// acquires the room mutex for the full transition, so events for the same
// room apply strictly one at a time and broadcasts reflect commit order.
//
// BroadcastFn and RackFn are invoked while the lock is held; implementations
// must not block (the gateway enqueues onto buffered per-connection channels).
type Room struct {
	ID         uuid.UUID
	Code       string
	HostID     uuid.UUID
	MaxPlayers int

	mu          sync.Mutex
	status      Status
	players     []*models.Player
	board       *Board
	bag         *TileBag
	scores      map[uuid.UUID]int
	racks       map[uuid.UUID][]models.Tile
	staged      []*models.PlacedTile
	currentTurn uuid.UUID
	winner      uuid.UUID
	messages    []models.Message

	validator Validator
	logger    *logrus.Entry

	// BroadcastFn fans the snapshot out to every connection in the room.
	BroadcastFn func(snap Snapshot)
	// RackFn delivers a private rack update to a single player's connection.
	RackFn func(playerID uuid.UUID, tiles []models.Tile)
}

// NewRoom creates a room in the waiting state with the host as its sole
// player and returns the room plus the server-assigned host player id.
// The host seat starts disconnected until a socket claims it, so a room
// created over HTTP whose host never shows up reads as fully disconnected
// and stays eligible for the grace sweep. maxPlayers is assumed validated
// by the registry.
func NewRoom(code, hostName string, maxPlayers int, logger *logrus.Logger) (*Room, uuid.UUID) {
	roomID, _ := uuid.NewRandom()
	hostID, _ := uuid.NewRandom()

	r := &Room{
		ID:         roomID,
		Code:       code,
		HostID:     hostID,
		MaxPlayers: maxPlayers,
		status:     StatusWaiting,
		board:      NewBoard(),
		bag:        &TileBag{},
		scores:     map[uuid.UUID]int{hostID: 0},
		racks:      make(map[uuid.UUID][]models.Tile),
		validator:  acceptAllValidator{},
		logger:     logger.WithField("room", code),
	}
	r.players = []*models.Player{{
		ID:     hostID,
		Name:   hostName,
		Status: models.PlayerDisconnected,
	}}
	r.messages = []models.Message{models.NewSystemMessage(fmt.Sprintf("Game room created by %s", hostName))}
	return r, hostID
}

// SetValidator swaps in a word validator. Intended for wiring at creation
// time, before the room is shared.
func (r *Room) SetValidator(v Validator) {
	if v != nil {
		r.validator = v
	}
}

// Join appends a new player to the roster and returns their server-assigned
// id. Fails with ErrRoomFull at capacity and ErrGameNotActive once the game
// has left the waiting state.
func (r *Room) Join(name string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusWaiting {
		return uuid.Nil, ErrGameNotActive
	}
	if len(r.players) >= r.MaxPlayers {
		return uuid.Nil, ErrRoomFull
	}

	playerID, _ := uuid.NewRandom()
	r.players = append(r.players, &models.Player{
		ID:     playerID,
		Name:   name,
		Status: models.PlayerConnected,
	})
	r.scores[playerID] = 0
	r.appendSystemLocked(fmt.Sprintf("%s joined the game", name))
	r.logger.WithField("player", playerID).Info("player joined")
	r.broadcastLocked()
	return playerID, nil
}

// Reconnect marks an existing player as connected again and resends their
// private rack. Returns false if the player is not on the roster.
func (r *Room) Reconnect(playerID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.findPlayerLocked(playerID)
	if p == nil {
		return false
	}
	if p.Status == models.PlayerConnected {
		// Replacing a connection that died silently; nothing to announce.
		r.sendRackLocked(playerID)
		return true
	}
	p.Status = models.PlayerConnected
	// Claiming a seat in the waiting room is routine; only a mid-game
	// return is worth announcing.
	if r.status != StatusWaiting {
		r.appendSystemLocked(fmt.Sprintf("%s reconnected", p.Name))
	}
	r.logger.WithField("player", playerID).Info("player reconnected")
	r.sendRackLocked(playerID)
	r.broadcastLocked()
	return true
}

// Start moves the room from waiting to active: fills and shuffles the bag,
// deals seven tiles per player in join order, and picks a random starting
// player among the connected roster.
func (r *Room) Start(requesterID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusWaiting {
		return ErrGameNotActive
	}
	if requesterID != r.HostID {
		return ErrNotHost
	}
	connected := r.connectedLocked()
	if len(connected) < 2 {
		return ErrNotEnoughPlayers
	}

	r.bag.Fill()
	for _, p := range r.players {
		rack := r.bag.Draw(RackSize)
		r.racks[p.ID] = rack
		p.TileCount = len(rack)
	}

	first := connected[rand.Intn(len(connected))]
	r.currentTurn = first.ID
	r.status = StatusActive

	r.appendSystemLocked("Game started!")
	r.appendSystemLocked(fmt.Sprintf("%s goes first", first.Name))
	r.logger.WithFields(logrus.Fields{"players": len(r.players), "first": first.ID}).Info("game started")

	r.broadcastLocked()
	for _, p := range r.players {
		r.sendRackLocked(p.ID)
	}
	return nil
}

// PlaceTile stages a tile from the acting player's rack onto an empty cell.
// Staged tiles stay unlocked until the move is committed.
func (r *Room) PlaceTile(playerID, tileID uuid.UUID, x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return ErrGameNotActive
	}
	if playerID != r.currentTurn {
		return ErrNotYourTurn
	}

	rack := r.racks[playerID]
	idx := -1
	for i, t := range rack {
		if t.ID == tileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: tile %s is not in the rack", ErrBadPlacement, tileID)
	}
	pt, ok := r.board.Place(rack[idx], x, y)
	if !ok {
		return fmt.Errorf("%w: cell (%d,%d) is occupied or out of bounds", ErrBadPlacement, x, y)
	}

	r.racks[playerID] = append(rack[:idx], rack[idx+1:]...)
	r.staged = append(r.staged, pt)
	if p := r.findPlayerLocked(playerID); p != nil {
		p.TileCount = len(r.racks[playerID])
	}
	r.sendRackLocked(playerID)
	r.broadcastLocked()
	return nil
}

// SubmitMove commits the acting player's staged tiles: locks them, scores
// the move, refills the rack from the bag and advances the turn. When the
// bag and the mover's rack are both empty afterwards the game finishes and
// a winner is recorded.
func (r *Room) SubmitMove(playerID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return 0, ErrGameNotActive
	}
	if playerID != r.currentTurn {
		return 0, ErrNotYourTurn
	}

	p := r.findPlayerLocked(playerID)

	var letters []string
	for _, pt := range r.staged {
		letters = append(letters, pt.Letter)
	}
	word := strings.Join(letters, "")
	if word != "" && !r.validator.ValidateWord(word) {
		// Staged tiles stay on the board; the player can reset and retry.
		return 0, fmt.Errorf("%w: %q was rejected", ErrBadPlacement, word)
	}

	score := ScoreMove(r.staged)
	for _, pt := range r.staged {
		pt.Locked = true
	}
	r.staged = nil
	r.scores[playerID] += score

	rack := r.racks[playerID]
	if drawn := r.bag.Draw(RackSize - len(rack)); len(drawn) > 0 {
		rack = append(rack, drawn...)
		r.racks[playerID] = rack
	}
	p.TileCount = len(rack)

	if score > 0 {
		r.appendSystemLocked(fmt.Sprintf("%s scored %d points", p.Name, score))
	}
	r.logger.WithFields(logrus.Fields{"player": playerID, "score": score}).Info("move committed")

	if r.bag.Remaining() == 0 && len(rack) == 0 {
		r.finishLocked()
	} else {
		r.currentTurn = nextTurn(r.players, r.currentTurn)
	}

	r.sendRackLocked(playerID)
	r.broadcastLocked()
	return score, nil
}

// SkipTurn advances the turn without scoring. Any tiles the player had
// staged go back to their rack first so no tile is stranded on the board.
func (r *Room) SkipTurn(playerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return ErrGameNotActive
	}
	if playerID != r.currentTurn {
		return ErrNotYourTurn
	}

	r.unstageLocked(playerID)
	r.currentTurn = nextTurn(r.players, r.currentTurn)
	r.sendRackLocked(playerID)
	r.broadcastLocked()
	return nil
}

// ResetMove returns the acting player's staged tiles to their rack without
// advancing the turn.
func (r *Room) ResetMove(playerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return ErrGameNotActive
	}
	if playerID != r.currentTurn {
		return ErrNotYourTurn
	}

	r.unstageLocked(playerID)
	r.sendRackLocked(playerID)
	r.broadcastLocked()
	return nil
}

// AddChat appends a chat entry from a roster player and broadcasts. Messages
// from unknown players are dropped.
func (r *Room) AddChat(playerID uuid.UUID, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.findPlayerLocked(playerID)
	if p == nil {
		r.logger.WithField("player", playerID).Warn("chat from unknown player dropped")
		return
	}
	r.messages = append(r.messages, models.NewChatMessage(p.ID, p.Name, content))
	r.broadcastLocked()
}

// Disconnect marks a player as disconnected. A host departure finishes the
// game; otherwise the turn advances past the player if it was theirs.
// Repeated disconnects for the same player are no-ops.
func (r *Room) Disconnect(playerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.findPlayerLocked(playerID)
	if p == nil || p.Status == models.PlayerDisconnected {
		return
	}
	p.Status = models.PlayerDisconnected
	r.logger.WithField("player", playerID).Info("player disconnected")

	if playerID == r.HostID {
		r.appendSystemLocked(fmt.Sprintf("%s (host) left the game. Game ended.", p.Name))
		if r.status != StatusFinished {
			r.status = StatusFinished
		}
	} else {
		r.appendSystemLocked(fmt.Sprintf("%s left the game", p.Name))
		if r.status == StatusActive && r.currentTurn == playerID {
			r.unstageLocked(playerID)
			r.currentTurn = nextTurn(r.players, r.currentTurn)
		}
	}
	r.broadcastLocked()
}

// ConnectedCount reports how many roster players are currently connected.
func (r *Room) ConnectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.connectedLocked())
}

// Status returns the current lifecycle state.
func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// CurrentTurn returns the id of the turn holder, or uuid.Nil before start.
func (r *Room) CurrentTurn() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentTurn
}

// Rack returns a copy of a player's private rack.
func (r *Room) Rack(playerID uuid.UUID) []models.Tile {
	r.mu.Lock()
	defer r.mu.Unlock()
	rack := r.racks[playerID]
	out := make([]models.Tile, len(rack))
	copy(out, rack)
	return out
}

// BagRemaining reports the undrawn tile count.
func (r *Room) BagRemaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bag.Remaining()
}

// Snapshot builds the public view of the room.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// --- internals; every *Locked method assumes r.mu is held ---

func (r *Room) findPlayerLocked(playerID uuid.UUID) *models.Player {
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (r *Room) connectedLocked() []*models.Player {
	var out []*models.Player
	for _, p := range r.players {
		if p.Status == models.PlayerConnected {
			out = append(out, p)
		}
	}
	return out
}

// unstageLocked removes the current staged tiles from the board and returns
// them to the given player's rack.
func (r *Room) unstageLocked(playerID uuid.UUID) {
	if len(r.staged) == 0 {
		return
	}
	rack := r.racks[playerID]
	for _, pt := range r.staged {
		if t, ok := r.board.Remove(pt.Position.X, pt.Position.Y); ok {
			rack = append(rack, t)
		}
	}
	r.racks[playerID] = rack
	r.staged = nil
	if p := r.findPlayerLocked(playerID); p != nil {
		p.TileCount = len(rack)
	}
}

// finishLocked ends the game and records the winner: the highest score,
// first by roster order when tied. The tie rule mirrors observed behavior
// and is pinned by tests rather than designed.
func (r *Room) finishLocked() {
	r.status = StatusFinished
	best := -1
	for _, p := range r.players {
		if s := r.scores[p.ID]; s > best {
			best = s
			r.winner = p.ID
		}
	}
	if w := r.findPlayerLocked(r.winner); w != nil {
		r.appendSystemLocked(fmt.Sprintf("Game over! %s wins with %d points", w.Name, best))
	}
	r.logger.WithField("winner", r.winner).Info("game finished")
}

func (r *Room) appendSystemLocked(content string) {
	r.messages = append(r.messages, models.NewSystemMessage(content))
}

func (r *Room) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:             r.ID.String(),
		RoomCode:       r.Code,
		HostID:         r.HostID.String(),
		Status:         r.status,
		MaxPlayers:     r.MaxPlayers,
		Players:        make([]models.Player, 0, len(r.players)),
		Board:          r.board.Snapshot(),
		Scores:         make(map[string]int, len(r.scores)),
		TilesRemaining: r.bag.Remaining(),
		Messages:       append([]models.Message(nil), r.messages...),
	}
	for _, p := range r.players {
		snap.Players = append(snap.Players, *p)
	}
	for id, s := range r.scores {
		snap.Scores[id.String()] = s
	}
	if r.currentTurn != uuid.Nil {
		snap.CurrentTurn = r.currentTurn.String()
	}
	if r.winner != uuid.Nil {
		snap.Winner = r.winner.String()
	}
	return snap
}

func (r *Room) broadcastLocked() {
	if r.BroadcastFn != nil {
		r.BroadcastFn(r.snapshotLocked())
	}
}

func (r *Room) sendRackLocked(playerID uuid.UUID) {
	if r.RackFn == nil {
		return
	}
	rack := r.racks[playerID]
	out := make([]models.Tile, len(rack))
	copy(out, rack)
	r.RackFn(playerID, out)
}
