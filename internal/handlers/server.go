// internal/handlers/server.go
package handlers

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/DavinciDreams/vscrabbleproject/internal/game"
	"github.com/DavinciDreams/vscrabbleproject/internal/models"
)

// Server is the session gateway: it owns the room registry plus the mapping
// from (room code, player id) to live WebSocket subscriptions, and installs
// the broadcast callbacks on each room it touches.
type Server struct {
	Rooms  *game.RoomStore
	logger *logrus.Logger

	originPatterns []string

	mu   sync.Mutex
	subs map[string]map[uuid.UUID]*subscriber
}

// subscriber is one connection's outbound queue. Sends are non-blocking: a
// client that cannot drain its queue gets messages dropped rather than
// stalling the room's transition.
type subscriber struct {
	playerID uuid.UUID
	out      chan []byte
}

// NewServer builds a gateway around a room registry.
func NewServer(logger *logrus.Logger, rooms *game.RoomStore, originPatterns []string) *Server {
	return &Server{
		Rooms:          rooms,
		logger:         logger,
		originPatterns: originPatterns,
		subs:           make(map[string]map[uuid.UUID]*subscriber),
	}
}

// serverMessage is the envelope for every outbound event.
type serverMessage struct {
	Type        string         `json:"type"`
	PlayerID    string         `json:"playerId,omitempty"`
	ResumeToken string         `json:"resumeToken,omitempty"`
	State       *game.Snapshot `json:"state,omitempty"`
	Tiles       []models.Tile  `json:"tiles,omitempty"`
	Success     *bool          `json:"success,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// clientMessage is the single inbound shape; Type selects which fields are
// meaningful.
type clientMessage struct {
	Type string `json:"type"`

	RoomCode    string `json:"roomCode,omitempty"`
	PlayerName  string `json:"playerName,omitempty"`
	IsHost      bool   `json:"isHost,omitempty"`
	MaxPlayers  int    `json:"maxPlayers,omitempty"`
	ResumeToken string `json:"resumeToken,omitempty"`

	TileID string `json:"tileId,omitempty"`
	X      int    `json:"x,omitempty"`
	Y      int    `json:"y,omitempty"`

	Content string `json:"content,omitempty"`
}

// bindRoom installs the fan-out callbacks on a room the first time the
// gateway touches it. The callbacks run while the room lock is held, so
// they only marshal and enqueue.
func (s *Server) bindRoom(room *game.Room) {
	if room.BroadcastFn != nil {
		return
	}
	code := room.Code
	room.BroadcastFn = func(snap game.Snapshot) {
		s.broadcastSnapshot(code, snap)
	}
	room.RackFn = func(playerID uuid.UUID, tiles []models.Tile) {
		s.sendToPlayer(code, playerID, serverMessage{
			Type:     "playerTiles",
			PlayerID: playerID.String(),
			Tiles:    tiles,
		})
	}
}

func (s *Server) broadcastSnapshot(code string, snap game.Snapshot) {
	payload, err := json.Marshal(serverMessage{Type: "gameState", State: &snap})
	if err != nil {
		s.logger.Errorf("failed to marshal snapshot for room %s: %v", code, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs[code] {
		s.enqueueLocked(code, sub, payload)
	}
}

func (s *Server) sendToPlayer(code string, playerID uuid.UUID, msg serverMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Errorf("failed to marshal %s message for room %s: %v", msg.Type, code, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subs[code][playerID]; ok {
		s.enqueueLocked(code, sub, payload)
	}
}

// enqueueLocked pushes a payload onto a subscriber's queue without blocking.
// Assumes s.mu is held.
func (s *Server) enqueueLocked(code string, sub *subscriber, payload []byte) {
	select {
	case sub.out <- payload:
	default:
		s.logger.Warnf("dropping message for slow subscriber %s in room %s", sub.playerID, code)
	}
}

func (s *Server) addSubscriber(code string, playerID uuid.UUID) *subscriber {
	sub := &subscriber{playerID: playerID, out: make(chan []byte, 32)}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs[code] == nil {
		s.subs[code] = make(map[uuid.UUID]*subscriber)
	}
	s.subs[code][playerID] = sub
	return sub
}

// removeSubscriber drops a connection's queue and reports whether sub was
// still the player's current connection. A false return means a resumed
// connection has taken over the seat, so the caller must not treat this
// teardown as the player leaving.
func (s *Server) removeSubscriber(code string, sub *subscriber) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := false
	if cur, ok := s.subs[code][sub.playerID]; ok && cur == sub {
		delete(s.subs[code], sub.playerID)
		if len(s.subs[code]) == 0 {
			delete(s.subs, code)
		}
		current = true
	}
	close(sub.out)
	return current
}

func (s *Server) hasSubscriber(code string, playerID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[code][playerID]
	return ok
}
