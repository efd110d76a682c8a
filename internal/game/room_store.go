package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const roomCodeLength = 6
const roomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoomStore is the process-wide registry mapping room codes to live rooms.
// It owns the only state shared across all connections, so every access
// goes through the store mutex. It also runs the all-disconnected grace
// sweep: a room whose last connected player drops is destroyed after the
// grace period unless someone reconnects first.
type RoomStore struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	graceTimers map[string]*time.Timer

	gracePeriod time.Duration
	logger      *logrus.Logger
}

// NewRoomStore builds an empty registry. gracePeriod is how long a fully
// disconnected room survives before the sweep destroys it.
func NewRoomStore(logger *logrus.Logger, gracePeriod time.Duration) *RoomStore {
	return &RoomStore{
		rooms:       make(map[string]*Room),
		graceTimers: make(map[string]*time.Timer),
		gracePeriod: gracePeriod,
		logger:      logger,
	}
}

// CreateRoom allocates a unique room code, creates a waiting room with the
// host as its sole player, and returns the room plus the host's player id.
// Both the HTTP front door and the socket join flow allocate through here,
// so codes can never collide between the two paths.
func (s *RoomStore) CreateRoom(hostName string, maxPlayers int) (*Room, uuid.UUID, error) {
	if maxPlayers < 2 || maxPlayers > 4 {
		return nil, uuid.Nil, ErrInvalidConfig
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	for attempt := 0; ; attempt++ {
		c, err := generateRoomCode()
		if err != nil {
			return nil, uuid.Nil, fmt.Errorf("generate room code: %w", err)
		}
		if _, taken := s.rooms[c]; !taken {
			code = c
			break
		}
		if attempt >= 10 {
			return nil, uuid.Nil, fmt.Errorf("could not allocate a unique room code")
		}
		s.logger.WithField("code", c).Warn("room code collision, regenerating")
	}

	room, hostID := NewRoom(code, hostName, maxPlayers, s.logger)
	s.rooms[code] = room
	s.logger.WithFields(logrus.Fields{"room": code, "host": hostID, "maxPlayers": maxPlayers}).Info("room created")
	return room, hostID, nil
}

// Get looks up a live room by code.
func (s *RoomStore) Get(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

// Destroy removes a room and cancels any pending sweep. Idempotent.
func (s *RoomStore) Destroy(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyLocked(code)
}

func (s *RoomStore) destroyLocked(code string) {
	if t, ok := s.graceTimers[code]; ok {
		t.Stop()
		delete(s.graceTimers, code)
	}
	if _, ok := s.rooms[code]; ok {
		delete(s.rooms, code)
		s.logger.WithField("room", code).Info("room destroyed")
	}
}

// Len reports the number of live rooms.
func (s *RoomStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// ScheduleSweep arms the grace timer for a room after its last connected
// player dropped. When the timer fires the room is destroyed only if it is
// still fully disconnected; a reconnect in the window cancels the sweep.
func (s *RoomStore) ScheduleSweep(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[code]; !ok {
		return
	}
	if t, ok := s.graceTimers[code]; ok {
		t.Stop()
	}
	s.graceTimers[code] = time.AfterFunc(s.gracePeriod, func() {
		s.mu.Lock()
		room, ok := s.rooms[code]
		if !ok {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		// Re-check outside the store lock; ConnectedCount takes the room lock.
		if room.ConnectedCount() > 0 {
			s.logger.WithField("room", code).Info("sweep aborted, player reconnected")
			return
		}

		s.mu.Lock()
		s.destroyLocked(code)
		s.mu.Unlock()
		s.logger.WithField("room", code).Info("room swept after all players disconnected")
	})
}

// CancelSweep stops a pending grace timer, typically on reconnect.
func (s *RoomStore) CancelSweep(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.graceTimers[code]; ok {
		t.Stop()
		delete(s.graceTimers, code)
	}
}

func generateRoomCode() (string, error) {
	code := make([]byte, roomCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = roomCodeCharset[n.Int64()]
	}
	return string(code), nil
}
