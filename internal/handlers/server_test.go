// internal/handlers/server_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavinciDreams/vscrabbleproject/internal/auth"
	"github.com/DavinciDreams/vscrabbleproject/internal/game"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	rooms := game.NewRoomStore(logger, time.Second)
	return NewServer(logger, rooms, []string{"*"})
}

func TestResolveJoinHostCreatesRoom(t *testing.T) {
	s := newTestServer(t)

	room, playerID, err := s.resolveJoin(clientMessage{
		Type:       "join",
		PlayerName: "Ann",
		IsHost:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, room.HostID, playerID)
	assert.Equal(t, 1, s.Rooms.Len())
	assert.NotNil(t, room.BroadcastFn)
}

func TestResolveJoinUnknownRoomRejected(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.resolveJoin(clientMessage{
		Type:       "join",
		PlayerName: "Bob",
		RoomCode:   "NOSUCH",
	})
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
	assert.Equal(t, 0, s.Rooms.Len())
}

func TestResolveJoinExistingRoom(t *testing.T) {
	s := newTestServer(t)
	room, hostID, err := s.Rooms.CreateRoom("Ann", 4)
	require.NoError(t, err)

	// The host seat is reserved until claimed over the socket.
	gotRoom, playerID, err := s.resolveJoin(clientMessage{
		Type:     "join",
		IsHost:   true,
		RoomCode: room.Code,
	})
	require.NoError(t, err)
	assert.Equal(t, hostID, playerID)
	assert.Same(t, room, gotRoom)

	// A plain join gets a fresh seat, case-insensitive on the code.
	_, bobID, err := s.resolveJoin(clientMessage{
		Type:       "join",
		PlayerName: "Bob",
		RoomCode:   strings.ToLower(room.Code),
	})
	require.NoError(t, err)
	assert.NotEqual(t, hostID, bobID)
	assert.Len(t, room.Snapshot().Players, 2)
}

func TestResolveJoinResumeToken(t *testing.T) {
	auth.Init()
	s := newTestServer(t)
	room, hostID, err := s.Rooms.CreateRoom("Ann", 4)
	require.NoError(t, err)

	token, err := auth.CreateResumeToken(hostID.String(), room.Code)
	require.NoError(t, err)

	gotRoom, playerID, err := s.resolveJoin(clientMessage{
		Type:        "join",
		ResumeToken: token,
	})
	require.NoError(t, err)
	assert.Same(t, room, gotRoom)
	assert.Equal(t, hostID, playerID)

	// A token for a swept room cannot resurrect it.
	s.Rooms.Destroy(room.Code)
	_, _, err = s.resolveJoin(clientMessage{Type: "join", ResumeToken: token})
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestBroadcastReachesAllSubscribersInOrder(t *testing.T) {
	s := newTestServer(t)
	room, hostID, err := s.Rooms.CreateRoom("Ann", 4)
	require.NoError(t, err)
	s.bindRoom(room)

	bobID := uuid.New()
	hostSub := s.addSubscriber(room.Code, hostID)
	bobSub := s.addSubscriber(room.Code, bobID)

	first := room.Snapshot()
	s.broadcastSnapshot(room.Code, first)
	second := room.Snapshot()
	second.Status = game.StatusActive
	s.broadcastSnapshot(room.Code, second)

	for _, sub := range []*subscriber{hostSub, bobSub} {
		var msg serverMessage
		require.NoError(t, json.Unmarshal(<-sub.out, &msg))
		assert.Equal(t, game.StatusWaiting, msg.State.Status)
		require.NoError(t, json.Unmarshal(<-sub.out, &msg))
		assert.Equal(t, game.StatusActive, msg.State.Status)
	}
}

func TestSendToPlayerIsPrivate(t *testing.T) {
	s := newTestServer(t)
	room, hostID, err := s.Rooms.CreateRoom("Ann", 4)
	require.NoError(t, err)

	bobID := uuid.New()
	hostSub := s.addSubscriber(room.Code, hostID)
	bobSub := s.addSubscriber(room.Code, bobID)

	s.sendToPlayer(room.Code, bobID, serverMessage{Type: "playerTiles"})

	assert.Len(t, bobSub.out, 1)
	assert.Len(t, hostSub.out, 0)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	s := newTestServer(t)
	room, hostID, err := s.Rooms.CreateRoom("Ann", 4)
	require.NoError(t, err)

	sub := s.addSubscriber(room.Code, hostID)
	for i := 0; i < cap(sub.out)+5; i++ {
		s.sendToPlayer(room.Code, hostID, serverMessage{Type: "gameState"})
	}
	assert.Len(t, sub.out, cap(sub.out))
}

func TestRemoveSubscriberIgnoresReplacedConnection(t *testing.T) {
	s := newTestServer(t)
	room, hostID, err := s.Rooms.CreateRoom("Ann", 4)
	require.NoError(t, err)

	old := s.addSubscriber(room.Code, hostID)
	replacement := s.addSubscriber(room.Code, hostID)

	// The dead connection's cleanup must not evict the replacement, and it
	// must report that the seat was no longer its own.
	assert.False(t, s.removeSubscriber(room.Code, old))
	assert.True(t, s.hasSubscriber(room.Code, hostID))

	assert.True(t, s.removeSubscriber(room.Code, replacement))
	assert.False(t, s.hasSubscriber(room.Code, hostID))
	_, open := <-replacement.out
	assert.False(t, open)
}

func TestStaleSocketCleanupKeepsResumedPlayer(t *testing.T) {
	s := newTestServer(t)
	room, hostID, err := s.Rooms.CreateRoom("Ann", 4)
	require.NoError(t, err)
	s.bindRoom(room)

	old := s.addSubscriber(room.Code, hostID)
	require.True(t, room.Reconnect(hostID))

	// The host resumes on a fresh connection; the seat moves over.
	replacement := s.addSubscriber(room.Code, hostID)
	require.True(t, room.Reconnect(hostID))

	// The stale socket's teardown must not mark the live host disconnected,
	// which would end the game out from under them.
	s.endSession(room, hostID, old)
	assert.Equal(t, game.StatusWaiting, room.Status())
	assert.Equal(t, 1, room.ConnectedCount())
	assert.True(t, s.hasSubscriber(room.Code, hostID))

	// Tearing down the live connection is a real departure.
	s.endSession(room, hostID, replacement)
	assert.Equal(t, game.StatusFinished, room.Status())
	assert.Equal(t, 0, room.ConnectedCount())
}

func TestUnclaimedRoomIsSwept(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	rooms := game.NewRoomStore(logger, 20*time.Millisecond)
	s := NewServer(logger, rooms, []string{"*"})
	router := Routes(logger, s)

	body, _ := json.Marshal(createRoomRequest{HostName: "Ann", MaxPlayers: 4})
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createRoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Nobody ever opens a socket, so the grace sweep reclaims the room.
	assert.Eventually(t, func() bool {
		_, ok := rooms.Get(resp.RoomCode)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestClaimedRoomSurvivesCreationSweep(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	rooms := game.NewRoomStore(logger, 20*time.Millisecond)
	s := NewServer(logger, rooms, []string{"*"})

	room, hostID, err := rooms.CreateRoom("Ann", 4)
	require.NoError(t, err)
	s.bindRoom(room)
	rooms.ScheduleSweep(room.Code)

	// The host claims the seat inside the grace window, as the socket
	// binding path does.
	s.addSubscriber(room.Code, hostID)
	rooms.CancelSweep(room.Code)
	require.True(t, room.Reconnect(hostID))

	time.Sleep(60 * time.Millisecond)
	_, ok := rooms.Get(room.Code)
	assert.True(t, ok)
}

func TestCreateRoomEndpoint(t *testing.T) {
	s := newTestServer(t)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	router := Routes(logger, s)

	body, _ := json.Marshal(createRoomRequest{HostName: "Ann", MaxPlayers: 3})
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp createRoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.RoomCode, 6)

	room, ok := s.Rooms.Get(resp.RoomCode)
	require.True(t, ok)
	assert.Equal(t, resp.HostID, room.HostID.String())
	assert.Equal(t, 3, room.MaxPlayers)
}

func TestCreateRoomEndpointRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	router := Routes(logger, s)

	cases := []string{
		`{"hostName":""}`,
		`{"hostName":"Ann","maxPlayers":9}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/rooms", bytes.NewReader([]byte(body)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body=%s", body)
	}
	assert.Equal(t, 0, s.Rooms.Len())
}

func TestGetRoomEndpoint(t *testing.T) {
	s := newTestServer(t)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	router := Routes(logger, s)

	room, _, err := s.Rooms.CreateRoom("Ann", 4)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/"+strings.ToLower(room.Code), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, room.Code, snap.RoomCode)
	assert.Equal(t, game.StatusWaiting, snap.Status)

	req = httptest.NewRequest(http.MethodGet, "/api/rooms/NOSUCH", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	router := Routes(logger, s)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
