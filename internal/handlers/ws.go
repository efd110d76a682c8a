// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/DavinciDreams/vscrabbleproject/internal/auth"
	"github.com/DavinciDreams/vscrabbleproject/internal/game"
	"github.com/DavinciDreams/vscrabbleproject/internal/middleware"
)

const defaultMaxPlayers = 4

// WSHandler upgrades the connection and runs the session: a join handshake
// binds the socket to a (room, player) pair, then every subsequent event is
// routed into that room scoped to that player id. The connection can never
// act as anyone else.
func WSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"vscrabble"},
			OriginPatterns: s.originPatterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "vscrabble" {
			c.Close(BadSubprotocolError, "client must speak the vscrabble subprotocol")
			return
		}
		middleware.SocketOpened(logger, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// First frame must be a join request.
		join, err := readJoin(ctx, c)
		if err != nil {
			logger.Warnf("join handshake failed from %s: %v", r.RemoteAddr, err)
			c.Close(JoinRequiredError, "expected a join request")
			return
		}

		room, playerID, err := s.resolveJoin(join)
		if err != nil {
			sendDirect(ctx, c, errorMessage(err))
			c.Close(joinCloseCode(join, err), "join rejected")
			return
		}
		code := room.Code

		sub := s.addSubscriber(code, playerID)
		go writePump(ctx, c, sub, logger)

		// The room has a connected player again; a pending sweep is stale.
		s.Rooms.CancelSweep(code)

		token, err := auth.CreateResumeToken(playerID.String(), code)
		if err != nil {
			logger.Errorf("failed to create resume token for player %s: %v", playerID, err)
		}
		s.sendToPlayer(code, playerID, serverMessage{
			Type:        "playerId",
			PlayerID:    playerID.String(),
			ResumeToken: token,
		})

		// Resuming players are re-marked connected here, which also resends
		// their private rack through the freshly registered subscriber.
		if join.ResumeToken != "" || playerID == room.HostID {
			room.Reconnect(playerID)
		}

		// The joiner registered after their own join broadcast went out, so
		// hand them the current snapshot privately.
		snap := room.Snapshot()
		s.sendToPlayer(code, playerID, serverMessage{Type: "gameState", State: &snap})

		logger.WithFields(logrus.Fields{"room": code, "player": playerID, "remote": r.RemoteAddr}).Info("session bound")

		readErr := readPump(ctx, c, s, room, playerID, logger)

		cancel()
		s.endSession(room, playerID, sub)
		middleware.SocketClosed(logger, r.RemoteAddr, code, playerID, readErr)
	}
}

// endSession tears down one connection's binding. Only the player's current
// connection may mark them disconnected; a stale socket whose seat was taken
// over by a resumed connection must leave the room untouched.
func (s *Server) endSession(room *game.Room, playerID uuid.UUID, sub *subscriber) {
	if !s.removeSubscriber(room.Code, sub) {
		return
	}
	room.Disconnect(playerID)
	if room.ConnectedCount() == 0 {
		s.Rooms.ScheduleSweep(room.Code)
	}
}

// readJoin reads the handshake frame, bounded so an idle socket cannot hold
// a slot forever.
func readJoin(ctx context.Context, c *websocket.Conn) (clientMessage, error) {
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var msg clientMessage
	typ, data, err := c.Read(readCtx)
	if err != nil {
		return msg, err
	}
	if typ != websocket.MessageText {
		return msg, errors.New("non-text handshake frame")
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.Type != "join" {
		return msg, errors.New("first frame was " + msg.Type)
	}
	return msg, nil
}

// resolveJoin decides create-vs-join-vs-resume. The host flag, not room
// existence, decides creation: a host joining a missing code gets a fresh
// room from the registry, a non-host gets RoomNotFound.
func (s *Server) resolveJoin(join clientMessage) (*game.Room, uuid.UUID, error) {
	if join.ResumeToken != "" {
		playerIDStr, roomCode, err := auth.AuthenticateResumeToken(join.ResumeToken)
		if err != nil {
			return nil, uuid.Nil, game.ErrRoomNotFound
		}
		playerID, err := uuid.Parse(playerIDStr)
		if err != nil {
			return nil, uuid.Nil, game.ErrRoomNotFound
		}
		room, ok := s.Rooms.Get(roomCode)
		if !ok {
			return nil, uuid.Nil, game.ErrRoomNotFound
		}
		s.bindRoom(room)
		return room, playerID, nil
	}

	room, ok := s.Rooms.Get(strings.ToUpper(join.RoomCode))
	if !ok {
		if !join.IsHost {
			return nil, uuid.Nil, game.ErrRoomNotFound
		}
		maxPlayers := join.MaxPlayers
		if maxPlayers == 0 {
			maxPlayers = defaultMaxPlayers
		}
		created, hostID, err := s.Rooms.CreateRoom(join.PlayerName, maxPlayers)
		if err != nil {
			return nil, uuid.Nil, err
		}
		s.bindRoom(created)
		return created, hostID, nil
	}

	s.bindRoom(room)

	// A host whose room came from the HTTP front door claims the reserved
	// host seat instead of joining as a second player.
	if join.IsHost && !s.hasSubscriber(room.Code, room.HostID) {
		return room, room.HostID, nil
	}

	playerID, err := room.Join(join.PlayerName)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return room, playerID, nil
}

// readPump consumes events for the bound session until the connection dies.
// Returns the terminating read error (nil for a clean close).
func readPump(ctx context.Context, c *websocket.Conn, s *Server, room *game.Room, playerID uuid.UUID, logger *logrus.Logger) error {
	log := logger.WithFields(logrus.Fields{"room": room.Code, "player": playerID})
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			log.Warnf("ignoring non-text message type %d", typ)
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warnf("malformed payload dropped: %v", err)
			continue
		}
		if msg.RoomCode != "" && !strings.EqualFold(msg.RoomCode, room.Code) {
			log.Warnf("event for foreign room %s dropped", msg.RoomCode)
			continue
		}

		s.routeEvent(room, playerID, msg, log)
	}
}

// routeEvent applies one inbound event to the bound room. Taxonomy errors
// go back to the originating connection only; bad placements are dropped
// with a warning and no error event.
func (s *Server) routeEvent(room *game.Room, playerID uuid.UUID, msg clientMessage, log *logrus.Entry) {
	code := room.Code
	switch msg.Type {
	case "startGame":
		if err := room.Start(playerID); err != nil {
			s.sendToPlayer(code, playerID, errorMessage(err))
		}

	case "placeTile":
		tileID, err := uuid.Parse(msg.TileID)
		if err != nil {
			log.Warnf("placeTile with malformed tile id %q dropped", msg.TileID)
			return
		}
		if err := room.PlaceTile(playerID, tileID, msg.X, msg.Y); err != nil {
			if errors.Is(err, game.ErrBadPlacement) {
				log.Warnf("placement rejected: %v", err)
				return
			}
			s.sendToPlayer(code, playerID, errorMessage(err))
		}

	case "submitMove":
		_, err := room.SubmitMove(playerID)
		ok := err == nil
		ack := serverMessage{Type: "moveResult", Success: &ok}
		if err != nil {
			ack.Message = err.Error()
		}
		s.sendToPlayer(code, playerID, ack)

	case "skipTurn":
		if err := room.SkipTurn(playerID); err != nil {
			s.sendToPlayer(code, playerID, errorMessage(err))
		}

	case "resetMove":
		if err := room.ResetMove(playerID); err != nil {
			s.sendToPlayer(code, playerID, errorMessage(err))
		}

	case "sendMessage":
		if strings.TrimSpace(msg.Content) == "" {
			log.Warn("empty chat message dropped")
			return
		}
		room.AddChat(playerID, msg.Content)

	default:
		log.Warnf("unknown event type %q dropped", msg.Type)
	}
}

// writePump drains a subscriber's queue onto the socket, one writer per
// connection so snapshot order on the wire matches commit order.
func writePump(ctx context.Context, c *websocket.Conn, sub *subscriber, logger *logrus.Logger) {
	for payload := range sub.out {
		writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := c.Write(writeCtx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			logger.Warnf("write to player %s failed: %v", sub.playerID, err)
			return
		}
	}
}

// sendDirect writes a message straight to the socket, used before the
// subscriber queue exists.
func sendDirect(ctx context.Context, c *websocket.Conn, msg serverMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = c.Write(writeCtx, websocket.MessageText, payload)
}

func errorMessage(err error) serverMessage {
	return serverMessage{Type: "error", Message: err.Error()}
}

func joinCloseCode(join clientMessage, err error) websocket.StatusCode {
	if join.ResumeToken != "" {
		return InvalidResumeTokenError
	}
	if errors.Is(err, game.ErrRoomNotFound) {
		return RoomNotFoundError
	}
	return websocket.StatusNormalClosure
}
