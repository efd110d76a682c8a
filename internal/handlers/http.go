// internal/handlers/http.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/DavinciDreams/vscrabbleproject/internal/game"
	"github.com/DavinciDreams/vscrabbleproject/internal/middleware"
)

// Routes mounts the HTTP front door. Rooms created here have a reserved
// host seat; the host claims it over the WebSocket with isHost set.
func Routes(logger *logrus.Logger, s *Server) http.Handler {
	r := chi.NewRouter()

	// The request logger's status recorder hides http.Hijacker, so the
	// upgrade endpoint stays outside the group.
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.RequestLogger(logger))
		gr.Get("/healthz", healthHandler)
		gr.Post("/api/rooms", createRoomHandler(logger, s))
		gr.Get("/api/rooms/{code}", getRoomHandler(s))
	})
	r.Get("/ws", WSHandler(logger, s))

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type createRoomRequest struct {
	HostName   string `json:"hostName"`
	MaxPlayers int    `json:"maxPlayers"`
}

type createRoomResponse struct {
	RoomCode string `json:"roomCode"`
	HostID   string `json:"hostId"`
}

func createRoomHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.HostName) == "" {
			http.Error(w, "hostName is required", http.StatusBadRequest)
			return
		}
		if req.MaxPlayers == 0 {
			req.MaxPlayers = defaultMaxPlayers
		}

		room, hostID, err := s.Rooms.CreateRoom(req.HostName, req.MaxPlayers)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.bindRoom(room)

		// The host has no socket yet, so the room is fully disconnected.
		// It gets the grace window to be claimed before it is swept.
		s.Rooms.ScheduleSweep(room.Code)

		logger.WithFields(logrus.Fields{"room": room.Code, "host": hostID}).Info("room created via http")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(createRoomResponse{
			RoomCode: room.Code,
			HostID:   hostID.String(),
		})
	}
}

func getRoomHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(chi.URLParam(r, "code"))
		room, ok := s.Rooms.Get(code)
		if !ok {
			http.Error(w, game.ErrRoomNotFound.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(room.Snapshot())
	}
}
