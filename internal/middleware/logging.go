// internal/middleware/logging.go
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// statusRecorder captures the response code for the request log line.
// It hides the Hijacker interface, so it must not wrap upgrade endpoints.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs every plain HTTP request with its method, path,
// response status and duration.
func RequestLogger(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("http request")
		})
	}
}

// SocketOpened logs a fresh WebSocket upgrade, before the join handshake
// has bound it to a room.
func SocketOpened(logger *logrus.Logger, remoteAddr string) {
	logger.WithField("remote", remoteAddr).Info("socket opened")
}

// SocketClosed logs the end of a bound session with the room and player it
// was acting for. err is the terminating read error, nil for a clean close.
func SocketClosed(logger *logrus.Logger, remoteAddr, roomCode string, playerID uuid.UUID, err error) {
	fields := logrus.Fields{
		"remote": remoteAddr,
		"room":   roomCode,
		"player": playerID,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("socket closed")
}
