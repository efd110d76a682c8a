// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the session gateway. These provide
// more specific reasons for closure than standard codes.
const (
	BadSubprotocolError     websocket.StatusCode = 3000 // unsupported subprotocol
	InvalidResumeTokenError websocket.StatusCode = 3001 // resume token invalid, expired, or room gone
	JoinRequiredError       websocket.StatusCode = 3002 // first frame on the socket was not a join request
	RoomNotFoundError       websocket.StatusCode = 3003 // target room does not exist and the client is not a host
)
