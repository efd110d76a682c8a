package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes player chat from server-generated log lines.
type MessageType string

const (
	MessageChat   MessageType = "chat"
	MessageSystem MessageType = "system"
)

// SystemPlayerID is the sender id stamped on system messages.
const SystemPlayerID = "system"

// Message is one entry in a room's append-only chat/system log.
// PlayerID is a string rather than a uuid so system entries can carry the
// reserved "system" sender.
type Message struct {
	ID         uuid.UUID   `json:"id"`
	PlayerID   string      `json:"playerId"`
	PlayerName string      `json:"playerName"`
	Content    string      `json:"content"`
	Timestamp  int64       `json:"timestamp"`
	Type       MessageType `json:"type"`
}

// NewSystemMessage builds a system log entry stamped with the current time.
func NewSystemMessage(content string) Message {
	id, _ := uuid.NewRandom()
	return Message{
		ID:         id,
		PlayerID:   SystemPlayerID,
		PlayerName: "System",
		Content:    content,
		Timestamp:  time.Now().UnixMilli(),
		Type:       MessageSystem,
	}
}

// NewChatMessage builds a chat entry from a named player.
func NewChatMessage(playerID uuid.UUID, playerName, content string) Message {
	id, _ := uuid.NewRandom()
	return Message{
		ID:         id,
		PlayerID:   playerID.String(),
		PlayerName: playerName,
		Content:    content,
		Timestamp:  time.Now().UnixMilli(),
		Type:       MessageChat,
	}
}
