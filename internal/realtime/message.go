package realtime

import (
	"encoding/json"
	"time"

	"github.com/dom/roleplay-api/internal/domain"
)

type MessageType string

const (
	// Server to Client
	MessageTypeGroupRequestCreated  MessageType = "GROUP_REQUEST_CREATED"
	MessageTypeGroupRequestAccepted MessageType = "GROUP_REQUEST_ACCEPTED"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// GroupRequestPayload describes a join request in realtime events
type GroupRequestPayload struct {
	ID      string `json:"id"`
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
	Status  string `json:"status"`
}

func newGroupRequestPayload(r *domain.GroupRequest) GroupRequestPayload {
	return GroupRequestPayload{
		ID:      r.ID.String(),
		GroupID: r.GroupID.String(),
		UserID:  r.UserID.String(),
		Status:  string(r.Status),
	}
}
