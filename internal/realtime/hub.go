package realtime

import (
	"encoding/json"
	"sync"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub tracks connected clients by user and fans out events to them.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	stopOnce   sync.Once
	log        *zap.Logger
	mu         sync.RWMutex
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, set := range h.clients {
				for client := range set {
					client.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				set, ok := h.clients[client.userID]
				if !ok {
					set = make(map[*Client]bool)
					h.clients[client.userID] = set
				}
				set[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.userID]; ok && set[client] {
				delete(set, client)
				if len(set) == 0 {
					delete(h.clients, client.userID)
				}
				client.Close()
			}
			h.mu.Unlock()
		}
	}
}

// Stop disconnects every client and blocks until Run has returned.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ConnectedCount returns how many sockets the user has open
func (h *Hub) ConnectedCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendToUser delivers msg to every socket of the user. It never blocks: a
// client whose buffer is full misses the message.
func (h *Hub) SendToUser(userID uuid.UUID, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		if !client.trySend(data) {
			h.log.Warn("dropped realtime message, client buffer full",
				zap.String("user_id", userID.String()),
				zap.String("type", string(msg.Type)))
		}
	}
}

// GroupRequestCreated tells the master a new request awaits them.
func (h *Hub) GroupRequestCreated(masterID uuid.UUID, request *domain.GroupRequest) {
	h.publish(masterID, MessageTypeGroupRequestCreated, request)
}

// GroupRequestAccepted tells the requester they joined the group.
func (h *Hub) GroupRequestAccepted(request *domain.GroupRequest) {
	h.publish(request.UserID, MessageTypeGroupRequestAccepted, request)
}

func (h *Hub) publish(userID uuid.UUID, msgType MessageType, request *domain.GroupRequest) {
	msg, err := NewMessage(msgType, newGroupRequestPayload(request))
	if err != nil {
		h.log.Error("failed to build message", zap.Error(err))
		return
	}
	h.SendToUser(userID, msg)
}
