package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/gtostat/internal/app/models"
)

// AllInstitutes is the subscription key of clients following every institute
const AllInstitutes int64 = 0

const broadcastBuffer = 256

// Hub keeps the connected clients by institute and fans achievement events out to them
type Hub struct {
	// Registered clients organized by institute ID
	clients map[int64]map[*Client]bool

	broadcast  chan models.AchievementEvent
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan models.AchievementEvent, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Publish queues an event for broadcast. Events are dropped when the queue is full.
func (h *Hub) Publish(event models.AchievementEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Str("type", event.Type).Int64("studentID", event.StudentID).Msg("Broadcast queue full, event dropped")
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientsCount returns the number of clients subscribed to an institute
func (h *Hub) ClientsCount(instituteID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[instituteID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.instituteID]; !ok {
		h.clients[client.instituteID] = make(map[*Client]bool)
	}
	h.clients[client.instituteID][client] = true

	h.logger.Info().
		Int64("instituteID", client.instituteID).
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr).
		Msg("Client registered")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.instituteID]
	if !ok || !clients[client] {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.instituteID)
	}

	h.logger.Info().
		Int64("instituteID", client.instituteID).
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr).
		Msg("Client unregistered")
}

// broadcastEvent sends the event to the institute's subscribers and to those following all institutes.
// Clients whose buffer is full are dropped.
func (h *Hub) broadcastEvent(event models.AchievementEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var slow []*Client
	sent := 0
	for _, key := range []int64{event.InstituteID, AllInstitutes} {
		for client := range h.clients[key] {
			select {
			case client.send <- data:
				sent++
			default:
				slow = append(slow, client)
			}
		}
	}
	for _, client := range slow {
		h.removeLocked(client)
	}

	h.logger.Debug().
		Int64("instituteID", event.InstituteID).
		Str("type", event.Type).
		Int("clientCount", sent).
		Msg("Event broadcasted")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}
