package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/YatinKare/DesignDual/internal/model"
	"github.com/gofiber/contrib/websocket"
)

// Client represents a WebSocket client
type Client struct {
	SubmissionID string
	Conn         *websocket.Conn
	Send         chan []byte
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Clients grouped by submission ID
	clients map[string]map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Broadcast messages to submission subscribers
	broadcast chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	SubmissionID string
	Message      []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.SubmissionID] == nil {
				h.clients[client.SubmissionID] = make(map[*Client]bool)
			}
			h.clients[client.SubmissionID][client] = true
			h.mu.Unlock()
			log.Printf("Client registered for submission %s", client.SubmissionID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SubmissionID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.SubmissionID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("Client unregistered from submission %s", client.SubmissionID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			if clients, ok := h.clients[msg.SubmissionID]; ok {
				for client := range clients {
					select {
					case client.Send <- msg.Message:
					default:
						close(client.Send)
						delete(clients, client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastEvent mirrors a persisted grading event to all subscribers of its
// submission.
func (h *Hub) BroadcastEvent(event *model.GradingEvent) {
	msg := model.WSProgressMessage{
		Type:         model.WSMessageTypeProgress,
		SubmissionID: event.SubmissionID,
		Status:       event.Status,
		Message:      event.Message,
		Phase:        event.Phase,
		Progress:     event.Progress,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal progress message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		SubmissionID: event.SubmissionID,
		Message:      data,
	}
}

// BroadcastComplete sends the final result to all submission subscribers
func (h *Hub) BroadcastComplete(submissionID string, result *model.SubmissionResult) {
	msg := model.WSCompleteMessage{
		Type:         model.WSMessageTypeComplete,
		SubmissionID: submissionID,
		Result:       result,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal complete message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		SubmissionID: submissionID,
		Message:      data,
	}
}

// BroadcastError sends an error message to all submission subscribers
func (h *Hub) BroadcastError(submissionID string, code, message string) {
	msg := model.WSErrorMessage{
		Type:         model.WSMessageTypeError,
		SubmissionID: submissionID,
		Error: model.WSError{
			Code:    code,
			Message: message,
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal error message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		SubmissionID: submissionID,
		Message:      data,
	}
}

// HandleConnection handles a WebSocket connection
func (h *Hub) HandleConnection(c *websocket.Conn, submissionID string) {
	client := &Client{
		SubmissionID: submissionID,
		Conn:         c,
		Send:         make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Handle client messages (ping/pong)
		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			client.Send <- data
		}
	}
}
