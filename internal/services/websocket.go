package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Desktop dashboards connect from arbitrary local origins
	},
}

// Client represents a connected dashboard
type Client struct {
	ID   uint
	Role string // "admin" or "driver"
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
}

// Hub maintains the set of connected dashboards and pushes booking
// lifecycle events to them so they can refresh their views.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Dashboard %s/%d connected", client.Role, client.ID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Dashboard %s/%d disconnected", client.Role, client.ID)
		}
	}
}

// BookingEvent is the message pushed to dashboards on lifecycle changes.
type BookingEvent struct {
	Event     string `json:"event"`
	BookingID uint   `json:"bookingId"`
	Status    string `json:"status"`
	DriverID  *uint  `json:"driverId,omitempty"`
}

// SendBookingEvent pushes a booking event to every admin dashboard and,
// when the booking carries a driver, to that driver's dashboard.
func (h *Hub) SendBookingEvent(event BookingEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling booking event: %v", err)
		return
	}

	h.sendToRole("admin", data)
	if event.DriverID != nil {
		h.SendToDriver(*event.DriverID, data)
	}
}

// sendToRole delivers a message to every dashboard with the given role.
func (h *Hub) sendToRole(role string, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if client.Role == role {
			h.deliver(client, message)
		}
	}
}

// SendToDriver sends a message to one driver's dashboard.
func (h *Hub) SendToDriver(driverID uint, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if client.Role == "driver" && client.ID == driverID {
			h.deliver(client, message)
		}
	}
}

// deliver hands a message to a client, dropping the client if its send
// buffer is full. Callers must hold the write lock.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		close(client.Send)
		delete(h.clients, client)
	}
}

// GetConnectedClients returns the number of connected dashboards
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection and registers the dashboard.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint, role string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:   userID,
		Role: role,
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  hub,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains inbound frames; dashboards only listen, so anything
// received is discarded until the connection closes.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
