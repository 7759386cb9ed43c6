// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"

	"fleet-coordinator-api-server/internal/models"

	"github.com/gorilla/websocket"
)

// Hub manages the websocket connections of riders watching the fleet.
type Hub struct {
	// clients maps a subscriber's userID to its connection.
	clients map[string]*websocket.Conn
	mu      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register adds a new subscriber to the hub.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = conn
	log.Printf("WebSocket client registered: %s", userID)
}

// Unregister removes a subscriber from the hub.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		log.Printf("WebSocket client unregistered: %s", userID)
	}
}

// positionUpdate is the wire shape pushed to subscribers.
type positionUpdate struct {
	TruckID  string           `json:"camionId"`
	Plate    string           `json:"placa"`
	Route    string           `json:"ruta"`
	Position *models.Position `json:"ubicacion"`
}

// BroadcastPosition pushes a truck's fresh position to every subscriber.
// Connections allow only one concurrent writer, so broadcasts hold the
// write lock; every driver session reports through here. An offline or
// failing subscriber is dropped, never treated as fatal.
func (h *Hub) BroadcastPosition(truck models.Truck) {
	message, err := json.Marshal(positionUpdate{
		TruckID:  truck.TruckID,
		Plate:    truck.Plate,
		Route:    truck.Route,
		Position: truck.LastPosition,
	})
	if err != nil {
		log.Printf("Failed to encode position update: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write to %s failed, dropping: %v", userID, err)
			conn.Close()
			delete(h.clients, userID)
		}
	}
}
