// Package livefeed broadcasts accepted transactions, accepted blocks, and
// periodic network stats to subscribed websocket clients: Component K. It
// has no authority over the engine's state — every event it carries has
// already been committed by the ledger, registry, or pool before it
// reaches the hub.
package livefeed

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// event is the wire envelope every live feed message shares: a type tag
// and its payload.
type event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub maintains one network's set of active websocket subscribers and
// fans out broadcast messages to all of them.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast: make(chan []byte, 256),
		clients:   make(map[*websocket.Conn]bool),
	}
}

// Run drains the broadcast channel and fans each message out to every
// connected client. Meant to run for the lifetime of the process in its
// own goroutine.
func (h *Hub) Run() {
	for message := range h.broadcast {
		h.mutex.Lock()
		for client := range h.clients {
			_ = client.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mutex.Unlock()
	}
}

// Subscribe upgrades an HTTP request to a websocket connection and adds it
// to the hub's client set.
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("livefeed: failed to upgrade websocket: %v", err)
		return
	}

	h.mutex.Lock()
	h.clients[conn] = true
	h.mutex.Unlock()

	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			h.mutex.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// Notify marshals (event, payload) and enqueues it for every subscriber.
// Implements ledger.Notifier and txpool.Notifier. Marshal failures are
// logged, never propagated — a live feed event is never load-bearing.
func (h *Hub) Notify(eventType string, payload interface{}) {
	raw, err := json.Marshal(event{Event: eventType, Data: payload})
	if err != nil {
		log.Printf("livefeed: failed to marshal %s event: %v", eventType, err)
		return
	}
	h.broadcast <- raw
}
