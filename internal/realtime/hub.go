package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Best-effort fan-out to connected dashboards (waiter screens, kitchen
// display). Delivery is not required for correctness; the database is the
// source of truth and clients refetch on every event.

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

var (
	mu      sync.Mutex
	clients = make(map[*websocket.Conn]uint) // conn -> tenant scope
)

// Message is the wire format pushed to clients.
type Message struct {
	Event   string `json:"event"`
	Payload string `json:"payload"`
}

// HandleWebSocket upgrades the connection and parks it until the client
// hangs up. The tenant scope comes from the auth middleware.
func HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetUint("tenantID")
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("Error during connection upgrade:", err)
			return
		}
		defer conn.Close()

		mu.Lock()
		clients[conn] = tenantID
		mu.Unlock()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				mu.Lock()
				delete(clients, conn)
				mu.Unlock()
				break
			}
		}
	}
}

// Broadcast tells every connected client of a tenant that an entity kind
// changed ("orders", "tables", "qr_orders"). Fire-and-forget.
func Broadcast(tenantID uint, entityKind string) {
	mu.Lock()
	defer mu.Unlock()

	messageBytes, err := json.Marshal(Message{Event: "changed", Payload: entityKind})
	if err != nil {
		log.Println("Error marshaling message:", err)
		return
	}

	for client, scope := range clients {
		if scope != tenantID {
			continue
		}
		if err := client.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
			client.Close()
			delete(clients, client)
		}
	}
}
