package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/menumate/menumate/utils"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client is one WebSocket connection subscribed to a single channel.
type Client struct {
	ID      string
	Channel string
	Conn    *websocket.Conn
}

func NewClient(channel string, conn *websocket.Conn) *Client {
	return &Client{
		ID:      uuid.NewString(),
		Channel: channel,
		Conn:    conn,
	}
}

// Hub maintains channel -> set of clients and broadcasts messages. With a
// bridge attached, broadcasts also publish to Redis so other instances
// relay to their local clients.
type Hub struct {
	channels map[string]map[string]*Client
	subs     map[string]func()
	mu       sync.Mutex
	bridge   *RedisBridge
}

func NewHub(bridge *RedisBridge) *Hub {
	return &Hub{
		channels: make(map[string]map[string]*Client),
		subs:     make(map[string]func()),
		bridge:   bridge,
	}
}

// Register adds a client. The first client on a channel starts the Redis
// subscription for it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.channels[c.Channel] == nil {
		h.channels[c.Channel] = make(map[string]*Client)
		if h.bridge != nil {
			cancel, err := h.bridge.Subscribe(c.Channel, func(event string, payload []byte) {
				h.broadcastLocal(c.Channel, event, json.RawMessage(payload))
			})
			if err != nil {
				utils.ErrorLogger.Printf("redis subscribe %s: %v", c.Channel, err)
			} else {
				h.subs[c.Channel] = cancel
			}
		}
	}
	h.channels[c.Channel][c.ID] = c
}

// Unregister removes a client and closes its connection. The last client
// on a channel cancels the Redis subscription.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m, ok := h.channels[c.Channel]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.channels, c.Channel)
			if cancel, ok := h.subs[c.Channel]; ok {
				cancel()
				delete(h.subs, c.Channel)
			}
		}
	}
	c.Conn.Close()
}

// Broadcast sends an event to all clients on a channel. With a bridge
// attached it publishes to Redis only; every instance, this one included,
// delivers to its local clients from the subscription, so nobody receives
// the event twice. Failures are logged only.
func (h *Hub) Broadcast(channel, event string, payload interface{}) {
	if h.bridge != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			utils.ErrorLogger.Printf("marshal %s event: %v", event, err)
			return
		}
		if err := h.bridge.Publish(channel, event, data); err != nil {
			utils.ErrorLogger.Printf("redis publish %s: %v", channel, err)
			h.broadcastLocal(channel, event, payload)
		}
		return
	}
	h.broadcastLocal(channel, event, payload)
}

func (h *Hub) broadcastLocal(channel, event string, payload interface{}) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		utils.ErrorLogger.Printf("marshal %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.channels[channel] {
		if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("send to client %s: %v", client.ID, err)
			continue
		}
	}
}

// ClientCount returns the number of clients on a channel.
func (h *Hub) ClientCount(channel string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels[channel])
}
