package libraries

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WebSocketMessageType string

const (
	WebSocketMessageTypePing  WebSocketMessageType = "ping"
	WebSocketMessageTypePong  WebSocketMessageType = "pong"
	WebSocketMessageTypeError WebSocketMessageType = "error"

	EventColumnCreated WebSocketMessageType = "column_created"
	EventColumnUpdated WebSocketMessageType = "column_updated"
	EventColumnDeleted WebSocketMessageType = "column_deleted"
	EventColumnMoved   WebSocketMessageType = "column_moved"
	EventCardCreated   WebSocketMessageType = "card_created"
	EventCardUpdated   WebSocketMessageType = "card_updated"
	EventCardDeleted   WebSocketMessageType = "card_deleted"
	EventCardMoved     WebSocketMessageType = "card_moved"
	EventMemberChanged WebSocketMessageType = "member_changed"
	EventBoardUpdated  WebSocketMessageType = "board_updated"
	EventBoardDeleted  WebSocketMessageType = "board_deleted"
)

// Locals keys the upgrade guard sets before handing the connection to the hub.
const (
	LocalBoardID = "wsBoardID"
	LocalUserID  = "wsUserID"
)

// WebSocketMessage represents the standard structure for all websocket messages
type WebSocketMessage struct {
	Type WebSocketMessageType `json:"type"`
	Data interface{}          `json:"data,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type Client struct {
	ID      string
	BoardID uuid.UUID
	UserID  uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	once    sync.Once
}

func NewClient(boardID, userID uuid.UUID, conn *websocket.Conn) *Client {
	return &Client{
		ID:      uuid.NewString(),
		BoardID: boardID,
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan []byte, 256),
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.Send)
	})
}

type boardMessage struct {
	boardID uuid.UUID
	payload []byte
}

// Hub fans board events out to the clients watching that board. All client
// bookkeeping happens on the Run goroutine.
type Hub struct {
	boards     map[uuid.UUID]map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan boardMessage
	quit       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		boards:     make(map[uuid.UUID]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan boardMessage, 256),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			clients, ok := h.boards[client.BoardID]
			if !ok {
				clients = make(map[string]*Client)
				h.boards[client.BoardID] = clients
			}
			clients[client.ID] = client
		case client := <-h.Unregister:
			h.remove(client)
		case msg := <-h.broadcast:
			for _, client := range h.boards[msg.boardID] {
				select {
				case client.Send <- msg.payload:
				default:
					log.Println("websocket client too slow, dropping:", client.ID)
					h.remove(client)
				}
			}
		case <-h.quit:
			for _, clients := range h.boards {
				for _, client := range clients {
					client.close()
				}
			}
			h.boards = make(map[uuid.UUID]map[string]*Client)
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.boards[client.BoardID]
	if !ok {
		return
	}
	if _, exists := clients[client.ID]; !exists {
		return
	}
	delete(clients, client.ID)
	if len(clients) == 0 {
		delete(h.boards, client.BoardID)
	}
	client.close()
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.quit)
}

// Publish sends an event to every client watching boardID. It never blocks the caller;
// events are dropped when the hub is backed up.
func (h *Hub) Publish(boardID uuid.UUID, eventType WebSocketMessageType, data interface{}) {
	payload, err := json.Marshal(WebSocketMessage{Type: eventType, Data: data})
	if err != nil {
		log.Println("failed to marshal board event:", err)
		return
	}
	select {
	case h.broadcast <- boardMessage{boardID: boardID, payload: payload}:
	default:
		log.Println("websocket hub backed up, dropping event:", eventType)
	}
}

func (h *Hub) SendMessage(client *Client, message []byte) {
	defer func() {
		// the hub may already have closed Send for a dropped client
		if recover() != nil {
			log.Println("websocket client gone:", client.ID)
		}
	}()
	select {
	case client.Send <- message:
	default:
	}
}

func sendTyped(hub *Hub, client *Client, msgType WebSocketMessageType, data interface{}) {
	resp, err := json.Marshal(WebSocketMessage{Type: msgType, Data: data})
	if err != nil {
		log.Println("failed to marshal websocket response:", err)
		return
	}
	hub.SendMessage(client, resp)
}

// SendErrorMessage sends a standardized error message to a client
func SendErrorMessage(hub *Hub, client *Client, errorMsg string) {
	sendTyped(hub, client, WebSocketMessageTypeError, &ErrorPayload{Message: errorMsg})
}

// parseWebSocketMessage parses an incoming frame. Clients only ever send control messages.
func parseWebSocketMessage(msg []byte) (*WebSocketMessage, error) {
	var rawMessage struct {
		Type WebSocketMessageType `json:"type"`
		Data json.RawMessage      `json:"data,omitempty"`
	}
	if err := json.Unmarshal(msg, &rawMessage); err != nil {
		return nil, err
	}
	return &WebSocketMessage{Type: rawMessage.Type}, nil
}

// handleClientMessage answers one frame read from client
func handleClientMessage(hub *Hub, client *Client, msg []byte) {
	message, err := parseWebSocketMessage(msg)
	if err != nil {
		SendErrorMessage(hub, client, "Invalid JSON format")
		return
	}
	switch message.Type {
	case WebSocketMessageTypePing:
		sendTyped(hub, client, WebSocketMessageTypePong, nil)
	default:
		SendErrorMessage(hub, client, "Type is invalid or not provided")
	}
}

// WebSocketHandler serves a connection that an upgrade guard has already authorized;
// the guard leaves the board and user ids in the connection locals.
func WebSocketHandler(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		boardID, _ := conn.Locals(LocalBoardID).(uuid.UUID)
		userID, _ := conn.Locals(LocalUserID).(uuid.UUID)
		client := NewClient(boardID, userID, conn)

		select {
		case hub.Register <- client:
		case <-hub.quit:
			return
		}

		// Write loop
		go func() {
			defer conn.Close()
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Println("write error:", err)
					return
				}
			}
		}()

		// Read loop
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			handleClientMessage(hub, client, msg)
		}

		select {
		case hub.Unregister <- client:
		case <-hub.quit:
		}
	})
}
