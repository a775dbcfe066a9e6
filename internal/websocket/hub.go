package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dating-match-server/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TypingGuard decides whether from may signal typing to to.
type TypingGuard func(ctx context.Context, from, to uint) bool

type delivery struct {
	userID uint
	frame  []byte
}

// Hub tracks the live sessions of every connected user. All session
// bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[uint]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	online     chan onlineQuery
	done       chan struct{}
	guard      TypingGuard
	log        *logrus.Entry
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

type onlineQuery struct {
	userID uint
	reply  chan int
}

// typingFrame is sent by clients and relayed to the peer.
type typingFrame struct {
	Type     string `json:"type"`
	ToUserID uint   `json:"to_user_id,omitempty"`
	UserID   uint   `json:"user_id,omitempty"`
	IsTyping bool   `json:"is_typing"`
}

func NewHub(log *logrus.Entry, guard TypingGuard) *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, sendBuffer),
		online:     make(chan onlineQuery),
		done:       make(chan struct{}),
		guard:      guard,
		log:        log,
	}
}

// Run owns the session registry until ctx is done, then closes every
// session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, sessions := range h.clients {
				for client := range sessions {
					close(client.send)
				}
			}
			h.clients = map[uint]map[*Client]struct{}{}
			return

		case client := <-h.register:
			sessions, ok := h.clients[client.userID]
			if !ok {
				sessions = make(map[*Client]struct{})
				h.clients[client.userID] = sessions
			}
			sessions[client] = struct{}{}
			h.log.WithField("user_id", client.userID).Info("Client connected")

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.deliver:
			for client := range h.clients[d.userID] {
				select {
				case client.send <- d.frame:
				default:
					h.remove(client)
				}
			}

		case q := <-h.online:
			q.reply <- len(h.clients[q.userID])
		}
	}
}

func (h *Hub) remove(client *Client) {
	sessions, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := sessions[client]; !ok {
		return
	}
	delete(sessions, client)
	close(client.send)
	if len(sessions) == 0 {
		delete(h.clients, client.userID)
	}
	h.log.WithField("user_id", client.userID).Info("Client disconnected")
}

// Deliver queues a raw frame for every session of userID.
func (h *Hub) Deliver(userID uint, frame []byte) {
	select {
	case h.deliver <- delivery{userID: userID, frame: frame}:
	case <-h.done:
	}
}

// Publish writes ev to the user's live sessions. Users without a session
// are skipped silently.
func (h *Hub) Publish(ctx context.Context, userID uint, ev notify.Event) error {
	frame, err := notify.Encode(ev)
	if err != nil {
		return err
	}
	select {
	case h.deliver <- delivery{userID: userID, frame: frame}:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sessions returns the number of live sessions of userID.
func (h *Hub) Sessions(ctx context.Context, userID uint) int {
	q := onlineQuery{userID: userID, reply: make(chan int, 1)}
	select {
	case h.online <- q:
	case <-h.done:
		return 0
	case <-ctx.Done():
		return 0
	}
	select {
	case n := <-q.reply:
		return n
	case <-ctx.Done():
		return 0
	}
}

// HandleWebSocket upgrades an authenticated request and attaches the
// session to the hub.
func HandleWebSocket(hub *Hub, c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.WithError(err).Warn("WebSocket upgrade error")
		return
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID.(uint),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).WithField("user_id", c.userID).Warn("WebSocket error")
			}
			return
		}

		var in typingFrame
		if err := json.Unmarshal(raw, &in); err != nil {
			c.hub.log.WithError(err).Debug("Ignoring malformed frame")
			continue
		}

		switch in.Type {
		case "typing", "stop_typing":
			c.relayTyping(in)
		}
	}
}

func (c *Client) relayTyping(in typingFrame) {
	if in.ToUserID == 0 || in.ToUserID == c.userID {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if c.hub.guard != nil && !c.hub.guard(ctx, c.userID, in.ToUserID) {
		return
	}
	out, err := json.Marshal(typingFrame{
		Type:     "typing",
		UserID:   c.userID,
		IsTyping: in.Type == "typing",
	})
	if err != nil {
		return
	}
	c.hub.Deliver(in.ToUserID, out)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.WithError(err).WithField("user_id", c.userID).Warn("WebSocket write error")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
