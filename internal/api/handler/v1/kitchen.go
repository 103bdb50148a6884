package v1

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/RestVisor/restvisor-back/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

type feedClient struct {
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

// KitchenHandler fans order events out to every connected kitchen screen. The
// feed is one-way; inbound frames are drained and dropped.
type KitchenHandler struct {
	uSvc         UserService
	clients      map[uint]*feedClient
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *feedClient
	unregister   chan *feedClient
}

func NewKitchenHandler(uSvc UserService) *KitchenHandler {
	return &KitchenHandler{
		uSvc:       uSvc,
		clients:    make(map[uint]*feedClient),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
	}
}

func (h *KitchenHandler) Run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMutex.Lock()
			h.clients[client.userID] = client
			h.clientsMutex.Unlock()
		case client := <-h.unregister:
			h.clientsMutex.Lock()
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.clientsMutex.Unlock()
		case message := <-h.broadcast:
			h.clientsMutex.Lock()
			for _, client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client.userID)
				}
			}
			h.clientsMutex.Unlock()
		}
	}
}

// Publish pushes an event to every connected client. Safe to call from any
// goroutine; events queue while the hub loop is busy and are dropped only
// when the queue is full.
func (h *KitchenHandler) Publish(event domain.KitchenEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("kitchen feed marshal failed", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- message:
	default:
	}
}

// HandleFeed godoc
// @Summary      Subscribe to the kitchen event feed
// @Description  Establishes a WebSocket connection streaming order created, status changed and table settled events.
// @Tags         kitchen
// @Produce      json
// @Success      101  {string}  string  "Switching Protocols to WebSocket"
// @Failure      401  {object}  response.Err
// @Router       /kitchen/feed [get]
// @Security     BearerAuth
func (h *KitchenHandler) HandleFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("kitchen feed upgrade failed", zap.Error(err))
		return
	}

	user, respErr := getUserFromContext(c, h.uSvc)
	if respErr != nil {
		conn.Close()
		return
	}

	client := &feedClient{
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: user.ID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump(h)
}

func (c *feedClient) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *feedClient) readPump(h *KitchenHandler) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Warn("kitchen feed read failed", zap.Error(err))
			}
			break
		}
	}
}
