package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const streamWriteTimeout = 10 * time.Second

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return c.conn.WriteJSON(payload)
}

// StreamHub keeps track of open recommendation websockets.
type StreamHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewStreamHub constructs an empty hub.
func NewStreamHub() *StreamHub {
	return &StreamHub{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and returns a client handle.
func (h *StreamHub) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	return client
}

// Unregister removes the client and closes its socket.
func (h *StreamHub) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
	_ = client.conn.Close()
}

// Count returns the number of open connections.
func (h *StreamHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll closes every open connection.
func (h *StreamHub) CloseAll() {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		client.mu.Lock()
		_ = client.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		client.mu.Unlock()
		_ = client.conn.Close()
	}
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				return true
			}
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}
}

// handleRecommendStream answers every JSON request read from the socket with
// one RecommendResponse, or an ErrorResponse when the message is rejected.
// Messages are independent of each other.
func (s *Server) handleRecommendStream(c *gin.Context) {
	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.streams.Register(conn)
	remote := conn.RemoteAddr().String()
	logrus.WithField("remote", remote).Info("recommendation websocket connected")
	defer s.streams.Unregister(client)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", remote).Info("recommendation websocket closed")
			} else {
				logrus.WithError(err).Warn("recommendation websocket unexpected close")
			}
			return
		}

		var reply interface{}
		var req RecommendRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			reply = ErrorResponse{Error: "invalid request: " + err.Error()}
		} else if resp, err := s.recommend(req); err != nil {
			reply = ErrorResponse{Error: err.Error(), RequestID: resp.RequestID}
		} else {
			reply = resp
		}

		if err := client.writeJSON(reply); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				logrus.WithError(err).WithField("remote", remote).Warn("write recommendation")
			}
			return
		}
	}
}
