package notify_sdk

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小
	maxMessageSize = 4096

	// 每个连接的下行缓冲，满了直接丢（客户端可以再走 HTTP 拉取补齐）
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for SDK
	},
}

// Client ws和hub的连接，一个用户可以同时有多个（多设备）
type Client struct {
	hub *WsServer

	conn *websocket.Conn

	// 下行缓冲区
	send chan []byte

	// UserID 和用户关联
	UserID string
}

// readPump 将消息从client (websocket 连接) 到hub管理。
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("ws read failed", zap.String("user_id", c.UserID), zap.Error(err))
			}
			break
		}
		c.hub.handleMessage(c, message)
	}
}

// writePump 将消息从hub管理写到具体的client (websocket 连接)。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
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
				return
			}

			// 管道里已积压的一并发出，每条仍是独立的 JSON 帧
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WsServer 在线连接表。只负责把站内刷新事件推给在线用户，不保证送达：
// 离线或缓冲满时丢弃，客户端以 HTTP 列表为准。
type WsServer struct {
	clients map[*Client]bool
	// 用户ID ->该用户所有活跃的Websocket连接（支持多设备）
	userClients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	// done 在 Run 退出时关闭
	done chan struct{}
	mu   sync.RWMutex
	// 回调处理上行消息
	onMessage func(client *Client, msg []byte)

	logger *zap.Logger
}

func NewWsServer(logger *zap.Logger) *WsServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WsServer{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		clients:     make(map[*Client]bool),
		userClients: make(map[string][]*Client),
		logger:      logger,
	}
}

// Run hub 主循环，ctx 取消后关闭所有连接并返回
func (h *WsServer) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.userClients = make(map[string][]*Client)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		}
	}
}

// remove 调用方持有 h.mu
func (h *WsServer) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	conns := h.userClients[client.UserID]
	for i, conn := range conns {
		if conn == client {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(h.userClients, client.UserID)
	} else {
		h.userClients[client.UserID] = conns
	}
}

func (h *WsServer) handleMessage(client *Client, msg []byte) {
	if h.onMessage != nil {
		h.onMessage(client, msg)
	}
}

func (h *WsServer) SetOnMessage(fn func(client *Client, msg []byte)) {
	h.onMessage = fn
}

// ServeWS 处理ws的请求，userID 由调用方鉴权后传入
func (h *WsServer) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		UserID: userID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"))
		_ = conn.Close()
		return
	}
	h.logger.Debug("ws client registered", zap.String("user_id", userID))

	go client.writePump()
	go client.readPump()
}

// SendToUser 推给用户的全部在线连接，返回实际入队的连接数
func (h *WsServer) SendToUser(userID string, msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, client := range h.userClients[userID] {
		select {
		case client.send <- msg:
			sent++
		default:
			// 丢弃避免阻塞
			h.logger.Warn("ws send buffer full, dropping frame", zap.String("user_id", userID))
		}
	}
	return sent
}

// Online 用户当前在线连接数
func (h *WsServer) Online(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID])
}
