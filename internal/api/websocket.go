package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 100

	// MaxWSConnectionsPerPeer is the maximum WebSocket sessions per peer address
	MaxWSConnectionsPerPeer = 10

	// BroadcastInterval is the game:state push period (10 Hz)
	BroadcastInterval = 100 * time.Millisecond

	wsWriteWait      = 2 * time.Second
	wsMaxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Use the centralized origin checker
		if IsAllowedOrigin(origin) {
			return true
		}

		// Log rejected origin for security monitoring
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// clientMessage is a command sent by a WebSocket client.
//
//	{"type":"key","key":"w","down":true}
//	{"type":"levelup","index":0}
//	{"type":"restart"}
type clientMessage struct {
	Type  string `json:"type"`
	Key   string `json:"key,omitempty"`
	Down  bool   `json:"down,omitempty"`
	Index int    `json:"index,omitempty"`
}

// wsClient is a registered connection and the session that admitted it.
type wsClient struct {
	conn    *websocket.Conn
	session *Session
}

// WebSocketHub pushes game state to every client and feeds their input
// to the engine. Only Run writes to connections.
type WebSocketHub struct {
	engine     EngineInterface
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	sessions *SessionLimiter
	interval time.Duration
}

// NewWebSocketHub creates a new hub with connection limiting
func NewWebSocketHub(engine EngineInterface) *WebSocketHub {
	return &WebSocketHub{
		engine:     engine,
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		sessions:   NewSessionLimiter(MaxWSConnectionsPerPeer),
		interval:   BroadcastInterval,
	}
}

// Run starts the hub. It returns after Stop.
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client connected from %s (%d total)", client.session.Peer(), count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				client.session.Close()
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.send(message)
		}
	}
}

// send writes one message to every client and drops the ones that fail.
func (h *WebSocketHub) send(message []byte) {
	var failed []*websocket.Conn

	h.mu.RLock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			if client, ok := h.clients[conn]; ok {
				client.session.Close()
				delete(h.clients, conn)
			}
			conn.Close()
		}
		UpdateWSConnections(len(h.clients))
		h.mu.Unlock()
	}
	IncrementWSMessages()
}

func (h *WebSocketHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, client := range h.clients {
		client.session.Close()
		conn.Close()
		delete(h.clients, conn)
	}
	UpdateWSConnections(0)
}

// Stop ends Run and the broadcast loop and closes every connection.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// Broadcast sends a message to all connected clients
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure)
	}
}

// Stats returns session admission and input counters.
func (h *WebSocketHub) Stats() SessionStats {
	return h.sessions.Stats()
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes game:state every interval while clients are
// connected, and game:over once when a run ends.
func (h *WebSocketHub) StartBroadcastLoop() {
	ticker := time.NewTicker(h.interval)

	go func() {
		defer ticker.Stop()
		wasOver := false
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
			}

			if h.ClientCount() == 0 {
				continue
			}

			snap := h.engine.GetSnapshot()
			h.Broadcast("game:state", snap)

			if snap.GameOver && !wasOver {
				h.Broadcast("game:over", h.engine.GetStats().WorldStats)
			}
			wasOver = snap.GameOver
		}
	}()
}

// handleMessage applies one client command to the engine.
func (h *WebSocketHub) handleMessage(peer string, msg clientMessage) {
	switch msg.Type {
	case "key":
		key, ok := normalizeKey(msg.Key)
		if !ok {
			return
		}
		h.engine.HandleKey(key, msg.Down)
	case "levelup":
		h.engine.LevelUpSkill(msg.Index)
	case "restart":
		log.Printf("🔄 Restart requested over WebSocket from %s", peer)
		h.engine.Restart()
	default:
		return
	}
	IncrementWSInput()
}

// HandleWebSocket admits a session, upgrades it and reads its commands.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	peer := PeerAddr(r)

	if total := h.ClientCount(); total >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", total)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	session := h.sessions.Open(peer)
	if session == nil {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-peer limit reached", peer)
		RecordConnectionRejected("ws_peer_limit")
		http.Error(w, "Too many connections from your address", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		session.Close()
		return
	}
	conn.SetReadLimit(wsMaxMessageSize)

	select {
	case h.register <- &wsClient{conn: conn, session: session}:
	case <-h.done:
		session.Close()
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				break
			}

			if !session.AllowInput() {
				RecordConnectionRejected("ws_input")
				continue
			}

			var msg clientMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				continue
			}
			h.handleMessage(peer, msg)
		}
	}()
}
