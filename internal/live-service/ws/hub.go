package ws

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/shared/metrics"
	"github.com/radieske/match-bid-platform/pkg/contracts/events"
)

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMsgSize = 4096
)

// client: uma goroutine escreve na conexão; as demais só enfileiram em send.
// send nunca é fechado (Broadcast pode enfileirar após a desconexão); done encerra o writer.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub gerencia conexões WebSocket e assinaturas de canais
// subs: mapeia canal para o conjunto de clientes inscritos
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	metrics  *metrics.LiveMetrics

	mu   sync.RWMutex
	subs map[string]map[*client]struct{}
}

// NewHub cria o Hub com política de origem customizada (CORS)
func NewHub(allowOrigin func(r *http.Request) bool, m *metrics.LiveMetrics, log *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		metrics:  m,
		subs:     make(map[string]map[*client]struct{}),
	}
}

// ValidChannel aceita "leaderboard" e "match:{id}" com id positivo
func ValidChannel(ch string) bool {
	if ch == events.LeaderboardChannel {
		return true
	}
	id, ok := strings.CutPrefix(ch, "match:")
	if !ok {
		return false
	}
	n, err := strconv.ParseInt(id, 10, 64)
	return err == nil && n > 0
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket.
// Cada cliente pode assinar vários canais.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newClient(conn)
	if h.metrics != nil {
		h.metrics.Connections.Inc()
	}
	go h.writePump(c)

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		h.handle(c, msg)
	}

	// remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for ch, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, ch)
		}
	}
	h.mu.Unlock()
	c.close()
	if h.metrics != nil {
		h.metrics.Connections.Dec()
	}
}

func (h *Hub) handle(c *client, msg ClientMsg) {
	switch msg.Type {
	case "subscribe":
		if !ValidChannel(msg.Channel) {
			h.reply(c, ControlMsg{Type: "error", Channel: msg.Channel, Error: "invalid channel"})
			return
		}
		h.mu.Lock()
		if _, ok := h.subs[msg.Channel]; !ok {
			h.subs[msg.Channel] = make(map[*client]struct{})
		}
		h.subs[msg.Channel][c] = struct{}{}
		h.mu.Unlock()
		h.reply(c, ControlMsg{Type: "subscribed", Channel: msg.Channel})
	case "unsubscribe":
		h.mu.Lock()
		if set, ok := h.subs[msg.Channel]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.subs, msg.Channel)
			}
		}
		h.mu.Unlock()
		h.reply(c, ControlMsg{Type: "unsubscribed", Channel: msg.Channel})
	case "ping":
		h.reply(c, ControlMsg{Type: "pong"})
	default:
		h.reply(c, ControlMsg{Type: "error", Error: "unknown message type"})
	}
}

func (h *Hub) reply(c *client, m ControlMsg) {
	b, _ := json.Marshal(m)
	h.enqueue(c, b)
}

// enqueue nunca bloqueia: cliente lento perde a mensagem
func (h *Hub) enqueue(c *client, b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		if h.metrics != nil {
			h.metrics.Dropped.Inc()
		}
		return false
	}
}

// Broadcast envia o update para todos os clientes inscritos no canal
func (h *Hub) Broadcast(u events.LiveUpdate) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[u.Channel]))
	for c := range h.subs[u.Channel] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, err := json.Marshal(u)
	if err != nil {
		h.log.Warn("live update marshal failed", zap.Error(err))
		return
	}
	delivered := 0
	for _, c := range targets {
		if h.enqueue(c, b) {
			delivered++
		}
	}
	if h.metrics != nil {
		h.metrics.Broadcasts.WithLabelValues(u.Type).Add(float64(delivered))
	}
}

// Subscribers conta os clientes inscritos no canal
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[channel])
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
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

// AllowOrigins libera o upgrade apenas para as origens configuradas.
// Clientes sem header Origin (não browser) são aceitos; "*" libera tudo.
func AllowOrigins(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed["*"]; ok {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
