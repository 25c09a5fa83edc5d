package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tinyracing/race-manager-go/log"
	"github.com/tinyracing/race-manager-go/pkg/simulation"
)

const (
	writeTimeout = 10 * time.Second
	pingPeriod   = 30 * time.Second
	pongTimeout  = 60 * time.Second
)

// Hub fans the per-tick race snapshot out to WebSocket viewers. Each
// subscriber owns a single-slot outbox: a viewer that cannot keep up
// with the tick rate skips frames and always gets the newest state,
// it never builds a backlog and never stalls the publisher.
type Hub struct {
	l        *log.Logger
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[*subscriber]struct{}

	latest atomic.Pointer[[]byte]
}

type subscriber struct {
	conn *websocket.Conn
	out  chan []byte
	once sync.Once
	done chan struct{}
}

type HubOption func(*Hub)

func WithLogger(l *log.Logger) HubOption {
	return func(h *Hub) { h.l = l }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		l: log.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Viewer clients connect from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: map[*subscriber]struct{}{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Publish encodes the snapshot once and offers it to every subscriber.
// Called from the scheduler goroutine every tick; it never blocks on a
// slow connection.
func (h *Hub) Publish(snap *simulation.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.l.Error("marshal snapshot", log.ErrorField(err))
		return
	}
	h.latest.Store(&data)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		sub.offer(data)
	}
}

// offer replaces whatever frame is pending with the new one.
func (s *subscriber) offer(data []byte) {
	for {
		select {
		case s.out <- data:
			return
		default:
			select {
			case <-s.out:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of connected viewers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Handler upgrades the request and streams snapshots until the client
// disconnects. The newest known snapshot is delivered first so a
// viewer joining mid-race renders immediately.
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Warn("websocket upgrade failed",
			log.String("remote", r.RemoteAddr), log.ErrorField(err))
		return
	}

	sub := &subscriber{
		conn: conn,
		out:  make(chan []byte, 1),
		done: make(chan struct{}),
	}
	if latest := h.latest.Load(); latest != nil {
		sub.offer(*latest)
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	h.l.Debug("viewer connected", log.String("remote", r.RemoteAddr))

	go h.writeLoop(sub)
	go h.readLoop(sub)
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	sub.once.Do(func() {
		close(sub.done)
		sub.conn.Close()
	})
}

func (h *Hub) writeLoop(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer h.remove(sub)

	for {
		select {
		case <-sub.done:
			return
		case data := <-sub.out:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are
// processed. The stream is one-way; inbound payloads are discarded.
func (h *Hub) readLoop(sub *subscriber) {
	defer h.remove(sub)

	_ = sub.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close disconnects every subscriber. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.subs = map[*subscriber]struct{}{}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() {
			close(sub.done)
			sub.conn.Close()
		})
	}
}
