package realtime

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/carehub/storefront/pkg/logger"
	"github.com/carehub/storefront/pkg/metrics"
)

// Message represents a JSON payload delivered to stream subscribers.
type Message struct {
	Stream string `json:"stream"`
	Event  string `json:"event"`
	Data   any    `json:"data,omitempty"`
}

// HubOption customises a Hub.
type HubOption func(*Hub)

// WithAllowedOrigins accepts browser connections from the listed origins in
// addition to same-host and loopback pages. "*" accepts any origin.
func WithAllowedOrigins(origins []string) HubOption {
	return func(h *Hub) {
		for _, origin := range origins {
			origin = strings.TrimRight(strings.TrimSpace(origin), "/")
			switch origin {
			case "":
			case "*":
				h.anyOrigin = true
			default:
				h.origins[strings.ToLower(origin)] = struct{}{}
			}
		}
	}
}

// Hub fans stream messages out to connected WebSocket clients. Subscribers
// that fall behind are disconnected rather than slowing broadcasters.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	streams map[string]map[*client]struct{}
	closed  bool

	origins   map[string]struct{}
	anyOrigin bool
	upgrader  websocket.Upgrader
	log       *zap.Logger
}

// NewHub constructs a realtime hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		streams: make(map[string]map[*client]struct{}),
		origins: make(map[string]struct{}),
		log:     logger.WithModule("realtime"),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.originAllowed,
	}
	return h
}

// SnapshotFunc builds the messages a client receives before any broadcast.
type SnapshotFunc func() []Message

// Serve upgrades the HTTP connection and subscribes the client to streams.
// snapshot, when set, is evaluated while the client joins, so no broadcast
// can fall between the snapshot and the subscription. Serve blocks until the
// client disconnects or the hub closes.
func (h *Hub) Serve(streams []string, w http.ResponseWriter, r *http.Request, snapshot SnapshotFunc) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "realtime hub closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	c := newClient(h, conn)
	if !h.join(c, streams, snapshot) {
		c.close()
		return
	}

	metrics.RealtimeClients.Inc()
	defer metrics.RealtimeClients.Dec()

	go c.writeLoop()
	c.readLoop()
}

// Broadcast delivers a message to every subscriber of the stream.
func (h *Hub) Broadcast(stream string, message Message) {
	stream = normalizeStream(stream)
	if stream == "" {
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.streams[stream]))
	for c := range h.streams[stream] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	message.Stream = stream
	for _, c := range targets {
		c.enqueue(message)
	}
}

// Subscribers reports how many clients listen on a stream.
func (h *Hub) Subscribers(stream string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[normalizeStream(stream)])
}

// Close disconnects every client and refuses new ones. It is idempotent.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	connected := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		connected = append(connected, c)
	}
	h.mu.Unlock()

	for _, c := range connected {
		c.close()
	}
}

// join registers a new client and queues its snapshot; it fails once the hub
// is closed. Broadcast reads subscribers under the same lock, so every change
// after the snapshot reaches the client.
func (h *Hub) join(c *client, streams []string, snapshot SnapshotFunc) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if snapshot != nil {
		for _, message := range snapshot() {
			select {
			case c.send <- message:
			default:
				h.log.Warn("snapshot exceeds send buffer", zap.String("stream", message.Stream))
			}
		}
	}
	h.clients[c] = struct{}{}
	h.subscribeLocked(c, streams)
	return true
}

func (h *Hub) subscribe(c *client, streams []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.subscribeLocked(c, streams)
	}
}

func (h *Hub) subscribeLocked(c *client, streams []string) {
	for _, stream := range uniqueStreams(streams) {
		if !IsKnownStream(stream) {
			h.log.Debug("ignoring unknown stream", zap.String("stream", stream))
			continue
		}
		if h.streams[stream] == nil {
			h.streams[stream] = make(map[*client]struct{})
		}
		h.streams[stream][c] = struct{}{}
		c.streams[stream] = struct{}{}
	}
}

func (h *Hub) unsubscribe(c *client, streams []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, stream := range uniqueStreams(streams) {
		h.dropLocked(c, stream)
	}
}

// leave forgets a disconnected client entirely.
func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for stream := range c.streams {
		h.dropLocked(c, stream)
	}
	delete(h.clients, c)
}

func (h *Hub) dropLocked(c *client, stream string) {
	if clients, ok := h.streams[stream]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.streams, stream)
		}
	}
	delete(c.streams, stream)
}

func (h *Hub) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.anyOrigin {
		return true
	}
	if _, ok := h.origins[strings.ToLower(strings.TrimRight(origin, "/"))]; ok {
		return true
	}
	host := hostOf(origin)
	return host == hostOf(r.Host) || isLoopback(host)
}

// hostOf strips scheme and port from an origin or Host header value.
func hostOf(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.Contains(value, "://") {
		if u, err := url.Parse(value); err == nil {
			return u.Hostname()
		}
	}
	if host, _, err := net.SplitHostPort(value); err == nil {
		return host
	}
	return value
}

func isLoopback(host string) bool {
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}

func normalizeStream(stream string) string {
	return strings.ToLower(strings.TrimSpace(stream))
}

func uniqueStreams(streams []string) []string {
	seen := make(map[string]struct{}, len(streams))
	out := make([]string, 0, len(streams))
	for _, stream := range streams {
		stream = normalizeStream(stream)
		if stream == "" {
			continue
		}
		if _, dup := seen[stream]; dup {
			continue
		}
		seen[stream] = struct{}{}
		out = append(out, stream)
	}
	return out
}
