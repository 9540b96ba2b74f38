package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/carehub/storefront/internal/toast"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubForwardsToastEvents(t *testing.T) {
	hub := NewHub()
	queue := toast.NewQueue()
	t.Cleanup(queue.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ForwardToasts(ctx, queue, hub)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve([]string{StreamToasts}, w, r, func() []Message { return []Message{ToastSnapshot(queue.List())} })
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	conn := dial(t, srv)

	snapshot := readMessage(t, conn)
	require.Equal(t, "toast.snapshot", snapshot.Event)
	require.Equal(t, StreamToasts, snapshot.Stream)

	require.Eventually(t, func() bool { return hub.Subscribers(StreamToasts) == 1 }, time.Second, 10*time.Millisecond)

	queue.Enqueue(toast.Descriptor{Title: "Added to cart", DurationMs: 60_000})

	added := readMessage(t, conn)
	require.Equal(t, string(toast.EventAdded), added.Event)
	data, ok := added.Data.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 1, data["size"])
}

func TestHubIgnoresUnknownStreams(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve([]string{"bogus", " Catalog "}, w, r, nil)
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	dial(t, srv)

	require.Eventually(t, func() bool { return hub.Subscribers(StreamCatalog) == 1 }, time.Second, 10*time.Millisecond)
	require.Zero(t, hub.Subscribers("bogus"))
}

func TestHubControlMessages(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(nil, w, r, nil)
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(controlMessage{Action: "subscribe", Streams: []string{StreamCatalog}}))
	require.Eventually(t, func() bool { return hub.Subscribers(StreamCatalog) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(controlMessage{Action: "ping"}))
	require.Equal(t, "pong", readMessage(t, conn).Event)

	hub.Broadcast(StreamCatalog, Message{Event: "catalog.reloaded"})
	msg := readMessage(t, conn)
	require.Equal(t, "catalog.reloaded", msg.Event)
	require.Equal(t, StreamCatalog, msg.Stream)

	require.NoError(t, conn.WriteJSON(controlMessage{Action: "unsubscribe", Streams: []string{StreamCatalog}}))
	require.Eventually(t, func() bool { return hub.Subscribers(StreamCatalog) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubCloseDisconnectsAndRefuses(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(nil, w, r, nil)
	}))
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(controlMessage{Action: "ping"}))
	require.Equal(t, "pong", readMessage(t, conn).Event)

	hub.Close()
	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestOriginAllowed(t *testing.T) {
	request := func(host, origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Host = host
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	hub := NewHub(WithAllowedOrigins([]string{"https://shop.example.com/", " "}))
	require.True(t, hub.originAllowed(request("api.example.com", "")))
	require.True(t, hub.originAllowed(request("api.example.com", "https://shop.example.com")))
	require.True(t, hub.originAllowed(request("api.example.com:5000", "https://api.example.com")))
	require.True(t, hub.originAllowed(request("api.example.com", "http://localhost:3000")))
	require.False(t, hub.originAllowed(request("api.example.com", "https://evil.example.net")))

	open := NewHub(WithAllowedOrigins([]string{"*"}))
	require.True(t, open.originAllowed(request("api.example.com", "https://evil.example.net")))
}

func TestHostOf(t *testing.T) {
	require.Equal(t, "localhost", hostOf("http://localhost:3000"))
	require.Equal(t, "example.com", hostOf("example.com:443"))
	require.Equal(t, "::1", hostOf("http://[::1]:5000"))
	require.Equal(t, "", hostOf("  "))
	require.True(t, isLoopback("127.0.0.1"))
	require.True(t, isLoopback("LOCALHOST"))
	require.False(t, isLoopback("example.com"))
}

func TestHubDeliversBroadcastRacingTheSnapshot(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve([]string{StreamToasts}, w, r, func() []Message {
			started := make(chan struct{})
			go func() {
				close(started)
				hub.Broadcast(StreamToasts, Message{Event: string(toast.EventAdded)})
			}()
			<-started
			return []Message{ToastSnapshot(nil)}
		})
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	conn := dial(t, srv)

	require.Equal(t, "toast.snapshot", readMessage(t, conn).Event)
	require.Equal(t, string(toast.EventAdded), readMessage(t, conn).Event)
}
