package board

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-reservation/services"
)

func newBoardServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func TestHubBroadcastsReservationCreated(t *testing.T) {
	hub := NewHub()
	srv := newBoardServer(t, hub)
	a := dial(t, srv)
	b := dial(t, srv)
	waitForClients(t, hub, 2)

	ev := services.ReservationCreatedEvent{ReservationID: 9, TableID: 3, Date: "2024-06-01", Time: "18:00", PartySize: 4}
	require.NoError(t, hub.PublishReservationCreated(context.Background(), ev))

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var got struct {
			Event string                           `json:"event"`
			Data  services.ReservationCreatedEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, services.EventReservationCreated, got.Event)
		assert.Equal(t, ev, got.Data)
	}
}

func TestHubUnregisterOnDisconnect(t *testing.T) {
	hub := NewHub()
	srv := newBoardServer(t, hub)
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	_ = conn.Close()
	waitForClients(t, hub, 0)

	assert.NoError(t, hub.Broadcast(Message{Event: "noop"}))
}
