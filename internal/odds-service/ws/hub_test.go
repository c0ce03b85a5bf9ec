package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/pkg/contracts/events"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// roundTrip garante que as mensagens anteriores já foram processadas pelo hub
func roundTrip(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))
	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))
	require.Equal(t, "pong", pong["type"])
}

func TestHub_BroadcastOnlyToSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop(), func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)

	require.NoError(t, a.WriteJSON(ClientMsg{Type: "subscribe", GameID: "g1"}))
	roundTrip(t, a)
	require.NoError(t, b.WriteJSON(ClientMsg{Type: "subscribe", GameID: "g2"}))
	roundTrip(t, b)
	assert.Equal(t, 1, hub.Subscribers("g1"))

	hub.Broadcast(events.Broadcast{Type: "odds_moved", GameID: "g1", Data: map[string]int{"american_odds": -105}})

	var got events.Broadcast
	require.NoError(t, a.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, a.ReadJSON(&got))
	assert.Equal(t, "odds_moved", got.Type)
	assert.Equal(t, "g1", got.GameID)

	// b não recebe nada de g1
	require.NoError(t, b.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := b.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnsubscribeAndDisconnect(t *testing.T) {
	hub := NewHub(zap.NewNop(), func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	a := dial(t, srv)
	require.NoError(t, a.WriteJSON(ClientMsg{Type: "subscribe", GameID: "g1"}))
	require.NoError(t, a.WriteJSON(ClientMsg{Type: "subscribe", GameID: "g2"}))
	require.NoError(t, a.WriteJSON(ClientMsg{Type: "unsubscribe", GameID: "g1"}))
	roundTrip(t, a)
	assert.Equal(t, 0, hub.Subscribers("g1"))
	assert.Equal(t, 1, hub.Subscribers("g2"))

	require.NoError(t, a.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers("g2") == 0 }, 2*time.Second, 10*time.Millisecond)
}
