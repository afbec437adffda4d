package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kayushan/JSTREAM/internal/testutil"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(testutil.NopLogger())
	go hub.Run()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return hub.Serve(c, c.QueryParam("user"))
	})
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	return hub, server
}

func dial(t *testing.T, server *httptest.Server, userID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?user=" + userID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d clients", want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestPublishReachesOwner(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, server, "alice")
	waitForClients(t, hub, 1)

	require.NoError(t, hub.Publish("alice", EventFavoriteAdded, map[string]interface{}{
		"tmdb_id": 550,
	}))

	msg := readMessage(t, conn)
	assert.Equal(t, EventFavoriteAdded, msg.Type)
	assert.NotEmpty(t, msg.Timestamp)

	payload, ok := msg.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(550), payload["tmdb_id"])
}

func TestPublishScopedToUser(t *testing.T) {
	hub, server := startHub(t)
	alice := dial(t, server, "alice")
	bob := dial(t, server, "bob")
	waitForClients(t, hub, 2)

	require.NoError(t, hub.Publish("alice", EventProgressUpdated, nil))
	// Bob should only ever see events published for him.
	require.NoError(t, hub.Publish("bob", EventFavoriteRemoved, nil))

	assert.Equal(t, EventProgressUpdated, readMessage(t, alice).Type)
	assert.Equal(t, EventFavoriteRemoved, readMessage(t, bob).Type)

	bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's events")
}

func TestMultipleConnectionsPerUser(t *testing.T) {
	hub, server := startHub(t)
	tab1 := dial(t, server, "alice")
	tab2 := dial(t, server, "alice")
	waitForClients(t, hub, 2)

	require.NoError(t, hub.Publish("alice", EventFavoriteAdded, nil))

	assert.Equal(t, EventFavoriteAdded, readMessage(t, tab1).Type)
	assert.Equal(t, EventFavoriteAdded, readMessage(t, tab2).Type)
}

func TestClientCountDropsOnDisconnect(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, server, "alice")
	waitForClients(t, hub, 1)

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for client to unregister")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishHTTPUpgradeRequired(t *testing.T) {
	_, server := startHub(t)

	resp, err := http.Get(server.URL + "/ws?user=alice")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
