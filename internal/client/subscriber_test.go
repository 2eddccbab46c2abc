package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-live-view/internal/models"
)

// feedServer upgrades connections and pushes the given events to every
// subscriber.
func feedServer(t *testing.T, events []models.ChangeEvent) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for _, ev := range events {
			require.NoError(t, conn.WriteJSON(ev))
		}

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestSubscribe_DeliversEventsInOrder(t *testing.T) {
	rec := models.InventoryRecord{ID: "1", CurrentStock: 5}
	events := []models.ChangeEvent{
		{Kind: models.EventInsert, Record: &rec},
		{Kind: models.EventDelete, RecordID: "2"},
	}
	server := feedServer(t, events)
	defer server.Close()

	var mu sync.Mutex
	var received []models.ChangeEvent

	sub, err := NewEventSubscriber(wsURL(server), "secret").Subscribe(func(ev models.ChangeEvent) {
		mu.Lock()
		received = append(received, ev)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, models.EventInsert, received[0].Kind)
	assert.Equal(t, "1", received[0].TargetID())
	assert.Equal(t, models.EventDelete, received[1].Kind)
	assert.Equal(t, "2", received[1].TargetID())
}

func TestSubscribe_SkipsEventsWithoutRecordID(t *testing.T) {
	rec := models.InventoryRecord{ID: "1", CurrentStock: 5}
	events := []models.ChangeEvent{
		{Kind: models.EventInsert}, // no id, skipped
		{Kind: models.EventInsert, Record: &rec},
	}
	server := feedServer(t, events)
	defer server.Close()

	var mu sync.Mutex
	var received []models.ChangeEvent

	sub, err := NewEventSubscriber(wsURL(server), "secret").Subscribe(func(ev models.ChangeEvent) {
		mu.Lock()
		received = append(received, ev)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "1", received[0].TargetID())
}

func TestSubscribe_DialFailure(t *testing.T) {
	_, err := NewEventSubscriber("ws://127.0.0.1:1/feed", "secret").Subscribe(func(models.ChangeEvent) {})

	assert.Error(t, err)
}

func TestUnsubscribe_IsIdempotent(t *testing.T) {
	server := feedServer(t, nil)
	defer server.Close()

	sub, err := NewEventSubscriber(wsURL(server), "secret").Subscribe(func(models.ChangeEvent) {})
	require.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe()
}
