package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"inventory-live-view/internal/models"
)

// EventSubscriber connects to the central API's change feed over WebSocket
// and delivers events in arrival order. Reconnection after a dropped
// connection is the caller's responsibility; the session recovers from any
// gap with a full resynchronization.
type EventSubscriber struct {
	url    string
	apiKey string
	dialer *websocket.Dialer
}

// NewEventSubscriber creates a subscriber for the given ws:// or wss:// URL.
func NewEventSubscriber(url, apiKey string) *EventSubscriber {
	return &EventSubscriber{
		url:    url,
		apiKey: apiKey,
		dialer: websocket.DefaultDialer,
	}
}

// WSSubscription is the handle for one live feed connection. Unsubscribe
// closes the connection and stops the read loop; it is safe to call more
// than once.
type WSSubscription struct {
	conn *websocket.Conn
	once sync.Once
	done chan struct{}
}

// Unsubscribe cancels interest in the feed and releases the connection.
func (s *WSSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		if err := s.conn.Close(); err != nil {
			slog.Debug("Closing event feed connection", "error", err)
		}
	})
}

// Subscribe opens the feed and invokes onEvent for every change event until
// the connection drops or the returned handle is unsubscribed.
func (s *EventSubscriber) Subscribe(onEvent func(models.ChangeEvent)) (*WSSubscription, error) {
	header := http.Header{}
	if s.apiKey != "" {
		header.Set("X-API-Key", s.apiKey)
	}

	conn, _, err := s.dialer.Dial(s.url, header)
	if err != nil {
		return nil, fmt.Errorf("connecting to event feed %s: %w", s.url, err)
	}

	sub := &WSSubscription{
		conn: conn,
		done: make(chan struct{}),
	}

	go s.readLoop(sub, onEvent)

	slog.Info("Subscribed to change event feed", "url", s.url)
	return sub, nil
}

func (s *EventSubscriber) readLoop(sub *WSSubscription, onEvent func(models.ChangeEvent)) {
	for {
		var ev models.ChangeEvent
		if err := sub.conn.ReadJSON(&ev); err != nil {
			select {
			case <-sub.done:
				// Unsubscribed; the read error is the closed connection.
			default:
				slog.Warn("Event feed connection lost", "error", err)
			}
			return
		}

		if ev.TargetID() == "" {
			slog.Warn("Skipping change event without record id", "kind", ev.Kind)
			continue
		}
		onEvent(ev)
	}
}
