package libraries

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) WebSocketMessage {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message")
	}
	return WebSocketMessage{}
}

func TestHub_PublishIsScopedToBoard(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	boardA, boardB := uuid.New(), uuid.New()
	a1 := NewClient(boardA, uuid.New(), nil)
	a2 := NewClient(boardA, uuid.New(), nil)
	b1 := NewClient(boardB, uuid.New(), nil)
	for _, c := range []*Client{a1, a2, b1} {
		hub.Register <- c
	}

	hub.Publish(boardA, EventCardMoved, map[string]string{"card_id": "c1"})

	for _, c := range []*Client{a1, a2} {
		msg := receive(t, c)
		assert.Equal(t, EventCardMoved, msg.Type)
		assert.Equal(t, map[string]interface{}{"card_id": "c1"}, msg.Data)
	}
	select {
	case <-b1.Send:
		t.Fatal("client of another board received the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := NewClient(uuid.New(), uuid.New(), nil)
	hub.Register <- c
	hub.Unregister <- c
	hub.Unregister <- c

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHandleClientMessage(t *testing.T) {
	hub := NewHub()
	c := NewClient(uuid.New(), uuid.New(), nil)

	handleClientMessage(hub, c, []byte(`{"type":"ping"}`))
	assert.Equal(t, WebSocketMessageTypePong, receive(t, c).Type)

	handleClientMessage(hub, c, []byte(`not json`))
	msg := receive(t, c)
	assert.Equal(t, WebSocketMessageTypeError, msg.Type)
	assert.Equal(t, map[string]interface{}{"message": "Invalid JSON format"}, msg.Data)

	handleClientMessage(hub, c, []byte(`{"type":"card_moved"}`))
	assert.Equal(t, WebSocketMessageTypeError, receive(t, c).Type)
}
