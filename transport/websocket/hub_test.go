package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixeltown/pixeltown-backend/internal/entity"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(playerID, roomID string) *client {
	return &client{
		player: entity.Player{ID: playerID, DisplayName: playerID},
		roomID: roomID,
		send:   make(chan []byte, sendBufferSize),
	}
}

func drain(c *client) [][]byte {
	var messages [][]byte
	for {
		select {
		case data := <-c.send:
			messages = append(messages, data)
		default:
			return messages
		}
	}
}

func TestHub_Broadcast(t *testing.T) {
	t.Run("Reaches every client in the room and nobody outside it", func(t *testing.T) {
		// Given: two clients in one room and one in another
		hub := newTestHub()
		p1 := newTestClient("p1", "town.plaza")
		p2 := newTestClient("p2", "town.plaza")
		p3 := newTestClient("p3", "town.cafe")
		hub.register(p1)
		hub.register(p2)
		hub.register(p3)

		// When: broadcasting to the first room
		hub.Broadcast("town.plaza", Message{Action: "game:update"})

		// Then: only that room's clients got the event
		assert.Len(t, drain(p1), 1)
		assert.Len(t, drain(p2), 1)
		assert.Empty(t, drain(p3))
	})

	t.Run("Drops the event for a client with a full queue", func(t *testing.T) {
		// Given: a client whose queue is already full
		hub := newTestHub()
		full := newTestClient("p1", "town.plaza")
		for i := 0; i < sendBufferSize; i++ {
			full.send <- []byte("{}")
		}
		hub.register(full)

		// When/Then: broadcasting does not block
		hub.Broadcast("town.plaza", Message{Action: "game:update"})
		assert.Len(t, drain(full), sendBufferSize)
	})
}

func TestHub_Unicast(t *testing.T) {
	t.Run("Reaches exactly the addressed client", func(t *testing.T) {
		// Given: two registered clients
		hub := newTestHub()
		p1 := newTestClient("p1", "town.plaza")
		p2 := newTestClient("p2", "town.plaza")
		hub.register(p1)
		hub.register(p2)

		// When: unicasting to p1
		hub.Unicast("p1", Message{Action: "game:update"})

		// Then: only p1 received it, as valid JSON
		messages := drain(p1)
		require.Len(t, messages, 1)
		assert.Empty(t, drain(p2))

		var decoded Message
		require.NoError(t, json.Unmarshal(messages[0], &decoded))
		assert.Equal(t, "game:update", decoded.Action)
	})

	t.Run("An unknown participant is a no-op", func(t *testing.T) {
		// Given: an empty hub
		hub := newTestHub()

		// When/Then: unicasting to nobody does not panic
		hub.Unicast("ghost", Message{Action: "game:update"})
	})
}

func TestHub_Unregister(t *testing.T) {
	t.Run("Removes the client and closes its queue", func(t *testing.T) {
		// Given: a registered client
		hub := newTestHub()
		c := newTestClient("p1", "town.plaza")
		hub.register(c)

		// When: it unregisters
		hub.unregister(c)

		// Then: later traffic no longer reaches it and its queue is closed
		hub.Broadcast("town.plaza", Message{Action: "game:update"})
		_, open := <-c.send
		assert.False(t, open)
	})

	t.Run("A stale connection cannot evict its replacement", func(t *testing.T) {
		// Given: a client that reconnected under the same participant ID
		hub := newTestHub()
		stale := newTestClient("p1", "town.plaza")
		hub.register(stale)

		fresh := newTestClient("p1", "town.plaza")
		hub.register(fresh)

		// When: the stale connection's teardown runs
		hub.unregister(stale)

		// Then: the fresh connection still receives traffic
		hub.Unicast("p1", Message{Action: "game:update"})
		assert.Len(t, drain(fresh), 1)
	})
}

func TestMessage_Decode(t *testing.T) {
	t.Run("Decodes a game move envelope", func(t *testing.T) {
		// Given: a raw wire message
		raw := []byte(`{"action":"game:move","payload":{"instance_id":"abc","guess_word":"apple"}}`)

		// When: decoding the envelope and its payload
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))

		var payload GamePayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))

		// Then: both layers decoded
		assert.Equal(t, "game:move", msg.Action)
		assert.Equal(t, "abc", payload.InstanceID)
		assert.Equal(t, "apple", payload.GuessWord)
	})

	t.Run("Decodes a whiteboard scene envelope with an opaque payload", func(t *testing.T) {
		// Given: a raw wire message with arbitrary scene content
		raw := []byte(`{"action":"whiteboard:scene","payload":{"elements":[{"type":"rect","w":5}]}}`)

		// When: decoding
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))

		var payload WhiteboardPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))

		// Then: the scene survives verbatim
		assert.Equal(t, "whiteboard:scene", msg.Action)
		assert.JSONEq(t, `[{"type":"rect","w":5}]`, string(payload.Elements))
	})
}
