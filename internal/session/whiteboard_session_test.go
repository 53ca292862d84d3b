package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixeltown/pixeltown-backend/internal/apperror"
)

func newTestWhiteboard(t *testing.T) (*WhiteboardSession, *fakeNotifier) {
	t.Helper()

	notifier := newFakeNotifier()

	return NewWhiteboardSession(discardLogger(), "town.board.1", notifier), notifier
}

func viewerIDs(snapshot WhiteboardSnapshot) []string {
	ids := make([]string, 0, len(snapshot.Viewers))
	for _, viewer := range snapshot.Viewers {
		ids = append(ids, viewer.ID)
	}

	return ids
}

func TestWhiteboardSession_Join(t *testing.T) {
	t.Run("First participant in becomes the drawer", func(t *testing.T) {
		// Given: an empty board
		board, notifier := newTestWhiteboard(t)

		// When: a participant joins
		board.Join(player("p1"))

		// Then: they hold the pen and everyone heard it
		snapshot := board.Snapshot()
		require.NotNil(t, snapshot.Drawer)
		assert.Equal(t, "p1", snapshot.Drawer.ID)
		assert.Empty(t, snapshot.Viewers)

		event, ok := notifier.lastBroadcast().(WhiteboardJoinEvent)
		require.True(t, ok)
		assert.True(t, event.IsDrawer)
	})

	t.Run("Later participants queue as viewers in join order", func(t *testing.T) {
		// Given: a board with a drawer
		board, notifier := newTestWhiteboard(t)
		board.Join(player("p1"))

		// When: two more participants join
		board.Join(player("p2"))
		board.Join(player("p3"))

		// Then: the queue preserves join order
		snapshot := board.Snapshot()
		assert.Equal(t, "p1", snapshot.Drawer.ID)
		assert.Equal(t, []string{"p2", "p3"}, viewerIDs(snapshot))

		event, ok := notifier.lastBroadcast().(WhiteboardJoinEvent)
		require.True(t, ok)
		assert.False(t, event.IsDrawer)
	})

	t.Run("A late joiner's event carries the existing scene", func(t *testing.T) {
		// Given: a board with drawn content
		board, notifier := newTestWhiteboard(t)
		board.Join(player("p1"))
		scene := json.RawMessage(`[{"type":"rect"}]`)
		require.NoError(t, board.ChangeScene(player("p1"), scene))

		// When: another participant joins
		board.Join(player("p2"))

		// Then: the join event includes the scene
		event, ok := notifier.lastBroadcast().(WhiteboardJoinEvent)
		require.True(t, ok)
		assert.Equal(t, scene, event.Elements)
	})
}

func TestWhiteboardSession_Leave(t *testing.T) {
	t.Run("A departing drawer hands the pen to the next viewer in line", func(t *testing.T) {
		// Given: a drawer and two queued viewers
		board, notifier := newTestWhiteboard(t)
		board.Join(player("p1"))
		board.Join(player("p2"))
		board.Join(player("p3"))

		// When: the drawer leaves
		require.NoError(t, board.Leave(player("p1")))

		// Then: the head of the queue is promoted
		snapshot := board.Snapshot()
		require.NotNil(t, snapshot.Drawer)
		assert.Equal(t, "p2", snapshot.Drawer.ID)
		assert.Equal(t, []string{"p3"}, viewerIDs(snapshot))

		// And: the promotion itself was announced
		event, ok := notifier.lastBroadcast().(WhiteboardDrawerEvent)
		require.True(t, ok)
		require.NotNil(t, event.Drawer)
		assert.Equal(t, "p2", event.Drawer.ID)
	})

	t.Run("A departing viewer leaves the drawer untouched", func(t *testing.T) {
		// Given: a drawer and two viewers
		board, _ := newTestWhiteboard(t)
		board.Join(player("p1"))
		board.Join(player("p2"))
		board.Join(player("p3"))

		// When: a viewer leaves
		require.NoError(t, board.Leave(player("p2")))

		// Then: drawer is unchanged and the queue closed the gap
		snapshot := board.Snapshot()
		assert.Equal(t, "p1", snapshot.Drawer.ID)
		assert.Equal(t, []string{"p3"}, viewerIDs(snapshot))
	})

	t.Run("The scene survives viewer churn and resets only when the room empties", func(t *testing.T) {
		// Given: a board with content and two participants
		board, _ := newTestWhiteboard(t)
		board.Join(player("p1"))
		board.Join(player("p2"))
		scene := json.RawMessage(`[{"type":"line"}]`)
		require.NoError(t, board.ChangeScene(player("p1"), scene))

		// When: the drawer leaves but a participant remains
		require.NoError(t, board.Leave(player("p1")))

		// Then: the scene is still there for the new drawer
		assert.Equal(t, scene, board.Snapshot().Elements)

		// When: the last participant leaves too
		require.NoError(t, board.Leave(player("p2")))

		// Then: the scene is gone
		assert.Nil(t, board.Snapshot().Elements)

		// And: the next joiner starts on a blank board
		board.Join(player("p3"))
		assert.Nil(t, board.Snapshot().Elements)
	})

	t.Run("Rejects a leave from someone who never joined", func(t *testing.T) {
		// Given: a board with one participant
		board, _ := newTestWhiteboard(t)
		board.Join(player("p1"))

		// When: a stranger leaves
		err := board.Leave(player("ghost"))

		// Then: it should fail
		assert.ErrorIs(t, err, apperror.ErrPlayerNotFound)
	})
}

func TestWhiteboardSession_ChangeScene(t *testing.T) {
	t.Run("The drawer's scene is stored and relayed to everyone else", func(t *testing.T) {
		// Given: a drawer and two viewers
		board, notifier := newTestWhiteboard(t)
		board.Join(player("p1"))
		board.Join(player("p2"))
		board.Join(player("p3"))

		// When: the drawer draws
		scene := json.RawMessage(`[{"type":"ellipse"}]`)
		require.NoError(t, board.ChangeScene(player("p1"), scene))

		// Then: the scene is stored
		assert.Equal(t, scene, board.Snapshot().Elements)

		// And: only the viewers got the relay
		assert.Equal(t, 0, notifier.unicastCount("p1"))
		assert.Equal(t, 1, notifier.unicastCount("p2"))
		assert.Equal(t, 1, notifier.unicastCount("p3"))

		event, ok := notifier.lastUnicast("p2").(WhiteboardSceneEvent)
		require.True(t, ok)
		assert.Equal(t, scene, event.Elements)
	})

	t.Run("Only the drawer may draw", func(t *testing.T) {
		// Given: a drawer and a viewer with prior content
		board, _ := newTestWhiteboard(t)
		board.Join(player("p1"))
		board.Join(player("p2"))
		scene := json.RawMessage(`[{"type":"rect"}]`)
		require.NoError(t, board.ChangeScene(player("p1"), scene))

		// When: the viewer tries to draw
		err := board.ChangeScene(player("p2"), json.RawMessage(`[]`))

		// Then: the attempt is rejected and the scene untouched
		assert.ErrorIs(t, err, apperror.ErrNotDrawer)
		assert.Equal(t, scene, board.Snapshot().Elements)
	})
}

func TestWhiteboardSession_ChangePointer(t *testing.T) {
	t.Run("Pointer updates reach everyone but the sender and are never stored", func(t *testing.T) {
		// Given: three participants
		board, notifier := newTestWhiteboard(t)
		board.Join(player("p1"))
		board.Join(player("p2"))
		board.Join(player("p3"))

		// When: a viewer moves their cursor
		payload := json.RawMessage(`{"x":10,"y":20}`)
		board.ChangePointer(player("p2"), payload)

		// Then: the other two got the relay, the sender did not
		assert.Equal(t, 1, notifier.unicastCount("p1"))
		assert.Equal(t, 0, notifier.unicastCount("p2"))
		assert.Equal(t, 1, notifier.unicastCount("p3"))

		event, ok := notifier.lastUnicast("p3").(WhiteboardPointerEvent)
		require.True(t, ok)
		assert.Equal(t, "p2", event.Player.ID)
		assert.Equal(t, payload, event.Payload)

		// And: nothing about the board changed
		assert.Nil(t, board.Snapshot().Elements)
	})
}

func TestWhiteboardSession_ChangeDrawer(t *testing.T) {
	t.Run("Promoting a viewer demotes the old drawer to the end of the queue", func(t *testing.T) {
		// Given: a drawer and two viewers
		board, notifier := newTestWhiteboard(t)
		board.Join(player("p1"))
		board.Join(player("p2"))
		board.Join(player("p3"))

		// When: p3 is handed the pen
		board.ChangeDrawer(player("p1"), "p3")

		// Then: p3 draws and p1 waits behind p2
		snapshot := board.Snapshot()
		require.NotNil(t, snapshot.Drawer)
		assert.Equal(t, "p3", snapshot.Drawer.ID)
		assert.Equal(t, []string{"p2", "p1"}, viewerIDs(snapshot))

		event, ok := notifier.lastBroadcast().(WhiteboardDrawerEvent)
		require.True(t, ok)
		assert.Equal(t, EventWhiteboardDrawer, event.Type)
	})

	t.Run("Handing the pen to the current drawer is a no-op", func(t *testing.T) {
		// Given: a drawer and a viewer
		board, notifier := newTestWhiteboard(t)
		board.Join(player("p1"))
		board.Join(player("p2"))
		before := notifier.broadcastCount()

		// When: the drawer is targeted
		board.ChangeDrawer(player("p2"), "p1")

		// Then: nothing changes and nothing is announced
		assert.Equal(t, "p1", board.Snapshot().Drawer.ID)
		assert.Equal(t, before, notifier.broadcastCount())
	})

	t.Run("Targeting someone who is not a viewer is a no-op", func(t *testing.T) {
		// Given: a drawer and a viewer
		board, _ := newTestWhiteboard(t)
		board.Join(player("p1"))
		board.Join(player("p2"))

		// When: a stranger is targeted
		board.ChangeDrawer(player("p1"), "ghost")

		// Then: the board is unchanged
		snapshot := board.Snapshot()
		assert.Equal(t, "p1", snapshot.Drawer.ID)
		assert.Equal(t, []string{"p2"}, viewerIDs(snapshot))
	})
}

func TestWhiteboardSession_ClearDrawer(t *testing.T) {
	t.Run("Clearing demotes the drawer into the viewer queue", func(t *testing.T) {
		// Given: a drawer and a viewer
		board, notifier := newTestWhiteboard(t)
		board.Join(player("p1"))
		board.Join(player("p2"))

		// When: the pen is taken away
		board.ClearDrawer()

		// Then: nobody draws and the old drawer queues last
		snapshot := board.Snapshot()
		assert.Nil(t, snapshot.Drawer)
		assert.Equal(t, []string{"p2", "p1"}, viewerIDs(snapshot))

		event, ok := notifier.lastBroadcast().(WhiteboardDrawerEvent)
		require.True(t, ok)
		assert.Equal(t, EventWhiteboardCleared, event.Type)
		assert.Nil(t, event.Drawer)
	})

	t.Run("Clearing with no drawer is a no-op", func(t *testing.T) {
		// Given: an empty board
		board, notifier := newTestWhiteboard(t)

		// When: the pen is taken away
		board.ClearDrawer()

		// Then: nothing happened
		assert.Equal(t, 0, notifier.broadcastCount())
	})
}

func TestWhiteboardSession_Handle(t *testing.T) {
	t.Run("Dispatches commands by kind", func(t *testing.T) {
		// Given: an empty board
		board, _ := newTestWhiteboard(t)

		// When: join and scene commands arrive through the dispatcher
		require.NoError(t, board.Handle(WhiteboardCommand{Kind: WhiteboardJoin}, player("p1")))
		scene := json.RawMessage(`[{"type":"arrow"}]`)
		require.NoError(t, board.Handle(WhiteboardCommand{Kind: WhiteboardSceneChange, Elements: scene}, player("p1")))

		// Then: the board reflects both
		snapshot := board.Snapshot()
		assert.Equal(t, "p1", snapshot.Drawer.ID)
		assert.Equal(t, scene, snapshot.Elements)
	})

	t.Run("Rejects unknown command kinds", func(t *testing.T) {
		// Given: any board
		board, _ := newTestWhiteboard(t)

		// When/Then: an unrecognized kind fails
		err := board.Handle(WhiteboardCommand{Kind: "Scribble"}, player("p1"))
		assert.ErrorIs(t, err, apperror.ErrInvalidCommand)
	})
}
