package session

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pixeltown/pixeltown-backend/internal/apperror"
	"github.com/pixeltown/pixeltown-backend/internal/entity"
)

type WhiteboardCommandKind string

const (
	WhiteboardJoin          WhiteboardCommandKind = "Join"
	WhiteboardLeave         WhiteboardCommandKind = "Leave"
	WhiteboardSceneChange   WhiteboardCommandKind = "SceneChange"
	WhiteboardPointerChange WhiteboardCommandKind = "PointerChange"
	WhiteboardDrawerChange  WhiteboardCommandKind = "DrawerChange"
	WhiteboardClearDrawer   WhiteboardCommandKind = "ClearDrawer"
)

// WhiteboardCommand - one client request routed to a whiteboard session.
type WhiteboardCommand struct {
	Kind     WhiteboardCommandKind
	Elements json.RawMessage
	Payload  json.RawMessage
	TargetID string
}

// WhiteboardSnapshot - read-only projection of the whiteboard state.
type WhiteboardSnapshot struct {
	Drawer   *entity.Player  `json:"drawer,omitempty"`
	Viewers  []entity.Player `json:"viewers"`
	Elements json.RawMessage `json:"elements,omitempty"`
}

// WhiteboardSession owns one shared drawing surface: at most one drawer,
// an ordered FIFO queue of viewers waiting for promotion, and the
// last-known scene. The scene payload is an opaque blob relayed verbatim;
// the session never inspects it.
type WhiteboardSession struct {
	mu sync.Mutex

	logger   *slog.Logger
	roomID   string
	notifier Notifier

	drawer   *entity.Player
	viewers  []entity.Player
	elements json.RawMessage
}

func NewWhiteboardSession(logger *slog.Logger, roomID string, notifier Notifier) *WhiteboardSession {
	return &WhiteboardSession{
		logger:   logger.With("component", "whiteboard_session", "room", roomID),
		roomID:   roomID,
		notifier: notifier,
	}
}

// Handle - dispatches one whiteboard command for the given participant.
func (that *WhiteboardSession) Handle(cmd WhiteboardCommand, participant entity.Player) error {
	switch cmd.Kind {
	case WhiteboardJoin:
		that.Join(participant)
		return nil
	case WhiteboardLeave:
		return that.Leave(participant)
	case WhiteboardSceneChange:
		return that.ChangeScene(participant, cmd.Elements)
	case WhiteboardPointerChange:
		that.ChangePointer(participant, cmd.Payload)
		return nil
	case WhiteboardDrawerChange:
		that.ChangeDrawer(participant, cmd.TargetID)
		return nil
	case WhiteboardClearDrawer:
		that.ClearDrawer()
		return nil
	default:
		return apperror.ErrInvalidCommand
	}
}

// Join - adds a participant. The first participant in becomes the drawer;
// everyone after queues as a viewer. All participants, the joiner
// included, are told about the join, and the event carries the full scene
// so late joiners see existing work.
func (that *WhiteboardSession) Join(participant entity.Player) {
	that.mu.Lock()
	defer that.mu.Unlock()

	isDrawer := false
	if that.drawer == nil {
		drawer := participant
		that.drawer = &drawer
		isDrawer = true
	} else {
		that.viewers = append(that.viewers, participant)
	}

	that.notifier.Broadcast(that.roomID, WhiteboardJoinEvent{
		Type:     EventWhiteboardJoin,
		RoomID:   that.roomID,
		Player:   participant,
		IsDrawer: isDrawer,
		Drawer:   that.drawerCopy(),
		Viewers:  that.viewersCopy(),
		Elements: that.elements,
	})
}

// Leave - removes a participant. A departing drawer hands the surface to
// the viewer at the head of the queue; the scene resets only once the
// room is completely empty.
func (that *WhiteboardSession) Leave(participant entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.drawer != nil && that.drawer.ID == participant.ID {
		that.drawer = nil

		promoted := false
		if len(that.viewers) > 0 {
			next := that.viewers[0]
			that.viewers = that.viewers[1:]
			that.drawer = &next
			promoted = true

			that.logger.Debug("drawer left, promoted next viewer", "left", participant.ID, "drawer", next.ID)
		}

		that.resetIfEmpty()

		that.notifier.Broadcast(that.roomID, WhiteboardLeaveEvent{
			Type:     EventWhiteboardLeave,
			RoomID:   that.roomID,
			Player:   participant,
			IsDrawer: true,
			Drawer:   that.drawerCopy(),
			Viewers:  that.viewersCopy(),
		})

		if promoted {
			that.notifyNewDrawer(EventWhiteboardDrawer)
		}

		return nil
	}

	for i, viewer := range that.viewers {
		if viewer.ID == participant.ID {
			that.viewers = append(that.viewers[:i], that.viewers[i+1:]...)
			that.resetIfEmpty()

			that.notifier.Broadcast(that.roomID, WhiteboardLeaveEvent{
				Type:     EventWhiteboardLeave,
				RoomID:   that.roomID,
				Player:   participant,
				IsDrawer: false,
				Drawer:   that.drawerCopy(),
				Viewers:  that.viewersCopy(),
			})

			return nil
		}
	}

	return apperror.ErrPlayerNotFound
}

// ChangeScene - stores a new scene and relays it to every participant
// except the sender. Only the current drawer may draw.
func (that *WhiteboardSession) ChangeScene(participant entity.Player, elements json.RawMessage) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.drawer == nil || that.drawer.ID != participant.ID {
		return apperror.ErrNotDrawer
	}

	that.elements = elements

	event := WhiteboardSceneEvent{
		Type:     EventWhiteboardScene,
		RoomID:   that.roomID,
		Elements: elements,
	}
	for _, id := range that.participantIDs() {
		if id != participant.ID {
			that.notifier.Unicast(id, event)
		}
	}

	return nil
}

// ChangePointer - stateless relay of a cursor position to every other
// participant. Never stored.
func (that *WhiteboardSession) ChangePointer(participant entity.Player, payload json.RawMessage) {
	that.mu.Lock()
	defer that.mu.Unlock()

	event := WhiteboardPointerEvent{
		Type:    EventWhiteboardPointer,
		RoomID:  that.roomID,
		Player:  participant,
		Payload: payload,
	}
	for _, id := range that.participantIDs() {
		if id != participant.ID {
			that.notifier.Unicast(id, event)
		}
	}
}

// ChangeDrawer - promotes the target viewer to drawer, demoting the prior
// drawer to the end of the viewer queue. A target that is already the
// drawer, or is not a viewer, is a silent no-op.
func (that *WhiteboardSession) ChangeDrawer(_ entity.Player, targetID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.drawer != nil && that.drawer.ID == targetID {
		return
	}

	for i, viewer := range that.viewers {
		if viewer.ID == targetID {
			that.viewers = append(that.viewers[:i], that.viewers[i+1:]...)
			if that.drawer != nil {
				that.viewers = append(that.viewers, *that.drawer)
			}

			target := viewer
			that.drawer = &target

			that.notifyNewDrawer(EventWhiteboardDrawer)

			return
		}
	}
}

// ClearDrawer - demotes the current drawer into the viewer queue, leaving
// the surface without a drawer. Used by a controlling game at turn and
// game boundaries. No-op when there is no drawer.
func (that *WhiteboardSession) ClearDrawer() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.drawer == nil {
		return
	}

	that.viewers = append(that.viewers, *that.drawer)
	that.drawer = nil

	that.notifyNewDrawer(EventWhiteboardCleared)
}

// Snapshot - the current drawer, viewer queue and scene.
func (that *WhiteboardSession) Snapshot() WhiteboardSnapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return WhiteboardSnapshot{
		Drawer:   that.drawerCopy(),
		Viewers:  that.viewersCopy(),
		Elements: that.elements,
	}
}

// resetIfEmpty - clears the scene once both drawer and viewers are gone.
func (that *WhiteboardSession) resetIfEmpty() {
	if that.drawer == nil && len(that.viewers) == 0 {
		that.elements = nil
	}
}

func (that *WhiteboardSession) notifyNewDrawer(eventType string) {
	that.notifier.Broadcast(that.roomID, WhiteboardDrawerEvent{
		Type:    eventType,
		RoomID:  that.roomID,
		Drawer:  that.drawerCopy(),
		Viewers: that.viewersCopy(),
	})
}

func (that *WhiteboardSession) participantIDs() []string {
	ids := make([]string, 0, len(that.viewers)+1)
	if that.drawer != nil {
		ids = append(ids, that.drawer.ID)
	}
	for _, viewer := range that.viewers {
		ids = append(ids, viewer.ID)
	}

	return ids
}

func (that *WhiteboardSession) drawerCopy() *entity.Player {
	if that.drawer == nil {
		return nil
	}

	drawer := *that.drawer

	return &drawer
}

func (that *WhiteboardSession) viewersCopy() []entity.Player {
	viewers := make([]entity.Player, len(that.viewers))
	copy(viewers, that.viewers)

	return viewers
}
