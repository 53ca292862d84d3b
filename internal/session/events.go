package session

import (
	"encoding/json"

	"github.com/pixeltown/pixeltown-backend/internal/entity"
)

// Event type tags carried on every outbound session event.
const (
	EventGameUpdate        = "game:update"
	EventWhiteboardJoin    = "whiteboard:player_join"
	EventWhiteboardLeave   = "whiteboard:player_leave"
	EventWhiteboardScene   = "whiteboard:new_scene"
	EventWhiteboardPointer = "whiteboard:pointer_update"
	EventWhiteboardDrawer  = "whiteboard:new_drawer"
	EventWhiteboardCleared = "whiteboard:drawer_cleared"
)

// GameUpdateEvent - the room's updated snapshot, sent after every
// successful command and every observable tick.
type GameUpdateEvent struct {
	Type    string              `json:"type"`
	RoomID  string              `json:"room_id"`
	Game    any                 `json:"game"`
	History []entity.GameResult `json:"history"`
}

// WhiteboardJoinEvent carries the full scene so late joiners see existing work.
type WhiteboardJoinEvent struct {
	Type     string          `json:"type"`
	RoomID   string          `json:"room_id"`
	Player   entity.Player   `json:"player"`
	IsDrawer bool            `json:"is_drawer"`
	Drawer   *entity.Player  `json:"drawer,omitempty"`
	Viewers  []entity.Player `json:"viewers"`
	Elements json.RawMessage `json:"elements,omitempty"`
}

type WhiteboardLeaveEvent struct {
	Type     string          `json:"type"`
	RoomID   string          `json:"room_id"`
	Player   entity.Player   `json:"player"`
	IsDrawer bool            `json:"is_drawer"`
	Drawer   *entity.Player  `json:"drawer,omitempty"`
	Viewers  []entity.Player `json:"viewers"`
}

type WhiteboardSceneEvent struct {
	Type     string          `json:"type"`
	RoomID   string          `json:"room_id"`
	Elements json.RawMessage `json:"elements,omitempty"`
}

type WhiteboardPointerEvent struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id"`
	Player  entity.Player   `json:"player"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type WhiteboardDrawerEvent struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id"`
	Drawer  *entity.Player  `json:"drawer,omitempty"`
	Viewers []entity.Player `json:"viewers"`
}
