package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/pixeltown/pixeltown-backend/internal/pictionary"
	"github.com/pixeltown/pixeltown-backend/internal/session"
)

func (that *Server) handleGameJoin(c *client, _ json.RawMessage) error {
	room := that.rooms.GetOrCreate(c.roomID)

	instanceID, err := room.Game.Handle(session.Command{Kind: session.CommandJoinGame}, c.player)
	if err != nil {
		return err
	}

	that.hub.Unicast(c.player.ID, JoinResponse{Action: "game:join", InstanceID: instanceID})

	return nil
}

func (that *Server) handleGameMove(c *client, payload json.RawMessage) error {
	var req GamePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room := that.rooms.GetOrCreate(c.roomID)

	cmd := session.Command{
		Kind:       session.CommandGameMove,
		InstanceID: req.InstanceID,
		Move: pictionary.Move{
			Guesser:   c.player.ID,
			GuessWord: req.GuessWord,
		},
	}

	_, err := room.Game.Handle(cmd, c.player)

	return err
}

func (that *Server) handleGameLeave(c *client, payload json.RawMessage) error {
	var req GamePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room := that.rooms.GetOrCreate(c.roomID)

	_, err := room.Game.Handle(session.Command{Kind: session.CommandLeaveGame, InstanceID: req.InstanceID}, c.player)

	return err
}

func (that *Server) handleGameStart(c *client, payload json.RawMessage) error {
	var req GamePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room := that.rooms.GetOrCreate(c.roomID)

	_, err := room.Game.Handle(session.Command{Kind: session.CommandStartGame, InstanceID: req.InstanceID}, c.player)

	return err
}

func (that *Server) handleWhiteboardJoin(c *client, _ json.RawMessage) error {
	room := that.rooms.GetOrCreate(c.roomID)

	return room.Whiteboard.Handle(session.WhiteboardCommand{Kind: session.WhiteboardJoin}, c.player)
}

func (that *Server) handleWhiteboardLeave(c *client, _ json.RawMessage) error {
	room := that.rooms.GetOrCreate(c.roomID)

	return room.Whiteboard.Handle(session.WhiteboardCommand{Kind: session.WhiteboardLeave}, c.player)
}

func (that *Server) handleWhiteboardScene(c *client, payload json.RawMessage) error {
	var req WhiteboardPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room := that.rooms.GetOrCreate(c.roomID)

	return room.Whiteboard.Handle(session.WhiteboardCommand{
		Kind:     session.WhiteboardSceneChange,
		Elements: req.Elements,
	}, c.player)
}

func (that *Server) handleWhiteboardPointer(c *client, payload json.RawMessage) error {
	var req WhiteboardPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room := that.rooms.GetOrCreate(c.roomID)

	return room.Whiteboard.Handle(session.WhiteboardCommand{
		Kind:    session.WhiteboardPointerChange,
		Payload: req.Pointer,
	}, c.player)
}

func (that *Server) handleWhiteboardDrawer(c *client, payload json.RawMessage) error {
	var req WhiteboardPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room := that.rooms.GetOrCreate(c.roomID)

	return room.Whiteboard.Handle(session.WhiteboardCommand{
		Kind:     session.WhiteboardDrawerChange,
		TargetID: req.TargetID,
	}, c.player)
}

func (that *Server) handleWhiteboardClear(c *client, _ json.RawMessage) error {
	room := that.rooms.GetOrCreate(c.roomID)

	return room.Whiteboard.Handle(session.WhiteboardCommand{Kind: session.WhiteboardClearDrawer}, c.player)
}
