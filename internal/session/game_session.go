package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pixeltown/pixeltown-backend/internal/apperror"
	"github.com/pixeltown/pixeltown-backend/internal/entity"
	"github.com/pixeltown/pixeltown-backend/internal/game"
)

const minPlayersToStart = 2

type CommandKind string

const (
	CommandJoinGame  CommandKind = "JoinGame"
	CommandGameMove  CommandKind = "GameMove"
	CommandLeaveGame CommandKind = "LeaveGame"
	CommandStartGame CommandKind = "StartGame"
)

// Command - one client request routed to a game session.
type Command struct {
	Kind       CommandKind
	InstanceID string
	Move       any
}

// HistoryStore - durable write-through for finished game results. The
// session keeps its own in-memory history; store failures are logged,
// never propagated.
type HistoryStore interface {
	Append(ctx context.Context, roomID string, result entity.GameResult) error
}

// GameSession owns the active game instance for one room: it dispatches
// commands, records finished results into a bounded history, drives the
// per-second tick and publishes snapshots after successful mutations.
//
// All command handling and the tick are serialized on one mutex, which is
// the room's single logical thread of control.
type GameSession struct {
	mu sync.Mutex

	logger   *slog.Logger
	roomID   string
	notifier Notifier
	newGame  func() game.Instance

	game         game.Instance
	history      []entity.GameResult
	historyLimit int
	store        HistoryStore
	whiteboard   *WhiteboardSession

	lastBetweenTurns bool
	lastDrawer       string

	stopTick func()
}

type GameSessionOption func(*GameSession)

// WithHistoryStore - adds durable write-through of finished results.
func WithHistoryStore(store HistoryStore) GameSessionOption {
	return func(that *GameSession) { that.store = store }
}

// WithWhiteboard - pairs the session with the room's whiteboard, so turn
// boundaries clear or hand off the drawing surface.
func WithWhiteboard(whiteboard *WhiteboardSession) GameSessionOption {
	return func(that *GameSession) { that.whiteboard = whiteboard }
}

// WithHistoryLimit - bounds the in-memory history; older entries are dropped.
func WithHistoryLimit(limit int) GameSessionOption {
	return func(that *GameSession) { that.historyLimit = limit }
}

func NewGameSession(logger *slog.Logger, roomID string, notifier Notifier, newGame func() game.Instance, opts ...GameSessionOption) *GameSession {
	session := &GameSession{
		logger:       logger.With("component", "game_session", "room", roomID),
		roomID:       roomID,
		notifier:     notifier,
		newGame:      newGame,
		historyLimit: 20,
	}

	for _, opt := range opts {
		opt(session)
	}

	return session
}

// StartTicking - registers the session's recurring one-second tick.
func (that *GameSession) StartTicking(scheduler Scheduler) {
	that.stopTick = scheduler.Every(time.Second, that.Tick)
}

// Close - cancels the tick loop. Safe to call more than once.
func (that *GameSession) Close() {
	if that.stopTick != nil {
		that.stopTick()
	}
}

// Handle - validates and applies one command. JoinGame returns the active
// instance's ID; every other kind returns an empty string. A failed
// command mutates nothing and sends no notification.
func (that *GameSession) Handle(cmd Command, player entity.Player) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch cmd.Kind {
	case CommandJoinGame:
		return that.handleJoin(player)
	case CommandGameMove:
		return "", that.handleMove(cmd, player)
	case CommandLeaveGame:
		return "", that.handleLeave(cmd, player)
	case CommandStartGame:
		return "", that.handleStart(cmd)
	default:
		return "", apperror.ErrInvalidCommand
	}
}

// Tick - advances the active game by one second. Notifies listeners only
// when the tick produced an observable change.
func (that *GameSession) Tick() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.game == nil {
		return
	}

	if !that.game.Tick() {
		return
	}

	that.stateUpdated()
}

// History - the recorded results, oldest first.
func (that *GameSession) History() []entity.GameResult {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.historyCopy()
}

// Snapshot - the room's spectator-view state: active game plus history.
func (that *GameSession) Snapshot() GameUpdateEvent {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshotEvent("")
}

func (that *GameSession) handleJoin(player entity.Player) (string, error) {
	if that.game == nil || that.game.Status() == entity.StatusOver {
		fresh := that.newGame()

		if err := fresh.Join(player); err != nil {
			return "", err
		}

		that.game = fresh
		that.rememberTurnState()
		that.stateUpdated()

		return fresh.ID(), nil
	}

	if err := that.game.Join(player); err != nil {
		return "", err
	}

	that.stateUpdated()

	return that.game.ID(), nil
}

func (that *GameSession) handleMove(cmd Command, player entity.Player) error {
	if err := that.checkActiveInstance(cmd); err != nil {
		return err
	}

	move := game.Move{
		InstanceID: cmd.InstanceID,
		PlayerID:   player.ID,
		Payload:    cmd.Move,
	}

	if err := that.game.ApplyMove(move); err != nil {
		return err
	}

	that.stateUpdated()

	return nil
}

func (that *GameSession) handleLeave(cmd Command, player entity.Player) error {
	if err := that.checkActiveInstance(cmd); err != nil {
		return err
	}

	if err := that.game.Leave(player); err != nil {
		return err
	}

	that.stateUpdated()

	return nil
}

func (that *GameSession) handleStart(cmd Command) error {
	if that.game == nil {
		return apperror.ErrNoGameInProgress
	}

	if that.game.Status() == entity.StatusInProgress {
		return apperror.ErrGameAlreadyInProgress
	}

	if that.game.ID() != cmd.InstanceID {
		return apperror.ErrInstanceIDMismatch
	}

	if len(that.game.Players()) < minPlayersToStart {
		return apperror.ErrNotEnoughPlayers
	}

	if err := that.game.Start(); err != nil {
		return err
	}

	that.stateUpdated()

	return nil
}

func (that *GameSession) checkActiveInstance(cmd Command) error {
	if that.game == nil {
		return apperror.ErrNoGameInProgress
	}

	if that.game.ID() != cmd.InstanceID {
		return apperror.ErrInstanceIDMismatch
	}

	return nil
}

// stateUpdated - runs after every successful mutation: records a result if
// the game just finished, mirrors turn boundaries onto the paired
// whiteboard, and notifies listeners.
func (that *GameSession) stateUpdated() {
	if that.game.Status() == entity.StatusOver {
		that.recordResult()
	}

	that.syncWhiteboard()
	that.notifyAll()
}

// recordResult - appends the finished instance's result to the history
// exactly once, no matter how many commands observe the OVER state.
func (that *GameSession) recordResult() {
	result := that.game.Result()
	if result == nil {
		return
	}

	for _, recorded := range that.history {
		if recorded.InstanceID == result.InstanceID {
			return
		}
	}

	that.history = append(that.history, *result)
	if that.historyLimit > 0 && len(that.history) > that.historyLimit {
		that.history = that.history[len(that.history)-that.historyLimit:]
	}

	if that.store != nil {
		if err := that.store.Append(context.Background(), that.roomID, *result); err != nil {
			that.logger.Error("failed to persist game result", "instance", result.InstanceID, "error", err)
		}
	}

	that.logger.Info("game finished", "instance", result.InstanceID)
}

// syncWhiteboard - clears the drawing surface's drawer when a turn or the
// game ends, and hands the surface to the new drawer when a turn begins.
func (that *GameSession) syncWhiteboard() {
	if that.whiteboard == nil {
		return
	}

	turns, ok := that.game.(game.TurnAware)
	if !ok {
		return
	}

	betweenTurns, drawer := turns.BetweenTurns(), turns.Drawer()
	defer func() {
		that.lastBetweenTurns, that.lastDrawer = betweenTurns, drawer
	}()

	if that.game.Status() == entity.StatusOver {
		that.whiteboard.ClearDrawer()
		return
	}

	if betweenTurns && !that.lastBetweenTurns {
		that.whiteboard.ClearDrawer()
		return
	}

	if !betweenTurns && drawer != "" && drawer != that.lastDrawer {
		that.whiteboard.ChangeDrawer(entity.Player{}, drawer)
	}
}

func (that *GameSession) rememberTurnState() {
	if turns, ok := that.game.(game.TurnAware); ok {
		that.lastBetweenTurns, that.lastDrawer = turns.BetweenTurns(), turns.Drawer()
	}
}

// notifyAll - broadcasts the spectator view of the room and additionally
// unicasts the unredacted view to the drawer.
func (that *GameSession) notifyAll() {
	that.notifier.Broadcast(that.roomID, that.snapshotEvent(""))

	if turns, ok := that.game.(game.TurnAware); ok {
		if drawer := turns.Drawer(); drawer != "" {
			that.notifier.Unicast(drawer, that.snapshotEvent(drawer))
		}
	}
}

func (that *GameSession) snapshotEvent(playerID string) GameUpdateEvent {
	event := GameUpdateEvent{
		Type:    EventGameUpdate,
		RoomID:  that.roomID,
		History: that.historyCopy(),
	}

	if that.game != nil {
		event.Game = that.game.SnapshotFor(playerID)
	}

	return event
}

func (that *GameSession) historyCopy() []entity.GameResult {
	history := make([]entity.GameResult, len(that.history))
	copy(history, that.history)

	return history
}
