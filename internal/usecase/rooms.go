package usecase

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pixeltown/pixeltown-backend/internal/game"
	"github.com/pixeltown/pixeltown-backend/internal/metrics"
	"github.com/pixeltown/pixeltown-backend/internal/pictionary"
	"github.com/pixeltown/pixeltown-backend/internal/session"
)

// Room - the session pair for one interactable area: the game controller
// and its paired whiteboard surface.
type Room struct {
	ID         string
	Game       *session.GameSession
	Whiteboard *session.WhiteboardSession
}

// RoomManager owns the per-room sessions: it creates the pair on first
// use, wires the game to its whiteboard, starts the tick loop and tears
// it down when the room closes.
type RoomManager struct {
	mu sync.Mutex

	logger    *slog.Logger
	notifier  session.Notifier
	scheduler session.Scheduler
	store     session.HistoryStore

	gameConf     pictionary.Config
	historyLimit int

	rooms map[string]*Room
}

type RoomManagerOption func(*RoomManager)

// WithHistoryStore - adds durable write-through of finished results to
// every room the manager creates.
func WithHistoryStore(store session.HistoryStore) RoomManagerOption {
	return func(that *RoomManager) { that.store = store }
}

// WithHistoryLimit - bounds each room's in-memory history.
func WithHistoryLimit(limit int) RoomManagerOption {
	return func(that *RoomManager) { that.historyLimit = limit }
}

func NewRoomManager(logger *slog.Logger, notifier session.Notifier, scheduler session.Scheduler, gameConf pictionary.Config, opts ...RoomManagerOption) *RoomManager {
	manager := &RoomManager{
		logger:       logger.With("component", "room_manager"),
		notifier:     notifier,
		scheduler:    scheduler,
		gameConf:     gameConf,
		historyLimit: 20,
		rooms:        make(map[string]*Room),
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// GetOrCreate - returns the room's session pair, creating and starting it
// on first use.
func (that *RoomManager) GetOrCreate(roomID string) *Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	if room, ok := that.rooms[roomID]; ok {
		return room
	}

	whiteboard := session.NewWhiteboardSession(that.logger, roomID, that.notifier)

	newGame := func() game.Instance {
		return pictionary.New(that.gameConf)
	}

	options := []session.GameSessionOption{
		session.WithWhiteboard(whiteboard),
		session.WithHistoryLimit(that.historyLimit),
	}
	if that.store != nil {
		options = append(options, session.WithHistoryStore(that.store))
	}

	gameSession := session.NewGameSession(that.logger, roomID, that.notifier, newGame, options...)
	gameSession.StartTicking(that.tickScheduler())

	room := &Room{
		ID:         roomID,
		Game:       gameSession,
		Whiteboard: whiteboard,
	}

	that.rooms[roomID] = room
	metrics.ActiveRooms.Inc()
	that.logger.Info("room opened", "room", roomID)

	return room
}

// Get - looks up an existing room without creating one.
func (that *RoomManager) Get(roomID string) (*Room, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]

	return room, ok
}

// Close - tears down one room, cancelling its tick loop.
func (that *RoomManager) Close(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return
	}

	room.Game.Close()
	delete(that.rooms, roomID)
	metrics.ActiveRooms.Dec()
	that.logger.Info("room closed", "room", roomID)
}

// CloseAll - tears down every room; used on shutdown.
func (that *RoomManager) CloseAll() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, room := range that.rooms {
		room.Game.Close()
		delete(that.rooms, id)
		metrics.ActiveRooms.Dec()
	}
}

// tickScheduler - wraps the configured scheduler to count ticks.
func (that *RoomManager) tickScheduler() session.Scheduler {
	return schedulerFunc(func(interval time.Duration, fn func()) func() {
		return that.scheduler.Every(interval, func() {
			metrics.TicksTotal.Inc()
			fn()
		})
	})
}

type schedulerFunc func(time.Duration, func()) func()

func (that schedulerFunc) Every(interval time.Duration, fn func()) func() {
	return that(interval, fn)
}
