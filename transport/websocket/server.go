package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pixeltown/pixeltown-backend/internal/apperror"
	"github.com/pixeltown/pixeltown-backend/internal/entity"
	"github.com/pixeltown/pixeltown-backend/internal/metrics"
	"github.com/pixeltown/pixeltown-backend/internal/usecase"
)

// Server accepts WebSocket connections and routes command envelopes to
// the room sessions. Wire framing lives here; all game semantics live in
// the session layer.
type Server struct {
	logger   *slog.Logger
	hub      *Hub
	rooms    *usecase.RoomManager
	upgrader websocket.Upgrader

	handlers map[string]func(c *client, payload json.RawMessage) error
}

func New(logger *slog.Logger, hub *Hub, rooms *usecase.RoomManager) *Server {
	server := &Server{
		logger: logger.With("component", "ws_server"),
		hub:    hub,
		rooms:  rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		handlers: make(map[string]func(*client, json.RawMessage) error),
	}

	server.handlers["game:join"] = server.handleGameJoin
	server.handlers["game:move"] = server.handleGameMove
	server.handlers["game:leave"] = server.handleGameLeave
	server.handlers["game:start"] = server.handleGameStart
	server.handlers["whiteboard:join"] = server.handleWhiteboardJoin
	server.handlers["whiteboard:leave"] = server.handleWhiteboardLeave
	server.handlers["whiteboard:scene"] = server.handleWhiteboardScene
	server.handlers["whiteboard:pointer"] = server.handleWhiteboardPointer
	server.handlers["whiteboard:drawer"] = server.handleWhiteboardDrawer
	server.handlers["whiteboard:clear"] = server.handleWhiteboardClear

	return server
}

// Start - starts the WebSocket server and shuts it down when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and runs the read loop. The client
// identifies itself and its room through query parameters.
func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	roomID := r.URL.Query().Get("room")
	playerID := r.URL.Query().Get("player")
	displayName := r.URL.Query().Get("name")

	if roomID == "" || playerID == "" {
		http.Error(w, "room and player are required", http.StatusBadRequest)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		player: entity.Player{ID: playerID, DisplayName: displayName},
		roomID: roomID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}

	that.hub.register(c)
	go that.hub.writePump(c)

	log.Info("connection established", "player", playerID, "room", roomID)

	that.readLoop(c)

	that.hub.unregister(c)
	that.leaveOnDisconnect(c)
}

func (that *Server) readLoop(c *client) {
	log := that.logger.With("method", "readLoop", "player", c.player.ID)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug("connection closed", "error", err)
			return
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			that.sendError(c, "", apperror.ErrInvalidCommand)

			continue
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			that.sendError(c, msg.Action, apperror.ErrInvalidCommand)
			metrics.CommandsTotal.WithLabelValues(msg.Action, metrics.OutcomeError).Inc()

			continue
		}

		if err = handler(c, msg.Payload); err != nil {
			log.Info("command rejected", "action", msg.Action, "error", err)
			that.sendError(c, msg.Action, err)
			metrics.CommandsTotal.WithLabelValues(msg.Action, metrics.OutcomeError).Inc()

			continue
		}

		metrics.CommandsTotal.WithLabelValues(msg.Action, metrics.OutcomeOK).Inc()
	}
}

// leaveOnDisconnect - a dropped connection leaves the whiteboard so the
// drawer role does not stay stuck on a gone participant. Game membership
// is left to explicit commands: a reconnecting player keeps their seat.
func (that *Server) leaveOnDisconnect(c *client) {
	room, ok := that.rooms.Get(c.roomID)
	if !ok {
		return
	}

	if err := room.Whiteboard.Leave(c.player); err != nil && !errors.Is(err, apperror.ErrPlayerNotFound) {
		that.logger.Error("failed to leave whiteboard on disconnect", "player", c.player.ID, "error", err)
	}
}

func (that *Server) sendError(c *client, action string, err error) {
	data, marshalErr := json.Marshal(ErrorResponse{Action: action, Error: err.Error()})
	if marshalErr != nil {
		return
	}

	that.hub.enqueue(c, data)
}
