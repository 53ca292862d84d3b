package game

import (
	"github.com/google/uuid"

	"github.com/pixeltown/pixeltown-backend/internal/apperror"
	"github.com/pixeltown/pixeltown-backend/internal/entity"
)

// Move - the generic shape of a move routed to a concrete game.
// Payload carries the game-specific move; the concrete game rejects
// payloads of the wrong type with apperror.ErrCommandMismatch.
type Move struct {
	InstanceID string
	PlayerID   string
	Payload    any
}

// Snapshot - read-only projection of the state every game shares.
type Snapshot struct {
	InstanceID string          `json:"instance_id"`
	Status     string          `json:"status"`
	Players    []entity.Player `json:"players"`
}

// Instance - the contract every concrete game implements for its owning session.
type Instance interface {
	ID() string
	Status() string
	Players() []entity.Player
	Result() *entity.GameResult

	Join(player entity.Player) error
	Leave(player entity.Player) error
	Start() error
	ApplyMove(move Move) error

	// Tick advances the game by one second and reports whether
	// anything observable changed.
	Tick() bool

	// SnapshotFor returns the state as the given player is allowed to
	// see it. An empty ID yields the spectator view.
	SnapshotFor(playerID string) any
}

// TurnAware is implemented by games with a rotating active player, so the
// owning session can mirror turn changes onto a paired whiteboard.
type TurnAware interface {
	Drawer() string
	BetweenTurns() bool
}

// Game - base state shared by all concrete games: identity, lifecycle
// status and an ordered roster of unique players.
type Game struct {
	id      string
	status  string
	players []entity.Player
	result  *entity.GameResult
}

func NewGame() Game {
	return Game{
		id:     uuid.NewString(),
		status: entity.StatusWaitingToStart,
	}
}

func (that *Game) ID() string {
	return that.id
}

func (that *Game) Status() string {
	return that.status
}

// Players - the roster in join order. Returns a copy so callers cannot
// mutate the game's state.
func (that *Game) Players() []entity.Player {
	players := make([]entity.Player, len(that.players))
	copy(players, that.players)

	return players
}

func (that *Game) HasPlayer(id string) bool {
	for _, player := range that.players {
		if player.ID == id {
			return true
		}
	}

	return false
}

func (that *Game) Result() *entity.GameResult {
	if that.result == nil {
		return nil
	}

	scores := make(map[string]int, len(that.result.Scores))
	for id, score := range that.result.Scores {
		scores[id] = score
	}

	return &entity.GameResult{InstanceID: that.result.InstanceID, Scores: scores}
}

// AddPlayer - appends a player to the roster while the join window is open.
func (that *Game) AddPlayer(player entity.Player) error {
	if that.HasPlayer(player.ID) {
		return apperror.ErrPlayerAlreadyInGame
	}

	if that.status != entity.StatusWaitingToStart {
		return apperror.ErrGameAlreadyStarted
	}

	that.players = append(that.players, player)

	return nil
}

// RemovePlayer - removes a player from the roster, preserving join order.
func (that *Game) RemovePlayer(player entity.Player) error {
	for i, p := range that.players {
		if p.ID == player.ID {
			that.players = append(that.players[:i], that.players[i+1:]...)
			return nil
		}
	}

	return apperror.ErrPlayerNotInGame
}

// MarkInProgress - transitions WAITING_TO_START into IN_PROGRESS.
func (that *Game) MarkInProgress() error {
	if that.status != entity.StatusWaitingToStart {
		return apperror.ErrGameAlreadyStarted
	}

	that.status = entity.StatusInProgress

	return nil
}

// Finish - transitions the game into its terminal OVER state and records
// the result. Finishing an already finished game is a no-op.
func (that *Game) Finish(scores map[string]int) {
	if that.status == entity.StatusOver {
		return
	}

	copied := make(map[string]int, len(scores))
	for id, score := range scores {
		copied[id] = score
	}

	that.status = entity.StatusOver
	that.result = &entity.GameResult{InstanceID: that.id, Scores: copied}
}

func (that *Game) Snapshot() Snapshot {
	return Snapshot{
		InstanceID: that.id,
		Status:     that.status,
		Players:    that.Players(),
	}
}

func (that *Game) IsOver() bool {
	return that.status == entity.StatusOver
}

func (that *Game) IsInProgress() bool {
	return that.status == entity.StatusInProgress
}

func (that *Game) IsWaiting() bool {
	return that.status == entity.StatusWaitingToStart
}
