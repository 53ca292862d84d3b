package apperror

import "errors"

var (
	ErrPlayerAlreadyInGame   = errors.New("player is already in the game")
	ErrPlayerNotInGame       = errors.New("player is not in the game")
	ErrGameAlreadyStarted    = errors.New("game has already started")
	ErrGameAlreadyInProgress = errors.New("game is already in progress")
	ErrGameNotInProgress     = errors.New("game is not in progress")
	ErrNoGameInProgress      = errors.New("no game in progress")
	ErrNotEnoughPlayers      = errors.New("not enough players to start")
	ErrInstanceIDMismatch    = errors.New("command targets a different game instance")
	ErrCommandMismatch       = errors.New("move payload does not match the active game")
	ErrInvalidCommand        = errors.New("invalid command")
	ErrNotYourTurn           = errors.New("it's not your turn")
	ErrAlreadyGuessed        = errors.New("player already guessed correctly this turn")
	ErrTurnEnded             = errors.New("turn has already ended")
	ErrPlayerNotFound        = errors.New("player not found")
	ErrNotDrawer             = errors.New("only the drawer may change the scene")
)
