package pictionary

import (
	"math/rand"
	"sort"

	"github.com/pixeltown/pixeltown-backend/internal/apperror"
	"github.com/pixeltown/pixeltown-backend/internal/entity"
	"github.com/pixeltown/pixeltown-backend/internal/game"
)

const (
	DefaultTurnLength         = 60
	DefaultIntermissionLength = 10
)

// Move - a single guess by a non-drawing player. The guess must match the
// current word exactly, case included.
type Move struct {
	Guesser   string `json:"guesser"`
	GuessWord string `json:"guess_word"`
}

// Config - the single point of control for turn timing and the word pool.
// Consumers that render countdowns read the lengths from here.
type Config struct {
	TurnLength         int
	IntermissionLength int
	Words              []string
}

func (that Config) withDefaults() Config {
	if that.TurnLength <= 0 {
		that.TurnLength = DefaultTurnLength
	}
	if that.IntermissionLength <= 0 {
		that.IntermissionLength = DefaultIntermissionLength
	}
	if len(that.Words) == 0 {
		that.Words = defaultWords
	}

	return that
}

// Game implements the Pictionary rules on top of the base game: word
// rotation, the turn timer, guess scoring, drawer rotation and winner
// determination.
type Game struct {
	game.Game

	cfg Config

	currentWord  string
	turnTimer    int
	betweenTurns bool
	pool         []string
	pastWords    []string
	drawer       string
	guessed      map[string]bool
	scores       map[string]int
	winner       string
}

// Snapshot - a read-only projection of a Pictionary game. CurrentWord is
// blank unless the recipient is allowed to see it.
type Snapshot struct {
	game.Snapshot

	CurrentWord  string         `json:"current_word,omitempty"`
	TurnTimer    int            `json:"turn_timer"`
	BetweenTurns bool           `json:"between_turns"`
	PastWords    []string       `json:"past_words,omitempty"`
	Drawer       string         `json:"drawer,omitempty"`
	Guessed      []string       `json:"already_guessed_correctly,omitempty"`
	Scores       map[string]int `json:"scores,omitempty"`
	Winner       string         `json:"winner,omitempty"`
}

func New(cfg Config) *Game {
	g := &Game{
		Game:    game.NewGame(),
		cfg:     cfg.withDefaults(),
		guessed: make(map[string]bool),
		scores:  make(map[string]int),
	}

	g.pool = make([]string, len(g.cfg.Words))
	copy(g.pool, g.cfg.Words)

	g.drawNewWord()

	return g
}

// TurnLength - configured seconds per drawing turn.
func (that *Game) TurnLength() int {
	return that.cfg.TurnLength
}

// IntermissionLength - configured seconds between turns.
func (that *Game) IntermissionLength() int {
	return that.cfg.IntermissionLength
}

func (that *Game) Drawer() string {
	return that.drawer
}

func (that *Game) BetweenTurns() bool {
	return that.betweenTurns
}

func (that *Game) CurrentWord() string {
	return that.currentWord
}

func (that *Game) Winner() string {
	return that.winner
}

// Join - adds a player to the roster; the first player to join becomes the drawer.
func (that *Game) Join(player entity.Player) error {
	if err := that.AddPlayer(player); err != nil {
		return err
	}

	if len(that.Players()) == 1 {
		that.drawer = player.ID
	}

	return nil
}

// Leave - removes a player. A departing drawer hands the role to the next
// player in join order and the new drawer begins a fresh turn; an
// in-progress game ends once fewer than two players remain.
func (that *Game) Leave(player entity.Player) error {
	before := that.Players()

	if err := that.RemovePlayer(player); err != nil {
		return err
	}

	// the guessed set only ever holds current non-drawer players
	delete(that.guessed, player.ID)

	remaining := that.Players()

	promoted := false
	if that.drawer == player.ID {
		that.drawer = ""
		if len(remaining) > 0 {
			idx := indexOf(before, player.ID)
			that.drawer = remaining[idx%len(remaining)].ID
			promoted = true
		}
	}

	if !that.IsInProgress() {
		return nil
	}

	if len(remaining) <= 1 {
		that.endGame()
		return nil
	}

	if promoted && !that.betweenTurns {
		// the promoted player may already know the old word
		that.drawNewWord()
		that.guessed = make(map[string]bool)
		that.turnTimer = 0

		return nil
	}

	if !that.betweenTurns && len(that.guessed) >= len(remaining)-1 {
		that.betweenTurns = true
		that.turnTimer = 0
	}

	return nil
}

// Start - transitions the game into IN_PROGRESS and begins the first turn.
// The minimum-player policy is enforced by the owning session.
func (that *Game) Start() error {
	if err := that.MarkInProgress(); err != nil {
		return err
	}

	that.turnTimer = 0
	that.betweenTurns = false

	return nil
}

// ApplyMove - validates and applies a guess. A wrong guess is a silent
// no-op; a correct guess scores a point and may end the turn early once
// every non-drawer has guessed the word.
func (that *Game) ApplyMove(move game.Move) error {
	mv, ok := move.Payload.(Move)
	if !ok {
		return apperror.ErrCommandMismatch
	}

	guesser := move.PlayerID
	if guesser == "" {
		guesser = mv.Guesser
	}

	if !that.HasPlayer(guesser) {
		return apperror.ErrPlayerNotInGame
	}

	if guesser == that.drawer {
		return apperror.ErrNotYourTurn
	}

	if !that.IsInProgress() {
		return apperror.ErrGameNotInProgress
	}

	if that.guessed[guesser] {
		return apperror.ErrAlreadyGuessed
	}

	if that.betweenTurns {
		return apperror.ErrTurnEnded
	}

	if mv.GuessWord != that.currentWord {
		return nil
	}

	that.scores[guesser]++
	that.guessed[guesser] = true

	if len(that.guessed) >= len(that.Players())-1 {
		that.betweenTurns = true
		that.turnTimer = 0
	}

	return nil
}

// Tick - advances the game by one second. Each call accounts for exactly
// one second; delayed scheduling never produces a catch-up burst.
func (that *Game) Tick() bool {
	if !that.IsInProgress() {
		return false
	}

	switch {
	case that.betweenTurns && that.turnTimer >= that.cfg.IntermissionLength:
		that.advanceTurn()
	case !that.betweenTurns && that.turnTimer >= that.cfg.TurnLength:
		that.betweenTurns = true
		that.turnTimer = 0
	default:
		that.turnTimer++
	}

	return true
}

// SnapshotFor - the game state as the given player may see it. The current
// word is revealed to the drawer, to everyone during the intermission, and
// once the game is over; active guessers see it blank.
func (that *Game) SnapshotFor(playerID string) any {
	snapshot := Snapshot{
		Snapshot:     that.Game.Snapshot(),
		TurnTimer:    that.turnTimer,
		BetweenTurns: that.betweenTurns,
		Drawer:       that.drawer,
		Winner:       that.winner,
	}

	if len(that.pastWords) > 0 {
		snapshot.PastWords = make([]string, len(that.pastWords))
		copy(snapshot.PastWords, that.pastWords)
	}

	for id := range that.guessed {
		snapshot.Guessed = append(snapshot.Guessed, id)
	}
	sort.Strings(snapshot.Guessed)

	if len(that.scores) > 0 {
		snapshot.Scores = make(map[string]int, len(that.scores))
		for id, score := range that.scores {
			snapshot.Scores[id] = score
		}
	}

	if playerID == that.drawer || that.betweenTurns || that.IsOver() {
		snapshot.CurrentWord = that.currentWord
	}

	return snapshot
}

// advanceTurn - rotates the drawer to the next player in join order. When
// the rotation wraps past the last player, the game ends instead.
func (that *Game) advanceTurn() {
	players := that.Players()

	idx := indexOf(players, that.drawer)
	if idx < 0 || idx == len(players)-1 {
		that.endGame()
		return
	}

	that.drawer = players[idx+1].ID
	that.drawNewWord()
	that.guessed = make(map[string]bool)
	that.betweenTurns = false
	that.turnTimer = 0
}

// drawNewWord - retires the current word into pastWords and picks a new
// one uniformly at random. An exhausted pool is recycled from pastWords
// rather than failing: a long game repeats old words instead of stalling,
// but the just-retired word sits the next cycle out so it never comes up
// twice in a row.
func (that *Game) drawNewWord() {
	if that.currentWord != "" {
		that.pastWords = append(that.pastWords, that.currentWord)
		that.pool = removeWord(that.pool, that.currentWord)
	}

	if len(that.pool) == 0 {
		recycled := that.pastWords
		that.pastWords = nil

		for _, word := range recycled {
			if word != that.currentWord {
				that.pool = append(that.pool, word)
			}
		}

		if len(that.pool) == 0 {
			// single-word pool, a repeat is unavoidable
			that.pool = recycled
		} else {
			that.pastWords = append(that.pastWords, that.currentWord)
		}
	}

	that.currentWord = that.pool[rand.Intn(len(that.pool))] //nolint:gosec // game randomness, not crypto
}

// endGame - finishes the game, awarding the win to the single highest
// scorer. A tie for the maximum leaves the winner undefined.
func (that *Game) endGame() {
	scores := make(map[string]int, len(that.scores))
	for id, score := range that.scores {
		scores[id] = score
	}

	for _, player := range that.Players() {
		if _, ok := scores[player.ID]; !ok {
			scores[player.ID] = 0
		}
	}

	best, tied := "", false
	for id, score := range that.scores {
		switch {
		case best == "" || score > that.scores[best]:
			best, tied = id, false
		case score == that.scores[best] && id != best:
			tied = true
		}
	}

	if !tied {
		that.winner = best
	}

	that.Finish(scores)
}

func indexOf(players []entity.Player, id string) int {
	for i, player := range players {
		if player.ID == id {
			return i
		}
	}

	return -1
}

func removeWord(words []string, word string) []string {
	for i, w := range words {
		if w == word {
			return append(words[:i], words[i+1:]...)
		}
	}

	return words
}
