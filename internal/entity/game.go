package entity

const (
	StatusWaitingToStart = "WAITING_TO_START"
	StatusInProgress     = "IN_PROGRESS"
	StatusOver           = "OVER"
)

// GameResult - final outcome of one finished game instance, keyed by
// instance ID so a room's history records each playthrough at most once.
type GameResult struct {
	InstanceID string         `json:"instance_id"`
	Scores     map[string]int `json:"scores"`
}
