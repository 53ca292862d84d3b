package entity

// Player is a town member referenced by game and whiteboard state.
// The town layer owns the identity; sessions never mutate it.
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
