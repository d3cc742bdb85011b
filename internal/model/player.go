package model

import "fmt"

// PlayerID uniquely identifies a player. It is derived from the player's
// transport connection, is stable for the connection's lifetime, and is
// never reused after a disconnect.
type PlayerID string

// Player represents a participant's state within a room. A Player only ever
// exists as a value in exactly one Room's membership map.
type Player struct {
	ID        PlayerID
	Name      string
	Character *string // nil until the player picks one
	IsReady   bool
	Score     int
	Submitted bool // answered the current challenge
}

// NewPlayer creates a player with default state. An empty name gets a
// placeholder derived from the player id.
func NewPlayer(id PlayerID, name string) *Player {
	if name == "" {
		name = DefaultPlayerName(id)
	}
	return &Player{
		ID:   id,
		Name: name,
	}
}

// Clone returns a copy detached from the original
func (p *Player) Clone() *Player {
	c := *p
	if p.Character != nil {
		character := *p.Character
		c.Character = &character
	}
	return &c
}

// DefaultPlayerName generates the placeholder display name for a player id.
func DefaultPlayerName(id PlayerID) string {
	short := string(id)
	if len(short) > 4 {
		short = short[:4]
	}
	return fmt.Sprintf("Player_%s", short)
}
