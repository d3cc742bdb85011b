package model

import (
	"sort"
	"time"
)

// RoomID is a short human-typeable identifier for joining rooms
type RoomID string

// LevelState represents the room's current stage in the session state machine
type LevelState string

const (
	LevelStateWaiting       LevelState = "waiting"        // players picking characters
	LevelStateIntro         LevelState = "intro"          // level introduction
	LevelStateStudy         LevelState = "study"          // study phase
	LevelStateChallenge     LevelState = "challenge"      // challenge in progress
	LevelStateLevelComplete LevelState = "level_complete" // challenge finished, waiting to advance
)

// DefaultMaxPlayers is the room capacity unless configured otherwise
const DefaultMaxPlayers = 5

// GameState holds the level progression state shared by all room members
type GameState struct {
	LevelIndex int
	LevelState LevelState
}

// Room is a synchronized session instance: bounded membership plus the
// shared game state. All mutation goes through the sync engine.
type Room struct {
	ID         RoomID
	Players    map[PlayerID]*Player
	Game       GameState
	MaxPlayers int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Player returns the member with the given id, or nil if not present
func (r *Room) Player(id PlayerID) *Player {
	return r.Players[id]
}

// Clone returns a deep copy detached from the original. Storage backends
// hand out clones so callers can read a room after the engine has moved on.
func (r *Room) Clone() *Room {
	c := *r
	c.Players = make(map[PlayerID]*Player, len(r.Players))
	for id, p := range r.Players {
		c.Players[id] = p.Clone()
	}
	return &c
}

// IsFull reports whether the room is at capacity
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// IsEmpty reports whether the room has no members
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// SortedPlayerIDs returns member ids in lexical order. Map iteration order
// is irrelevant to the engine's logic but tests need it deterministic.
func (r *Room) SortedPlayerIDs() []PlayerID {
	ids := make([]PlayerID, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AllCharactersSelected reports whether every current member has picked a
// character. Vacuously true for an empty room; callers must guard.
func (r *Room) AllCharactersSelected() bool {
	for _, p := range r.Players {
		if p.Character == nil {
			return false
		}
	}
	return true
}

// AllReady reports whether every current member is ready.
// Vacuously true for an empty room; callers must guard.
func (r *Room) AllReady() bool {
	for _, p := range r.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// AllSubmitted reports whether every current member has answered the
// current challenge. Vacuously true for an empty room; callers must guard.
func (r *Room) AllSubmitted() bool {
	for _, p := range r.Players {
		if !p.Submitted {
			return false
		}
	}
	return true
}

// ResetReadiness clears every member's ready flag at a synchronization
// checkpoint
func (r *Room) ResetReadiness() {
	for _, p := range r.Players {
		p.IsReady = false
	}
}

// ResetSubmissions clears every member's challenge submission flag
func (r *Room) ResetSubmissions() {
	for _, p := range r.Players {
		p.Submitted = false
	}
}
