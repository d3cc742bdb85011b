package protocol

import "github.com/netznav/navigator/internal/model"

// Player is the wire representation of a room member
type Player struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Character *string `json:"character"`
	IsReady   bool    `json:"isReady"`
	Score     int     `json:"score"`
	Submitted bool    `json:"submitted"`
}

// PlayerFromModel converts a model.Player to its wire form
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:        string(p.ID),
		Name:      p.Name,
		Character: p.Character,
		IsReady:   p.IsReady,
		Score:     p.Score,
		Submitted: p.Submitted,
	}
}

// GameState is the wire representation of the shared level state
type GameState struct {
	LevelIndex int    `json:"levelIndex"`
	LevelState string `json:"levelState"`
}

// RoomSnapshot is the full room state broadcast to members. It never
// carries transport internals beyond the player ids themselves.
type RoomSnapshot struct {
	RoomID    string            `json:"roomId"`
	Players   map[string]Player `json:"players"`
	GameState GameState         `json:"gameState"`
}

// SnapshotFromRoom builds the safe-to-send view of a room
func SnapshotFromRoom(r *model.Room) RoomSnapshot {
	players := make(map[string]Player, len(r.Players))
	for id, p := range r.Players {
		players[string(id)] = PlayerFromModel(p)
	}
	return RoomSnapshot{
		RoomID:  string(r.ID),
		Players: players,
		GameState: GameState{
			LevelIndex: r.Game.LevelIndex,
			LevelState: string(r.Game.LevelState),
		},
	}
}

// Outbound payloads beyond the full snapshot

// PlayerLeftPayload is the payload for playerLeft
type PlayerLeftPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// CharacterSelectedPayload is the payload for playerSelectedCharacter
type CharacterSelectedPayload struct {
	PlayerID  string `json:"playerId"`
	Character string `json:"character"`
}

// ReadinessUpdatePayload is the payload for playerReadinessUpdate
type ReadinessUpdatePayload struct {
	PlayerID string `json:"playerId"`
	IsReady  bool   `json:"isReady"`
}

// ScoreUpdatePayload is the payload for scoreUpdate
type ScoreUpdatePayload struct {
	PlayerID string `json:"playerId"`
	NewScore int    `json:"newScore"`
}

// ErrorPayload is the payload for directed error notices
type ErrorPayload struct {
	Message string `json:"message"`
}
