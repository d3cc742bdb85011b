package response

import (
	"time"

	"github.com/netznav/navigator/internal/model"
	"github.com/netznav/navigator/internal/protocol"
)

// RoomSummary is the list-view representation of a room
type RoomSummary struct {
	RoomID      string    `json:"roomId"`
	PlayerCount int       `json:"playerCount"`
	MaxPlayers  int       `json:"maxPlayers"`
	LevelIndex  int       `json:"levelIndex"`
	LevelState  string    `json:"levelState"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RoomSummaryFromModel converts a model.Room to its list-view form
func RoomSummaryFromModel(r *model.Room) RoomSummary {
	return RoomSummary{
		RoomID:      string(r.ID),
		PlayerCount: len(r.Players),
		MaxPlayers:  r.MaxPlayers,
		LevelIndex:  r.Game.LevelIndex,
		LevelState:  string(r.Game.LevelState),
		UpdatedAt:   r.UpdatedAt,
	}
}

// RoomList is the response for the room listing endpoint
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// Room is the detail-view representation: the same snapshot members
// receive over the socket, plus registry timestamps.
type Room struct {
	protocol.RoomSnapshot
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoomFromModel converts a model.Room to its detail-view form
func RoomFromModel(r *model.Room) Room {
	return Room{
		RoomSnapshot: protocol.SnapshotFromRoom(r),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// Stats reports process-wide counters for operators
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}
