package storage

import (
	"context"

	"github.com/netznav/navigator/internal/model"
)

// Storage defines the interface the room registry persists through. The
// system is ephemeral by design; backends exist for operational parity,
// not durability.
type Storage interface {
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)

	// ListRoomIDs returns all live room ids in lexical order. The
	// disconnect sweep depends on the ordering being deterministic.
	ListRoomIDs(ctx context.Context) ([]model.RoomID, error)
}
