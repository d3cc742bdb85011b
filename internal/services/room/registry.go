package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/netznav/navigator/internal/dependencies/clock"
	"github.com/netznav/navigator/internal/dependencies/random"
	"github.com/netznav/navigator/internal/model"
	"github.com/netznav/navigator/internal/storage"
)

const (
	// CodeLength is the length of generated room ids
	CodeLength = 6
	// CodeAlphabet is the characters used in room ids (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Registry owns the process-wide mapping from room id to room: rooms are
// created on demand and removed the moment they empty.
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewRegistry creates a new Registry
func NewRegistry(storage storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		clock:   clk,
		random:  rnd,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Create makes a new room with the creator as its sole member. Generated
// ids are collision-checked: on a collision we regenerate rather than
// overwrite the existing room.
func (r *Registry) Create(ctx context.Context, creatorID model.PlayerID, creatorName string) (*model.Room, error) {
	now := r.clock.Now()

	var id model.RoomID
	for {
		id = model.RoomID(r.random.Code(CodeLength, CodeAlphabet))
		exists, err := r.storage.RoomExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	creator := model.NewPlayer(creatorID, creatorName)
	room := &model.Room{
		ID:         id,
		Players:    map[model.PlayerID]*model.Player{creator.ID: creator},
		Game:       model.GameState{LevelIndex: 0, LevelState: model.LevelStateWaiting},
		MaxPlayers: model.DefaultMaxPlayers,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	r.logger.Info("room created",
		slog.String("room", string(id)),
		slog.String("creator", string(creatorID)))
	return room, nil
}

// Get retrieves a room by id
func (r *Registry) Get(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return r.storage.GetRoom(ctx, id)
}

// Save persists a mutated room
func (r *Registry) Save(ctx context.Context, room *model.Room) error {
	room.UpdatedAt = r.clock.Now()
	return r.storage.SaveRoom(ctx, room)
}

// Remove deletes a room. Safe to call if the room is already gone.
func (r *Registry) Remove(ctx context.Context, id model.RoomID) error {
	if err := r.storage.DeleteRoom(ctx, id); err != nil {
		return err
	}
	r.logger.Info("room removed", slog.String("room", string(id)))
	return nil
}

// ListIDs returns all live room ids in lexical order
func (r *Registry) ListIDs(ctx context.Context) ([]model.RoomID, error) {
	return r.storage.ListRoomIDs(ctx)
}

// FindPlayer scans rooms in id order and returns the first room containing
// the given player, or nil if the player is in no room. Membership is
// expected to be unique across rooms; the engine enforces that on join.
func (r *Registry) FindPlayer(ctx context.Context, playerID model.PlayerID) (*model.Room, error) {
	ids, err := r.storage.ListRoomIDs(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		room, err := r.storage.GetRoom(ctx, id)
		if err != nil {
			if errors.Is(err, model.ErrRoomNotFound) {
				continue
			}
			return nil, err
		}
		if room.Player(playerID) != nil {
			return room, nil
		}
	}
	return nil, nil
}
