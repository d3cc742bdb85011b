// Package session implements the synchronization engine: every participant
// action is serialized into a single consistent room mutation, and stage
// transitions are evaluated after each one.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/netznav/navigator/internal/model"
	"github.com/netznav/navigator/internal/services/room"
)

// ScoreIncrement is the placeholder score awarded per answer submission.
// Real answer validation and per-challenge progress are extension points.
const ScoreIncrement = 10

// Result describes the outcome of an engine operation. Room is the
// post-mutation room, or nil when the operation deleted it; Player is the
// member the operation acted on.
type Result struct {
	Room        *model.Room
	RoomID      model.RoomID
	Player      *model.Player
	Transition  *model.Transition
	RoomDeleted bool
}

// Engine applies participant actions to rooms and drives the level state
// machine. A single engine-wide mutex serializes every operation, so no two
// mutations ever interleave: the same total-order guarantee the protocol
// requires of a single-threaded event loop. Per-room locking would allow
// more parallelism but the disconnect sweep spans rooms, and contention is
// negligible at this scale.
type Engine struct {
	mu       sync.Mutex
	registry *room.Registry
	logger   *slog.Logger
}

// NewEngine creates a new Engine
func NewEngine(registry *room.Registry, logger *slog.Logger) *Engine {
	return &Engine{
		registry: registry,
		logger:   logger.With(slog.String("component", "engine")),
	}
}

// CreateRoom creates a room with the acting player as sole member. A player
// already in some room cannot create another: membership is unique across
// rooms so the disconnect sweep can stop at the first match.
func (e *Engine) CreateRoom(ctx context.Context, playerID model.PlayerID, playerName string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.registry.FindPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrAlreadyInRoom
	}

	r, err := e.registry.Create(ctx, playerID, playerName)
	if err != nil {
		return nil, err
	}

	return &Result{Room: r, RoomID: r.ID, Player: r.Player(playerID)}, nil
}

// Join adds a player to an existing room
func (e *Engine) Join(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, playerName string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.registry.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if r.IsFull() {
		return nil, model.ErrRoomFull
	}

	existing, err := e.registry.FindPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrAlreadyInRoom
	}

	p := model.NewPlayer(playerID, playerName)
	r.Players[p.ID] = p

	transition := r.EvaluateTransition()
	if err := e.registry.Save(ctx, r); err != nil {
		return nil, err
	}

	e.logger.Info("player joined",
		slog.String("room", string(roomID)),
		slog.String("player", string(playerID)))
	return &Result{Room: r, RoomID: roomID, Player: p, Transition: transition}, nil
}

// Leave removes a player from a room, deleting the room if it empties
func (e *Engine) Leave(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.registry.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	return e.removeLocked(ctx, r, playerID)
}

// SelectCharacter sets a player's character and evaluates the
// waiting -> intro edge
func (e *Engine) SelectCharacter(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, character string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, p, err := e.member(ctx, roomID, playerID)
	if err != nil {
		return nil, err
	}

	p.Character = &character

	transition := r.EvaluateTransition()
	if err := e.registry.Save(ctx, r); err != nil {
		return nil, err
	}

	if transition != nil {
		e.logger.Info("all characters selected, starting game",
			slog.String("room", string(roomID)))
	}
	return &Result{Room: r, RoomID: roomID, Player: p, Transition: transition}, nil
}

// SetReady sets a player's readiness and evaluates the ready-triggered
// edges (intro/study -> challenge, level_complete -> intro)
func (e *Engine) SetReady(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, ready bool) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, p, err := e.member(ctx, roomID, playerID)
	if err != nil {
		return nil, err
	}

	p.IsReady = ready

	transition := r.EvaluateTransition()
	if err := e.registry.Save(ctx, r); err != nil {
		return nil, err
	}

	if transition != nil {
		e.logger.Info("synchronization checkpoint passed",
			slog.String("room", string(roomID)),
			slog.String("from", string(transition.From)),
			slog.String("to", string(transition.To)))
	}
	return &Result{Room: r, RoomID: roomID, Player: p, Transition: transition}, nil
}

// SubmitAnswer records a challenge submission, applying the placeholder
// score increment, and evaluates challenge completion
func (e *Engine) SubmitAnswer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, p, err := e.member(ctx, roomID, playerID)
	if err != nil {
		return nil, err
	}

	p.Score += ScoreIncrement
	p.Submitted = true

	transition := r.EvaluateTransition()
	if err := e.registry.Save(ctx, r); err != nil {
		return nil, err
	}

	if transition != nil {
		e.logger.Info("challenge complete",
			slog.String("room", string(roomID)))
	}
	return &Result{Room: r, RoomID: roomID, Player: p, Transition: transition}, nil
}

// Disconnect removes a player from whichever room contains them. Rooms are
// scanned in id order and only the first match is touched. An unknown
// player is a no-op, returned as a nil result.
func (e *Engine) Disconnect(ctx context.Context, playerID model.PlayerID) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.registry.FindPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	return e.removeLocked(ctx, r, playerID)
}

// member fetches a room and the acting player within it
func (e *Engine) member(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*model.Room, *model.Player, error) {
	r, err := e.registry.Get(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	p := r.Player(playerID)
	if p == nil {
		return nil, nil, model.ErrPlayerNotInRoom
	}
	return r, p, nil
}

// removeLocked takes a player out of a room, deletes the room if it
// emptied, and otherwise re-evaluates transitions: the departing player may
// have been the last one blocking a checkpoint.
func (e *Engine) removeLocked(ctx context.Context, r *model.Room, playerID model.PlayerID) (*Result, error) {
	p := r.Player(playerID)
	if p == nil {
		return nil, model.ErrPlayerNotInRoom
	}
	delete(r.Players, playerID)

	if r.IsEmpty() {
		if err := e.registry.Remove(ctx, r.ID); err != nil {
			return nil, err
		}
		e.logger.Info("player left, room empty",
			slog.String("room", string(r.ID)),
			slog.String("player", string(playerID)))
		return &Result{RoomID: r.ID, Player: p, RoomDeleted: true}, nil
	}

	transition := r.EvaluateTransition()
	if err := e.registry.Save(ctx, r); err != nil {
		return nil, err
	}

	e.logger.Info("player left",
		slog.String("room", string(r.ID)),
		slog.String("player", string(playerID)))
	return &Result{Room: r, RoomID: r.ID, Player: p, Transition: transition}, nil
}

// IsValidation reports whether an error is a client-facing validation
// failure that should be surfaced to the originator rather than logged as
// a server fault.
func IsValidation(err error) bool {
	return errors.Is(err, model.ErrRoomNotFound) ||
		errors.Is(err, model.ErrRoomFull) ||
		errors.Is(err, model.ErrAlreadyInRoom)
}
