// Package dispatch routes inbound participant actions to engine operations
// and fans the resulting state out to the room's broadcast group.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/netznav/navigator/internal/model"
	"github.com/netznav/navigator/internal/protocol"
	"github.com/netznav/navigator/internal/services/session"
	"github.com/netznav/navigator/internal/transport"
)

// Dispatcher is the glue between the transport and the sync engine. One
// instance serves every connection; the engine serializes the mutations.
type Dispatcher struct {
	engine    *session.Engine
	transport transport.Transport
	logger    *slog.Logger
}

// New creates a Dispatcher
func New(engine *session.Engine, t transport.Transport, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		engine:    engine,
		transport: t,
		logger:    logger.With(slog.String("component", "dispatch")),
	}
}

// HandleMessage routes one inbound frame from a connection. Malformed
// frames and unknown events are dropped; the player id is the connection
// id.
func (d *Dispatcher) HandleMessage(ctx context.Context, conn transport.ConnID, frame []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		d.logger.Warn("dropping unparseable frame", slog.String("conn", string(conn)))
		return
	}

	switch env.Event {
	case protocol.EventCreateRoom:
		var p protocol.CreateRoomPayload
		if !d.decode(conn, env, &p) {
			return
		}
		d.createRoom(ctx, conn, p)

	case protocol.EventJoinRoom:
		var p protocol.JoinRoomPayload
		if !d.decode(conn, env, &p) {
			return
		}
		d.joinRoom(ctx, conn, p)

	case protocol.EventLeaveRoom:
		var p protocol.LeaveRoomPayload
		if !d.decode(conn, env, &p) {
			return
		}
		d.leaveRoom(ctx, conn, p)

	case protocol.EventSelectCharacter:
		var p protocol.SelectCharacterPayload
		if !d.decode(conn, env, &p) {
			return
		}
		d.selectCharacter(ctx, conn, p)

	case protocol.EventPlayerReady:
		var p protocol.PlayerReadyPayload
		if !d.decode(conn, env, &p) {
			return
		}
		d.playerReady(ctx, conn, p)

	case protocol.EventSubmitAnswer:
		var p protocol.SubmitAnswerPayload
		if !d.decode(conn, env, &p) {
			return
		}
		d.submitAnswer(ctx, conn, p)

	default:
		d.logger.Warn("unknown event",
			slog.String("conn", string(conn)),
			slog.String("event", string(env.Event)))
	}
}

// HandleDisconnect removes the connection's player from whichever room
// holds them and notifies the remaining members
func (d *Dispatcher) HandleDisconnect(ctx context.Context, conn transport.ConnID) {
	res, err := d.engine.Disconnect(ctx, model.PlayerID(conn))
	if err != nil {
		d.logger.Error("disconnect cleanup failed",
			slog.String("conn", string(conn)),
			slog.Any("error", err))
		return
	}
	if res == nil {
		// Connection was in no room
		return
	}
	d.emitDeparture(conn, res)
}

func (d *Dispatcher) createRoom(ctx context.Context, conn transport.ConnID, p protocol.CreateRoomPayload) {
	res, err := d.engine.CreateRoom(ctx, model.PlayerID(conn), p.PlayerName)
	if err != nil {
		d.reject(conn, "", err)
		return
	}

	group := string(res.RoomID)
	d.transport.Join(group, conn)
	d.transport.EmitTo(conn, protocol.EventRoomCreated, protocol.SnapshotFromRoom(res.Room))
}

func (d *Dispatcher) joinRoom(ctx context.Context, conn transport.ConnID, p protocol.JoinRoomPayload) {
	res, err := d.engine.Join(ctx, model.RoomID(p.RoomID), model.PlayerID(conn), p.PlayerName)
	if err != nil {
		d.reject(conn, p.RoomID, err)
		return
	}

	group := string(res.RoomID)
	snapshot := protocol.SnapshotFromRoom(res.Room)

	d.transport.Join(group, conn)
	d.transport.EmitTo(conn, protocol.EventJoinedRoom, snapshot)
	d.transport.EmitToGroup(group, protocol.EventPlayerJoined, protocol.PlayerFromModel(res.Player), conn)
	d.transport.EmitToGroup(group, protocol.EventGameStateUpdate, snapshot, "")
}

func (d *Dispatcher) leaveRoom(ctx context.Context, conn transport.ConnID, p protocol.LeaveRoomPayload) {
	res, err := d.engine.Leave(ctx, model.RoomID(p.RoomID), model.PlayerID(conn))
	if err != nil {
		// Stale room or player: degrade silently
		d.ignoreStale(conn, "leaveRoom", err)
		return
	}
	d.emitDeparture(conn, res)
}

func (d *Dispatcher) selectCharacter(ctx context.Context, conn transport.ConnID, p protocol.SelectCharacterPayload) {
	res, err := d.engine.SelectCharacter(ctx, model.RoomID(p.RoomID), model.PlayerID(conn), p.Character)
	if err != nil {
		d.ignoreStale(conn, "selectCharacter", err)
		return
	}

	group := string(res.RoomID)
	d.transport.EmitToGroup(group, protocol.EventPlayerSelectedCharacter, protocol.CharacterSelectedPayload{
		PlayerID:  string(conn),
		Character: p.Character,
	}, "")
	d.emitState(group, res)
}

func (d *Dispatcher) playerReady(ctx context.Context, conn transport.ConnID, p protocol.PlayerReadyPayload) {
	res, err := d.engine.SetReady(ctx, model.RoomID(p.RoomID), model.PlayerID(conn), p.ReadyState)
	if err != nil {
		d.ignoreStale(conn, "playerReady", err)
		return
	}

	group := string(res.RoomID)
	d.transport.EmitToGroup(group, protocol.EventPlayerReadinessUpdate, protocol.ReadinessUpdatePayload{
		PlayerID: string(conn),
		IsReady:  p.ReadyState,
	}, "")
	d.emitState(group, res)
}

func (d *Dispatcher) submitAnswer(ctx context.Context, conn transport.ConnID, p protocol.SubmitAnswerPayload) {
	res, err := d.engine.SubmitAnswer(ctx, model.RoomID(p.RoomID), model.PlayerID(conn))
	if err != nil {
		d.ignoreStale(conn, "submitAnswer", err)
		return
	}

	group := string(res.RoomID)
	d.transport.EmitToGroup(group, protocol.EventScoreUpdate, protocol.ScoreUpdatePayload{
		PlayerID: string(conn),
		NewScore: res.Player.Score,
	}, "")
	d.emitState(group, res)
}

// emitState broadcasts the full snapshot and, when a stage transition
// fired, the transition's own event carrying the same snapshot
func (d *Dispatcher) emitState(group string, res *session.Result) {
	snapshot := protocol.SnapshotFromRoom(res.Room)
	d.transport.EmitToGroup(group, protocol.EventGameStateUpdate, snapshot, "")

	if res.Transition == nil {
		return
	}
	if event, ok := transitionEvent(res.Transition); ok {
		d.transport.EmitToGroup(group, event, snapshot, "")
	}
}

// emitDeparture handles the shared tail of leave and disconnect: drop the
// connection from the group, tell the remaining members, and broadcast the
// new state unless the room died with the departure.
func (d *Dispatcher) emitDeparture(conn transport.ConnID, res *session.Result) {
	group := string(res.RoomID)
	d.transport.Leave(group, conn)
	d.transport.EmitToGroup(group, protocol.EventPlayerLeft, protocol.PlayerLeftPayload{
		PlayerID:   string(res.Player.ID),
		PlayerName: res.Player.Name,
	}, "")

	if res.RoomDeleted {
		return
	}
	d.emitState(group, res)
}

// transitionEvent maps a stage transition to its broadcast event name
func transitionEvent(t *model.Transition) (protocol.EventName, bool) {
	switch t.To {
	case model.LevelStateIntro:
		if t.From == model.LevelStateWaiting {
			return protocol.EventStartGame, true
		}
		return protocol.EventNextLevel, true
	case model.LevelStateChallenge:
		return protocol.EventStartChallenge, true
	case model.LevelStateLevelComplete:
		return protocol.EventChallengeComplete, true
	}
	return "", false
}

// reject surfaces a join/create validation failure to the originator only
func (d *Dispatcher) reject(conn transport.ConnID, roomID string, err error) {
	if !session.IsValidation(err) {
		d.logger.Error("operation failed",
			slog.String("conn", string(conn)),
			slog.Any("error", err))
		return
	}
	d.transport.EmitTo(conn, protocol.EventError, protocol.ErrorPayload{
		Message: userMessage(roomID, err),
	})
}

// ignoreStale treats room/player lookup failures on in-flight actions as
// expected races with leave and disconnect: no broadcast, no error notice
func (d *Dispatcher) ignoreStale(conn transport.ConnID, action string, err error) {
	if errors.Is(err, model.ErrRoomNotFound) || errors.Is(err, model.ErrPlayerNotInRoom) {
		d.logger.Debug("stale action ignored",
			slog.String("conn", string(conn)),
			slog.String("action", action))
		return
	}
	d.logger.Error("operation failed",
		slog.String("conn", string(conn)),
		slog.String("action", action),
		slog.Any("error", err))
}

func userMessage(roomID string, err error) string {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return fmt.Sprintf("Room %s not found.", roomID)
	case errors.Is(err, model.ErrRoomFull):
		return fmt.Sprintf("Room %s is full.", roomID)
	case errors.Is(err, model.ErrAlreadyInRoom):
		return "Already in a room."
	default:
		return "Something went wrong."
	}
}

// decode unmarshals an event payload, dropping the frame on failure
func (d *Dispatcher) decode(conn transport.ConnID, env protocol.Envelope, target any) bool {
	if len(env.Payload) == 0 {
		// Payload-less frames decode as zero values
		return true
	}
	if err := json.Unmarshal(env.Payload, target); err != nil {
		d.logger.Warn("dropping frame with bad payload",
			slog.String("conn", string(conn)),
			slog.String("event", string(env.Event)),
			slog.Any("error", fmt.Errorf("decode payload: %w", err)))
		return false
	}
	return true
}
