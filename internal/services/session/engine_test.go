package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/netznav/navigator/internal/dependencies/mocks"
	"github.com/netznav/navigator/internal/model"
	"github.com/netznav/navigator/internal/services/room"
	"github.com/netznav/navigator/internal/storage/memory"
	"github.com/netznav/navigator/internal/testutil"
)

type EngineSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *room.Registry
	engine   *Engine
	ctx      context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = room.NewRegistry(s.storage, s.clock, s.random, testutil.NopLogger())
	s.engine = NewEngine(s.registry, testutil.NopLogger())
	s.ctx = context.Background()
}

// createRoom makes a room with the given number of members: conn-1 creates
// and conn-2..conn-n join.
func (s *EngineSuite) createRoom(members int) model.RoomID {
	s.random.QueueCodes("ROOM01")
	res, err := s.engine.CreateRoom(s.ctx, "conn-1", "Player1")
	s.Require().NoError(err)

	for i := 2; i <= members; i++ {
		id := model.PlayerID(fmt.Sprintf("conn-%d", i))
		_, err := s.engine.Join(s.ctx, res.RoomID, id, fmt.Sprintf("Player%d", i))
		s.Require().NoError(err)
	}
	return res.RoomID
}

// room fetches the current persisted state of a room
func (s *EngineSuite) room(id model.RoomID) *model.Room {
	r, err := s.registry.Get(s.ctx, id)
	s.Require().NoError(err)
	return r
}

// selectAll gives every member a character; returns the last result
func (s *EngineSuite) selectAll(roomID model.RoomID, members int) *Result {
	var last *Result
	for i := 1; i <= members; i++ {
		id := model.PlayerID(fmt.Sprintf("conn-%d", i))
		res, err := s.engine.SelectCharacter(s.ctx, roomID, id, fmt.Sprintf("char-%d", i))
		s.Require().NoError(err)
		last = res
	}
	return last
}

// readyAll marks every member ready; returns the last result
func (s *EngineSuite) readyAll(roomID model.RoomID, members int) *Result {
	var last *Result
	for i := 1; i <= members; i++ {
		id := model.PlayerID(fmt.Sprintf("conn-%d", i))
		res, err := s.engine.SetReady(s.ctx, roomID, id, true)
		s.Require().NoError(err)
		last = res
	}
	return last
}

// CreateRoom and Join

func (s *EngineSuite) TestCreateRoomInitialState() {
	roomID := s.createRoom(1)
	r := s.room(roomID)

	s.Equal(model.LevelStateWaiting, r.Game.LevelState)
	s.Equal(0, r.Game.LevelIndex)
	s.Len(r.Players, 1)
}

func (s *EngineSuite) TestCreateRoomWhileInRoom() {
	roomID := s.createRoom(1)

	_, err := s.engine.CreateRoom(s.ctx, "conn-1", "Player1")
	s.ErrorIs(err, model.ErrAlreadyInRoom)

	// Original room untouched
	s.Len(s.room(roomID).Players, 1)
}

func (s *EngineSuite) TestJoinRoomNotFound() {
	_, err := s.engine.Join(s.ctx, "NOPE", "conn-9", "Ghost")
	s.ErrorIs(err, model.ErrRoomNotFound)

	ids, _ := s.registry.ListIDs(s.ctx)
	s.Empty(ids)
}

func (s *EngineSuite) TestJoinRoomFull() {
	roomID := s.createRoom(model.DefaultMaxPlayers)

	_, err := s.engine.Join(s.ctx, roomID, "conn-9", "Latecomer")
	s.ErrorIs(err, model.ErrRoomFull)
	s.Len(s.room(roomID).Players, model.DefaultMaxPlayers)
}

func (s *EngineSuite) TestJoinTwiceRejected() {
	roomID := s.createRoom(2)

	_, err := s.engine.Join(s.ctx, roomID, "conn-2", "Player2")
	s.ErrorIs(err, model.ErrAlreadyInRoom)
	s.Len(s.room(roomID).Players, 2)
}

func (s *EngineSuite) TestJoinDefaultsName() {
	roomID := s.createRoom(1)

	res, err := s.engine.Join(s.ctx, roomID, "abcd1234", "")
	s.Require().NoError(err)
	s.Equal("Player_abcd", res.Player.Name)
}

func (s *EngineSuite) TestCapacityNeverExceeded() {
	roomID := s.createRoom(model.DefaultMaxPlayers)

	for i := 0; i < 3; i++ {
		_, err := s.engine.Join(s.ctx, roomID, model.PlayerID(fmt.Sprintf("late-%d", i)), "X")
		s.ErrorIs(err, model.ErrRoomFull)
	}
	s.Len(s.room(roomID).Players, model.DefaultMaxPlayers)
}

// Leave

func (s *EngineSuite) TestLeaveRemovesPlayer() {
	roomID := s.createRoom(3)

	res, err := s.engine.Leave(s.ctx, roomID, "conn-2")
	s.Require().NoError(err)
	s.False(res.RoomDeleted)
	s.Len(s.room(roomID).Players, 2)
	s.Nil(s.room(roomID).Player("conn-2"))
}

func (s *EngineSuite) TestLeaveLastPlayerDeletesRoom() {
	roomID := s.createRoom(1)

	res, err := s.engine.Leave(s.ctx, roomID, "conn-1")
	s.Require().NoError(err)
	s.True(res.RoomDeleted)

	_, err = s.registry.Get(s.ctx, roomID)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *EngineSuite) TestLeaveUnknownPlayer() {
	roomID := s.createRoom(2)

	_, err := s.engine.Leave(s.ctx, roomID, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotInRoom)
	s.Len(s.room(roomID).Players, 2)
}

func (s *EngineSuite) TestLeaveOfLastBlockerTriggersTransition() {
	roomID := s.createRoom(3)
	s.selectAll(roomID, 3)

	// Two of three ready up in intro; the third leaves instead
	_, _ = s.engine.SetReady(s.ctx, roomID, "conn-1", true)
	_, _ = s.engine.SetReady(s.ctx, roomID, "conn-2", true)

	res, err := s.engine.Leave(s.ctx, roomID, "conn-3")
	s.Require().NoError(err)
	s.Require().NotNil(res.Transition)
	s.Equal(model.LevelStateChallenge, res.Transition.To)
	s.Equal(model.LevelStateChallenge, s.room(roomID).Game.LevelState)
}

// waiting -> intro

func (s *EngineSuite) TestAllCharactersSelectedStartsGame() {
	roomID := s.createRoom(3)

	res, err := s.engine.SelectCharacter(s.ctx, roomID, "conn-1", "owl")
	s.Require().NoError(err)
	s.Nil(res.Transition)

	res, err = s.engine.SelectCharacter(s.ctx, roomID, "conn-2", "fox")
	s.Require().NoError(err)
	s.Nil(res.Transition)
	s.Equal(model.LevelStateWaiting, s.room(roomID).Game.LevelState)

	res, err = s.engine.SelectCharacter(s.ctx, roomID, "conn-3", "bear")
	s.Require().NoError(err)
	s.Require().NotNil(res.Transition)
	s.Equal(model.LevelStateWaiting, res.Transition.From)
	s.Equal(model.LevelStateIntro, res.Transition.To)
	s.Equal(model.LevelStateIntro, s.room(roomID).Game.LevelState)
}

func (s *EngineSuite) TestCharacterSelectionOrderIndependent() {
	roomID := s.createRoom(3)

	// Different order from the other test; only the last selection fires
	for _, id := range []model.PlayerID{"conn-3", "conn-1"} {
		res, err := s.engine.SelectCharacter(s.ctx, roomID, id, "owl")
		s.Require().NoError(err)
		s.Nil(res.Transition)
	}
	res, err := s.engine.SelectCharacter(s.ctx, roomID, "conn-2", "owl")
	s.Require().NoError(err)
	s.NotNil(res.Transition)
}

func (s *EngineSuite) TestReselectDoesNotRetrigger() {
	roomID := s.createRoom(2)
	s.selectAll(roomID, 2)
	s.Equal(model.LevelStateIntro, s.room(roomID).Game.LevelState)

	// Changing character in intro must not re-fire the waiting edge
	res, err := s.engine.SelectCharacter(s.ctx, roomID, "conn-1", "fox")
	s.Require().NoError(err)
	s.Nil(res.Transition)
	s.Equal(model.LevelStateIntro, s.room(roomID).Game.LevelState)
}

// intro/study -> challenge

func (s *EngineSuite) TestAllReadyStartsChallenge() {
	roomID := s.createRoom(3)
	s.selectAll(roomID, 3)

	res := s.readyAll(roomID, 3)
	s.Require().NotNil(res.Transition)
	s.Equal(model.LevelStateIntro, res.Transition.From)
	s.Equal(model.LevelStateChallenge, res.Transition.To)

	r := s.room(roomID)
	s.Equal(model.LevelStateChallenge, r.Game.LevelState)
	for _, p := range r.Players {
		s.False(p.IsReady, "readiness must reset at the checkpoint")
	}
}

func (s *EngineSuite) TestUnreadyBlocksChallenge() {
	roomID := s.createRoom(2)
	s.selectAll(roomID, 2)

	_, _ = s.engine.SetReady(s.ctx, roomID, "conn-1", true)
	res, err := s.engine.SetReady(s.ctx, roomID, "conn-2", true)
	s.Require().NoError(err)
	s.Require().NotNil(res.Transition)

	// Back in a fresh intro-like state: toggling ready off then on again
	roomID2 := model.RoomID("ROOM02")
	s.random.QueueCodes(string(roomID2))
	res2, err := s.engine.CreateRoom(s.ctx, "solo-1", "Solo")
	s.Require().NoError(err)
	_, _ = s.engine.Join(s.ctx, res2.RoomID, "solo-2", "Solo2")
	s.selectAllIDs(res2.RoomID, "solo-1", "solo-2")

	_, _ = s.engine.SetReady(s.ctx, res2.RoomID, "solo-1", true)
	down, err := s.engine.SetReady(s.ctx, res2.RoomID, "solo-1", false)
	s.Require().NoError(err)
	s.Nil(down.Transition)

	up, err := s.engine.SetReady(s.ctx, res2.RoomID, "solo-2", true)
	s.Require().NoError(err)
	s.Nil(up.Transition, "one player un-readied, checkpoint must hold")
	s.Equal(model.LevelStateIntro, s.room(res2.RoomID).Game.LevelState)
}

func (s *EngineSuite) selectAllIDs(roomID model.RoomID, ids ...model.PlayerID) {
	for _, id := range ids {
		_, err := s.engine.SelectCharacter(s.ctx, roomID, id, "owl")
		s.Require().NoError(err)
	}
}

// challenge -> level_complete

func (s *EngineSuite) TestAllSubmittedCompletesChallenge() {
	roomID := s.createRoom(2)
	s.selectAll(roomID, 2)
	s.readyAll(roomID, 2)
	s.Equal(model.LevelStateChallenge, s.room(roomID).Game.LevelState)

	res, err := s.engine.SubmitAnswer(s.ctx, roomID, "conn-1")
	s.Require().NoError(err)
	s.Nil(res.Transition)
	s.Equal(ScoreIncrement, res.Player.Score)

	res, err = s.engine.SubmitAnswer(s.ctx, roomID, "conn-2")
	s.Require().NoError(err)
	s.Require().NotNil(res.Transition)
	s.Equal(model.LevelStateChallenge, res.Transition.From)
	s.Equal(model.LevelStateLevelComplete, res.Transition.To)

	r := s.room(roomID)
	for _, p := range r.Players {
		s.False(p.Submitted, "submissions must reset for the next challenge")
	}
}

func (s *EngineSuite) TestScoreAccumulates() {
	roomID := s.createRoom(2)
	s.selectAll(roomID, 2)
	s.readyAll(roomID, 2)

	_, _ = s.engine.SubmitAnswer(s.ctx, roomID, "conn-1")
	res, err := s.engine.SubmitAnswer(s.ctx, roomID, "conn-1")
	s.Require().NoError(err)
	s.Equal(2*ScoreIncrement, res.Player.Score)
	s.Nil(res.Transition, "conn-2 has not submitted")
}

// level_complete -> intro

func (s *EngineSuite) TestNextLevelIncrementsIndexAndResetsReadiness() {
	roomID := s.createRoom(2)
	s.selectAll(roomID, 2)
	s.readyAll(roomID, 2)
	_, _ = s.engine.SubmitAnswer(s.ctx, roomID, "conn-1")
	_, _ = s.engine.SubmitAnswer(s.ctx, roomID, "conn-2")
	s.Equal(model.LevelStateLevelComplete, s.room(roomID).Game.LevelState)

	res := s.readyAll(roomID, 2)
	s.Require().NotNil(res.Transition)
	s.Equal(model.LevelStateLevelComplete, res.Transition.From)
	s.Equal(model.LevelStateIntro, res.Transition.To)

	r := s.room(roomID)
	s.Equal(1, r.Game.LevelIndex)
	s.Equal(model.LevelStateIntro, r.Game.LevelState)
	for _, p := range r.Players {
		s.False(p.IsReady)
	}
}

func (s *EngineSuite) TestFullLevelCycle() {
	roomID := s.createRoom(2)
	s.selectAll(roomID, 2)

	for level := 0; level < 3; level++ {
		s.Equal(level, s.room(roomID).Game.LevelIndex)

		s.readyAll(roomID, 2)
		s.Equal(model.LevelStateChallenge, s.room(roomID).Game.LevelState)

		_, _ = s.engine.SubmitAnswer(s.ctx, roomID, "conn-1")
		_, _ = s.engine.SubmitAnswer(s.ctx, roomID, "conn-2")
		s.Equal(model.LevelStateLevelComplete, s.room(roomID).Game.LevelState)

		s.readyAll(roomID, 2)
		s.Equal(model.LevelStateIntro, s.room(roomID).Game.LevelState)
		s.Equal(level+1, s.room(roomID).Game.LevelIndex)
	}
}

// Disconnect

func (s *EngineSuite) TestDisconnectRemovesFromRoom() {
	roomID := s.createRoom(3)

	res, err := s.engine.Disconnect(s.ctx, "conn-2")
	s.Require().NoError(err)
	s.Require().NotNil(res)
	s.Equal(roomID, res.RoomID)
	s.Len(s.room(roomID).Players, 2)
}

func (s *EngineSuite) TestDisconnectLastPlayerDeletesRoom() {
	roomID := s.createRoom(1)

	res, err := s.engine.Disconnect(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.Require().NotNil(res)
	s.True(res.RoomDeleted)

	_, err = s.registry.Get(s.ctx, roomID)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *EngineSuite) TestDisconnectUnknownPlayerIsNoop() {
	s.createRoom(2)

	res, err := s.engine.Disconnect(s.ctx, "ghost")
	s.Require().NoError(err)
	s.Nil(res)
}

// Stale-player leniency

func (s *EngineSuite) TestActionsOnStalePlayerFail() {
	roomID := s.createRoom(2)
	_, _ = s.engine.Leave(s.ctx, roomID, "conn-2")

	_, err := s.engine.SelectCharacter(s.ctx, roomID, "conn-2", "owl")
	s.ErrorIs(err, model.ErrPlayerNotInRoom)

	_, err = s.engine.SetReady(s.ctx, roomID, "conn-2", true)
	s.ErrorIs(err, model.ErrPlayerNotInRoom)

	_, err = s.engine.SubmitAnswer(s.ctx, roomID, "conn-2")
	s.ErrorIs(err, model.ErrPlayerNotInRoom)
}

func (s *EngineSuite) TestActionsOnStaleRoomFail() {
	roomID := s.createRoom(1)
	_, _ = s.engine.Leave(s.ctx, roomID, "conn-1")

	_, err := s.engine.SetReady(s.ctx, roomID, "conn-1", true)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// End-to-end scenario from the protocol description: create, two joins,
// three selections, game starts.

func (s *EngineSuite) TestCreateJoinSelectScenario() {
	s.random.QueueCodes("R1AAAA")
	created, err := s.engine.CreateRoom(s.ctx, "conn-1", "Alice")
	s.Require().NoError(err)
	s.Equal(model.LevelStateWaiting, created.Room.Game.LevelState)
	s.Equal(0, created.Room.Game.LevelIndex)

	_, err = s.engine.Join(s.ctx, created.RoomID, "conn-2", "Bob")
	s.Require().NoError(err)
	joined, err := s.engine.Join(s.ctx, created.RoomID, "conn-3", "Cleo")
	s.Require().NoError(err)

	s.Len(joined.Room.Players, 3)
	for _, p := range joined.Room.Players {
		s.Nil(p.Character)
	}

	last := s.selectAll(created.RoomID, 3)
	s.Require().NotNil(last.Transition)
	s.Equal(model.LevelStateIntro, last.Room.Game.LevelState)
}
