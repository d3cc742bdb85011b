package e2e_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/netznav/navigator/internal/api"
	"github.com/netznav/navigator/internal/factory"
	"github.com/netznav/navigator/internal/protocol"
	"github.com/netznav/navigator/internal/testutil"
)

const eventTimeout = 5 * time.Second

// startTestServer runs the fully wired application on a test listener
func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	app, err := factory.New(factory.Config{Logger: testutil.NopLogger()})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		Registry:    app.Registry,
		Connections: app.Hub,
		Socket:      app.Socket,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// wsClient is a test participant connected over a real websocket
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func connect(t *testing.T, server *httptest.Server) *wsClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(event protocol.EventName, payload any) {
	c.t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(protocol.Envelope{Event: event, Payload: data}))
}

// waitFor reads frames until the named event arrives, skipping others
func (c *wsClient) waitFor(event protocol.EventName) json.RawMessage {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(eventTimeout)))
	for {
		var env protocol.Envelope
		require.NoError(c.t, c.conn.ReadJSON(&env), "waiting for %s", event)
		if env.Event == event {
			return env.Payload
		}
	}
}

func (c *wsClient) waitForSnapshot(event protocol.EventName) protocol.RoomSnapshot {
	c.t.Helper()

	var snapshot protocol.RoomSnapshot
	require.NoError(c.t, json.Unmarshal(c.waitFor(event), &snapshot))
	return snapshot
}

func TestFullSessionOverWebsocket(t *testing.T) {
	server := startTestServer(t)

	alice := connect(t, server)
	bob := connect(t, server)

	// Alice creates a room
	alice.send(protocol.EventCreateRoom, protocol.CreateRoomPayload{PlayerName: "Alice"})
	created := alice.waitForSnapshot(protocol.EventRoomCreated)
	require.Len(t, created.RoomID, 6)
	require.Equal(t, "waiting", created.GameState.LevelState)
	roomID := created.RoomID

	// Bob joins; both sides see the membership change
	bob.send(protocol.EventJoinRoom, protocol.JoinRoomPayload{RoomID: roomID, PlayerName: "Bob"})
	joined := bob.waitForSnapshot(protocol.EventJoinedRoom)
	require.Len(t, joined.Players, 2)

	var arrived protocol.Player
	require.NoError(t, json.Unmarshal(alice.waitFor(protocol.EventPlayerJoined), &arrived))
	require.Equal(t, "Bob", arrived.Name)

	// Character selection; the last pick starts the game for everyone
	alice.send(protocol.EventSelectCharacter, protocol.SelectCharacterPayload{RoomID: roomID, Character: "owl"})
	bob.send(protocol.EventSelectCharacter, protocol.SelectCharacterPayload{RoomID: roomID, Character: "fox"})

	started := alice.waitForSnapshot(protocol.EventStartGame)
	require.Equal(t, "intro", started.GameState.LevelState)
	bob.waitFor(protocol.EventStartGame)

	// Both ready up; the challenge starts
	alice.send(protocol.EventPlayerReady, protocol.PlayerReadyPayload{RoomID: roomID, ReadyState: true})
	bob.send(protocol.EventPlayerReady, protocol.PlayerReadyPayload{RoomID: roomID, ReadyState: true})

	challenge := bob.waitForSnapshot(protocol.EventStartChallenge)
	require.Equal(t, "challenge", challenge.GameState.LevelState)
	alice.waitFor(protocol.EventStartChallenge)

	// Both submit; the level completes and scores move
	alice.send(protocol.EventSubmitAnswer, protocol.SubmitAnswerPayload{RoomID: roomID})
	bob.send(protocol.EventSubmitAnswer, protocol.SubmitAnswerPayload{RoomID: roomID})

	complete := alice.waitForSnapshot(protocol.EventChallengeComplete)
	require.Equal(t, "level_complete", complete.GameState.LevelState)
	for _, p := range complete.Players {
		require.Equal(t, 10, p.Score)
	}
	bob.waitFor(protocol.EventChallengeComplete)

	// Bob leaves; Alice is told
	bob.send(protocol.EventLeaveRoom, protocol.LeaveRoomPayload{RoomID: roomID})

	var left protocol.PlayerLeftPayload
	require.NoError(t, json.Unmarshal(alice.waitFor(protocol.EventPlayerLeft), &left))
	require.Equal(t, "Bob", left.PlayerName)
}

func TestJoinUnknownRoomOverWebsocket(t *testing.T) {
	server := startTestServer(t)

	client := connect(t, server)
	client.send(protocol.EventJoinRoom, protocol.JoinRoomPayload{RoomID: "NOPE99", PlayerName: "Ghost"})

	var errPayload protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(client.waitFor(protocol.EventError), &errPayload))
	require.Equal(t, "Room NOPE99 not found.", errPayload.Message)
}

func TestDisconnectNotifiesRoomOverWebsocket(t *testing.T) {
	server := startTestServer(t)

	alice := connect(t, server)
	bob := connect(t, server)

	alice.send(protocol.EventCreateRoom, protocol.CreateRoomPayload{PlayerName: "Alice"})
	created := alice.waitForSnapshot(protocol.EventRoomCreated)

	bob.send(protocol.EventJoinRoom, protocol.JoinRoomPayload{RoomID: created.RoomID, PlayerName: "Bob"})
	bob.waitFor(protocol.EventJoinedRoom)
	alice.waitFor(protocol.EventPlayerJoined)

	// Bob's socket drops without a leave message
	require.NoError(t, bob.conn.Close())

	var left protocol.PlayerLeftPayload
	require.NoError(t, json.Unmarshal(alice.waitFor(protocol.EventPlayerLeft), &left))
	require.Equal(t, "Bob", left.PlayerName)

	state := alice.waitForSnapshot(protocol.EventGameStateUpdate)
	require.Len(t, state.Players, 1)
}

func TestInspectionAPIAgainstLiveRooms(t *testing.T) {
	server := startTestServer(t)

	alice := connect(t, server)
	alice.send(protocol.EventCreateRoom, protocol.CreateRoomPayload{PlayerName: "Alice"})
	created := alice.waitForSnapshot(protocol.EventRoomCreated)

	resp, err := http.Get(server.URL + "/api/v1/rooms/" + created.RoomID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var room struct {
		RoomID  string                     `json:"roomId"`
		Players map[string]protocol.Player `json:"players"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&room))
	require.Equal(t, created.RoomID, room.RoomID)
	require.Len(t, room.Players, 1)
}
