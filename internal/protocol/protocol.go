// Package protocol defines the wire format spoken over the realtime
// transport: the inbound message envelope, per-event payloads, and the
// outbound room snapshot. Field names are camelCase to match the client
// contract.
package protocol

import "encoding/json"

// EventName identifies a message type on the wire
type EventName string

// Inbound events (client -> server)
const (
	EventCreateRoom      EventName = "createRoom"
	EventJoinRoom        EventName = "joinRoom"
	EventLeaveRoom       EventName = "leaveRoom"
	EventSelectCharacter EventName = "selectCharacter"
	EventPlayerReady     EventName = "playerReady"
	EventSubmitAnswer    EventName = "submitAnswer"
)

// Outbound events (server -> client)
const (
	EventRoomCreated             EventName = "roomCreated"
	EventJoinedRoom              EventName = "joinedRoom"
	EventPlayerJoined            EventName = "playerJoined"
	EventPlayerLeft              EventName = "playerLeft"
	EventGameStateUpdate         EventName = "gameStateUpdate"
	EventPlayerSelectedCharacter EventName = "playerSelectedCharacter"
	EventPlayerReadinessUpdate   EventName = "playerReadinessUpdate"
	EventStartGame               EventName = "startGame"
	EventStartChallenge          EventName = "startChallenge"
	EventChallengeComplete       EventName = "challengeComplete"
	EventNextLevel               EventName = "nextLevel"
	EventScoreUpdate             EventName = "scoreUpdate"
	EventError                   EventName = "error"
)

// Envelope is the framing for every message in both directions
type Envelope struct {
	Event   EventName       `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound payloads

// CreateRoomPayload is the payload for createRoom
type CreateRoomPayload struct {
	PlayerName string `json:"playerName"`
}

// JoinRoomPayload is the payload for joinRoom
type JoinRoomPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// LeaveRoomPayload is the payload for leaveRoom
type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
}

// SelectCharacterPayload is the payload for selectCharacter
type SelectCharacterPayload struct {
	RoomID    string `json:"roomId"`
	Character string `json:"character"`
}

// PlayerReadyPayload is the payload for playerReady
type PlayerReadyPayload struct {
	RoomID     string `json:"roomId"`
	ReadyState bool   `json:"readyState"`
}

// SubmitAnswerPayload is the payload for submitAnswer. The answer data is
// opaque to the server: scoring is a placeholder and real validation is an
// extension point.
type SubmitAnswerPayload struct {
	RoomID     string          `json:"roomId"`
	AnswerData json.RawMessage `json:"answerData,omitempty"`
}
