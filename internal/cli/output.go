package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case RoomList:
		o.printRoomList(v)
	case Stats:
		o.printStats(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Character *string `json:"character"`
	IsReady   bool    `json:"isReady"`
	Score     int     `json:"score"`
	Submitted bool    `json:"submitted"`
}

// GameState response type
type GameState struct {
	LevelIndex int    `json:"levelIndex"`
	LevelState string `json:"levelState"`
}

// Room response type
type Room struct {
	RoomID    string            `json:"roomId"`
	Players   map[string]Player `json:"players"`
	GameState GameState         `json:"gameState"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// RoomSummary response type
type RoomSummary struct {
	RoomID      string    `json:"roomId"`
	PlayerCount int       `json:"playerCount"`
	MaxPlayers  int       `json:"maxPlayers"`
	LevelIndex  int       `json:"levelIndex"`
	LevelState  string    `json:"levelState"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RoomList response type
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// Stats response type
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.RoomID)
	fmt.Printf("Level: %d (%s)\n", r.GameState.LevelIndex, r.GameState.LevelState)
	fmt.Printf("Updated: %s\n", r.UpdatedAt.Format(time.RFC3339))
	fmt.Printf("Players (%d):\n", len(r.Players))

	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := r.Players[id]
		character := "-"
		if p.Character != nil {
			character = *p.Character
		}
		ready := " "
		if p.IsReady {
			ready = "R"
		}
		fmt.Printf("  [%s] %s (%s) character=%s score=%d\n", ready, p.Name, id, character, p.Score)
	}
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No active rooms")
		return
	}
	fmt.Printf("Rooms (%d):\n", len(l.Rooms))
	for _, r := range l.Rooms {
		fmt.Printf("  %s  %d/%d players  level %d (%s)\n",
			r.RoomID, r.PlayerCount, r.MaxPlayers, r.LevelIndex, r.LevelState)
	}
}

func (o *Output) printStats(s Stats) {
	fmt.Printf("Rooms: %d\n", s.Rooms)
	fmt.Printf("Connections: %d\n", s.Connections)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
