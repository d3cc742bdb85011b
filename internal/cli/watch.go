package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/netznav/navigator/internal/protocol"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool
	var playerName string

	cmd := &cobra.Command{
		Use:   "watch <code>",
		Short: "Join a room and stream its events",
		Long: `Connect to the websocket endpoint, join the room as a player, and
print every event the room broadcasts.

Note that the server has no spectator role: watch occupies a player slot
in the room for as long as it is attached.

Press Ctrl+C to leave and disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			return watchRoom(code, playerName, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().StringVar(&playerName, "name", "navctl", "Player name to join with")

	return cmd
}

// watchEvent is one received frame plus its arrival time
type watchEvent struct {
	Time    time.Time       `json:"time"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func watchRoom(code, playerName string, jsonOutput bool) error {
	conn, _, err := websocket.DefaultDialer.Dial(client.SocketURL(), nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	join, err := json.Marshal(protocol.JoinRoomPayload{RoomID: code, PlayerName: playerName})
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(protocol.Envelope{Event: protocol.EventJoinRoom, Payload: join}); err != nil {
		return fmt.Errorf("join failed: %w", err)
	}

	if !jsonOutput {
		fmt.Printf("Watching room %s as %q\n", code, playerName)
	}

	// Leave cleanly on interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		leave, _ := json.Marshal(protocol.LeaveRoomPayload{RoomID: code})
		_ = conn.WriteJSON(protocol.Envelope{Event: protocol.EventLeaveRoom, Payload: leave})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	for {
		var env protocol.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("stream ended: %w", err)
		}

		ev := watchEvent{
			Time:    time.Now(),
			Event:   string(env.Event),
			Payload: env.Payload,
		}

		if env.Event == protocol.EventError {
			var p protocol.ErrorPayload
			if err := json.Unmarshal(env.Payload, &p); err == nil {
				return fmt.Errorf("server rejected watch: %s", p.Message)
			}
		}

		if jsonOutput {
			line, _ := json.Marshal(ev)
			fmt.Println(string(line))
		} else {
			fmt.Printf("[%s] %s %s\n",
				ev.Time.Format("15:04:05"), ev.Event, string(ev.Payload))
		}
	}
}
