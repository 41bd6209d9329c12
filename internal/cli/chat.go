package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sevahub/relay/internal/protocol"
	"github.com/sevahub/relay/internal/signaling"
	"github.com/sevahub/relay/internal/tui"
)

var (
	flagRoom string
	flagName string
)

// ChatMessage is the payload the terminal client puts in the message field
// of sendMessage events. The relay never looks inside it; this shape is a
// client convention shared with the web frontend.
type ChatMessage struct {
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// UserInfo is the user payload attached to joinRoom.
type UserInfo struct {
	Name string `json:"name"`
}

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"c"},
	Short:   "Join a room and chat with its members",
	Long: `Join a named room on the relay and chat with everyone in it.

Examples:
  sevahub chat --room lobby
  sevahub chat --room fundraiser-42 --name Priya`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(flagRoom, displayName())
	},
}

func displayName() string {
	if flagName != "" {
		return flagName
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "anonymous"
}

func runChat(room, name string) error {
	cfg := loadConfig()

	client := signaling.NewClient(cfg.WebSocketURL())
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()

	handler := signaling.NewHandler(client)
	go handler.Start()

	if err := joinRoom(client, room, name); err != nil {
		return err
	}

	lines := make(chan string, 64)
	go renderEvents(handler, name, lines)

	send := func(text string) error {
		raw, err := protocol.Raw(ChatMessage{Sender: name, Text: text, SentAt: time.Now()})
		if err != nil {
			return err
		}
		client.Send(&protocol.Event{
			Type:    protocol.EventSendMessage,
			RoomID:  room,
			Message: raw,
		})
		return nil
	}

	model := tui.NewChat(room, lines, send)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// joinRoom announces this client to the room.
func joinRoom(client *signaling.Client, room, name string) error {
	user, err := protocol.Raw(UserInfo{Name: name})
	if err != nil {
		return err
	}
	client.Send(&protocol.Event{
		Type:   protocol.EventJoinRoom,
		RoomID: room,
		User:   user,
	})
	return nil
}

// renderEvents turns relay events into formatted chat lines until the
// connection ends.
func renderEvents(handler *signaling.Handler, self string, lines chan<- string) {
	defer close(lines)

	for {
		select {
		case ev := <-handler.Messages:
			var msg ChatMessage
			if err := json.Unmarshal(ev.Message, &msg); err != nil {
				lines <- tui.SystemStyle.Render("* unreadable message")
				continue
			}
			style := tui.PeerStyle
			if msg.Sender == self {
				style = tui.SenderStyle
			}
			lines <- fmt.Sprintf("%s %s", style.Render(msg.Sender+":"), msg.Text)

		case ev := <-handler.UserJoined:
			var user UserInfo
			if ev.User != nil {
				json.Unmarshal(ev.User, &user)
			}
			who := user.Name
			if who == "" {
				who = shortID(ev.SocketID)
			}
			lines <- tui.SystemStyle.Render("* " + who + " joined the room")

		// Chat ignores signaling traffic, but the channels must still be
		// drained: room members running calls would otherwise fill them
		// and wedge the event router.
		case <-handler.Offers:
		case <-handler.Answers:
		case <-handler.Candidates:

		case <-handler.Done:
			return
		}
	}
}

// shortID abbreviates a connection identity for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&flagRoom, "room", "r", "", "room to join (required)")
	chatCmd.Flags().StringVarP(&flagName, "name", "n", "", "display name (defaults to $USER)")
	chatCmd.MarkFlagRequired("room")
}
