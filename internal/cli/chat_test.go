package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/sevahub/relay/internal/protocol"
	"github.com/sevahub/relay/internal/signaling"
)

func TestChatDrainsSignalingTraffic(t *testing.T) {
	h := signaling.NewHandler(nil)
	lines := make(chan string, 8)
	go renderEvents(h, "me", lines)
	defer close(h.Done)

	// A room member running a call floods the room with signaling events.
	// Chat ignores them, but they must keep flowing or the event router
	// wedges and chat lines stop.
	for i := 0; i < 100; i++ {
		select {
		case h.Candidates <- &protocol.Event{Type: protocol.EventICECandidate}:
		case <-time.After(time.Second):
			t.Fatal("signaling event not drained; chat would wedge")
		}
	}

	raw, err := protocol.Raw(ChatMessage{Sender: "peer", Text: "still here"})
	if err != nil {
		t.Fatal(err)
	}
	h.Messages <- &protocol.Event{Type: protocol.EventReceiveMessage, Message: raw}

	select {
	case line := <-lines:
		if !strings.Contains(line, "still here") {
			t.Errorf("line = %q, want the chat message", line)
		}
	case <-time.After(time.Second):
		t.Fatal("chat line never rendered after signaling flood")
	}
}
