package signaling

import (
	"github.com/sevahub/relay/internal/protocol"
)

// Handler routes incoming relay events to per-type channels so callers can
// select on exactly the events they care about.
type Handler struct {
	client *Client

	UserJoined chan *protocol.Event
	Messages   chan *protocol.Event
	Offers     chan *protocol.Event
	Answers    chan *protocol.Event
	Candidates chan *protocol.Event

	// Done is closed when the server connection ends.
	Done chan struct{}
}

// NewHandler creates a handler for the client's incoming events.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:     client,
		UserJoined: make(chan *protocol.Event, 8),
		Messages:   make(chan *protocol.Event, 32),
		Offers:     make(chan *protocol.Event, 8),
		Answers:    make(chan *protocol.Event, 8),
		Candidates: make(chan *protocol.Event, 32),
		Done:       make(chan struct{}),
	}
}

// Start consumes incoming events until the connection ends. Run it in its
// own goroutine.
func (h *Handler) Start() {
	defer close(h.Done)

	for ev := range h.client.Incoming() {
		switch ev.Type {
		case protocol.EventUserJoined:
			h.UserJoined <- ev
		case protocol.EventReceiveMessage:
			h.Messages <- ev
		case protocol.EventOffer:
			h.Offers <- ev
		case protocol.EventAnswer:
			h.Answers <- ev
		case protocol.EventICECandidate:
			h.Candidates <- ev
		default:
			// Unknown server events are ignored; the protocol may grow.
		}
	}
}
