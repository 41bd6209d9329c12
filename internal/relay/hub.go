// Package relay implements the rendezvous core of the SevaHub realtime
// layer: a connection registry plus a dispatcher that fans chat and WebRTC
// signaling events out to room members. Delivery is best-effort and
// in-memory; nothing is persisted and nothing is acknowledged.
package relay

import (
	"context"
	"log/slog"

	"github.com/sevahub/relay/internal/protocol"
)

// inbound pairs a decoded event with the connection it arrived on. The
// sender identity is attached here, server-side, never taken from the
// payload.
type inbound struct {
	ev     *protocol.Event
	sender *Client
}

// Hub owns the registry and processes every connection event on a single
// goroutine, so all membership state is mutated sequentially and needs no
// locking.
type Hub struct {
	registry *Registry

	Register   chan *Client
	Unregister chan *Client
	Inbound    chan inbound
}

// NewHub creates a hub with its own registry.
func NewHub() *Hub {
	return &Hub{
		registry:   NewRegistry(),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan inbound),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled. It must be
// the only goroutine touching the registry.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.Register:
			h.registry.Add(c)
			slog.Info("client connected", "id", c.ID, "clients", h.registry.Count())

		case c := <-h.Unregister:
			h.disconnect(c)

		case in := <-h.Inbound:
			h.dispatch(in)
		}
	}
}

// disconnect removes the connection from every room it joined and stops its
// write pump. Events already queued for the connection are simply never
// delivered.
func (h *Hub) disconnect(c *Client) {
	rooms := h.registry.Remove(c.ID)
	close(c.Send)
	slog.Info("client disconnected", "id", c.ID, "rooms", len(rooms))
}

// dispatch routes one inbound event. The entire routing policy lives in
// this switch so it can be audited in one place:
//
//	joinRoom             -> existing members, sender excluded
//	sendMessage          -> whole room, sender included
//	webrtc-offer         -> other members, tagged with sender identity
//	webrtc-answer        -> other members, tagged with sender identity
//	webrtc-ice-candidate -> other members, tagged with sender identity
//
// Events missing their room or payload field are dropped without notice;
// there is no acknowledgment channel to report routing failures on.
func (h *Hub) dispatch(in inbound) {
	ev, sender := in.ev, in.sender
	if sender == nil || ev.RoomID == "" {
		return
	}

	switch ev.Type {
	case protocol.EventJoinRoom:
		if !h.registry.Join(sender.ID, ev.RoomID) {
			// Already a member; no second user-joined notification.
			return
		}
		h.relay(ev.RoomID, sender, &protocol.Event{
			Type:     protocol.EventUserJoined,
			SocketID: sender.ID,
			User:     ev.User,
		})
		slog.Info("joined room", "id", sender.ID, "room", ev.RoomID)

	case protocol.EventSendMessage:
		if ev.Message == nil {
			return
		}
		h.broadcast(ev.RoomID, &protocol.Event{
			Type:    protocol.EventReceiveMessage,
			Message: ev.Message,
		})

	case protocol.EventOffer:
		if ev.Offer == nil {
			return
		}
		h.relay(ev.RoomID, sender, &protocol.Event{
			Type:  protocol.EventOffer,
			Offer: ev.Offer,
			From:  sender.ID,
		})

	case protocol.EventAnswer:
		if ev.Answer == nil {
			return
		}
		h.relay(ev.RoomID, sender, &protocol.Event{
			Type:   protocol.EventAnswer,
			Answer: ev.Answer,
			From:   sender.ID,
		})

	case protocol.EventICECandidate:
		if ev.Candidate == nil {
			return
		}
		h.relay(ev.RoomID, sender, &protocol.Event{
			Type:      protocol.EventICECandidate,
			Candidate: ev.Candidate,
			From:      sender.ID,
		})

	default:
		slog.Debug("unknown event type", "type", ev.Type, "from", sender.ID)
	}
}

// broadcast delivers to every member of the room, the sender included.
// Chat mirrors a shared room view, so the sender sees its own message come
// back like everyone else.
func (h *Hub) broadcast(room string, ev *protocol.Event) {
	for _, m := range h.registry.Members(room) {
		h.deliver(m, ev)
	}
}

// relay delivers to every member of the room except skip.
func (h *Hub) relay(room string, skip *Client, ev *protocol.Event) {
	for _, m := range h.registry.Members(room) {
		if m == skip {
			continue
		}
		h.deliver(m, ev)
	}
}

// deliver never blocks: a recipient whose queue is full misses the event,
// and a slow connection cannot stall delivery to the rest of the room.
func (h *Hub) deliver(c *Client, ev *protocol.Event) {
	select {
	case c.Send <- ev:
	default:
		slog.Warn("send queue full, dropping event", "to", c.ID, "type", ev.Type)
	}
}
