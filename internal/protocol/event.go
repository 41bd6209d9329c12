// Package protocol defines the JSON envelope exchanged between the relay
// server and its clients. Every websocket frame, in either direction,
// carries exactly one Event.
package protocol

import "encoding/json"

// Event types sent by clients.
const (
	EventJoinRoom     = "joinRoom"
	EventSendMessage  = "sendMessage"
	EventOffer        = "webrtc-offer"
	EventAnswer       = "webrtc-answer"
	EventICECandidate = "webrtc-ice-candidate"
)

// Event types delivered to room members. The webrtc-* names are reused in
// both directions; outbound copies additionally carry From.
const (
	EventUserJoined     = "user-joined"
	EventReceiveMessage = "receiveMessage"
)

// Event is the wire envelope. Payload fields are raw JSON because the relay
// never interprets them; it only decides who receives them.
type Event struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`

	User      json.RawMessage `json:"user,omitempty"`
	Message   json.RawMessage `json:"message,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`

	// SocketID identifies the new member in a user-joined notification.
	SocketID string `json:"socketId,omitempty"`

	// From identifies the originating peer on relayed signaling events so
	// the recipient knows which peer to address in its reply.
	From string `json:"from,omitempty"`
}

// Raw marshals v for use as one of the payload fields.
func Raw(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
