// Package rtc builds the client-side WebRTC peer session that the relay
// bootstraps: peer connection setup, SDP and ICE glue against the relay's
// signaling events, and the msgpack control protocol spoken over the data
// channel once the peers connect directly.
package rtc

import (
	"encoding/json"

	pion "github.com/pion/webrtc/v4"

	"github.com/sevahub/relay/internal/config"
	"github.com/sevahub/relay/internal/protocol"
)

// NewPeerConnection creates a peer connection using the configured STUN and
// TURN servers.
func NewPeerConnection(cfg *config.Config) (*pion.PeerConnection, error) {
	iceServers := []pion.ICEServer{{URLs: cfg.STUNServers()}}

	if turn := cfg.TURNServers(); turn != nil {
		username, password := cfg.TURNCredentials()
		iceServers = append(iceServers, pion.ICEServer{
			URLs:       turn,
			Username:   username,
			Credential: password,
		})
	}

	pc, err := pion.NewPeerConnection(pion.Configuration{ICEServers: iceServers})
	if err != nil {
		return nil, NewError("create peer connection", err)
	}
	return pc, nil
}

// ForwardICECandidates relays every local ICE candidate to the room through
// the given send function.
func ForwardICECandidates(pc *pion.PeerConnection, room string, send func(*protocol.Event)) {
	pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil {
			return
		}
		candidate, err := protocol.Raw(c.ToJSON())
		if err != nil {
			return
		}
		send(&protocol.Event{
			Type:      protocol.EventICECandidate,
			RoomID:    room,
			Candidate: candidate,
		})
	})
}

// CreateOffer produces the local offer and installs it as the local
// description.
func CreateOffer(pc *pion.PeerConnection) (*pion.SessionDescription, error) {
	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return nil, NewError("create offer", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return nil, NewError("set local description", err)
	}
	return pc.LocalDescription(), nil
}

// AcceptOffer applies a remote offer and produces the local answer.
func AcceptOffer(pc *pion.PeerConnection, raw json.RawMessage) (*pion.SessionDescription, error) {
	var offer pion.SessionDescription
	if err := json.Unmarshal(raw, &offer); err != nil {
		return nil, NewError("parse offer", err)
	}
	if offer.Type != pion.SDPTypeOffer {
		return nil, WrapError("accept offer", ErrUnexpectedSignal, offer.Type.String())
	}
	if err := pc.SetRemoteDescription(offer); err != nil {
		return nil, NewError("set remote description", err)
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return nil, NewError("create answer", err)
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		return nil, NewError("set local description", err)
	}
	return pc.LocalDescription(), nil
}

// AcceptAnswer applies the remote answer to a connection that offered.
func AcceptAnswer(pc *pion.PeerConnection, raw json.RawMessage) error {
	var answer pion.SessionDescription
	if err := json.Unmarshal(raw, &answer); err != nil {
		return NewError("parse answer", err)
	}
	if answer.Type != pion.SDPTypeAnswer {
		return WrapError("accept answer", ErrUnexpectedSignal, answer.Type.String())
	}
	if err := pc.SetRemoteDescription(answer); err != nil {
		return NewError("set remote description", err)
	}
	return nil
}

// AddCandidate applies a relayed remote ICE candidate.
func AddCandidate(pc *pion.PeerConnection, raw json.RawMessage) error {
	var ice pion.ICECandidateInit
	if err := json.Unmarshal(raw, &ice); err != nil {
		return NewError("parse ICE candidate", err)
	}
	if err := pc.AddICECandidate(ice); err != nil {
		return NewError("add ICE candidate", err)
	}
	return nil
}

// CreateControlChannel opens the ordered control data channel on the
// offering side.
func CreateControlChannel(pc *pion.PeerConnection) (*pion.DataChannel, error) {
	ordered := true
	dc, err := pc.CreateDataChannel(ControlChannelLabel, &pion.DataChannelInit{
		Ordered: &ordered,
	})
	if err != nil {
		return nil, NewError("create data channel", err)
	}
	return dc, nil
}
