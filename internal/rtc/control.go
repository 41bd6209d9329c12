package rtc

import (
	pion "github.com/pion/webrtc/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// ControlChannelLabel names the data channel the peers converse on.
const ControlChannelLabel = "control"

// Control message types.
const (
	ControlHello = "hello"
	ControlChat  = "chat"
	ControlPing  = "ping"
	ControlPong  = "pong"
	ControlBye   = "bye"
)

// ControlMessage is the msgpack frame exchanged on the control channel.
type ControlMessage struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload,omitempty"`
}

// HelloPayload introduces a peer after the channel opens.
type HelloPayload struct {
	Name    string `msgpack:"name"`
	Version string `msgpack:"version"`
}

// ChatPayload carries a direct peer-to-peer text message.
type ChatPayload struct {
	Text string `msgpack:"text"`
}

// PingPayload measures round-trip time; Pong echoes it back unchanged.
type PingPayload struct {
	Nonce  uint64 `msgpack:"nonce"`
	SentAt int64  `msgpack:"sentAt"` // unix nanoseconds
}

// NewControlMessage builds a frame with a marshalled payload.
func NewControlMessage(msgType string, payload any) (ControlMessage, error) {
	if payload == nil {
		return ControlMessage{Type: msgType}, nil
	}
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return ControlMessage{}, NewError("marshal control payload", err)
	}
	return ControlMessage{Type: msgType, Payload: b}, nil
}

// DecodePayload decodes the frame payload into v.
func (m ControlMessage) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

// SendControl marshals and sends a frame over the data channel.
func SendControl(dc *pion.DataChannel, msgType string, payload any) error {
	if dc == nil {
		return ErrChannelNotOpen
	}
	msg, err := NewControlMessage(msgType, payload)
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(msg)
	if err != nil {
		return NewError("marshal control message", err)
	}
	return dc.Send(data)
}

// ParseControl decodes a raw data-channel frame.
func ParseControl(data []byte) (*ControlMessage, error) {
	var msg ControlMessage
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return nil, NewError("parse control message", err)
	}
	return &msg, nil
}
