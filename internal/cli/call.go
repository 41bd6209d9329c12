package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	pion "github.com/pion/webrtc/v4"
	"github.com/spf13/cobra"

	"github.com/sevahub/relay/internal/config"
	"github.com/sevahub/relay/internal/protocol"
	"github.com/sevahub/relay/internal/rtc"
	"github.com/sevahub/relay/internal/signaling"
	"github.com/sevahub/relay/internal/tui"
	"github.com/sevahub/relay/internal/version"
)

var (
	flagCallRoom string
	flagCallName string
)

const pingInterval = 5 * time.Second

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Establish a direct peer session through the relay",
	Long: `Join a room and bootstrap a direct WebRTC session with the peer that
shares it. The relay only carries the signaling; once connected, the peers
talk over their own data channel and the command reports round-trip times.

Both sides run the same command:
  sevahub call --room checkin-42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := flagCallName
		if name == "" {
			name = displayName()
		}
		return runCall(flagCallRoom, name)
	},
}

func runCall(room, name string) error {
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

	session, err := newCallSession(cfg, client, handler, room, name)
	if err != nil {
		return err
	}
	defer session.close()

	tui.PrintInfof("waiting for a peer in room %q...", room)
	return session.run()
}

// callSession drives one peer session: relay signaling on one side, the
// pion peer connection and its control channel on the other.
type callSession struct {
	client  *signaling.Client
	handler *signaling.Handler
	pc      *pion.PeerConnection
	room    string
	name    string

	// offered flips once this side has taken the caller role; a second
	// user-joined or a late offer must not restart negotiation.
	offered bool

	// Candidates that arrive before the remote description is installed
	// cannot be applied yet; they queue here until remoteReady flushes
	// them.
	remoteSet bool
	pending   []json.RawMessage

	opened   chan *pion.DataChannel
	peerGone chan struct{}
	stopPing chan struct{}
}

func newCallSession(cfg *config.Config, client *signaling.Client, handler *signaling.Handler, room, name string) (*callSession, error) {
	pc, err := rtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}

	s := &callSession{
		client:   client,
		handler:  handler,
		pc:       pc,
		room:     room,
		name:     name,
		opened:   make(chan *pion.DataChannel, 1),
		peerGone: make(chan struct{}, 1),
		stopPing: make(chan struct{}),
	}

	rtc.ForwardICECandidates(pc, room, client.Send)

	pc.OnDataChannel(func(dc *pion.DataChannel) {
		if dc.Label() == rtc.ControlChannelLabel {
			s.wireChannel(dc)
		}
	})

	pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		switch state {
		case pion.PeerConnectionStateFailed, pion.PeerConnectionStateClosed:
			s.notifyPeerGone()
		}
	})

	return s, nil
}

func (s *callSession) run() error {
	done := s.handler.Done
	for {
		select {
		case <-s.handler.UserJoined:
			if s.offered {
				continue
			}
			s.offered = true
			if err := s.makeOffer(); err != nil {
				return err
			}

		case ev := <-s.handler.Offers:
			if s.offered {
				// Negotiation glare; let the other side's offer win only
				// when we have not offered ourselves.
				continue
			}
			s.offered = true
			if err := s.acceptOffer(ev); err != nil {
				return err
			}

		case ev := <-s.handler.Answers:
			if err := s.acceptAnswer(ev); err != nil {
				return err
			}

		case ev := <-s.handler.Candidates:
			s.handleCandidate(ev)

		case dc := <-s.opened:
			tui.PrintSuccess("peer connected")
			if err := rtc.SendControl(dc, rtc.ControlHello, rtc.HelloPayload{
				Name:    s.name,
				Version: version.Version,
			}); err != nil {
				return err
			}
			go s.pingLoop(dc)
			go s.readInput(dc)

		case <-s.peerGone:
			return rtc.ErrPeerDisconnected

		case <-done:
			// The relay is only needed for signaling; once the peers are
			// connected its loss does not end the call. The closed channel
			// must not be selected on again.
			if !s.offered {
				return rtc.WrapError("call", rtc.ErrSignalingError, "relay connection closed")
			}
			done = nil
		}
	}
}

// makeOffer takes the caller role: open the control channel, produce the
// offer, and hand it to the relay.
func (s *callSession) makeOffer() error {
	dc, err := rtc.CreateControlChannel(s.pc)
	if err != nil {
		return err
	}
	s.wireChannel(dc)

	offer, err := rtc.CreateOffer(s.pc)
	if err != nil {
		return err
	}
	raw, err := protocol.Raw(offer)
	if err != nil {
		return err
	}
	s.client.Send(&protocol.Event{
		Type:   protocol.EventOffer,
		RoomID: s.room,
		Offer:  raw,
	})
	tui.PrintInfo("peer joined, calling...")
	return nil
}

func (s *callSession) acceptOffer(ev *protocol.Event) error {
	answer, err := rtc.AcceptOffer(s.pc, ev.Offer)
	if err != nil {
		return err
	}
	s.remoteReady()
	raw, err := protocol.Raw(answer)
	if err != nil {
		return err
	}
	s.client.Send(&protocol.Event{
		Type:   protocol.EventAnswer,
		RoomID: s.room,
		Answer: raw,
	})
	tui.PrintInfof("answering call from %s...", shortID(ev.From))
	return nil
}

func (s *callSession) acceptAnswer(ev *protocol.Event) error {
	if err := rtc.AcceptAnswer(s.pc, ev.Answer); err != nil {
		return err
	}
	s.remoteReady()
	return nil
}

// handleCandidate applies a relayed candidate, or queues it when the remote
// description is not installed yet; applying it early would fail and lose
// the candidate for good.
func (s *callSession) handleCandidate(ev *protocol.Event) {
	if !s.remoteSet {
		s.pending = append(s.pending, ev.Candidate)
		return
	}
	if err := rtc.AddCandidate(s.pc, ev.Candidate); err != nil {
		tui.PrintErrorf("ice candidate rejected: %v", err)
	}
}

// remoteReady marks the remote description installed and flushes the queued
// candidates in arrival order.
func (s *callSession) remoteReady() {
	s.remoteSet = true
	for _, c := range s.pending {
		if err := rtc.AddCandidate(s.pc, c); err != nil {
			tui.PrintErrorf("ice candidate rejected: %v", err)
		}
	}
	s.pending = nil
}

// wireChannel attaches the control protocol to a data channel, whichever
// side created it.
func (s *callSession) wireChannel(dc *pion.DataChannel) {
	dc.OnOpen(func() {
		s.opened <- dc
	})

	dc.OnClose(func() {
		s.notifyPeerGone()
	})

	dc.OnMessage(func(raw pion.DataChannelMessage) {
		msg, err := rtc.ParseControl(raw.Data)
		if err != nil {
			return
		}
		s.handleControl(dc, msg)
	})
}

func (s *callSession) handleControl(dc *pion.DataChannel, msg *rtc.ControlMessage) {
	switch msg.Type {
	case rtc.ControlHello:
		var hello rtc.HelloPayload
		if err := msg.DecodePayload(&hello); err != nil {
			return
		}
		tui.PrintSuccessf("connected to %s (%s)", hello.Name, hello.Version)

	case rtc.ControlPing:
		// Echo the payload back so the sender can compute RTT.
		var ping rtc.PingPayload
		if err := msg.DecodePayload(&ping); err != nil {
			return
		}
		rtc.SendControl(dc, rtc.ControlPong, ping)

	case rtc.ControlPong:
		var ping rtc.PingPayload
		if err := msg.DecodePayload(&ping); err != nil {
			return
		}
		rtt := time.Since(time.Unix(0, ping.SentAt))
		tui.PrintInfof("peer round-trip: %s", rtt.Round(time.Millisecond))

	case rtc.ControlChat:
		var chat rtc.ChatPayload
		if err := msg.DecodePayload(&chat); err != nil {
			return
		}
		fmt.Println(tui.PeerStyle.Render("peer:"), chat.Text)

	case rtc.ControlBye:
		s.notifyPeerGone()
	}
}

func (s *callSession) pingLoop(dc *pion.DataChannel) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	var nonce uint64
	for {
		select {
		case <-ticker.C:
			nonce++
			rtc.SendControl(dc, rtc.ControlPing, rtc.PingPayload{
				Nonce:  nonce,
				SentAt: time.Now().UnixNano(),
			})
		case <-s.stopPing:
			return
		}
	}
}

// readInput forwards stdin lines to the peer as chat frames. EOF says
// goodbye and ends the session.
func (s *callSession) readInput(dc *pion.DataChannel) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}
		if err := rtc.SendControl(dc, rtc.ControlChat, rtc.ChatPayload{Text: text}); err != nil {
			tui.PrintErrorf("send failed: %v", err)
			return
		}
		fmt.Println(tui.SenderStyle.Render("you:"), text)
	}
	rtc.SendControl(dc, rtc.ControlBye, nil)
	s.notifyPeerGone()
}

func (s *callSession) notifyPeerGone() {
	select {
	case s.peerGone <- struct{}{}:
	default:
	}
}

func (s *callSession) close() {
	close(s.stopPing)
	s.pc.Close()
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVarP(&flagCallRoom, "room", "r", "", "room to meet the peer in (required)")
	callCmd.Flags().StringVarP(&flagCallName, "name", "n", "", "display name (defaults to $USER)")
	callCmd.MarkFlagRequired("room")
}
