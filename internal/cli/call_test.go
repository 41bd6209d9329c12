package cli

import (
	"errors"
	"syscall"
	"testing"
	"time"

	pion "github.com/pion/webrtc/v4"

	"github.com/sevahub/relay/internal/protocol"
	"github.com/sevahub/relay/internal/rtc"
	"github.com/sevahub/relay/internal/signaling"
)

func newTestSession(t *testing.T) *callSession {
	t.Helper()
	return &callSession{
		client:   signaling.NewClient("ws://127.0.0.1:1/ws"),
		handler:  signaling.NewHandler(nil),
		room:     "r",
		name:     "tester",
		opened:   make(chan *pion.DataChannel, 1),
		peerGone: make(chan struct{}, 1),
		stopPing: make(chan struct{}),
	}
}

func cpuTime(ru *syscall.Rusage) time.Duration {
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
}

func TestRelayLossMidCallDoesNotSpin(t *testing.T) {
	s := newTestSession(t)
	s.offered = true
	close(s.handler.Done)

	errc := make(chan error, 1)
	go func() { errc <- s.run() }()

	// Give the loop a moment to consume the closed channel, then make
	// sure idling does not burn CPU.
	time.Sleep(50 * time.Millisecond)
	var before syscall.Rusage
	syscall.Getrusage(syscall.RUSAGE_SELF, &before)

	time.Sleep(500 * time.Millisecond)

	var after syscall.Rusage
	syscall.Getrusage(syscall.RUSAGE_SELF, &after)
	if burned := cpuTime(&after) - cpuTime(&before); burned > 250*time.Millisecond {
		t.Errorf("burned %v CPU while idling for 500ms after relay loss", burned)
	}

	// The loop must still react to the remaining cases.
	s.notifyPeerGone()
	select {
	case err := <-errc:
		if !errors.Is(err, rtc.ErrPeerDisconnected) {
			t.Errorf("run() = %v, want %v", err, rtc.ErrPeerDisconnected)
		}
	case <-time.After(time.Second):
		t.Fatal("run() did not return after peer loss")
	}
}

func TestRelayLossBeforeNegotiationEndsCall(t *testing.T) {
	s := newTestSession(t)
	close(s.handler.Done)

	errc := make(chan error, 1)
	go func() { errc <- s.run() }()

	select {
	case err := <-errc:
		if !errors.Is(err, rtc.ErrSignalingError) {
			t.Errorf("run() = %v, want %v", err, rtc.ErrSignalingError)
		}
	case <-time.After(time.Second):
		t.Fatal("run() did not return when the relay dropped before negotiation")
	}
}

func TestEarlyCandidatesBufferedUntilRemoteDescription(t *testing.T) {
	caller, err := pion.NewPeerConnection(pion.Configuration{})
	if err != nil {
		t.Fatal(err)
	}
	defer caller.Close()
	if _, err := caller.CreateDataChannel(rtc.ControlChannelLabel, nil); err != nil {
		t.Fatal(err)
	}
	offer, err := rtc.CreateOffer(caller)
	if err != nil {
		t.Fatal(err)
	}
	offerRaw, err := protocol.Raw(offer)
	if err != nil {
		t.Fatal(err)
	}

	callee, err := pion.NewPeerConnection(pion.Configuration{})
	if err != nil {
		t.Fatal(err)
	}
	defer callee.Close()

	s := newTestSession(t)
	s.pc = callee

	cand, err := protocol.Raw(pion.ICECandidateInit{
		Candidate: "candidate:1 1 udp 2130706431 127.0.0.1 54321 typ host",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Candidates relayed ahead of the offer must queue, not drop.
	s.handleCandidate(&protocol.Event{Type: protocol.EventICECandidate, Candidate: cand})
	s.handleCandidate(&protocol.Event{Type: protocol.EventICECandidate, Candidate: cand})
	if len(s.pending) != 2 {
		t.Fatalf("pending = %d candidates, want 2", len(s.pending))
	}

	if err := s.acceptOffer(&protocol.Event{Type: protocol.EventOffer, Offer: offerRaw}); err != nil {
		t.Fatalf("acceptOffer: %v", err)
	}
	if !s.remoteSet {
		t.Error("remote description installed but remoteSet is false")
	}
	if len(s.pending) != 0 {
		t.Errorf("pending = %d candidates after flush, want 0", len(s.pending))
	}

	// Later candidates apply directly instead of queueing.
	s.handleCandidate(&protocol.Event{Type: protocol.EventICECandidate, Candidate: cand})
	if len(s.pending) != 0 {
		t.Errorf("candidate queued after remote description was installed")
	}
}
