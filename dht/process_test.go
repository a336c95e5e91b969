package dht

import (
	"errors"
	"testing"

	"github.com/go-ringdht/wire"
)

func TestLookupIsForwardedUnmodified(t *testing.T) {
	sender := &recordingSender{}
	n := cacheTestNode(sender)
	originator := testPeer(3000)

	// 5000 is owned neither by self nor by the successor and the cache is
	// empty, so the lookup travels on.
	lookup := wire.Message{Opcode: wire.Lookup, Hash: 5000, Peer: originator}
	if err := n.Process(lookup); err != nil {
		t.Fatalf("Process returned error: %s", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("%d messages sent, want 1", len(sender.sent))
	}
	if got := sender.sent[0]; got.msg != lookup || !got.to.Equal(n.successor) {
		t.Errorf("forwarded %v to %s, want the unmodified lookup sent to the successor", got.msg, got.to)
	}
}

func TestLookupOwnedBySelfStillForwards(t *testing.T) {
	sender := &recordingSender{}
	n := cacheTestNode(sender)

	// Self resolves as owner of 950; only a successor-owned identifier
	// terminates the lookup here.
	lookup := wire.Message{Opcode: wire.Lookup, Hash: 950, Peer: testPeer(3000)}
	if err := n.Process(lookup); err != nil {
		t.Fatalf("Process returned error: %s", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("%d messages sent, want 1", len(sender.sent))
	}
	if got := sender.sent[0]; got.msg != lookup || !got.to.Equal(n.successor) {
		t.Errorf("sent %v to %s, want the lookup forwarded to the successor", got.msg, got.to)
	}
}

func TestLookupTerminatesAtSuccessor(t *testing.T) {
	sender := &recordingSender{}
	n := cacheTestNode(sender)
	originator := testPeer(3000)

	lookup := wire.Message{Opcode: wire.Lookup, Hash: 1050, Peer: originator}
	if err := n.Process(lookup); err != nil {
		t.Fatalf("Process returned error: %s", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("%d messages sent, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	want := wire.Message{Opcode: wire.Reply, Hash: n.self.ID, Peer: n.successor}
	if got.msg != want {
		t.Errorf("reply = %v, want %v", got.msg, want)
	}
	if !got.to.Equal(originator) {
		t.Errorf("reply sent to %s, want the originator %s", got.to, originator)
	}
}

func TestReplyOnlyMutatesCache(t *testing.T) {
	sender := &recordingSender{}
	n := cacheTestNode(sender)

	if err := n.Process(reply(1900, testPeer(2000))); err != nil {
		t.Fatalf("Process returned error: %s", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("%d messages sent, want 0", len(sender.sent))
	}
	if got := n.cache.populated(); got != 1 {
		t.Errorf("cache holds %d entries, want 1", got)
	}
}

func TestUnhandledOpcodesAreDropped(t *testing.T) {
	// With no maintenance hook the ring-maintenance opcodes are invalid
	// too, alongside opcodes outside the defined range.
	opcodes := []wire.Opcode{wire.Stabilize, wire.Notify, wire.Join, 5, 9, 0xff}
	for _, opcode := range opcodes {
		sender := &recordingSender{}
		n := cacheTestNode(sender)
		msg := wire.Message{Opcode: opcode, Hash: 1050, Peer: testPeer(3000)}
		if err := n.Process(msg); err != nil {
			t.Errorf("Opcode %s: Process returned error: %s", opcode, err)
			continue
		}
		if len(sender.sent) != 0 {
			t.Errorf("Opcode %s: %d messages sent, want 0", opcode, len(sender.sent))
		}
		if got := n.cache.populated(); got != 0 {
			t.Errorf("Opcode %s: cache was mutated", opcode)
		}
		if !n.Predecessor().Equal(testPeer(900)) || !n.Successor().Equal(testPeer(1100)) {
			t.Errorf("Opcode %s: peer slots were mutated", opcode)
		}
	}
}

func TestSendFailureIsPropagated(t *testing.T) {
	sendErr := errors.New("socket gone")
	n := cacheTestNode(&recordingSender{err: sendErr})
	lookup := wire.Message{Opcode: wire.Lookup, Hash: 5000, Peer: testPeer(3000)}
	if err := n.Process(lookup); !errors.Is(err, sendErr) {
		t.Errorf("Process returned %v, want the send error", err)
	}
}

func TestLookupSendsToSuccessor(t *testing.T) {
	sender := &recordingSender{}
	n := cacheTestNode(sender)
	if err := n.Lookup(4242); err != nil {
		t.Fatalf("Lookup returned error: %s", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("%d messages sent, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	want := wire.Message{Opcode: wire.Lookup, Hash: 4242, Peer: n.self}
	if got.msg != want || !got.to.Equal(n.successor) {
		t.Errorf("sent %v to %s, want %v to the successor", got.msg, got.to, want)
	}
}

func TestSendJoinIsOneShot(t *testing.T) {
	sender := &recordingSender{}
	n := cacheTestNode(sender)
	target := testPeer(7000)
	if err := n.SendJoin(target); err != nil {
		t.Fatalf("SendJoin returned error: %s", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("%d messages sent, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	want := wire.Message{Opcode: wire.Join, Hash: 0, Peer: n.self}
	if got.msg != want || !got.to.Equal(target) {
		t.Errorf("sent %v to %s, want %v to %s", got.msg, got.to, want, target)
	}
}
