package relay

import (
	"testing"

	"github.com/sevahub/relay/internal/protocol"
)

func newTestClient(id string) *Client {
	return &Client{ID: id, Send: make(chan *protocol.Event, 8)}
}

func TestRegistryJoinAndMembers(t *testing.T) {
	r := NewRegistry()
	a := newTestClient("a")
	r.Add(a)

	if !r.Join("a", "lobby") {
		t.Fatal("first join should change membership")
	}

	members := r.Members("lobby")
	if len(members) != 1 || members[0] != a {
		t.Fatalf("Members(lobby) = %v, want [a]", members)
	}
}

func TestRegistryJoinIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Add(newTestClient("a"))

	if !r.Join("a", "lobby") {
		t.Fatal("first join should change membership")
	}
	if r.Join("a", "lobby") {
		t.Fatal("second join should be a no-op")
	}
	if got := len(r.Members("lobby")); got != 1 {
		t.Fatalf("membership count after duplicate join = %d, want 1", got)
	}
}

func TestRegistryJoinUnknownConnection(t *testing.T) {
	r := NewRegistry()
	if r.Join("ghost", "lobby") {
		t.Fatal("join for an unregistered identity should not succeed")
	}
	if got := len(r.Members("lobby")); got != 0 {
		t.Fatalf("room should stay empty, got %d members", got)
	}
}

func TestRegistryMembersUnknownRoom(t *testing.T) {
	r := NewRegistry()
	if got := r.Members("nowhere"); len(got) != 0 {
		t.Fatalf("Members of unknown room = %v, want empty", got)
	}
}

func TestRegistryRemoveClearsAllRooms(t *testing.T) {
	r := NewRegistry()
	a := newTestClient("a")
	b := newTestClient("b")
	r.Add(a)
	r.Add(b)
	r.Join("a", "room1")
	r.Join("a", "room2")
	r.Join("b", "room1")

	rooms := r.Remove("a")
	if len(rooms) != 2 {
		t.Fatalf("Remove returned %v, want two rooms", rooms)
	}

	for _, m := range r.Members("room1") {
		if m.ID == "a" {
			t.Fatal("room1 still contains removed connection")
		}
	}
	if got := len(r.Members("room2")); got != 0 {
		t.Fatalf("room2 should be empty, got %d members", got)
	}
	if _, ok := r.rooms["room2"]; ok {
		t.Fatal("empty room2 should have been deleted from the index")
	}
	if r.Count() != 1 {
		t.Fatalf("Count = %d, want 1", r.Count())
	}
}

// A fresh connection joining a room after its previous occupant
// disconnected must see only itself.
func TestRegistryRejoinAfterDisconnect(t *testing.T) {
	r := NewRegistry()
	a := newTestClient("a")
	r.Add(a)
	r.Join("a", "room1")
	r.Remove("a")

	a2 := newTestClient("a2")
	r.Add(a2)
	r.Join("a2", "room1")

	members := r.Members("room1")
	if len(members) != 1 || members[0].ID != "a2" {
		t.Fatalf("Members(room1) = %v, want only a2", members)
	}
}

func TestRegistryEmptyRoomDoesNotBlockJoins(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		c := newTestClient(string(rune('a' + i)))
		r.Add(c)
		if !r.Join(c.ID, "revolving") {
			t.Fatalf("join %d failed", i)
		}
		r.Remove(c.ID)
		if _, ok := r.rooms["revolving"]; ok {
			t.Fatalf("room should vanish once empty (iteration %d)", i)
		}
	}
}
