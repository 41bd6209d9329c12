package relay

// Registry tracks live connections and which rooms each one has joined.
// Rooms are implicit: an entry appears on first join and is deleted as soon
// as its member set empties, so an absent key and an empty room are the
// same thing.
//
// The registry is owned by the hub and only ever touched from the hub's run
// loop; that serialization is what makes it safe without a mutex.
type Registry struct {
	clients map[string]*Client
	rooms   map[string]map[string]*Client
	joined  map[string]map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		joined:  make(map[string]map[string]struct{}),
	}
}

// Add registers a connection as alive with no room memberships.
func (r *Registry) Add(c *Client) {
	r.clients[c.ID] = c
	r.joined[c.ID] = make(map[string]struct{})
}

// Join adds the connection to the named room, creating the room entry if
// this is its first member. It reports whether membership actually changed,
// which lets the caller suppress duplicate join notifications.
func (r *Registry) Join(id, room string) bool {
	c, ok := r.clients[id]
	if !ok {
		return false
	}

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		r.rooms[room] = members
	}
	if _, ok := members[id]; ok {
		return false
	}

	members[id] = c
	r.joined[id][room] = struct{}{}
	return true
}

// Members returns the current members of a room. Unknown rooms yield an
// empty slice, never an error.
func (r *Registry) Members(room string) []*Client {
	members := r.rooms[room]
	out := make([]*Client, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

// Remove drops the connection from every room it belongs to and discards
// its identity. Rooms left empty vanish from the index. It returns the
// names of the rooms the connection was removed from.
func (r *Registry) Remove(id string) []string {
	rooms := make([]string, 0, len(r.joined[id]))
	for room := range r.joined[id] {
		rooms = append(rooms, room)
		if members, ok := r.rooms[room]; ok {
			delete(members, id)
			if len(members) == 0 {
				delete(r.rooms, room)
			}
		}
	}
	delete(r.joined, id)
	delete(r.clients, id)
	return rooms
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	return len(r.clients)
}
