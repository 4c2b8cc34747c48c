package realtime

import (
	"context"
	"log"
	"sync"
)

// Registry maps live connections to authenticated identities. A reconnect
// from the same identity is additive, not replacing: multi-device presence
// is a first-class case. All mutation is atomic with respect to the reads
// used for fan-out, so a delivery sees exactly the set of connections bound
// at that instant.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]*Connection            // connectionID -> connection
	byUser   map[string]map[string]*Connection // userID -> connectionID -> connection
	presence *Presence
}

// NewRegistry constructs an initialized Registry. presence may be nil.
func NewRegistry(presence *Presence) *Registry {
	return &Registry{
		conns:    make(map[string]*Connection),
		byUser:   make(map[string]map[string]*Connection),
		presence: presence,
	}
}

// Bind registers a connection for its identity and starts its write loop.
func (r *Registry) Bind(conn *Connection) {
	r.mu.Lock()
	r.conns[conn.ID] = conn
	set := r.byUser[conn.UserID]
	if set == nil {
		set = make(map[string]*Connection)
		r.byUser[conn.UserID] = set
	}
	set[conn.ID] = conn
	first := len(set) == 1
	r.mu.Unlock()

	conn.Start()

	if first {
		r.presence.MarkOnline(conn.UserID)
	}
}

// Unbind removes a connection if it is still tracked. It must complete before
// the transport is torn down so no relay attempt reaches a dead socket.
func (r *Registry) Unbind(connectionID string) {
	r.mu.Lock()
	conn, ok := r.conns[connectionID]
	var last bool
	if ok {
		delete(r.conns, connectionID)
		if set := r.byUser[conn.UserID]; set != nil {
			delete(set, connectionID)
			if len(set) == 0 {
				delete(r.byUser, conn.UserID)
				last = true
			}
		}
	}
	r.mu.Unlock()

	if ok && last {
		r.presence.MarkOffline(conn.UserID)
	}
}

// ConnectionsFor returns a snapshot of the identity's open connections,
// possibly empty. The snapshot is taken atomically under the read lock.
func (r *Registry) ConnectionsFor(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byUser[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Connection, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// Online reports whether the identity has at least one open connection
// on this node.
func (r *Registry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// IsOnline answers cross-node presence: the local map first, then the shared
// presence store for identities connected elsewhere.
func (r *Registry) IsOnline(ctx context.Context, userID string) bool {
	if r.Online(userID) {
		return true
	}
	return r.presence.IsOnline(ctx, userID)
}

// Deliver writes payload to every connection currently bound for userID and
// returns the number of successful deliveries. Failures against individual
// stale connections are logged and swallowed; they never affect the caller.
func (r *Registry) Deliver(userID string, payload []byte) int {
	delivered := 0
	for _, conn := range r.ConnectionsFor(userID) {
		if err := conn.Send(payload); err != nil {
			log.Printf("realtime: drop delivery to %s/%s: %v", userID, conn.ID, err)
			continue
		}
		delivered++
	}
	return delivered
}

// Close terminates all tracked connections and clears registry state.
func (r *Registry) Close() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.conns = make(map[string]*Connection)
	r.byUser = make(map[string]map[string]*Connection)
	r.mu.Unlock()

	for _, c := range conns {
		c.Close(1001, "registry shutdown")
	}
}
