package runtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"teamspace/errors"
	"teamspace/observability"
)

type Set map[string]struct{}

// Envelope is one named real-time message as written to a connection.
type Envelope struct {
	Event string
	Data  json.RawMessage
	At    time.Time
}

// Connection is a live subscriber. The transport drains Outbound until it is closed.
type Connection struct {
	ID       string
	UserID   string
	Outbound chan Envelope
	once     sync.Once
}

func (c *Connection) close() {
	c.once.Do(func() { close(c.Outbound) })
}

// Hub groups live connections by name and pushes events to groups, users or everyone.
//
// Sends never block: a message for a connection whose queue is full is dropped.
// There is no delivery confirmation and nothing is kept for absent recipients.
type Hub struct {
	mu          sync.RWMutex
	log         *slog.Logger
	connections map[string]*Connection // connection -> live connection
	groups      map[string]Set         // group -> connections
	users       map[string]Set         // user -> connections
	memberships map[string]Set         // connection -> groups
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:         log,
		connections: make(map[string]*Connection),
		groups:      make(map[string]Set),
		users:       make(map[string]Set),
		memberships: make(map[string]Set),
	}
}

// Connect registers a connection with an outbound queue of size buffer.
// Connecting an id twice replaces the previous connection.
func (h *Hub) Connect(connectionID, userID string, buffer int) *Connection {
	conn := &Connection{ID: connectionID, UserID: userID, Outbound: make(chan Envelope, buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if previous, ok := h.connections[connectionID]; ok {
		h.removeLocked(previous)
	}
	h.connections[connectionID] = conn
	h.memberships[connectionID] = make(Set)
	if userID != "" {
		add(h.users, userID, connectionID)
	}
	observability.HubConnections.Set(float64(len(h.connections)))
	h.log.Debug("Connection registered", "connection_id", connectionID, "user_id", userID)
	return conn
}

// Disconnect drops every trace of the connection and closes its queue. Unknown ids are ignored.
func (h *Hub) Disconnect(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.connections[connectionID]
	if !ok {
		return
	}
	h.removeLocked(conn)
	observability.HubConnections.Set(float64(len(h.connections)))
	h.log.Debug("Connection removed", "connection_id", connectionID)
}

func (h *Hub) removeLocked(conn *Connection) {
	for group := range h.memberships[conn.ID] {
		remove(h.groups, group, conn.ID)
	}
	delete(h.memberships, conn.ID)
	if conn.UserID != "" {
		remove(h.users, conn.UserID, conn.ID)
	}
	delete(h.connections, conn.ID)
	conn.close()
}

// JoinGroup is idempotent.
func (h *Hub) JoinGroup(connectionID, group string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[connectionID]; !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConnection, connectionID)
	}
	add(h.groups, group, connectionID)
	h.memberships[connectionID][group] = struct{}{}
	return nil
}

// LeaveGroup is idempotent. The group disappears with its last member.
func (h *Hub) LeaveGroup(connectionID, group string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[connectionID]; !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConnection, connectionID)
	}
	remove(h.groups, group, connectionID)
	delete(h.memberships[connectionID], group)
	return nil
}

func (h *Hub) SendToGroup(group, event string, payload any) {
	h.send(event, payload, func() []*Connection {
		return h.resolve(h.groups[group])
	})
}

func (h *Hub) SendToUser(userID, event string, payload any) {
	h.send(event, payload, func() []*Connection {
		return h.resolve(h.users[userID])
	})
}

func (h *Hub) SendToAll(event string, payload any) {
	h.send(event, payload, func() []*Connection {
		all := make([]*Connection, 0, len(h.connections))
		for _, conn := range h.connections {
			all = append(all, conn)
		}
		return all
	})
}

// send marshals once, then enqueues under the read lock so that no queue is closed meanwhile.
func (h *Hub) send(event string, payload any, recipients func() []*Connection) {
	data, err := json.Marshal(payload)
	if err != nil {
		observability.IncHubDrop("serialization")
		h.log.Error("Real-time payload not serializable", "event", event, "error", err)
		return
	}
	envelope := Envelope{Event: event, Data: data, At: time.Now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range recipients() {
		select {
		case conn.Outbound <- envelope:
			observability.HubSentTotal.WithLabelValues(event).Inc()
		default:
			observability.IncHubDrop("full")
			h.log.Debug("Real-time message dropped, queue full", "event", event, "connection_id", conn.ID)
		}
	}
}

func (h *Hub) resolve(ids Set) []*Connection {
	conns := make([]*Connection, 0, len(ids))
	for id := range ids {
		if conn, ok := h.connections[id]; ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

// Groups lists the groups a connection belongs to, sorted.
func (h *Hub) Groups(connectionID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sorted(h.memberships[connectionID])
}

// Members lists the connections of a group, sorted.
func (h *Hub) Members(group string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sorted(h.groups[group])
}

// Owner returns the user a connection was opened for.
func (h *Hub) Owner(connectionID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.connections[connectionID]
	if !ok {
		return "", false
	}
	return conn.UserID, true
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func add(index map[string]Set, key, id string) {
	if _, ok := index[key]; !ok {
		index[key] = make(Set)
	}
	index[key][id] = struct{}{}
}

func remove(index map[string]Set, key, id string) {
	if members, ok := index[key]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(index, key)
		}
	}
}

func sorted(s Set) []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
