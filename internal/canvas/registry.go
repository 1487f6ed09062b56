// registry.go
//
// Collaborative relational database schema design service
// Copyright (c) 2026 SQLizer
//
// This file is part of sqlizer.
// sqlizer is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sqlizer is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sqlizer.
// If not, see <https://www.gnu.org/licenses/>.

package canvas

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/sqlizer/sqlizer/internal/types"
)

// Sender is the transport side of a connection. Writes may come from any
// goroutine; implementations are not required to be concurrency-safe, the
// Client serializes them.
type Sender interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one admitted (or observing) connection.
type Client struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
	ImageURL  string

	// CanWrite is false for read-only observers; every mutation command
	// from such a client is rejected with a permissionDenied fault.
	CanWrite bool

	writeMu sync.Mutex
	conn    Sender
}

// NewClient wraps a transport connection.
func NewClient(id string, conn Sender) *Client {
	return &Client{ID: id, conn: conn}
}

// Send delivers one event to this connection only.
func (c *Client) Send(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(Envelope{Event: event, Data: data})
}

// SendFault delivers a socketError event to this connection only.
func (c *Client) SendFault(f *types.Fault) {
	if err := c.Send(EventSocketError, f); err != nil {
		log.Printf("canvas: failed to deliver fault to %s: %v", c.ID, err)
	}
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Room is the set of live connections editing one canvas.
type Room struct {
	ID string

	// commandMu serializes mutation commands for this room: each command
	// runs load, validate, mutate, persist, broadcast as a unit, so two
	// concurrent edits can never both pass the same precondition check.
	commandMu sync.Mutex

	mu      sync.RWMutex
	members map[string]*Client
}

// Members returns a snapshot of the room's connections.
func (r *Room) Members() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]*Client, 0, len(r.members))
	for _, c := range r.members {
		members = append(members, c)
	}
	return members
}

// Size returns the number of connections in the room.
func (r *Room) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Broadcast delivers one event to every member of the room.
func (r *Room) Broadcast(event string, payload interface{}) {
	for _, member := range r.Members() {
		if err := member.Send(event, payload); err != nil {
			log.Printf("canvas: broadcast %s to %s failed: %v", event, member.ID, err)
		}
	}
}

// BroadcastOthers delivers one event to every member except the sender.
func (r *Room) BroadcastOthers(senderID, event string, payload interface{}) {
	for _, member := range r.Members() {
		if member.ID == senderID {
			continue
		}
		if err := member.Send(event, payload); err != nil {
			log.Printf("canvas: broadcast %s to %s failed: %v", event, member.ID, err)
		}
	}
}

// SessionRegistry owns room membership and the per-user connection groups.
// One registry is constructed per process and handed to the manager; there
// is no package-level connection state.
type SessionRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	users map[string]map[string]*Client
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		rooms: make(map[string]*Room),
		users: make(map[string]map[string]*Client),
	}
}

// Join adds a client to the room for the given canvas id, creating the
// room on first use, and to the client's per-user group.
func (s *SessionRegistry) Join(canvasID string, client *Client) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[canvasID]
	if !ok {
		room = &Room{ID: canvasID, members: make(map[string]*Client)}
		s.rooms[canvasID] = room
	}
	room.mu.Lock()
	room.members[client.ID] = client
	room.mu.Unlock()

	group, ok := s.users[client.UserID]
	if !ok {
		group = make(map[string]*Client)
		s.users[client.UserID] = group
	}
	group[client.ID] = client

	return room
}

// Leave removes a client from its room and user group. Empty rooms and
// groups are dropped.
func (s *SessionRegistry) Leave(canvasID string, client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room, ok := s.rooms[canvasID]; ok {
		room.mu.Lock()
		delete(room.members, client.ID)
		empty := len(room.members) == 0
		room.mu.Unlock()
		if empty {
			delete(s.rooms, canvasID)
		}
	}

	if group, ok := s.users[client.UserID]; ok {
		delete(group, client.ID)
		if len(group) == 0 {
			delete(s.users, client.UserID)
		}
	}
}

// Room returns the live room for a canvas id, or nil.
func (s *SessionRegistry) Room(canvasID string) *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[canvasID]
}

// ToUser delivers one event to every connection of the given user.
func (s *SessionRegistry) ToUser(userID, event string, payload interface{}) {
	s.mu.RLock()
	group := make([]*Client, 0, len(s.users[userID]))
	for _, c := range s.users[userID] {
		group = append(group, c)
	}
	s.mu.RUnlock()

	for _, c := range group {
		if err := c.Send(event, payload); err != nil {
			log.Printf("canvas: direct %s to %s failed: %v", event, c.ID, err)
		}
	}
}
