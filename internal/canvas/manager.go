// manager.go
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

// Package canvas is the collaboration session manager: it admits socket
// connections into per-canvas rooms, applies structural mutation commands
// to the shared schema document and fans the resulting deltas out to the
// other room participants.
package canvas

import (
	"encoding/json"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/sqlizer/sqlizer/internal/schema"
	"github.com/sqlizer/sqlizer/internal/types"
)

// Participant is a resolved user identity.
type Participant struct {
	ID        string
	FirstName string
	LastName  string
	ImageURL  string
}

// TokenResolver resolves a bearer credential to a participant.
type TokenResolver interface {
	UserFromToken(token string) (*Participant, error)
}

// PermissionChecker answers write-capability questions for a canvas.
type PermissionChecker interface {
	CanUpdateDatabase(userID, canvasID string) (bool, error)
}

// DocumentStore loads and saves the schema document of a canvas.
type DocumentStore interface {
	GetDocument(canvasID string) (*schema.Document, error)
	SaveDocument(canvasID string, doc *schema.Document) error
}

// Manager drives the collaboration sessions.
type Manager struct {
	registry *SessionRegistry
	store    DocumentStore
	tokens   TokenResolver
	perms    PermissionChecker

	// allowObservers keeps a connection without write capability in the
	// room as a read-only participant instead of dropping it.
	allowObservers bool
}

// NewManager wires the session manager to its collaborators.
func NewManager(registry *SessionRegistry, store DocumentStore, tokens TokenResolver, perms PermissionChecker, allowObservers bool) *Manager {
	return &Manager{
		registry:       registry,
		store:          store,
		tokens:         tokens,
		perms:          perms,
		allowObservers: allowObservers,
	}
}

// Registry exposes the registry, mainly for direct user addressing.
func (m *Manager) Registry() *SessionRegistry {
	return m.registry
}

// Handler returns the socket endpoint handler. The upgrading request must
// carry a bearer token (header `bearertoken` or query `token`) and the
// target canvas id in the `room` query parameter.
func (m *Manager) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		token := conn.Headers("Bearertoken")
		if token == "" {
			token = conn.Query("token")
		}
		roomID := conn.Query("room")

		client, room := m.Admit(conn, token, roomID)
		if room == nil {
			// A permission rejection with observers disabled arrives here
			// already closed. Token and room failures keep the transport
			// open but never joined, so commands from it go nowhere.
			m.drain(conn)
			return
		}
		defer m.Disconnect(room, client)

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			m.HandleMessage(room, client, raw)
		}
	}
}

// drain consumes messages from a connection that was never admitted.
func (m *Manager) drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Admit runs the connection admission protocol. On success the client is
// joined to its room and user group, receives the authoritative document
// privately, and the other room members get a presence event. A nil room
// means the connection was not admitted (the fault has been sent).
func (m *Manager) Admit(conn Sender, token, roomID string) (*Client, *Room) {
	client := NewClient(uuid.NewString(), conn)

	if token == "" {
		client.SendFault(types.InvalidToken("Invalid token"))
		return client, nil
	}

	participant, err := m.tokens.UserFromToken(token)
	if err != nil {
		client.SendFault(types.InvalidToken("Invalid token"))
		return client, nil
	}
	if roomID == "" {
		client.SendFault(types.Validation("missing room parameter"))
		return client, nil
	}

	client.UserID = participant.ID
	client.FirstName = participant.FirstName
	client.LastName = participant.LastName
	client.ImageURL = participant.ImageURL

	canWrite, err := m.perms.CanUpdateDatabase(participant.ID, roomID)
	if err != nil {
		canWrite = false
	}
	client.CanWrite = canWrite
	if !canWrite {
		client.SendFault(types.PermissionDenied("user is not allowed to update this database"))
		if !m.allowObservers {
			if err := client.Close(); err != nil {
				log.Printf("canvas: failed to close rejected connection %s: %v", client.ID, err)
			}
			return client, nil
		}
	}

	room := m.registry.Join(roomID, client)
	log.Printf("canvas: user %s connected to room %s (conn %s)", client.UserID, roomID, client.ID)

	// Every admitted participant receives the authoritative document.
	doc, err := m.store.GetDocument(roomID)
	if err != nil {
		client.SendFault(m.toFault(err))
	} else if sendErr := client.Send(EventResponseGetDatabase, DatabaseResponse{Database: doc}); sendErr != nil {
		log.Printf("canvas: failed to send document to %s: %v", client.ID, sendErr)
	}

	room.BroadcastOthers(client.ID, EventUserJoinRoom, PresencePayload{
		FirstName: client.FirstName,
		LastName:  client.LastName,
		ImageURL:  client.ImageURL,
	})

	return client, room
}

// Disconnect removes a connection from its room and announces the leave
// to the remaining members.
func (m *Manager) Disconnect(room *Room, client *Client) {
	m.registry.Leave(room.ID, client)
	log.Printf("canvas: user %s left room %s (conn %s)", client.UserID, room.ID, client.ID)
	room.BroadcastOthers(client.ID, EventUserLeaveRoom, PresencePayload{
		FirstName: client.FirstName,
		LastName:  client.LastName,
	})
}

// HandleMessage dispatches one inbound envelope from a room participant.
// Faults are delivered to the sender only and never touch the document.
func (m *Manager) HandleMessage(room *Room, client *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		client.SendFault(types.Validation("malformed message"))
		return
	}

	switch env.Event {
	case EventRequestCreateTable:
		m.handleCreateTable(room, client, env.Data)
	case EventRequestCreateField:
		m.handleCreateField(room, client, env.Data)
	case EventRequestUpdateTableName:
		m.handleUpdateTableName(room, client, env.Data)
	case EventRequestDeleteTable:
		m.handleDeleteTable(room, client, env.Data)
	case EventRequestMoveTable:
		m.handleMoveTable(room, client, env.Data)
	case EventRequestUpdateField:
		m.handleUpdateField(room, client, env.Data)
	case EventRequestDeleteField:
		m.handleDeleteField(room, client, env.Data)
	case EventRequestCreateEdge:
		m.handleCreateEdge(room, client, env.Data)
	case EventRequestUpdateEdge:
		m.handleUpdateEdge(room, client, env.Data)
	case EventRequestDeleteEdge:
		m.handleDeleteEdge(room, client, env.Data)
	default:
		client.SendFault(types.Validation("unknown event '%s'", env.Event))
	}
}

// outcome describes the broadcast resulting from a successful mutation.
type outcome struct {
	event      string
	payload    interface{}
	othersOnly bool
}

// apply runs one mutation command under the room's single-flight lock:
// re-read the document from the store, validate and mutate it in memory,
// persist, then broadcast. Any failure turns into a fault for the sender
// and the persisted document is untouched.
func (m *Manager) apply(room *Room, client *Client, mutate func(doc *schema.Document) (outcome, error)) {
	if !client.CanWrite {
		client.SendFault(types.PermissionDenied("user is not allowed to update this database"))
		return
	}

	room.commandMu.Lock()
	defer room.commandMu.Unlock()

	doc, err := m.store.GetDocument(room.ID)
	if err != nil {
		client.SendFault(m.toFault(err))
		return
	}

	out, err := mutate(doc)
	if err != nil {
		client.SendFault(m.toFault(err))
		return
	}

	if err := m.store.SaveDocument(room.ID, doc); err != nil {
		client.SendFault(m.toFault(err))
		return
	}

	if out.othersOnly {
		room.BroadcastOthers(client.ID, out.event, out.payload)
	} else {
		room.Broadcast(out.event, out.payload)
	}
}

func (m *Manager) toFault(err error) *types.Fault {
	if f, ok := types.AsFault(err); ok {
		return f
	}
	return types.Store("%v", err)
}

func decode[T any](client *Client, data json.RawMessage, payload *T) bool {
	if err := json.Unmarshal(data, payload); err != nil {
		client.SendFault(types.Validation("malformed payload: %v", err))
		return false
	}
	return true
}

func (m *Manager) handleCreateTable(room *Room, client *Client, data json.RawMessage) {
	var p CreateTablePayload
	if !decode(client, data, &p) {
		return
	}
	m.apply(room, client, func(doc *schema.Document) (outcome, error) {
		table := schema.Table{
			Name:   p.Name,
			PosX:   p.PosX.Float64(),
			PosY:   p.PosY.Float64(),
			Fields: p.Fields.Slice(),
		}
		if err := doc.CreateTable(table); err != nil {
			return outcome{}, err
		}
		return outcome{event: EventResponseCreateTable, payload: doc.FindTable(p.Name)}, nil
	})
}

func (m *Manager) handleCreateField(room *Room, client *Client, data json.RawMessage) {
	var p CreateFieldPayload
	if !decode(client, data, &p) {
		return
	}
	m.apply(room, client, func(doc *schema.Document) (outcome, error) {
		if err := doc.CreateField(p.TableName, p.Field); err != nil {
			return outcome{}, err
		}
		return outcome{
			event:   EventResponseCreateField,
			payload: FieldResponse{TableName: p.TableName, Field: &p.Field},
		}, nil
	})
}

func (m *Manager) handleUpdateTableName(room *Room, client *Client, data json.RawMessage) {
	var p UpdateTableNamePayload
	if !decode(client, data, &p) {
		return
	}
	m.apply(room, client, func(doc *schema.Document) (outcome, error) {
		if err := doc.RenameTable(p.TableName, p.NewName); err != nil {
			return outcome{}, err
		}
		return outcome{
			event:   EventResponseUpdateTableName,
			payload: RenameTableResponse{TableName: p.TableName, NewName: p.NewName},
		}, nil
	})
}

func (m *Manager) handleDeleteTable(room *Room, client *Client, data json.RawMessage) {
	var p DeleteTablePayload
	if !decode(client, data, &p) {
		return
	}
	m.apply(room, client, func(doc *schema.Document) (outcome, error) {
		removed, err := doc.DeleteTable(p.TableName)
		if err != nil {
			return outcome{}, err
		}
		return outcome{
			event:   EventResponseDeleteTable,
			payload: DeleteTableResponse{TableName: p.TableName, RemovedRelations: removed},
		}, nil
	})
}

func (m *Manager) handleMoveTable(room *Room, client *Client, data json.RawMessage) {
	var p MoveTablePayload
	if !decode(client, data, &p) {
		return
	}
	m.apply(room, client, func(doc *schema.Document) (outcome, error) {
		if err := doc.MoveTable(p.TableName, p.PosX.Float64(), p.PosY.Float64()); err != nil {
			return outcome{}, err
		}
		return outcome{
			event: EventResponseMoveTable,
			payload: MoveTableResponse{
				TableName: p.TableName,
				PosX:      p.PosX.Float64(),
				PosY:      p.PosY.Float64(),
			},
		}, nil
	})
}

func (m *Manager) handleUpdateField(room *Room, client *Client, data json.RawMessage) {
	var p UpdateFieldPayload
	if !decode(client, data, &p) {
		return
	}
	m.apply(room, client, func(doc *schema.Document) (outcome, error) {
		if err := doc.UpdateField(p.TableName, p.FieldName, p.Field); err != nil {
			return outcome{}, err
		}
		return outcome{
			event:   EventResponseUpdateField,
			payload: FieldResponse{TableName: p.TableName, FieldName: p.FieldName, Field: &p.Field},
		}, nil
	})
}

func (m *Manager) handleDeleteField(room *Room, client *Client, data json.RawMessage) {
	var p DeleteFieldPayload
	if !decode(client, data, &p) {
		return
	}
	m.apply(room, client, func(doc *schema.Document) (outcome, error) {
		if err := doc.DeleteField(p.TableName, p.FieldName); err != nil {
			return outcome{}, err
		}
		return outcome{
			event:   EventResponseDeleteField,
			payload: FieldResponse{TableName: p.TableName, FieldName: p.FieldName},
		}, nil
	})
}

func (m *Manager) handleCreateEdge(room *Room, client *Client, data json.RawMessage) {
	var p EdgePayload
	if !decode(client, data, &p) {
		return
	}
	m.apply(room, client, func(doc *schema.Document) (outcome, error) {
		rel, err := doc.CreateRelation(schema.Relation{From: p.From, To: p.To})
		if err != nil {
			return outcome{}, err
		}
		return outcome{event: EventResponseCreateEdge, payload: rel, othersOnly: true}, nil
	})
}

func (m *Manager) handleUpdateEdge(room *Room, client *Client, data json.RawMessage) {
	var p EdgePayload
	if !decode(client, data, &p) {
		return
	}
	m.apply(room, client, func(doc *schema.Document) (outcome, error) {
		rel, err := doc.UpdateRelation(p.ID, schema.Relation{From: p.From, To: p.To})
		if err != nil {
			return outcome{}, err
		}
		return outcome{event: EventResponseUpdateEdge, payload: rel, othersOnly: true}, nil
	})
}

func (m *Manager) handleDeleteEdge(room *Room, client *Client, data json.RawMessage) {
	var p EdgePayload
	if !decode(client, data, &p) {
		return
	}
	m.apply(room, client, func(doc *schema.Document) (outcome, error) {
		rel, err := doc.DeleteRelation(p.ID, schema.Relation{From: p.From, To: p.To})
		if err != nil {
			return outcome{}, err
		}
		return outcome{event: EventResponseDeleteEdge, payload: rel, othersOnly: true}, nil
	})
}
