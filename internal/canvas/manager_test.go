package canvas

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/sqlizer/sqlizer/internal/schema"
	"github.com/sqlizer/sqlizer/internal/types"
)

// fakeConn records every envelope written to it.
type fakeConn struct {
	mu        sync.Mutex
	envelopes []Envelope
	closed    bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	env, ok := v.(Envelope)
	if !ok {
		return errors.New("unexpected write type")
	}
	f.envelopes = append(f.envelopes, env)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := make([]string, len(f.envelopes))
	for i, env := range f.envelopes {
		events[i] = env.Event
	}
	return events
}

func (f *fakeConn) count(event string) int {
	n := 0
	for _, e := range f.events() {
		if e == event {
			n++
		}
	}
	return n
}

func (f *fakeConn) lastPayload(t *testing.T, event string, target interface{}) {
	t.Helper()
	f.mu.Lock()
	envelopes := make([]Envelope, len(f.envelopes))
	copy(envelopes, f.envelopes)
	f.mu.Unlock()

	for i := len(envelopes) - 1; i >= 0; i-- {
		if envelopes[i].Event == event {
			if err := json.Unmarshal(envelopes[i].Data, target); err != nil {
				t.Fatalf("Failed to decode %s payload: %v", event, err)
			}
			return
		}
	}
	t.Fatalf("No %s envelope recorded, have %v", event, f.events())
}

// memStore is an in-memory document store.
type memStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{docs: map[string][]byte{}}
}

func (s *memStore) seed(t *testing.T, canvasID string, doc *schema.Document) {
	t.Helper()
	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Failed to seed document: %v", err)
	}
	s.mu.Lock()
	s.docs[canvasID] = data
	s.mu.Unlock()
}

func (s *memStore) GetDocument(canvasID string) (*schema.Document, error) {
	s.mu.Lock()
	data, ok := s.docs[canvasID]
	s.mu.Unlock()
	if !ok {
		return nil, types.NotFound("database '%s' not found", canvasID)
	}
	return schema.Parse(data)
}

func (s *memStore) SaveDocument(canvasID string, doc *schema.Document) error {
	data, err := doc.Bytes()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[canvasID] = data
	s.mu.Unlock()
	return nil
}

// stubTokens maps token strings to participants.
type stubTokens map[string]*Participant

func (s stubTokens) UserFromToken(token string) (*Participant, error) {
	p, ok := s[token]
	if !ok {
		return nil, types.InvalidToken("Invalid token")
	}
	return p, nil
}

// stubPerms maps user ids to write capability.
type stubPerms map[string]bool

func (s stubPerms) CanUpdateDatabase(userID, canvasID string) (bool, error) {
	return s[userID], nil
}

func newTestManager(t *testing.T, allowObservers bool) (*Manager, *memStore) {
	t.Helper()
	store := newMemStore()
	store.seed(t, "canvas-1", schema.NewDocument("master"))
	tokens := stubTokens{
		"token-alice": {ID: "alice", FirstName: "Alice", LastName: "Ada", ImageURL: "http://img/alice"},
		"token-bob":   {ID: "bob", FirstName: "Bob", LastName: "Byte"},
		"token-carol": {ID: "carol", FirstName: "Carol", LastName: "Case"},
	}
	perms := stubPerms{"alice": true, "bob": true, "carol": false}
	return NewManager(NewSessionRegistry(), store, tokens, perms, allowObservers), store
}

func command(t *testing.T, event string, payload interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	raw, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		t.Fatalf("Failed to marshal envelope: %v", err)
	}
	return raw
}

func TestAdmitRejectsInvalidToken(t *testing.T) {
	manager, _ := newTestManager(t, true)
	conn := &fakeConn{}

	_, room := manager.Admit(conn, "bogus", "canvas-1")
	if room != nil {
		t.Fatal("Expected no room for an invalid token")
	}

	var fault types.Fault
	conn.lastPayload(t, EventSocketError, &fault)
	if fault.Type != types.FaultInvalidToken {
		t.Errorf("Expected invalidToken fault, got %s", fault.Type)
	}
}

func TestAdmitRequiresRoom(t *testing.T) {
	manager, _ := newTestManager(t, true)
	conn := &fakeConn{}

	_, room := manager.Admit(conn, "token-alice", "")
	if room != nil {
		t.Fatal("Expected no room when the room parameter is missing")
	}

	var fault types.Fault
	conn.lastPayload(t, EventSocketError, &fault)
	if fault.Type != types.FaultValidation {
		t.Errorf("Expected validation fault, got %s", fault.Type)
	}
}

func TestAdmitSendsDocumentAndPresence(t *testing.T) {
	manager, _ := newTestManager(t, true)

	aliceConn := &fakeConn{}
	_, room := manager.Admit(aliceConn, "token-alice", "canvas-1")
	if room == nil {
		t.Fatal("Expected alice to be admitted")
	}

	var dbResp DatabaseResponse
	aliceConn.lastPayload(t, EventResponseGetDatabase, &dbResp)
	if dbResp.Database == nil || dbResp.Database.DBName != "master" {
		t.Errorf("Expected the master document, got %+v", dbResp.Database)
	}

	bobConn := &fakeConn{}
	if _, bobRoom := manager.Admit(bobConn, "token-bob", "canvas-1"); bobRoom == nil {
		t.Fatal("Expected bob to be admitted")
	}

	// Presence goes to the existing member, not back to the joiner.
	var presence PresencePayload
	aliceConn.lastPayload(t, EventUserJoinRoom, &presence)
	if presence.FirstName != "Bob" {
		t.Errorf("Expected Bob's presence, got %+v", presence)
	}
	if bobConn.count(EventUserJoinRoom) != 0 {
		t.Error("The joiner must not receive their own presence event")
	}
	if room.Size() != 2 {
		t.Errorf("Expected 2 room members, got %d", room.Size())
	}
}

func TestObserverAdmittedReadOnly(t *testing.T) {
	manager, store := newTestManager(t, true)

	conn := &fakeConn{}
	client, room := manager.Admit(conn, "token-carol", "canvas-1")
	if room == nil {
		t.Fatal("Expected the observer to stay in the room")
	}
	if client.CanWrite {
		t.Fatal("Expected a read-only client")
	}

	// The observer still receives the document after the capability fault.
	if conn.count(EventResponseGetDatabase) != 1 {
		t.Errorf("Expected the document despite read-only admission, events: %v", conn.events())
	}

	manager.HandleMessage(room, client, command(t, EventRequestCreateTable, CreateTablePayload{Name: "users"}))

	if conn.count(EventSocketError) < 2 {
		t.Errorf("Expected a permissionDenied fault for the mutation, events: %v", conn.events())
	}
	doc, _ := store.GetDocument("canvas-1")
	if len(doc.Tables) != 0 {
		t.Error("A read-only client must never mutate the document")
	}
}

func TestObserverRejectedWhenDisabled(t *testing.T) {
	manager, _ := newTestManager(t, false)

	conn := &fakeConn{}
	_, room := manager.Admit(conn, "token-carol", "canvas-1")
	if room != nil {
		t.Fatal("Expected the connection to be refused with observers disabled")
	}

	var fault types.Fault
	conn.lastPayload(t, EventSocketError, &fault)
	if fault.Type != types.FaultPermissionDenied {
		t.Errorf("Expected permissionDenied fault, got %s", fault.Type)
	}
	if !conn.isClosed() {
		t.Error("Expected the transport to be closed after the fault")
	}
}

func TestObserverAdmittedKeepsTransportOpen(t *testing.T) {
	manager, _ := newTestManager(t, true)

	conn := &fakeConn{}
	_, room := manager.Admit(conn, "token-carol", "canvas-1")
	if room == nil {
		t.Fatal("Expected the observer to be admitted")
	}
	if conn.isClosed() {
		t.Error("Expected the observer transport to stay open")
	}
}

func TestCreateTableBroadcastsToWholeRoom(t *testing.T) {
	manager, store := newTestManager(t, true)

	aliceConn := &fakeConn{}
	alice, room := manager.Admit(aliceConn, "token-alice", "canvas-1")
	bobConn := &fakeConn{}
	manager.Admit(bobConn, "token-bob", "canvas-1")

	manager.HandleMessage(room, alice, command(t, EventRequestCreateTable, map[string]interface{}{
		"name": "users",
		"posX": 10,
		"posY": "20",
		"fields": []map[string]interface{}{
			{"name": "id", "type": "INT", "pk": true, "autoincrement": true},
		},
	}))

	// Table mutations echo to the sender too.
	if aliceConn.count(EventResponseCreateTable) != 1 {
		t.Errorf("Expected the sender to receive the response, events: %v", aliceConn.events())
	}
	if bobConn.count(EventResponseCreateTable) != 1 {
		t.Errorf("Expected the other member to receive the response exactly once, events: %v", bobConn.events())
	}

	var table schema.Table
	bobConn.lastPayload(t, EventResponseCreateTable, &table)
	if table.Name != "users" || table.PosX != 10 || table.PosY != 20 {
		t.Errorf("Unexpected broadcast table: %+v", table)
	}

	doc, err := store.GetDocument("canvas-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.FindTable("users") == nil {
		t.Error("Expected the table persisted")
	}
}

func TestEdgeBroadcastsToOthersOnly(t *testing.T) {
	manager, store := newTestManager(t, true)
	seed := schema.NewDocument("master")
	seed.CreateTable(schema.Table{Name: "users", Fields: []schema.Field{{Name: "id", Type: "INT", PK: true}}})
	seed.CreateTable(schema.Table{Name: "orders", Fields: []schema.Field{{Name: "user_id", Type: "INT"}}})
	store.seed(t, "canvas-1", seed)

	aliceConn := &fakeConn{}
	alice, room := manager.Admit(aliceConn, "token-alice", "canvas-1")
	bobConn := &fakeConn{}
	manager.Admit(bobConn, "token-bob", "canvas-1")

	manager.HandleMessage(room, alice, command(t, EventRequestCreateEdge, EdgePayload{
		From: schema.FieldRef{Table: "orders", Field: "user_id"},
		To:   schema.FieldRef{Table: "users", Field: "id"},
	}))

	// The edge author already drew the edge locally; only the others hear it.
	if aliceConn.count(EventResponseCreateEdge) != 0 {
		t.Errorf("Expected no echo to the edge author, events: %v", aliceConn.events())
	}
	if bobConn.count(EventResponseCreateEdge) != 1 {
		t.Errorf("Expected the other member to receive the edge, events: %v", bobConn.events())
	}

	var rel schema.Relation
	bobConn.lastPayload(t, EventResponseCreateEdge, &rel)
	if rel.ID == "" {
		t.Error("Expected the broadcast edge to carry its assigned id")
	}

	// Delete by id round-trips.
	manager.HandleMessage(room, alice, command(t, EventRequestDeleteEdge, EdgePayload{ID: rel.ID}))
	doc, _ := store.GetDocument("canvas-1")
	if len(doc.Relations) != 0 {
		t.Errorf("Expected the edge removed, got %d relations", len(doc.Relations))
	}
}

func TestDeleteTableBroadcastsCascadedRelations(t *testing.T) {
	manager, store := newTestManager(t, true)
	seed := schema.NewDocument("master")
	seed.CreateTable(schema.Table{Name: "users", Fields: []schema.Field{{Name: "id", Type: "INT", PK: true}}})
	seed.CreateTable(schema.Table{Name: "orders", Fields: []schema.Field{{Name: "user_id", Type: "INT"}}})
	seed.CreateRelation(schema.Relation{
		From: schema.FieldRef{Table: "orders", Field: "user_id"},
		To:   schema.FieldRef{Table: "users", Field: "id"},
	})
	store.seed(t, "canvas-1", seed)

	conn := &fakeConn{}
	client, room := manager.Admit(conn, "token-alice", "canvas-1")

	manager.HandleMessage(room, client, command(t, EventRequestDeleteTable, DeleteTablePayload{TableName: "users"}))

	var resp DeleteTableResponse
	conn.lastPayload(t, EventResponseDeleteTable, &resp)
	if resp.TableName != "users" || len(resp.RemovedRelations) != 1 {
		t.Errorf("Expected the cascaded relation in the response, got %+v", resp)
	}
}

func TestConcurrentDuplicateCreateTable(t *testing.T) {
	manager, store := newTestManager(t, true)

	conns := make([]*fakeConn, 8)
	clients := make([]*Client, 8)
	var room *Room
	tokens := []string{"token-alice", "token-bob"}
	for i := range conns {
		conns[i] = &fakeConn{}
		client, r := manager.Admit(conns[i], tokens[i%2], "canvas-1")
		clients[i] = client
		room = r
	}

	var wg sync.WaitGroup
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			manager.HandleMessage(room, clients[i], command(t, EventRequestCreateTable, CreateTablePayload{Name: "orders"}))
		}(i)
	}
	wg.Wait()

	doc, err := store.GetDocument("canvas-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	count := 0
	for _, table := range doc.Tables {
		if table.Name == "orders" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("Expected exactly one orders table, got %d", count)
	}

	// Exactly one command won; the rest were faulted back to their senders.
	responses := 0
	faults := 0
	for _, conn := range conns {
		faults += conn.count(EventSocketError)
	}
	for _, conn := range conns {
		responses += conn.count(EventResponseCreateTable)
	}
	if responses != len(conns) {
		t.Errorf("Expected one response broadcast to each of %d members, got %d", len(conns), responses)
	}
	if faults != len(conns)-1 {
		t.Errorf("Expected %d conflict faults, got %d", len(conns)-1, faults)
	}
}

func TestDisconnectBroadcastsLeave(t *testing.T) {
	manager, _ := newTestManager(t, true)

	aliceConn := &fakeConn{}
	alice, room := manager.Admit(aliceConn, "token-alice", "canvas-1")
	bobConn := &fakeConn{}
	manager.Admit(bobConn, "token-bob", "canvas-1")

	manager.Disconnect(room, alice)

	var presence PresencePayload
	bobConn.lastPayload(t, EventUserLeaveRoom, &presence)
	if presence.FirstName != "Alice" {
		t.Errorf("Expected Alice's leave presence, got %+v", presence)
	}
	if room.Size() != 1 {
		t.Errorf("Expected 1 remaining member, got %d", room.Size())
	}
}

func TestUnknownEventFaults(t *testing.T) {
	manager, _ := newTestManager(t, true)

	conn := &fakeConn{}
	client, room := manager.Admit(conn, "token-alice", "canvas-1")

	raw, _ := json.Marshal(Envelope{Event: "requestExplodeTable"})
	manager.HandleMessage(room, client, raw)

	var fault types.Fault
	conn.lastPayload(t, EventSocketError, &fault)
	if fault.Type != types.FaultValidation {
		t.Errorf("Expected validation fault for unknown event, got %s", fault.Type)
	}
}

func TestRegistryDropsEmptyRooms(t *testing.T) {
	manager, _ := newTestManager(t, true)
	registry := manager.Registry()

	conn := &fakeConn{}
	client, room := manager.Admit(conn, "token-alice", "canvas-1")
	if registry.Room("canvas-1") == nil {
		t.Fatal("Expected the room to exist while occupied")
	}

	manager.Disconnect(room, client)
	if registry.Room("canvas-1") != nil {
		t.Error("Expected the empty room to be dropped")
	}
}

func TestToUserReachesEveryConnection(t *testing.T) {
	manager, _ := newTestManager(t, true)
	registry := manager.Registry()

	first := &fakeConn{}
	second := &fakeConn{}
	manager.Admit(first, "token-alice", "canvas-1")
	manager.Admit(second, "token-alice", "canvas-1")

	registry.ToUser("alice", "notice", map[string]string{"message": "hello alice"})

	if first.count("notice") != 1 || second.count("notice") != 1 {
		t.Errorf("Expected the notice on both connections, got %v / %v", first.events(), second.events())
	}
}
