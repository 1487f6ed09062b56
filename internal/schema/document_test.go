package schema

import (
	"testing"

	"github.com/sqlizer/sqlizer/internal/types"
)

func faultType(t *testing.T, err error) string {
	t.Helper()
	f, ok := types.AsFault(err)
	if !ok {
		t.Fatalf("Expected a fault, got %v", err)
	}
	return f.Type
}

func usersOrdersDoc(t *testing.T) *Document {
	t.Helper()
	doc := NewDocument("shop")
	if err := doc.CreateTable(Table{Name: "users", Fields: []Field{
		{Name: "id", Type: "INT", PK: true, Autoincrement: true},
		{Name: "email", Type: "VARCHAR(255)"},
	}}); err != nil {
		t.Fatalf("CreateTable users: %v", err)
	}
	if err := doc.CreateTable(Table{Name: "orders", Fields: []Field{
		{Name: "id", Type: "INT", PK: true, Autoincrement: true},
		{Name: "user_id", Type: "INT"},
	}}); err != nil {
		t.Fatalf("CreateTable orders: %v", err)
	}
	return doc
}

func TestCreateTableRejectsDuplicateName(t *testing.T) {
	doc := usersOrdersDoc(t)

	err := doc.CreateTable(Table{Name: "users"})
	if faultType(t, err) != types.FaultConflict {
		t.Errorf("Expected conflict, got %v", err)
	}
	if len(doc.Tables) != 2 {
		t.Errorf("Duplicate create must not change the document, got %d tables", len(doc.Tables))
	}
}

func TestCreateTableRejectsDuplicateFields(t *testing.T) {
	doc := NewDocument("shop")
	err := doc.CreateTable(Table{Name: "users", Fields: []Field{
		{Name: "id", Type: "INT"},
		{Name: "id", Type: "VARCHAR(32)"},
	}})
	if faultType(t, err) != types.FaultConflict {
		t.Errorf("Expected conflict for duplicate field, got %v", err)
	}
}

func TestCreateRelationRejectsDanglingEndpoint(t *testing.T) {
	doc := usersOrdersDoc(t)

	_, err := doc.CreateRelation(Relation{
		From: FieldRef{Table: "orders", Field: "user_id"},
		To:   FieldRef{Table: "customers", Field: "id"},
	})
	if faultType(t, err) != types.FaultNotFound {
		t.Errorf("Expected notFound for missing table, got %v", err)
	}
	if len(doc.Relations) != 0 {
		t.Errorf("Failed create must not add a relation")
	}
}

func TestCreateRelationAssignsID(t *testing.T) {
	doc := usersOrdersDoc(t)

	rel, err := doc.CreateRelation(Relation{
		From: FieldRef{Table: "orders", Field: "user_id"},
		To:   FieldRef{Table: "users", Field: "id"},
	})
	if err != nil {
		t.Fatalf("CreateRelation: %v", err)
	}
	if rel.ID == "" {
		t.Error("Expected an assigned relation id")
	}

	// Same endpoints again is a structural duplicate
	_, err = doc.CreateRelation(Relation{
		From: FieldRef{Table: "orders", Field: "user_id"},
		To:   FieldRef{Table: "users", Field: "id"},
	})
	if faultType(t, err) != types.FaultConflict {
		t.Errorf("Expected conflict for duplicate endpoints, got %v", err)
	}
}

func TestDeleteTableCascadesRelations(t *testing.T) {
	doc := usersOrdersDoc(t)
	if _, err := doc.CreateRelation(Relation{
		From: FieldRef{Table: "orders", Field: "user_id"},
		To:   FieldRef{Table: "users", Field: "id"},
	}); err != nil {
		t.Fatalf("CreateRelation: %v", err)
	}

	removed, err := doc.DeleteTable("users")
	if err != nil {
		t.Fatalf("DeleteTable: %v", err)
	}
	if len(removed) != 1 {
		t.Fatalf("Expected 1 removed relation, got %d", len(removed))
	}
	if len(doc.Relations) != 0 {
		t.Errorf("Expected no remaining relations, got %d", len(doc.Relations))
	}
	if doc.FindTable("orders") == nil {
		t.Error("Unrelated table must survive the delete")
	}
}

// Deleting a table must match relations by referenced table name, not by
// slice position: an edge added after unrelated tables still cascades.
func TestDeleteTableCascadeMatchesByName(t *testing.T) {
	doc := usersOrdersDoc(t)
	if err := doc.CreateTable(Table{Name: "products", Fields: []Field{
		{Name: "id", Type: "INT", PK: true},
	}}); err != nil {
		t.Fatalf("CreateTable products: %v", err)
	}
	if _, err := doc.CreateRelation(Relation{
		From: FieldRef{Table: "orders", Field: "user_id"},
		To:   FieldRef{Table: "users", Field: "id"},
	}); err != nil {
		t.Fatalf("CreateRelation: %v", err)
	}

	removed, err := doc.DeleteTable("products")
	if err != nil {
		t.Fatalf("DeleteTable: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("Deleting products must not remove the orders->users edge, removed %v", removed)
	}
	if len(doc.Relations) != 1 {
		t.Errorf("Expected the orders->users edge to survive, got %d relations", len(doc.Relations))
	}
}

func TestDeleteMissingTableIsNoOp(t *testing.T) {
	doc := usersOrdersDoc(t)

	_, err := doc.DeleteTable("customers")
	if faultType(t, err) != types.FaultNotFound {
		t.Errorf("Expected notFound, got %v", err)
	}
	if len(doc.Tables) != 2 {
		t.Errorf("Failed delete must not change the document")
	}
}

func TestRenameTableRewritesRelationEndpoints(t *testing.T) {
	doc := usersOrdersDoc(t)
	if _, err := doc.CreateRelation(Relation{
		From: FieldRef{Table: "orders", Field: "user_id"},
		To:   FieldRef{Table: "users", Field: "id"},
	}); err != nil {
		t.Fatalf("CreateRelation: %v", err)
	}

	if err := doc.RenameTable("users", "customers"); err != nil {
		t.Fatalf("RenameTable: %v", err)
	}
	if doc.Relations[0].To.Table != "customers" {
		t.Errorf("Expected relation endpoint rewritten to customers, got %s", doc.Relations[0].To.Table)
	}

	err := doc.RenameTable("orders", "customers")
	if faultType(t, err) != types.FaultConflict {
		t.Errorf("Expected conflict renaming onto an existing table, got %v", err)
	}
}

func TestUpdateFieldRejectsRenameCollision(t *testing.T) {
	doc := usersOrdersDoc(t)

	err := doc.UpdateField("users", "email", Field{Name: "id", Type: "INT"})
	if faultType(t, err) != types.FaultConflict {
		t.Errorf("Expected conflict for field rename collision, got %v", err)
	}

	if err := doc.UpdateField("users", "email", Field{Name: "email", Type: "TEXT", Nullable: true}); err != nil {
		t.Fatalf("UpdateField in place: %v", err)
	}
	if doc.Tables[0].Fields[1].Type != "TEXT" {
		t.Errorf("Expected field type updated, got %s", doc.Tables[0].Fields[1].Type)
	}
}

func TestDeleteRelationStructuralFallback(t *testing.T) {
	doc := usersOrdersDoc(t)
	rel, err := doc.CreateRelation(Relation{
		From: FieldRef{Table: "orders", Field: "user_id"},
		To:   FieldRef{Table: "users", Field: "id"},
	})
	if err != nil {
		t.Fatalf("CreateRelation: %v", err)
	}

	// No id supplied: the edge is matched by its endpoint quad.
	removed, err := doc.DeleteRelation("", Relation{
		From: FieldRef{Table: "orders", Field: "user_id"},
		To:   FieldRef{Table: "users", Field: "id"},
	})
	if err != nil {
		t.Fatalf("DeleteRelation: %v", err)
	}
	if removed.ID != rel.ID {
		t.Errorf("Expected structural delete to remove %s, removed %s", rel.ID, removed.ID)
	}

	// A second structural delete finds nothing and changes nothing.
	_, err = doc.DeleteRelation("", Relation{
		From: FieldRef{Table: "orders", Field: "user_id"},
		To:   FieldRef{Table: "users", Field: "id"},
	})
	if faultType(t, err) != types.FaultNotFound {
		t.Errorf("Expected notFound, got %v", err)
	}
	if len(doc.Relations) != 0 {
		t.Errorf("Expected no relations left, got %d", len(doc.Relations))
	}
}

func TestParseRoundTrip(t *testing.T) {
	doc := usersOrdersDoc(t)
	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.DBName != "shop" || len(parsed.Tables) != 2 {
		t.Errorf("Round trip lost data: %+v", parsed)
	}

	if _, err := Parse([]byte("{not json")); err == nil {
		t.Error("Expected malformed document to fail parsing")
	}
}
